package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
)

const defaultConfig = `# style name or JSON path (default "auto")
style: "auto"
# chroma style for code blocks (default: the style's own)
code-theme: ""
# word-wrap at width (0 detects the terminal width)
width: 0
# use pager to display markdown
pager: false
# language for code blocks without one
language: "plaintext"
# convert LaTeX math to text
latex: false
# skip a leading YAML frontmatter block
frontmatter: true
# emit clickable links
hyperlinks: true
`

func defaultConfigFile() string {
	scope := gap.NewScope(gap.User, "trickle")
	path, _ := scope.ConfigPath("trickle.yml")
	return path
}

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the trickle config file",
	Long:    paragraph(fmt.Sprintf("\n%s the trickle config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("trickle config\ntrickle config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("trickle", configFile)
		if err != nil {
			return err
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return err
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

// ensureConfigFile writes the default config to configFile unless a file
// already exists there.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = defaultConfigFile()
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported config type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("could not write config file: %w", err)
		}
		return os.WriteFile(configFile, []byte(defaultConfig), 0o600)
	} else if err != nil { // some other error occurred
		return err
	}
	return nil
}
