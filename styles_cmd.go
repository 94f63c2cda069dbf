package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charmbracelet/trickle/highlight"
	"github.com/charmbracelet/trickle/theme"
)

var stylesCmd = &cobra.Command{
	Use:     "styles",
	Short:   "List the available styles and code themes",
	Long:    paragraph(fmt.Sprintf("\n%s the names accepted by --style and --code-theme.", keyword("List"))),
	Example: paragraph("trickle styles\ntrickle -s dracula --code-theme nord README.md"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), stylesList())
		return err
	},
}

func stylesList() string {
	var b strings.Builder
	b.WriteString(keyword("Styles") + "\n\n")
	b.WriteString(formatBlock(strings.Join(theme.Names(), ", ")) + "\n\n")
	b.WriteString(keyword("Code themes") + "\n\n")
	b.WriteString(formatBlock(strings.Join(highlight.StyleNames(), ", ")) + "\n")
	return b.String()
}
