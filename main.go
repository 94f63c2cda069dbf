package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	gstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	gap "github.com/muesli/go-app-paths"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/charmbracelet/trickle/flow"
	"github.com/charmbracelet/trickle/highlight"
	"github.com/charmbracelet/trickle/theme"
	"github.com/charmbracelet/trickle/utils"
)

const maxWidth = 120

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	pager       bool
	follow      bool
	style       string
	codeTheme   string
	language    string
	width       uint
	latexMode   bool
	frontmatter bool
	hyperlinks  bool

	rootCmd = &cobra.Command{
		Use:   "trickle [SOURCE]",
		Short: "Render markdown in the terminal as it streams in",
		Long: paragraph(
			fmt.Sprintf("\nRender markdown in the terminal %s, one line at a time.", keyword("as it arrives")),
		),
		Example: paragraph("llm 'explain monads' | trickle\ntrickle README.md\ntrickle -f transcript.md\ntrickle github://charmbracelet/glow"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		path := utils.ExpandPath(configFile)
		if _, err := os.Stat(path); err == nil {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("unable to read config file: %w", err)
			}
		}
	}

	// grab config values from Viper
	width = viper.GetUint("width")
	pager = viper.GetBool("pager")
	follow = viper.GetBool("follow")
	latexMode = viper.GetBool("latex")
	language = viper.GetString("language")
	frontmatter = viper.GetBool("frontmatter")
	hyperlinks = viper.GetBool("hyperlinks")
	codeTheme = viper.GetString("code-theme")
	style = viper.GetString("style")

	if codeTheme != "" && !highlight.HasStyle(codeTheme) {
		msg := fmt.Sprintf("unknown code theme %q", codeTheme)
		if s := theme.Suggest(codeTheme, highlight.StyleNames()); s != "" {
			msg += fmt.Sprintf(", did you mean %q?", s)
		}
		log.Warn(msg + " Using the style's code theme.")
		codeTheme = ""
	}

	// Plain output when stdout is not a terminal, unless asked otherwise.
	if !term.IsTerminal(int(os.Stdout.Fd())) && !pager {
		if !cmd.Flags().Changed("style") {
			style = gstyles.NoTTYStyle
		}
		if !cmd.Flags().Changed("hyperlinks") {
			hyperlinks = false
		}
	}
	return nil
}

// layoutWidth returns the content width for a terminal cols columns wide.
func layoutWidth(cols int) int {
	if cols <= 0 {
		cols = 80
	}
	return min(max(cols*11/12-flow.DefaultMargin, flow.MinWidth), maxWidth)
}

func contentWidth() int {
	if width > 0 {
		return max(int(width), flow.MinWidth)
	}
	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		cols = 0
	}
	return layoutWidth(cols)
}

// loadTheme resolves a style flag: "auto", a theme name or a path to a
// glamour JSON style.
func loadTheme(name string, p termenv.Profile) (theme.Theme, error) {
	if name == gstyles.AutoStyle {
		if !lipgloss.HasDarkBackground() {
			return theme.Load(gstyles.LightStyle, p)
		}
		return theme.Default(p), nil
	}
	th, err := theme.Load(name, p)
	if errors.Is(err, theme.ErrUnknown) {
		path := utils.ExpandPath(name)
		if st, serr := os.Stat(path); serr == nil && !st.IsDir() {
			return theme.LoadFile(path, p)
		}
	}
	return th, err
}

// renderConfig builds the renderer configuration from the parsed options.
func renderConfig() flow.Config {
	profile := lipgloss.ColorProfile()
	th, err := loadTheme(style, profile)
	if err != nil {
		log.Warn("Using the default style", "err", err)
	}

	ct := th.CodeTheme
	if codeTheme != "" {
		ct = codeTheme
	}
	var hl highlight.Highlighter = highlight.None
	if profile != termenv.Ascii {
		hl = highlight.NewChroma(ct, profile)
	}

	return flow.Config{
		Width:           contentWidth(),
		Margin:          flow.DefaultMargin,
		Theme:           th,
		Highlighter:     hl,
		DefaultLanguage: language,
		LaTeX:           latexMode,
		SkipFrontmatter: frontmatter,
		Hyperlinks:      hyperlinks,
		Logger:          log.Default(),
	}
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, err
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if follow {
		// Interrupting a followed file ends the render cleanly.
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
	}

	if len(args) == 0 {
		// if stdin is a pipe then use stdin for input. note that you can
		// also explicitly use a - to read from stdin.
		yes, err := stdinIsPipe()
		if err != nil {
			return err
		}
		if !yes {
			return executeCLI(ctx, helpSource(), os.Stdout)
		}
		args = []string{"-"}
	}
	return executeArg(ctx, args[0], os.Stdout)
}

func executeArg(ctx context.Context, arg string, w io.Writer) error {
	// create an io.Reader from the markdown source in cli-args
	src, err := sourceFromArg(ctx, arg)
	if err != nil {
		return err
	}
	defer src.reader.Close() //nolint:errcheck
	return executeCLI(ctx, src, w)
}

func executeCLI(ctx context.Context, src *source, w io.Writer) error {
	cfg := renderConfig()

	in := &countingReader{r: src.reader}
	var r io.Reader = in
	if src.URL != "" && !utils.IsMarkdownFile(src.URL) {
		r = utils.CodeBlock(in, utils.Language(src.URL))
	}
	defer func() {
		log.Debug("Rendered source", "url", src.URL, "read", humanize.Bytes(in.n), "width", cfg.Width, "style", cfg.Theme.Name)
	}()

	if pager {
		return page(ctx, r, cfg)
	}
	return flow.Flow(ctx, r, w, cfg)
}

// page renders into the pager's standard input while it runs.
func page(ctx context.Context, r io.Reader, cfg flow.Config) error {
	pa := utils.PagerCommand()
	c := exec.CommandContext(ctx, pa[0], pa[1:]...) // nolint:gosec
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	in, err := c.StdinPipe()
	if err != nil {
		return err
	}
	if err := c.Start(); err != nil {
		return fmt.Errorf("unable to start pager %q: %w", strings.Join(pa, " "), err)
	}

	ferr := flow.Flow(ctx, r, in, cfg)
	_ = in.Close()
	if err := c.Wait(); err != nil {
		return fmt.Errorf("pager: %w", err)
	}
	return ferr
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n)
	return n, err
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", configFile, "config file")
	rootCmd.Flags().BoolVarP(&pager, "pager", "p", false, "display with pager")
	rootCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep rendering as the file grows")
	rootCmd.Flags().StringVarP(&style, "style", "s", gstyles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().StringVar(&codeTheme, "code-theme", "", "chroma style for code blocks (default from style)")
	rootCmd.Flags().StringVarP(&language, "language", "l", flow.DefaultLanguage, "language for code blocks without one")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width")
	rootCmd.Flags().BoolVar(&latexMode, "latex", false, "convert LaTeX math to text")
	rootCmd.Flags().BoolVar(&frontmatter, "frontmatter", true, "skip a leading YAML frontmatter block")
	rootCmd.Flags().BoolVar(&hyperlinks, "hyperlinks", true, "emit clickable links")

	// Config bindings
	for _, name := range []string{"pager", "follow", "style", "code-theme", "language", "width", "latex", "frontmatter", "hyperlinks"} {
		_ = viper.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}

	viper.SetDefault("style", gstyles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("language", flow.DefaultLanguage)
	viper.SetDefault("frontmatter", true)
	viper.SetDefault("hyperlinks", true)

	rootCmd.AddCommand(configCmd, manCmd, stylesCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "trickle")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "trickle")}, dirs...)
	}

	if c := os.Getenv("TRICKLE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("trickle")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("trickle")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		configFile = used
		return
	}

	if len(dirs) > 0 {
		configFile = filepath.Join(dirs[0], "trickle.yml")
	}
}
