package main

import (
	"fmt"
	"os"
	"strings"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"

	"github.com/charmbracelet/trickle/theme"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates manpages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return fmt.Errorf("unable to instantiate man page: %w", err)
		}
		manPage = manPage.
			WithSection("Styles", "Built-in styles: "+strings.Join(theme.Names(), ", ")+".").
			WithSection("Environment", "TRICKLE_CONFIG_HOME overrides the configuration directory. "+
				"TRICKLE_DEBUG=1 writes debug logs to the user cache directory. "+
				"PAGER selects the pager used with --pager.")
		if _, err := fmt.Fprint(os.Stdout, manPage.Build(roff.NewDocument())); err != nil {
			return fmt.Errorf("unable to build man page: %w", err)
		}
		return nil
	},
}
