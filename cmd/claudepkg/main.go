package main

import (
	"fmt"
	"os"

	"github.com/aurmate/claudepkg/internal/common/logger"
	"github.com/aurmate/claudepkg/internal/common/output"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "claudepkg",
	Short: "Claude Desktop packaging for Arch Linux",
	Long: `claudepkg watches the upstream Claude Desktop Windows installer feed,
decides whether the current version still needs packaging, and drives the
build and publish pipeline (makepkg, GitHub Releases, AUR).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
