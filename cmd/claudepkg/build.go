package main

import (
	"context"
	"os"

	"github.com/aurmate/claudepkg/internal/common/config"
	"github.com/aurmate/claudepkg/internal/common/logger"
	"github.com/aurmate/claudepkg/internal/common/output"
	"github.com/aurmate/claudepkg/internal/pkgbuild"
	"github.com/aurmate/claudepkg/internal/release"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <version>",
	Short: "Build the Arch package for a specific upstream version",
	Long: `Render the packaging recipe for the given version and run makepkg,
bypassing the release gate. Useful for rebuilds and pkgrel bumps.

Example:
  claudepkg build 0.13.11`,
	Args: cobra.ExactArgs(1),
	Run:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) {
	v, err := release.ParseVersion(args[0])
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}
	if cfg.AUR.Package == "" {
		logger.Error("aur package name not configured")
		os.Exit(1)
	}

	builder := pkgbuild.NewBuilder(cfg.AUR.Package, cfg.Build.WorkDir)
	builder.TemplateDir = cfg.Build.PKGBUILDDir

	artifact, err := builder.Build(context.Background(), v)
	if err != nil {
		output.PrintError("build failed for %s: %v", v, err)
		os.Exit(1)
	}

	output.PrintSuccess("built %s", artifact)
}
