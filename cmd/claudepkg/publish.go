package main

import (
	"context"
	"os"

	"github.com/aurmate/claudepkg/internal/aur"
	"github.com/aurmate/claudepkg/internal/common/config"
	"github.com/aurmate/claudepkg/internal/common/logger"
	"github.com/aurmate/claudepkg/internal/common/output"
	"github.com/aurmate/claudepkg/internal/ghrelease"
	"github.com/aurmate/claudepkg/internal/publish"
	"github.com/aurmate/claudepkg/internal/release"
	"github.com/spf13/cobra"
)

var (
	// publishDryRun stops the AUR half before pushing
	publishDryRun bool
	// publishPkgRel is the package revision to publish
	publishPkgRel int
)

var publishCmd = &cobra.Command{
	Use:   "publish <artifact> <version>",
	Short: "Publish a built artifact to GitHub Releases and the AUR",
	Long: `Upload the package file as a GitHub release asset and push the updated
recipe to the AUR, bypassing the release gate. Useful for pkgrel bumps of an
already-released upstream version and for finishing a publish that stopped
halfway: an existing GitHub release for the version is reused, not recreated.

Examples:
  claudepkg publish claude-desktop-bin-0.13.11-1-x86_64.pkg.tar.zst 0.13.11
  claudepkg publish claude-desktop-bin-0.13.11-2-x86_64.pkg.tar.zst 0.13.11 --pkgrel 2`,
	Args: cobra.ExactArgs(2),
	Run:  runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Do not push to the AUR")
	publishCmd.Flags().IntVar(&publishPkgRel, "pkgrel", 1, "Package revision for the AUR recipe and commit")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) {
	artifact := args[0]
	v, err := release.ParseVersion(args[1])
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	if _, err := os.Stat(artifact); err != nil {
		logger.Error("artifact not found: %s", artifact)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	gh := ghrelease.NewClient(cfg.GitHub.Repository, cfg.GitHub.Token)

	user, email, err := cfg.GetGitUser()
	if err != nil {
		logger.Warn("%v", err)
	}
	aurPublisher, err := aur.NewPublisher(cfg.AUR.Package, cfg.AUR.Remote, user, email)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	aurPublisher.DryRun = publishDryRun
	aurPublisher.PkgRel = publishPkgRel
	aurPublisher.SSHCommand = cfg.AUR.SSHCommand()

	publisher := publish.NewPublisher(gh, aurPublisher)

	if err := publisher.Publish(context.Background(), artifact, v); err != nil {
		output.PrintError("publish failed for %s: %v", v, err)
		os.Exit(1)
	}

	output.PrintSuccess("published %s as %s", artifact, v.TagName())
}
