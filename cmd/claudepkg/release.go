package main

import (
	"context"
	"os"

	"github.com/aurmate/claudepkg/internal/aur"
	"github.com/aurmate/claudepkg/internal/common/config"
	"github.com/aurmate/claudepkg/internal/common/logger"
	"github.com/aurmate/claudepkg/internal/common/output"
	"github.com/aurmate/claudepkg/internal/ghrelease"
	"github.com/aurmate/claudepkg/internal/pkgbuild"
	"github.com/aurmate/claudepkg/internal/publish"
	"github.com/aurmate/claudepkg/internal/release"
	"github.com/aurmate/claudepkg/internal/upstream"
	"github.com/spf13/cobra"
)

var (
	// releaseDryRun stops after the decision without building or publishing
	releaseDryRun bool
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Run the release gate and, when needed, build and publish",
	Long: `Probe upstream, decide whether the latest version is already published,
and on a proceed decision run the packaging toolchain and publish the
artifact to GitHub Releases and the AUR.

Safe to run on a schedule: an already-released version exits 0 without
rebuilding anything.

Examples:
  claudepkg release            Full gate run
  claudepkg release --dry-run  Report the decision without dispatching`,
	Run: runRelease,
}

func init() {
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "Decide only, do not build or publish")
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	configDir, err := config.DefaultConfigDir()
	if err != nil {
		logger.Error("resolving config directory: %v", err)
		os.Exit(1)
	}

	upstreamCfg, err := upstream.LoadConfig(configDir)
	if err != nil {
		logger.Error("loading upstream config: %v", err)
		os.Exit(1)
	}
	source := upstream.NewHTTPSource(upstreamCfg)

	// The gate's ledger queries live: no cache dir on this client
	ledger := ghrelease.NewClient(cfg.GitHub.Repository, cfg.GitHub.Token)

	builder := pkgbuild.NewBuilder(cfg.AUR.Package, cfg.Build.WorkDir)
	builder.TemplateDir = cfg.Build.PKGBUILDDir

	user, email, err := cfg.GetGitUser()
	if err != nil {
		logger.Warn("%v", err)
	}
	aurPublisher, err := aur.NewPublisher(cfg.AUR.Package, cfg.AUR.Remote, user, email)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	aurPublisher.SSHCommand = cfg.AUR.SSHCommand()

	publisher := publish.NewPublisher(ledger, aurPublisher)

	gate := release.NewGate(source, ledger, builder, publisher,
		release.WithDryRun(releaseDryRun),
	)

	outcome, err := gate.Run(context.Background())
	if err != nil {
		output.PrintError("%s: %v", outcome.StatusLine(), err)
		os.Exit(1)
	}

	switch outcome.State {
	case release.StateDispatched:
		output.PrintSuccess("%s", outcome.StatusLine())
	default:
		output.PrintInfo("%s", outcome.StatusLine())
	}
}
