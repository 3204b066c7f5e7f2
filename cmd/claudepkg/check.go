package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aurmate/claudepkg/internal/common/config"
	"github.com/aurmate/claudepkg/internal/common/logger"
	"github.com/aurmate/claudepkg/internal/common/output"
	"github.com/aurmate/claudepkg/internal/ghrelease"
	"github.com/aurmate/claudepkg/internal/release"
	"github.com/aurmate/claudepkg/internal/upstream"
	"github.com/spf13/cobra"
)

var (
	// checkForce bypasses the probe cache
	checkForce bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a new upstream version needs packaging",
	Long: `Probe the upstream installer feed for the latest Claude Desktop version
and compare it against the published GitHub releases.

Examples:
  claudepkg check           Check using the probe cache
  claudepkg check --force   Check ignoring the cache`,
	Run: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkForce, "force", false, "Ignore the probe cache")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}
	if cfg.GitHub.Repository == "" {
		logger.Error("github repository not configured")
		os.Exit(1)
	}

	configDir, err := config.DefaultConfigDir()
	if err != nil {
		logger.Error("resolving config directory: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	latest, fromCache, err := probeWithCache(ctx, configDir, checkForce)
	if err != nil {
		output.PrintError("probe failed: %v", err)
		os.Exit(1)
	}

	ledger := ghrelease.NewClient(cfg.GitHub.Repository, cfg.GitHub.Token)
	if err := ledger.SetCacheDir(filepath.Join(configDir, "releases")); err != nil {
		logger.Warn("release cache unavailable: %v", err)
	}

	existing, err := ledger.ListPublishedVersions(ctx)
	if err != nil {
		output.PrintError("querying releases: %v", err)
		os.Exit(1)
	}

	result := release.Decide(latest, existing)

	cacheIndicator := ""
	if fromCache {
		cacheIndicator = output.Sprintf(output.Dim, " (cached)")
	}

	if result.Decision == release.Proceed {
		output.PrintSuccess("version %s needs packaging%s", output.FormatVersion(latest.String()), cacheIndicator)
	} else {
		output.Dim.Printf("version %s already released%s\n", latest, cacheIndicator)
	}
}

// probeWithCache probes upstream, consulting the TTL cache unless force is
// set. Only the interactive check path uses the cache; the release gate
// always probes live.
func probeWithCache(ctx context.Context, configDir string, force bool) (release.Version, bool, error) {
	cache, err := upstream.NewCache(configDir)
	if err != nil {
		return release.Version{}, false, err
	}

	if !force {
		if cached, ok := cache.Get(); ok {
			v, err := release.ParseVersion(cached)
			if err == nil {
				return v, true, nil
			}
		}
	}

	upstreamCfg, err := upstream.LoadConfig(configDir)
	if err != nil {
		return release.Version{}, false, err
	}

	src := upstream.NewHTTPSource(upstreamCfg)
	v, err := release.Probe(ctx, src)
	if err != nil {
		return release.Version{}, false, err
	}

	if err := cache.Set(v.String(), src.Name()); err != nil {
		logger.Warn("failed to update probe cache: %v", err)
	}

	return v, false, nil
}
