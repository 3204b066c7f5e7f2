// Package upstream probes the latest Claude Desktop version published by
// Anthropic.
//
// The package implements:
//   - Probe source configuration via a TOML file
//   - Version extraction from upstream content (regex, JSON path, HTML)
//   - An HTTP client with exponential-backoff retries
//   - A TTL cache for probe results used by interactive checks
//
// Configuration is read from <configdir>/upstream.toml which defines the
// URL to query and how to extract the version from the response. The default
// target is the Windows installer feed, whose RELEASES file names the
// current installer as AnthropicClaude-<version>-full.nupkg.
//
// Usage:
//
//	cfg, err := upstream.LoadConfig(configDir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	src := upstream.NewHTTPSource(cfg)
//	v, err := release.Probe(ctx, src)
package upstream
