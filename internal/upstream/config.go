package upstream

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Error variables for configuration errors
var (
	// ErrInvalidParserType is returned when an invalid parser type is specified
	ErrInvalidParserType = errors.New("invalid parser type: must be 'regex', 'json' or 'html'")
	// ErrMissingURL is returned when a probe configuration is missing the required URL field
	ErrMissingURL = errors.New("missing required field: url")
	// ErrMissingParser is returned when a probe configuration is missing the required parser field
	ErrMissingParser = errors.New("missing required field: parser")
	// ErrMissingPath is returned when a JSON parser is missing the required path field
	ErrMissingPath = errors.New("missing required field: path (required for json parser)")
	// ErrMissingPattern is returned when a regex parser is missing the required pattern field
	ErrMissingPattern = errors.New("missing required field: pattern (required for regex parser)")
	// ErrMissingSelector is returned when an HTML parser has neither selector nor xpath
	ErrMissingSelector = errors.New("missing required field: selector or xpath (required for html parser)")
)

// DefaultFeedURL is the Windows installer feed for Claude Desktop. Its
// RELEASES file names the current installer file, which carries the version.
const DefaultFeedURL = "https://storage.googleapis.com/osprey-downloads-c02f6a0d-347c-492b-a752-3e0651722e97/nest-win-x64/RELEASES"

// DefaultFeedPattern extracts the version triple from the installer filename
// inside the RELEASES feed.
const DefaultFeedPattern = `AnthropicClaude-(\d+\.\d+\.\d+)(?:-[A-Za-z0-9-]+)?\.nupkg`

// ProbeConfig describes one way of querying upstream for the latest version.
type ProbeConfig struct {
	// URL is the URL to query for version information
	URL string `toml:"url"`
	// Parser specifies the parser type: "regex", "json" or "html"
	Parser string `toml:"parser"`
	// Pattern is the regex pattern with capture group (regex parser, or
	// post-filter for html parser)
	Pattern string `toml:"pattern,omitempty"`
	// Path is the JSON path for extracting version (json parser)
	Path string `toml:"path,omitempty"`
	// Selector is the CSS selector (html parser)
	Selector string `toml:"selector,omitempty"`
	// XPath is the XPath expression (html parser, alternative to Selector)
	XPath string `toml:"xpath,omitempty"`
	// Headers are extra request headers; values support ${VAR} substitution
	Headers map[string]string `toml:"headers,omitempty"`
}

// Config is the upstream.toml file: a primary probe plus an optional
// fallback tried when the primary fails.
type Config struct {
	ProbeConfig
	// Fallback is an alternative probe tried when the primary fails
	Fallback *ProbeConfig `toml:"fallback,omitempty"`
}

// DefaultConfig returns the built-in probe configuration targeting the
// Windows installer feed.
func DefaultConfig() *Config {
	return &Config{
		ProbeConfig: ProbeConfig{
			URL:     DefaultFeedURL,
			Parser:  "regex",
			Pattern: DefaultFeedPattern,
		},
	}
}

// LoadConfig loads upstream.toml from the config directory.
// A missing file yields the built-in default configuration.
func LoadConfig(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, "upstream.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read upstream.toml: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse upstream.toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the probe configuration for required fields and valid
// parser types.
func (c *Config) Validate() error {
	if err := validateProbe(&c.ProbeConfig); err != nil {
		return err
	}
	if c.Fallback != nil {
		if err := validateProbe(c.Fallback); err != nil {
			return fmt.Errorf("fallback: %w", err)
		}
	}
	return nil
}

// validateProbe validates a single probe configuration
func validateProbe(cfg *ProbeConfig) error {
	if cfg.URL == "" {
		return ErrMissingURL
	}
	if cfg.Parser == "" {
		return ErrMissingParser
	}

	switch cfg.Parser {
	case "regex":
		if cfg.Pattern == "" {
			return ErrMissingPattern
		}
	case "json":
		if cfg.Path == "" {
			return ErrMissingPath
		}
	case "html":
		if cfg.Selector == "" && cfg.XPath == "" {
			return ErrMissingSelector
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidParserType, cfg.Parser)
	}

	return nil
}
