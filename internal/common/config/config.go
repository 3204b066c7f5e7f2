// Package config loads the claudepkg YAML configuration.
package config

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrGitHubRepoNotSet     = errors.New("github repository is not configured")
	ErrAURPackageNotSet     = errors.New("aur package name is not configured")
	ErrGitUserNotConfigured = errors.New("git user is not configured: set user.name and user.email in ~/.gitconfig or claudepkg config")
)

// Config represents the application configuration
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	AUR    AURConfig    `yaml:"aur"`
	Build  BuildConfig  `yaml:"build"`
	Git    GitConfig    `yaml:"git"`
}

// GitHubConfig holds GitHub release settings
type GitHubConfig struct {
	// Repository is the org/repo that hosts the built packages
	Repository string `yaml:"repository"`
	// Token is a personal access token (publish requires it, listing does not)
	Token string `yaml:"token,omitempty"`
}

// AURConfig holds AUR publishing settings
type AURConfig struct {
	// Package is the AUR package base name, e.g. "claude-desktop-bin"
	Package string `yaml:"package"`
	// Remote overrides the default aur.archlinux.org ssh remote
	Remote string `yaml:"remote,omitempty"`
	// SSHKey is the path of the AUR deploy key; empty uses the ambient
	// ssh configuration
	SSHKey string `yaml:"ssh_key,omitempty"`
}

// SSHCommand returns the GIT_SSH_COMMAND value pinning the deploy key, or
// an empty string when no key is configured.
func (a AURConfig) SSHCommand() string {
	if a.SSHKey == "" {
		return ""
	}
	return "ssh -i " + a.SSHKey + " -o StrictHostKeyChecking=accept-new"
}

// BuildConfig holds packaging toolchain settings
type BuildConfig struct {
	// WorkDir is where makepkg runs; defaults to a temp dir when empty
	WorkDir string `yaml:"workdir,omitempty"`
	// PKGBUILDDir holds the PKGBUILD template checkout
	PKGBUILDDir string `yaml:"pkgbuild_dir,omitempty"`
}

// GitConfig holds git author settings
type GitConfig struct {
	User  string `yaml:"user,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/claudepkg/config.yaml (XDG standard - priority)
// 2. ~/.claudepkg/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "claudepkg", "config.yaml"),
		filepath.Join(home, ".claudepkg", "config.yaml"),
	}, nil
}

// DefaultConfigDir returns the XDG config directory for claudepkg state
// (probe cache, upstream.toml).
func DefaultConfigDir() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return filepath.Dir(paths[0]), nil
}

// FindConfigPath returns the first existing config file path.
// Returns the default (XDG) path if no config file exists yet.
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return paths[0], nil
}

// Load reads configuration from the first available config file
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path.
// A missing file yields the default config written back to that path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			if saveErr := cfg.SaveTo(path); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// DefaultConfig returns the configuration defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.AUR.Remote == "" && c.AUR.Package != "" {
		c.AUR.Remote = "ssh://aur@aur.archlinux.org/" + c.AUR.Package + ".git"
	}
}

// SaveTo writes configuration to a specific file path
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields required for publishing.
func (c *Config) Validate() error {
	if c.GitHub.Repository == "" {
		return ErrGitHubRepoNotSet
	}
	if c.AUR.Package == "" {
		return ErrAURPackageNotSet
	}
	return nil
}

// GetGitUser returns the git author name and email.
// It first tries to read from ~/.gitconfig, then falls back to claudepkg config.
func (c *Config) GetGitUser() (user, email string, err error) {
	gitconfigPath, err := defaultGitconfigPath()
	if err == nil {
		user, email, err = parseGitconfigFile(gitconfigPath)
		if err == nil && user != "" && email != "" {
			return user, email, nil
		}
	}

	if c.Git.User != "" && c.Git.Email != "" {
		return c.Git.User, c.Git.Email, nil
	}

	return "", "", ErrGitUserNotConfigured
}

// defaultGitconfigPath returns the default gitconfig file path
func defaultGitconfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gitconfig"), nil
}

// parseGitconfigFile reads user.name and user.email from a gitconfig file
func parseGitconfigFile(path string) (user, email string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	return ParseGitconfigContent(file)
}

// ParseGitconfigContent parses gitconfig content (INI format) from a reader.
// Exported for testing purposes.
func ParseGitconfigContent(r io.Reader) (user, email string, err error) {
	scanner := bufio.NewScanner(r)
	inUserSection := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section := strings.ToLower(strings.Trim(line, "[]"))
			inUserSection = section == "user"
			continue
		}

		if inUserSection {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(strings.ToLower(parts[0]))
			value := strings.TrimSpace(parts[1])

			switch key {
			case "name":
				user = value
			case "email":
				email = value
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return "", "", err
	}

	return user, email, nil
}
