package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestConfigPathsXDGPriority tests the XDG-first path ordering
func TestConfigPathsXDGPriority(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")

	paths, err := ConfigPaths()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("Expected 2 paths, got %d", len(paths))
	}
	if paths[0] != filepath.Join("/custom/xdg", "claudepkg", "config.yaml") {
		t.Errorf("Unexpected XDG path: %s", paths[0])
	}
	if !strings.HasSuffix(paths[1], filepath.Join(".claudepkg", "config.yaml")) {
		t.Errorf("Unexpected legacy path: %s", paths[1])
	}
}

// TestConfigPathsDefaultXDG tests the ~/.config fallback when XDG is unset
func TestConfigPathsDefaultXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	paths, err := ConfigPaths()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(paths[0], filepath.Join(".config", "claudepkg")) {
		t.Errorf("Expected ~/.config path, got %s", paths[0])
	}
}

// TestLoadFromExistingFile tests YAML loading and the AUR remote default
func TestLoadFromExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `github:
  repository: aurmate/claude-desktop-arch
  token: ghp_secret
aur:
  package: claude-desktop-bin
git:
  user: Release Bot
  email: bot@example.com
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.GitHub.Repository != "aurmate/claude-desktop-arch" {
		t.Errorf("Unexpected repository: %q", cfg.GitHub.Repository)
	}
	if cfg.GitHub.Token != "ghp_secret" {
		t.Errorf("Unexpected token: %q", cfg.GitHub.Token)
	}
	if cfg.AUR.Package != "claude-desktop-bin" {
		t.Errorf("Unexpected AUR package: %q", cfg.AUR.Package)
	}
	if cfg.AUR.Remote != "ssh://aur@aur.archlinux.org/claude-desktop-bin.git" {
		t.Errorf("Expected default AUR remote, got %q", cfg.AUR.Remote)
	}
}

// TestLoadFromRemoteOverride tests that an explicit remote is kept
func TestLoadFromRemoteOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `aur:
  package: claude-desktop-bin
  remote: ssh://git@mirror.example.com/claude.git
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.AUR.Remote != "ssh://git@mirror.example.com/claude.git" {
		t.Errorf("Expected explicit remote kept, got %q", cfg.AUR.Remote)
	}
}

// TestLoadFromMissingFileWritesDefault tests default creation on first run
func TestLoadFromMissingFileWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claudepkg", "config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config")
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected default config written to %s: %v", path, err)
	}
}

// TestLoadFromMalformedYAML tests error on unparseable file
func TestLoadFromMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("github: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

// TestValidate tests the required-field checks
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing repository",
			cfg:     Config{AUR: AURConfig{Package: "claude-desktop-bin"}},
			wantErr: ErrGitHubRepoNotSet,
		},
		{
			name:    "missing aur package",
			cfg:     Config{GitHub: GitHubConfig{Repository: "aurmate/claude-desktop-arch"}},
			wantErr: ErrAURPackageNotSet,
		},
		{
			name: "complete",
			cfg: Config{
				GitHub: GitHubConfig{Repository: "aurmate/claude-desktop-arch"},
				AUR:    AURConfig{Package: "claude-desktop-bin"},
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestParseGitconfigContent tests the INI user section parser
func TestParseGitconfigContent(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantUser  string
		wantEmail string
	}{
		{
			name: "standard gitconfig",
			content: `[user]
	name = Release Bot
	email = bot@example.com
[core]
	editor = vim
`,
			wantUser:  "Release Bot",
			wantEmail: "bot@example.com",
		},
		{
			name: "user section last",
			content: `[core]
	autocrlf = input
[user]
	name = Someone
	email = someone@example.com
`,
			wantUser:  "Someone",
			wantEmail: "someone@example.com",
		},
		{
			name: "comments and blanks ignored",
			content: `# global config
[user]
	; author identity
	name = Commenter

	email = c@example.com
`,
			wantUser:  "Commenter",
			wantEmail: "c@example.com",
		},
		{
			name: "name outside user section ignored",
			content: `[remote "origin"]
	name = not-a-user
[user]
	email = only@example.com
`,
			wantUser:  "",
			wantEmail: "only@example.com",
		},
		{
			name:      "empty content",
			content:   "",
			wantUser:  "",
			wantEmail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, email, err := ParseGitconfigContent(strings.NewReader(tt.content))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if user != tt.wantUser {
				t.Errorf("user = %q, want %q", user, tt.wantUser)
			}
			if email != tt.wantEmail {
				t.Errorf("email = %q, want %q", email, tt.wantEmail)
			}
		})
	}
}

// TestGetGitUserFallbackToConfig tests the claudepkg config fallback when
// ~/.gitconfig has no identity
func TestGetGitUserFallbackToConfig(t *testing.T) {
	// Point HOME at an empty dir so no real gitconfig interferes
	t.Setenv("HOME", t.TempDir())

	cfg := &Config{Git: GitConfig{User: "Fallback User", Email: "fb@example.com"}}
	user, email, err := cfg.GetGitUser()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user != "Fallback User" || email != "fb@example.com" {
		t.Errorf("Unexpected identity: %q <%q>", user, email)
	}
}

// TestGetGitUserUnconfigured tests the sentinel when no identity exists
func TestGetGitUserUnconfigured(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &Config{}
	_, _, err := cfg.GetGitUser()
	if !errors.Is(err, ErrGitUserNotConfigured) {
		t.Errorf("Expected ErrGitUserNotConfigured, got %v", err)
	}
}

// TestAURSSHCommand tests the deploy key expansion into a GIT_SSH_COMMAND
func TestAURSSHCommand(t *testing.T) {
	var a AURConfig
	if got := a.SSHCommand(); got != "" {
		t.Errorf("Expected empty ssh command without a key, got %q", got)
	}

	a.SSHKey = "/home/bot/.ssh/aur_key"
	want := "ssh -i /home/bot/.ssh/aur_key -o StrictHostKeyChecking=accept-new"
	if got := a.SSHCommand(); got != want {
		t.Errorf("SSHCommand() = %q, want %q", got, want)
	}
}
