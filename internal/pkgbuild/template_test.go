package pkgbuild

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aurmate/claudepkg/internal/release"
)

func testRecipe() *Recipe {
	return &Recipe{
		PkgName:      "claude-desktop-bin",
		Version:      release.Version{Major: 0, Minor: 13, Patch: 11},
		InstallerURL: "https://example.com/AnthropicClaude-0.13.11-full.nupkg",
	}
}

// TestRenderPKGBUILD tests the substituted fields in the rendered recipe
func TestRenderPKGBUILD(t *testing.T) {
	content, err := RenderPKGBUILD(testRecipe())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rendered := string(content)
	for _, want := range []string{
		"pkgname=claude-desktop-bin",
		"pkgver=0.13.11",
		"pkgrel=1",
		`source=("AnthropicClaude-0.13.11-full.nupkg::https://example.com/AnthropicClaude-0.13.11-full.nupkg")`,
		"sha256sums=('SKIP')",
		"depends=('electron' 'nodejs')",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Rendered PKGBUILD missing %q", want)
		}
	}
}

// TestRenderPKGBUILDExplicitFields tests that pkgrel and sha256 are honored
func TestRenderPKGBUILDExplicitFields(t *testing.T) {
	recipe := testRecipe()
	recipe.PkgRel = 3
	recipe.SHA256 = "deadbeef"

	content, err := RenderPKGBUILD(recipe)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rendered := string(content)
	if !strings.Contains(rendered, "pkgrel=3") {
		t.Error("Expected pkgrel=3 in rendered PKGBUILD")
	}
	if !strings.Contains(rendered, "sha256sums=('deadbeef')") {
		t.Error("Expected explicit checksum in rendered PKGBUILD")
	}
}

// TestRenderSrcinfo tests the .SRCINFO mirror of the recipe
func TestRenderSrcinfo(t *testing.T) {
	content, err := RenderSrcinfo(testRecipe())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rendered := string(content)
	for _, want := range []string{
		"pkgbase = claude-desktop-bin",
		"pkgver = 0.13.11",
		"pkgrel = 1",
		"pkgname = claude-desktop-bin",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Rendered .SRCINFO missing %q", want)
		}
	}
}

// TestWriteRecipe tests that both files land in the directory
func TestWriteRecipe(t *testing.T) {
	dir := t.TempDir()

	if err := WriteRecipe(dir, testRecipe()); err != nil {
		t.Fatalf("WriteRecipe failed: %v", err)
	}

	for _, name := range []string{"PKGBUILD", ".SRCINFO"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

// TestBumpVersion tests rewriting pkgver and resetting pkgrel
func TestBumpVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PKGBUILD")
	original := `pkgname=claude-desktop-bin
pkgver=0.13.10
pkgrel=4
pkgdesc="hand-maintained recipe"
`
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatalf("Failed to write PKGBUILD: %v", err)
	}

	v := release.Version{Major: 0, Minor: 13, Patch: 11}
	if err := BumpVersion(path, v, 1); err != nil {
		t.Fatalf("BumpVersion failed: %v", err)
	}

	updated, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read PKGBUILD: %v", err)
	}

	content := string(updated)
	if !strings.Contains(content, "pkgver=0.13.11") {
		t.Error("Expected pkgver to be rewritten")
	}
	if !strings.Contains(content, "pkgrel=1") {
		t.Error("Expected pkgrel reset to 1")
	}
	if !strings.Contains(content, `pkgdesc="hand-maintained recipe"`) {
		t.Error("Expected unrelated lines to survive")
	}
}

// TestBumpVersionPkgrel tests rewriting pkgrel for a recipe-only rebuild
func TestBumpVersionPkgrel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PKGBUILD")
	original := "pkgname=claude-desktop-bin\npkgver=0.13.11\npkgrel=1\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatalf("Failed to write PKGBUILD: %v", err)
	}

	v := release.Version{Major: 0, Minor: 13, Patch: 11}
	if err := BumpVersion(path, v, 2); err != nil {
		t.Fatalf("BumpVersion failed: %v", err)
	}

	updated, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read PKGBUILD: %v", err)
	}
	if !strings.Contains(string(updated), "pkgrel=2") {
		t.Errorf("Expected pkgrel=2, got:\n%s", updated)
	}
}

// TestBumpVersionMissingPkgver tests error when the file has no pkgver line
func TestBumpVersionMissingPkgver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PKGBUILD")
	if err := os.WriteFile(path, []byte("pkgname=something\n"), 0644); err != nil {
		t.Fatalf("Failed to write PKGBUILD: %v", err)
	}

	err := BumpVersion(path, release.Version{Major: 1, Minor: 0, Patch: 0}, 1)
	if !errors.Is(err, ErrMissingPkgver) {
		t.Errorf("Expected ErrMissingPkgver, got %v", err)
	}
}
