package pkgbuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aurmate/claudepkg/internal/common/logger"
	"github.com/aurmate/claudepkg/internal/release"
)

// Error variables for builder errors
var (
	// ErrMakepkgFailed is returned when the makepkg invocation fails
	ErrMakepkgFailed = errors.New("makepkg failed")
	// ErrNoArtifact is returned when makepkg succeeds but no package file is found
	ErrNoArtifact = errors.New("no package artifact produced")
)

// installerURLTemplate is the upstream installer location; %s is the version.
const installerURLTemplate = "https://storage.googleapis.com/osprey-downloads-c02f6a0d-347c-492b-a752-3e0651722e97/nest-win-x64/AnthropicClaude-%s-full.nupkg"

// Builder runs the packaging toolchain for one version.
// All heavy tools (7z, asar, makepkg) are external binaries; the builder
// only renders the recipe and shells out. Implements release.Builder.
type Builder struct {
	// PkgName is the Arch package name
	PkgName string
	// WorkDir is where makepkg runs; a temp dir is created when empty
	WorkDir string
	// TemplateDir, when set, holds a hand-maintained PKGBUILD checkout used
	// instead of the built-in template; its pkgver/pkgrel are rewritten in
	// the workdir copy
	TemplateDir string
	// runFunc executes the makepkg command, overridable for tests
	runFunc func(ctx context.Context, dir string, args ...string) error
}

// NewBuilder creates a builder for the given package name.
func NewBuilder(pkgName, workDir string) *Builder {
	b := &Builder{
		PkgName: pkgName,
		WorkDir: workDir,
	}
	b.runFunc = b.runMakepkg
	return b
}

// SetRunFunc overrides the makepkg invocation (useful for testing).
func (b *Builder) SetRunFunc(fn func(ctx context.Context, dir string, args ...string) error) {
	b.runFunc = fn
}

// Build renders the recipe for the version, runs makepkg, and returns the
// path of the produced .pkg.tar.zst.
func (b *Builder) Build(ctx context.Context, v release.Version) (string, error) {
	dir := b.WorkDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", b.PkgName+"-")
		if err != nil {
			return "", err
		}
		dir = tmp
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	if b.TemplateDir != "" {
		if err := b.copyRecipeFromTemplate(dir, v); err != nil {
			return "", err
		}
	} else {
		recipe := &Recipe{
			PkgName:      b.PkgName,
			Version:      v,
			InstallerURL: fmt.Sprintf(installerURLTemplate, v),
		}
		if err := WriteRecipe(dir, recipe); err != nil {
			return "", err
		}
	}

	logger.Info("running makepkg for %s in %s", v, dir)
	if err := b.runFunc(ctx, dir, "-f", "--noconfirm", "--skipinteg"); err != nil {
		return "", err
	}

	return findArtifact(dir, b.PkgName, v)
}

// copyRecipeFromTemplate copies the hand-maintained PKGBUILD into the
// workdir and rewrites its version lines for the build.
func (b *Builder) copyRecipeFromTemplate(dir string, v release.Version) error {
	content, err := os.ReadFile(filepath.Join(b.TemplateDir, "PKGBUILD"))
	if err != nil {
		return fmt.Errorf("reading PKGBUILD template: %w", err)
	}

	target := filepath.Join(dir, "PKGBUILD")
	if err := os.WriteFile(target, content, 0644); err != nil {
		return err
	}

	return BumpVersion(target, v, 1)
}

// WriteRecipe renders PKGBUILD and .SRCINFO into the directory.
func WriteRecipe(dir string, r *Recipe) error {
	pb, err := RenderPKGBUILD(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "PKGBUILD"), pb, 0644); err != nil {
		return err
	}

	si, err := RenderSrcinfo(r)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ".SRCINFO"), si, 0644)
}

// runMakepkg executes makepkg in the directory, wrapping stderr into the error.
func (b *Builder) runMakepkg(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "makepkg", args...)
	cmd.Dir = dir

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		stderr := strings.TrimSpace(stderrBuf.String())
		if stderr != "" {
			return errors.Join(ErrMakepkgFailed, errors.New(stderr))
		}
		return fmt.Errorf("%w: %v", ErrMakepkgFailed, err)
	}

	return nil
}

// findArtifact locates the built package file for the version.
// The glob is anchored on the version so split debug packages and leftovers
// from older versions never match.
func findArtifact(dir, pkgName string, v release.Version) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pkgName+"-"+v.String()+"-*.pkg.tar.zst"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: for %s in %s", ErrNoArtifact, v, dir)
	}

	// Several pkgrels of the same version can linger; take the newest.
	newest := matches[0]
	newestTime := int64(0)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if info.ModTime().Unix() >= newestTime {
			newestTime = info.ModTime().Unix()
			newest = m
		}
	}

	return newest, nil
}

// Ensure Builder implements the release builder interface
var _ release.Builder = (*Builder)(nil)
