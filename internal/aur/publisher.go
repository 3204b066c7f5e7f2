// Package aur pushes updated packaging recipes to the Arch User Repository.
package aur

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aurmate/claudepkg/internal/common/git"
	"github.com/aurmate/claudepkg/internal/common/logger"
	"github.com/aurmate/claudepkg/internal/pkgbuild"
	"github.com/aurmate/claudepkg/internal/release"
)

// DefaultRemoteTemplate is the AUR ssh remote; %s is the package base name.
const DefaultRemoteTemplate = "ssh://aur@aur.archlinux.org/%s.git"

var (
	// ErrPackageNameRequired is returned when no AUR package name is configured
	ErrPackageNameRequired = errors.New("AUR package name is required")
)

// Publisher updates the AUR repository of the package: clone, write the
// rendered PKGBUILD and .SRCINFO, commit, push. The AUR git protocol itself
// is git's problem; ssh credentials come from the environment or
// GIT_SSH_COMMAND.
type Publisher struct {
	// Package is the AUR package base name
	Package string
	// Remote is the git remote URL
	Remote string
	// User and Email identify the commit author
	User  string
	Email string
	// PkgRel is the package revision to publish; 1 for a fresh upstream
	// version, higher for recipe-only rebuilds
	PkgRel int
	// SSHCommand, when set, pins GIT_SSH_COMMAND for every git invocation
	SSHCommand string
	// DryRun stops before pushing
	DryRun bool
	// newRunner creates the git executor for a work dir, overridable for tests
	newRunner func(workDir string) git.Executor
}

// NewPublisher creates a publisher for the given AUR package.
func NewPublisher(pkg, remote, user, email string) (*Publisher, error) {
	if pkg == "" {
		return nil, ErrPackageNameRequired
	}
	if remote == "" {
		remote = fmt.Sprintf(DefaultRemoteTemplate, pkg)
	}

	return &Publisher{
		Package: pkg,
		Remote:  remote,
		User:    user,
		Email:   email,
		PkgRel:  1,
		newRunner: func(workDir string) git.Executor {
			return git.NewRunner(workDir)
		},
	}, nil
}

// SetRunnerFactory overrides git executor creation (useful for testing).
func (p *Publisher) SetRunnerFactory(fn func(workDir string) git.Executor) {
	p.newRunner = fn
}

// Push clones the AUR repo into a temp dir, writes the recipe for the
// version, commits and pushes. The clone is removed afterwards.
func (p *Publisher) Push(ctx context.Context, v release.Version) error {
	workDir, err := os.MkdirTemp("", "aur-"+p.Package+"-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	runner := p.newRunner(workDir)
	if p.SSHCommand != "" {
		runner.SetSSHCommand(p.SSHCommand)
	}

	logger.Debug("cloning %s into %s", p.Remote, workDir)
	if err := runner.Clone(p.Remote); err != nil {
		return fmt.Errorf("cloning AUR repository: %w", err)
	}

	recipe := &pkgbuild.Recipe{
		PkgName: p.Package,
		Version: v,
		PkgRel:  p.PkgRel,
	}
	if err := pkgbuild.WriteRecipe(workDir, recipe); err != nil {
		return fmt.Errorf("writing recipe: %w", err)
	}

	if err := runner.Add("PKGBUILD", ".SRCINFO"); err != nil {
		return fmt.Errorf("staging recipe: %w", err)
	}

	// Nothing staged means the AUR already carries this recipe
	entries, err := runner.Status()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logger.Info("AUR recipe for %s already up to date", v)
		return nil
	}

	message := fmt.Sprintf("upgpkg: %s %s-%d", p.Package, v, p.PkgRel)
	if err := runner.Commit(message, p.User, p.Email); err != nil {
		return fmt.Errorf("committing recipe: %w", err)
	}

	if p.DryRun {
		out, err := runner.PushDryRun()
		if err != nil {
			return err
		}
		logger.Info("dry-run push: %s", out)
		return nil
	}

	if err := runner.Push(); err != nil {
		return fmt.Errorf("pushing to AUR: %w", err)
	}

	logger.Info("pushed %s %s to AUR", p.Package, v)
	return nil
}
