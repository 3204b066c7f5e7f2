// Package publish combines the GitHub Release upload and the AUR push into
// the single publisher consumed by the release gate.
package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/aurmate/claudepkg/internal/aur"
	"github.com/aurmate/claudepkg/internal/common/logger"
	"github.com/aurmate/claudepkg/internal/ghrelease"
	"github.com/aurmate/claudepkg/internal/release"
)

// ReleaseCreator is the GitHub half of publishing.
type ReleaseCreator interface {
	GetReleaseByTag(ctx context.Context, v release.Version) (int64, error)
	CreateRelease(ctx context.Context, v release.Version) (int64, error)
	UploadAsset(ctx context.Context, releaseID int64, artifactPath string) error
}

// AURPusher is the AUR half of publishing.
type AURPusher interface {
	Push(ctx context.Context, v release.Version) error
}

// Publisher publishes a built artifact: GitHub Release first, AUR second.
// The first failing step aborts; a half-published version is surfaced as an
// error and left for the operator (re-running the gate will Skip only once
// the GitHub release exists, which is also the gate's ledger).
type Publisher struct {
	github ReleaseCreator
	aur    AURPusher
}

// NewPublisher creates a publisher over the two collaborators.
func NewPublisher(github ReleaseCreator, aurPusher AURPusher) *Publisher {
	return &Publisher{
		github: github,
		aur:    aurPusher,
	}
}

// Publish uploads the artifact as a GitHub release asset then pushes the
// recipe to the AUR. A release already carrying the version tag is reused
// instead of created, so re-publishing a half-published version or a pkgrel
// bump picks up where the last run stopped. Implements release.Publisher.
func (p *Publisher) Publish(ctx context.Context, artifact string, v release.Version) error {
	releaseID, err := p.github.GetReleaseByTag(ctx, v)
	switch {
	case err == nil:
		logger.Info("reusing existing GitHub release %s (id %d)", v.TagName(), releaseID)
	case errors.Is(err, ghrelease.ErrNotFound):
		releaseID, err = p.github.CreateRelease(ctx, v)
		if err != nil {
			return fmt.Errorf("creating GitHub release %s: %w", v.TagName(), err)
		}
		logger.Debug("created GitHub release %s (id %d)", v.TagName(), releaseID)
	default:
		return fmt.Errorf("looking up GitHub release %s: %w", v.TagName(), err)
	}

	if err := p.github.UploadAsset(ctx, releaseID, artifact); err != nil {
		return fmt.Errorf("uploading asset to %s: %w", v.TagName(), err)
	}
	logger.Info("uploaded %s to GitHub release %s", artifact, v.TagName())

	if err := p.aur.Push(ctx, v); err != nil {
		return fmt.Errorf("pushing %s to AUR: %w", v, err)
	}

	return nil
}

// Ensure Publisher implements the release publisher interface
var _ release.Publisher = (*Publisher)(nil)

// Ensure the concrete collaborators satisfy the halves
var (
	_ ReleaseCreator = (*ghrelease.Client)(nil)
	_ AURPusher      = (*aur.Publisher)(nil)
)
