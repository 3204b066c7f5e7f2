package release

import (
	"context"
	"errors"
	"fmt"
)

// Error variables for probing
var (
	// ErrSourceUnavailable is returned when the upstream version source could
	// not be fetched (network or tool failure)
	ErrSourceUnavailable = errors.New("upstream version source unavailable")
)

// Source is a collaborator capable of returning a raw string that embeds the
// latest upstream version (a fetched filename, feed line, or page content).
type Source interface {
	// FetchLatestVersionString returns the raw upstream string.
	FetchLatestVersionString(ctx context.Context) (string, error)

	// Name returns a human-readable name for this source
	Name() string
}

// Probe fetches the latest upstream version through the given source.
// A fetch failure is reported as ErrSourceUnavailable and a fetched string
// without a version triple as ErrInvalidVersion; in both cases the caller
// must not proceed to build. A source that fetched its content but found no
// version in it reports ErrInvalidVersion itself, which is kept as-is.
// Probe has no side effects.
func Probe(ctx context.Context, src Source) (Version, error) {
	raw, err := src.FetchLatestVersionString(ctx)
	if err != nil {
		if errors.Is(err, ErrInvalidVersion) {
			return Version{}, fmt.Errorf("probing %s: %w", src.Name(), err)
		}
		return Version{}, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, src.Name(), err)
	}

	v, err := ParseVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("probing %s: %w", src.Name(), err)
	}

	return v, nil
}
