package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/aurmate/claudepkg/internal/common/logger"
)

// Error variables surfaced verbatim from the external collaborators
var (
	// ErrBuildFailed is returned when the packaging toolchain fails
	ErrBuildFailed = errors.New("build failed")
	// ErrPublishFailed is returned when publishing the artifact fails
	ErrPublishFailed = errors.New("publish failed")
)

// Ledger lists the versions that have already been published.
// Mutated only by the Publisher collaborator after a successful publish;
// the gate itself is read-only.
type Ledger interface {
	// ListPublishedVersions returns all published versions
	ListPublishedVersions(ctx context.Context) ([]Version, error)
}

// Builder invokes the packaging toolchain for a version and returns the
// path of the produced artifact.
type Builder interface {
	Build(ctx context.Context, v Version) (artifact string, err error)
}

// Publisher uploads a built artifact for a version.
type Publisher interface {
	Publish(ctx context.Context, artifact string, v Version) error
}

// State is the gate's position in its run.
// Probing → Deciding → {Skipped | Dispatched}, with Failed terminal on any
// collaborator error.
type State int

const (
	StateProbing State = iota
	StateDeciding
	StateSkipped
	StateDispatched
	StateFailed
)

var stateNames = map[State]string{
	StateProbing:    "probing",
	StateDeciding:   "deciding",
	StateSkipped:    "skipped",
	StateDispatched: "dispatched",
	StateFailed:     "failed",
}

// String returns the state name.
func (s State) String() string {
	return stateNames[s]
}

// Outcome summarizes one gate invocation for status reporting.
type Outcome struct {
	// State is the terminal state of the run
	State State
	// Version is the probed upstream version (zero when probing failed)
	Version Version
	// Result is the gate decision (valid once State passed Deciding)
	Result DecisionResult
	// Artifact is the built artifact path when State is Dispatched
	Artifact string
}

// Gate wires the version probe, the release ledger, and the decision into
// one invocation, dispatching to the build and publish collaborators only
// when the decision is Proceed.
type Gate struct {
	source    Source
	ledger    Ledger
	builder   Builder
	publisher Publisher
	// dryRun stops after the decision without dispatching
	dryRun bool
}

// GateOption is a functional option for configuring Gate
type GateOption func(*Gate)

// WithDryRun makes the gate report the decision without dispatching.
func WithDryRun(dry bool) GateOption {
	return func(g *Gate) {
		g.dryRun = dry
	}
}

// NewGate creates a gate over the given collaborators.
// builder and publisher may be nil for decision-only use (the check command);
// Run then behaves as if dry-run was set.
func NewGate(source Source, ledger Ledger, builder Builder, publisher Publisher, opts ...GateOption) *Gate {
	g := &Gate{
		source:    source,
		ledger:    ledger,
		builder:   builder,
		publisher: publisher,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run executes one invocation of the gate. Any probe or ledger failure is
// fatal for the invocation; retries are the external scheduler's concern.
// No partial state is persisted on failure.
func (g *Gate) Run(ctx context.Context) (*Outcome, error) {
	outcome := &Outcome{State: StateProbing}

	latest, err := Probe(ctx, g.source)
	if err != nil {
		outcome.State = StateFailed
		return outcome, err
	}
	outcome.Version = latest
	logger.Debug("probed upstream version %s from %s", latest, g.source.Name())

	outcome.State = StateDeciding
	existing, err := g.ledger.ListPublishedVersions(ctx)
	if err != nil {
		outcome.State = StateFailed
		return outcome, fmt.Errorf("querying release ledger: %w", err)
	}
	logger.Debug("ledger lists %d published version(s)", len(existing))

	outcome.Result = Decide(latest, existing)
	if outcome.Result.Decision == Skip {
		outcome.State = StateSkipped
		return outcome, nil
	}

	if g.dryRun || g.builder == nil || g.publisher == nil {
		outcome.State = StateSkipped
		return outcome, nil
	}

	artifact, err := g.builder.Build(ctx, latest)
	if err != nil {
		outcome.State = StateFailed
		return outcome, fmt.Errorf("%w: version %s: %v", ErrBuildFailed, latest, err)
	}
	outcome.Artifact = artifact
	logger.Info("built artifact %s", artifact)

	if err := g.publisher.Publish(ctx, artifact, latest); err != nil {
		outcome.State = StateFailed
		return outcome, fmt.Errorf("%w: version %s: %v", ErrPublishFailed, latest, err)
	}

	outcome.State = StateDispatched
	return outcome, nil
}

// StatusLine renders the single per-invocation status line.
func (o *Outcome) StatusLine() string {
	switch o.State {
	case StateSkipped:
		if o.Result.Decision == Proceed {
			return fmt.Sprintf("version %s: update available (not dispatched)", o.Version)
		}
		return fmt.Sprintf("version %s: %s", o.Version, o.Result)
	case StateDispatched:
		return fmt.Sprintf("version %s: published %s", o.Version, o.Artifact)
	case StateFailed:
		if (o.Version == Version{}) {
			return "probe failed"
		}
		return fmt.Sprintf("version %s: failed", o.Version)
	default:
		return stateNames[o.State]
	}
}
