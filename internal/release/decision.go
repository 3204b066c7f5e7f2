package release

import "fmt"

// SkipReasonAlreadyReleased is the reason attached to a Skip decision when
// the latest upstream version is already published.
const SkipReasonAlreadyReleased = "already-released"

// Record associates a published version with an opaque artifact reference
// (release URL or tag name).
type Record struct {
	Version     Version
	ArtifactRef string
}

// Decision is the outcome of the release gate for one invocation.
type Decision int

const (
	// Skip means the latest upstream version is already published and the
	// build pipeline must not run
	Skip Decision = iota
	// Proceed means the latest upstream version is unpublished and should be
	// built and published
	Proceed
)

// String returns the decision name for status output.
func (d Decision) String() string {
	if d == Proceed {
		return "proceed"
	}
	return "skip"
}

// DecisionResult carries the decision together with the probed version and,
// for Skip, the reason. Produced once per invocation, never persisted.
type DecisionResult struct {
	Decision Decision
	Version  Version
	Reason   string
}

// String renders a one-line summary, e.g. "proceed(0.13.11)" or
// "skip(0.13.11): already-released".
func (r DecisionResult) String() string {
	if r.Decision == Proceed {
		return fmt.Sprintf("proceed(%s)", r.Version)
	}
	return fmt.Sprintf("skip(%s): %s", r.Version, r.Reason)
}

// IsReleased reports whether v is already present in the published set.
// Pure membership test on the exact triple.
func IsReleased(v Version, existing []Version) bool {
	for _, e := range existing {
		if v.Equal(e) {
			return true
		}
	}
	return false
}

// Decide is the gate's single branch point: Proceed iff latest is not among
// the already-published versions, Skip otherwise. Deterministic and total;
// an empty existing set always yields Proceed. This is what makes the
// otherwise non-idempotent build-and-publish pipeline safe to run on a
// schedule without republishing unchanged versions.
func Decide(latest Version, existing []Version) DecisionResult {
	if IsReleased(latest, existing) {
		return DecisionResult{Decision: Skip, Version: latest, Reason: SkipReasonAlreadyReleased}
	}
	return DecisionResult{Decision: Proceed, Version: latest}
}
