// Package release implements the gate that decides whether an upstream
// Claude Desktop version needs to be built and published.
package release

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Error variables for version parsing
var (
	// ErrInvalidVersion is returned when no well-formed version triple can be
	// extracted from an upstream string
	ErrInvalidVersion = errors.New("invalid or missing version")
)

// versionTripleRegex matches the first major.minor.patch triple in a string.
// Upstream embeds the version in installer filenames such as
// "AnthropicClaude-0.13.11-full.nupkg"; build qualifiers after the triple
// ("-full", "-arm64-full") are not captured.
var versionTripleRegex = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// Version is an upstream release version. Identity is the exact
// (major, minor, patch) triple; build qualifiers and package revision
// numbers are not part of identity.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion extracts a version from an arbitrary upstream string
// (installer filename, release tag, page content).
// A leading "v" on tags is tolerated because the triple regex skips it.
// Returns ErrInvalidVersion when the string contains no version triple.
func ParseVersion(s string) (Version, error) {
	matches := versionTripleRegex.FindStringSubmatch(s)
	if matches == nil {
		return Version{}, fmt.Errorf("%w: no version triple in %q", ErrInvalidVersion, s)
	}

	// The three capture groups are all-digit by construction; Atoi only
	// fails here on overflow-sized components.
	components := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(matches[i+1])
		if err != nil {
			return Version{}, fmt.Errorf("%w: component %q out of range", ErrInvalidVersion, matches[i+1])
		}
		components[i] = n
	}

	return Version{Major: components[0], Minor: components[1], Patch: components[2]}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
// Intended for tests and constants.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the dotted triple form, e.g. "0.13.11".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// TagName returns the git tag form used for published releases, e.g. "v0.13.11".
func (v Version) TagName() string {
	return "v" + v.String()
}

// Compare compares two versions component-wise.
// Returns -1 if v < other, 0 if equal, 1 if v > other.
func (v Version) Compare(other Version) int {
	pairs := [3][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// Equal reports whether two versions are the same triple.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// NewerThan reports whether v is strictly newer than other.
func (v Version) NewerThan(other Version) bool {
	return v.Compare(other) > 0
}
