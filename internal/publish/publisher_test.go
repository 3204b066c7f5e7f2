package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/aurmate/claudepkg/internal/ghrelease"
	"github.com/aurmate/claudepkg/internal/release"
)

// fakeGitHub records the lookup, release creation, and asset upload calls.
// existingID simulates a release already carrying the version tag.
type fakeGitHub struct {
	existingID int64
	lookupErr  error
	createErr  error
	uploadErr  error

	createdVersion release.Version
	uploadedID     int64
	uploadedPath   string
	calls          []string
}

func (f *fakeGitHub) GetReleaseByTag(ctx context.Context, v release.Version) (int64, error) {
	f.calls = append(f.calls, "lookup")
	if f.lookupErr != nil {
		return 0, f.lookupErr
	}
	if f.existingID != 0 {
		return f.existingID, nil
	}
	return 0, ghrelease.ErrNotFound
}

func (f *fakeGitHub) CreateRelease(ctx context.Context, v release.Version) (int64, error) {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.createdVersion = v
	return 42, nil
}

func (f *fakeGitHub) UploadAsset(ctx context.Context, releaseID int64, artifactPath string) error {
	f.calls = append(f.calls, "upload")
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploadedID = releaseID
	f.uploadedPath = artifactPath
	return nil
}

type fakeAUR struct {
	pushErr error
	pushed  []release.Version
}

func (f *fakeAUR) Push(ctx context.Context, v release.Version) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushed = append(f.pushed, v)
	return nil
}

func v01311() release.Version {
	return release.Version{Major: 0, Minor: 13, Patch: 11}
}

// TestPublishOrder tests GitHub first, AUR second, with the asset attached
// to the created release
func TestPublishOrder(t *testing.T) {
	gh := &fakeGitHub{}
	aurFake := &fakeAUR{}
	pub := NewPublisher(gh, aurFake)

	artifact := "/tmp/claude-desktop-bin-0.13.11-1-x86_64.pkg.tar.zst"
	if err := pub.Publish(context.Background(), artifact, v01311()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	wantCalls := []string{"lookup", "create", "upload"}
	if len(gh.calls) != len(wantCalls) {
		t.Fatalf("GitHub calls = %v, want %v", gh.calls, wantCalls)
	}
	for i, c := range wantCalls {
		if gh.calls[i] != c {
			t.Errorf("calls[%d] = %q, want %q", i, gh.calls[i], c)
		}
	}
	if gh.uploadedID != 42 {
		t.Errorf("Asset attached to wrong release: %d", gh.uploadedID)
	}
	if gh.uploadedPath != artifact {
		t.Errorf("Uploaded wrong artifact: %q", gh.uploadedPath)
	}
	if len(aurFake.pushed) != 1 || !aurFake.pushed[0].Equal(v01311()) {
		t.Errorf("Expected one AUR push of 0.13.11, got %v", aurFake.pushed)
	}
}

// TestPublishReusesExistingRelease tests the re-publish path: a release
// already carrying the tag gets the asset, no duplicate create
func TestPublishReusesExistingRelease(t *testing.T) {
	gh := &fakeGitHub{existingID: 7}
	aurFake := &fakeAUR{}
	pub := NewPublisher(gh, aurFake)

	artifact := "/tmp/claude-desktop-bin-0.13.11-2-x86_64.pkg.tar.zst"
	if err := pub.Publish(context.Background(), artifact, v01311()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for _, c := range gh.calls {
		if c == "create" {
			t.Errorf("Unexpected create for an existing release, calls: %v", gh.calls)
		}
	}
	if gh.uploadedID != 7 {
		t.Errorf("Asset attached to wrong release: %d", gh.uploadedID)
	}
	if len(aurFake.pushed) != 1 {
		t.Errorf("Expected one AUR push, got %v", aurFake.pushed)
	}
}

// TestPublishCreateFailureAborts tests that nothing follows a failed create
func TestPublishCreateFailureAborts(t *testing.T) {
	gh := &fakeGitHub{createErr: errors.New("forbidden")}
	aurFake := &fakeAUR{}
	pub := NewPublisher(gh, aurFake)

	err := pub.Publish(context.Background(), "/tmp/pkg.tar.zst", v01311())
	if err == nil {
		t.Fatal("Expected error from failed create")
	}
	for _, c := range gh.calls {
		if c == "upload" {
			t.Errorf("Unexpected upload after failed create, calls: %v", gh.calls)
		}
	}
	if len(aurFake.pushed) != 0 {
		t.Error("Expected no AUR push after failed create")
	}
}

// TestPublishLookupFailureAborts tests that an API error during the lookup
// is not mistaken for a missing release
func TestPublishLookupFailureAborts(t *testing.T) {
	gh := &fakeGitHub{lookupErr: errors.New("server error")}
	aurFake := &fakeAUR{}
	pub := NewPublisher(gh, aurFake)

	err := pub.Publish(context.Background(), "/tmp/pkg.tar.zst", v01311())
	if err == nil {
		t.Fatal("Expected error from failed lookup")
	}
	for _, c := range gh.calls {
		if c == "create" || c == "upload" {
			t.Errorf("Unexpected %q after failed lookup", c)
		}
	}
	if len(aurFake.pushed) != 0 {
		t.Error("Expected no AUR push after failed lookup")
	}
}

// TestPublishUploadFailureSkipsAUR tests the half-published abort
func TestPublishUploadFailureSkipsAUR(t *testing.T) {
	gh := &fakeGitHub{uploadErr: errors.New("asset too large")}
	aurFake := &fakeAUR{}
	pub := NewPublisher(gh, aurFake)

	err := pub.Publish(context.Background(), "/tmp/pkg.tar.zst", v01311())
	if err == nil {
		t.Fatal("Expected error from failed upload")
	}
	if len(aurFake.pushed) != 0 {
		t.Error("Expected no AUR push after failed upload")
	}
}

// TestPublishAURFailureSurfaces tests error propagation from the AUR push
func TestPublishAURFailureSurfaces(t *testing.T) {
	gh := &fakeGitHub{}
	aurFake := &fakeAUR{pushErr: errors.New("permission denied")}
	pub := NewPublisher(gh, aurFake)

	err := pub.Publish(context.Background(), "/tmp/pkg.tar.zst", v01311())
	if err == nil {
		t.Fatal("Expected error from failed AUR push")
	}
}
