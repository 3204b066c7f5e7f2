package git

import (
	"errors"
	"testing"
)

func TestMockRunnerDefaults(t *testing.T) {
	mock := NewMockRunner("/tmp/aur-clone")

	if mock.WorkDir() != "/tmp/aur-clone" {
		t.Errorf("expected workDir '/tmp/aur-clone', got %q", mock.WorkDir())
	}

	if err := mock.Clone("ssh://aur@aur.archlinux.org/claude-desktop-bin.git"); err != nil {
		t.Errorf("expected nil from default Clone, got %v", err)
	}
	if err := mock.Add("PKGBUILD"); err != nil {
		t.Errorf("expected nil from default Add, got %v", err)
	}
	entries, err := mock.Status()
	if err != nil || entries != nil {
		t.Errorf("expected empty default Status, got %v, %v", entries, err)
	}
}

func TestMockRunnerRecordsCalls(t *testing.T) {
	mock := NewMockRunner("")

	_ = mock.Clone("remote")
	_ = mock.Add("PKGBUILD")
	_, _ = mock.Status()
	_ = mock.Commit("msg", "user", "email")
	_ = mock.Push()
	_, _ = mock.PushDryRun()

	want := []string{"clone", "add", "status", "commit", "push", "push-dry-run"}
	if len(mock.Calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), mock.Calls)
	}
	for i, c := range want {
		if mock.Calls[i] != c {
			t.Errorf("Calls[%d] = %q, want %q", i, mock.Calls[i], c)
		}
	}
}

func TestMockRunnerCustomFuncs(t *testing.T) {
	mock := NewMockRunner("")
	wantErr := errors.New("clone refused")
	mock.CloneFunc = func(remote string) error {
		if remote != "expected-remote" {
			t.Errorf("unexpected remote %q", remote)
		}
		return wantErr
	}

	if err := mock.Clone("expected-remote"); !errors.Is(err, wantErr) {
		t.Errorf("expected configured error, got %v", err)
	}
}
