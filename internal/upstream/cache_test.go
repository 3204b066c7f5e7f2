package upstream

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestCacheSetAndGet tests the basic store and retrieve cycle
func TestCacheSetAndGet(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	if _, ok := cache.Get(); ok {
		t.Error("Expected empty cache before Set")
	}

	if err := cache.Set("0.13.11", DefaultFeedURL); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	version, ok := cache.Get()
	if !ok {
		t.Fatal("Expected cache hit after Set")
	}
	if version != "0.13.11" {
		t.Errorf("Expected '0.13.11', got %q", version)
	}
}

// TestCachePersistsAcrossInstances tests that entries survive a reload
func TestCachePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	if err := first.Set("0.13.11", DefaultFeedURL); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache reload failed: %v", err)
	}

	version, ok := second.Get()
	if !ok {
		t.Fatal("Expected cache hit after reload")
	}
	if version != "0.13.11" {
		t.Errorf("Expected '0.13.11', got %q", version)
	}

	entry, ok := second.Entry()
	if !ok {
		t.Fatal("Expected entry after reload")
	}
	if entry.Source != DefaultFeedURL {
		t.Errorf("Expected source %q, got %q", DefaultFeedURL, entry.Source)
	}
}

// TestCacheTTLExpiry tests that entries expire after the TTL
func TestCacheTTLExpiry(t *testing.T) {
	dir := t.TempDir()

	now := time.Now()
	current := now
	cache, err := NewCache(dir,
		WithTTL(time.Hour),
		WithNowFunc(func() time.Time { return current }),
	)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	if err := cache.Set("0.13.11", DefaultFeedURL); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Just inside the TTL
	current = now.Add(59 * time.Minute)
	if _, ok := cache.Get(); !ok {
		t.Error("Expected cache hit before TTL elapsed")
	}

	// Past the TTL
	current = now.Add(61 * time.Minute)
	if _, ok := cache.Get(); ok {
		t.Error("Expected cache miss after TTL elapsed")
	}

	// Entry is still readable regardless of TTL, for "(cached)" display
	if _, ok := cache.Entry(); !ok {
		t.Error("Expected Entry to return the stale record")
	}
}

// TestCacheCorruptedFile tests that a corrupted cache file yields an empty cache
func TestCacheCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probe-cache.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupted file: %v", err)
	}

	cache, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache should tolerate corruption, got: %v", err)
	}
	if _, ok := cache.Get(); ok {
		t.Error("Expected empty cache for corrupted file")
	}

	// Next Set overwrites the corrupted file
	if err := cache.Set("0.14.0", DefaultFeedURL); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	reloaded, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache reload failed: %v", err)
	}
	if version, ok := reloaded.Get(); !ok || version != "0.14.0" {
		t.Errorf("Expected '0.14.0' after overwrite, got %q (hit=%v)", version, ok)
	}
}

// TestCacheClear tests removal of the cached entry and its file
func TestCacheClear(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	if err := cache.Set("0.13.11", DefaultFeedURL); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := cache.Get(); ok {
		t.Error("Expected empty cache after Clear")
	}

	if _, err := os.Stat(filepath.Join(dir, "probe-cache.json")); !os.IsNotExist(err) {
		t.Error("Expected cache file to be removed")
	}
}

// TestCacheNoTempFileLeftBehind tests that the atomic write cleans up
func TestCacheNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	if err := cache.Set("0.13.11", DefaultFeedURL); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "probe-cache.json.tmp")); !os.IsNotExist(err) {
		t.Error("Expected temp file to be renamed away")
	}
}
