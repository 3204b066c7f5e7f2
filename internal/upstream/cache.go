package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Error variables for cache errors
var (
	// ErrCacheCorrupted is returned when the cache file cannot be parsed
	ErrCacheCorrupted = errors.New("cache file is corrupted")
)

// DefaultCacheTTL is the default time-to-live for the cached probe result
const DefaultCacheTTL = time.Hour

// CacheEntry is the cached probe result.
type CacheEntry struct {
	// Version is the cached version string
	Version string `json:"version"`
	// Timestamp is when this entry was cached
	Timestamp time.Time `json:"timestamp"`
	// Source is the URL that was queried to get this version
	Source string `json:"source"`
}

// Cache persists the last probe result with TTL-based expiration. It keeps
// interactive `check` runs from hammering upstream; the release gate never
// reads it.
type Cache struct {
	entry *CacheEntry
	// TTL is the time-to-live for the cached entry
	TTL time.Duration
	// path is the file path where the cache is persisted
	path string
	// mu protects concurrent access to entry
	mu sync.RWMutex
	// nowFunc allows injecting time for testing
	nowFunc func() time.Time
}

// CacheOption is a functional option for configuring Cache
type CacheOption func(*Cache)

// WithTTL sets a custom TTL for the cache
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.TTL = ttl
	}
}

// WithNowFunc sets a custom time function for testing
func WithNowFunc(fn func() time.Time) CacheOption {
	return func(c *Cache) {
		c.nowFunc = fn
	}
}

// NewCache creates or loads the probe cache from disk.
// A missing or corrupted cache file yields an empty cache; the corrupted
// file is overwritten on the next Set.
func NewCache(configDir string, opts ...CacheOption) (*Cache, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		TTL:     DefaultCacheTTL,
		path:    filepath.Join(configDir, "probe-cache.json"),
		nowFunc: time.Now,
	}

	for _, opt := range opts {
		opt(cache)
	}

	if err := cache.load(); err != nil {
		if !os.IsNotExist(err) {
			cache.entry = nil
		}
	}

	return cache, nil
}

// load reads the cache from disk
func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
	}

	c.entry = &entry
	return nil
}

// Get returns the cached version if present and not expired.
func (c *Cache) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil {
		return "", false
	}
	if c.isExpired(*c.entry) {
		return "", false
	}

	return c.entry.Version, true
}

// Entry returns the full cache entry regardless of TTL.
func (c *Cache) Entry() (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil {
		return CacheEntry{}, false
	}
	return *c.entry, true
}

// isExpired checks if a cache entry has expired based on TTL
func (c *Cache) isExpired(entry CacheEntry) bool {
	age := c.nowFunc().Sub(entry.Timestamp)
	return age >= c.TTL
}

// Set stores a probe result with the current timestamp and persists it.
func (c *Cache) Set(version, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = &CacheEntry{
		Version:   version,
		Timestamp: c.nowFunc(),
		Source:    source,
	}

	return c.saveUnsafe()
}

// Clear removes the cached entry and persists the empty state.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = nil
	return os.RemoveAll(c.path)
}

// saveUnsafe persists the cache to disk without locking.
// Caller must hold the write lock. Writes go to a temp file first, then
// rename, so readers never see a partial file.
func (c *Cache) saveUnsafe() error {
	data, err := json.MarshalIndent(c.entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	return nil
}
