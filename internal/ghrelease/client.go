// Package ghrelease queries and publishes GitHub releases. The release list
// doubles as the ledger of already-published versions.
package ghrelease

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aurmate/claudepkg/internal/common/logger"
	"github.com/aurmate/claudepkg/internal/release"
)

var (
	// ErrRateLimit indicates GitHub API rate limit exceeded
	ErrRateLimit = errors.New("GitHub API rate limit exceeded")
	// ErrNotFound indicates the repository was not found
	ErrNotFound = errors.New("repository not found")
	// ErrAPIError indicates a general GitHub API error
	ErrAPIError = errors.New("GitHub API error")
	// ErrTokenRequired indicates a publish was attempted without a token
	ErrTokenRequired = errors.New("GitHub token required for publishing")
)

// Client handles communication with the GitHub Releases API
type Client struct {
	BaseURL    string
	UploadURL  string
	Repository string // org/repo hosting the built packages
	UserAgent  string
	Token      string // personal access token (optional for listing)
	HTTPClient *http.Client
	CacheDir   string
	CacheTTL   time.Duration
}

// releaseEntry is the subset of the GitHub release object we consume
type releaseEntry struct {
	ID      int64  `json:"id"`
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
	Draft   bool   `json:"draft"`
}

// cacheEntry represents a cached release listing
type cacheEntry struct {
	Tags      []string  `json:"tags"`
	Timestamp time.Time `json:"timestamp"`
}

// NewClient creates a new GitHub Releases client for the given org/repo.
func NewClient(repository, token string) *Client {
	return &Client{
		BaseURL:    "https://api.github.com",
		UploadURL:  "https://uploads.github.com",
		Repository: repository,
		UserAgent:  "claudepkg/1.0",
		Token:      token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		CacheTTL: 24 * time.Hour,
	}
}

// SetCacheDir enables on-disk caching of the release listing.
// Only interactive commands should use this; the release gate always
// queries live.
func (c *Client) SetCacheDir(dir string) error {
	if dir == "" {
		return nil
	}
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, dir[1:])
	}
	c.CacheDir = dir
	return os.MkdirAll(dir, 0755)
}

// ListPublishedVersions returns the versions of all published releases.
// Tags that do not embed a version triple and draft releases are skipped.
// Implements release.Ledger.
func (c *Client) ListPublishedVersions(ctx context.Context) ([]release.Version, error) {
	tags, err := c.listReleaseTags(ctx)
	if err != nil {
		return nil, err
	}

	versions := make([]release.Version, 0, len(tags))
	for _, tag := range tags {
		v, err := release.ParseVersion(tag)
		if err != nil {
			logger.Debug("ignoring release tag %q: %v", tag, err)
			continue
		}
		versions = append(versions, v)
	}

	return versions, nil
}

// listReleaseTags fetches all release tag names, via the cache when enabled.
func (c *Client) listReleaseTags(ctx context.Context) ([]string, error) {
	if c.CacheDir != "" {
		if tags, ok := c.loadFromCache(); ok {
			return tags, nil
		}
	}

	tags, err := c.fetchReleaseTags(ctx)
	if err != nil {
		return nil, err
	}

	if c.CacheDir != "" {
		c.saveToCache(tags)
	}

	return tags, nil
}

// fetchReleaseTags pages through /releases collecting tag names
func (c *Client) fetchReleaseTags(ctx context.Context) ([]string, error) {
	var tags []string

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/repos/%s/releases?per_page=100&page=%d", c.BaseURL, c.Repository, page)

		body, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		var entries []releaseEntry
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse GitHub response: %w", err)
		}

		for _, entry := range entries {
			if entry.Draft {
				continue
			}
			tags = append(tags, entry.TagName)
		}

		if len(entries) < 100 {
			break
		}
	}

	return tags, nil
}

// get performs an authenticated GET against the GitHub API
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	return io.ReadAll(resp.Body)
}

// setHeaders applies the standard GitHub API headers
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

// checkStatus maps GitHub error responses to sentinel errors
func (c *Client) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusForbidden:
		resetHeader := resp.Header.Get("X-RateLimit-Reset")
		return fmt.Errorf("%w: rate limit resets at %s", ErrRateLimit, resetHeader)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, c.Repository)
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrAPIError, resp.StatusCode, string(body))
	}
	return nil
}

// GetReleaseByTag returns the ID of the published release carrying the
// version tag. Returns ErrNotFound when no such release exists.
func (c *Client) GetReleaseByTag(ctx context.Context, v release.Version) (int64, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/releases/tags/%s", c.BaseURL, c.Repository, v.TagName())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return 0, err
	}

	var entry releaseEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		return 0, fmt.Errorf("failed to parse GitHub response: %w", err)
	}

	return entry.ID, nil
}

// CreateRelease creates a release for the version tag and returns its ID.
// Requires a token.
func (c *Client) CreateRelease(ctx context.Context, v release.Version) (int64, error) {
	if c.Token == "" {
		return 0, ErrTokenRequired
	}

	payload := map[string]interface{}{
		"tag_name": v.TagName(),
		"name":     v.TagName(),
		"body":     fmt.Sprintf("Claude Desktop %s repackaged for Arch Linux.", v),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	endpoint := fmt.Sprintf("%s/repos/%s/releases", c.BaseURL, c.Repository)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("%w: creating release: status %d: %s", ErrAPIError, resp.StatusCode, string(body))
	}

	var created releaseEntry
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("failed to parse created release: %w", err)
	}

	return created.ID, nil
}

// UploadAsset uploads the artifact file as a release asset.
func (c *Client) UploadAsset(ctx context.Context, releaseID int64, artifactPath string) error {
	if c.Token == "" {
		return ErrTokenRequired
	}

	f, err := os.Open(artifactPath)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	name := url.QueryEscape(filepath.Base(artifactPath))
	endpoint := fmt.Sprintf("%s/repos/%s/releases/%d/assets?name=%s", c.UploadURL, c.Repository, releaseID, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, f)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = info.Size()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: uploading asset: status %d: %s", ErrAPIError, resp.StatusCode, string(body))
	}

	return nil
}

// cacheFilePath returns the cache file path for the release listing
func (c *Client) cacheFilePath() string {
	return filepath.Join(c.CacheDir, strings.ReplaceAll(c.Repository, "/", "_")+".json")
}

// loadFromCache attempts to load the release listing from cache
func (c *Client) loadFromCache() ([]string, bool) {
	data, err := os.ReadFile(c.cacheFilePath())
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if time.Since(entry.Timestamp) > c.CacheTTL {
		return nil, false
	}

	return entry.Tags, true
}

// saveToCache saves the release listing to cache
func (c *Client) saveToCache(tags []string) {
	entry := cacheEntry{
		Tags:      tags,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_ = os.WriteFile(c.cacheFilePath(), data, 0644)
}

// Ensure Client implements the release ledger interface
var _ release.Ledger = (*Client)(nil)
