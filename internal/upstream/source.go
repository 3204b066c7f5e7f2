package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aurmate/claudepkg/internal/common/logger"
	"github.com/aurmate/claudepkg/internal/release"
)

// maxResponseBytes caps how much of an upstream response is read.
// The RELEASES feed is a few hundred bytes; download pages are larger but
// never legitimately exceed this.
const maxResponseBytes = 4 << 20

// HTTPSource fetches the upstream version string over HTTP.
// It implements release.Source: the fetched content is run through the
// configured parser and the resulting raw string handed back to the probe.
type HTTPSource struct {
	cfg    *Config
	client *RetryableHTTPClient
}

// HTTPSourceOption is a functional option for configuring HTTPSource
type HTTPSourceOption func(*HTTPSource)

// WithHTTPClient sets a custom retryable HTTP client
func WithHTTPClient(client *RetryableHTTPClient) HTTPSourceOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// NewHTTPSource creates a source over the given probe configuration.
func NewHTTPSource(cfg *Config, opts ...HTTPSourceOption) *HTTPSource {
	s := &HTTPSource{
		cfg:    cfg,
		client: NewRetryableHTTPClient(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns a human-readable name for this source
func (s *HTTPSource) Name() string {
	return s.cfg.URL
}

// FetchLatestVersionString fetches and parses the upstream content.
// The primary probe is tried first, then the fallback if configured; the
// primary error is reported when both fail.
func (s *HTTPSource) FetchLatestVersionString(ctx context.Context) (string, error) {
	raw, primaryErr := s.fetchAndParse(ctx, &s.cfg.ProbeConfig)
	if primaryErr == nil {
		return raw, nil
	}

	if s.cfg.Fallback != nil {
		logger.Debug("primary probe failed (%v), trying fallback %s", primaryErr, s.cfg.Fallback.URL)
		raw, err := s.fetchAndParse(ctx, s.cfg.Fallback)
		if err == nil {
			return raw, nil
		}
	}

	return "", primaryErr
}

// fetchAndParse fetches one probe URL and extracts the version string.
func (s *HTTPSource) fetchAndParse(ctx context.Context, probe *ProbeConfig) (string, error) {
	parser, err := NewParser(probe)
	if err != nil {
		return "", fmt.Errorf("creating parser: %w", err)
	}

	content, err := s.fetchContent(ctx, probe)
	if err != nil {
		return "", err
	}

	// The content was fetched; failing to find a version in it is an
	// invalid-version failure, not an unreachable source.
	raw, err := parser.Parse(content)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", probe.URL, errors.Join(release.ErrInvalidVersion, err))
	}

	return raw, nil
}

// fetchContent fetches content from a probe URL using the retrying client.
func (s *HTTPSource) fetchContent(ctx context.Context, probe *ProbeConfig) ([]byte, error) {
	resp, err := s.client.GetWithHeadersContext(ctx, probe.URL, probe.Headers)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request returned status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return content, nil
}
