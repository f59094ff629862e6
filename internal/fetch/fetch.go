// Package fetch performs single-attempt downloads. Retry policy belongs to
// the caller.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/Norgate-AV/mpb/internal/version"
)

// DefaultTimeout bounds a whole request, body included
const DefaultTimeout = 5 * time.Minute

// Fetcher retrieves the content at a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is the default HTTP(S) Fetcher
type HTTPFetcher struct {
	client          *http.Client
	maxDownloadSize int64
	userAgent       string
}

// Option configures an HTTPFetcher
type Option func(*HTTPFetcher)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.client.Timeout = d
	}
}

// WithMaxDownloadSize rejects bodies larger than n bytes. Zero or less
// disables the limit.
func WithMaxDownloadSize(n int64) Option {
	return func(f *HTTPFetcher) {
		f.maxDownloadSize = n
	}
}

// WithTransport replaces the client's transport
func WithTransport(rt http.RoundTripper) Option {
	return func(f *HTTPFetcher) {
		f.client.Transport = rt
	}
}

// NewHTTPFetcher creates a fetcher backed by a pooled HTTP client
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = DefaultTimeout

	f := &HTTPFetcher{
		client:    client,
		userAgent: version.UserAgent(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch makes exactly one GET request. Connection failures, timeouts,
// non-2xx responses and oversized bodies are returned as *NetworkError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var body io.Reader = resp.Body
	if f.maxDownloadSize > 0 {
		body = io.LimitReader(resp.Body, f.maxDownloadSize)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	if f.maxDownloadSize > 0 {
		// Content-Length is not trusted
		if n, _ := io.Copy(io.Discard, resp.Body); n > 0 {
			return nil, &NetworkError{URL: url, Err: fmt.Errorf("artifact is %d bytes greater than the max download size of %d bytes", n, f.maxDownloadSize)}
		}
	}

	return data, nil
}
