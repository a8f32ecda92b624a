package changelog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultRemoteTimeout is the default timeout for remote changelog fetches.
const DefaultRemoteTimeout = 10 * time.Second

// RemoteOption configures FetchRemote.
type RemoteOption func(*remoteOptions)

type remoteOptions struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	parse     []ParseOption
}

// WithHTTPClient sets the client used for the request.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(o *remoteOptions) {
		o.client = c
	}
}

// WithTimeout bounds the whole fetch. Zero disables the extra deadline.
func WithTimeout(d time.Duration) RemoteOption {
	return func(o *remoteOptions) {
		o.timeout = d
	}
}

// WithUserAgent sets the User-Agent header of the request.
func WithUserAgent(ua string) RemoteOption {
	return func(o *remoteOptions) {
		o.userAgent = ua
	}
}

// WithParseOptions passes options through to the parser, e.g. WithEncoding.
func WithParseOptions(opts ...ParseOption) RemoteOption {
	return func(o *remoteOptions) {
		o.parse = append(o.parse, opts...)
	}
}

// IsRemote reports whether location looks like an http(s) URL rather than a
// file path.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// FetchRemote downloads and parses a Markdown changelog. The body is streamed
// through the parser, so a malformed document fails at the offending line.
func FetchRemote(ctx context.Context, url string, opts ...RemoteOption) (*Changelog, error) {
	o := remoteOptions{client: http.DefaultClient, timeout: DefaultRemoteTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/markdown, text/plain;q=0.9, */*;q=0.1")
	if o.userAgent != "" {
		req.Header.Set("User-Agent", o.userAgent)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return LoadFromReader(resp.Body, o.parse...)
}
