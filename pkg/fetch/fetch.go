// Package fetch retrieves a web page's raw markup. It is a narrow
// collaborator: one blocking GET with browser-like headers, redirects
// followed, and every failure mode mapped to an *Error carrying a
// human-readable cause and, where possible, corrective guidance.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds the whole request, including redirects.
const DefaultTimeout = 15 * time.Second

// Error is a fetch failure: network trouble, timeout, paywall/auth
// rejection, not-found, or any other HTTP error.
type Error struct {
	URL    string
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// Client fetches pages over HTTP.
type Client struct {
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Client) {
		f.httpClient = c
	}
}

// NewClient creates a fetch client with the default timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the page at url and returns its body as text.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &Error{URL: url, Reason: fmt.Sprintf("invalid URL %q: %v", url, err)}
	}

	// Some recipe sites reject obviously non-browser clients.
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &Error{URL: url, Reason: fmt.Sprintf(
			"this page appears to be behind a paywall or requires login (%d); "+
				"save the page HTML from your browser and run: grocer add --html path/to/saved.html",
			resp.StatusCode)}
	case resp.StatusCode == http.StatusNotFound:
		return "", &Error{URL: url, Reason: fmt.Sprintf("page not found (404): %s", url)}
	case resp.StatusCode >= 400:
		return "", &Error{URL: url, Reason: fmt.Sprintf("HTTP %d error fetching %s", resp.StatusCode, url)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: url, Reason: fmt.Sprintf("failed to read response from %s: %v", url, err)}
	}
	return string(body), nil
}

// classifyTransportError distinguishes timeouts from connection failures so
// the user gets actionable guidance.
func classifyTransportError(url string, err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{URL: url, Reason: fmt.Sprintf("request to %s timed out", url)}
	}
	return &Error{URL: url, Reason: fmt.Sprintf("could not connect to %s; check your internet connection (%v)", url, err)}
}
