// Package report fetches Tempest HTML reports and extracts per-test
// failure records from them.
package report

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Document is a fetched report: the raw HTML plus the URL it came from.
type Document struct {
	URL  string
	HTML string
}

// Authenticator decorates an outgoing request with credentials. The
// negotiate/Kerberos handshake itself lives behind this interface; the
// fetcher only attaches whatever the strategy produces.
type Authenticator interface {
	Apply(req *http.Request) error
}

// TransportError wraps a network-level failure while fetching a report.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response from the report server. The upstream
// status code is preserved so callers can relay it.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error response %d while requesting %s", e.StatusCode, e.URL)
}

// TokenAuthenticator is the simplest credential strategy: a static bearer
// token. Negotiate/Kerberos strategies satisfy the same interface.
type TokenAuthenticator struct {
	Token string
}

func (a *TokenAuthenticator) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+a.Token)
	return nil
}

const maxReportBytes = 64 << 20

// Fetcher retrieves report documents over HTTP(S).
type Fetcher struct {
	client *http.Client
	auth   Authenticator
}

// NewFetcher creates a Fetcher. Reports live on internal CI hosts that
// commonly present self-signed certificate chains, so TLS verification is
// disabled on purpose; this trades chain validation for reachability
// inside the lab network. Redirects are followed by the default client
// policy. auth may be nil for anonymous fetches.
func NewFetcher(timeout time.Duration, auth Authenticator) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		auth: auth,
	}
}

// Fetch retrieves the document at url. Failures are typed: *TransportError
// for network problems, *StatusError for non-2xx responses.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, &TransportError{URL: url, Err: err}
	}

	if f.auth != nil {
		if err := f.auth.Apply(req); err != nil {
			return Document{}, &TransportError{URL: url, Err: fmt.Errorf("applying credentials: %w", err)}
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Document{}, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Document{}, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes))
	if err != nil {
		return Document{}, &TransportError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	return Document{URL: url, HTML: string(body)}, nil
}
