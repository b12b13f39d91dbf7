// internal/gateway/http.go
//
// Folio – Submission gateway: HTTP relay to the collection endpoint.
//
// Context
//   The portfolio site stores contact messages in a spreadsheet web app.
//   The relay POSTs the four-field payload there as one flat JSON object.
//   The endpoint answers opaquely (often with a redirect page or an HTML
//   body), so by default any completed HTTP exchange counts as delivered.
//
// Notes
//   •  No retries.  One accepted attempt is exactly one POST.
//   •  The client carries no timeout of its own; the form Controller bounds
//      each call through the context it passes in.
//
//------------------------------------------------------------------------------

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yanizio/folio/internal/form"
)

// DefaultContentType is sent when no content type is configured.
const DefaultContentType = "application/json"

// ErrNoEndpoint is returned by NewHTTP when the endpoint is empty.
var ErrNoEndpoint = errors.New("gateway: relay endpoint not configured")

// StatusError reports a non-2xx reply when StrictStatus is enabled.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway: endpoint replied %d %s", e.Code, http.StatusText(e.Code))
}

// HTTP relays payloads to one remote endpoint.
type HTTP struct {
	endpoint    string
	contentType string
	strict      bool
	client      *http.Client
}

// HTTPOption configures an HTTP gateway.
type HTTPOption func(*HTTP)

// WithContentType overrides the request Content-Type header.
func WithContentType(ct string) HTTPOption {
	return func(g *HTTP) {
		if ct != "" {
			g.contentType = ct
		}
	}
}

// WithStrictStatus makes non-2xx replies count as failures.
func WithStrictStatus(on bool) HTTPOption { return func(g *HTTP) { g.strict = on } }

// WithClient swaps the underlying http.Client.
func WithClient(c *http.Client) HTTPOption {
	return func(g *HTTP) {
		if c != nil {
			g.client = c
		}
	}
}

// NewHTTP returns a relay for endpoint.
func NewHTTP(endpoint string, opts ...HTTPOption) (*HTTP, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	g := &HTTP{
		endpoint:    endpoint,
		contentType: DefaultContentType,
		client:      &http.Client{},
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

// Endpoint returns the configured URL.
func (g *HTTP) Endpoint() string { return g.endpoint }

// Submit implements form.Gateway.
func (g *HTTP) Submit(ctx context.Context, p form.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("gateway: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", g.contentType)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: post %s: %w", g.endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if g.strict && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

var _ form.Gateway = (*HTTP)(nil)
