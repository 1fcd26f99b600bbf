// Package client is the REST client for the clinicbook API. It submits
// bookings built from a pkg/booking selection, fetches and dispatches actions
// on appointments, and downloads profile images. All calls take a
// context.Context and return explicit errors; see errors.go for the taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clinicbook/clinicbook/pkg/api"
)

const defaultTimeout = 15 * time.Second

// Session is the authenticated identity threaded through client calls.
// Zero value means unauthenticated; public endpoints still work.
type Session struct {
	Token string
	Role  string
}

// Client talks to a clinicbook server. Safe for concurrent use once built.
type Client struct {
	baseURL string
	http    *http.Client
	session Session
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSession sets the initial session.
func WithSession(s Session) Option {
	return func(c *Client) { c.session = s }
}

// New builds a Client against baseURL (e.g. "http://localhost:8080/api/v1").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSession swaps the session after a login.
func (c *Client) SetSession(s Session) { c.session = s }

// Session returns the current session.
func (c *Client) Session() Session { return c.session }

// do issues a request and decodes the response envelope. body may be nil;
// non-nil bodies are sent as JSON. Non-2xx statuses become *APIError with the
// server message when the body held an envelope.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*api.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env api.Response
	if len(raw) > 0 {
		// A malformed body on an error status should not mask the status.
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

// get fetches path and decodes the envelope's obj into out when out != nil.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	env, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	if out == nil || len(env.Obj) == 0 {
		return nil
	}
	if err := env.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
