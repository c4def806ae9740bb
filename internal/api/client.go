// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/gjson"
)

// DefaultEndpoint is the Linear GraphQL endpoint.
const DefaultEndpoint = "https://api.linear.app/graphql"

const defaultTimeout = 30 * time.Second

// ErrGraphQL marks a response that arrived intact but carried a populated
// errors array.
var ErrGraphQL = errors.New("GraphQL error")

// GraphQLError is returned when the server answers with errors. Errors holds
// the raw errors array.
type GraphQLError struct {
	Errors   json.RawMessage
	Messages []string
}

func (e *GraphQLError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("%s: %s", ErrGraphQL, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("%s: %s", ErrGraphQL, string(e.Errors))
}

func (e *GraphQLError) Unwrap() error {
	return ErrGraphQL
}

// HTTPError is a transport level failure: the server answered with a non-2xx
// status and no GraphQL errors.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

// Client posts GraphQL documents on behalf of one API key.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoint points the client somewhere other than DefaultEndpoint.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithHTTPClient replaces the pooled default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient returns a Client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = defaultTimeout

	c := &Client{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		http:     hc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Query posts a query or mutation document with optional variables and
// returns the whole response document.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	log.Debugf("POST %s", c.endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Linear reports GraphQL errors with a 400 as well as a 200, so look for
	// them before judging the status code.
	parsed := gjson.ParseBytes(doc)
	if errs := parsed.Get("errors"); errs.Exists() && populated(errs) {
		gqlErr := &GraphQLError{Errors: json.RawMessage(errs.Raw)}
		for _, e := range errs.Array() {
			if m := e.Get("message"); m.Exists() {
				gqlErr.Messages = append(gqlErr.Messages, m.String())
			}
		}
		return nil, gqlErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(doc), 512)}
	}

	if !json.Valid(doc) {
		return nil, errors.New("failed to decode response: invalid JSON")
	}

	return doc, nil
}

func populated(r gjson.Result) bool {
	switch {
	case r.Type == gjson.Null:
		return false
	case r.IsArray():
		return len(r.Array()) > 0
	case r.IsObject():
		return len(r.Map()) > 0
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
