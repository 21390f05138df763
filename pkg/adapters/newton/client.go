// Package newton implements ports.SymbolicMath against the Newton micro-service
// (https://newton.now.sh): GET /api/v2/{operation}/{expression}.
package newton

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aretw0/mathsolver/pkg/domain"
)

// DefaultBaseURL is the public Newton deployment.
const DefaultBaseURL = "https://newton.now.sh"

// maxBody caps how much of a response is read.
const maxBody = 64 << 10

// Client implements ports.SymbolicMath over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Newton client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type response struct {
	Operation  string `json:"operation"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Error      string `json:"error"`
}

// Compute applies operation to expression.
func (c *Client) Compute(ctx context.Context, operation, expression string) (domain.Computation, error) {
	fail := func(msg string, err error) (domain.Computation, error) {
		return domain.Computation{}, &domain.ComputeError{Operation: operation, Expression: expression, Message: msg, Err: err}
	}

	endpoint := fmt.Sprintf("%s/api/v2/%s/%s", c.baseURL, url.PathEscape(operation), url.PathEscape(expression))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail("invalid request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fail("failed to read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return fail("failed to decode response", err)
	}
	if out.Error != "" {
		return fail(out.Error, nil)
	}
	if strings.TrimSpace(out.Result) == "" {
		return fail("empty result", nil)
	}
	if out.Operation == "" {
		out.Operation = operation
	}
	if out.Expression == "" {
		out.Expression = expression
	}
	return domain.Computation{Operation: out.Operation, Expression: out.Expression, Result: out.Result}, nil
}
