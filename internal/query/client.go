// Package query talks to the BioExplorer research backend.
//
// The backend answers a question under a persona:
//
//	POST /api/query  {"query": "...", "role": "scientist"}
//	200              {"query": "...", "role": "scientist", "response": "..."}
//	400              {"error": "Query is required"}
//
// and reports liveness on GET /api/health.
package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Defaults.
const (
	DefaultEndpoint = "http://localhost:2121/api/query"
	DefaultTimeout  = 120 * time.Second

	healthyStatus = "healthy"
	maxBodyBytes  = 4 << 20
)

// Error describes a failed query or health check.
type Error struct {
	Op         string // "query" or "health"
	StatusCode int    // zero for transport failures
	Message    string // backend-supplied error text, if any
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": failed"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client is a query endpoint client. It is safe for concurrent use.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for endpoint, the full URL of the query route.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q is not an absolute URL", endpoint)
	}

	c := &Client{
		endpoint:   u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the query URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Port returns the endpoint port, including the scheme default when the
// URL does not name one.
func (c *Client) Port() string {
	if p := c.endpoint.Port(); p != "" {
		return p
	}
	if c.endpoint.Scheme == "https" {
		return "443"
	}
	return "80"
}

// HealthURL returns the health route, a sibling of the query route.
func (c *Client) HealthURL() string {
	u := *c.endpoint
	path := strings.TrimSuffix(u.Path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[:i]
	}
	u.Path = path + "/health"
	u.RawQuery = ""
	return u.String()
}

type queryRequest struct {
	Query string `json:"query"`
	Role  string `json:"role"`
}

// Query asks the backend text under role and returns the markdown answer.
// Every failure is returned as *Error.
func (c *Client) Query(ctx context.Context, text, role string) (string, error) {
	payload, err := json.Marshal(queryRequest{Query: text, Role: role})
	if err != nil {
		return "", &Error{Op: "query", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Op: "query", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return "", &Error{Op: "query", Err: err}
	}
	if status < 200 || status > 299 {
		return "", &Error{Op: "query", StatusCode: status, Message: errorText(body)}
	}

	res := gjson.GetBytes(body, "response")
	if !gjson.ValidBytes(body) || res.Type != gjson.String {
		return "", &Error{Op: "query", StatusCode: status, Err: errors.New("response body has no response text")}
	}
	return res.String(), nil
}

// Health checks GET /api/health. A nil error means the backend reported
// itself healthy.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.HealthURL(), http.NoBody)
	if err != nil {
		return &Error{Op: "health", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return &Error{Op: "health", Err: err}
	}
	if status != http.StatusOK {
		return &Error{Op: "health", StatusCode: status, Message: errorText(body)}
	}
	if got := gjson.GetBytes(body, "status").String(); got != healthyStatus {
		return &Error{Op: "health", StatusCode: status, Message: fmt.Sprintf("status %q", got)}
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func errorText(body []byte) string {
	if msg := gjson.GetBytes(body, "error").String(); msg != "" {
		return msg
	}
	return strings.TrimSpace(string(body))
}

// IsUnreachable reports whether err means no backend answered at all.
func IsUnreachable(err error) bool {
	var qe *Error
	if !errors.As(err, &qe) || qe.StatusCode != 0 {
		return false
	}
	var netErr net.Error
	var opErr *net.OpError
	return errors.As(err, &opErr) || (errors.As(err, &netErr) && netErr.Timeout())
}
