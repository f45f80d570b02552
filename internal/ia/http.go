package ia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPStatusError captures non-2xx upstream responses. Its message starts
// with "<code>: <status text>" followed by the response body, the shape the
// health checker parses for rate-limit wait hints.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("%d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += "\n" + e.Body
	}
	return msg
}

// Client is the HTTP implementation of Api.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL points the client at a service instance.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(strings.TrimSpace(u), "/") }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client with sane defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    "http://localhost:8080",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) CheckHealth(ctx context.Context, detail bool) error {
	url := c.baseURL + "/api/health"
	if detail {
		url += "?detail=true"
	}
	return c.doJSON(ctx, http.MethodGet, url, nil, nil)
}

func (c *Client) Login(ctx context.Context) (*LoggedUser, error) {
	var out LoggedUser
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/login", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/logout", nil, nil)
}

type codePayload struct {
	Code string `json:"code"`
}

type explainResponse struct {
	Explanation string `json:"explanation"`
}

func (c *Client) ExplainCode(ctx context.Context, code string) (string, error) {
	var out explainResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/explain", codePayload{Code: code}, &out); err != nil {
		return "", err
	}
	return out.Explanation, nil
}

func (c *Client) Typify(ctx context.Context, code string) (*TypifyResponse, error) {
	var out TypifyResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/typify", codePayload{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response from %s: %w", url, err)
	}
	c.log.Debug("ia call",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPStatusError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Body:       strings.TrimSpace(string(data)),
		}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response from %s: %w", url, err)
		}
	}
	return nil
}
