// Package anthropic sends analysis prompts to Claude over the Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"
	apiVersion     = "2023-06-01"

	// DefaultTimeout covers a full-size analysis completion
	DefaultTimeout = 300 * time.Second

	// maxErrorBody bounds how much of a failed response ends up in the error text
	maxErrorBody = 2048
)

// Client posts single requests to the Messages endpoint
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURL points the client at a proxy or a test server; empty keeps the default
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.endpoint = strings.TrimSuffix(url, "/") + messagesPath
		}
	}
}

// WithTimeout bounds one request; zero keeps DefaultTimeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the transport; the timeout set on it is kept
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: defaultBaseURL + messagesPath,
		http:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateMessage sends req and decodes the reply.
// Status codes >= 400 come back as *APIError when the body carries an error message.
func (c *Client) CreateMessage(ctx context.Context, req *MessagesRequest) (*MessagesResponse, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}

	var out MessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, req *MessagesRequest) (*http.Request, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	return httpReq, nil
}

// decodeError turns a failed response into an *APIError, or a plain error for non-JSON bodies
// such as proxy pages
func decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("failed to read error response (status %d): %w", resp.StatusCode, err)
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Detail.Message == "" {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	apiErr.StatusCode = resp.StatusCode
	apiErr.RequestID = resp.Header.Get("request-id")
	return &apiErr
}
