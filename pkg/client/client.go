// Package client is a Go client for the LinkBoost API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client is the main LinkBoost API client
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string // JWT token for authenticated requests
}

// Config holds the client configuration
type Config struct {
	BaseURL    string        // API base URL (e.g., "https://api.linkboost.io")
	Timeout    time.Duration // HTTP client timeout (default: 30s)
	HTTPClient *http.Client  // Optional custom HTTP client
}

// NewClient creates a new LinkBoost API client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken sets the JWT token for authenticated requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// GetToken returns the current JWT token
func (c *Client) GetToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the {success, data, error} wrapper every API response uses
type envelope struct {
	Success  bool                   `json:"success"`
	Data     json.RawMessage        `json:"data,omitempty"`
	Metadata json.RawMessage        `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Code     string                 `json:"code,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// doRequest performs an enveloped request with the stored token
func (c *Client) doRequest(ctx context.Context, method, path string, body, data interface{}) error {
	_, err := c.do(ctx, method, path, c.GetToken(), body, data, nil)
	return err
}

// do performs an enveloped request. data and metadata receive the matching
// envelope fields when non-nil. A 2xx with success:false is an *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body, data, metadata interface{}) (int, error) {
	status, raw, err := c.send(ctx, method, path, token, body)
	if err != nil {
		return status, err
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if status >= 400 {
				return status, &APIError{StatusCode: status, Message: strings.TrimSpace(string(raw))}
			}
			return status, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	if status >= 400 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(status)
		}
		return status, &APIError{StatusCode: status, Code: env.Code, Message: msg, Details: env.Details}
	}

	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return status, fmt.Errorf("failed to parse response data: %w", err)
		}
	}
	if metadata != nil && len(env.Metadata) > 0 {
		if err := json.Unmarshal(env.Metadata, metadata); err != nil {
			return status, fmt.Errorf("failed to parse response metadata: %w", err)
		}
	}
	return status, nil
}

// send performs the HTTP exchange and returns the status and raw body
func (c *Client) send(ctx context.Context, method, path, token string, body interface{}) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// Metrics returns the metrics service
func (c *Client) Metrics() *MetricsService {
	return &MetricsService{client: c}
}
