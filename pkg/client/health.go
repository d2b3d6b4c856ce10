package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Health runs the aggregate health check. A 503 still returns the report
// alongside an *APIError so callers can show which dependency failed.
func (c *Client) Health(ctx context.Context) (*HealthReport, error) {
	status, raw, err := c.send(ctx, http.MethodGet, "/health", "", nil)
	if err != nil {
		return nil, err
	}

	var report HealthReport
	if err := json.Unmarshal(raw, &report); err != nil {
		if status != http.StatusOK {
			return nil, &APIError{StatusCode: status, Message: http.StatusText(status)}
		}
		return nil, fmt.Errorf("failed to parse health report: %w", err)
	}
	if status != http.StatusOK {
		return &report, &APIError{StatusCode: status, Message: "service " + report.Status}
	}
	return &report, nil
}

// Liveness checks that the API process is up
func (c *Client) Liveness(ctx context.Context) (*HealthResponse, error) {
	status, raw, err := c.send(ctx, http.MethodGet, "/healthz", "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &APIError{StatusCode: status, Message: http.StatusText(status)}
	}

	var health HealthResponse
	if err := json.Unmarshal(raw, &health); err != nil {
		return nil, fmt.Errorf("failed to parse liveness response: %w", err)
	}
	return &health, nil
}

// Ping is a simple connectivity test
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Liveness(ctx)
	return err
}
