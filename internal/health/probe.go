package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a probe when the caller passes zero
const DefaultTimeout = 5000 * time.Millisecond

const maxProbeBody = 64 << 10

// Prober issues single health GETs. It never retries.
type Prober struct {
	client *http.Client
}

// NewProber creates a prober. A nil client gets a dedicated one; timeouts
// come from each Probe call.
func NewProber(client *http.Client) *Prober {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &Prober{client: client}
}

type probeBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Probe GETs target and classifies the answer. A 200 with an unreadable or
// missing status field counts as healthy.
func (p *Prober) Probe(ctx context.Context, target string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	start := time.Now()

	result := p.probe(ctx, target, timeout)
	result.ResponseTime = time.Since(start)
	return result
}

func (p *Prober) probe(parent context.Context, target string, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Unhealthy(fmt.Sprintf("Invalid health check URL: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "linkboost-healthcheck")

	resp, err := p.client.Do(req)
	if err != nil {
		return failure(parent, ctx, err, timeout)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProbeBody))
		return Unhealthy(fmt.Sprintf("HTTP %d", resp.StatusCode)).
			WithDetails(map[string]any{"statusCode": resp.StatusCode})
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return failure(parent, ctx, err, timeout)
	}

	var body probeBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Status == "" {
		return Healthy("Service responded with HTTP 200")
	}

	msg := body.Message
	switch strings.ToLower(body.Status) {
	case "degraded":
		if msg == "" {
			msg = "Service reports degraded"
		}
		return Degraded(msg)
	case "unhealthy", "error", "down":
		if msg == "" {
			msg = fmt.Sprintf("Service reports %s", body.Status)
		}
		return Unhealthy(msg)
	default:
		if msg == "" {
			msg = "Service is healthy"
		}
		return Healthy(msg)
	}
}

// failure turns a transport error into a result. The probe deadline and a
// cancelled caller are reported differently from socket errors.
func failure(parent, ctx context.Context, err error, timeout time.Duration) Result {
	if parent.Err() != nil {
		return Unhealthy("Health check cancelled")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || isTimeout(err) {
		return Unhealthy(fmt.Sprintf("Health check timed out after %dms", timeout.Milliseconds()))
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	return Unhealthy(fmt.Sprintf("Connection failed: %v", err))
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
