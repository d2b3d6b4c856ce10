// Package gateway relays API requests to upstream services and passes their
// status and JSON body back unchanged.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/pratik-mahalle/linkboost/internal/pkg/errors"
	"github.com/pratik-mahalle/linkboost/internal/pkg/logger"
	"github.com/pratik-mahalle/linkboost/internal/pkg/metrics"
	"github.com/pratik-mahalle/linkboost/internal/pkg/utils"
)

const (
	// DefaultTimeout applies when Config.Timeout is zero
	DefaultTimeout = 30 * time.Second

	maxRequestBody  = 1 << 20
	maxResponseBody = 10 << 20
)

// Proxy outcomes recorded in metrics
const (
	OutcomeOK              = "ok"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeTimeout         = "timeout"
	OutcomeInvalidResponse = "invalid_response"
)

// Config holds the proxy configuration
type Config struct {
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Target is where one inbound request is sent
type Target struct {
	// Name labels metrics and logs ("analytics", "gateway")
	Name    string
	BaseURL string
	Path    string
	Query   url.Values
}

// URL joins the base URL, the cleaned path and the re-encoded query
func (t Target) URL() (string, error) {
	u, err := url.Parse(t.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid upstream base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid upstream base URL: %q", t.BaseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path.Clean("/"+t.Path)
	u.RawPath = ""
	u.RawQuery = t.Query.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// Proxy forwards requests one at a time, without retries
type Proxy struct {
	client  *http.Client
	timeout time.Duration
	logger  *logger.Logger
	tracer  trace.Tracer
}

// New creates a proxy. A nil tracer disables spans.
func New(cfg Config, log *logger.Logger, tracer trace.Tracer) *Proxy {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("gateway")
	}
	return &Proxy{
		client:  client,
		timeout: cfg.Timeout,
		logger:  log,
		tracer:  tracer,
	}
}

// Timeout returns the per-request upstream timeout
func (p *Proxy) Timeout() time.Duration {
	return p.timeout
}

// Forward sends r to target and writes the upstream response to w.
// Only Authorization, X-Request-ID and the JSON content headers travel upstream.
func (p *Proxy) Forward(w http.ResponseWriter, r *http.Request, target Target) {
	start := time.Now()
	log := p.logger.WithFields(map[string]interface{}{
		"upstream":   target.Name,
		"method":     r.Method,
		"path":       target.Path,
		"request_id": r.Header.Get("X-Request-ID"),
	})

	upstreamURL, err := target.URL()
	if err != nil {
		log.WithError(err).Error("Upstream misconfigured")
		p.fail(w, target.Name, OutcomeUpstreamError, start, err)
		return
	}

	body, appErr := readBody(r)
	if appErr != nil {
		_ = utils.WriteError(w, appErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	ctx, span := p.tracer.Start(ctx, "gateway.forward",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(r.Method),
			semconv.URLPath(target.Path),
			attribute.String("gateway.upstream", target.Name),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, r.Method, upstreamURL, bodyReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request build failed")
		log.WithError(err).Error("Failed to build upstream request")
		p.fail(w, target.Name, OutcomeUpstreamError, start, err)
		return
	}
	span.SetAttributes(semconv.ServerAddress(req.URL.Hostname()))
	copyHeaders(req.Header, r.Header)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := p.client.Do(req)
	if err != nil {
		outcome := OutcomeUpstreamError
		if ctx.Err() == context.DeadlineExceeded {
			outcome = OutcomeTimeout
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		log.WithError(err).Error("Upstream request failed")
		p.fail(w, target.Name, outcome, start, err)
		return
	}
	defer resp.Body.Close()

	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, OutcomeUpstreamError)
		log.WithError(err).Error("Failed to read upstream response")
		p.fail(w, target.Name, OutcomeUpstreamError, start, err)
		return
	}

	if len(bytes.TrimSpace(payload)) > 0 && !json.Valid(payload) {
		err := fmt.Errorf("upstream returned non-JSON body with status %d", resp.StatusCode)
		span.SetStatus(codes.Error, OutcomeInvalidResponse)
		log.WithError(err).Error("Upstream response rejected")
		p.fail(w, target.Name, OutcomeInvalidResponse, start, err)
		return
	}

	metrics.RecordProxyRequest(target.Name, OutcomeOK, time.Since(start))
	log.WithFields(map[string]interface{}{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Upstream response relayed")

	if len(payload) == 0 {
		w.WriteHeader(resp.StatusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(payload)
}

func (p *Proxy) fail(w http.ResponseWriter, upstream, outcome string, start time.Time, cause error) {
	metrics.RecordProxyRequest(upstream, outcome, time.Since(start))
	_ = utils.WriteError(w, errors.UpstreamUnavailable(cause))
}

// readBody returns the compacted JSON body for methods that carry one.
// GET and HEAD never forward a body; an empty body becomes "{}".
func readBody(r *http.Request) ([]byte, *errors.AppError) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil, nil
	}
	if r.Body == nil {
		return []byte("{}"), nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		return nil, errors.ValidationError("Failed to read request body", nil)
	}
	if len(raw) > maxRequestBody {
		return nil, errors.ValidationError("Request body too large", nil)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, errors.ValidationError("Request body must be valid JSON", nil)
	}
	return buf.Bytes(), nil
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}

func copyHeaders(dst, src http.Header) {
	dst.Set("Authorization", src.Get("Authorization"))
	dst.Set("Content-Type", "application/json")
	dst.Set("Accept", "application/json")
	if id := src.Get("X-Request-ID"); id != "" {
		dst.Set("X-Request-ID", id)
	}
}
