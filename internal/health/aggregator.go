package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Info describes the running service in every report
type Info struct {
	Service     string
	Version     string
	Environment string
	Started     time.Time
}

// ServiceReport is one check's result tagged with its name
type ServiceReport struct {
	Service        string         `json:"service"`
	Required       bool           `json:"required"`
	Status         Status         `json:"status"`
	Message        string         `json:"message"`
	ResponseTimeMs *int64         `json:"responseTimeMs,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
}

// Counts tallies services by their own status
type Counts struct {
	Healthy   int `json:"healthy"`
	Unhealthy int `json:"unhealthy"`
	Degraded  int `json:"degraded"`
	Total     int `json:"total"`
}

// Report is the full health check
type Report struct {
	Status      Status          `json:"status"`
	Timestamp   time.Time       `json:"timestamp"`
	Uptime      float64         `json:"uptime"`
	Service     string          `json:"service"`
	Version     string          `json:"version"`
	Environment string          `json:"environment"`
	Services    []ServiceReport `json:"services"`
	Overall     Counts          `json:"overall"`
}

// Aggregator runs registered checks concurrently
type Aggregator struct {
	info           Info
	defaultTimeout time.Duration

	mu     sync.RWMutex
	checks []Check
}

// NewAggregator creates an aggregator. Checks without their own timeout use
// defaultTimeout.
func NewAggregator(info Info, defaultTimeout time.Duration, checks ...Check) *Aggregator {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	if info.Started.IsZero() {
		info.Started = time.Now()
	}
	return &Aggregator{
		info:           info,
		defaultTimeout: defaultTimeout,
		checks:         checks,
	}
}

// Register adds a check; a check with the same name is replaced
func (a *Aggregator) Register(c Check) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.checks {
		if a.checks[i].Name == c.Name {
			a.checks[i] = c
			return
		}
	}
	a.checks = append(a.checks, c)
}

// Info returns the service description used in reports
func (a *Aggregator) Info() Info {
	return a.info
}

// Aggregate runs every check at once and waits for all of them. Each check
// is cut off at its own timeout, so the call takes about as long as the
// slowest timeout.
func (a *Aggregator) Aggregate(ctx context.Context) Report {
	a.mu.RLock()
	checks := make([]Check, len(a.checks))
	copy(checks, a.checks)
	a.mu.RUnlock()

	services := make([]ServiceReport, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c Check) {
			defer wg.Done()
			services[i] = a.run(ctx, c)
		}(i, c)
	}
	wg.Wait()

	now := time.Now()
	return Report{
		Status:      Overall(services),
		Timestamp:   now.UTC(),
		Uptime:      now.Sub(a.info.Started).Seconds(),
		Service:     a.info.Service,
		Version:     a.info.Version,
		Environment: a.info.Environment,
		Services:    services,
		Overall:     count(services),
	}
}

func (a *Aggregator) run(parent context.Context, c Check) ServiceReport {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = a.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- Unhealthy(fmt.Sprintf("check panicked: %v", rec))
			}
		}()
		done <- c.Run(ctx)
	}()

	var r Result
	select {
	case r = <-done:
	case <-ctx.Done():
		if parent.Err() != nil {
			r = Unhealthy(fmt.Sprintf("%s check cancelled", c.Name))
		} else {
			r = Unhealthy(fmt.Sprintf("%s check timed out after %dms", c.Name, timeout.Milliseconds()))
		}
	}

	elapsed := r.ResponseTime
	if elapsed == 0 {
		elapsed = time.Since(start)
	}
	ms := elapsed.Milliseconds()

	return ServiceReport{
		Service:        c.Name,
		Required:       c.Required,
		Status:         r.Status,
		Message:        r.Message,
		ResponseTimeMs: &ms,
		Details:        r.Details,
	}
}

// Overall derives the service status: unhealthy when a required check is
// unhealthy, degraded when anything else is not healthy, healthy otherwise.
// An unhealthy optional check only degrades.
func Overall(services []ServiceReport) Status {
	status := StatusHealthy
	for _, s := range services {
		switch s.Status {
		case StatusHealthy:
		case StatusDegraded:
			status = StatusDegraded
		default:
			if s.Required {
				return StatusUnhealthy
			}
			status = StatusDegraded
		}
	}
	return status
}

func count(services []ServiceReport) Counts {
	c := Counts{Total: len(services)}
	for _, s := range services {
		switch s.Status {
		case StatusHealthy:
			c.Healthy++
		case StatusDegraded:
			c.Degraded++
		default:
			c.Unhealthy++
		}
	}
	return c
}
