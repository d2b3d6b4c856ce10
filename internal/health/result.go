// Package health probes dependencies and folds the results into one report.
package health

import (
	"net/http"
	"time"
)

// Status is the health of one dependency or of the whole service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Severity orders statuses: healthy < degraded < unhealthy
func (s Status) Severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// HTTPStatus maps a status to the code load balancers gate on.
// Degraded still serves traffic.
func (s Status) HTTPStatus() int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Result is the outcome of one check. It is never persisted.
type Result struct {
	Status       Status
	Message      string
	ResponseTime time.Duration
	Details      map[string]any
}

// Healthy creates a healthy result
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message}
}

// Degraded creates a degraded result
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message}
}

// Unhealthy creates an unhealthy result
func Unhealthy(message string) Result {
	return Result{Status: StatusUnhealthy, Message: message}
}

// WithDetails adds details to a result
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}
