package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pratik-mahalle/linkboost/internal/health"
)

func check(name string, required bool, r health.Result) health.Check {
	return health.Check{Name: name, Required: required, Run: func(context.Context) health.Result { return r }}
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		checks         []health.Check
		expectedStatus int
		expectedHealth health.Status
	}{
		{
			name:           "all healthy",
			checks:         []health.Check{check("database", true, health.Healthy("ok"))},
			expectedStatus: http.StatusOK,
			expectedHealth: health.StatusHealthy,
		},
		{
			name: "degraded still serves",
			checks: []health.Check{
				check("database", true, health.Healthy("ok")),
				check("memory", false, health.Degraded("memory usage high")),
			},
			expectedStatus: http.StatusOK,
			expectedHealth: health.StatusDegraded,
		},
		{
			name: "required dependency down",
			checks: []health.Check{
				check("database", true, health.Unhealthy("Connection failed: refused")),
				check("analytics", false, health.Healthy("ok")),
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: health.StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := health.NewAggregator(health.Info{Service: "linkboost-api", Version: "test"}, time.Second, tt.checks...)
			h := NewHealthHandler(agg)

			rr := httptest.NewRecorder()
			h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			var report health.Report
			if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if report.Status != tt.expectedHealth {
				t.Errorf("status: got %v want %v", report.Status, tt.expectedHealth)
			}
			if report.Overall.Total != len(tt.checks) {
				t.Errorf("total: got %v want %v", report.Overall.Total, len(tt.checks))
			}
		})
	}
}

func TestHealthHandler_Healthz(t *testing.T) {
	agg := health.NewAggregator(health.Info{Service: "linkboost-api", Version: "1.0.0", Environment: "test"}, time.Second,
		check("database", true, health.Unhealthy("down")))
	h := NewHealthHandler(agg)

	rr := httptest.NewRecorder()
	h.Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("liveness must not depend on checks: got %v", rr.Code)
	}
	var resp LivenessResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "linkboost-api" || resp.Version != "1.0.0" {
		t.Errorf("unexpected body: %+v", resp)
	}
}
