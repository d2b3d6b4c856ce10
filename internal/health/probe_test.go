package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestProber_Probe(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus Status
		wantMsg    string
	}{
		{"healthy status", 200, `{"status":"healthy"}`, StatusHealthy, "Service is healthy"},
		{"ok status", 200, `{"status":"ok"}`, StatusHealthy, "Service is healthy"},
		{"non-json body", 200, `pong`, StatusHealthy, "Service responded with HTTP 200"},
		{"missing status", 200, `{"uptime":3}`, StatusHealthy, "Service responded with HTTP 200"},
		{"degraded", 200, `{"status":"degraded","message":"cache slow"}`, StatusDegraded, "cache slow"},
		{"reports unhealthy", 200, `{"status":"unhealthy"}`, StatusUnhealthy, "Service reports unhealthy"},
		{"non-200", 503, `{"status":"healthy"}`, StatusUnhealthy, "HTTP 503"},
		{"not found", 404, ``, StatusUnhealthy, "HTTP 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got := NewProber(nil).Probe(context.Background(), srv.URL, time.Second)

			if got.Status != tt.wantStatus {
				t.Errorf("status: got %v want %v", got.Status, tt.wantStatus)
			}
			if got.Message != tt.wantMsg {
				t.Errorf("message: got %q want %q", got.Message, tt.wantMsg)
			}
			if got.ResponseTime <= 0 {
				t.Error("response time not recorded")
			}
		})
	}
}

func TestProber_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	got := NewProber(nil).Probe(context.Background(), srv.URL, 50*time.Millisecond)

	if got.Status != StatusUnhealthy {
		t.Fatalf("status: got %v want %v", got.Status, StatusUnhealthy)
	}
	if !strings.HasSuffix(got.Message, "timed out after 50ms") {
		t.Errorf("message: got %q", got.Message)
	}
}

func TestProber_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	got := NewProber(nil).Probe(context.Background(), target, time.Second)

	if got.Status != StatusUnhealthy || !strings.HasPrefix(got.Message, "Connection failed:") {
		t.Errorf("got %v %q", got.Status, got.Message)
	}
}

func TestProber_Watch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var results int
	err := NewProber(nil).Watch(ctx, srv.URL, 10*time.Millisecond, time.Second, func(r Result) {
		results++
		if results == 3 {
			cancel()
		}
	})

	if err != context.Canceled {
		t.Errorf("Watch() error = %v, want context.Canceled", err)
	}
	if results != 3 {
		t.Errorf("callbacks: got %v want %v", results, 3)
	}
	if hits.Load() < 3 {
		t.Errorf("probes: got %v want at least 3", hits.Load())
	}
}

func TestProber_WatchCancelAbortsInflight(t *testing.T) {
	started := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		done <- NewProber(nil).Watch(ctx, srv.URL, time.Hour, time.Hour, func(Result) {
			t.Error("no result expected after cancellation")
		})
	}()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Watch() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
