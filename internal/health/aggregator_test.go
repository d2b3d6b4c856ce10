package health

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/pratik-mahalle/linkboost/internal/pkg/logger"
)

func static(name string, required bool, r Result) Check {
	return Check{Name: name, Required: required, Run: func(context.Context) Result { return r }}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name     string
		services []ServiceReport
		want     Status
	}{
		{"no services", nil, StatusHealthy},
		{"all healthy", []ServiceReport{{Status: StatusHealthy, Required: true}}, StatusHealthy},
		{"one degraded", []ServiceReport{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{"required unhealthy", []ServiceReport{{Status: StatusDegraded}, {Status: StatusUnhealthy, Required: true}}, StatusUnhealthy},
		{"optional unhealthy tolerated", []ServiceReport{{Status: StatusHealthy, Required: true}, {Status: StatusUnhealthy}}, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.services); got != tt.want {
				t.Errorf("Overall() got %v want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_Aggregate(t *testing.T) {
	agg := NewAggregator(Info{Service: "api", Version: "1.2.3", Environment: "test"}, time.Second,
		static("database", true, Healthy("ok")),
		static("analytics", false, Unhealthy("HTTP 502")),
		static("memory", false, Degraded("memory usage high: 85.0%")),
	)

	report := agg.Aggregate(context.Background())

	if report.Status != StatusDegraded {
		t.Errorf("status: got %v want %v", report.Status, StatusDegraded)
	}
	want := Counts{Healthy: 1, Unhealthy: 1, Degraded: 1, Total: 3}
	if report.Overall != want {
		t.Errorf("counts: got %+v want %+v", report.Overall, want)
	}
	if report.Version != "1.2.3" || report.Service != "api" || report.Environment != "test" {
		t.Errorf("info not copied: %+v", report)
	}
	if report.Services[0].Service != "database" || report.Services[0].ResponseTimeMs == nil {
		t.Errorf("services out of order or missing timing: %+v", report.Services[0])
	}
}

func TestAggregator_SlowCheckIsBounded(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	agg := NewAggregator(Info{}, time.Second,
		Check{Name: "stuck", Required: true, Timeout: 50 * time.Millisecond, Run: func(ctx context.Context) Result {
			<-block
			return Healthy("never")
		}},
		Check{Name: "slowish", Timeout: 100 * time.Millisecond, Run: func(ctx context.Context) Result {
			<-ctx.Done()
			return Unhealthy("cancelled")
		}},
		static("fast", true, Healthy("ok")),
	)

	start := time.Now()
	report := agg.Aggregate(context.Background())
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("aggregate took %v, expected about the longest timeout", elapsed)
	}
	if report.Status != StatusUnhealthy {
		t.Errorf("status: got %v want %v", report.Status, StatusUnhealthy)
	}
	if report.Services[2].Status != StatusHealthy {
		t.Errorf("fast check should still report: %+v", report.Services[2])
	}
	if report.Services[0].Message != "stuck check timed out after 50ms" {
		t.Errorf("message: got %q", report.Services[0].Message)
	}
}

func TestAggregator_CancelledCaller(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	agg := NewAggregator(Info{}, time.Second, Check{Name: "database", Required: true, Run: func(ctx context.Context) Result {
		<-block
		return Healthy("never")
	}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := agg.Aggregate(ctx)
	if got := report.Services[0].Message; got != "database check cancelled" {
		t.Errorf("message: got %q want %q", got, "database check cancelled")
	}
}

func TestAggregator_PanickingCheck(t *testing.T) {
	agg := NewAggregator(Info{}, time.Second, Check{Name: "boom", Required: true, Run: func(context.Context) Result {
		panic("kaboom")
	}})

	report := agg.Aggregate(context.Background())
	if report.Status != StatusUnhealthy {
		t.Errorf("status: got %v want %v", report.Status, StatusUnhealthy)
	}
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestDatabaseCheck(t *testing.T) {
	ok := DatabaseCheck(fakePinger{}, time.Second)
	if r := ok.Run(context.Background()); r.Status != StatusHealthy || !ok.Required {
		t.Errorf("got %+v required=%v", r, ok.Required)
	}

	bad := DatabaseCheck(fakePinger{err: errors.New("no such host")}, time.Second)
	if r := bad.Run(context.Background()); r.Status != StatusUnhealthy {
		t.Errorf("got %+v", r)
	}
}

func TestClassify(t *testing.T) {
	th := Thresholds{Warning: 0.8, Critical: 0.95}
	tests := []struct {
		ratio float64
		want  Status
	}{
		{0.10, StatusHealthy},
		{0.80, StatusDegraded},
		{0.94, StatusDegraded},
		{0.95, StatusUnhealthy},
		{1.00, StatusUnhealthy},
	}
	for _, tt := range tests {
		if got := classify("memory", tt.ratio, th).Status; got != tt.want {
			t.Errorf("classify(%v) got %v want %v", tt.ratio, got, tt.want)
		}
	}
}

func TestCPUSampler(t *testing.T) {
	base := time.Unix(0, 0)
	clock := base
	cpu := time.Duration(0)

	s := &CPUSampler{
		read:     func() (time.Duration, bool) { return cpu, true },
		procs:    func() int { return 2 },
		now:      func() time.Time { return clock },
		lastWall: base,
	}

	clock = base.Add(time.Second)
	cpu = 1500 * time.Millisecond
	ratio, ok := s.Sample()
	if !ok || ratio != 0.75 {
		t.Errorf("Sample() got %v, %v want 0.75", ratio, ok)
	}

	// a burst right after a sample must not become its own window
	clock = clock.Add(10 * time.Millisecond)
	cpu += 20 * time.Millisecond
	if ratio, _ := s.Sample(); ratio != 0.75 {
		t.Errorf("Sample() within window: got %v want %v", ratio, 0.75)
	}

	// the next window still counts the burst
	clock = base.Add(2 * time.Second)
	cpu = 1500*time.Millisecond + 200*time.Millisecond
	if ratio, _ := s.Sample(); ratio != 0.1 {
		t.Errorf("Sample() next window: got %v want %v", ratio, 0.1)
	}

	r := CPUCheck(s, Thresholds{}).Run(context.Background())
	if r.Status != StatusHealthy {
		t.Errorf("idle interval should be healthy, got %+v", r)
	}
}

func TestMemoryRatio(t *testing.T) {
	ms := runtimeStats(600, 1000, 0, 0)
	if got, _ := memoryRatio(&ms, 0); got != 0.6 {
		t.Errorf("heap ratio got %v want 0.6", got)
	}

	ms = runtimeStats(0, 0, 900, 100)
	if got, _ := memoryRatio(&ms, 1000); got != 0.8 {
		t.Errorf("limit ratio got %v want 0.8", got)
	}
}

func runtimeStats(heapInuse, heapSys, sys, released uint64) runtime.MemStats {
	return runtime.MemStats{HeapInuse: heapInuse, HeapSys: heapSys, Sys: sys, HeapReleased: released}
}

type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) Broadcast(msgType string, data interface{}) {
	p.types = append(p.types, msgType)
}

func TestMonitor_RunOnce(t *testing.T) {
	if _, err := NewMonitor(NewAggregator(Info{}, time.Second), "not a schedule", logger.Nop(), nil); err == nil {
		t.Fatal("expected schedule parse error")
	}

	pub := &recordingPublisher{}
	agg := NewAggregator(Info{}, time.Second, static("database", true, Healthy("ok")))
	m, err := NewMonitor(agg, "@every 1h", logger.Nop(), pub)
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}

	if _, ok := m.Last(); ok {
		t.Error("no report expected before the first run")
	}
	m.RunOnce(context.Background())

	last, ok := m.Last()
	if !ok || last.Status != StatusHealthy {
		t.Errorf("Last() got %+v, %v", last, ok)
	}
	if len(pub.types) != 1 || pub.types[0] != ReportMessageType {
		t.Errorf("published: got %v", pub.types)
	}

	m.Start()
	m.Stop()
}
