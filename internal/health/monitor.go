package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/linkboost/internal/pkg/logger"
	"github.com/pratik-mahalle/linkboost/internal/pkg/metrics"
)

// Publisher receives every report the monitor produces
type Publisher interface {
	Broadcast(msgType string, data interface{})
}

// ReportMessageType tags monitor reports on the realtime hub
const ReportMessageType = "health.report"

// Monitor aggregates on a cron schedule, exports Prometheus gauges and
// publishes the report.
type Monitor struct {
	agg       *Aggregator
	schedule  cron.Schedule
	spec      string
	logger    *logger.Logger
	publisher Publisher
	timeout   time.Duration

	scheduler *cron.Cron

	mu       sync.RWMutex
	last     *Report
	previous map[string]Status
}

// NewMonitor validates spec (standard cron or "@every 30s") and builds a
// monitor. publisher may be nil.
func NewMonitor(agg *Aggregator, spec string, log *logger.Logger, publisher Publisher) (*Monitor, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid health monitor schedule %q: %w", spec, err)
	}

	return &Monitor{
		agg:       agg,
		schedule:  schedule,
		spec:      spec,
		logger:    log,
		publisher: publisher,
		timeout:   2 * agg.defaultTimeout,
		previous:  make(map[string]Status),
	}, nil
}

// Start schedules the job. It is a no-op when already running.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.scheduler != nil {
		return
	}

	m.scheduler = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	m.scheduler.Schedule(m.schedule, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		m.RunOnce(ctx)
	}))
	m.scheduler.Start()

	m.logger.WithFields(map[string]interface{}{
		"schedule": m.spec,
	}).Info("Health monitor started")
}

// Stop halts scheduling and waits for a running job to finish
func (m *Monitor) Stop() {
	m.mu.Lock()
	scheduler := m.scheduler
	m.scheduler = nil
	m.mu.Unlock()

	if scheduler == nil {
		return
	}
	<-scheduler.Stop().Done()
	m.logger.Info("Health monitor stopped")
}

// RunOnce aggregates now and records the outcome
func (m *Monitor) RunOnce(ctx context.Context) Report {
	report := m.agg.Aggregate(ctx)

	for _, s := range report.Services {
		var d time.Duration
		if s.ResponseTimeMs != nil {
			d = time.Duration(*s.ResponseTimeMs) * time.Millisecond
		}
		metrics.SetHealthStatus(s.Service, s.Status.Severity(), d)
	}
	metrics.SetHealthStatus("overall", report.Status.Severity(), 0)

	m.mu.Lock()
	m.last = &report
	changed := m.transitions(report)
	m.mu.Unlock()

	for _, s := range changed {
		m.logger.WithFields(map[string]interface{}{
			"service":  s.Service,
			"status":   string(s.Status),
			"message":  s.Message,
			"required": s.Required,
		}).Warn("Dependency health changed")
	}

	if m.publisher != nil {
		m.publisher.Broadcast(ReportMessageType, report)
	}
	return report
}

// transitions returns services whose status differs from the previous run.
// The first observation of a healthy service is not a transition.
func (m *Monitor) transitions(report Report) []ServiceReport {
	var out []ServiceReport
	for _, s := range report.Services {
		prev, seen := m.previous[s.Service]
		if (seen && prev != s.Status) || (!seen && s.Status != StatusHealthy) {
			out = append(out, s)
		}
		m.previous[s.Service] = s.Status
	}
	return out
}

// Last returns the most recent report
func (m *Monitor) Last() (Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.last == nil {
		return Report{}, false
	}
	return *m.last, true
}
