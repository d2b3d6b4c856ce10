package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pratik-mahalle/linkboost/internal/domain/metric"
)

// MockMetricRepository is an in-memory metric.Repository
type MockMetricRepository struct {
	mu          sync.Mutex
	Profiles    []metric.ProfileMetric
	Engagements []metric.EngagementMetric
	CreateError error
	ListError   error
}

func NewMockMetricRepository() *MockMetricRepository {
	return &MockMetricRepository{}
}

func (m *MockMetricRepository) CreateProfile(ctx context.Context, p *metric.ProfileMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Profiles = append(m.Profiles, *p)
	return nil
}

func (m *MockMetricRepository) CreateEngagement(ctx context.Context, e *metric.EngagementMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Engagements = append(m.Engagements, *e)
	return nil
}

func (m *MockMetricRepository) ListProfile(ctx context.Context, userID string, from, to time.Time) ([]metric.ProfileMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	rng := metric.TimeRange{Start: from, End: to}
	var out []metric.ProfileMetric
	for _, p := range m.Profiles {
		if p.UserID == userID && rng.Contains(p.Timestamp) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *MockMetricRepository) ListEngagement(ctx context.Context, userID string, from, to time.Time) ([]metric.EngagementMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	rng := metric.TimeRange{Start: from, End: to}
	var out []metric.EngagementMetric
	for _, e := range m.Engagements {
		if e.UserID == userID && rng.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *MockMetricRepository) LatestProfile(ctx context.Context, userID string) (*metric.ProfileMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var latest *metric.ProfileMetric
	for i := range m.Profiles {
		p := m.Profiles[i]
		if p.UserID != userID {
			continue
		}
		if latest == nil || !p.Timestamp.Before(latest.Timestamp) {
			latest = &p
		}
	}
	return latest, nil
}

// MockMetricService records calls made by handlers
type MockMetricService struct {
	mu sync.Mutex

	ProfileCalls    []metric.ProfileMetric
	EngagementCalls []metric.EngagementMetric
	RangeCalls      int

	RecordError error
	ReadError   error

	DashboardResult *metric.Dashboard
	AnalyticsResult *metric.Analytics
	RangeResult     *metric.RangeData
}

func NewMockMetricService() *MockMetricService {
	return &MockMetricService{}
}

// Calls returns how many writes reached the service
func (m *MockMetricService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ProfileCalls) + len(m.EngagementCalls)
}

func (m *MockMetricService) RecordProfile(ctx context.Context, p *metric.ProfileMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfileCalls = append(m.ProfileCalls, *p)
	return m.RecordError
}

func (m *MockMetricService) RecordEngagement(ctx context.Context, e *metric.EngagementMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EngagementCalls = append(m.EngagementCalls, *e)
	return m.RecordError
}

func (m *MockMetricService) Dashboard(ctx context.Context, userID string) (*metric.Dashboard, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	if m.DashboardResult != nil {
		return m.DashboardResult, nil
	}
	return &metric.Dashboard{}, nil
}

func (m *MockMetricService) Analytics(ctx context.Context, userID string, period metric.Period) (*metric.Analytics, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	if m.AnalyticsResult != nil {
		return m.AnalyticsResult, nil
	}
	return &metric.Analytics{Period: period}, nil
}

func (m *MockMetricService) TimeRange(ctx context.Context, userID string, start, end time.Time) (*metric.RangeData, error) {
	m.mu.Lock()
	m.RangeCalls++
	m.mu.Unlock()
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	if m.RangeResult != nil {
		return m.RangeResult, nil
	}
	return &metric.RangeData{Range: metric.TimeRange{Start: start, End: end}}, nil
}
