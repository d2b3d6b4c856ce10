package metric

import (
	"context"
	"time"
)

// Recorder accepts metric writes from the ingest API
type Recorder interface {
	RecordProfile(ctx context.Context, m *ProfileMetric) error
	RecordEngagement(ctx context.Context, m *EngagementMetric) error
}

// Reader serves the dashboard and analytics views
type Reader interface {
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)
	Analytics(ctx context.Context, userID string, period Period) (*Analytics, error)
	TimeRange(ctx context.Context, userID string, start, end time.Time) (*RangeData, error)
}

// Service defines the interface for metric business logic
type Service interface {
	Recorder
	Reader
}
