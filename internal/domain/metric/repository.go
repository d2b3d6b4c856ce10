package metric

import (
	"context"
	"time"
)

// Repository defines the interface for metric data access
type Repository interface {
	// CreateProfile appends a profile snapshot
	CreateProfile(ctx context.Context, m *ProfileMetric) error

	// CreateEngagement appends an engagement record
	CreateEngagement(ctx context.Context, m *EngagementMetric) error

	// ListProfile returns a user's snapshots in [from, to), oldest first
	ListProfile(ctx context.Context, userID string, from, to time.Time) ([]ProfileMetric, error)

	// ListEngagement returns a user's engagement records in [from, to), oldest first
	ListEngagement(ctx context.Context, userID string, from, to time.Time) ([]EngagementMetric, error)

	// LatestProfile returns the newest snapshot, or nil when there is none
	LatestProfile(ctx context.Context, userID string) (*ProfileMetric, error)
}
