package dto

import (
	"time"

	"github.com/pratik-mahalle/linkboost/internal/domain/metric"
)

// ProfileMetricRequest is the body of POST /api/v1/metrics/profile
type ProfileMetricRequest struct {
	Timestamp         *time.Time `json:"timestamp,omitempty"`
	ProfileViews      int64      `json:"profileViews" validate:"gte=0"`
	SearchAppearances int64      `json:"searchAppearances" validate:"gte=0"`
	Connections       int64      `json:"connections" validate:"gte=0"`
	Followers         int64      `json:"followers" validate:"gte=0"`
	PostImpressions   int64      `json:"postImpressions" validate:"gte=0"`
	ProfileScore      float64    `json:"profileScore" validate:"gte=0,lte=100"`
}

// ToModel attaches the caller and keeps the timestamp only when supplied
func (r ProfileMetricRequest) ToModel(userID string) *metric.ProfileMetric {
	m := &metric.ProfileMetric{
		UserID:            userID,
		ProfileViews:      r.ProfileViews,
		SearchAppearances: r.SearchAppearances,
		Connections:       r.Connections,
		Followers:         r.Followers,
		PostImpressions:   r.PostImpressions,
		ProfileScore:      r.ProfileScore,
	}
	if r.Timestamp != nil {
		m.Timestamp = r.Timestamp.UTC()
	}
	return m
}

// EngagementMetricRequest is the body of POST /api/v1/metrics/engagement
type EngagementMetricRequest struct {
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	PostID      string     `json:"postId,omitempty" validate:"max=128"`
	Likes       int64      `json:"likes" validate:"gte=0"`
	Comments    int64      `json:"comments" validate:"gte=0"`
	Shares      int64      `json:"shares" validate:"gte=0"`
	Impressions int64      `json:"impressions" validate:"gte=0"`
	Clicks      int64      `json:"clicks" validate:"gte=0"`
}

// ToModel attaches the caller and keeps the timestamp only when supplied
func (r EngagementMetricRequest) ToModel(userID string) *metric.EngagementMetric {
	m := &metric.EngagementMetric{
		UserID:      userID,
		PostID:      r.PostID,
		Likes:       r.Likes,
		Comments:    r.Comments,
		Shares:      r.Shares,
		Impressions: r.Impressions,
		Clicks:      r.Clicks,
	}
	if r.Timestamp != nil {
		m.Timestamp = r.Timestamp.UTC()
	}
	return m
}

// ReadMetadata accompanies every metrics read
type ReadMetadata struct {
	TotalRecords int              `json:"totalRecords"`
	TimeRange    metric.TimeRange `json:"timeRange"`
}

// MetricRecordedEvent is pushed to the owner's realtime clients after a write
type MetricRecordedEvent struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}
