package client

import "time"

// User represents a LinkBoost user
type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	SubscriptionLevel string    `json:"subscriptionLevel"`
	LinkedInConnected bool      `json:"linkedinConnected"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ProfileMetricInput is a profile snapshot to record
type ProfileMetricInput struct {
	Timestamp         *time.Time `json:"timestamp,omitempty"`
	ProfileViews      int64      `json:"profileViews"`
	SearchAppearances int64      `json:"searchAppearances"`
	Connections       int64      `json:"connections"`
	Followers         int64      `json:"followers"`
	PostImpressions   int64      `json:"postImpressions"`
	ProfileScore      float64    `json:"profileScore"`
}

// EngagementMetricInput is post engagement to record
type EngagementMetricInput struct {
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	PostID      string     `json:"postId,omitempty"`
	Likes       int64      `json:"likes"`
	Comments    int64      `json:"comments"`
	Shares      int64      `json:"shares"`
	Impressions int64      `json:"impressions"`
	Clicks      int64      `json:"clicks"`
}

// ProfileMetric is a stored profile snapshot
type ProfileMetric struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ProfileMetricInput
}

// EngagementMetric is stored post engagement
type EngagementMetric struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EngagementMetricInput
}

// TimeRange is the window a read covered
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ReadMetadata accompanies every metrics read
type ReadMetadata struct {
	TotalRecords int       `json:"totalRecords"`
	TimeRange    TimeRange `json:"timeRange"`
}

// EngagementTotals sums engagement over a window
type EngagementTotals struct {
	Posts          int     `json:"posts"`
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	Shares         int64   `json:"shares"`
	Impressions    int64   `json:"impressions"`
	Clicks         int64   `json:"clicks"`
	EngagementRate float64 `json:"engagementRate"`
}

// Growth is the change across a window
type Growth struct {
	Connections  int64   `json:"connections"`
	Followers    int64   `json:"followers"`
	ProfileScore float64 `json:"profileScore"`
}

// PostSummary ranks a post by interactions
type PostSummary struct {
	PostID       string `json:"postId"`
	Interactions int64  `json:"interactions"`
	Impressions  int64  `json:"impressions"`
}

// Dashboard is the 30 day overview
type Dashboard struct {
	Profile    *ProfileMetric   `json:"profile"`
	Engagement EngagementTotals `json:"engagement"`
	Growth     Growth           `json:"growth"`
	TopPosts   []PostSummary    `json:"topPosts"`
}

// DailyBucket aggregates one UTC day
type DailyBucket struct {
	Date              string  `json:"date"`
	ProfileViews      int64   `json:"profileViews"`
	SearchAppearances int64   `json:"searchAppearances"`
	Connections       int64   `json:"connections"`
	Followers         int64   `json:"followers"`
	Likes             int64   `json:"likes"`
	Comments          int64   `json:"comments"`
	Shares            int64   `json:"shares"`
	Impressions       int64   `json:"impressions"`
	Clicks            int64   `json:"clicks"`
	EngagementRate    float64 `json:"engagementRate"`
}

// Analytics is a per-day breakdown over a period
type Analytics struct {
	Period     string           `json:"period"`
	Daily      []DailyBucket    `json:"daily"`
	Engagement EngagementTotals `json:"engagement"`
	Growth     Growth           `json:"growth"`
}

// RangeData holds the raw records inside a window
type RangeData struct {
	Profile    []ProfileMetric    `json:"profile"`
	Engagement []EngagementMetric `json:"engagement"`
}

// ServiceHealth is one dependency in a health report
type ServiceHealth struct {
	Service        string                 `json:"service"`
	Required       bool                   `json:"required"`
	Status         string                 `json:"status"`
	Message        string                 `json:"message"`
	ResponseTimeMs *int64                 `json:"responseTimeMs,omitempty"`
	Details        map[string]interface{} `json:"details,omitempty"`
}

// HealthCounts tallies services by status
type HealthCounts struct {
	Healthy   int `json:"healthy"`
	Unhealthy int `json:"unhealthy"`
	Degraded  int `json:"degraded"`
	Total     int `json:"total"`
}

// HealthReport is the body of GET /health
type HealthReport struct {
	Status      string          `json:"status"`
	Timestamp   time.Time       `json:"timestamp"`
	Uptime      float64         `json:"uptime"`
	Service     string          `json:"service"`
	Version     string          `json:"version"`
	Environment string          `json:"environment"`
	Services    []ServiceHealth `json:"services"`
	Overall     HealthCounts    `json:"overall"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	Environment string    `json:"environment"`
}
