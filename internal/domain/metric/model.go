package metric

import (
	"fmt"
	"time"
)

// ProfileMetric is a point-in-time snapshot of a LinkedIn profile.
// Records are append-only.
type ProfileMetric struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Timestamp         time.Time `json:"timestamp"`
	ProfileViews      int64     `json:"profileViews"`
	SearchAppearances int64     `json:"searchAppearances"`
	Connections       int64     `json:"connections"`
	Followers         int64     `json:"followers"`
	PostImpressions   int64     `json:"postImpressions"`
	ProfileScore      float64   `json:"profileScore"`
}

// EngagementMetric records reactions to a single post. Records are append-only.
type EngagementMetric struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Timestamp   time.Time `json:"timestamp"`
	PostID      string    `json:"postId,omitempty"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	Shares      int64     `json:"shares"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
}

// Interactions is likes + comments + shares
func (e EngagementMetric) Interactions() int64 {
	return e.Likes + e.Comments + e.Shares
}

// TimeRange is an inclusive start, exclusive end window
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Period is a named analytics window
type Period string

// Supported analytics periods
const (
	Period7Days  Period = "7d"
	Period30Days Period = "30d"
	Period90Days Period = "90d"
)

// DefaultPeriod is used when the caller does not pick one
const DefaultPeriod = Period30Days

// ParsePeriod validates a period name. Empty selects DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return DefaultPeriod, nil
	case Period7Days, Period30Days, Period90Days:
		return Period(s), nil
	}
	return "", fmt.Errorf("period must be one of 7d, 30d, 90d")
}

// Days returns the number of days covered
func (p Period) Days() int {
	switch p {
	case Period7Days:
		return 7
	case Period90Days:
		return 90
	default:
		return 30
	}
}

// Window returns the period ending at the end of now's UTC day
func (p Period) Window(now time.Time) TimeRange {
	end := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	return TimeRange{Start: end.AddDate(0, 0, -p.Days()), End: end}
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

// Growth is the change between the first and last profile snapshot of a window
type Growth struct {
	Connections  int64   `json:"connections"`
	Followers    int64   `json:"followers"`
	ProfileScore float64 `json:"profileScore"`
}

// Dashboard is the landing view for a user
type Dashboard struct {
	Profile    *ProfileMetric   `json:"profile"`
	Engagement EngagementTotals `json:"engagement"`
	Growth     Growth           `json:"growth"`
	TopPosts   []PostSummary    `json:"topPosts"`

	Range   TimeRange `json:"-"`
	Records int       `json:"-"`
}

// PostSummary ranks posts by interactions
type PostSummary struct {
	PostID       string `json:"postId"`
	Interactions int64  `json:"interactions"`
	Impressions  int64  `json:"impressions"`
}

// Analytics is a per-day breakdown over a period
type Analytics struct {
	Period     Period           `json:"period"`
	Daily      []DailyBucket    `json:"daily"`
	Engagement EngagementTotals `json:"engagement"`
	Growth     Growth           `json:"growth"`

	Range   TimeRange `json:"-"`
	Records int       `json:"-"`
}

// RangeData holds the raw records inside an explicit window
type RangeData struct {
	Profile    []ProfileMetric    `json:"profile"`
	Engagement []EngagementMetric `json:"engagement"`

	Range   TimeRange `json:"-"`
	Records int       `json:"-"`
}
