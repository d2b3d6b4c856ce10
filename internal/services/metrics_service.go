package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pratik-mahalle/linkboost/internal/domain/metric"
	"github.com/pratik-mahalle/linkboost/internal/pkg/errors"
	"github.com/pratik-mahalle/linkboost/internal/pkg/logger"
)

const (
	dashboardWindowDays = 30
	topPostsLimit       = 5
	maxRangeDays        = 366
)

// MetricsService implements metric.Service
type MetricsService struct {
	repo   metric.Repository
	logger *logger.Logger
	now    func() time.Time
}

// NewMetricsService creates a new metrics service
func NewMetricsService(repo metric.Repository, log *logger.Logger) *MetricsService {
	return &MetricsService{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// RecordProfile stores a profile snapshot, assigning an ID and defaulting
// the timestamp to now.
func (s *MetricsService) RecordProfile(ctx context.Context, m *metric.ProfileMetric) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now().UTC()
	}

	if err := s.repo.CreateProfile(ctx, m); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":   m.UserID,
		"metric_id": m.ID,
	}).Debug("Profile metric recorded")
	return nil
}

// RecordEngagement stores an engagement record
func (s *MetricsService) RecordEngagement(ctx context.Context, m *metric.EngagementMetric) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now().UTC()
	}

	if err := s.repo.CreateEngagement(ctx, m); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":   m.UserID,
		"metric_id": m.ID,
		"post_id":   m.PostID,
	}).Debug("Engagement metric recorded")
	return nil
}

// Dashboard summarises the last 30 days
func (s *MetricsService) Dashboard(ctx context.Context, userID string) (*metric.Dashboard, error) {
	end := s.now().UTC()
	rng := metric.TimeRange{Start: end.AddDate(0, 0, -dashboardWindowDays), End: end.Add(time.Millisecond)}

	latest, err := s.repo.LatestProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.repo.ListProfile(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	engagements, err := s.repo.ListEngagement(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	return &metric.Dashboard{
		Profile:    latest,
		Engagement: sumEngagement(engagements),
		Growth:     growth(profiles),
		TopPosts:   topPosts(engagements, topPostsLimit),
		Range:      rng,
		Records:    len(profiles) + len(engagements),
	}, nil
}

// Analytics breaks the period down into UTC days
func (s *MetricsService) Analytics(ctx context.Context, userID string, period metric.Period) (*metric.Analytics, error) {
	rng := period.Window(s.now())

	profiles, err := s.repo.ListProfile(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	engagements, err := s.repo.ListEngagement(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	return &metric.Analytics{
		Period:     period,
		Daily:      dailyBuckets(rng, profiles, engagements),
		Engagement: sumEngagement(engagements),
		Growth:     growth(profiles),
		Range:      rng,
		Records:    len(profiles) + len(engagements),
	}, nil
}

// TimeRange returns raw records in [start, end]. The end day is included
// when end has no time component.
func (s *MetricsService) TimeRange(ctx context.Context, userID string, start, end time.Time) (*metric.RangeData, error) {
	if end.Before(start) {
		return nil, errors.ValidationError("startDate must not be after endDate", nil)
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return nil, errors.ValidationError("time range must not exceed 366 days", nil)
	}

	rng := metric.TimeRange{Start: start.UTC(), End: end.UTC().Add(time.Millisecond)}
	if end.Equal(end.Truncate(24 * time.Hour)) {
		rng.End = end.UTC().Add(24 * time.Hour)
	}

	profiles, err := s.repo.ListProfile(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	engagements, err := s.repo.ListEngagement(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	if profiles == nil {
		profiles = []metric.ProfileMetric{}
	}
	if engagements == nil {
		engagements = []metric.EngagementMetric{}
	}

	return &metric.RangeData{
		Profile:    profiles,
		Engagement: engagements,
		Range:      rng,
		Records:    len(profiles) + len(engagements),
	}, nil
}

func sumEngagement(records []metric.EngagementMetric) metric.EngagementTotals {
	var t metric.EngagementTotals
	posts := make(map[string]struct{})
	for _, e := range records {
		t.Likes += e.Likes
		t.Comments += e.Comments
		t.Shares += e.Shares
		t.Impressions += e.Impressions
		t.Clicks += e.Clicks
		if e.PostID != "" {
			posts[e.PostID] = struct{}{}
		}
	}
	t.Posts = len(posts)
	t.EngagementRate = rate(t.Likes+t.Comments+t.Shares, t.Impressions)
	return t
}

func growth(profiles []metric.ProfileMetric) metric.Growth {
	if len(profiles) < 2 {
		return metric.Growth{}
	}
	first, last := profiles[0], profiles[len(profiles)-1]
	return metric.Growth{
		Connections:  last.Connections - first.Connections,
		Followers:    last.Followers - first.Followers,
		ProfileScore: last.ProfileScore - first.ProfileScore,
	}
}

func topPosts(records []metric.EngagementMetric, limit int) []metric.PostSummary {
	byPost := make(map[string]*metric.PostSummary)
	for _, e := range records {
		if e.PostID == "" {
			continue
		}
		p, ok := byPost[e.PostID]
		if !ok {
			p = &metric.PostSummary{PostID: e.PostID}
			byPost[e.PostID] = p
		}
		p.Interactions += e.Interactions()
		p.Impressions += e.Impressions
	}

	out := make([]metric.PostSummary, 0, len(byPost))
	for _, p := range byPost {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Interactions != out[j].Interactions {
			return out[i].Interactions > out[j].Interactions
		}
		return out[i].PostID < out[j].PostID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dailyBuckets emits one bucket per day of rng, empty days included.
// Profile views and search appearances are summed; connections and
// followers take the last snapshot of the day.
func dailyBuckets(rng metric.TimeRange, profiles []metric.ProfileMetric, engagements []metric.EngagementMetric) []metric.DailyBucket {
	const layout = "2006-01-02"

	var buckets []metric.DailyBucket
	index := make(map[string]int)
	for d := rng.Start; d.Before(rng.End); d = d.Add(24 * time.Hour) {
		key := d.Format(layout)
		index[key] = len(buckets)
		buckets = append(buckets, metric.DailyBucket{Date: key})
	}

	for _, p := range profiles {
		i, ok := index[p.Timestamp.UTC().Format(layout)]
		if !ok {
			continue
		}
		b := &buckets[i]
		b.ProfileViews += p.ProfileViews
		b.SearchAppearances += p.SearchAppearances
		b.Connections = p.Connections
		b.Followers = p.Followers
	}

	for _, e := range engagements {
		i, ok := index[e.Timestamp.UTC().Format(layout)]
		if !ok {
			continue
		}
		b := &buckets[i]
		b.Likes += e.Likes
		b.Comments += e.Comments
		b.Shares += e.Shares
		b.Impressions += e.Impressions
		b.Clicks += e.Clicks
	}

	for i := range buckets {
		b := &buckets[i]
		b.EngagementRate = rate(b.Likes+b.Comments+b.Shares, b.Impressions)
	}
	return buckets
}

func rate(interactions, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	return float64(interactions) / float64(impressions)
}
