package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// MetricsService handles metrics ingest and reads
type MetricsService struct {
	client *Client
}

// RecordProfile stores a profile snapshot for the authenticated user
func (s *MetricsService) RecordProfile(ctx context.Context, m ProfileMetricInput) error {
	return s.client.doRequest(ctx, http.MethodPost, "/api/v1/metrics/profile", m, nil)
}

// RecordEngagement stores post engagement for the authenticated user
func (s *MetricsService) RecordEngagement(ctx context.Context, m EngagementMetricInput) error {
	return s.client.doRequest(ctx, http.MethodPost, "/api/v1/metrics/engagement", m, nil)
}

// Dashboard returns the 30 day overview
func (s *MetricsService) Dashboard(ctx context.Context) (*Dashboard, *ReadMetadata, error) {
	var data Dashboard
	var meta ReadMetadata
	if _, err := s.client.do(ctx, http.MethodGet, "/api/v1/metrics/dashboard", s.client.GetToken(), nil, &data, &meta); err != nil {
		return nil, nil, err
	}
	return &data, &meta, nil
}

// Analytics returns daily buckets for period (7d, 30d or 90d; empty for the default)
func (s *MetricsService) Analytics(ctx context.Context, period string) (*Analytics, *ReadMetadata, error) {
	path := "/api/v1/metrics/analytics"
	if period != "" {
		path += "?" + url.Values{"period": {period}}.Encode()
	}

	var data Analytics
	var meta ReadMetadata
	if _, err := s.client.do(ctx, http.MethodGet, path, s.client.GetToken(), nil, &data, &meta); err != nil {
		return nil, nil, err
	}
	return &data, &meta, nil
}

// TimeRange returns raw records between start and end
func (s *MetricsService) TimeRange(ctx context.Context, start, end time.Time) (*RangeData, *ReadMetadata, error) {
	q := url.Values{
		"startDate": {start.UTC().Format(time.RFC3339)},
		"endDate":   {end.UTC().Format(time.RFC3339)},
	}

	var data RangeData
	var meta ReadMetadata
	if _, err := s.client.do(ctx, http.MethodGet, "/api/v1/metrics/time-range?"+q.Encode(), s.client.GetToken(), nil, &data, &meta); err != nil {
		return nil, nil, err
	}
	return &data, &meta, nil
}
