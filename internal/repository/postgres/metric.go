package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pratik-mahalle/linkboost/internal/domain/metric"
	"github.com/pratik-mahalle/linkboost/internal/pkg/errors"
)

// MetricRepository implements metric.Repository. Timestamps are stored as
// unix milliseconds so the same schema works on SQLite and Postgres.
type MetricRepository struct {
	db *sql.DB
}

// NewMetricRepository creates a new metric repository
func NewMetricRepository(db *sql.DB) metric.Repository {
	return &MetricRepository{db: db}
}

// CreateProfile appends a profile snapshot
func (r *MetricRepository) CreateProfile(ctx context.Context, m *metric.ProfileMetric) error {
	query := `
		INSERT INTO profile_metrics (id, user_id, recorded_at, profile_views, search_appearances,
			connections, followers, post_impressions, profile_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.Timestamp.UnixMilli(), m.ProfileViews, m.SearchAppearances,
		m.Connections, m.Followers, m.PostImpressions, m.ProfileScore,
	)
	if err != nil {
		return errors.DatabaseError("Failed to record profile metric", err)
	}
	return nil
}

// CreateEngagement appends an engagement record
func (r *MetricRepository) CreateEngagement(ctx context.Context, m *metric.EngagementMetric) error {
	query := `
		INSERT INTO engagement_metrics (id, user_id, recorded_at, post_id, likes, comments,
			shares, impressions, clicks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.Timestamp.UnixMilli(), m.PostID, m.Likes, m.Comments,
		m.Shares, m.Impressions, m.Clicks,
	)
	if err != nil {
		return errors.DatabaseError("Failed to record engagement metric", err)
	}
	return nil
}

const profileColumns = `id, user_id, recorded_at, profile_views, search_appearances,
	connections, followers, post_impressions, profile_score`

// ListProfile returns snapshots in [from, to), oldest first
func (r *MetricRepository) ListProfile(ctx context.Context, userID string, from, to time.Time) ([]metric.ProfileMetric, error) {
	query := `SELECT ` + profileColumns + `
		FROM profile_metrics
		WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, errors.DatabaseError("Failed to list profile metrics", err)
	}
	defer rows.Close()

	var out []metric.ProfileMetric
	for rows.Next() {
		m, err := scanProfile(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan profile metric", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list profile metrics", err)
	}
	return out, nil
}

// LatestProfile returns the newest snapshot or nil
func (r *MetricRepository) LatestProfile(ctx context.Context, userID string) (*metric.ProfileMetric, error) {
	query := `SELECT ` + profileColumns + `
		FROM profile_metrics
		WHERE user_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`

	m, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get latest profile metric", err)
	}
	return m, nil
}

// ListEngagement returns engagement records in [from, to), oldest first
func (r *MetricRepository) ListEngagement(ctx context.Context, userID string, from, to time.Time) ([]metric.EngagementMetric, error) {
	query := `
		SELECT id, user_id, recorded_at, post_id, likes, comments, shares, impressions, clicks
		FROM engagement_metrics
		WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, errors.DatabaseError("Failed to list engagement metrics", err)
	}
	defer rows.Close()

	var out []metric.EngagementMetric
	for rows.Next() {
		var m metric.EngagementMetric
		var ts int64
		if err := rows.Scan(&m.ID, &m.UserID, &ts, &m.PostID, &m.Likes, &m.Comments,
			&m.Shares, &m.Impressions, &m.Clicks); err != nil {
			return nil, errors.DatabaseError("Failed to scan engagement metric", err)
		}
		m.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to list engagement metrics", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*metric.ProfileMetric, error) {
	var m metric.ProfileMetric
	var ts int64
	if err := row.Scan(&m.ID, &m.UserID, &ts, &m.ProfileViews, &m.SearchAppearances,
		&m.Connections, &m.Followers, &m.PostImpressions, &m.ProfileScore); err != nil {
		return nil, err
	}
	m.Timestamp = time.UnixMilli(ts).UTC()
	return &m, nil
}
