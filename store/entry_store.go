package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"sitepulse/api/database"
	"sitepulse/api/models"
)

// EntryStore persists ingested events in ClickHouse. The entries stream
// is strictly append-only: rows are inserted once and never updated.
type EntryStore struct {
	DB *database.ClickHouseClient
}

func NewEntryStore(chClient *database.ClickHouseClient) *EntryStore {
	return &EntryStore{
		DB: chClient,
	}
}

// EnsureSchema creates the entries table if it does not exist yet.
func (s *EntryStore) EnsureSchema(ctx context.Context) error {
	err := s.DB.Conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS entries (
			entry_id   UUID,
			project_id UUID,
			entry_type LowCardinality(String),
			session_id Nullable(String),
			data       String,
			created_at DateTime64(3, 'UTC')
		)
		ENGINE = MergeTree
		ORDER BY (project_id, entry_type, created_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure entries schema: %w", err)
	}
	return nil
}

// InsertEntry appends exactly one event row. Each ingest call maps to one
// insert; there is no cross-call batching or transaction.
func (s *EntryStore) InsertEntry(ctx context.Context, entry models.Entry) error {
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO entries (
			entry_id, project_id, entry_type, session_id, data, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}

	err = batch.Append(
		entry.EntryID,
		entry.ProjectID,
		string(entry.EntryType),
		entry.SessionID,
		string(entry.Data),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// CountByHour returns one bucket per hour in [start, end), ascending,
// with zero counts for hours that saw no matching events. The store query
// is sparse; the dense series is built in FillHourlyBuckets so callers
// never handle missing hours.
func (s *EntryStore) CountByHour(ctx context.Context, projectID string, entryType models.EntryType, start, end time.Time) ([]models.HourlyCount, error) {
	query := `
		SELECT toStartOfHour(created_at) AS time_bucket, count() AS views
		FROM entries
		WHERE project_id = ? AND entry_type = ? AND created_at >= ? AND created_at < ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`

	rows, err := s.DB.Conn.Query(ctx, query, projectID, string(entryType), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly event counts: %w", err)
	}
	defer rows.Close()

	sparse := make(map[time.Time]uint64)
	for rows.Next() {
		var timeBucket time.Time
		var count uint64
		if err := rows.Scan(&timeBucket, &count); err != nil {
			return nil, fmt.Errorf("failed to scan hourly count row: %w", err)
		}
		sparse[timeBucket.UTC()] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during hourly count query: %w", err)
	}

	return FillHourlyBuckets(start, end, sparse), nil
}

// FillHourlyBuckets expands a sparse hour->count map into a dense series
// over [start, end): one bucket per hour, ascending, zeros where the map
// has no entry. end itself is never a bucket (half-open interval).
func FillHourlyBuckets(start, end time.Time, sparse map[time.Time]uint64) []models.HourlyCount {
	var buckets []models.HourlyCount
	for t := start.UTC(); t.Before(end); t = t.Add(time.Hour) {
		buckets = append(buckets, models.HourlyCount{
			StartTime: t,
			Views:     sparse[t],
		})
	}
	return buckets
}

// KeyNumbers computes the dashboard headline figures for one project over
// [start, end): total visits, unique visitors, and the average session
// duration in milliseconds.
func (s *EntryStore) KeyNumbers(ctx context.Context, projectID string, start, end time.Time) (models.KeyNumbers, error) {
	var kn models.KeyNumbers

	visitsQuery := `
		SELECT count()
		FROM entries
		WHERE project_id = ? AND entry_type = 'load' AND created_at >= ? AND created_at < ?
	`
	if err := s.DB.Conn.QueryRow(ctx, visitsQuery, projectID, start, end).Scan(&kn.Visits); err != nil {
		return kn, fmt.Errorf("failed to query visit count: %w", err)
	}

	uniqueQuery := `
		SELECT uniq(session_id)
		FROM entries
		WHERE project_id = ? AND session_id IS NOT NULL AND created_at >= ? AND created_at < ?
	`
	if err := s.DB.Conn.QueryRow(ctx, uniqueQuery, projectID, start, end).Scan(&kn.UniqueVisitors); err != nil {
		return kn, fmt.Errorf("failed to query unique visitors: %w", err)
	}

	durationQuery := `
		SELECT avg(duration_ms)
		FROM (
			SELECT session_id, dateDiff('millisecond', min(created_at), max(created_at)) AS duration_ms
			FROM entries
			WHERE project_id = ? AND session_id IS NOT NULL AND created_at >= ? AND created_at < ?
			GROUP BY session_id
		)
	`
	var avgDuration float64
	if err := s.DB.Conn.QueryRow(ctx, durationQuery, projectID, start, end).Scan(&avgDuration); err != nil {
		return kn, fmt.Errorf("failed to query average session duration: %w", err)
	}

	// avg() over an empty set yields NaN, which JSON cannot carry.
	if math.IsNaN(avgDuration) {
		avgDuration = 0.0
	}
	kn.AvgSessionDurationMs = avgDuration

	return kn, nil
}
