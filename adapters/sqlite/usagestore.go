package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/agencyos/growthmeter/domain/usage"
	"github.com/agencyos/growthmeter/ports"
)

// UsageStore implements ports.UsageStore using SQLite.
type UsageStore struct {
	db *DB
}

// NewUsageStore creates a new SQLite usage store.
func NewUsageStore(db *DB) *UsageStore {
	return &UsageStore{db: db}
}

// sqliteTime formats a timestamp for SQLite datetime comparison.
// Timestamps are stored in UTC for consistent querying.
func sqliteTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// Record appends one usage event.
func (s *UsageStore) Record(ctx context.Context, e usage.Event) error {
	metadata := sql.NullString{String: e.Metadata, Valid: e.HasMetadata}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_events (id, user_id, tool, action, quota_used, metadata, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, string(e.Tool), e.Action, e.QuotaUsed, metadata, sqliteTime(e.Timestamp))
	return err
}

// SumQuota sums QuotaUsed for a user/tool over [start, end).
// An empty action aggregates across all actions for the tool.
func (s *UsageStore) SumQuota(ctx context.Context, userID string, tool usage.Tool, action string, start, end time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quota_used), 0)
		FROM usage_events
		WHERE user_id = ? AND tool = ?
		  AND datetime(timestamp) >= datetime(?) AND datetime(timestamp) < datetime(?)
	`
	args := []any{userID, string(tool), sqliteTime(start), sqliteTime(end)}
	if action != "" {
		query += " AND action = ?"
		args = append(args, action)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// RecordIfUnder appends e only when the window aggregate plus e.QuotaUsed
// stays within limit. The guarded INSERT..SELECT is a single statement, so
// the check and the write cannot interleave with a concurrent reservation.
func (s *UsageStore) RecordIfUnder(ctx context.Context, e usage.Event, start, end time.Time, limit int64) (bool, int64, error) {
	metadata := sql.NullString{String: e.Metadata, Valid: e.HasMetadata}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_events (id, user_id, tool, action, quota_used, metadata, timestamp)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE (
			SELECT COALESCE(SUM(quota_used), 0)
			FROM usage_events
			WHERE user_id = ? AND tool = ? AND action = ?
			  AND datetime(timestamp) >= datetime(?) AND datetime(timestamp) < datetime(?)
		) + ? <= ?
	`,
		e.ID, e.UserID, string(e.Tool), e.Action, e.QuotaUsed, metadata, sqliteTime(e.Timestamp),
		e.UserID, string(e.Tool), e.Action, sqliteTime(start), sqliteTime(end),
		e.QuotaUsed, limit,
	)
	if err != nil {
		return false, 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	// Sum excluding the new row by id, then add the reserved amount only
	// when the guarded insert landed. Keeps the accounting right whether
	// or not the event timestamp falls inside [start, end).
	var current int64
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quota_used), 0)
		FROM usage_events
		WHERE user_id = ? AND tool = ? AND action = ? AND id != ?
		  AND datetime(timestamp) >= datetime(?) AND datetime(timestamp) < datetime(?)
	`, e.UserID, string(e.Tool), e.Action, e.ID, sqliteTime(start), sqliteTime(end)).Scan(&current)
	if err != nil {
		return false, 0, err
	}
	if affected > 0 {
		current += e.QuotaUsed
	}
	return affected > 0, current, nil
}

// Cleanup removes all events older than the given instant.
func (s *UsageStore) Cleanup(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM usage_events WHERE datetime(timestamp) < datetime(?)
	`, sqliteTime(olderThan))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GlobalStats aggregates quota sums and event counts per tool across all users.
func (s *UsageStore) GlobalStats(ctx context.Context, start, end *time.Time) ([]usage.GlobalStat, error) {
	query := `
		SELECT tool, COALESCE(SUM(quota_used), 0), COUNT(*)
		FROM usage_events
	`
	var (
		conds []string
		args  []any
	)
	if start != nil {
		conds = append(conds, "datetime(timestamp) >= datetime(?)")
		args = append(args, sqliteTime(*start))
	}
	if end != nil {
		conds = append(conds, "datetime(timestamp) < datetime(?)")
		args = append(args, sqliteTime(*end))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " GROUP BY tool ORDER BY tool"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []usage.GlobalStat
	for rows.Next() {
		var (
			tool string
			st   usage.GlobalStat
		)
		if err := rows.Scan(&tool, &st.TotalQuota, &st.EventCount); err != nil {
			return nil, err
		}
		st.Tool = usage.Tool(tool)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Ensure interface compliance.
var _ ports.UsageStore = (*UsageStore)(nil)
