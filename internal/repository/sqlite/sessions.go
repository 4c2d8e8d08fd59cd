package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"focus-tracker/internal/errors"
)

const sessionColumns = `id, task_id, app_name, window_title, start_time, end_time, last_seen_at, day`

// durationExpr is the length of a session in ms; open sessions run until the
// bound "now" argument.
const durationExpr = `MAX(COALESCE(end_time, ?) - start_time, 0)`

func sessionNotFound(id int64) error {
	return errors.NewNotFoundError("session", fmt.Sprintf("%d", id))
}

// OpenSession inserts a session and fills in its ID and day bucket
func (r *Store) OpenSession(ctx context.Context, session *Session) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	session.Day = FormatDay(session.StartTime, r.opts.Location)
	query := `
	INSERT INTO sessions (task_id, app_name, window_title, start_time, end_time, last_seen_at, day)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query,
		session.TaskID,
		session.AppName,
		session.WindowTitle,
		FormatTimeForDB(session.StartTime),
		FormatTimePtrForDB(session.EndTime),
		FormatTimePtrForDB(session.LastSeenAt),
		session.Day,
	)
	if err != nil {
		return err
	}

	session.ID = id
	return nil
}

// SetSessionWindow rewrites the application and window of a session in place
func (r *Store) SetSessionWindow(ctx context.Context, id int64, appName, windowTitle string) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `UPDATE sessions SET app_name = ?, window_title = ? WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, sessionNotFound(id), appName, windowTitle, id)
}

// CloseSession sets the end time of a session. Closing again with the same
// timestamp is harmless, which lets failed writes be retried.
func (r *Store) CloseSession(ctx context.Context, id int64, end time.Time) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `UPDATE sessions SET end_time = MAX(?, start_time) WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, sessionNotFound(id), FormatTimeForDB(end), id)
}

// CheckpointSession records the last time the open session was observed
func (r *Store) CheckpointSession(ctx context.Context, id int64, seen time.Time) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `UPDATE sessions SET last_seen_at = ? WHERE id = ? AND end_time IS NULL`
	return ExecuteWithRowsAffected(ctx, r.db, query, sessionNotFound(id), FormatTimeForDB(seen), id)
}

// DeleteSession removes a session that never recorded any activity
func (r *Store) DeleteSession(ctx context.Context, id int64) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `DELETE FROM sessions WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, sessionNotFound(id), id)
}

// CountTrackedTasks returns the number of distinct tasks with at least one session
func (r *Store) CountTrackedTasks(ctx context.Context) (int64, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT task_id) FROM sessions`).Scan(&count); err != nil {
		return 0, HandleDatabaseError("count tracked tasks", err)
	}
	return count, nil
}

// GetSession retrieves a session by ID
func (r *Store) GetSession(ctx context.Context, id int64) (*Session, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanSession, "session", sessionNotFound(id), id)
}

// GetOpenSession returns the session with no end time, or a not found error
func (r *Store) GetOpenSession(ctx context.Context) (*Session, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE end_time IS NULL ORDER BY start_time DESC LIMIT 1`
	return QuerySingle(ctx, r.db, query, ScanSession, "session", errors.NewNotFoundError("session", "open"))
}

// ListSessions returns sessions matching filter, newest first
func (r *Store) ListSessions(ctx context.Context, filter SessionFilter) ([]*Session, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	where, args := filter.where()
	query := `SELECT ` + sessionColumns + ` FROM sessions` + where + ` ORDER BY start_time DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	return QueryMultiple(ctx, r.db, query, ScanSessions, "sessions", args...)
}

// Aggregate sums session durations per bucket. The open session counts up to
// now. GroupByNone always yields exactly one row.
func (r *Store) Aggregate(ctx context.Context, filter SessionFilter, groupBy GroupBy, now time.Time) ([]*Aggregate, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	var keys, group, order string
	switch groupBy {
	case GroupByNone:
		keys = `'', '', ''`
	case GroupByApp:
		keys, group, order = `'', '', app_name`, `app_name`, `total_ms DESC, app_name ASC`
	case GroupByDay:
		keys, group, order = `day, substr(day, 1, 7), ''`, `day`, `day ASC`
	case GroupByDayApp:
		keys, group, order = `day, substr(day, 1, 7), app_name`, `day, app_name`, `day ASC, total_ms DESC, app_name ASC`
	case GroupByMonth:
		keys, group, order = `'', substr(day, 1, 7), ''`, `substr(day, 1, 7)`, `2 ASC`
	default:
		return nil, errors.NewInvalidInputError("group_by", groupBy, "unknown grouping")
	}

	nowMs := FormatTimeForDB(now)
	where, filterArgs := filter.where()

	var b strings.Builder
	b.WriteString(`SELECT ` + keys + `, SUM(` + durationExpr + `) AS total_ms, COUNT(*), MIN(start_time), MAX(COALESCE(end_time, ?)) FROM sessions`)
	b.WriteString(where)
	if group != "" {
		b.WriteString(` GROUP BY ` + group + ` ORDER BY ` + order)
	}

	args := append([]interface{}{nowMs, nowMs}, filterArgs...)
	return QueryMultiple(ctx, r.db, b.String(), ScanAggregates, "session aggregates", args...)
}

func (f SessionFilter) where() (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if f.StartDay != nil {
		conditions = append(conditions, "day >= ?")
		args = append(args, *f.StartDay)
	}
	if f.EndDay != nil {
		conditions = append(conditions, "day <= ?")
		args = append(args, *f.EndDay)
	}
	if f.TaskID != nil {
		conditions = append(conditions, "task_id = ?")
		args = append(args, *f.TaskID)
	}
	if f.AppName != nil {
		conditions = append(conditions, "app_name = ?")
		args = append(args, *f.AppName)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
