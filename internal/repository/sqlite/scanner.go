package sqlite

import (
	"database/sql"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanAll drains rows through a single-row scan function.
func scanAll[T any](rows Rows, scan func(Scanner) (*T, error)) ([]*T, error) {
	var results []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// ScanFolder scans a single folder from a database row
func ScanFolder(scanner Scanner) (*Folder, error) {
	folder := &Folder{}
	var createdAt int64
	if err := scanner.Scan(&folder.ID, &folder.Name, &folder.IsDefault, &createdAt); err != nil {
		return nil, err
	}
	folder.CreatedAt = ParseTimeFromDB(createdAt)
	return folder, nil
}

// ScanFolders scans multiple folders from database rows
func ScanFolders(rows Rows) ([]*Folder, error) {
	return scanAll(rows, ScanFolder)
}

// ScanTask scans a single task from a database row
func ScanTask(scanner Scanner) (*Task, error) {
	task := &Task{}
	var createdAt int64
	if err := scanner.Scan(&task.ID, &task.Title, &task.Description, &task.FolderID, &createdAt); err != nil {
		return nil, err
	}
	task.CreatedAt = ParseTimeFromDB(createdAt)
	return task, nil
}

// ScanTasks scans multiple tasks from database rows
func ScanTasks(rows Rows) ([]*Task, error) {
	return scanAll(rows, ScanTask)
}

// ScanSession scans a single session from a database row
func ScanSession(scanner Scanner) (*Session, error) {
	session := &Session{}
	var startTime int64
	var endTime, lastSeen sql.NullInt64

	err := scanner.Scan(
		&session.ID,
		&session.TaskID,
		&session.AppName,
		&session.WindowTitle,
		&startTime,
		&endTime,
		&lastSeen,
		&session.Day,
	)
	if err != nil {
		return nil, err
	}

	session.StartTime = ParseTimeFromDB(startTime)
	if endTime.Valid {
		end := ParseTimeFromDB(endTime.Int64)
		session.EndTime = &end
	}
	if lastSeen.Valid {
		seen := ParseTimeFromDB(lastSeen.Int64)
		session.LastSeenAt = &seen
	}

	return session, nil
}

// ScanSessions scans multiple sessions from database rows
func ScanSessions(rows Rows) ([]*Session, error) {
	return scanAll(rows, ScanSession)
}

// ScanAggregate scans one bucket of an aggregate query. Empty buckets (no
// matching sessions with GroupByNone) come back with NULL bounds.
func ScanAggregate(scanner Scanner) (*Aggregate, error) {
	agg := &Aggregate{}
	var total, first, last sql.NullInt64

	if err := scanner.Scan(&agg.Day, &agg.Month, &agg.AppName, &total, &agg.Sessions, &first, &last); err != nil {
		return nil, err
	}

	agg.Total = msToDuration(total.Int64)
	if first.Valid {
		agg.FirstStart = ParseTimeFromDB(first.Int64)
	}
	if last.Valid {
		agg.LastEnd = ParseTimeFromDB(last.Int64)
	}
	return agg, nil
}

// ScanAggregates scans multiple aggregate buckets
func ScanAggregates(rows Rows) ([]*Aggregate, error) {
	return scanAll(rows, ScanAggregate)
}
