package sqlite

import "time"

// DefaultFolderID is the id of the folder seeded by the first migration.
const DefaultFolderID int64 = 1

// Folder groups tasks. Exactly one folder is the default.
type Folder struct {
	ID        int64
	Name      string
	IsDefault bool
	CreatedAt time.Time
}

// Task is a user-defined unit of work sessions are attributed to
type Task struct {
	ID          int64
	Title       string
	Description string
	FolderID    int64
	CreatedAt   time.Time
}

// Session is one contiguous interval on a single application/window.
// EndTime is nil while the session is open.
type Session struct {
	ID          int64
	TaskID      int64
	AppName     string
	WindowTitle string
	StartTime   time.Time
	EndTime     *time.Time
	LastSeenAt  *time.Time
	Day         string
}

// SessionFilter narrows session reads. Days are inclusive YYYY-MM-DD bounds
// on the start-day bucket. Limit 0 means unlimited.
type SessionFilter struct {
	StartDay *string
	EndDay   *string
	TaskID   *int64
	AppName  *string
	Limit    int
}

// GroupBy selects the bucket key of an aggregate query
type GroupBy int

const (
	GroupByNone GroupBy = iota
	GroupByApp
	GroupByDay
	GroupByDayApp
	GroupByMonth
)

// Aggregate is one bucket of summed session time. Keys not part of the
// grouping are empty.
type Aggregate struct {
	Day        string
	Month      string
	AppName    string
	Total      time.Duration
	Sessions   int64
	FirstStart time.Time
	LastEnd    time.Time
}
