package services

import (
	"context"
	"time"

	"focus-tracker/internal/domain"
)

// Durations in reports are float seconds; timestamps marshal as RFC3339.

// AppStats is the time spent in one application
type AppStats struct {
	AppName      string     `json:"app_name"`
	TotalTime    float64    `json:"total_time"`
	SessionCount int64      `json:"session_count"`
	AverageTime  float64    `json:"average_time"`
	FirstUsed    *time.Time `json:"first_used,omitempty"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
}

// DailyStats breaks one day down by application
type DailyStats struct {
	Date         string     `json:"date"`
	TotalTime    float64    `json:"total_time"`
	SessionCount int64      `json:"session_count"`
	Applications []AppStats `json:"applications"`
}

// DayTotal is one day of a multi-day report. Applications is only filled by
// the weekly report.
type DayTotal struct {
	Date         string     `json:"date"`
	TotalTime    float64    `json:"total_time"`
	SessionCount int64      `json:"session_count"`
	Applications []AppStats `json:"applications,omitempty"`
}

// WeeklyStats covers seven consecutive days. Days without activity are
// omitted.
type WeeklyStats struct {
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	TotalTime    float64    `json:"total_time"`
	SessionCount int64      `json:"session_count"`
	Days         []DayTotal `json:"days"`
}

// MonthlyStats covers one calendar month
type MonthlyStats struct {
	Month        string     `json:"month"`
	TotalTime    float64    `json:"total_time"`
	SessionCount int64      `json:"session_count"`
	Days         []DayTotal `json:"days"`
}

// MonthTotal is one month of a year report
type MonthTotal struct {
	Month        string  `json:"month"`
	TotalTime    float64 `json:"total_time"`
	SessionCount int64   `json:"session_count"`
}

// YearStats covers one calendar year
type YearStats struct {
	Year         int          `json:"year"`
	TotalTime    float64      `json:"total_time"`
	SessionCount int64        `json:"session_count"`
	Days         []DayTotal   `json:"days"`
	Months       []MonthTotal `json:"months"`
}

// Summary holds the headline totals
type Summary struct {
	TotalTime         float64 `json:"total_time"`
	TodayTime         float64 `json:"today_time"`
	WeekTime          float64 `json:"week_time"`
	MonthTime         float64 `json:"month_time"`
	TotalSessions     int64   `json:"total_sessions"`
	TotalTasks        int64   `json:"total_tasks"`
	TotalApplications int64   `json:"total_applications"`
	Running           bool    `json:"running"`
}

// TaskStats is the time attributed to one task
type TaskStats struct {
	Task         *domain.Task `json:"task"`
	TotalTime    float64      `json:"total_time"`
	SessionCount int64        `json:"session_count"`
	Applications []AppStats   `json:"applications"`
	IsRunning    bool         `json:"is_running"`
}

// TimelineEntry is a session with its duration so far
type TimelineEntry struct {
	domain.Session
	Duration float64 `json:"duration"`
}

// Timeline lists the sessions of one day, newest first
type Timeline struct {
	Date     string          `json:"date"`
	Sessions []TimelineEntry `json:"sessions"`
}

const (
	DefaultTimelineLimit = 100
	MaxTimelineLimit     = 1000
	DefaultSessionLimit  = 1000
	MaxSessionLimit      = 10000
)

// TrackerState is the part of the tracker the services consult. A nil
// TrackerState means nothing is tracked.
type TrackerState interface {
	Running() bool
	IsTracking(taskID int64) bool
}

// TimeService owns the clock and the calendar arithmetic of day buckets
type TimeService interface {
	Now() time.Time
	Location() *time.Location

	// Calendar helpers; all results are local midnight.
	Today() time.Time
	StartOfDay(t time.Time) time.Time
	StartOfWeek(t time.Time) time.Time
	StartOfMonth(t time.Time) time.Time

	FormatDate(t time.Time) string
}

// TaskService handles the folder and task catalog
type TaskService interface {
	ListFolders(ctx context.Context) ([]*domain.Folder, error)
	CreateFolder(ctx context.Context, name string) (*domain.Folder, error)
	RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error)
	DeleteFolder(ctx context.Context, id int64) (int64, error)

	ListTasks(ctx context.Context, folderID *int64) ([]*domain.Task, error)
	CreateTask(ctx context.Context, title, description string, folderID int64) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, title, description *string) (*domain.Task, error)
	MoveTask(ctx context.Context, id, folderID int64) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) (int64, error)
}

// SearchService lists raw sessions
type SearchService interface {
	GetTimeline(ctx context.Context, date time.Time, limit int) (*Timeline, error)
	SearchSessions(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error)
}

// ReportingService aggregates sessions into time buckets
type ReportingService interface {
	GetDailyStats(ctx context.Context, date time.Time) (*DailyStats, error)
	GetWeeklyStats(ctx context.Context, start time.Time) (*WeeklyStats, error)
	GetMonthlyStats(ctx context.Context, month time.Time) (*MonthlyStats, error)
	GetYearStats(ctx context.Context, year int) (*YearStats, error)
	GetSummary(ctx context.Context) (*Summary, error)
	GetTaskStats(ctx context.Context, taskID int64) (*TaskStats, error)
	ListApplications(ctx context.Context) ([]AppStats, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TimeService      TimeService
	TaskService      TaskService
	SearchService    SearchService
	ReportingService ReportingService
}
