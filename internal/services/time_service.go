package services

import (
	"fmt"
	"time"

	"focus-tracker/internal/repository/sqlite"
)

// timeServiceImpl implements the TimeService interface
type timeServiceImpl struct {
	loc *time.Location
	now func() time.Time
}

// NewTimeService creates a TimeService for loc. A nil now uses time.Now.
func NewTimeService(loc *time.Location, now func() time.Time) TimeService {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &timeServiceImpl{loc: loc, now: now}
}

func (t *timeServiceImpl) Now() time.Time {
	return t.now().In(t.loc)
}

func (t *timeServiceImpl) Location() *time.Location {
	return t.loc
}

// Today returns local midnight of the current day
func (t *timeServiceImpl) Today() time.Time {
	return t.StartOfDay(t.Now())
}

func (t *timeServiceImpl) StartOfDay(value time.Time) time.Time {
	value = value.In(t.loc)
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, t.loc)
}

// StartOfWeek returns the Monday of the ISO week containing value
func (t *timeServiceImpl) StartOfWeek(value time.Time) time.Time {
	day := t.StartOfDay(value)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func (t *timeServiceImpl) StartOfMonth(value time.Time) time.Time {
	value = value.In(t.loc)
	return time.Date(value.Year(), value.Month(), 1, 0, 0, 0, 0, t.loc)
}

// FormatDate renders the day bucket key of value
func (t *timeServiceImpl) FormatDate(value time.Time) string {
	return sqlite.FormatDay(value, t.loc)
}

// FormatDuration formats a duration as "1h 5m", "5m" or "42s"
func FormatDuration(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}

	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	}
}

