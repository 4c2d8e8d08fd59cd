package sqlite

import (
	"time"
)

// DayLayout is the layout of the day bucket column.
const DayLayout = "2006-01-02"

// FormatTimeForDB converts a time to unix milliseconds for storage
func FormatTimeForDB(t time.Time) int64 {
	return t.UnixMilli()
}

// FormatTimePtrForDB converts a *time.Time to unix milliseconds, returning nil if the pointer is nil
func FormatTimePtrForDB(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// ParseTimeFromDB converts stored unix milliseconds back into a time
func ParseTimeFromDB(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// FormatDay returns the bucket key of t in loc.
func FormatDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD bucket key as midnight in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DayLayout, day, loc)
}
