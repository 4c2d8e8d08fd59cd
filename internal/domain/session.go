package domain

import (
	"time"
)

// UnknownApp is recorded while no window sample has been attributed yet.
const UnknownApp = "unknown"

// Session is one contiguous interval spent on a single application/window
// while a task was being tracked. An open session has no end time.
type Session struct {
	ID          int64      `json:"id"`
	TaskID      int64      `json:"task_id"`
	AppName     string     `json:"app_name"`
	WindowTitle string     `json:"window_title"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Day         string     `json:"day"`
}

// IsOpen returns true while the session has no end time.
func (s Session) IsOpen() bool {
	return s.EndTime == nil
}

// Close returns a copy of the session ended at end.
func (s Session) Close(end time.Time) Session {
	s.EndTime = &end
	return s
}

// Duration returns the session length; an open session runs until now.
// Negative spans are reported as zero.
func (s Session) Duration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if d := end.Sub(s.StartTime); d > 0 {
		return d
	}
	return 0
}
