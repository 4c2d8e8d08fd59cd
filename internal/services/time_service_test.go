package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeService_Calendar(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	service := NewTimeService(time.UTC, fixedClock(now))

	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), service.Today())
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), service.StartOfMonth(now))
	assert.Equal(t, "2025-03-12", service.FormatDate(now))
}

func TestTimeService_StartOfWeek(t *testing.T) {
	service := NewTimeService(time.UTC, nil)
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
	}{
		{"monday morning", time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)},
		{"sunday night", time.Date(2025, 3, 16, 23, 59, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, monday, service.StartOfWeek(tt.input))
		})
	}
}

func TestTimeService_LocalDayBoundaries(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 20:00 UTC is already the next morning in Tokyo.
	now := time.Date(2025, 3, 12, 20, 0, 0, 0, time.UTC)
	service := NewTimeService(tokyo, fixedClock(now))

	assert.Equal(t, "2025-03-13", service.FormatDate(now))
	assert.Equal(t, time.Date(2025, 3, 13, 0, 0, 0, 0, tokyo), service.Today())
	assert.Equal(t, tokyo, service.Now().Location())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{-time.Minute, "0s"},
		{42 * time.Second, "42s"},
		{5 * time.Minute, "5m"},
		{time.Hour + 5*time.Minute, "1h 5m"},
		{26 * time.Hour, "26h 0m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.duration))
	}
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}
