package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/errors"
	"focus-tracker/internal/services"
)

func TestSummaryCommand_Execute(t *testing.T) {
	var out bytes.Buffer
	app, mc := newTestApp(&out)
	mc.summary = &services.Summary{
		TotalTime:         36000,
		TodayTime:         3900,
		WeekTime:          7200,
		MonthTime:         18000,
		TotalSessions:     42,
		TotalTasks:        5,
		TotalApplications: 7,
		Running:           true,
	}

	require.NoError(t, NewSummaryCommand(app).Execute(context.Background(), nil))

	got := out.String()
	for _, want := range []string{"Today", "1h 5m", "This week", "2h 0m", "Last 30 days", "5h 0m", "All time", "10h 0m", "42", "running"} {
		assert.Contains(t, got, want)
	}

	err := NewSummaryCommand(app).Execute(context.Background(), []string{"all"})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestDailyCommand_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("empty day", func(t *testing.T) {
		var out bytes.Buffer
		app, mc := newTestApp(&out)

		require.NoError(t, NewDailyCommand(app).Execute(ctx, []string{"2025-03-12"}))
		assert.Equal(t, "2025-03-12", mc.lastDailyDate)
		assert.Equal(t, "2025-03-12: 0s in 0 session(s)\nNo activity recorded.\n", out.String())
	})

	t.Run("per application table", func(t *testing.T) {
		var out bytes.Buffer
		app, mc := newTestApp(&out)
		first := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
		last := time.Date(2025, 3, 12, 11, 30, 0, 0, time.UTC)
		mc.daily = &services.DailyStats{
			Date:         "2025-03-12",
			TotalTime:    5400,
			SessionCount: 3,
			Applications: []services.AppStats{
				{AppName: "editor", TotalTime: 3600, SessionCount: 2, FirstUsed: &first, LastUsed: &last},
				{AppName: "browser", TotalTime: 1800, SessionCount: 1},
			},
		}

		require.NoError(t, NewDailyCommand(app).Execute(ctx, nil))
		assert.Empty(t, mc.lastDailyDate)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "2025-03-12: 1h 30m in 3 session(s)", lines[0])
		assert.Equal(t, []string{"APPLICATION", "TIME", "SESSIONS", "FIRST", "LAST"}, strings.Fields(lines[1]))
		assert.Equal(t, []string{"editor", "1h", "0m", "2", "09:00", "11:30"}, strings.Fields(lines[2]))
		assert.Equal(t, []string{"browser", "30m", "1", "-", "-"}, strings.Fields(lines[3]))
	})

	t.Run("too many arguments", func(t *testing.T) {
		app, _ := newTestApp(&bytes.Buffer{})
		err := NewDailyCommand(app).Execute(ctx, []string{"2025-03-12", "2025-03-13"})
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
	})
}

func timelineFixture() *services.Timeline {
	start := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)
	open := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	return &services.Timeline{
		Date: "2025-03-12",
		Sessions: []services.TimelineEntry{
			{
				Session:  domain.Session{ID: 8, TaskID: 101, AppName: "browser", WindowTitle: "Docs, draft", StartTime: open},
				Duration: 300,
			},
			{
				Session:  domain.Session{ID: 7, TaskID: 101, AppName: "editor", WindowTitle: "main.go", StartTime: start, EndTime: &end},
				Duration: 1200,
			},
		},
	}
}

func TestTimelineCommand_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		app, mc := newTestApp(&out)
		mc.timeline = timelineFixture()

		require.NoError(t, NewTimelineCommand(app).Execute(ctx, []string{"2025-03-12"}))
		assert.Equal(t, "2025-03-12", mc.lastTimelineDate)
		assert.Equal(t, services.MaxTimelineLimit, mc.lastTimelineLimit)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, []string{"START", "END", "DURATION", "TASK", "APPLICATION", "WINDOW"}, strings.Fields(lines[0]))
		assert.Equal(t, []string{"10:00", "running", "5m", "101", "browser", "Docs,", "draft"}, strings.Fields(lines[1]))
		assert.Equal(t, []string{"09:00", "09:20", "20m", "101", "editor", "main.go"}, strings.Fields(lines[2]))
	})

	t.Run("csv", func(t *testing.T) {
		var out bytes.Buffer
		app, mc := newTestApp(&out)
		mc.timeline = timelineFixture()

		require.NoError(t, NewTimelineCommand(app).Execute(ctx, []string{"format=csv"}))
		assert.Empty(t, mc.lastTimelineDate)

		records, err := csv.NewReader(strings.NewReader(out.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"ID", "Task ID", "Start Time", "End Time", "Duration (seconds)", "Application", "Window"}, records[0])
		assert.Equal(t, []string{"8", "101", "2025-03-12T10:00:00Z", "", "300", "browser", "Docs, draft"}, records[1])
		assert.Equal(t, []string{"7", "101", "2025-03-12T09:00:00Z", "2025-03-12T09:20:00Z", "1200", "editor", "main.go"}, records[2])
	})

	t.Run("empty day", func(t *testing.T) {
		var out bytes.Buffer
		app, _ := newTestApp(&out)

		require.NoError(t, NewTimelineCommand(app).Execute(ctx, []string{"2025-03-01", "format=table"}))
		assert.Equal(t, "No sessions on 2025-03-01.\n", out.String())
	})

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown format", args: []string{"format=xml"}},
		{name: "two dates", args: []string{"2025-03-01", "2025-03-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(&bytes.Buffer{})
			err := NewTimelineCommand(app).Execute(ctx, tt.args)
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{seconds: 0, expected: "0s"},
		{seconds: -5, expected: "0s"},
		{seconds: 42, expected: "42s"},
		{seconds: 59.6, expected: "1m"},
		{seconds: 300, expected: "5m"},
		{seconds: 3600, expected: "1h 0m"},
		{seconds: 3900, expected: "1h 5m"},
		{seconds: 90061, expected: "25h 1m"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatSeconds(tt.seconds))
		})
	}
}
