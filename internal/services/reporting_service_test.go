package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-tracker/internal/errors"
	"focus-tracker/internal/probe"
	"focus-tracker/internal/repository/sqlite"
	"focus-tracker/internal/tracker"
)

// reportNow is a Wednesday; its ISO week started on 2025-03-10.
var reportNow = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

type reportFixture struct {
	reporting ReportingService
	search    SearchService
	repo      *sqlite.Store
	taskA     int64
	taskB     int64
	tracker   *fakeTracker
}

func TestReportingService_EmptyStore(t *testing.T) {
	f := setupReportFixture(t, false)
	ctx := context.Background()

	summary, err := f.reporting.GetSummary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalTime)
	assert.Zero(t, summary.TotalSessions)
	assert.Zero(t, summary.TotalApplications)

	daily, err := f.reporting.GetDailyStats(ctx, reportNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-12", daily.Date)
	assert.NotNil(t, daily.Applications)
	assert.Empty(t, daily.Applications)

	year, err := f.reporting.GetYearStats(ctx, 2025)
	require.NoError(t, err)
	assert.Empty(t, year.Days)
	assert.Empty(t, year.Months)
}

func TestReportingService_GetDailyStats(t *testing.T) {
	f := setupReportFixture(t, true)

	stats, err := f.reporting.GetDailyStats(context.Background(), reportNow)
	require.NoError(t, err)

	assert.Equal(t, 7200.0, stats.TotalTime, "the open session counts up to now")
	assert.Equal(t, int64(3), stats.SessionCount)
	require.Len(t, stats.Applications, 2)

	editor := stats.Applications[0]
	assert.Equal(t, "Editor", editor.AppName)
	assert.Equal(t, 5400.0, editor.TotalTime)
	assert.Equal(t, int64(2), editor.SessionCount)
	assert.Equal(t, 2700.0, editor.AverageTime)
	require.NotNil(t, editor.FirstUsed)
	assert.True(t, editor.FirstUsed.Equal(time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)))
	require.NotNil(t, editor.LastUsed)
	assert.True(t, editor.LastUsed.Equal(reportNow))

	assert.Equal(t, "Browser", stats.Applications[1].AppName)
}

func TestReportingService_GetWeeklyStats(t *testing.T) {
	f := setupReportFixture(t, true)

	stats, err := f.reporting.GetWeeklyStats(context.Background(), reportNow.AddDate(0, 0, -6))
	require.NoError(t, err)

	assert.Equal(t, "2025-03-06", stats.StartDate)
	assert.Equal(t, "2025-03-12", stats.EndDate)
	assert.Equal(t, 18000.0, stats.TotalTime)

	require.Len(t, stats.Days, 3, "days without activity are omitted")
	assert.Equal(t, "2025-03-09", stats.Days[0].Date)
	assert.Equal(t, 3600.0, stats.Days[0].TotalTime)
	assert.Equal(t, "2025-03-10", stats.Days[1].Date)
	assert.Equal(t, "2025-03-12", stats.Days[2].Date)
	assert.Equal(t, 7200.0, stats.Days[2].TotalTime)
	require.Len(t, stats.Days[2].Applications, 2)
	assert.Equal(t, "Editor", stats.Days[2].Applications[0].AppName)
}

func TestReportingService_GetMonthlyStats(t *testing.T) {
	f := setupReportFixture(t, true)

	stats, err := f.reporting.GetMonthlyStats(context.Background(), time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-03", stats.Month)
	assert.Equal(t, 18000.0, stats.TotalTime)
	assert.Equal(t, int64(5), stats.SessionCount)
	require.Len(t, stats.Days, 3)
	assert.Equal(t, []string{"2025-03-09", "2025-03-10", "2025-03-12"},
		[]string{stats.Days[0].Date, stats.Days[1].Date, stats.Days[2].Date})
}

func TestReportingService_GetYearStats(t *testing.T) {
	f := setupReportFixture(t, true)
	ctx := context.Background()

	tests := []struct {
		year       int
		total      float64
		days       int
		months     []string
		monthTotal []float64
	}{
		{2025, 28800, 4, []string{"2025-02", "2025-03"}, []float64{10800, 18000}},
		{2024, 3600, 1, []string{"2024-12"}, []float64{3600}},
		{2023, 0, 0, []string{}, []float64{}},
	}

	for _, tt := range tests {
		stats, err := f.reporting.GetYearStats(ctx, tt.year)
		require.NoError(t, err)
		assert.Equal(t, tt.year, stats.Year)
		assert.Equal(t, tt.total, stats.TotalTime)
		assert.Len(t, stats.Days, tt.days)

		months := []string{}
		totals := []float64{}
		for _, m := range stats.Months {
			months = append(months, m.Month)
			totals = append(totals, m.TotalTime)
		}
		assert.Equal(t, tt.months, months)
		assert.Equal(t, tt.monthTotal, totals)
	}
}

func TestReportingService_GetSummary(t *testing.T) {
	f := setupReportFixture(t, true)
	f.tracker.running, f.tracker.taskID = true, f.taskA

	summary, err := f.reporting.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 32400.0, summary.TotalTime)
	assert.Equal(t, 7200.0, summary.TodayTime)
	assert.Equal(t, 14400.0, summary.WeekTime, "the week starts on Monday")
	assert.Equal(t, 18000.0, summary.MonthTime, "the trailing 30 days include today")
	assert.Equal(t, int64(7), summary.TotalSessions)
	assert.Equal(t, int64(2), summary.TotalTasks)
	assert.Equal(t, int64(3), summary.TotalApplications)
	assert.True(t, summary.Running)
}

func TestReportingService_SummaryCountsOnlyTrackedTasks(t *testing.T) {
	f := setupReportFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.repo.CreateTask(ctx, &sqlite.Task{Title: "Someday"}))

	summary, err := f.reporting.GetSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalTasks)
	assert.Equal(t, int64(3), summary.TotalApplications)
}

func TestReportingService_GetTaskStats(t *testing.T) {
	f := setupReportFixture(t, true)
	ctx := context.Background()

	stats, err := f.reporting.GetTaskStats(ctx, f.taskA)
	require.NoError(t, err)
	assert.Equal(t, "Report", stats.Task.Title)
	assert.Equal(t, 27000.0, stats.TotalTime)
	assert.Equal(t, int64(5), stats.SessionCount)
	require.Len(t, stats.Applications, 2)
	assert.Equal(t, "Editor", stats.Applications[0].AppName)
	assert.Equal(t, 23400.0, stats.Applications[0].TotalTime)

	stats, err = f.reporting.GetTaskStats(ctx, f.taskB)
	require.NoError(t, err)
	assert.Equal(t, 5400.0, stats.TotalTime)

	_, err = f.reporting.GetTaskStats(ctx, 404)
	assert.ErrorIs(t, err, errors.ErrInvalidTask)
}

func TestReportingService_ListApplications(t *testing.T) {
	f := setupReportFixture(t, true)

	apps, err := f.reporting.ListApplications(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, "Editor", apps[0].AppName)
	assert.Equal(t, 23400.0, apps[0].TotalTime)
	assert.Equal(t, "Browser", apps[1].AppName)
	assert.Equal(t, "Terminal", apps[2].AppName)
}

func TestReportingService_LiveSessionCountedConsistently(t *testing.T) {
	f := setupReportFixture(t, true)
	ctx := context.Background()

	daily, err := f.reporting.GetDailyStats(ctx, reportNow)
	require.NoError(t, err)
	summary, err := f.reporting.GetSummary(ctx)
	require.NoError(t, err)
	timeline, err := f.search.GetTimeline(ctx, reportNow, 0)
	require.NoError(t, err)

	var timelineTotal float64
	for _, s := range timeline.Sessions {
		timelineTotal += s.Duration
	}

	assert.Equal(t, daily.TotalTime, summary.TodayTime)
	assert.Equal(t, daily.TotalTime, timelineTotal)
}

// setupReportFixture seeds two tasks and sessions around reportNow:
//
//	2024-12-31 B Browser  1h
//	2025-02-01 A Editor   3h
//	2025-03-09 A Terminal 1h (Sunday)
//	2025-03-10 A Editor   2h (Monday)
//	2025-03-12 A Editor   1h, B Browser 30m, A Editor open since 14:30
func setupReportFixture(t *testing.T, seed bool) *reportFixture {
	t.Helper()
	repo := setupRepo(t)
	ctx := context.Background()

	tracker := &fakeTracker{}
	timeService := NewTimeService(time.UTC, fixedClock(reportNow))
	taskService := NewTaskService(repo, tracker)
	f := &reportFixture{
		reporting: NewReportingService(repo, timeService, taskService, tracker),
		search:    NewSearchService(repo, timeService),
		repo:      repo,
		tracker:   tracker,
	}
	if !seed {
		return f
	}

	a, err := taskService.CreateTask(ctx, "Report", "", 0)
	require.NoError(t, err)
	b, err := taskService.CreateTask(ctx, "Research", "", 0)
	require.NoError(t, err)
	f.taskA, f.taskB = a.ID, b.ID

	closed := func(taskID int64, app string, start time.Time, d time.Duration) {
		end := start.Add(d)
		require.NoError(t, repo.OpenSession(ctx, &sqlite.Session{
			TaskID: taskID, AppName: app, WindowTitle: app, StartTime: start, EndTime: &end,
		}))
	}
	day := func(month time.Month, d, hour, min int) time.Time {
		year := 2025
		if month == time.December {
			year = 2024
		}
		return time.Date(year, month, d, hour, min, 0, 0, time.UTC)
	}

	closed(b.ID, "Browser", day(time.December, 31, 10, 0), time.Hour)
	closed(a.ID, "Editor", day(time.February, 1, 10, 0), 3*time.Hour)
	closed(a.ID, "Terminal", day(time.March, 9, 10, 0), time.Hour)
	closed(a.ID, "Editor", day(time.March, 10, 10, 0), 2*time.Hour)
	closed(a.ID, "Editor", day(time.March, 12, 9, 0), time.Hour)
	closed(b.ID, "Browser", day(time.March, 12, 11, 0), 30*time.Minute)
	require.NoError(t, repo.OpenSession(ctx, &sqlite.Session{
		TaskID: a.ID, AppName: "Editor", WindowTitle: "main.go", StartTime: day(time.March, 12, 14, 30),
	}))

	return f
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type focusProbe struct {
	w  probe.Window
	ok bool
}

func (p *focusProbe) Sample(ctx context.Context) (probe.Window, bool) { return p.w, p.ok }

func (p *focusProbe) focus(app, title string) { p.w, p.ok = probe.Window{App: app, Title: title}, true }

type trackedFixture struct {
	reporting ReportingService
	tasks     TaskService
	coord     *tracker.Coordinator
	clock     *manualClock
	probe     *focusProbe
}

// setupTrackedFixture wires the reporting service to a live coordinator so
// sessions are produced by ticks rather than seeded rows.
func setupTrackedFixture(t *testing.T, start time.Time) *trackedFixture {
	t.Helper()
	repo := setupRepo(t)
	clock := &manualClock{now: start}
	p := &focusProbe{}
	coord := tracker.NewCoordinator(repo, p, tracker.Options{
		IdleTimeout:       2 * time.Hour,
		TrackWindowTitles: true,
	}).WithClock(clock.Now)

	timeService := NewTimeService(time.UTC, clock.Now)
	taskService := NewTaskService(repo, coord)
	return &trackedFixture{
		reporting: NewReportingService(repo, timeService, taskService, coord),
		tasks:     taskService,
		coord:     coord,
		clock:     clock,
		probe:     p,
	}
}

func TestReportingService_TrackedSwitchShowsPerAppRows(t *testing.T) {
	f := setupTrackedFixture(t, time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, "Write report", "", 0)
	require.NoError(t, err)
	_, err = f.coord.Start(ctx, task.ID)
	require.NoError(t, err)

	f.probe.focus("Editor", "main.go")
	f.coord.Tick(ctx)
	f.clock.Advance(120 * time.Second)
	f.probe.focus("Browser", "Docs")
	f.coord.Tick(ctx)
	f.clock.Advance(60 * time.Second)
	_, err = f.coord.Stop(ctx)
	require.NoError(t, err)

	daily, err := f.reporting.GetDailyStats(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 180.0, daily.TotalTime)
	assert.Equal(t, int64(2), daily.SessionCount)
	require.Len(t, daily.Applications, 2)
	assert.Equal(t, "Editor", daily.Applications[0].AppName)
	assert.Equal(t, 120.0, daily.Applications[0].TotalTime)
	assert.Equal(t, "Browser", daily.Applications[1].AppName)
	assert.Equal(t, 60.0, daily.Applications[1].TotalTime)

	stats, err := f.reporting.GetTaskStats(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 180.0, stats.TotalTime)
	assert.False(t, stats.IsRunning)
}

func TestReportingService_OpenSessionAcrossMidnightStaysOnStartDay(t *testing.T) {
	yesterday := time.Date(2025, 3, 11, 23, 30, 0, 0, time.UTC)
	f := setupTrackedFixture(t, yesterday)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, "Late night", "", 0)
	require.NoError(t, err)
	_, err = f.coord.Start(ctx, task.ID)
	require.NoError(t, err)

	f.probe.focus("Editor", "main.go")
	f.coord.Tick(ctx)
	f.clock.Advance(time.Hour)
	f.coord.Tick(ctx)
	require.True(t, f.coord.IsTracking(task.ID))

	today := f.clock.Now()
	require.Equal(t, 12, today.Day())

	summary, err := f.reporting.GetSummary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.TodayTime)
	assert.Equal(t, 3600.0, summary.TotalTime)
	assert.True(t, summary.Running)

	todayStats, err := f.reporting.GetDailyStats(ctx, today)
	require.NoError(t, err)
	assert.Zero(t, todayStats.TotalTime)
	assert.Empty(t, todayStats.Applications)

	yesterdayStats, err := f.reporting.GetDailyStats(ctx, yesterday)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", yesterdayStats.Date)
	assert.Equal(t, 3600.0, yesterdayStats.TotalTime, "the live session counts up to now on its start day")
	require.Len(t, yesterdayStats.Applications, 1)
	assert.Equal(t, "Editor", yesterdayStats.Applications[0].AppName)
}
