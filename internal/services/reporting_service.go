package services

import (
	"context"
	"time"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/repository/sqlite"
)

// monthWindowDays is the length of the trailing window reported as month_time
const monthWindowDays = 30

// reportingServiceImpl implements the ReportingService interface. Every
// figure comes from the store's Aggregate query, so the open session counts
// up to now in all reports alike.
type reportingServiceImpl struct {
	repo        sqlite.Repository
	timeService TimeService
	taskService TaskService
	tracker     TrackerState
	mapper      *domain.Mapper
}

// NewReportingService creates a new ReportingService instance. tracker may
// be nil.
func NewReportingService(repo sqlite.Repository, timeService TimeService, taskService TaskService, tracker TrackerState) ReportingService {
	return &reportingServiceImpl{
		repo:        repo,
		timeService: timeService,
		taskService: taskService,
		tracker:     tracker,
		mapper:      domain.NewMapper(),
	}
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func dayRange(from, to string) sqlite.SessionFilter {
	return sqlite.SessionFilter{StartDay: &from, EndDay: &to}
}

func appStats(agg *sqlite.Aggregate) AppStats {
	stats := AppStats{
		AppName:      agg.AppName,
		TotalTime:    seconds(agg.Total),
		SessionCount: agg.Sessions,
	}
	if agg.Sessions > 0 {
		stats.AverageTime = seconds(agg.Total / time.Duration(agg.Sessions))
	}
	if !agg.FirstStart.IsZero() {
		first := agg.FirstStart
		stats.FirstUsed = &first
	}
	if !agg.LastEnd.IsZero() {
		last := agg.LastEnd
		stats.LastUsed = &last
	}
	return stats
}

// total runs an ungrouped aggregate, which always yields one row
func (r *reportingServiceImpl) total(ctx context.Context, filter sqlite.SessionFilter, now time.Time) (*sqlite.Aggregate, error) {
	rows, err := r.repo.Aggregate(ctx, filter, sqlite.GroupByNone, now)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &sqlite.Aggregate{}, nil
	}
	return rows[0], nil
}

// GetDailyStats breaks the day containing date down by application
func (r *reportingServiceImpl) GetDailyStats(ctx context.Context, date time.Time) (*DailyStats, error) {
	now := r.timeService.Now()
	day := r.timeService.FormatDate(date)

	rows, err := r.repo.Aggregate(ctx, dayRange(day, day), sqlite.GroupByApp, now)
	if err != nil {
		return nil, err
	}

	stats := &DailyStats{Date: day, Applications: make([]AppStats, 0, len(rows))}
	for _, row := range rows {
		app := appStats(row)
		stats.Applications = append(stats.Applications, app)
		stats.TotalTime += app.TotalTime
		stats.SessionCount += app.SessionCount
	}
	return stats, nil
}

// GetWeeklyStats reports seven days from start with a per-app breakdown
func (r *reportingServiceImpl) GetWeeklyStats(ctx context.Context, start time.Time) (*WeeklyStats, error) {
	now := r.timeService.Now()
	first := r.timeService.StartOfDay(start)
	from := r.timeService.FormatDate(first)
	to := r.timeService.FormatDate(first.AddDate(0, 0, 6))

	rows, err := r.repo.Aggregate(ctx, dayRange(from, to), sqlite.GroupByDayApp, now)
	if err != nil {
		return nil, err
	}

	stats := &WeeklyStats{StartDate: from, EndDate: to, Days: make([]DayTotal, 0, 7)}
	for _, row := range rows {
		if n := len(stats.Days); n == 0 || stats.Days[n-1].Date != row.Day {
			stats.Days = append(stats.Days, DayTotal{Date: row.Day})
		}
		day := &stats.Days[len(stats.Days)-1]
		app := appStats(row)
		day.Applications = append(day.Applications, app)
		day.TotalTime += app.TotalTime
		day.SessionCount += app.SessionCount
		stats.TotalTime += app.TotalTime
		stats.SessionCount += app.SessionCount
	}
	return stats, nil
}

// GetMonthlyStats reports per-day totals of the calendar month containing
// month
func (r *reportingServiceImpl) GetMonthlyStats(ctx context.Context, month time.Time) (*MonthlyStats, error) {
	now := r.timeService.Now()
	first := r.timeService.StartOfMonth(month)
	from := r.timeService.FormatDate(first)
	to := r.timeService.FormatDate(first.AddDate(0, 1, -1))

	days, total, count, err := r.dailyTotals(ctx, dayRange(from, to), now)
	if err != nil {
		return nil, err
	}
	return &MonthlyStats{
		Month:        first.Format("2006-01"),
		TotalTime:    total,
		SessionCount: count,
		Days:         days,
	}, nil
}

// GetYearStats reports per-day and per-month totals of one calendar year
func (r *reportingServiceImpl) GetYearStats(ctx context.Context, year int) (*YearStats, error) {
	now := r.timeService.Now()
	loc := r.timeService.Location()
	from := r.timeService.FormatDate(time.Date(year, time.January, 1, 0, 0, 0, 0, loc))
	to := r.timeService.FormatDate(time.Date(year, time.December, 31, 0, 0, 0, 0, loc))
	filter := dayRange(from, to)

	days, total, count, err := r.dailyTotals(ctx, filter, now)
	if err != nil {
		return nil, err
	}

	rows, err := r.repo.Aggregate(ctx, filter, sqlite.GroupByMonth, now)
	if err != nil {
		return nil, err
	}
	months := make([]MonthTotal, 0, len(rows))
	for _, row := range rows {
		months = append(months, MonthTotal{
			Month:        row.Month,
			TotalTime:    seconds(row.Total),
			SessionCount: row.Sessions,
		})
	}

	return &YearStats{
		Year:         year,
		TotalTime:    total,
		SessionCount: count,
		Days:         days,
		Months:       months,
	}, nil
}

func (r *reportingServiceImpl) dailyTotals(ctx context.Context, filter sqlite.SessionFilter, now time.Time) ([]DayTotal, float64, int64, error) {
	rows, err := r.repo.Aggregate(ctx, filter, sqlite.GroupByDay, now)
	if err != nil {
		return nil, 0, 0, err
	}

	days := make([]DayTotal, 0, len(rows))
	var total float64
	var count int64
	for _, row := range rows {
		day := DayTotal{Date: row.Day, TotalTime: seconds(row.Total), SessionCount: row.Sessions}
		days = append(days, day)
		total += day.TotalTime
		count += day.SessionCount
	}
	return days, total, count, nil
}

// GetSummary returns all-time, today, ISO week and trailing 30 day totals
func (r *reportingServiceImpl) GetSummary(ctx context.Context) (*Summary, error) {
	now := r.timeService.Now()
	today := r.timeService.FormatDate(now)
	weekStart := r.timeService.FormatDate(r.timeService.StartOfWeek(now))
	monthStart := r.timeService.FormatDate(r.timeService.Today().AddDate(0, 0, -(monthWindowDays - 1)))

	all, err := r.total(ctx, sqlite.SessionFilter{}, now)
	if err != nil {
		return nil, err
	}
	todayAgg, err := r.total(ctx, dayRange(today, today), now)
	if err != nil {
		return nil, err
	}
	weekAgg, err := r.total(ctx, dayRange(weekStart, today), now)
	if err != nil {
		return nil, err
	}
	monthAgg, err := r.total(ctx, dayRange(monthStart, today), now)
	if err != nil {
		return nil, err
	}

	apps, err := r.repo.Aggregate(ctx, sqlite.SessionFilter{}, sqlite.GroupByApp, now)
	if err != nil {
		return nil, err
	}
	tasks, err := r.repo.CountTrackedTasks(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalTime:         seconds(all.Total),
		TodayTime:         seconds(todayAgg.Total),
		WeekTime:          seconds(weekAgg.Total),
		MonthTime:         seconds(monthAgg.Total),
		TotalSessions:     all.Sessions,
		TotalTasks:        tasks,
		TotalApplications: int64(len(apps)),
		Running:           r.tracker != nil && r.tracker.Running(),
	}, nil
}

// GetTaskStats reports the time attributed to one task by application
func (r *reportingServiceImpl) GetTaskStats(ctx context.Context, taskID int64) (*TaskStats, error) {
	task, err := r.taskService.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := r.timeService.Now()
	rows, err := r.repo.Aggregate(ctx, sqlite.SessionFilter{TaskID: &taskID}, sqlite.GroupByApp, now)
	if err != nil {
		return nil, err
	}

	stats := &TaskStats{
		Task:         task,
		Applications: make([]AppStats, 0, len(rows)),
		IsRunning:    r.tracker != nil && r.tracker.IsTracking(taskID),
	}
	for _, row := range rows {
		app := appStats(row)
		stats.Applications = append(stats.Applications, app)
		stats.TotalTime += app.TotalTime
		stats.SessionCount += app.SessionCount
	}
	return stats, nil
}

// ListApplications returns all-time usage per application, most used first
func (r *reportingServiceImpl) ListApplications(ctx context.Context) ([]AppStats, error) {
	rows, err := r.repo.Aggregate(ctx, sqlite.SessionFilter{}, sqlite.GroupByApp, r.timeService.Now())
	if err != nil {
		return nil, err
	}

	apps := make([]AppStats, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, appStats(row))
	}
	return apps, nil
}
