package api

import (
	"context"
	"time"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/repository/sqlite"
	"focus-tracker/internal/services"
	"focus-tracker/internal/tracker"
)

// Tracker is the tracking control surface the API drives
type Tracker interface {
	Start(ctx context.Context, taskID int64) (*domain.Session, error)
	Stop(ctx context.Context) (*tracker.StopResult, error)
	Status() tracker.Status
	Running() bool
	IsTracking(taskID int64) bool
}

// Health describes the daemon
type Health struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	ProbeBackends []string  `json:"probe_backends"`
	Tracking      bool      `json:"tracking"`
}

// StartResult is returned when tracking begins
type StartResult struct {
	TaskID  int64           `json:"task_id"`
	Session *domain.Session `json:"session"`
}

// StopResult is returned when tracking ends. Session is null when the
// tracker was idle; Duration is in seconds.
type StopResult struct {
	TaskID   int64           `json:"task_id"`
	Session  *domain.Session `json:"session"`
	Duration float64         `json:"duration"`
}

// DeleteFolderResult reports how many tasks moved to the default folder
type DeleteFolderResult struct {
	ReassignedTasks int64 `json:"reassigned_tasks"`
}

// DeleteTaskResult reports how many sessions were removed with the task
type DeleteTaskResult struct {
	DeletedSessions int64 `json:"deleted_sessions"`
}

// API defines every query and command of the tracker daemon. Zero dates
// and years select the current period.
type API interface {
	Health(ctx context.Context) *Health

	// Tracking
	Status(ctx context.Context) tracker.Status
	StartTracking(ctx context.Context, taskID int64) (*StartResult, error)
	StopTracking(ctx context.Context) (*StopResult, error)

	// Reports
	Summary(ctx context.Context) (*services.Summary, error)
	DailyStats(ctx context.Context, date time.Time) (*services.DailyStats, error)
	WeeklyStats(ctx context.Context, start time.Time) (*services.WeeklyStats, error)
	MonthlyStats(ctx context.Context, month time.Time) (*services.MonthlyStats, error)
	YearStats(ctx context.Context, year int) (*services.YearStats, error)
	Applications(ctx context.Context) ([]services.AppStats, error)
	Timeline(ctx context.Context, date time.Time, limit int) (*services.Timeline, error)
	Sessions(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error)

	// Folders
	ListFolders(ctx context.Context) ([]*domain.Folder, error)
	CreateFolder(ctx context.Context, name string) (*domain.Folder, error)
	RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error)
	DeleteFolder(ctx context.Context, id int64) (*DeleteFolderResult, error)

	// Tasks
	ListTasks(ctx context.Context, folderID *int64) ([]*domain.Task, error)
	CreateTask(ctx context.Context, title, description string, folderID int64) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, title, description *string) (*domain.Task, error)
	MoveTask(ctx context.Context, id, folderID int64) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) (*DeleteTaskResult, error)
	TaskStats(ctx context.Context, id int64) (*services.TaskStats, error)
}

// Options configures New
type Options struct {
	Location      *time.Location
	Now           func() time.Time
	ProbeBackends []string
}

type apiImpl struct {
	tracker       Tracker
	svc           services.ServiceContainer
	probeBackends []string
}

// New wires the services over repo and tracker
func New(repo sqlite.Repository, t Tracker, opts Options) API {
	if opts.Location == nil {
		opts.Location = repo.Location()
	}

	timeService := services.NewTimeService(opts.Location, opts.Now)
	taskService := services.NewTaskService(repo, t)
	backends := opts.ProbeBackends
	if backends == nil {
		backends = []string{}
	}

	return &apiImpl{
		tracker: t,
		svc: services.ServiceContainer{
			TimeService:      timeService,
			TaskService:      taskService,
			SearchService:    services.NewSearchService(repo, timeService),
			ReportingService: services.NewReportingService(repo, timeService, taskService, t),
		},
		probeBackends: backends,
	}
}

func (a *apiImpl) Health(ctx context.Context) *Health {
	return &Health{
		Status:        "ok",
		Timestamp:     a.svc.TimeService.Now(),
		ProbeBackends: a.probeBackends,
		Tracking:      a.tracker.Running(),
	}
}

func (a *apiImpl) Status(ctx context.Context) tracker.Status {
	return a.tracker.Status()
}

func (a *apiImpl) StartTracking(ctx context.Context, taskID int64) (*StartResult, error) {
	if _, err := a.svc.TaskService.GetTask(ctx, taskID); err != nil {
		return nil, err
	}

	session, err := a.tracker.Start(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &StartResult{TaskID: taskID, Session: session}, nil
}

func (a *apiImpl) StopTracking(ctx context.Context) (*StopResult, error) {
	res, err := a.tracker.Stop(ctx)
	if err != nil {
		return nil, err
	}
	return &StopResult{
		TaskID:   res.TaskID,
		Session:  res.Session,
		Duration: res.Duration.Seconds(),
	}, nil
}

// orToday returns date, or today when date is zero
func (a *apiImpl) orToday(date time.Time) time.Time {
	if date.IsZero() {
		return a.svc.TimeService.Today()
	}
	return date
}

func (a *apiImpl) Summary(ctx context.Context) (*services.Summary, error) {
	return a.svc.ReportingService.GetSummary(ctx)
}

func (a *apiImpl) DailyStats(ctx context.Context, date time.Time) (*services.DailyStats, error) {
	return a.svc.ReportingService.GetDailyStats(ctx, a.orToday(date))
}

// WeeklyStats defaults to the seven days ending today
func (a *apiImpl) WeeklyStats(ctx context.Context, start time.Time) (*services.WeeklyStats, error) {
	if start.IsZero() {
		start = a.svc.TimeService.Today().AddDate(0, 0, -6)
	}
	return a.svc.ReportingService.GetWeeklyStats(ctx, start)
}

func (a *apiImpl) MonthlyStats(ctx context.Context, month time.Time) (*services.MonthlyStats, error) {
	return a.svc.ReportingService.GetMonthlyStats(ctx, a.orToday(month))
}

func (a *apiImpl) YearStats(ctx context.Context, year int) (*services.YearStats, error) {
	if year == 0 {
		year = a.svc.TimeService.Now().Year()
	}
	return a.svc.ReportingService.GetYearStats(ctx, year)
}

func (a *apiImpl) Applications(ctx context.Context) ([]services.AppStats, error) {
	return a.svc.ReportingService.ListApplications(ctx)
}

func (a *apiImpl) Timeline(ctx context.Context, date time.Time, limit int) (*services.Timeline, error) {
	return a.svc.SearchService.GetTimeline(ctx, a.orToday(date), limit)
}

func (a *apiImpl) Sessions(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	return a.svc.SearchService.SearchSessions(ctx, filter)
}

func (a *apiImpl) ListFolders(ctx context.Context) ([]*domain.Folder, error) {
	return a.svc.TaskService.ListFolders(ctx)
}

func (a *apiImpl) CreateFolder(ctx context.Context, name string) (*domain.Folder, error) {
	return a.svc.TaskService.CreateFolder(ctx, name)
}

func (a *apiImpl) RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error) {
	return a.svc.TaskService.RenameFolder(ctx, id, name)
}

func (a *apiImpl) DeleteFolder(ctx context.Context, id int64) (*DeleteFolderResult, error) {
	reassigned, err := a.svc.TaskService.DeleteFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DeleteFolderResult{ReassignedTasks: reassigned}, nil
}

func (a *apiImpl) ListTasks(ctx context.Context, folderID *int64) ([]*domain.Task, error) {
	return a.svc.TaskService.ListTasks(ctx, folderID)
}

func (a *apiImpl) CreateTask(ctx context.Context, title, description string, folderID int64) (*domain.Task, error) {
	return a.svc.TaskService.CreateTask(ctx, title, description, folderID)
}

func (a *apiImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	return a.svc.TaskService.GetTask(ctx, id)
}

func (a *apiImpl) UpdateTask(ctx context.Context, id int64, title, description *string) (*domain.Task, error) {
	return a.svc.TaskService.UpdateTask(ctx, id, title, description)
}

func (a *apiImpl) MoveTask(ctx context.Context, id, folderID int64) (*domain.Task, error) {
	return a.svc.TaskService.MoveTask(ctx, id, folderID)
}

func (a *apiImpl) DeleteTask(ctx context.Context, id int64) (*DeleteTaskResult, error) {
	removed, err := a.svc.TaskService.DeleteTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DeleteTaskResult{DeletedSessions: removed}, nil
}

func (a *apiImpl) TaskStats(ctx context.Context, id int64) (*services.TaskStats, error) {
	return a.svc.ReportingService.GetTaskStats(ctx, id)
}

// ErrorResponse is the body of every non-2xx HTTP response
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}
