package cli

import (
	"bytes"
	"context"
	"sort"
	"time"

	"focus-tracker/internal/api"
	"focus-tracker/internal/client"
	"focus-tracker/internal/domain"
	"focus-tracker/internal/errors"
	"focus-tracker/internal/services"
	"focus-tracker/internal/tracker"
)

// mockClient is an in-memory stand-in for the daemon. It keeps folders,
// tasks, sessions and the tracking state, and each method can be
// overridden with a func field to inject failures.
type mockClient struct {
	folders  map[int64]*domain.Folder
	tasks    map[int64]*domain.Task
	sessions []domain.Session
	nextID   int64
	tracking *int64

	summary  *services.Summary
	daily    *services.DailyStats
	timeline *services.Timeline

	statusFunc func(ctx context.Context) (*tracker.Status, error)
	startFunc  func(ctx context.Context, taskID int64) (*api.StartResult, error)
	stopFunc   func(ctx context.Context) (*api.StopResult, error)

	createTaskFunc func(ctx context.Context, title, description string, folderID int64) (*domain.Task, error)

	lastDailyDate     string
	lastTimelineDate  string
	lastTimelineLimit int
	lastSessionQuery  client.SessionQuery
	stopCalls         int
}

func newMockClient() *mockClient {
	return &mockClient{
		folders: map[int64]*domain.Folder{
			1: {ID: 1, Name: "Inbox", IsDefault: true},
		},
		tasks:  make(map[int64]*domain.Task),
		nextID: 100,
	}
}

func (m *mockClient) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockClient) addTask(title string, folderID int64) *domain.Task {
	t := &domain.Task{ID: m.id(), Title: title, FolderID: folderID}
	m.tasks[t.ID] = t
	return t
}

func (m *mockClient) Status(ctx context.Context) (*tracker.Status, error) {
	if m.statusFunc != nil {
		return m.statusFunc(ctx)
	}
	if m.tracking == nil {
		return &tracker.Status{}, nil
	}
	id := *m.tracking
	return &tracker.Status{Running: true, TaskID: &id, Idle: true}, nil
}

func (m *mockClient) Start(ctx context.Context, taskID int64) (*api.StartResult, error) {
	if m.startFunc != nil {
		return m.startFunc(ctx, taskID)
	}
	if _, ok := m.tasks[taskID]; !ok {
		return nil, errors.NewInvalidTaskError(taskID)
	}
	if m.tracking != nil {
		return nil, errors.NewAlreadyTrackingError(*m.tracking)
	}
	m.tracking = &taskID
	return &api.StartResult{TaskID: taskID}, nil
}

func (m *mockClient) Stop(ctx context.Context) (*api.StopResult, error) {
	m.stopCalls++
	if m.stopFunc != nil {
		return m.stopFunc(ctx)
	}
	if m.tracking == nil {
		return nil, errors.NewNotTrackingError()
	}
	id := *m.tracking
	m.tracking = nil
	return &api.StopResult{TaskID: id}, nil
}

func (m *mockClient) Summary(ctx context.Context) (*services.Summary, error) {
	if m.summary == nil {
		return &services.Summary{}, nil
	}
	return m.summary, nil
}

func (m *mockClient) Daily(ctx context.Context, date string) (*services.DailyStats, error) {
	m.lastDailyDate = date
	if m.daily == nil {
		return &services.DailyStats{Date: date, Applications: []services.AppStats{}}, nil
	}
	return m.daily, nil
}

func (m *mockClient) Timeline(ctx context.Context, date string, limit int) (*services.Timeline, error) {
	m.lastTimelineDate, m.lastTimelineLimit = date, limit
	if m.timeline == nil {
		return &services.Timeline{Date: date, Sessions: []services.TimelineEntry{}}, nil
	}
	return m.timeline, nil
}

func (m *mockClient) Sessions(ctx context.Context, query client.SessionQuery) ([]domain.Session, error) {
	m.lastSessionQuery = query
	return m.sessions, nil
}

func (m *mockClient) ListFolders(ctx context.Context) ([]domain.Folder, error) {
	out := make([]domain.Folder, 0, len(m.folders))
	for _, f := range m.folders {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockClient) CreateFolder(ctx context.Context, name string) (*domain.Folder, error) {
	for _, f := range m.folders {
		if f.Name == name {
			return nil, errors.NewDuplicateFolderNameError(name, nil)
		}
	}
	f := &domain.Folder{ID: m.id(), Name: name, CreatedAt: time.Now()}
	m.folders[f.ID] = f
	return f, nil
}

func (m *mockClient) RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error) {
	f, ok := m.folders[id]
	if !ok {
		return nil, errors.NewInvalidFolderError(id)
	}
	f.Name = name
	return f, nil
}

func (m *mockClient) DeleteFolder(ctx context.Context, id int64) (*api.DeleteFolderResult, error) {
	f, ok := m.folders[id]
	if !ok {
		return nil, errors.NewInvalidFolderError(id)
	}
	if f.IsDefault {
		return nil, errors.NewDefaultFolderProtectedError()
	}
	var moved int64
	for _, t := range m.tasks {
		if t.FolderID == id {
			t.FolderID = 1
			moved++
		}
	}
	delete(m.folders, id)
	return &api.DeleteFolderResult{ReassignedTasks: moved}, nil
}

func (m *mockClient) ListTasks(ctx context.Context, folderID int64) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range m.tasks {
		if folderID == 0 || t.FolderID == folderID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockClient) CreateTask(ctx context.Context, title, description string, folderID int64) (*domain.Task, error) {
	if m.createTaskFunc != nil {
		return m.createTaskFunc(ctx, title, description, folderID)
	}
	if folderID == 0 {
		folderID = 1
	}
	if _, ok := m.folders[folderID]; !ok {
		return nil, errors.NewInvalidFolderError(folderID)
	}
	t := m.addTask(title, folderID)
	t.Description = description
	return t, nil
}

func (m *mockClient) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, errors.NewInvalidTaskError(id)
	}
	return t, nil
}

func (m *mockClient) MoveTask(ctx context.Context, id, folderID int64) (*domain.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, errors.NewInvalidTaskError(id)
	}
	if _, ok := m.folders[folderID]; !ok {
		return nil, errors.NewInvalidFolderError(folderID)
	}
	t.FolderID = folderID
	return t, nil
}

func (m *mockClient) DeleteTask(ctx context.Context, id int64) (*api.DeleteTaskResult, error) {
	if _, ok := m.tasks[id]; !ok {
		return nil, errors.NewInvalidTaskError(id)
	}
	if m.tracking != nil && *m.tracking == id {
		return nil, errors.NewTaskInUseError(id)
	}
	var removed int64
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.TaskID == id {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	m.sessions = kept
	delete(m.tasks, id)
	return &api.DeleteTaskResult{DeletedSessions: removed}, nil
}

// newTestApp wires an App to a fresh mock client and an output buffer
func newTestApp(out *bytes.Buffer) (*App, *mockClient) {
	mc := newMockClient()
	return NewApp(mc, nil, out), mc
}
