package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-tracker/internal/api"
	"focus-tracker/internal/domain"
	"focus-tracker/internal/probe"
	"focus-tracker/internal/repository/sqlite"
	"focus-tracker/internal/services"
	"focus-tracker/internal/tracker"
)

var serverNow = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

type editorProbe struct{}

func (editorProbe) Sample(ctx context.Context) (probe.Window, bool) {
	return probe.Window{App: "Editor", Title: "main.go"}, true
}

type testServer struct {
	*httptest.Server
	coord *tracker.Coordinator
	repo  *sqlite.Store
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	repo, err := sqlite.NewWithOptions(filepath.Join(t.TempDir(), "server.db"), sqlite.Options{Location: time.UTC})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	clock := func() time.Time { return serverNow }
	coord := tracker.NewCoordinator(repo, editorProbe{}, tracker.Options{
		IdleTimeout:        time.Minute,
		CheckpointInterval: time.Minute,
		TrackWindowTitles:  true,
	}).WithClock(clock)

	a := api.New(repo, coord, api.Options{Now: clock, ProbeBackends: []string{"sway"}})
	ts := httptest.NewServer(New(a, Options{Location: time.UTC}).Handler())
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, coord: coord, repo: repo}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestServer_Health(t *testing.T) {
	ts := setupServer(t)

	resp := ts.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	health := decode[api.Health](t, resp)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, []string{"sway"}, health.ProbeBackends)
}

func TestServer_RequestIDIsEchoed(t *testing.T) {
	ts := setupServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestServer_TrackingFlow(t *testing.T) {
	ts := setupServer(t)

	resp := ts.do(t, http.MethodPost, "/tasks", `{"title":"Write report"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := decode[domain.Task](t, resp)

	resp = ts.do(t, http.MethodPost, "/tracker/start?task_id="+itoa(task.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	started := decode[api.StartResult](t, resp)
	assert.Equal(t, task.ID, started.TaskID)

	resp = ts.do(t, http.MethodPost, "/tracker/start?task_id="+itoa(task.ID), "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_TRACKING", decode[api.ErrorResponse](t, resp).Code)

	ts.coord.Tick(context.Background())
	resp = ts.do(t, http.MethodGet, "/tracker/status", "")
	status := decode[tracker.Status](t, resp)
	assert.True(t, status.Running)
	assert.Equal(t, "Editor", status.CurrentApp)

	resp = ts.do(t, http.MethodPost, "/tracker/stop", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stopped := decode[api.StopResult](t, resp)
	require.NotNil(t, stopped.Session)
	assert.NotNil(t, stopped.Session.EndTime)

	resp = ts.do(t, http.MethodPost, "/tracker/stop", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/sessions?task_id="+itoa(task.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.Session](t, resp), 1)
}

func TestServer_ErrorMapping(t *testing.T) {
	ts := setupServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"missing task id", http.MethodPost, "/tracker/start", "", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"malformed task id", http.MethodPost, "/tracker/start?task_id=abc", "", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown task", http.MethodPost, "/tracker/start?task_id=404", "", http.StatusNotFound, "INVALID_TASK"},
		{"stop while stopped", http.MethodPost, "/tracker/stop", "", http.StatusConflict, "NOT_TRACKING"},
		{"bad date", http.MethodGet, "/stats/daily?date=2025-13-01", "", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad month", http.MethodGet, "/stats/monthly?month=March", "", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad year", http.MethodGet, "/stats/year?year=25", "", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"limit too large", http.MethodGet, "/timeline?limit=5000", "", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"reversed range", http.MethodGet, "/sessions?start_date=2025-03-10&end_date=2025-03-01", "", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad body", http.MethodPost, "/folders", `{"name":`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown field", http.MethodPost, "/folders", `{"nom":"x"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"empty folder name", http.MethodPost, "/folders", `{"name":"  "}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown folder", http.MethodPatch, "/folders/99", `{"name":"x"}`, http.StatusNotFound, "INVALID_FOLDER"},
		{"default folder", http.MethodDelete, "/folders/1", "", http.StatusForbidden, "DEFAULT_FOLDER_PROTECTED"},
		{"bad path id", http.MethodGet, "/tasks/zero", "", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown task stats", http.MethodGet, "/tasks/7/stats", "", http.StatusNotFound, "INVALID_TASK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[api.ErrorResponse](t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Detail)
		})
	}
}

func TestServer_EmptyReports(t *testing.T) {
	ts := setupServer(t)

	paths := []string{
		"/stats/summary",
		"/stats/daily",
		"/stats/weekly?start_date=2025-03-01",
		"/stats/monthly?month=2025-03",
		"/stats/year?year=2024",
		"/stats/applications",
		"/timeline?date=2025-03-12&limit=10",
		"/sessions",
		"/folders",
		"/tasks",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp := ts.do(t, http.MethodGet, path, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		})
	}

	resp := ts.do(t, http.MethodGet, "/stats/daily", "")
	daily := decode[services.DailyStats](t, resp)
	assert.Equal(t, "2025-03-12", daily.Date)
	assert.Zero(t, daily.TotalTime)
}

func TestServer_FoldersAndTasks(t *testing.T) {
	ts := setupServer(t)

	resp := ts.do(t, http.MethodPost, "/folders", `{"name":"Clients"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	folder := decode[domain.Folder](t, resp)

	resp = ts.do(t, http.MethodPost, "/folders", `{"name":"clients"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodPatch, "/folders/"+itoa(folder.ID), `{"name":"Customers"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Customers", decode[domain.Folder](t, resp).Name)

	resp = ts.do(t, http.MethodPost, "/tasks", `{"title":"Invoice","description":"monthly","folder_id":`+itoa(folder.ID)+`}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := decode[domain.Task](t, resp)
	assert.Equal(t, folder.ID, task.FolderID)

	resp = ts.do(t, http.MethodGet, "/tasks?folder_id="+itoa(folder.ID), "")
	assert.Len(t, decode[[]domain.Task](t, resp), 1)

	resp = ts.do(t, http.MethodPatch, "/tasks/"+itoa(task.ID), `{"title":"Invoices"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[domain.Task](t, resp)
	assert.Equal(t, "Invoices", updated.Title)
	assert.Equal(t, "monthly", updated.Description)

	resp = ts.do(t, http.MethodPost, "/tasks/"+itoa(task.ID)+"/move", `{"folder_id":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), decode[domain.Task](t, resp).FolderID)

	resp = ts.do(t, http.MethodDelete, "/folders/"+itoa(folder.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), decode[api.DeleteFolderResult](t, resp).ReassignedTasks)

	resp = ts.do(t, http.MethodGet, "/tasks/"+itoa(task.ID)+"/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Invoices", decode[services.TaskStats](t, resp).Task.Title)

	resp = ts.do(t, http.MethodDelete, "/tasks/"+itoa(task.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), decode[api.DeleteTaskResult](t, resp).DeletedSessions)

	resp = ts.do(t, http.MethodGet, "/tasks/"+itoa(task.ID), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupServer(t)

	resp := ts.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, "/tracker/status", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
