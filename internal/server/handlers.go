package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"focus-tracker/internal/api"
	"focus-tracker/internal/domain"
	"focus-tracker/internal/errors"
	"focus-tracker/internal/logging"
	"focus-tracker/internal/services"
	"focus-tracker/internal/validation"
)

const maxBodyBytes = 1 << 20

type folderRequest struct {
	Name string `json:"name"`
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FolderID    int64  `json:"folder_id"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type moveTaskRequest struct {
	FolderID int64 `json:"folder_id"`
}

func writeJSONStatus(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		logging.Logger.Warn("writing JSON response", "error", err, "status", status)
	}
}

func writeJSON(w http.ResponseWriter, value any) {
	writeJSONStatus(w, http.StatusOK, value)
}

// writeError maps err onto a status code and a {detail, code} body. Causes
// of system errors are logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.IsAppError(err) {
		err = errors.WrapError(err, errors.ErrorTypeDatabase, "unexpected error")
	}
	status := errors.GetHTTPStatus(err)
	if errors.ShouldLogError(err) {
		logging.Logger.Error("request error", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSONStatus(w, status, api.ErrorResponse{
		Detail: errors.GetUserMessage(err),
		Code:   errors.GetErrorCode(err),
	})
}

func invalid(err error) error {
	return errors.NewValidationError(err.Error(), err)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewValidationError("request body must be a valid JSON object", err)
	}
	return nil
}

func (s *Server) pathID(r *http.Request) (int64, error) {
	id, _, err := s.query.ParseID("id", r.PathValue("id"))
	if err != nil {
		return 0, invalid(err)
	}
	return id, nil
}

func (s *Server) queryDate(r *http.Request, field string) (time.Time, error) {
	date, _, err := s.query.ParseDate(field, r.URL.Query().Get(field))
	if err != nil {
		return time.Time{}, invalid(err)
	}
	return date, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.api.Health(r.Context()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.api.Status(r.Context()))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	taskID, ok, err := s.query.ParseID("task_id", r.URL.Query().Get("task_id"))
	if err == nil && !ok {
		v := validation.NewValidationError()
		v.AddRequiredError("task_id")
		err = v
	}
	if err != nil {
		writeError(w, r, invalid(err))
		return
	}

	res, err := s.api.StartTracking(r.Context(), taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	res, err := s.api.StopTracking(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.api.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	date, err := s.queryDate(r, "date")
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := s.api.DailyStats(r.Context(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	start, err := s.queryDate(r, "start_date")
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := s.api.WeeklyStats(r.Context(), start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	month, _, err := s.query.ParseMonth("month", r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, invalid(err))
		return
	}
	stats, err := s.api.MonthlyStats(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	year, _, err := s.query.ParseYear("year", r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, r, invalid(err))
		return
	}
	stats, err := s.api.YearStats(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

func (s *Server) handleApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.api.Applications(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, apps)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	date, err := s.queryDate(r, "date")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := s.query.ParseLimit("limit", r.URL.Query().Get("limit"), services.DefaultTimelineLimit, services.MaxTimelineLimit)
	if err != nil {
		writeError(w, r, invalid(err))
		return
	}

	timeline, err := s.api.Timeline(r.Context(), date, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, timeline)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	filter, err := s.sessionFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sessions, err := s.api.Sessions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, sessions)
}

func (s *Server) sessionFilter(r *http.Request) (domain.SessionFilter, error) {
	q := r.URL.Query()
	var filter domain.SessionFilter

	start, err := s.queryDate(r, "start_date")
	if err != nil {
		return filter, err
	}
	end, err := s.queryDate(r, "end_date")
	if err != nil {
		return filter, err
	}
	if err := s.query.ValidateDateRange(start, end); err != nil {
		return filter, invalid(err)
	}
	if !start.IsZero() {
		day := start.Format(validation.DateLayout)
		filter.StartDay = &day
	}
	if !end.IsZero() {
		day := end.Format(validation.DateLayout)
		filter.EndDay = &day
	}

	if taskID, ok, err := s.query.ParseID("task_id", q.Get("task_id")); err != nil {
		return filter, invalid(err)
	} else if ok {
		filter.TaskID = &taskID
	}
	if app := q.Get("app_name"); app != "" {
		filter.AppName = &app
	}

	filter.Limit, err = s.query.ParseLimit("limit", q.Get("limit"), services.DefaultSessionLimit, services.MaxSessionLimit)
	if err != nil {
		return filter, invalid(err)
	}
	return filter, nil
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := s.api.ListFolders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, folders)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	folder, err := s.api.CreateFolder(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, folder)
}

func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req folderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	folder, err := s.api.RenameFolder(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, folder)
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.api.DeleteFolder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	folderID, ok, err := s.query.ParseID("folder_id", r.URL.Query().Get("folder_id"))
	if err != nil {
		writeError(w, r, invalid(err))
		return
	}
	var filter *int64
	if ok {
		filter = &folderID
	}

	tasks, err := s.api.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	task, err := s.api.CreateTask(r.Context(), req.Title, req.Description, req.FolderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	task, err := s.api.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	task, err := s.api.UpdateTask(r.Context(), id, req.Title, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, task)
}

func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req moveTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	task, err := s.api.MoveTask(r.Context(), id, req.FolderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.api.DeleteTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := s.api.TaskStats(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, stats)
}
