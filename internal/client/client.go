// Package client is a typed HTTP client for the focus-tracker daemon.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"focus-tracker/internal/api"
	"focus-tracker/internal/domain"
	"focus-tracker/internal/errors"
	"focus-tracker/internal/services"
	"focus-tracker/internal/tracker"
)

// Client talks to a running daemon
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the daemon at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient lets tests supply an httptest client
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// BaseURL returns the daemon address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SessionQuery narrows Sessions. Empty fields are not sent.
type SessionQuery struct {
	StartDate string
	EndDate   string
	AppName   string
	TaskID    int64
	Limit     int
}

func (c *Client) Health(ctx context.Context) (*api.Health, error) {
	var out api.Health
	return &out, c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
}

func (c *Client) Status(ctx context.Context) (*tracker.Status, error) {
	var out tracker.Status
	return &out, c.do(ctx, http.MethodGet, "/tracker/status", nil, nil, &out)
}

func (c *Client) Start(ctx context.Context, taskID int64) (*api.StartResult, error) {
	var out api.StartResult
	q := url.Values{"task_id": {strconv.FormatInt(taskID, 10)}}
	return &out, c.do(ctx, http.MethodPost, "/tracker/start", q, nil, &out)
}

func (c *Client) Stop(ctx context.Context) (*api.StopResult, error) {
	var out api.StopResult
	return &out, c.do(ctx, http.MethodPost, "/tracker/stop", nil, nil, &out)
}

func (c *Client) Summary(ctx context.Context) (*services.Summary, error) {
	var out services.Summary
	return &out, c.do(ctx, http.MethodGet, "/stats/summary", nil, nil, &out)
}

// Daily fetches stats for date (YYYY-MM-DD); empty means today
func (c *Client) Daily(ctx context.Context, date string) (*services.DailyStats, error) {
	var out services.DailyStats
	return &out, c.do(ctx, http.MethodGet, "/stats/daily", optional("date", date), nil, &out)
}

func (c *Client) Weekly(ctx context.Context, startDate string) (*services.WeeklyStats, error) {
	var out services.WeeklyStats
	return &out, c.do(ctx, http.MethodGet, "/stats/weekly", optional("start_date", startDate), nil, &out)
}

func (c *Client) Monthly(ctx context.Context, month string) (*services.MonthlyStats, error) {
	var out services.MonthlyStats
	return &out, c.do(ctx, http.MethodGet, "/stats/monthly", optional("month", month), nil, &out)
}

func (c *Client) Year(ctx context.Context, year int) (*services.YearStats, error) {
	var out services.YearStats
	q := url.Values{}
	if year != 0 {
		q.Set("year", strconv.Itoa(year))
	}
	return &out, c.do(ctx, http.MethodGet, "/stats/year", q, nil, &out)
}

func (c *Client) Applications(ctx context.Context) ([]services.AppStats, error) {
	var out []services.AppStats
	return out, c.do(ctx, http.MethodGet, "/stats/applications", nil, nil, &out)
}

func (c *Client) Timeline(ctx context.Context, date string, limit int) (*services.Timeline, error) {
	var out services.Timeline
	q := optional("date", date)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return &out, c.do(ctx, http.MethodGet, "/timeline", q, nil, &out)
}

func (c *Client) Sessions(ctx context.Context, query SessionQuery) ([]domain.Session, error) {
	q := url.Values{}
	if query.StartDate != "" {
		q.Set("start_date", query.StartDate)
	}
	if query.EndDate != "" {
		q.Set("end_date", query.EndDate)
	}
	if query.AppName != "" {
		q.Set("app_name", query.AppName)
	}
	if query.TaskID != 0 {
		q.Set("task_id", strconv.FormatInt(query.TaskID, 10))
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}

	var out []domain.Session
	return out, c.do(ctx, http.MethodGet, "/sessions", q, nil, &out)
}

func (c *Client) ListFolders(ctx context.Context) ([]domain.Folder, error) {
	var out []domain.Folder
	return out, c.do(ctx, http.MethodGet, "/folders", nil, nil, &out)
}

func (c *Client) CreateFolder(ctx context.Context, name string) (*domain.Folder, error) {
	var out domain.Folder
	return &out, c.do(ctx, http.MethodPost, "/folders", nil, map[string]string{"name": name}, &out)
}

func (c *Client) RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error) {
	var out domain.Folder
	return &out, c.do(ctx, http.MethodPatch, "/folders/"+strconv.FormatInt(id, 10), nil, map[string]string{"name": name}, &out)
}

func (c *Client) DeleteFolder(ctx context.Context, id int64) (*api.DeleteFolderResult, error) {
	var out api.DeleteFolderResult
	return &out, c.do(ctx, http.MethodDelete, "/folders/"+strconv.FormatInt(id, 10), nil, nil, &out)
}

// ListTasks lists all tasks, or those in folderID when it is non-zero
func (c *Client) ListTasks(ctx context.Context, folderID int64) ([]domain.Task, error) {
	q := url.Values{}
	if folderID != 0 {
		q.Set("folder_id", strconv.FormatInt(folderID, 10))
	}
	var out []domain.Task
	return out, c.do(ctx, http.MethodGet, "/tasks", q, nil, &out)
}

func (c *Client) CreateTask(ctx context.Context, title, description string, folderID int64) (*domain.Task, error) {
	body := map[string]any{"title": title, "description": description, "folder_id": folderID}
	var out domain.Task
	return &out, c.do(ctx, http.MethodPost, "/tasks", nil, body, &out)
}

func (c *Client) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	var out domain.Task
	return &out, c.do(ctx, http.MethodGet, "/tasks/"+strconv.FormatInt(id, 10), nil, nil, &out)
}

// UpdateTask changes the fields that are non-nil
func (c *Client) UpdateTask(ctx context.Context, id int64, title, description *string) (*domain.Task, error) {
	body := map[string]*string{}
	if title != nil {
		body["title"] = title
	}
	if description != nil {
		body["description"] = description
	}
	var out domain.Task
	return &out, c.do(ctx, http.MethodPatch, "/tasks/"+strconv.FormatInt(id, 10), nil, body, &out)
}

func (c *Client) MoveTask(ctx context.Context, id, folderID int64) (*domain.Task, error) {
	var out domain.Task
	path := "/tasks/" + strconv.FormatInt(id, 10) + "/move"
	return &out, c.do(ctx, http.MethodPost, path, nil, map[string]int64{"folder_id": folderID}, &out)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) (*api.DeleteTaskResult, error) {
	var out api.DeleteTaskResult
	return &out, c.do(ctx, http.MethodDelete, "/tasks/"+strconv.FormatInt(id, 10), nil, nil, &out)
}

func (c *Client) TaskStats(ctx context.Context, id int64) (*services.TaskStats, error) {
	var out services.TaskStats
	path := "/tasks/" + strconv.FormatInt(id, 10) + "/stats"
	return &out, c.do(ctx, http.MethodGet, path, nil, nil, &out)
}

func optional(key, value string) url.Values {
	q := url.Values{}
	if value != "" {
		q.Set(key, value)
	}
	return q
}

// do sends one request and decodes the response into out. Non-2xx responses
// come back as *errors.AppError carrying the daemon's detail and code.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach the tracker daemon at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body api.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Detail == "" {
		body.Detail = strings.TrimSpace(string(raw))
		if body.Detail == "" {
			body.Detail = http.StatusText(resp.StatusCode)
		}
	}

	return &errors.AppError{
		Type:    errorTypeFor(resp.StatusCode),
		Message: body.Detail,
		Code:    body.Code,
		Context: map[string]interface{}{"status": resp.StatusCode},
	}
}

func errorTypeFor(status int) errors.ErrorType {
	switch status {
	case http.StatusBadRequest:
		return errors.ErrorTypeValidation
	case http.StatusNotFound:
		return errors.ErrorTypeNotFound
	case http.StatusConflict:
		return errors.ErrorTypeConflict
	case http.StatusForbidden:
		return errors.ErrorTypePermission
	case http.StatusGatewayTimeout:
		return errors.ErrorTypeTimeout
	default:
		return errors.ErrorTypeDatabase
	}
}
