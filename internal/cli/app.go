package cli

import (
	"context"
	"io"
	"os"
	"strconv"
	"time"

	"focus-tracker/internal/api"
	"focus-tracker/internal/client"
	"focus-tracker/internal/config"
	"focus-tracker/internal/domain"
	"focus-tracker/internal/errors"
	"focus-tracker/internal/services"
	"focus-tracker/internal/tracker"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// Client is the daemon surface the client commands use
type Client interface {
	Status(ctx context.Context) (*tracker.Status, error)
	Start(ctx context.Context, taskID int64) (*api.StartResult, error)
	Stop(ctx context.Context) (*api.StopResult, error)
	Summary(ctx context.Context) (*services.Summary, error)
	Daily(ctx context.Context, date string) (*services.DailyStats, error)
	Timeline(ctx context.Context, date string, limit int) (*services.Timeline, error)
	Sessions(ctx context.Context, query client.SessionQuery) ([]domain.Session, error)
	ListFolders(ctx context.Context) ([]domain.Folder, error)
	CreateFolder(ctx context.Context, name string) (*domain.Folder, error)
	RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error)
	DeleteFolder(ctx context.Context, id int64) (*api.DeleteFolderResult, error)
	ListTasks(ctx context.Context, folderID int64) ([]domain.Task, error)
	CreateTask(ctx context.Context, title, description string, folderID int64) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	MoveTask(ctx context.Context, id, folderID int64) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) (*api.DeleteTaskResult, error)
}

// App represents the main CLI application
type App struct {
	client   Client
	config   *config.Config
	in       io.Reader
	out      io.Writer
	registry *CommandRegistry
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(c Client, cfg *config.Config, out io.Writer) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if out == nil {
		out = os.Stdout
	}
	app := &App{
		client: c,
		config: cfg,
		in:     os.Stdin,
		out:    out,
	}
	app.registry = NewCommandRegistry(app)
	return app
}

// NewAppFromConfig connects to the daemon named by cfg
func NewAppFromConfig(cfg *config.Config, out io.Writer) *App {
	return NewApp(client.New(cfg.Application.ServerURL, cfg.Application.Timeout), cfg, out)
}

// WithInput replaces the reader interactive commands prompt on
func (a *App) WithInput(in io.Reader) *App {
	a.in = in
	a.registry = NewCommandRegistry(a)
	return a
}

// Run executes the named command with the given arguments
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "", a.registry.GetUsage())
	}
	return a.registry.Execute(ctx, args[0], args[1:])
}

// parseID parses a positive numeric id argument
func parseID(field, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError(field, value, "must be a positive number")
	}
	return id, nil
}
