package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"focus-tracker/internal/errors"
	"focus-tracker/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

var timeNow = time.Now

// Repository defines the interface for database operations
type Repository interface {
	// Folders
	CreateFolder(ctx context.Context, folder *Folder) error
	GetFolder(ctx context.Context, id int64) (*Folder, error)
	ListFolders(ctx context.Context) ([]*Folder, error)
	RenameFolder(ctx context.Context, id int64, name string) error
	DeleteFolder(ctx context.Context, id int64) (int64, error)

	// Tasks
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id int64) (*Task, error)
	ListTasks(ctx context.Context, folderID *int64) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	MoveTask(ctx context.Context, id int64, folderID int64) error
	DeleteTask(ctx context.Context, id int64) (int64, error)

	// Sessions
	OpenSession(ctx context.Context, session *Session) error
	SetSessionWindow(ctx context.Context, id int64, appName, windowTitle string) error
	CloseSession(ctx context.Context, id int64, end time.Time) error
	CheckpointSession(ctx context.Context, id int64, seen time.Time) error
	DeleteSession(ctx context.Context, id int64) error
	CountTrackedTasks(ctx context.Context) (int64, error)
	GetSession(ctx context.Context, id int64) (*Session, error)
	GetOpenSession(ctx context.Context) (*Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]*Session, error)
	Aggregate(ctx context.Context, filter SessionFilter, groupBy GroupBy, now time.Time) ([]*Aggregate, error)

	// Utility
	Location() *time.Location
	Close() error
}

// Options tunes a Store. Zero timeouts disable the per-call deadline; a nil
// Location means time.Local.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
	Location     *time.Location
}

// Store implements Repository on SQLite
type Store struct {
	db   *sql.DB
	opts Options
}

// New opens the database at dbPath with default options
func New(dbPath string) (*Store, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions opens the database at dbPath and runs pending migrations
func NewWithOptions(dbPath string, opts Options) (*Store, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}

	db, err := sql.Open("sqlite", buildDSN(dbPath))
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &Store{db: db, opts: opts}, nil
}

func buildDSN(dbPath string) string {
	pragmas := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	if dbPath != ":memory:" {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)", "_pragma=synchronous(NORMAL)")
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + strings.Join(pragmas, "&")
}

// Close closes the database connection
func (r *Store) Close() error {
	return r.db.Close()
}

// Location returns the zone used for day buckets
func (r *Store) Location() *time.Location {
	return r.opts.Location
}

func (r *Store) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opts.QueryTimeout)
}

func (r *Store) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.WriteTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opts.WriteTimeout)
}

const folderColumns = `id, name, is_default, created_at`

// CreateFolder inserts a folder; names are unique regardless of case
func (r *Store) CreateFolder(ctx context.Context, folder *Folder) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	folder.CreatedAt = timeNow()
	query := `INSERT INTO folders (name, is_default, created_at) VALUES (?, 0, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query, folder.Name, FormatTimeForDB(folder.CreatedAt))
	if err != nil {
		if IsUniqueViolation(err) {
			return errors.NewDuplicateFolderNameError(folder.Name, err)
		}
		return err
	}

	folder.ID = id
	folder.IsDefault = false
	return nil
}

// GetFolder retrieves a folder by ID
func (r *Store) GetFolder(ctx context.Context, id int64) (*Folder, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanFolder, "folder", errors.NewInvalidFolderError(id), id)
}

// ListFolders returns the default folder first, then the rest by name
func (r *Store) ListFolders(ctx context.Context) ([]*Folder, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT ` + folderColumns + ` FROM folders ORDER BY is_default DESC, name COLLATE NOCASE ASC`
	return QueryMultiple(ctx, r.db, query, ScanFolders, "folders")
}

// RenameFolder changes a folder's name
func (r *Store) RenameFolder(ctx context.Context, id int64, name string) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	err := ExecuteWithRowsAffected(ctx, r.db, `UPDATE folders SET name = ? WHERE id = ?`, errors.NewInvalidFolderError(id), name, id)
	if err != nil && IsUniqueViolation(err) {
		return errors.NewDuplicateFolderNameError(name, err)
	}
	return err
}

// DeleteFolder removes a folder after moving its tasks to the default folder.
// It returns the number of reassigned tasks.
func (r *Store) DeleteFolder(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	var reassigned int64
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		folder, err := QuerySingle(ctx, tx, `SELECT `+folderColumns+` FROM folders WHERE id = ?`, ScanFolder, "folder", errors.NewInvalidFolderError(id), id)
		if err != nil {
			return err
		}
		if folder.IsDefault {
			return errors.NewDefaultFolderProtectedError()
		}

		result, err := tx.ExecContext(ctx, `UPDATE tasks SET folder_id = (SELECT id FROM folders WHERE is_default = 1) WHERE folder_id = ?`, id)
		if err != nil {
			return HandleDatabaseError("reassign tasks", err)
		}
		if reassigned, err = result.RowsAffected(); err != nil {
			return HandleDatabaseError("get rows affected", err)
		}

		return ExecuteWithRowsAffected(ctx, tx, `DELETE FROM folders WHERE id = ?`, errors.NewInvalidFolderError(id), id)
	})
	if err != nil {
		return 0, err
	}
	return reassigned, nil
}

const taskColumns = `id, title, description, folder_id, created_at`

// CreateTask inserts a task. FolderID 0 places it in the default folder.
func (r *Store) CreateTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	if task.FolderID == 0 {
		task.FolderID = DefaultFolderID
	}
	if err := r.requireFolder(ctx, r.db, task.FolderID); err != nil {
		return err
	}

	task.CreatedAt = timeNow()
	query := `INSERT INTO tasks (title, description, folder_id, created_at) VALUES (?, ?, ?, ?)`
	id, err := ExecuteWithLastInsertID(ctx, r.db, query, task.Title, task.Description, task.FolderID, FormatTimeForDB(task.CreatedAt))
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

// GetTask retrieves a task by ID
func (r *Store) GetTask(ctx context.Context, id int64) (*Task, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanTask, "task", errors.NewInvalidTaskError(id), id)
}

// ListTasks retrieves all tasks, optionally restricted to one folder
func (r *Store) ListTasks(ctx context.Context, folderID *int64) ([]*Task, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []interface{}
	if folderID != nil {
		query += ` WHERE folder_id = ?`
		args = append(args, *folderID)
	}
	query += ` ORDER BY title COLLATE NOCASE ASC, id ASC`

	return QueryMultiple(ctx, r.db, query, ScanTasks, "tasks", args...)
}

// UpdateTask updates a task's title and description
func (r *Store) UpdateTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `UPDATE tasks SET title = ?, description = ? WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, errors.NewInvalidTaskError(task.ID), task.Title, task.Description, task.ID)
}

// MoveTask assigns a task to another folder
func (r *Store) MoveTask(ctx context.Context, id int64, folderID int64) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	if err := r.requireFolder(ctx, r.db, folderID); err != nil {
		return err
	}
	return ExecuteWithRowsAffected(ctx, r.db, `UPDATE tasks SET folder_id = ? WHERE id = ?`, errors.NewInvalidTaskError(id), folderID, id)
}

// DeleteTask removes a task together with its sessions and returns the
// number of deleted sessions.
func (r *Store) DeleteTask(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	var deleted int64
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE task_id = ?`, id)
		if err != nil {
			return HandleDatabaseError("delete task sessions", err)
		}
		if deleted, err = result.RowsAffected(); err != nil {
			return HandleDatabaseError("get rows affected", err)
		}
		return ExecuteWithRowsAffected(ctx, tx, `DELETE FROM tasks WHERE id = ?`, errors.NewInvalidTaskError(id), id)
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *Store) requireFolder(ctx context.Context, db DBTX, folderID int64) error {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM folders WHERE id = ?`, folderID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.NewInvalidFolderError(folderID)
		}
		return HandleDatabaseError(fmt.Sprintf("look up folder %d", folderID), err)
	}
	return nil
}
