package services

import (
	"context"
	"strings"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/errors"
	"focus-tracker/internal/logging"
	"focus-tracker/internal/repository/sqlite"
	"focus-tracker/internal/validation"
)

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repo            sqlite.Repository
	tracker         TrackerState
	mapper          *domain.Mapper
	taskValidator   *validation.TaskValidator
	folderValidator *validation.FolderValidator
}

// NewTaskService creates a new TaskService instance. tracker may be nil.
func NewTaskService(repo sqlite.Repository, tracker TrackerState) TaskService {
	return &taskServiceImpl{
		repo:            repo,
		tracker:         tracker,
		mapper:          domain.NewMapper(),
		taskValidator:   validation.NewTaskValidator(),
		folderValidator: validation.NewFolderValidator(),
	}
}

// invalid wraps validation failures so the field messages reach the caller
func invalid(err error) error {
	return errors.NewValidationError(err.Error(), err)
}

// ListFolders returns every folder, the default first
func (t *taskServiceImpl) ListFolders(ctx context.Context) ([]*domain.Folder, error) {
	dbFolders, err := t.repo.ListFolders(ctx)
	if err != nil {
		return nil, err
	}

	folders := make([]*domain.Folder, len(dbFolders))
	for i, f := range dbFolders {
		folder := t.mapper.Folder.FromDatabase(*f)
		folders[i] = &folder
	}
	return folders, nil
}

// CreateFolder creates a folder; names are unique regardless of case
func (t *taskServiceImpl) CreateFolder(ctx context.Context, name string) (*domain.Folder, error) {
	if err := t.folderValidator.ValidateName(name); err != nil {
		return nil, invalid(err)
	}

	folder := domain.NewFolder(strings.TrimSpace(name))
	dbFolder := &sqlite.Folder{Name: folder.Name}
	if err := t.repo.CreateFolder(ctx, dbFolder); err != nil {
		return nil, err
	}

	folder = t.mapper.Folder.FromDatabase(*dbFolder)
	logging.Logger.Info("folder created", "folder_id", folder.ID, "name", folder.Name)
	return &folder, nil
}

// RenameFolder renames a folder, keeping names unique
func (t *taskServiceImpl) RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error) {
	if err := t.folderValidator.ValidateFolderID(id); err != nil {
		return nil, invalid(err)
	}
	if err := t.folderValidator.ValidateName(name); err != nil {
		return nil, invalid(err)
	}

	if err := t.repo.RenameFolder(ctx, id, strings.TrimSpace(name)); err != nil {
		return nil, err
	}

	dbFolder, err := t.repo.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	folder := t.mapper.Folder.FromDatabase(*dbFolder)
	return &folder, nil
}

// DeleteFolder deletes a folder and moves its tasks to the default folder.
// It returns the number of tasks moved.
func (t *taskServiceImpl) DeleteFolder(ctx context.Context, id int64) (int64, error) {
	if err := t.folderValidator.ValidateFolderID(id); err != nil {
		return 0, invalid(err)
	}

	reassigned, err := t.repo.DeleteFolder(ctx, id)
	if err != nil {
		return 0, err
	}

	logging.Logger.Info("folder deleted", "folder_id", id, "reassigned_tasks", reassigned)
	return reassigned, nil
}

// ListTasks returns all tasks, or only those of one folder
func (t *taskServiceImpl) ListTasks(ctx context.Context, folderID *int64) ([]*domain.Task, error) {
	if folderID != nil {
		if err := t.folderValidator.ValidateFolderID(*folderID); err != nil {
			return nil, invalid(err)
		}
	}

	dbTasks, err := t.repo.ListTasks(ctx, folderID)
	if err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, len(dbTasks))
	for i, dbTask := range dbTasks {
		task := t.mapper.Task.FromDatabase(*dbTask)
		tasks[i] = &task
	}
	return tasks, nil
}

// CreateTask creates a task. A zero folderID files it in the default folder.
func (t *taskServiceImpl) CreateTask(ctx context.Context, title, description string, folderID int64) (*domain.Task, error) {
	if err := t.taskValidator.ValidateTaskForCreation(title, description, folderID); err != nil {
		return nil, invalid(err)
	}

	task := domain.NewTask(strings.TrimSpace(title), folderID)
	task.Description = strings.TrimSpace(description)

	dbTask := t.mapper.Task.ToDatabase(task)
	if err := t.repo.CreateTask(ctx, &dbTask); err != nil {
		return nil, err
	}

	task = t.mapper.Task.FromDatabase(dbTask)
	logging.Logger.Info("task created", "task_id", task.ID, "folder_id", task.FolderID)
	return &task, nil
}

// GetTask retrieves a task by its ID
func (t *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if err := t.taskValidator.ValidateTaskID(id); err != nil {
		return nil, invalid(err)
	}

	dbTask, err := t.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	task := t.mapper.Task.FromDatabase(*dbTask)
	return &task, nil
}

// UpdateTask edits the title and/or description; nil fields are unchanged
func (t *taskServiceImpl) UpdateTask(ctx context.Context, id int64, title, description *string) (*domain.Task, error) {
	if err := t.taskValidator.ValidateTaskForUpdate(id, title, description); err != nil {
		return nil, invalid(err)
	}

	dbTask, err := t.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		dbTask.Title = strings.TrimSpace(*title)
	}
	if description != nil {
		dbTask.Description = strings.TrimSpace(*description)
	}

	if err := t.repo.UpdateTask(ctx, dbTask); err != nil {
		return nil, err
	}

	task := t.mapper.Task.FromDatabase(*dbTask)
	return &task, nil
}

// MoveTask files a task in another folder
func (t *taskServiceImpl) MoveTask(ctx context.Context, id, folderID int64) (*domain.Task, error) {
	if err := t.taskValidator.ValidateTaskID(id); err != nil {
		return nil, invalid(err)
	}
	if err := t.folderValidator.ValidateFolderID(folderID); err != nil {
		return nil, invalid(err)
	}

	if err := t.repo.MoveTask(ctx, id, folderID); err != nil {
		return nil, err
	}
	return t.GetTask(ctx, id)
}

// DeleteTask deletes a task and its sessions. The task being tracked cannot
// be deleted. It returns the number of sessions removed.
func (t *taskServiceImpl) DeleteTask(ctx context.Context, id int64) (int64, error) {
	if err := t.taskValidator.ValidateTaskID(id); err != nil {
		return 0, invalid(err)
	}
	if t.tracker != nil && t.tracker.IsTracking(id) {
		return 0, errors.NewTaskInUseError(id)
	}

	removed, err := t.repo.DeleteTask(ctx, id)
	if err != nil {
		return 0, err
	}

	logging.Logger.Info("task deleted", "task_id", id, "sessions_deleted", removed)
	return removed, nil
}
