package domain

import "time"

// Task represents a task in the domain model.
// This is a pure domain model without database-specific concerns.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FolderID    int64     `json:"folder_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTask creates a new Task in the given folder.
func NewTask(title string, folderID int64) Task {
	return Task{
		Title:    title,
		FolderID: folderID,
	}
}

// IsValid checks if the task has valid data.
func (t Task) IsValid() bool {
	return t.Title != ""
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}
