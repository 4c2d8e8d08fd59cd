package domain

import "time"

// Folder groups tasks. Deleting a folder moves its tasks to the default one.
type Folder struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFolder creates a new non-default Folder.
func NewFolder(name string) Folder {
	return Folder{Name: name}
}

// String returns the folder name for display purposes.
func (f Folder) String() string {
	return f.Name
}
