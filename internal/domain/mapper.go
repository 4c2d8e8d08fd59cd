package domain

import (
	"focus-tracker/internal/repository/sqlite"
)

// TaskMapper handles conversion between domain and database Task models.
type TaskMapper struct{}

// ToDatabase converts a domain Task to a database Task.
func (m *TaskMapper) ToDatabase(t Task) sqlite.Task {
	return sqlite.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		FolderID:    t.FolderID,
		CreatedAt:   t.CreatedAt,
	}
}

// FromDatabase converts a database Task to a domain Task.
func (m *TaskMapper) FromDatabase(t sqlite.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		FolderID:    t.FolderID,
		CreatedAt:   t.CreatedAt,
	}
}

// FromDatabaseSlice converts database Tasks to domain Tasks.
func (m *TaskMapper) FromDatabaseSlice(dbTasks []*sqlite.Task) []Task {
	tasks := make([]Task, len(dbTasks))
	for i, t := range dbTasks {
		tasks[i] = m.FromDatabase(*t)
	}
	return tasks
}

// FolderMapper handles conversion between domain and database Folder models.
type FolderMapper struct{}

// FromDatabase converts a database Folder to a domain Folder.
func (m *FolderMapper) FromDatabase(f sqlite.Folder) Folder {
	return Folder{
		ID:        f.ID,
		Name:      f.Name,
		IsDefault: f.IsDefault,
		CreatedAt: f.CreatedAt,
	}
}

// FromDatabaseSlice converts database Folders to domain Folders.
func (m *FolderMapper) FromDatabaseSlice(dbFolders []*sqlite.Folder) []Folder {
	folders := make([]Folder, len(dbFolders))
	for i, f := range dbFolders {
		folders[i] = m.FromDatabase(*f)
	}
	return folders
}

// SessionMapper handles conversion between domain and database Session models.
type SessionMapper struct{}

// ToDatabase converts a domain Session to a database Session.
func (m *SessionMapper) ToDatabase(s Session) sqlite.Session {
	return sqlite.Session{
		ID:          s.ID,
		TaskID:      s.TaskID,
		AppName:     s.AppName,
		WindowTitle: s.WindowTitle,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Day:         s.Day,
	}
}

// FromDatabase converts a database Session to a domain Session.
func (m *SessionMapper) FromDatabase(s sqlite.Session) Session {
	return Session{
		ID:          s.ID,
		TaskID:      s.TaskID,
		AppName:     s.AppName,
		WindowTitle: s.WindowTitle,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Day:         s.Day,
	}
}

// FromDatabaseSlice converts database Sessions to domain Sessions.
func (m *SessionMapper) FromDatabaseSlice(dbSessions []*sqlite.Session) []Session {
	sessions := make([]Session, len(dbSessions))
	for i, s := range dbSessions {
		sessions[i] = m.FromDatabase(*s)
	}
	return sessions
}

// SessionFilterMapper converts domain filters into store filters.
type SessionFilterMapper struct{}

// ToDatabase converts a domain SessionFilter to a database SessionFilter.
func (m *SessionFilterMapper) ToDatabase(f SessionFilter) sqlite.SessionFilter {
	return sqlite.SessionFilter{
		StartDay: f.StartDay,
		EndDay:   f.EndDay,
		TaskID:   f.TaskID,
		AppName:  f.AppName,
		Limit:    f.Limit,
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task          *TaskMapper
	Folder        *FolderMapper
	Session       *SessionMapper
	SessionFilter *SessionFilterMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Task:          &TaskMapper{},
		Folder:        &FolderMapper{},
		Session:       &SessionMapper{},
		SessionFilter: &SessionFilterMapper{},
	}
}
