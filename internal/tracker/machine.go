// Package tracker turns the stream of focused-window samples into
// non-overlapping sessions attributed to the task being tracked.
package tracker

import (
	"context"
	"fmt"
	"time"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/errors"
	"focus-tracker/internal/logging"
	"focus-tracker/internal/probe"
	"focus-tracker/internal/repository/sqlite"
)

// Store is the subset of the session store the tracker writes through
type Store interface {
	GetTask(ctx context.Context, id int64) (*sqlite.Task, error)
	OpenSession(ctx context.Context, session *sqlite.Session) error
	SetSessionWindow(ctx context.Context, id int64, appName, windowTitle string) error
	CloseSession(ctx context.Context, id int64, end time.Time) error
	CheckpointSession(ctx context.Context, id int64, seen time.Time) error
	DeleteSession(ctx context.Context, id int64) error
	GetOpenSession(ctx context.Context) (*sqlite.Session, error)
}

// Options controls segmentation
type Options struct {
	// IdleTimeout closes the open session at the last real sample once no
	// window has been seen for this long.
	IdleTimeout time.Duration
	// CheckpointInterval is how often last_seen_at of the open session is
	// persisted. Zero disables checkpoints.
	CheckpointInterval time.Duration
	// TrackWindowTitles makes a title change start a new session.
	TrackWindowTitles bool
}

// StopResult describes the session closed by Stop. Session is nil when the
// tracker was idle.
type StopResult struct {
	TaskID   int64           `json:"task_id"`
	Session  *domain.Session `json:"session"`
	Duration time.Duration   `json:"-"`
}

// segment is the in-memory view of the open session. sessionID is zero
// until the row has been inserted.
type segment struct {
	sessionID      int64
	app            string
	title          string
	start          time.Time
	unknown        bool
	windowDirty    bool
	lastCheckpoint time.Time
}

type opKind int

const (
	opClose opKind = iota
	opInsertClosed
	opSetWindow
	opDelete
)

// writeOp is a session write that has not reached the store yet
type writeOp struct {
	kind      opKind
	sessionID int64
	end       time.Time
	app       string
	title     string
	session   sqlite.Session
}

func (op writeOp) String() string {
	switch op.kind {
	case opClose:
		return fmt.Sprintf("close session %d", op.sessionID)
	case opSetWindow:
		return fmt.Sprintf("set window of session %d to %s", op.sessionID, op.app)
	case opDelete:
		return fmt.Sprintf("delete empty session %d", op.sessionID)
	default:
		return fmt.Sprintf("record %s session", op.session.AppName)
	}
}

// Machine is the session state machine. It is not safe for concurrent use;
// Coordinator serialises access to it.
type Machine struct {
	store Store
	opts  Options

	active     bool
	taskID     int64
	seg        *segment
	lastSample time.Time
	pending    []writeOp
}

// NewMachine creates a stopped machine
func NewMachine(store Store, opts Options) *Machine {
	return &Machine{store: store, opts: opts}
}

// Start begins tracking taskID by opening an "unknown" session at now. The
// first real sample fills in its application and window.
func (m *Machine) Start(ctx context.Context, taskID int64, now time.Time) (*domain.Session, error) {
	if m.active {
		return nil, errors.NewAlreadyTrackingError(m.taskID)
	}
	if _, err := m.store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	if err := m.flush(ctx); err != nil {
		return nil, err
	}

	row := sqlite.Session{
		TaskID:     taskID,
		AppName:    domain.UnknownApp,
		StartTime:  now,
		LastSeenAt: &now,
	}
	if err := m.retry(ctx, func() error { return m.store.OpenSession(ctx, &row) }); err != nil {
		return nil, errors.NewStoreWriteFailedError("open session", err)
	}

	m.active = true
	m.taskID = taskID
	m.lastSample = now
	m.seg = &segment{
		sessionID:      row.ID,
		app:            domain.UnknownApp,
		start:          now,
		unknown:        true,
		lastCheckpoint: now,
	}
	logging.Logger.Info("tracking started", "task_id", taskID, "session_id", row.ID)

	s := m.segmentSession(m.seg)
	return &s, nil
}

// Stop closes the open session at now and stops tracking. A close that cannot
// be written stays queued and is flushed on a later tick.
func (m *Machine) Stop(ctx context.Context, now time.Time) (*StopResult, error) {
	if !m.active {
		return nil, errors.NewNotTrackingError()
	}
	m.flush(ctx)

	result := &StopResult{TaskID: m.taskID}
	if m.seg != nil {
		closed := m.closeSegment(ctx, now)
		result.Session = &closed
		result.Duration = closed.Duration(now)
	}

	m.active = false
	logging.Logger.Info("tracking stopped", "task_id", result.TaskID, "duration", result.Duration)
	return result, nil
}

// Observe applies one probe sample taken at now. Pending writes are flushed
// first whether or not tracking is active.
func (m *Machine) Observe(ctx context.Context, now time.Time, w probe.Window, ok bool) {
	m.flush(ctx)
	if !m.active {
		return
	}

	if !ok {
		if m.seg != nil && now.Sub(m.lastSample) >= m.opts.IdleTimeout {
			logging.Logger.Debug("idle timeout reached", "last_sample", m.lastSample)
			m.endSegment(ctx, m.lastSample)
		}
		return
	}

	switch {
	case m.seg == nil:
		m.openSegment(ctx, w, now)
	case m.seg.unknown:
		m.seg.app, m.seg.title = w.App, w.Title
		m.seg.unknown = false
		m.seg.windowDirty = true
		m.flush(ctx)
	case m.sameIdentity(w):
		m.seg.title = w.Title
		m.checkpoint(ctx, now)
	default:
		m.closeSegment(ctx, now)
		m.openSegment(ctx, w, now)
	}
	m.lastSample = now
}

// Shutdown closes the open session at the last observed sample and flushes
// queued writes. The machine is stopped afterwards.
func (m *Machine) Shutdown(ctx context.Context) error {
	if m.active && m.seg != nil {
		m.endSegment(ctx, m.lastSample)
	}
	m.active = false
	return m.flush(ctx)
}

// Recover closes a session left open by a crash at its last checkpoint and
// resumes tracking its task with no open session, so downtime is not counted.
func (m *Machine) Recover(ctx context.Context) error {
	open, err := m.store.GetOpenSession(ctx)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil
		}
		return err
	}

	end := open.StartTime
	if open.LastSeenAt != nil && open.LastSeenAt.After(end) {
		end = *open.LastSeenAt
	}
	if err := m.retry(ctx, func() error { return m.store.CloseSession(ctx, open.ID, end) }); err != nil {
		return errors.NewStoreWriteFailedError("close recovered session", err)
	}

	m.active = true
	m.taskID = open.TaskID
	m.seg = nil
	m.lastSample = end
	logging.Logger.Info("recovered open session", "session_id", open.ID, "task_id", open.TaskID, "closed_at", end)
	return nil
}

// Snapshot reports the current state
func (m *Machine) Snapshot() Status {
	st := Status{Running: m.active, PendingWrites: len(m.pending)}
	if !m.active {
		return st
	}

	taskID := m.taskID
	st.TaskID = &taskID
	lastSample := m.lastSample
	st.LastSample = &lastSample
	if m.seg == nil {
		st.Idle = true
		return st
	}

	start := m.seg.start
	st.CurrentApp = m.seg.app
	st.CurrentWindow = m.seg.title
	st.SegmentStart = &start
	if m.seg.sessionID != 0 {
		id := m.seg.sessionID
		st.SessionID = &id
	}
	return st
}

func (m *Machine) sameIdentity(w probe.Window) bool {
	if m.seg.app != w.App {
		return false
	}
	return !m.opts.TrackWindowTitles || m.seg.title == w.Title
}

func (m *Machine) openSegment(ctx context.Context, w probe.Window, at time.Time) {
	m.seg = &segment{app: w.App, title: w.Title, start: at, lastCheckpoint: at}
	m.flush(ctx)
}

// endSegment closes the current segment at end. A segment that never saw a
// window and has no length is discarded instead of being stored.
func (m *Machine) endSegment(ctx context.Context, end time.Time) {
	if !m.seg.unknown || end.After(m.seg.start) {
		m.closeSegment(ctx, end)
		return
	}

	seg := m.seg
	m.seg = nil
	if seg.sessionID != 0 {
		m.pending = append(m.pending, writeOp{kind: opDelete, sessionID: seg.sessionID})
	}
	logging.Logger.Debug("discarding empty session", "session_id", seg.sessionID)
	m.flush(ctx)
}

// closeSegment ends the current segment at end and queues the write. A
// window change that has not reached the store is queued ahead of the close.
func (m *Machine) closeSegment(ctx context.Context, end time.Time) domain.Session {
	seg := m.seg
	m.seg = nil

	closed := m.segmentSession(seg).Close(end)
	if seg.sessionID != 0 {
		if seg.windowDirty {
			m.pending = append(m.pending, writeOp{kind: opSetWindow, sessionID: seg.sessionID, app: seg.app, title: seg.title})
		}
		m.pending = append(m.pending, writeOp{kind: opClose, sessionID: seg.sessionID, end: end})
	} else {
		row := sqlite.Session{
			TaskID:      m.taskID,
			AppName:     seg.app,
			WindowTitle: seg.title,
			StartTime:   seg.start,
			EndTime:     &end,
		}
		m.pending = append(m.pending, writeOp{kind: opInsertClosed, session: row})
	}
	m.flush(ctx)
	return closed
}

// flush writes queued operations in order, then persists the current segment
// if it has not been written yet. It stops at the first write that fails
// twice; no session is opened while a close is outstanding.
func (m *Machine) flush(ctx context.Context) error {
	for len(m.pending) > 0 {
		op := m.pending[0]
		if err := m.retry(ctx, func() error { return m.apply(ctx, op) }); err != nil {
			logging.Logger.Error("session write failed; will retry", "op", op.String(), "pending", len(m.pending), "error", err)
			return errors.NewStoreWriteFailedError(op.String(), err)
		}
		m.pending = m.pending[1:]
	}

	if m.seg == nil {
		return nil
	}

	if m.seg.sessionID == 0 {
		seen := m.seg.start
		if m.lastSample.After(seen) {
			seen = m.lastSample
		}
		row := sqlite.Session{
			TaskID:      m.taskID,
			AppName:     m.seg.app,
			WindowTitle: m.seg.title,
			StartTime:   m.seg.start,
			LastSeenAt:  &seen,
		}
		if err := m.retry(ctx, func() error { return m.store.OpenSession(ctx, &row) }); err != nil {
			logging.Logger.Error("failed to open session; will retry", "app", m.seg.app, "error", err)
			return errors.NewStoreWriteFailedError("open session", err)
		}
		m.seg.sessionID = row.ID
		m.seg.windowDirty = false
		logging.Logger.Debug("session opened", "session_id", row.ID, "app", m.seg.app)
	}

	if m.seg.windowDirty {
		seg := m.seg
		if err := m.retry(ctx, func() error { return m.store.SetSessionWindow(ctx, seg.sessionID, seg.app, seg.title) }); err != nil {
			logging.Logger.Error("failed to record session window; will retry", "session_id", seg.sessionID, "error", err)
			return errors.NewStoreWriteFailedError("update session window", err)
		}
		seg.windowDirty = false
	}
	return nil
}

func (m *Machine) apply(ctx context.Context, op writeOp) error {
	switch op.kind {
	case opClose:
		return m.store.CloseSession(ctx, op.sessionID, op.end)
	case opSetWindow:
		return m.store.SetSessionWindow(ctx, op.sessionID, op.app, op.title)
	case opDelete:
		err := m.store.DeleteSession(ctx, op.sessionID)
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil
		}
		return err
	default:
		row := op.session
		return m.store.OpenSession(ctx, &row)
	}
}

// retry runs fn, trying once more on failure
func (m *Machine) retry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || ctx.Err() != nil {
		return err
	}
	return fn()
}

func (m *Machine) checkpoint(ctx context.Context, now time.Time) {
	if m.opts.CheckpointInterval <= 0 || m.seg.sessionID == 0 {
		return
	}
	if now.Sub(m.seg.lastCheckpoint) < m.opts.CheckpointInterval {
		return
	}
	if err := m.store.CheckpointSession(ctx, m.seg.sessionID, now); err != nil {
		logging.Logger.Warn("checkpoint failed", "session_id", m.seg.sessionID, "error", err)
		return
	}
	m.seg.lastCheckpoint = now
}

func (m *Machine) segmentSession(seg *segment) domain.Session {
	return domain.Session{
		ID:          seg.sessionID,
		TaskID:      m.taskID,
		AppName:     seg.app,
		WindowTitle: seg.title,
		StartTime:   seg.start,
	}
}
