package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"focus-tracker/internal/domain"
	"focus-tracker/internal/logging"
	"focus-tracker/internal/probe"
)

// Status is a point-in-time view of the tracker
type Status struct {
	Running       bool       `json:"running"`
	TaskID        *int64     `json:"task_id"`
	CurrentApp    string     `json:"current_app"`
	CurrentWindow string     `json:"current_window"`
	SegmentStart  *time.Time `json:"segment_start"`
	SessionID     *int64     `json:"session_id"`
	Idle          bool       `json:"idle"`
	LastSample    *time.Time `json:"last_sample"`
	PendingWrites int        `json:"pending_writes"`
}

// Coordinator owns the Machine. Commands and ticks are serialised by a
// mutex; Status reads a snapshot and never blocks on either.
type Coordinator struct {
	mu      sync.Mutex
	machine *Machine
	probe   probe.Probe
	now     func() time.Time
	status  atomic.Pointer[Status]
}

// NewCoordinator creates a stopped coordinator sampling p
func NewCoordinator(store Store, p probe.Probe, opts Options) *Coordinator {
	c := &Coordinator{
		machine: NewMachine(store, opts),
		probe:   p,
		now:     time.Now,
	}
	c.publish()
	return c
}

// WithClock replaces the time source
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// Start begins tracking taskID
func (c *Coordinator) Start(ctx context.Context, taskID int64) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.publish()

	return c.machine.Start(ctx, taskID, c.now())
}

// Stop ends tracking and returns the closed session
func (c *Coordinator) Stop(ctx context.Context) (*StopResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.publish()

	return c.machine.Stop(ctx, c.now())
}

// Status returns the latest snapshot
func (c *Coordinator) Status() Status {
	return *c.status.Load()
}

// Running reports whether a task is being tracked
func (c *Coordinator) Running() bool {
	return c.Status().Running
}

// IsTracking reports whether taskID is the task being tracked
func (c *Coordinator) IsTracking(taskID int64) bool {
	st := c.Status()
	return st.Running && st.TaskID != nil && *st.TaskID == taskID
}

// Tick samples the probe and feeds the result to the machine. The probe runs
// outside the lock so a slow backend never delays Start or Stop.
func (c *Coordinator) Tick(ctx context.Context) {
	w, ok := c.probe.Sample(ctx)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.publish()

	c.machine.Observe(ctx, now, w, ok)
}

// Recover resumes after a crash that left an open session behind
func (c *Coordinator) Recover(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.publish()

	return c.machine.Recover(ctx)
}

// Shutdown closes the open session at the last observed sample
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.publish()

	return c.machine.Shutdown(ctx)
}

// Run ticks every interval until ctx is cancelled, then shuts the machine
// down with a fresh deadline.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration, shutdownTimeout time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Logger.Info("tracker loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := c.Shutdown(shutdownCtx); err != nil {
				logging.Logger.Error("tracker shutdown left unsaved sessions", "error", err)
				return err
			}
			logging.Logger.Info("tracker loop stopped")
			return nil
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

func (c *Coordinator) publish() {
	st := c.machine.Snapshot()
	c.status.Store(&st)
}
