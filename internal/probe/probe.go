// Package probe reports which application window currently has focus.
//
// A Chain tries a ranked list of desktop backends on every sample and folds
// every failure into "no window", so the caller never sees an error.
package probe

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Window identifies the focused application and its window title
type Window struct {
	App   string `json:"app"`
	Title string `json:"title"`
}

// Probe samples the focused window. ok is false when nothing usable could be
// read.
type Probe interface {
	Sample(ctx context.Context) (w Window, ok bool)
}

// Backend reads the focused window from one desktop environment
type Backend interface {
	Name() string
	// Binaries lists the executables the backend shells out to.
	Binaries() []string
	ActiveWindow(ctx context.Context, run Runner) (Window, error)
}

// ErrNoWindow is returned by backends when no window has focus
var ErrNoWindow = errors.New("no focused window")

// Runner executes an external command and returns its stdout
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs real processes
type ExecRunner struct{}

// Run executes name with args, killing it when ctx ends
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// LookPath searches PATH for name
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Chain samples the first backend that yields a window
type Chain struct {
	backends []Backend
	runner   Runner
	timeout  time.Duration
	logger   *slog.Logger
}

// NewChain builds a chain from backend names in priority order. Backends
// whose binaries are missing are dropped; unknown names are ignored.
func NewChain(names []string, runner Runner, timeout time.Duration, logger *slog.Logger) *Chain {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Chain{runner: runner, timeout: timeout, logger: logger}
	for _, name := range names {
		backend, ok := Lookup(name)
		if !ok {
			logger.Warn("unknown probe backend", "backend", name)
			continue
		}
		if missing := missingBinary(runner, backend); missing != "" {
			logger.Info("probe backend unavailable", "backend", name, "missing", missing)
			continue
		}
		c.backends = append(c.backends, backend)
	}

	if len(c.backends) == 0 {
		logger.Warn("no probe backend available; every sample will be empty")
	} else {
		logger.Info("probe backends ready", "backends", c.Names())
	}
	return c
}

// Names returns the usable backends in priority order
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.backends))
	for _, b := range c.backends {
		names = append(names, b.Name())
	}
	return names
}

// Sample tries each backend once within the chain timeout
func (c *Chain) Sample(ctx context.Context) (Window, bool) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	for _, b := range c.backends {
		w, err := b.ActiveWindow(ctx, c.runner)
		if err != nil {
			if !errors.Is(err, ErrNoWindow) {
				c.logger.Debug("probe failed", "backend", b.Name(), "error", err)
			}
			if ctx.Err() != nil {
				return Window{}, false
			}
			continue
		}
		w.App = strings.TrimSpace(w.App)
		w.Title = strings.TrimSpace(w.Title)
		if w.App == "" {
			continue
		}
		return w, true
	}
	return Window{}, false
}

func missingBinary(runner Runner, b Backend) string {
	for _, bin := range b.Binaries() {
		if _, err := runner.LookPath(bin); err != nil {
			return bin
		}
	}
	return ""
}

// Lookup returns the backend registered under name
func Lookup(name string) (Backend, bool) {
	switch name {
	case "hyprland":
		return Hyprland{}, true
	case "sway":
		return Sway{}, true
	case "x11":
		return X11{}, true
	default:
		return nil, false
	}
}
