package cli

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-tracker/internal/client"
	"focus-tracker/internal/config"
	"focus-tracker/internal/errors"
	"focus-tracker/internal/logging"
	"focus-tracker/internal/probe"
	"focus-tracker/internal/repository/sqlite"
)

type staticProbe struct {
	window probe.Window
}

func (p staticProbe) Sample(ctx context.Context) (probe.Window, bool) {
	return p.window, true
}

func TestServe_TracksUntilCancelled(t *testing.T) {
	orig := logging.Logger
	t.Cleanup(func() { logging.Logger = orig })

	dir := t.TempDir()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	root, _ := newTestRoot(t, newMockClient())
	root.SetServeSetup(func(s *ServeCommand) *ServeCommand {
		return s.WithProbe(staticProbe{window: probe.Window{App: "editor", Title: "main.go"}}).WithListener(ln)
	})
	root.SetArgs([]string{
		"serve",
		"--db-dir", dir,
		"--log-file", filepath.Join(dir, "ft.log"),
		"--poll-interval", "20ms",
		"--probe-timeout", "10ms",
		"--idle-timeout", "1s",
		"--timezone", "UTC",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	c := client.New("http://"+ln.Addr().String(), 2*time.Second)
	require.Eventually(t, func() bool {
		_, err := c.Health(ctx)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Empty(t, health.ProbeBackends)

	task, err := c.CreateTask(ctx, "Write report", "", 0)
	require.NoError(t, err)
	_, err = c.Start(ctx, task.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, err := c.Status(ctx)
		return err == nil && st.CurrentApp == "editor" && st.SessionID != nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}

	cfg := config.NewConfig()
	cfg.Database.Dir = dir
	store, err := config.CreateRepository(cfg)
	require.NoError(t, err)
	defer store.Close()

	bg := context.Background()
	_, err = store.GetOpenSession(bg)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound), "shutdown should close the open session")

	sessions, err := store.ListSessions(bg, sqlite.SessionFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, sessions)
	assert.Equal(t, task.ID, sessions[0].TaskID)
	assert.Equal(t, "editor", sessions[0].AppName)
	assert.NotNil(t, sessions[0].EndTime)
}

func TestServeCommand_RejectsArguments(t *testing.T) {
	err := NewServeCommand(config.NewConfig()).Execute(context.Background(), []string{"now"})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}
