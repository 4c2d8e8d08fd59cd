package cli

import (
	"context"
	"fmt"
	"io"

	"focus-tracker/internal/errors"
)

// StatusCommand shows what the tracker is doing
type StatusCommand struct {
	client       Client
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App) *StatusCommand {
	return &StatusCommand{client: app.client, out: app.out, errorHandler: NewErrorHandler()}
}

// Execute runs the status command
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "status", "usage: ft status")
	}

	status, err := c.client.Status(ctx)
	if err != nil {
		return c.errorHandler.Handle("get tracker status", err)
	}

	if !status.Running || status.TaskID == nil {
		fmt.Fprintln(c.out, "Not tracking")
		return nil
	}

	title := fmt.Sprintf("task %d", *status.TaskID)
	if task, err := c.client.GetTask(ctx, *status.TaskID); err == nil {
		title = fmt.Sprintf("%q (task %d)", task.Title, task.ID)
	}
	fmt.Fprintf(c.out, "Tracking %s\n", title)

	switch {
	case status.Idle:
		fmt.Fprintf(c.out, "  idle since %s\n", formatClock(status.LastSample))
	default:
		window := status.CurrentApp
		if status.CurrentWindow != "" {
			window += ": " + status.CurrentWindow
		}
		fmt.Fprintf(c.out, "  %s since %s\n", window, formatClock(status.SegmentStart))
	}
	if status.PendingWrites > 0 {
		fmt.Fprintf(c.out, "  %d session write(s) pending\n", status.PendingWrites)
	}
	return nil
}
