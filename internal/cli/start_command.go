package cli

import (
	"context"
	"fmt"
	"io"

	"focus-tracker/internal/errors"
)

// StartCommand handles the start command
type StartCommand struct {
	client       Client
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewStartCommand creates a new start command handler
func NewStartCommand(app *App) *StartCommand {
	return &StartCommand{client: app.client, out: app.out, errorHandler: NewErrorHandler()}
}

// Execute runs the start command
func (c *StartCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "start", "usage: ft start <task-id>")
	}
	taskID, err := parseID("task-id", args[0])
	if err != nil {
		return err
	}
	return startTask(ctx, c.client, c.out, c.errorHandler, taskID)
}

// startTask starts tracking and reports the task title
func startTask(ctx context.Context, client Client, out io.Writer, eh *ErrorHandler, taskID int64) error {
	if _, err := client.Start(ctx, taskID); err != nil {
		switch {
		case eh.IsNotFoundError(err):
			return fmt.Errorf("%w; run `ft task list` to see task IDs", eh.HandleSimple(err))
		case eh.IsConflictError(err):
			return fmt.Errorf("%w with `ft stop`", eh.HandleSimple(err))
		}
		return eh.Handle("start tracking", err)
	}

	if task, err := client.GetTask(ctx, taskID); err == nil {
		fmt.Fprintf(out, "Started tracking %q (task %d)\n", task.Title, task.ID)
	} else {
		fmt.Fprintf(out, "Started tracking task %d\n", taskID)
	}
	return nil
}
