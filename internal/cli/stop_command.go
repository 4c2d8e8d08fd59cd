package cli

import (
	"context"
	"fmt"
	"io"

	"focus-tracker/internal/errors"
)

// StopCommand handles the stop command
type StopCommand struct {
	client       Client
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewStopCommand creates a new stop command handler
func NewStopCommand(app *App) *StopCommand {
	return &StopCommand{client: app.client, out: app.out, errorHandler: NewErrorHandler()}
}

// Execute runs the stop command
func (c *StopCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "stop", "usage: ft stop")
	}

	res, err := c.client.Stop(ctx)
	if err != nil {
		if c.errorHandler.GetErrorCode(err) == errors.CodeNotTracking {
			return fmt.Errorf("%w; nothing to stop", c.errorHandler.HandleSimple(err))
		}
		return c.errorHandler.Handle("stop tracking", err)
	}

	if res.Session == nil {
		fmt.Fprintf(c.out, "Stopped tracking task %d (idle)\n", res.TaskID)
		return nil
	}
	fmt.Fprintf(c.out, "Stopped tracking task %d: last session %s in %s\n",
		res.TaskID, formatSeconds(res.Duration), res.Session.AppName)
	return nil
}
