package cli

import (
	"context"
	"fmt"
	"io"

	"focus-tracker/internal/errors"
)

// DailyCommand prints per-application totals for one day
type DailyCommand struct {
	client       Client
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewDailyCommand creates a new daily command handler
func NewDailyCommand(app *App) *DailyCommand {
	return &DailyCommand{client: app.client, out: app.out, errorHandler: NewErrorHandler()}
}

// Execute runs the daily command; the optional argument is YYYY-MM-DD
func (c *DailyCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errors.NewInvalidInputError("command", "daily", "usage: ft daily [YYYY-MM-DD]")
	}
	var date string
	if len(args) == 1 {
		date = args[0]
	}

	stats, err := c.client.Daily(ctx, date)
	if err != nil {
		return c.errorHandler.Handle("get daily stats", err)
	}

	fmt.Fprintf(c.out, "%s: %s in %d session(s)\n", stats.Date, formatSeconds(stats.TotalTime), stats.SessionCount)
	if len(stats.Applications) == 0 {
		fmt.Fprintln(c.out, "No activity recorded.")
		return nil
	}

	tw := newTable(c.out)
	fmt.Fprintln(tw, "APPLICATION\tTIME\tSESSIONS\tFIRST\tLAST")
	for _, app := range stats.Applications {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			app.AppName, formatSeconds(app.TotalTime), app.SessionCount,
			formatClock(app.FirstUsed), formatClock(app.LastUsed))
	}
	return tw.Flush()
}
