package cli

import (
	"context"
	"fmt"
	"io"

	"focus-tracker/internal/errors"
)

// SummaryCommand prints the overall totals
type SummaryCommand struct {
	client       Client
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewSummaryCommand creates a new summary command handler
func NewSummaryCommand(app *App) *SummaryCommand {
	return &SummaryCommand{client: app.client, out: app.out, errorHandler: NewErrorHandler()}
}

// Execute runs the summary command
func (c *SummaryCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "summary", "usage: ft summary")
	}

	summary, err := c.client.Summary(ctx)
	if err != nil {
		return c.errorHandler.Handle("get summary", err)
	}

	state := "stopped"
	if summary.Running {
		state = "running"
	}

	tw := newTable(c.out)
	fmt.Fprintf(tw, "Today\t%s\n", formatSeconds(summary.TodayTime))
	fmt.Fprintf(tw, "This week\t%s\n", formatSeconds(summary.WeekTime))
	fmt.Fprintf(tw, "Last 30 days\t%s\n", formatSeconds(summary.MonthTime))
	fmt.Fprintf(tw, "All time\t%s\n", formatSeconds(summary.TotalTime))
	fmt.Fprintf(tw, "Sessions\t%d\n", summary.TotalSessions)
	fmt.Fprintf(tw, "Tasks\t%d\n", summary.TotalTasks)
	fmt.Fprintf(tw, "Applications\t%d\n", summary.TotalApplications)
	fmt.Fprintf(tw, "Tracker\t%s\n", state)
	return tw.Flush()
}
