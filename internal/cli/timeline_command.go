package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"focus-tracker/internal/errors"
	"focus-tracker/internal/services"
)

// TimelineCommand lists one day's sessions as a table or CSV
type TimelineCommand struct {
	client       Client
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewTimelineCommand creates a new timeline command handler
func NewTimelineCommand(app *App) *TimelineCommand {
	return &TimelineCommand{client: app.client, out: app.out, errorHandler: NewErrorHandler()}
}

// Execute runs the timeline command: ft timeline [YYYY-MM-DD] [format=table|csv]
func (c *TimelineCommand) Execute(ctx context.Context, args []string) error {
	var date string
	format := "table"
	for _, arg := range args {
		if strings.HasPrefix(arg, "format=") {
			format = strings.TrimPrefix(arg, "format=")
			continue
		}
		if date != "" {
			return errors.NewInvalidInputError("command", "timeline", "usage: ft timeline [YYYY-MM-DD] [format=table|csv]")
		}
		date = arg
	}
	if format != "table" && format != "csv" {
		return errors.NewInvalidInputError("format", format, "unsupported format")
	}

	timeline, err := c.client.Timeline(ctx, date, services.MaxTimelineLimit)
	if err != nil {
		return c.errorHandler.Handle("get timeline", err)
	}

	if format == "csv" {
		return c.writeCSV(timeline)
	}
	return c.writeTable(timeline)
}

func (c *TimelineCommand) writeTable(timeline *services.Timeline) error {
	if len(timeline.Sessions) == 0 {
		fmt.Fprintf(c.out, "No sessions on %s.\n", timeline.Date)
		return nil
	}

	tw := newTable(c.out)
	fmt.Fprintln(tw, "START\tEND\tDURATION\tTASK\tAPPLICATION\tWINDOW")
	for _, s := range timeline.Sessions {
		end := "running"
		if s.EndTime != nil {
			end = formatClock(s.EndTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			formatClock(&s.StartTime), end, formatSeconds(s.Duration), s.TaskID, s.AppName, s.WindowTitle)
	}
	return tw.Flush()
}

func (c *TimelineCommand) writeCSV(timeline *services.Timeline) error {
	writer := csv.NewWriter(c.out)

	header := []string{"ID", "Task ID", "Start Time", "End Time", "Duration (seconds)", "Application", "Window"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range timeline.Sessions {
		var end string
		if s.EndTime != nil {
			end = s.EndTime.Format(time.RFC3339)
		}
		row := []string{
			strconv.FormatInt(s.ID, 10),
			strconv.FormatInt(s.TaskID, 10),
			s.StartTime.Format(time.RFC3339),
			end,
			strconv.FormatFloat(s.Duration, 'f', 0, 64),
			s.AppName,
			s.WindowTitle,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
