package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"focus-tracker/internal/client"
	"focus-tracker/internal/errors"
	"focus-tracker/internal/validation"
)

var lookbackPattern = regexp.MustCompile(`^(\d+)(d|w)$`)

// ResumeCommand restarts tracking on a recently worked task
type ResumeCommand struct {
	client       Client
	in           io.Reader
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewResumeCommand creates a new resume command handler
func NewResumeCommand(app *App) *ResumeCommand {
	return &ResumeCommand{client: app.client, in: app.in, out: app.out, errorHandler: NewErrorHandler()}
}

// Execute lists tasks with sessions in the lookback window (default today),
// newest first, and starts the one picked.
func (c *ResumeCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errors.NewInvalidInputError("command", "resume", "usage: ft resume [Nd|Nw]")
	}

	days := 0
	if len(args) == 1 {
		var err error
		if days, err = parseLookback(args[0]); err != nil {
			return err
		}
	}

	now := timeNow()
	since := now.AddDate(0, 0, -days).Format(validation.DateLayout)
	sessions, err := c.client.Sessions(ctx, client.SessionQuery{StartDate: since})
	if err != nil {
		return c.errorHandler.Handle("list recent sessions", err)
	}

	var taskIDs []int64
	seen := make(map[int64]bool)
	for _, s := range sessions {
		if !seen[s.TaskID] {
			seen[s.TaskID] = true
			taskIDs = append(taskIDs, s.TaskID)
		}
	}
	if len(taskIDs) == 0 {
		fmt.Fprintln(c.out, "No tasks found in the selected period.")
		return nil
	}

	fmt.Fprintln(c.out, "Select a task to resume:")
	for i, id := range taskIDs {
		title := fmt.Sprintf("task %d", id)
		if task, err := c.client.GetTask(ctx, id); err == nil {
			title = task.Title
		}
		fmt.Fprintf(c.out, "%d. %s\n", i+1, title)
	}
	fmt.Fprint(c.out, "Enter number to resume, or 'q' to quit: ")

	input, _ := bufio.NewReader(c.in).ReadString('\n')
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, "q") {
		fmt.Fprintln(c.out, "Resume cancelled.")
		return nil
	}
	idx, err := strconv.Atoi(input)
	if err != nil || idx < 1 || idx > len(taskIDs) {
		return errors.NewInvalidInputError("selection", input, "invalid selection")
	}
	selected := taskIDs[idx-1]

	status, err := c.client.Status(ctx)
	if err != nil {
		return c.errorHandler.Handle("get tracker status", err)
	}
	if status.Running {
		if status.TaskID != nil && *status.TaskID == selected {
			fmt.Fprintf(c.out, "Already tracking task %d\n", selected)
			return nil
		}
		if _, err := c.client.Stop(ctx); err != nil {
			return c.errorHandler.Handle("stop tracking", err)
		}
	}

	return startTask(ctx, c.client, c.out, c.errorHandler, selected)
}

// parseLookback parses "3d" or "2w" into a number of days
func parseLookback(value string) (int, error) {
	matches := lookbackPattern.FindStringSubmatch(value)
	if matches == nil {
		return 0, errors.NewInvalidInputError("lookback", value, "use a number of days or weeks such as 3d or 2w")
	}
	n, _ := strconv.Atoi(matches[1])
	if matches[2] == "w" {
		n *= 7
	}
	return n, nil
}
