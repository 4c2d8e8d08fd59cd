package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"focus-tracker/internal/errors"
)

const taskUsage = "usage: ft task list [folder-id] | add <title> [folder=<id>] [description=<text>] | move <id> <folder-id> | rm <id>"

// TaskCommand manages tasks
type TaskCommand struct {
	client       Client
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewTaskCommand creates a new task command handler
func NewTaskCommand(app *App) *TaskCommand {
	return &TaskCommand{client: app.client, out: app.out, errorHandler: NewErrorHandler()}
}

// Execute dispatches on the first argument
func (c *TaskCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "task", taskUsage)
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return c.list(ctx, rest)
	case "add":
		return c.add(ctx, rest)
	case "move", "mv":
		if len(rest) != 2 {
			return errors.NewInvalidInputError("command", "task move", taskUsage)
		}
		id, err := parseID("task-id", rest[0])
		if err != nil {
			return err
		}
		folderID, err := parseID("folder-id", rest[1])
		if err != nil {
			return err
		}
		task, err := c.client.MoveTask(ctx, id, folderID)
		if err != nil {
			return c.errorHandler.Handle("move task", err)
		}
		fmt.Fprintf(c.out, "Moved task %d to folder %d\n", task.ID, task.FolderID)
		return nil
	case "rm", "delete":
		if len(rest) != 1 {
			return errors.NewInvalidInputError("command", "task rm", taskUsage)
		}
		id, err := parseID("task-id", rest[0])
		if err != nil {
			return err
		}
		res, err := c.client.DeleteTask(ctx, id)
		if err != nil {
			return c.errorHandler.Handle("delete task", err)
		}
		fmt.Fprintf(c.out, "Deleted task %d and %d session(s)\n", id, res.DeletedSessions)
		return nil
	default:
		return errors.NewInvalidInputError("command", "task "+sub, taskUsage)
	}
}

func (c *TaskCommand) list(ctx context.Context, args []string) error {
	var folderID int64
	switch len(args) {
	case 0:
	case 1:
		var err error
		if folderID, err = parseID("folder-id", args[0]); err != nil {
			return err
		}
	default:
		return errors.NewInvalidInputError("command", "task list", taskUsage)
	}

	tasks, err := c.client.ListTasks(ctx, folderID)
	if err != nil {
		return c.errorHandler.Handle("list tasks", err)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(c.out, "No tasks.")
		return nil
	}

	tw := newTable(c.out)
	fmt.Fprintln(tw, "ID\tFOLDER\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", t.ID, t.FolderID, t.Title)
	}
	return tw.Flush()
}

func (c *TaskCommand) add(ctx context.Context, args []string) error {
	var (
		words       []string
		description string
		folderID    int64
	)
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "folder="):
			id, err := parseID("folder", strings.TrimPrefix(arg, "folder="))
			if err != nil {
				return err
			}
			folderID = id
		case strings.HasPrefix(arg, "description="):
			description = strings.TrimPrefix(arg, "description=")
		default:
			words = append(words, arg)
		}
	}
	if len(words) == 0 {
		return errors.NewInvalidInputError("command", "task add", taskUsage)
	}

	task, err := c.client.CreateTask(ctx, strings.Join(words, " "), description, folderID)
	if err != nil {
		switch {
		case c.errorHandler.IsValidationError(err):
			return c.errorHandler.HandleSimple(err)
		case c.errorHandler.IsNotFoundError(err):
			return fmt.Errorf("%w; run `ft folder list` to see folder IDs", c.errorHandler.HandleSimple(err))
		}
		return c.errorHandler.Handle("create task", err)
	}
	fmt.Fprintf(c.out, "Created task %d: %s\n", task.ID, task.Title)
	return nil
}
