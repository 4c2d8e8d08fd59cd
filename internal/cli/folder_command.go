package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"focus-tracker/internal/errors"
)

const folderUsage = "usage: ft folder list | add <name> | rename <id> <name> | rm <id>"

// FolderCommand manages folders
type FolderCommand struct {
	client       Client
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewFolderCommand creates a new folder command handler
func NewFolderCommand(app *App) *FolderCommand {
	return &FolderCommand{client: app.client, out: app.out, errorHandler: NewErrorHandler()}
}

// Execute dispatches on the first argument
func (c *FolderCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "folder", folderUsage)
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return c.list(ctx)
	case "add":
		if len(rest) == 0 {
			return errors.NewInvalidInputError("command", "folder add", folderUsage)
		}
		folder, err := c.client.CreateFolder(ctx, strings.Join(rest, " "))
		if err != nil {
			return c.errorHandler.Handle("create folder", err)
		}
		fmt.Fprintf(c.out, "Created folder %d: %s\n", folder.ID, folder.Name)
		return nil
	case "rename":
		if len(rest) < 2 {
			return errors.NewInvalidInputError("command", "folder rename", folderUsage)
		}
		id, err := parseID("folder-id", rest[0])
		if err != nil {
			return err
		}
		folder, err := c.client.RenameFolder(ctx, id, strings.Join(rest[1:], " "))
		if err != nil {
			return c.errorHandler.Handle("rename folder", err)
		}
		fmt.Fprintf(c.out, "Renamed folder %d to %s\n", folder.ID, folder.Name)
		return nil
	case "rm", "delete":
		if len(rest) != 1 {
			return errors.NewInvalidInputError("command", "folder rm", folderUsage)
		}
		id, err := parseID("folder-id", rest[0])
		if err != nil {
			return err
		}
		res, err := c.client.DeleteFolder(ctx, id)
		if err != nil {
			return c.errorHandler.Handle("delete folder", err)
		}
		fmt.Fprintf(c.out, "Deleted folder %d; %d task(s) moved to the default folder\n", id, res.ReassignedTasks)
		return nil
	default:
		return errors.NewInvalidInputError("command", "folder "+sub, folderUsage)
	}
}

func (c *FolderCommand) list(ctx context.Context) error {
	folders, err := c.client.ListFolders(ctx)
	if err != nil {
		return c.errorHandler.Handle("list folders", err)
	}

	tw := newTable(c.out)
	fmt.Fprintln(tw, "ID\tNAME\t")
	for _, f := range folders {
		marker := ""
		if f.IsDefault {
			marker = "(default)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", f.ID, f.Name, marker)
	}
	return tw.Flush()
}
