package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

const menuText = `
File Cleanup Utility
==================================================
1. Delete all uploaded files
2. Delete files by upload session
3. List local file records
4. List all remote files
5. Clear local file records only
6. Exit`

// menuActions is what the menu dispatches to. CleanupApp implements it.
type menuActions interface {
	DeleteAll(ctx context.Context) error
	DeleteSession(ctx context.Context) error
	ListLocal(ctx context.Context) error
	ListRemote(ctx context.Context) error
	ClearLocal(ctx context.Context) error
}

// runMenu shows the menu on w until the user picks 6, input ends or ctx is
// cancelled. An action error is printed and the menu is shown again.
func runMenu(ctx context.Context, a menuActions, reader *bufio.Reader, w io.Writer) {
	say := func(args ...any) { fmt.Fprintln(w, args...) }
	for {
		if ctx.Err() != nil {
			return
		}
		say(menuText)
		choice, err := GetSimpleText(reader, "\nEnter your choice (1-6): ", w)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				say("Error:", err)
			}
			say()
			return
		}

		var actionErr error
		switch choice {
		case "1":
			actionErr = a.DeleteAll(ctx)
		case "2":
			actionErr = a.DeleteSession(ctx)
		case "3":
			actionErr = a.ListLocal(ctx)
		case "4":
			actionErr = a.ListRemote(ctx)
		case "5":
			actionErr = a.ClearLocal(ctx)
		case "6":
			say("Goodbye!")
			return
		default:
			say("Invalid choice, please try again")
			continue
		}
		if actionErr != nil {
			say("Error:", actionErr)
		}
	}
}
