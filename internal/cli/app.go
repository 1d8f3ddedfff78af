package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"fin-extract/internal/ledger"
	"fin-extract/internal/service"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// CleanupApp is the interactive cleanup utility. The ledger is loaded fresh
// for every action and saved after every change.
type CleanupApp struct {
	service *service.CleanupService
	store   *ledger.Store
	reader  *bufio.Reader
	out     io.Writer
	logger  *zap.Logger
}

func NewCleanupApp(svc *service.CleanupService, store *ledger.Store, in io.Reader, out io.Writer, logger *zap.Logger) *CleanupApp {
	return &CleanupApp{
		service: svc,
		store:   store,
		reader:  bufio.NewReader(in),
		out:     out,
		logger:  logger,
	}
}

// Run blocks until the user exits the menu.
func (a *CleanupApp) Run(ctx context.Context) {
	runMenu(ctx, a, a.reader, a.out)
}

func (a *CleanupApp) DeleteAll(ctx context.Context) error {
	l, err := a.store.Load()
	if err != nil {
		return err
	}
	if len(l.Files) == 0 {
		fmt.Fprintln(a.out, "No files to delete.")
		return nil
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Are you sure you want to delete %d files?", len(l.Files)), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	out, report := a.service.DeleteAll(ctx, l)
	if err := a.store.Save(out); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	a.printReport(report)
	return nil
}

func (a *CleanupApp) DeleteSession(ctx context.Context) error {
	l, err := a.store.Load()
	if err != nil {
		return err
	}
	if len(l.UploadSessions) == 0 {
		fmt.Fprintln(a.out, "No upload sessions found.")
		return nil
	}

	fmt.Fprintln(a.out, "\nUpload sessions:")
	for i, s := range l.UploadSessions {
		fmt.Fprintf(a.out, "%d: %s - %d files (%s)\n", i, s.Directory, s.FileCount, s.UploadedAt)
	}

	answer, err := GetSimpleText(a.reader, "Enter session number to delete: ", a.out)
	if err != nil {
		return err
	}
	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 0 || idx >= len(l.UploadSessions) {
		fmt.Fprintln(a.out, "Invalid session number.")
		return nil
	}

	session := l.UploadSessions[idx]
	ok, err := Confirm(a.reader, fmt.Sprintf("Are you sure you want to delete %d files from %s?", len(session.FileIDs), session.Directory), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	out, report, err := a.service.DeleteSession(ctx, l, idx)
	if err != nil {
		return err
	}
	if err := a.store.Save(out); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	a.printReport(report)
	if !report.OK() {
		fmt.Fprintln(a.out, "Failed records were kept in the session; run the delete again to retry.")
	}
	return nil
}

func (a *CleanupApp) ListLocal(context.Context) error {
	l, err := a.store.Load()
	if err != nil {
		return err
	}
	if l.IsEmpty() {
		fmt.Fprintln(a.out, "No local file records.")
		return nil
	}
	fmt.Fprint(a.out, service.RenderLedgerTree(l))
	return nil
}

func (a *CleanupApp) ListRemote(ctx context.Context) error {
	files, err := a.service.ListRemote(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, "No remote files found.")
		return nil
	}

	fmt.Fprintf(a.out, "\nRemote files (%d):\n", len(files))
	for _, f := range files {
		fmt.Fprintf(a.out, "  ID: %s\n", f.ID)
		fmt.Fprintf(a.out, "  Filename: %s\n", f.Filename)
		fmt.Fprintf(a.out, "  Purpose: %s\n", f.Purpose)
		fmt.Fprintf(a.out, "  Size: %d bytes (%s)\n", f.Bytes, humanize.Bytes(uint64(max(f.Bytes, 0))))
		if !f.CreatedAt.IsZero() {
			fmt.Fprintf(a.out, "  Created: %s (%s)\n", f.CreatedAt.Format(time.DateTime), humanize.Time(f.CreatedAt))
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *CleanupApp) ClearLocal(context.Context) error {
	l, err := a.store.Load()
	if err != nil {
		return err
	}
	if l.IsEmpty() {
		fmt.Fprintln(a.out, "No local file records.")
		return nil
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Forget %d local records? Remote files are not deleted.", len(l.Files)), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.store.Save(a.service.ClearLocal(l)); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	fmt.Fprintln(a.out, "Local file records cleared.")
	return nil
}

func (a *CleanupApp) printReport(r service.DeleteReport) {
	fmt.Fprintf(a.out, "\nDeletion summary:\n  Deleted: %d\n  Failed: %d\n", len(r.Deleted), len(r.Failed))
	if len(r.Missing) > 0 {
		fmt.Fprintf(a.out, "  Already gone remotely: %d\n", len(r.Missing))
	}
	for _, f := range r.Failed {
		fmt.Fprintf(a.out, "  - %s: %v\n", f.ID, f.Err)
	}
}
