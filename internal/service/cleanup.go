package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"fin-extract/internal/ledger"
	"fin-extract/internal/models"
	"fin-extract/internal/provider"
	"fin-extract/pkg/metrics"

	"github.com/disiqueira/gotree/v3"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type DeleteFailure struct {
	ID  string
	Err error
}

type DeleteReport struct {
	Deleted []string
	// Missing lists ids the provider no longer knew; they count as deleted.
	Missing []string
	Failed  []DeleteFailure
}

func (r DeleteReport) OK() bool { return len(r.Failed) == 0 }

// CleanupService deletes remote files and returns the ledger that matches
// what was actually deleted. It never saves; callers decide when to persist.
type CleanupService struct {
	provider provider.Client
	logger   *zap.Logger
}

func NewCleanupService(p provider.Client, logger *zap.Logger) *CleanupService {
	return &CleanupService{provider: p, logger: logger}
}

// deleteIDs attempts every id; one failure does not stop the rest.
func (s *CleanupService) deleteIDs(ctx context.Context, ids []string) DeleteReport {
	var report DeleteReport
	for _, id := range ids {
		err := s.provider.Delete(ctx, id)
		metrics.RemoteDeletes.WithLabelValues(s.provider.Name(), metrics.Result(err)).Inc()
		if errors.Is(err, provider.ErrNotFound) {
			s.logger.Warn("Remote file already gone", zap.String("file_id", id))
			report.Missing = append(report.Missing, id)
			report.Deleted = append(report.Deleted, id)
			continue
		}
		if err != nil {
			s.logger.Error("Remote delete failed", zap.String("file_id", id), zap.Error(err))
			report.Failed = append(report.Failed, DeleteFailure{ID: id, Err: err})
			continue
		}
		s.logger.Info("Remote file deleted", zap.String("file_id", id))
		report.Deleted = append(report.Deleted, id)
	}
	return report
}

// DeleteAll attempts to delete every recorded file and clears the ledger as
// soon as at least one delete went through. Failures are only reported.
// When every delete fails the ledger is returned unchanged.
func (s *CleanupService) DeleteAll(ctx context.Context, l models.Ledger) (models.Ledger, DeleteReport) {
	ids := l.FileIDs()
	report := s.deleteIDs(ctx, ids)
	if len(ids) > 0 && len(report.Deleted) == 0 {
		return l, report
	}
	return ledger.Clear(), report
}

// DeleteSession deletes the files of the session at index, removes their
// records, and removes the session once none of its files remain.
func (s *CleanupService) DeleteSession(ctx context.Context, l models.Ledger, index int) (models.Ledger, DeleteReport, error) {
	if index < 0 || index >= len(l.UploadSessions) {
		return l, DeleteReport{}, fmt.Errorf("invalid session number %d", index)
	}
	session := l.UploadSessions[index]
	report := s.deleteIDs(ctx, session.FileIDs)

	if !report.OK() {
		return ledger.RemoveFiles(l, report.Deleted), report, nil
	}
	out, err := ledger.RemoveSession(l, index)
	if err != nil {
		return l, report, err
	}
	return ledger.RemoveFiles(out, report.Deleted), report, nil
}

// ClearLocal forgets every record without contacting the provider.
func (s *CleanupService) ClearLocal(l models.Ledger) models.Ledger {
	s.logger.Warn("Clearing local ledger without remote deletes",
		zap.Int("files", len(l.Files)),
		zap.Int("sessions", len(l.UploadSessions)),
	)
	return ledger.Clear()
}

func (s *CleanupService) ListRemote(ctx context.Context) ([]models.RemoteFile, error) {
	files, err := s.provider.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote files: %w", err)
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].CreatedAt.Before(files[j].CreatedAt) })
	return files, nil
}

// RenderLedgerTree draws sessions and their files as a tree. Records that
// belong to no session are grouped under their own node.
func RenderLedgerTree(l models.Ledger) string {
	root := gotree.New(fmt.Sprintf("Ledger: %d files, %s", len(l.Files), humanize.Bytes(uint64(l.TotalSize()))))

	inSession := make(map[string]struct{}, len(l.Files))
	for i, sess := range l.UploadSessions {
		node := root.Add(fmt.Sprintf("%d: %s - %d files (%s)", i, sess.Directory, sess.FileCount, sess.UploadedAt))
		for _, id := range sess.FileIDs {
			inSession[id] = struct{}{}
			rec, ok := ledger.Lookup(l, id)
			if !ok {
				node.Add(id + " (no record)")
				continue
			}
			node.Add(fileLabel(rec))
		}
	}

	var loose gotree.Tree
	for _, rec := range l.Files {
		if _, ok := inSession[rec.ID]; ok {
			continue
		}
		if loose == nil {
			loose = root.Add("not in any session")
		}
		loose.Add(fileLabel(rec))
	}
	return root.Print()
}

func fileLabel(r models.FileRecord) string {
	return fmt.Sprintf("%s  [%s]  %s  %s", r.Filename, r.ID, humanize.Bytes(uint64(r.Size)), r.Status)
}
