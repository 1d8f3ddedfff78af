package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"fin-extract/internal/ledger"
	"fin-extract/internal/models"
	"fin-extract/internal/provider"
	"fin-extract/pkg/config"
	"fin-extract/pkg/metrics"

	"go.uber.org/zap"
)

// DefaultAnalysisPrompt is used when no prompt file is available.
const DefaultAnalysisPrompt = `You are an expert document analyzer. Review the attached financial documents and provide a comprehensive summary: who the applicants are, their income, expenses, assets and liabilities, and anything that looks inconsistent or missing.`

// FileFailure is a per-file error that did not stop the batch.
type FileFailure struct {
	Path string
	Err  error
}

type UploadReport struct {
	Directory string
	Uploaded  []models.FileRecord
	Failed    []FileFailure
}

type FileManagerService struct {
	provider provider.Client
	store    *ledger.Store
	cfg      *config.UploadConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewFileManagerService(p provider.Client, store *ledger.Store, cfg *config.UploadConfig, logger *zap.Logger) *FileManagerService {
	return &FileManagerService{
		provider: p,
		store:    store,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// UploadDirectory uploads every regular non-hidden file under dir and
// returns the ledger with the new records and one session for them. A file
// that fails is reported and skipped.
func (s *FileManagerService) UploadDirectory(ctx context.Context, l models.Ledger, dir string) (models.Ledger, UploadReport, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return l, UploadReport{}, fmt.Errorf("failed to resolve directory: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return l, UploadReport{}, fmt.Errorf("directory not found: %w", err)
	}
	if !info.IsDir() {
		return l, UploadReport{}, fmt.Errorf("%s is not a directory", absDir)
	}

	report := UploadReport{Directory: absDir}
	paths, walkFailures := collectFiles(absDir, "")
	report.Failed = append(report.Failed, walkFailures...)

	s.logger.Info("Uploading directory",
		zap.String("directory", absDir),
		zap.Int("files", len(paths)),
		zap.String("purpose", s.cfg.Purpose),
	)

	for _, path := range paths {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, FileFailure{Path: path, Err: ctx.Err()})
			continue
		}
		rec, err := s.uploadOne(ctx, path)
		metrics.Uploads.WithLabelValues(s.provider.Name(), metrics.Result(err)).Inc()
		if err != nil {
			s.logger.Error("Upload failed, skipping file", zap.String("path", path), zap.Error(err))
			report.Failed = append(report.Failed, FileFailure{Path: path, Err: err})
			continue
		}
		report.Uploaded = append(report.Uploaded, rec)
	}

	l = ledger.AppendUpload(l, absDir, report.Uploaded, s.now())

	s.logger.Info("Directory upload finished",
		zap.Int("uploaded", len(report.Uploaded)),
		zap.Int("failed", len(report.Failed)),
	)
	return l, report, nil
}

func (s *FileManagerService) uploadOne(ctx context.Context, path string) (models.FileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("failed to stat file: %w", err)
	}

	name := filepath.Base(path)
	rf, err := s.provider.Upload(ctx, name, f, s.cfg.Purpose)
	if err != nil {
		return models.FileRecord{}, err
	}

	status := rf.Status
	if status == "" {
		status = "processed"
	}
	return models.FileRecord{
		ID:           rf.ID,
		Filename:     name,
		OriginalPath: path,
		Purpose:      s.cfg.Purpose,
		UploadedAt:   ledger.Timestamp(s.now()),
		Size:         info.Size(),
		Status:       status,
	}, nil
}

// collectFiles walks root in lexical order, skipping hidden entries, the
// optional skip directory and anything that is not a regular file.
func collectFiles(root, skip string) ([]string, []FileFailure) {
	var (
		paths    []string
		failures []FileFailure
	)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			failures = append(failures, FileFailure{Path: path, Err: err})
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() && skip != "" && path == skip && path != root {
			return fs.SkipDir
		}
		if path != root && isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, failures
}

// Attachments picks the records that can be attached to a completion:
// known ids whose extension is allowed, capped at MaxAttachments.
func (s *FileManagerService) Attachments(l models.Ledger, ids []string) (refs []provider.FileRef, filtered, truncated int) {
	for _, id := range ids {
		rec, ok := ledger.Lookup(l, id)
		if !ok {
			filtered++
			continue
		}
		if len(s.cfg.AttachmentExtensions) > 0 &&
			!slices.Contains(s.cfg.AttachmentExtensions, strings.ToLower(filepath.Ext(rec.Filename))) {
			filtered++
			continue
		}
		refs = append(refs, provider.FileRef{ID: rec.ID, Filename: rec.Filename})
	}
	if s.cfg.MaxAttachments > 0 && len(refs) > s.cfg.MaxAttachments {
		truncated = len(refs) - s.cfg.MaxAttachments
		refs = refs[:s.cfg.MaxAttachments]
	}
	return refs, filtered, truncated
}

// Ask sends one completion referencing the given uploaded files.
func (s *FileManagerService) Ask(ctx context.Context, l models.Ledger, ids []string, prompt string) (string, error) {
	refs, filtered, truncated := s.Attachments(l, ids)
	if filtered > 0 {
		s.logger.Warn("Some files cannot be attached and were left out", zap.Int("filtered", filtered))
	}
	if truncated > 0 {
		s.logger.Warn("Attachment limit reached, extra files left out",
			zap.Int("limit", s.cfg.MaxAttachments),
			zap.Int("dropped", truncated),
		)
	}

	answer, err := s.provider.Complete(ctx, provider.CompletionRequest{
		System: "You are an expert document analyzer. Analyze uploaded documents and provide comprehensive summaries, insights, and recommendations.",
		Prompt: prompt,
		Files:  refs,
	})
	metrics.Completions.WithLabelValues(s.provider.Name(), metrics.Result(err)).Inc()
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return answer, nil
}

type RunOptions struct {
	Directory string
	Prompt    string
	// Force uploads even when the ledger already has records.
	Force bool
}

type RunResult struct {
	// Report is nil when the upload step was skipped.
	Report  *UploadReport
	FileIDs []string
	Answer  string
}

// Run is the upload-record-ask flow of the filemanager command. The ledger is
// saved after uploading and before the completion request.
func (s *FileManagerService) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	var res RunResult

	l, err := s.store.Load()
	if err != nil {
		return res, err
	}

	if len(l.Files) > 0 && !opts.Force {
		res.FileIDs = l.FileIDs()
		s.logger.Info("Files already uploaded, skipping upload", zap.Int("files", len(res.FileIDs)))
	} else {
		var report UploadReport
		l, report, err = s.UploadDirectory(ctx, l, opts.Directory)
		if err != nil {
			return res, err
		}
		res.Report = &report
		if err := s.store.Save(l); err != nil {
			return res, fmt.Errorf("failed to save ledger: %w", err)
		}
		for _, r := range report.Uploaded {
			res.FileIDs = append(res.FileIDs, r.ID)
		}
	}

	if len(res.FileIDs) == 0 {
		return res, errors.New("no files were uploaded")
	}

	prompt := opts.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultAnalysisPrompt
	}
	res.Answer, err = s.Ask(ctx, l, res.FileIDs, prompt)
	return res, err
}
