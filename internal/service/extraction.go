package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"fin-extract/internal/models"
	"fin-extract/internal/provider"
	"fin-extract/pkg/config"
	"fin-extract/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MetadataSuffix is appended to a document stem to name its metadata file.
const MetadataSuffix = "-hmoney-metadata.json"

// extractPurpose is the upload purpose for files attached to a single request.
const extractPurpose = "user_data"

const documentUserPrompt = "Extract all information from this file"

var (
	DocumentExtensions = []string{".pdf"}
	ImageExtensions    = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}
)

var ErrUnsupportedFile = errors.New("unsupported file type")

// Supported reports whether the document stage accepts filename.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains(DocumentExtensions, ext) || slices.Contains(ImageExtensions, ext)
}

// DocumentResult is the outcome of one document. Metadata.Error is set when
// the model could not extract it; Markdown is empty then.
type DocumentResult struct {
	Source   string
	Markdown string
	Metadata models.DocumentMetadata
}

type ExtractionReport struct {
	Documents []DocumentResult
	Skipped   []string
	Failed    []FileFailure
}

type ExtractionService struct {
	provider provider.Client
	cfg      *config.ExtractConfig
	logger   *zap.Logger
	// SystemPrompt replaces the built-in markdown prompt when set.
	SystemPrompt string
	newID        func() string
	now          func() time.Time
}

func NewExtractionService(p provider.Client, cfg *config.ExtractConfig, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		provider:     p,
		cfg:          cfg,
		logger:       logger,
		SystemPrompt: documentSystemPrompt,
		newID:        uuid.NewString,
		now:          time.Now,
	}
}

// ExtractFile converts the document at path to markdown.
func (s *ExtractionService) ExtractFile(ctx context.Context, path string) (DocumentResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DocumentResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	res, err := s.ExtractBytes(ctx, filepath.Base(path), data)
	res.Source = path
	return res, err
}

// ExtractBytes converts an in-memory document to markdown. A model-side
// failure is reported through the metadata, not the error; the error is
// only set for unsupported input.
func (s *ExtractionService) ExtractBytes(ctx context.Context, filename string, data []byte) (DocumentResult, error) {
	if !Supported(filename) {
		return DocumentResult{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(filename))
	}

	start := s.now()
	defer metrics.ObserveSince("document", start)

	meta := models.DocumentMetadata{
		AnalysisID: s.newID(),
		Filename:   filename,
	}
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		if n, err := PageCountBytes(data); err != nil {
			s.logger.Warn("Page count unavailable", zap.String("file", filename), zap.Error(err))
		} else {
			meta.PageCount = n
		}
	}

	doc, err := s.askDocument(ctx, filename, data)
	meta.DurationSeconds = s.now().Sub(start).Seconds()
	if err != nil {
		s.logger.Error("Document extraction failed", zap.String("file", filename), zap.Error(err))
		meta.Error = true
		meta.ErrorReason = err.Error()
		return DocumentResult{Metadata: meta}, nil
	}

	meta.Description = doc.Description
	meta.Error = doc.Error
	meta.ErrorReason = doc.ErrorReason
	res := DocumentResult{Metadata: meta}
	if !doc.Error {
		res.Markdown = sanitizeUTF8(doc.Result)
	}

	s.logger.Info("Document extracted",
		zap.String("file", filename),
		zap.String("analysis_id", meta.AnalysisID),
		zap.Bool("error", meta.Error),
		zap.Int("markdown_length", len(res.Markdown)),
		zap.Float64("duration_seconds", meta.DurationSeconds),
	)
	return res, nil
}

func (s *ExtractionService) askDocument(ctx context.Context, filename string, data []byte) (models.DocumentExtraction, error) {
	var doc models.DocumentExtraction

	answer, err := completeWithFile(ctx, s.provider, s.logger, filename, data, provider.CompletionRequest{
		System:     s.SystemPrompt,
		Prompt:     documentUserPrompt,
		Schema:     DocumentSchema(),
		SchemaName: "document_extraction",
	})
	if err != nil {
		return doc, err
	}
	if err := DecodeAnswer(answer, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// completeWithFile uploads data, runs req with the file attached and deletes
// the remote copy whatever the outcome.
func completeWithFile(ctx context.Context, p provider.Client, logger *zap.Logger, filename string, data []byte, req provider.CompletionRequest) (string, error) {
	rf, err := p.Upload(ctx, filename, bytes.NewReader(data), extractPurpose)
	metrics.Uploads.WithLabelValues(p.Name(), metrics.Result(err)).Inc()
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer func() {
		// the request context may already be done
		derr := p.Delete(context.WithoutCancel(ctx), rf.ID)
		metrics.RemoteDeletes.WithLabelValues(p.Name(), metrics.Result(derr)).Inc()
		if derr != nil {
			logger.Warn("Failed to delete remote copy", zap.String("file_id", rf.ID), zap.Error(derr))
		}
	}()

	req.Files = []provider.FileRef{{ID: rf.ID, Filename: filename}}
	answer, err := p.Complete(ctx, req)
	metrics.Completions.WithLabelValues(p.Name(), metrics.Result(err)).Inc()
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return answer, nil
}

// ExtractDirectory runs the document stage over every supported file under
// src and writes <stem>.md plus <stem>-hmoney-metadata.json into outDir.
// Up to cfg.Concurrency documents run at once, each bounded by
// cfg.FileTimeout. One failing document does not stop the others.
func (s *ExtractionService) ExtractDirectory(ctx context.Context, src, outDir string) (ExtractionReport, error) {
	var report ExtractionReport

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return report, fmt.Errorf("failed to resolve source: %w", err)
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return report, fmt.Errorf("failed to resolve output: %w", err)
	}
	if info, err := os.Stat(absSrc); err != nil {
		return report, fmt.Errorf("source directory not found: %w", err)
	} else if !info.IsDir() {
		return report, fmt.Errorf("%s is not a directory", absSrc)
	}
	if err := os.MkdirAll(absOut, 0o755); err != nil {
		return report, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths, failures := collectFiles(absSrc, absOut)
	report.Failed = append(report.Failed, failures...)

	var docs []string
	for _, p := range paths {
		if Supported(p) {
			docs = append(docs, p)
		} else {
			report.Skipped = append(report.Skipped, p)
		}
	}
	stems := uniqueStems(docs)

	s.logger.Info("Extracting documents",
		zap.String("source", absSrc),
		zap.String("output", absOut),
		zap.Int("documents", len(docs)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("concurrency", s.cfg.Concurrency),
	)

	results := make([]DocumentResult, len(docs))
	errs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.Concurrency))
	for i, path := range docs {
		g.Go(func() error {
			fctx := gctx
			if s.cfg.FileTimeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(gctx, s.cfg.FileTimeout)
				defer cancel()
			}
			res, err := s.ExtractFile(fctx, path)
			if err == nil {
				err = writeDocumentResult(absOut, stems[i], res)
			}
			results[i], errs[i] = res, err
			return nil
		})
	}
	_ = g.Wait()

	for i := range docs {
		if errs[i] != nil {
			report.Failed = append(report.Failed, FileFailure{Path: docs[i], Err: errs[i]})
			continue
		}
		report.Documents = append(report.Documents, results[i])
	}
	return report, ctx.Err()
}

// uniqueStems maps every path to an output stem, adding "_N" when two
// documents share a base name.
func uniqueStems(paths []string) []string {
	used := make(map[string]bool, len(paths))
	stems := make([]string, len(paths))
	for i, p := range paths {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		stem := base
		for n := 1; used[stem]; n++ {
			stem = fmt.Sprintf("%s_%d", base, n)
		}
		used[stem] = true
		stems[i] = stem
	}
	return stems
}

func writeDocumentResult(dir, stem string, res DocumentResult) error {
	if !res.Metadata.Error {
		if err := writeFileAtomic(filepath.Join(dir, stem+".md"), []byte(res.Markdown)); err != nil {
			return fmt.Errorf("failed to write markdown: %w", err)
		}
	}
	if err := writeJSON(filepath.Join(dir, stem+MetadataSuffix), res.Metadata); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}
