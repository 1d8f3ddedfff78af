package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fin-extract/internal/models"
	"fin-extract/internal/provider"
	"fin-extract/pkg/config"
	"fin-extract/pkg/metrics"

	"go.uber.org/zap"
)

var ErrNoDocuments = errors.New("no extracted documents found")

// FactFindService runs the category stage: one model call per category over
// either the combined document-stage output or a single document.
type FactFindService struct {
	provider provider.Client
	cfg      *config.ExtractConfig
	logger   *zap.Logger
	// prompts overrides the built-in system prompt per category.
	prompts map[models.Category]string
}

func NewFactFindService(p provider.Client, cfg *config.ExtractConfig, logger *zap.Logger) *FactFindService {
	return &FactFindService{
		provider: p,
		cfg:      cfg,
		logger:   logger,
		prompts:  map[models.Category]string{},
	}
}

// SetSystemPrompt replaces the built-in prompt for c.
func (s *FactFindService) SetSystemPrompt(c models.Category, prompt string) {
	s.prompts[c] = prompt
}

func (s *FactFindService) systemPrompt(c models.Category) (string, error) {
	if p, ok := s.prompts[c]; ok && p != "" {
		return p, nil
	}
	return CategorySystemPrompt(c)
}

// Aggregate combines every <stem>.md in dir with its metadata file into
// <file> blocks separated by a blank line. A missing or unreadable metadata
// file is replaced by an error entry so the document is still included.
func Aggregate(dir string, logger *zap.Logger) (string, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read extraction directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".md") && !isHidden(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "", 0, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}

	blocks := make([]string, 0, len(names))
	for _, name := range names {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		meta := loadMetadata(filepath.Join(dir, stem+MetadataSuffix), stem)
		if meta.Error {
			logger.Warn("Document has an extraction error", zap.String("file", name), zap.String("reason", meta.ErrorReason))
		}

		body, err := os.ReadFile(filepath.Join(dir, name))
		content := string(body)
		if err != nil {
			logger.Error("Failed to read markdown", zap.String("file", name), zap.Error(err))
			content = fmt.Sprintf("Error loading file content: %v", err)
		}

		metaJSON, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return "", 0, fmt.Errorf("failed to marshal metadata of %s: %w", name, err)
		}
		blocks = append(blocks, fileBlock(name, string(metaJSON), content))
	}

	logger.Info("Documents combined", zap.Int("documents", len(names)))
	return strings.Join(blocks, "\n\n"), len(names), nil
}

func fileBlock(name, meta, body string) string {
	return "<file>\n<meta>\n" + meta + "\n</meta>\n<body>\n" + body + "\n</body>\nend of " + name + "\n</file>"
}

func loadMetadata(path, stem string) models.DocumentMetadata {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.DocumentMetadata{
			Filename:    stem,
			Description: "Metadata file not found",
			Error:       true,
			ErrorReason: fmt.Sprintf("Metadata file not found: %s", filepath.Base(path)),
		}
	}
	var meta models.DocumentMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return models.DocumentMetadata{
			Filename:    stem,
			Description: "Error loading metadata",
			Error:       true,
			ErrorReason: err.Error(),
		}
	}
	return meta
}

// ExtractCategory asks the model once for category c over content and
// decodes the answer into the typed result of c.
func (s *FactFindService) ExtractCategory(ctx context.Context, c models.Category, content string) (any, error) {
	req, err := s.request(c)
	if err != nil {
		return nil, err
	}
	req.Prompt = categoryUserPrefix + content

	start := time.Now()
	defer metrics.ObserveSince(string(c), start)

	answer, err := s.provider.Complete(ctx, req)
	metrics.Completions.WithLabelValues(s.provider.Name(), metrics.Result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("%s extraction failed: %w", c, err)
	}
	return s.decode(c, answer)
}

// ExtractCategoryFromFile runs category c directly on one document, which
// is uploaded for the call and deleted afterwards.
func (s *FactFindService) ExtractCategoryFromFile(ctx context.Context, c models.Category, path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.ExtractCategoryFromBytes(ctx, c, filepath.Base(path), data)
}

func (s *FactFindService) ExtractCategoryFromBytes(ctx context.Context, c models.Category, filename string, data []byte) (any, error) {
	req, err := s.request(c)
	if err != nil {
		return nil, err
	}
	req.Prompt = categoryUserPrefix + "the attached document " + filename

	start := time.Now()
	defer metrics.ObserveSince(string(c), start)

	answer, err := completeWithFile(ctx, s.provider, s.logger, filename, data, req)
	if err != nil {
		return nil, fmt.Errorf("%s extraction failed: %w", c, err)
	}
	return s.decode(c, answer)
}

func (s *FactFindService) request(c models.Category) (provider.CompletionRequest, error) {
	system, err := s.systemPrompt(c)
	if err != nil {
		return provider.CompletionRequest{}, err
	}
	schema, err := CategorySchema(c)
	if err != nil {
		return provider.CompletionRequest{}, err
	}
	return provider.CompletionRequest{
		System:     system,
		Schema:     schema,
		SchemaName: string(c) + "_extraction",
	}, nil
}

func (s *FactFindService) decode(c models.Category, answer string) (any, error) {
	result, err := models.NewCategoryResult(c)
	if err != nil {
		return nil, err
	}
	if err := DecodeAnswer(answer, result); err != nil {
		s.logger.Error("Category answer could not be decoded",
			zap.String("category", string(c)),
			zap.Int("answer_length", len(answer)),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

// RunCategory combines the documents in extractionDir, extracts c and
// writes <ResultDir>/<c>.json. It returns the result and the file written.
func (s *FactFindService) RunCategory(ctx context.Context, c models.Category, extractionDir string) (any, string, error) {
	content, n, err := Aggregate(extractionDir, s.logger)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("Running category extraction",
		zap.String("category", string(c)),
		zap.Int("documents", n),
		zap.Int("content_length", len(content)),
	)
	result, err := s.ExtractCategory(ctx, c, content)
	if err != nil {
		return nil, "", err
	}
	path, err := s.SaveResult(c, result)
	return result, path, err
}

// SaveResult writes result as <ResultDir>/<c>.json.
func (s *FactFindService) SaveResult(c models.Category, result any) (string, error) {
	path := filepath.Join(s.cfg.ResultDir, string(c)+".json")
	if err := writeJSON(path, result); err != nil {
		return "", err
	}
	s.logger.Info("Category result saved", zap.String("path", path))
	return path, nil
}
