// Package provider wraps the hosted model APIs behind one small interface:
// file upload, file delete, file listing and a single completion call.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"fin-extract/internal/models"
	"fin-extract/pkg/config"

	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("file not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrFileTooLarge = errors.New("file too large")
	ErrEmptyAnswer  = errors.New("empty model answer")
)

// FileRef points at a file already uploaded to the provider.
type FileRef struct {
	ID       string
	Filename string
}

type CompletionRequest struct {
	// System is an optional system instruction.
	System string
	Prompt string
	Files  []FileRef
	// Schema is an optional JSON schema the answer must follow.
	Schema     map[string]any
	SchemaName string
}

// Client is the capability set every provider implements.
type Client interface {
	Name() string
	Upload(ctx context.Context, filename string, r io.Reader, purpose string) (models.RemoteFile, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.RemoteFile, error)
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Close() error
}

// New builds the client selected by cfg.Provider.Name.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Client, error) {
	switch cfg.Provider.Name {
	case config.ProviderOpenAI:
		return NewOpenAI(&cfg.OpenAI, cfg.Provider.Timeout, logger), nil
	case config.ProviderGemini:
		return NewGemini(ctx, &cfg.Gemini, logger)
	case config.ProviderGigaChat:
		return NewGigaChat(ctx, &cfg.GigaChat, cfg.Provider.Timeout, logger)
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
}

// MIMEType guesses the content type from the file extension.
func MIMEType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	case ".md":
		return "text/markdown"
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i > 0 {
			t = t[:i]
		}
		return t
	}
	return "application/octet-stream"
}

// IsImage reports whether the file is an image by extension.
func IsImage(filename string) bool {
	return strings.HasPrefix(MIMEType(filename), "image/")
}
