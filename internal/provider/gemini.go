package provider

import (
	"context"
	"fmt"
	"io"
	"time"

	"fin-extract/internal/models"
	"fin-extract/pkg/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Gemini uses the Gemini Developer API through the genai SDK.
type Gemini struct {
	client *genai.Client
	config *config.GeminiConfig
	logger *zap.Logger

	pollInterval time.Duration
}

func NewGemini(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{
		client:       client,
		config:       cfg,
		logger:       logger.With(zap.String("provider", config.ProviderGemini)),
		pollInterval: 2 * time.Second,
	}, nil
}

func (g *Gemini) Name() string { return config.ProviderGemini }

func geminiRemote(f *genai.File) models.RemoteFile {
	rf := models.RemoteFile{
		ID:        f.Name,
		Filename:  f.DisplayName,
		CreatedAt: f.CreateTime,
		Status:    string(f.State),
		URI:       f.URI,
		MIMEType:  f.MIMEType,
	}
	if f.SizeBytes != nil {
		rf.Bytes = *f.SizeBytes
	}
	return rf
}

// Upload stores the file with the Files API and waits until it leaves the
// PROCESSING state. Gemini has no notion of purpose; it is only logged.
func (g *Gemini) Upload(ctx context.Context, filename string, r io.Reader, purpose string) (models.RemoteFile, error) {
	file, err := g.client.Files.Upload(ctx, r, &genai.UploadFileConfig{
		MIMEType:    MIMEType(filename),
		DisplayName: filename,
	})
	if err != nil {
		return models.RemoteFile{}, fmt.Errorf("failed to upload file: %w", err)
	}

	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			return geminiRemote(file), ctx.Err()
		case <-time.After(g.pollInterval):
		}
		file, err = g.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return models.RemoteFile{}, fmt.Errorf("failed to poll file state: %w", err)
		}
	}
	if file.State == genai.FileStateFailed {
		return geminiRemote(file), fmt.Errorf("provider failed to process %s", filename)
	}

	g.logger.Info("File uploaded",
		zap.String("file_id", file.Name),
		zap.String("filename", filename),
		zap.String("purpose", purpose),
	)
	return geminiRemote(file), nil
}

func (g *Gemini) Delete(ctx context.Context, id string) error {
	if _, err := g.client.Files.Delete(ctx, id, nil); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", id, err)
	}
	return nil
}

func (g *Gemini) List(ctx context.Context) ([]models.RemoteFile, error) {
	var out []models.RemoteFile
	for f, err := range g.client.Files.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
		out = append(out, geminiRemote(f))
	}
	return out, nil
}

func (g *Gemini) Complete(ctx context.Context, creq CompletionRequest) (string, error) {
	parts := make([]*genai.Part, 0, len(creq.Files)+1)
	for _, ref := range creq.Files {
		f, err := g.client.Files.Get(ctx, ref.ID, nil)
		if err != nil {
			return "", fmt.Errorf("failed to resolve file %s: %w", ref.ID, err)
		}
		parts = append(parts, genai.NewPartFromURI(f.URI, f.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(creq.Prompt))

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.1),
	}
	if creq.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(creq.System, genai.RoleUser)
	}
	if creq.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = GeminiSchema(creq.Schema)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyAnswer
	}
	g.logger.Info("Completion received", zap.String("model", g.config.Model), zap.Int("text_length", len(text)))
	return text, nil
}

func (g *Gemini) Close() error { return nil }
