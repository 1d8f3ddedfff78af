package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fin-extract/internal/models"
	"fin-extract/pkg/config"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"go.uber.org/zap"
)

// OpenAI talks to the OpenAI Files and Responses APIs through the official SDK.
type OpenAI struct {
	config *config.OpenAIConfig
	client openai.Client
	logger *zap.Logger
}

func NewOpenAI(cfg *config.OpenAIConfig, timeout time.Duration, logger *zap.Logger) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{
		config: cfg,
		client: openai.NewClient(opts...),
		logger: logger.With(zap.String("provider", config.ProviderOpenAI)),
	}
}

func (c *OpenAI) Name() string { return config.ProviderOpenAI }

func openAIRemote(f openai.FileObject) models.RemoteFile {
	return models.RemoteFile{
		ID:        f.ID,
		Filename:  f.Filename,
		Purpose:   string(f.Purpose),
		Bytes:     f.Bytes,
		CreatedAt: time.Unix(f.CreatedAt, 0).UTC(),
		Status:    string(f.Status),
	}
}

// apiError maps SDK status errors onto the package sentinels.
func apiError(op string, err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch apiErr.StatusCode {
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%s: %w (413): file exceeds maximum size limit: %s", op, ErrFileTooLarge, apiErr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w (404): %s", op, ErrNotFound, apiErr.Message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w (401): %s", op, ErrUnauthorized, apiErr.Message)
	}
	return fmt.Errorf("%s failed with status %d: %w", op, apiErr.StatusCode, err)
}

// Upload sends the file to the Files API with the given purpose.
func (c *OpenAI) Upload(ctx context.Context, filename string, r io.Reader, purpose string) (models.RemoteFile, error) {
	f, err := c.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(r, filename, MIMEType(filename)),
		Purpose: openai.FilePurpose(purpose),
	})
	if err != nil {
		return models.RemoteFile{}, apiError("upload", err)
	}
	if f.ID == "" {
		return models.RemoteFile{}, fmt.Errorf("upload response has no file id")
	}

	c.logger.Info("File uploaded", zap.String("file_id", f.ID), zap.String("filename", filename))
	return openAIRemote(*f), nil
}

func (c *OpenAI) Delete(ctx context.Context, id string) error {
	res, err := c.client.Files.Delete(ctx, id)
	if err != nil {
		return apiError("delete "+id, err)
	}
	if !res.Deleted {
		return fmt.Errorf("provider did not confirm deletion of %s", id)
	}
	return nil
}

// List walks every page of the account's files.
func (c *OpenAI) List(ctx context.Context) ([]models.RemoteFile, error) {
	var out []models.RemoteFile
	iter := c.client.Files.ListAutoPaging(ctx, openai.FileListParams{})
	for iter.Next() {
		out = append(out, openAIRemote(iter.Current()))
	}
	if err := iter.Err(); err != nil {
		return nil, apiError("list files", err)
	}
	return out, nil
}

// Complete issues one Responses call. Images are attached as input_image,
// everything else as input_file.
func (c *OpenAI) Complete(ctx context.Context, creq CompletionRequest) (string, error) {
	content := make(responses.ResponseInputMessageContentListParam, 0, len(creq.Files)+1)
	for _, f := range creq.Files {
		if IsImage(f.Filename) {
			content = append(content, responses.ResponseInputContentUnionParam{
				OfInputImage: &responses.ResponseInputImageParam{
					Detail: responses.ResponseInputImageDetailAuto,
					FileID: openai.String(f.ID),
				},
			})
			continue
		}
		content = append(content, responses.ResponseInputContentUnionParam{
			OfInputFile: &responses.ResponseInputFileParam{FileID: openai.String(f.ID)},
		})
	}
	content = append(content, responses.ResponseInputContentParamOfInputText(creq.Prompt))

	params := responses.ResponseNewParams{
		Model: c.config.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRoleUser),
			},
		},
	}
	if creq.System != "" {
		params.Instructions = openai.String(creq.System)
	}
	if creq.Schema != nil {
		name := creq.SchemaName
		if name == "" {
			name = "result"
		}
		format := responses.ResponseFormatTextConfigParamOfJSONSchema(name, creq.Schema)
		format.OfJSONSchema.Strict = openai.Bool(false)
		params.Text = responses.ResponseTextConfigParam{Format: format}
	}

	c.logger.Debug("Responses request",
		zap.String("model", c.config.Model),
		zap.Int("files", len(creq.Files)),
		zap.Bool("schema", creq.Schema != nil),
	)

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", apiError("responses", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("model returned error: %s", resp.Error.Message)
	}

	answer := strings.TrimSpace(resp.OutputText())
	if answer == "" {
		return "", fmt.Errorf("%w (status %q)", ErrEmptyAnswer, resp.Status)
	}

	c.logger.Info("Completion received", zap.String("model", c.config.Model), zap.Int("text_length", len(answer)))
	return answer, nil
}

func (c *OpenAI) Close() error { return nil }
