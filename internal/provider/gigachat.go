package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"fin-extract/internal/models"
	"fin-extract/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GigaChat uses the gigago SDK for plain chat and the REST API for files
// and for completions that carry attachments.
type GigaChat struct {
	client     *gigago.Client
	config     *config.GigaChatConfig
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string

	mu          sync.Mutex
	accessToken string
}

func NewGigaChat(ctx context.Context, cfg *config.GigaChatConfig, timeout time.Duration, logger *zap.Logger) (*GigaChat, error) {
	logger = logger.With(zap.String("provider", config.ProviderGigaChat))

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	g := &GigaChat{
		client:     client,
		config:     cfg,
		logger:     logger,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
	if _, err := g.refreshToken(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return g, nil
}

func (g *GigaChat) Name() string { return config.ProviderGigaChat }

// refreshToken fetches a fresh OAuth token. The API key is expected to be
// the Base64 "client_id:secret" authorization key.
func (g *GigaChat) refreshToken(ctx context.Context) (string, error) {
	rqUID := uuid.New().String()

	formData := url.Values{}
	formData.Set("scope", g.config.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.OAuthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", rqUID)
	req.Header.Set("Authorization", "Basic "+g.config.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		g.logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
			zap.String("rq_uid", rqUID),
		)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", errors.New("empty access token in OAuth response")
	}

	g.mu.Lock()
	g.accessToken = oauthResp.AccessToken
	g.mu.Unlock()

	g.logger.Debug("Access token obtained", zap.Int64("expires_at", oauthResp.ExpiresAt))
	return oauthResp.AccessToken, nil
}

func (g *GigaChat) token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accessToken
}

// do sends the request built by build and, on 401, refreshes the token and
// sends a freshly built request once more.
func (g *GigaChat) do(ctx context.Context, build func(token string) (*http.Request, error)) (*http.Response, error) {
	req, err := build(g.token())
	if err != nil {
		return nil, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	g.logger.Info("Access token rejected, refreshing")
	token, err := g.refreshToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	req, err = build(token)
	if err != nil {
		return nil, err
	}
	return g.httpClient.Do(req)
}

func (g *GigaChat) request(ctx context.Context, method, path string, body []byte, contentType string) func(string) (*http.Request, error) {
	return func(token string) (*http.Request, error) {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, r)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}
}

type gigaChatFile struct {
	ID        string `json:"id"`
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
	Object    string `json:"object"`
}

func (f gigaChatFile) remote() models.RemoteFile {
	return models.RemoteFile{
		ID:        f.ID,
		Filename:  f.Filename,
		Purpose:   f.Purpose,
		Bytes:     f.Bytes,
		CreatedAt: time.Unix(f.CreatedAt, 0).UTC(),
		Status:    "uploaded",
	}
}

// Upload posts the file to /files. GigaChat only accepts the "general"
// purpose for files used in generation, so other values are replaced.
func (g *GigaChat) Upload(ctx context.Context, filename string, r io.Reader, purpose string) (models.RemoteFile, error) {
	if purpose != "general" {
		g.logger.Debug("Overriding upload purpose", zap.String("requested", purpose))
		purpose = "general"
	}
	body, contentType, err := multipartFile(filename, r, purpose)
	if err != nil {
		return models.RemoteFile{}, err
	}

	resp, err := g.do(ctx, g.request(ctx, http.MethodPost, "/files", body.Bytes(), contentType))
	if err != nil {
		return models.RemoteFile{}, fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "upload"); err != nil {
		return models.RemoteFile{}, err
	}

	var f gigaChatFile
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return models.RemoteFile{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if f.ID == "" {
		return models.RemoteFile{}, errors.New("upload response has no file id")
	}
	if f.Filename == "" {
		f.Filename = filename
	}

	g.logger.Info("File uploaded to GigaChat", zap.String("file_id", f.ID))
	return f.remote(), nil
}

// Delete calls POST /files/{id}/delete.
func (g *GigaChat) Delete(ctx context.Context, id string) error {
	resp, err := g.do(ctx, g.request(ctx, http.MethodPost, "/files/"+url.PathEscape(id)+"/delete", nil, ""))
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "delete "+id); err != nil {
		return err
	}

	var delResp struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&delResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !delResp.Deleted {
		return fmt.Errorf("provider did not confirm deletion of %s", id)
	}
	return nil
}

func (g *GigaChat) List(ctx context.Context) ([]models.RemoteFile, error) {
	resp, err := g.do(ctx, g.request(ctx, http.MethodGet, "/files", nil, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "list files"); err != nil {
		return nil, err
	}

	var listResp struct {
		Data []gigaChatFile `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make([]models.RemoteFile, 0, len(listResp.Data))
	for _, f := range listResp.Data {
		out = append(out, f.remote())
	}
	return out, nil
}

// Complete answers through the SDK when nothing is attached, otherwise
// through /chat/completions with the file ids as attachments.
func (g *GigaChat) Complete(ctx context.Context, creq CompletionRequest) (string, error) {
	prompt := creq.Prompt
	if creq.Schema != nil {
		prompt += schemaInstruction(creq.Schema)
	}

	if len(creq.Files) == 0 && g.client != nil {
		model := g.client.GenerativeModel(g.config.Model)
		model.SystemInstruction = creq.System
		model.Temperature = 0.1

		resp, err := model.Generate(ctx, []gigago.Message{
			{Role: gigago.RoleUser, Content: prompt},
		})
		if err != nil {
			return "", fmt.Errorf("failed to generate response: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyAnswer
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}

	attachments := make([]string, 0, len(creq.Files))
	for _, f := range creq.Files {
		attachments = append(attachments, f.ID)
	}

	messages := make([]map[string]any, 0, 2)
	if creq.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": creq.System})
	}
	user := map[string]any{"role": "user", "content": prompt}
	if len(attachments) > 0 {
		user["attachments"] = attachments
	}
	messages = append(messages, user)

	jsonData, err := json.Marshal(map[string]any{
		"model":       g.config.Model,
		"messages":    messages,
		"temperature": 0.1,
		"stream":      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := g.do(ctx, g.request(ctx, http.MethodPost, "/chat/completions", jsonData, "application/json"))
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "chat completions"); err != nil {
		return "", err
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrEmptyAnswer
	}

	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	g.logger.Info("Completion received",
		zap.String("model", g.config.Model),
		zap.Int("attachments", len(attachments)),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

func (g *GigaChat) Close() error {
	if g.client != nil {
		g.client.Close()
	}
	return nil
}

// schemaInstruction spells the schema out in the prompt for providers
// without a structured-output parameter.
func schemaInstruction(schema map[string]any) string {
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return ""
	}
	return "\n\nReturn ONLY a JSON object matching this JSON schema, without markdown or comments:\n" + string(b)
}
