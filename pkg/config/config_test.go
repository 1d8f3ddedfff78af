package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PROVIDER", "OPENAI_API_KEY", "apikey", "GEMINI_API_KEY", "GOOGLE_AI_API_KEY",
		"GIGACHAT_API_KEY", "LEDGER_PATH", "UPLOAD_ATTACHMENT_EXTENSIONS",
		"UPLOAD_MAX_ATTACHMENTS", "EXTRACT_CONCURRENCY", "EXTRACT_FILE_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider.Name)
	assert.Equal(t, "openai_uploaded_files.json", cfg.Ledger.Path)
	assert.Equal(t, "assistants", cfg.Upload.Purpose)
	assert.Equal(t, []string{".pdf", ".docx", ".txt", ".md", ".csv", ".xlsx"}, cfg.Upload.AttachmentExtensions)
	assert.Equal(t, 10, cfg.Upload.MaxAttachments)
	assert.Equal(t, 1, cfg.Extract.Concurrency)
	assert.Equal(t, 240*time.Second, cfg.Extract.FileTimeout)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
}

func TestLoad_LegacyKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("apikey", "sk-legacy")
	t.Setenv("GOOGLE_AI_API_KEY", "g-legacy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-legacy", cfg.OpenAI.APIKey)
	assert.Equal(t, "g-legacy", cfg.Gemini.APIKey)
}

func TestLoad_InvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPLOAD_MAX_ATTACHMENTS", "ten")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPLOAD_MAX_ATTACHMENTS")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	require.ErrorContains(t, cfg.Validate(), "OPENAI_API_KEY")

	cfg.OpenAI.APIKey = "sk-test"
	require.NoError(t, cfg.Validate())

	cfg.Provider.Name = ProviderGemini
	require.ErrorContains(t, cfg.Validate(), "GEMINI_API_KEY")

	cfg.Provider.Name = "anthropic"
	require.ErrorContains(t, cfg.Validate(), "unknown PROVIDER")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{".pdf", ".csv"}, splitList(" PDF, .csv ,,"))
	assert.Nil(t, splitList(""))
}
