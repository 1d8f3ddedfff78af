package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderGigaChat = "gigachat"
)

type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	GigaChat GigaChatConfig
	Ledger   LedgerConfig
	Upload   UploadConfig
	Extract  ExtractConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	APIToken     string
}

type ProviderConfig struct {
	Name    string
	Timeout time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
	Model              string
	BaseURL            string
	OAuthURL           string
}

type LedgerConfig struct {
	Path string
}

type UploadConfig struct {
	Purpose              string
	AttachmentExtensions []string
	MaxAttachments       int
}

type ExtractConfig struct {
	OutputDir   string
	ResultDir   string
	Concurrency int
	FileTimeout time.Duration
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same way.
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, err := getInt("SERVER_READ_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := getInt("SERVER_WRITE_TIMEOUT", 300)
	if err != nil {
		return nil, err
	}
	providerTimeout, err := getInt("PROVIDER_TIMEOUT", 300)
	if err != nil {
		return nil, err
	}
	maxAttachments, err := getInt("UPLOAD_MAX_ATTACHMENTS", 10)
	if err != nil {
		return nil, err
	}
	concurrency, err := getInt("EXTRACT_CONCURRENCY", 1)
	if err != nil {
		return nil, err
	}
	fileTimeout, err := getInt("EXTRACT_FILE_TIMEOUT", 240)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			APIToken:     getEnv("SERVER_API_TOKEN", ""),
		},
		Provider: ProviderConfig{
			Name:    strings.ToLower(getEnv("PROVIDER", ProviderOpenAI)),
			Timeout: time.Duration(providerTimeout) * time.Second,
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", getEnv("apikey", "")),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", getEnv("GOOGLE_AI_API_KEY", "")),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true",
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			BaseURL:            getEnv("GIGACHAT_BASE_URL", "https://gigachat.devices.sberbank.ru/api/v1"),
			OAuthURL:           getEnv("GIGACHAT_OAUTH_URL", "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"),
		},
		Ledger: LedgerConfig{
			Path: getEnv("LEDGER_PATH", "openai_uploaded_files.json"),
		},
		Upload: UploadConfig{
			Purpose:              getEnv("UPLOAD_PURPOSE", "assistants"),
			AttachmentExtensions: splitList(getEnv("UPLOAD_ATTACHMENT_EXTENSIONS", ".pdf,.docx,.txt,.md,.csv,.xlsx")),
			MaxAttachments:       maxAttachments,
		},
		Extract: ExtractConfig{
			OutputDir:   getEnv("EXTRACT_OUTPUT_DIR", "output/extraction"),
			ResultDir:   getEnv("EXTRACT_RESULT_DIR", "output/result"),
			Concurrency: concurrency,
			FileTimeout: time.Duration(fileTimeout) * time.Second,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

// Validate checks that the selected provider is known and has an API key.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return errors.New("OPENAI_API_KEY is not set (add it to the environment or .env)")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return errors.New("GEMINI_API_KEY is not set (add it to the environment or .env)")
		}
	case ProviderGigaChat:
		if c.GigaChat.APIKey == "" {
			return errors.New("GIGACHAT_API_KEY is not set (add it to the environment or .env)")
		}
	default:
		return fmt.Errorf("unknown PROVIDER %q (expected openai, gemini or gigachat)", c.Provider.Name)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, part)
	}
	return out
}
