package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	LLM       LLMConfig
	PDF       PDFConfig
	Documents DocumentsConfig
	Log       LogConfig
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider    string // "gemini" | "openai"
	Model       string
	APIKey      string
	BaseURL     string // openai-compatible endpoints only
	Temperature float32
	Timeout     time.Duration
	SecretsFile string
}

// PDFConfig holds text-extraction configuration
type PDFConfig struct {
	Backend   string // "native" | "pdftotext"
	Pdftotext string
}

// DocumentsConfig holds document-generation configuration
type DocumentsConfig struct {
	DefaultTemplatePath string
	OutputDir           string
	ExpertName          string
	SignatureCity       string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is honored when present; variables already set in the
// environment win. The API key falls back to the secrets file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, NewAppError(CodeConfig, "load .env", err)
	}

	cfg := &Config{
		LLM: LLMConfig{
			Provider:    strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			SecretsFile: getEnv("SECRETS_FILE", ".perito/secrets.toml"),
		},
		PDF: PDFConfig{
			Backend:   strings.ToLower(getEnv("PDF_BACKEND", "native")),
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
		},
		Documents: DocumentsConfig{
			DefaultTemplatePath: getEnv("DEFAULT_TEMPLATE_PATH", "template_padrao.docx"),
			OutputDir:           getEnv("OUTPUT_DIR", "."),
			ExpertName:          getEnv("EXPERT_NAME", "Dr. Perito"),
			SignatureCity:       getEnv("SIGNATURE_CITY", "Belém"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	var keyVar string
	switch cfg.LLM.Provider {
	case ProviderOpenAI:
		keyVar = "OPENAI_API_KEY"
		cfg.LLM.Model = getEnv("OPENAI_MODEL", "gpt-4o-mini")
		cfg.LLM.BaseURL = getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")
	default:
		keyVar = "GEMINI_API_KEY"
		cfg.LLM.Model = getEnv("GEMINI_MODEL", "gemini-flash-latest")
	}
	cfg.LLM.APIKey = os.Getenv(keyVar)
	if cfg.LLM.APIKey == "" {
		secret, err := readSecret(cfg.LLM.SecretsFile, keyVar)
		if err != nil {
			return nil, err
		}
		cfg.LLM.APIKey = secret
	}
	return cfg, nil
}

// readSecret looks key up in a flat TOML secrets file. A missing file is not
// an error; Validate reports the missing key instead.
func readSecret(path, key string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", NewAppError(CodeConfig, "read secrets file", err)
	}
	var secrets map[string]any
	if err := toml.Unmarshal(b, &secrets); err != nil {
		return "", NewAppError(CodeConfig, "parse secrets file "+path, err)
	}
	if v, ok := secrets[key].(string); ok {
		return strings.TrimSpace(v), nil
	}
	return "", nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration. A missing credential is fatal
// at startup.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unsupported LLM_PROVIDER %q", c.LLM.Provider), ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError(CodeConfig, "API key is required (set GEMINI_API_KEY / OPENAI_API_KEY or add it to "+c.LLM.SecretsFile+")", ErrInvalidInput)
	}
	switch c.PDF.Backend {
	case "native", "pdftotext":
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unsupported PDF_BACKEND %q", c.PDF.Backend), ErrInvalidInput)
	}
	if c.Documents.DefaultTemplatePath == "" {
		return NewAppError(CodeConfig, "DEFAULT_TEMPLATE_PATH is required", ErrInvalidInput)
	}
	return nil
}
