package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	BackendHost string
	BackendPort string
	DBPath      string

	// One credential per supported LLM provider. A missing credential only
	// fails requests that select that provider.
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string

	// Base URL overrides, mostly for tests and proxies.
	AnthropicBaseURL string
	OpenAIBaseURL    string
	GeminiBaseURL    string

	// Optional retrieval stack. Retrieval is disabled when QdrantURL or
	// EmbeddingBaseURL is empty.
	EmbeddingBaseURL   string
	EmbeddingModelName string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int

	// GenerationTimeout is the per-request provider timeout in seconds.
	// Zero means no timeout.
	GenerationTimeout int

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		BackendHost: getEnv("BACKEND_HOST", "127.0.0.1"),
		BackendPort: getEnv("BACKEND_PORT", "8000"),
		DBPath:      getEnv("DATABASE_PATH", "./data/fastrag.sqlite3"),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		GoogleAPIKey:    getEnv("GOOGLE_API_KEY", ""),

		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		QdrantURL:          getEnv("QDRANT_URL", ""),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "notes"),

		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	// Parse QDRANT_VECTOR_SIZE. Only meaningful when retrieval is configured;
	// it must match the output vector size of the embeddings model.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "1536")
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	timeoutStr := getEnv("GENERATION_TIMEOUT_SECONDS", "0")
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("GENERATION_TIMEOUT_SECONDS must be a valid integer: %w", err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("GENERATION_TIMEOUT_SECONDS must not be negative")
	}
	cfg.GenerationTimeout = timeout

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got %q", cfg.LogFormat)
	}

	// Create the data directory if it doesn't exist (for the SQLite file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// RetrievalEnabled reports whether the optional note-retrieval stack is configured.
func (c *Config) RetrievalEnabled() bool {
	return c.QdrantURL != "" && c.EmbeddingBaseURL != ""
}

// ListenAddr returns the host:port the API server binds to.
func (c *Config) ListenAddr() string {
	return c.BackendHost + ":" + c.BackendPort
}

// parseLogLevel converts a level string into a slog.Level.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", s)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
