// Package config centralizes environment-driven configuration for the
// docintel server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration.
type Config struct {
	// HTTP server
	Host string
	Port int

	// Qdrant
	QdrantHost string
	QdrantPort int

	// OpenAI
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	LLMTimeout     time.Duration

	// SQLite database path
	DatabasePath string

	// Upload storage directory
	UploadDir string

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	TopK          int
	FetchPoolSize int
	MMRLambda     float64

	// Conversation history window per chat session
	MaxTurns int
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Host:           getEnv("DOCINTEL_HOST", "0.0.0.0"),
		Port:           getEnvInt("DOCINTEL_PORT", 8080),
		QdrantHost:     getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:     getEnvInt("QDRANT_PORT", 6334),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		ChatModel:      getEnv("DOCINTEL_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel: getEnv("DOCINTEL_EMBEDDING_MODEL", "text-embedding-3-small"),
		LLMTimeout:     getEnvDuration("DOCINTEL_LLM_TIMEOUT", 60*time.Second),
		DatabasePath:   getEnv("DOCINTEL_DB_PATH", "docintel.db"),
		UploadDir:      getEnv("DOCINTEL_UPLOAD_DIR", "uploads"),
		ChunkSize:      getEnvInt("CHUNK_SIZE", 400),
		ChunkOverlap:   getEnvInt("CHUNK_OVERLAP", 100),
		TopK:           getEnvInt("RETRIEVAL_TOP_K", 5),
		FetchPoolSize:  getEnvInt("RETRIEVAL_FETCH_POOL", 20),
		MMRLambda:      getEnvFloat("RETRIEVAL_MMR_LAMBDA", 0.5),
		MaxTurns:       getEnvInt("DOCINTEL_MAX_TURNS", 10),
	}

	return cfg, cfg.Validate()
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("DOCINTEL_PORT must be 1-65535, got %d", c.Port)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.TopK)
	}
	if c.FetchPoolSize < c.TopK {
		return fmt.Errorf("RETRIEVAL_FETCH_POOL must be >= RETRIEVAL_TOP_K, got %d < %d", c.FetchPoolSize, c.TopK)
	}
	if c.MMRLambda < 0 || c.MMRLambda > 1 {
		return fmt.Errorf("RETRIEVAL_MMR_LAMBDA must be 0-1, got %f", c.MMRLambda)
	}
	if c.MaxTurns < 0 {
		return fmt.Errorf("DOCINTEL_MAX_TURNS must be non-negative, got %d", c.MaxTurns)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
