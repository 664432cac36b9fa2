// Package config provides configuration management for piisweep.
// It loads settings from environment variables with the PIISWEEP_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration settings for the piisweep application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	LLM      LLMConfig
	Scan     ScanConfig
	Security SecurityConfig
}

// ServerConfig contains review server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 6380)
	Host string // Server host (default: 127.0.0.1)

	// RateLimitPerSecond is the sustained request rate allowed per server.
	RateLimitPerSecond float64 // default: 20

	// RateLimitBurst is the maximum burst size for the rate limiter.
	RateLimitBurst int // default: 40
}

// StorageConfig contains scan-result store configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory for sqlite (default: ./data)
	PostgresDSN   string // Postgres connection string (postgres engine only)
}

// LLMConfig contains extraction oracle provider configuration.
type LLMConfig struct {
	Provider        string // LLM provider: ollama, openai, anthropic (default: ollama)
	OllamaURL       string // Ollama API URL (default: http://localhost:11434)
	OllamaModel     string // Ollama model name (default: qwen2.5:7b)
	OpenAIAPIKey    string // OpenAI API key
	OpenAIModel     string // OpenAI model name (default: gpt-4o-mini)
	AnthropicAPIKey string // Anthropic API key
	AnthropicModel  string // Anthropic model name (default: claude-3-5-sonnet-20241022)
}

// ScanConfig contains document scanning configuration.
type ScanConfig struct {
	// ChunkSize is the window size in characters (default: 4000).
	ChunkSize int

	// OverlapPercentage is the window overlap in percent, 0-99 (default: 10).
	OverlapPercentage int

	// RequestsPerSecond throttles oracle calls (default: 2).
	RequestsPerSecond float64

	// Workers is the number of documents scanned concurrently (default: 2).
	Workers int
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token for the review server
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the PIISWEEP_ prefix.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnvInt("PIISWEEP_PORT", 6380),
			Host:               getEnv("PIISWEEP_HOST", "127.0.0.1"),
			RateLimitPerSecond: getEnvFloat("PIISWEEP_RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvInt("PIISWEEP_RATE_LIMIT_BURST", 40),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("PIISWEEP_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("PIISWEEP_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("PIISWEEP_POSTGRES_DSN", ""),
		},
		LLM: LLMConfig{
			Provider:        getEnv("PIISWEEP_LLM_PROVIDER", "ollama"),
			OllamaURL:       getEnv("PIISWEEP_OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:     getEnv("PIISWEEP_OLLAMA_MODEL", "qwen2.5:7b"),
			OpenAIAPIKey:    getEnv("PIISWEEP_OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("PIISWEEP_OPENAI_MODEL", "gpt-4o-mini"),
			AnthropicAPIKey: getEnv("PIISWEEP_ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("PIISWEEP_ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		},
		Scan: ScanConfig{
			ChunkSize:         getEnvInt("PIISWEEP_CHUNK_SIZE", 4000),
			OverlapPercentage: getEnvInt("PIISWEEP_OVERLAP_PERCENTAGE", 10),
			RequestsPerSecond: getEnvFloat("PIISWEEP_REQUESTS_PER_SECOND", 2),
			Workers:           getEnvInt("PIISWEEP_SCAN_WORKERS", 2),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("PIISWEEP_SECURITY_MODE", "development"),
			APIToken:     getEnv("PIISWEEP_API_TOKEN", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects settings that would make a scan misbehave rather than
// letting them fail deep inside the chunker or worker pool.
func (c *Config) validate() error {
	if c.Scan.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk size must be positive, got %d", c.Scan.ChunkSize)
	}
	if c.Scan.OverlapPercentage < 0 || c.Scan.OverlapPercentage >= 100 {
		return fmt.Errorf("config: overlap percentage must be in [0,100), got %d", c.Scan.OverlapPercentage)
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("config: scan workers must be at least 1, got %d", c.Scan.Workers)
	}
	switch c.Storage.StorageEngine {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported storage engine: %q", c.Storage.StorageEngine)
	}
	return nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the environment variable exists but cannot be parsed as an
// integer, it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value when unset or unparsable.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
