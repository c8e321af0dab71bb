// ABOUTME: Centralized configuration for the narration pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the synthesis pipeline
type Config struct {
	// Remote backend settings (hosted model)
	OpenAIKey     string
	RemoteModel   string
	RemoteBudget  int
	RemoteTimeout time.Duration

	// Local backend settings (OpenAI-compatible local server, e.g. Ollama)
	LocalBaseURL string
	LocalModel   string
	LocalBudget  int
	LocalTimeout time.Duration

	// Offline backend settings
	OfflineBudget int

	// Backend preference order, highest priority first
	BackendOrder []string

	// Retry settings shared by the model-backed backends
	MaxRetries int
	RetryDelay time.Duration

	// Session memory settings
	SummaryMaxChars int
	// Fraction of the active backend's per-segment budget reserved for
	// the context digest
	ContextFraction float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		RemoteModel:   getEnv("SAGASCRIBE_REMOTE_MODEL", "gpt-4o-mini"),
		RemoteBudget:  getEnvInt("SAGASCRIBE_REMOTE_BUDGET", 3000),
		RemoteTimeout: getEnvDuration("SAGASCRIBE_REMOTE_TIMEOUT", 30*time.Second),

		LocalBaseURL: getEnv("SAGASCRIBE_LOCAL_BASE_URL", "http://localhost:11434/v1"),
		LocalModel:   getEnv("SAGASCRIBE_LOCAL_MODEL", "llama3.1"),
		LocalBudget:  getEnvInt("SAGASCRIBE_LOCAL_BUDGET", 2500),
		LocalTimeout: getEnvDuration("SAGASCRIBE_LOCAL_TIMEOUT", 120*time.Second),

		OfflineBudget: getEnvInt("SAGASCRIBE_OFFLINE_BUDGET", 2000),

		BackendOrder: getEnvList("SAGASCRIBE_BACKENDS", []string{"remote", "local", "offline"}),

		MaxRetries: getEnvInt("SAGASCRIBE_MAX_RETRIES", 2),
		RetryDelay: getEnvDuration("SAGASCRIBE_RETRY_DELAY", 2*time.Second),

		SummaryMaxChars: getEnvInt("SAGASCRIBE_SUMMARY_MAX_CHARS", 4000),
		ContextFraction: getEnvFloat("SAGASCRIBE_CONTEXT_FRACTION", 0.15),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.RemoteBudget <= 0 || c.LocalBudget <= 0 || c.OfflineBudget <= 0 {
		return fmt.Errorf("backend budgets must be positive")
	}
	if c.ContextFraction < 0.05 || c.ContextFraction > 0.5 {
		return fmt.Errorf("SAGASCRIBE_CONTEXT_FRACTION must be 0.05-0.5, got %f", c.ContextFraction)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("SAGASCRIBE_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.SummaryMaxChars < 256 {
		return fmt.Errorf("SAGASCRIBE_SUMMARY_MAX_CHARS must be >= 256, got %d", c.SummaryMaxChars)
	}
	if len(c.BackendOrder) == 0 {
		return fmt.Errorf("SAGASCRIBE_BACKENDS must name at least one backend")
	}
	for _, name := range c.BackendOrder {
		switch name {
		case "remote", "local", "offline":
		default:
			return fmt.Errorf("unknown backend %q in SAGASCRIBE_BACKENDS", name)
		}
	}
	return nil
}

// Helper functions
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

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
