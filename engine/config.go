package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/accordo-ai/accordo/llm"
)

const (
	defaultHistoryLimit = 20
	defaultObserver     = "slog"
)

// Config holds initialization parameters for the engine and its
// subsystems.
type Config struct {
	DatabasePath string     `json:"database_path,omitempty"`
	HistoryLimit int        `json:"history_limit,omitempty"`
	Observer     string     `json:"observer,omitempty"`
	LLM          llm.Config `json:"llm"`
}

// DefaultConfig returns a Config with sensible defaults. An empty
// DatabasePath selects the in-memory store.
func DefaultConfig() Config {
	return Config{
		HistoryLimit: defaultHistoryLimit,
		Observer:     defaultObserver,
		LLM:          llm.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.DatabasePath != "" {
		c.DatabasePath = source.DatabasePath
	}
	if source.HistoryLimit > 0 {
		c.HistoryLimit = source.HistoryLimit
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	c.LLM = c.LLM.Merge(source.LLM)
}

// LoadConfig reads a JSON config file, merges it with defaults, and
// returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
