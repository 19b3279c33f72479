// Package config holds all cotreflect configuration, loaded from
// .cotreflect/config.json with environment-variable fallbacks for API keys.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cotreflect/internal/logging"
)

// Config is the single source of truth for user configuration.
type Config struct {
	// API keys per provider. Environment variables (GEMINI_API_KEY,
	// OPENAI_API_KEY, ANTHROPIC_API_KEY) fill in missing entries.
	GeminiAPIKey    string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey    string `json:"openai_api_key,omitempty"`
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty"`

	// Model is the default display model name used when a run does not
	// select one explicitly.
	Model string `json:"model,omitempty"`

	// DBPath locates the snapshot database.
	DBPath string `json:"db_path,omitempty"`

	// PromptsPath locates the optional YAML prompt-template file.
	PromptsPath string `json:"prompts_path,omitempty"`

	Logging logging.Config `json:"logging"`
}

// DefaultDir returns the per-user cotreflect directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cotreflect"
	}
	return filepath.Join(home, ".cotreflect")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.json")
}

// Load reads configuration from path. A missing file is not an error: the
// zero config plus environment fallbacks is a valid setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fall through to defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.AnthropicAPIKey == "" {
		c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = "Gemini 2.0 Flash"
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(DefaultDir(), "snapshots.db")
	}
	if c.Logging.Dir == "" && c.Logging.DebugMode {
		c.Logging.Dir = filepath.Join(DefaultDir(), "logs")
	}
}

// HasAnyKey reports whether at least one provider key is configured.
func (c *Config) HasAnyKey() bool {
	return c.GeminiAPIKey != "" || c.OpenAIAPIKey != "" || c.AnthropicAPIKey != ""
}
