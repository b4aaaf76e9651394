package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Generator struct {
		Provider    string  `yaml:"provider"` // "gemini" or "ollama"
		Model       string  `yaml:"model"`
		Language    string  `yaml:"language"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"generator"`

	Gemini struct {
		BaseURL   string `yaml:"base_url"`
		APIKeyEnv string `yaml:"api_key_env"`
	} `yaml:"gemini"`

	Ollama struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"ollama"`

	Embeddings struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"embeddings,omitempty"`

	Admin struct {
		CredentialsPath string `yaml:"credentials_path,omitempty"` // TOML allowlist override
		SessionSecret   string `yaml:"session_secret,omitempty"`   // HMAC key for web session tokens
	} `yaml:"admin,omitempty"`

	Limits struct {
		Description   int `yaml:"description"`
		PageContent   int `yaml:"page_content"`
		Competitors   int `yaml:"competitors"`
		AnalysisText  int `yaml:"analysis_text"`
		TargetKeyword int `yaml:"target_keyword"`
		AttachmentMB  int `yaml:"attachment_mb"`
	} `yaml:"limits,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Database.Path = "./copysmith.db"
	cfg.Generator.Provider = "gemini"
	cfg.Generator.Model = "gemini-2.5-flash"
	cfg.Generator.Language = "English"
	cfg.Generator.Temperature = 0.7
	cfg.Gemini.BaseURL = "https://generativelanguage.googleapis.com"
	cfg.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	cfg.Ollama.BaseURL = "http://localhost:11434"
	cfg.Embeddings.BaseURL = "http://localhost:11434"
	cfg.Embeddings.Model = "nomic-embed-text"
	// Input caps match what the result surfaces can display.
	cfg.Limits.Description = 5000
	cfg.Limits.PageContent = 20000
	cfg.Limits.Competitors = 2000
	cfg.Limits.AnalysisText = 20000
	cfg.Limits.TargetKeyword = 200
	cfg.Limits.AttachmentMB = 499
	return cfg
}

// WriteDefaultConfig writes the default config as YAML to path, creating
// parent directories as needed.
func WriteDefaultConfig(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML config file, filling unset fields from defaults.
// A missing file is not an error; the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
