// Package config loads console settings from ~/.b0/config.yaml with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EnvBaseURL       = "B0_BASE_URL"
	EnvToken         = "B0_TOKEN"
	EnvLogLevel      = "B0_LOG_LEVEL"
	EnvDraftDir      = "B0_DRAFT_DIR"
	EnvOtelEndpoint  = "B0_OTEL_ENDPOINT"
	defaultBaseURL   = "https://api.b0.dev"
	defaultLogLevel  = "info"
	defaultConfigDir = ".b0"
)

type Config struct {
	// BaseURL is the b0 API origin.
	BaseURL string `yaml:"base_url" validate:"required,url"`
	// Token authenticates API and stream requests.
	Token string `yaml:"token"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	// DraftDir overrides where workflow drafts are stored. Empty means
	// <config dir>/drafts.
	DraftDir string `yaml:"draft_dir"`
	// OtelEndpoint, when set, enables trace export over OTLP/HTTP.
	OtelEndpoint string `yaml:"otel_endpoint"`
}

// DefaultPath is ~/.b0/config.yaml, or a path relative to the working
// directory when the home directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(defaultConfigDir, "config.yaml")
	}

	return filepath.Join(home, defaultConfigDir, "config.yaml")
}

// Load reads the config file at path, applies defaults and environment
// overrides, and validates the result. A missing file is not an error; the
// environment alone can carry a full configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{
		BaseURL:  defaultBaseURL,
		LogLevel: defaultLogLevel,
	}

	payload, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err == nil {
		if err := yaml.Unmarshal(payload, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.DraftDir == "" {
		cfg.DraftDir = filepath.Join(filepath.Dir(path), "drafts")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}

	if v := os.Getenv(EnvToken); v != "" {
		cfg.Token = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv(EnvDraftDir); v != "" {
		cfg.DraftDir = v
	}

	if v := os.Getenv(EnvOtelEndpoint); v != "" {
		cfg.OtelEndpoint = v
	}
}
