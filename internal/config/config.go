// Package config holds the appraiser's runtime configuration: flag/env/file
// settings unified through viper and validated before the pipeline starts.
// Secrets (API keys, login credentials, tokens) only ever arrive through the
// environment or a config file, never defaults.
package config

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Debug   bool `mapstructure:"debug"`
	Quiet   bool `mapstructure:"quiet"`
	LogJSON bool `mapstructure:"log_json"`

	// Generative model settings. Provider "" auto-detects from available keys.
	AIEnabled       bool   `mapstructure:"ai"`
	Provider        string `mapstructure:"provider" validate:"omitempty,oneof=openai anthropic"`
	Model           string `mapstructure:"model"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`

	// Reverse-image search.
	SerpAPIKey string `mapstructure:"serpapi_api_key"`

	// Scrape layer.
	MaxScrape   int           `mapstructure:"max_scrape" validate:"min=0,max=20"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxBodySize string        `mapstructure:"max_body_size"`
	UserAgent   string        `mapstructure:"user_agent"`

	// Optional authenticated session for one auction house.
	LiveAuctioneersUsername string `mapstructure:"liveauctioneers_username"`
	LiveAuctioneersPassword string `mapstructure:"liveauctioneers_password"`

	// Spreadsheet export.
	GoogleSheetID     string `mapstructure:"google_sheet_id"`
	GoogleSheetsToken string `mapstructure:"google_sheets_token"`

	// Image store.
	ImageUploadURL string `mapstructure:"image_upload_url"`
	ImagePublicURL string `mapstructure:"image_public_url"`

	// Result output.
	Format string `mapstructure:"format" validate:"oneof=json jsonl yaml"`
	Output string `mapstructure:"output"`

	maxBodyBytes int
}

// Default returns the configuration baseline before flags/env/file overlays.
func Default() *Config {
	return &Config{
		AIEnabled:   true,
		MaxScrape:   10,
		Timeout:     18 * time.Second,
		MaxBodySize: "600KB",
		Format:      "json",
	}
}

// Load overlays viper's resolved settings onto the defaults and validates the
// result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("loading config: timeout must be positive, got %s", cfg.Timeout)
	}

	bytes, err := humanize.ParseBytes(cfg.MaxBodySize)
	if err != nil {
		return nil, fmt.Errorf("loading config: invalid max-body-size %q: %w", cfg.MaxBodySize, err)
	}
	if bytes == 0 {
		return nil, fmt.Errorf("loading config: max-body-size must be positive")
	}
	cfg.maxBodyBytes = int(bytes)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MaxBodyBytes is the parsed body-size cap in bytes.
func (c *Config) MaxBodyBytes() int {
	return c.maxBodyBytes
}

// HasLiveAuctioneersLogin reports whether both credentials are present.
func (c *Config) HasLiveAuctioneersLogin() bool {
	return c.LiveAuctioneersUsername != "" && c.LiveAuctioneersPassword != ""
}
