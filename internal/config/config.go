// Package config loads application settings from defaults, an optional YAML
// file, a .env file and the process environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/justestif/go-spotify-mood-mixer/internal/sentiment"
	"github.com/justestif/go-spotify-mood-mixer/internal/spotify"
)

// ErrInvalid is returned when a setting is missing or malformed.
var ErrInvalid = errors.New("invalid configuration")

// Token store kinds.
const (
	TokenStoreMemory   = "memory"
	TokenStoreFile     = "file"
	TokenStorePostgres = "postgres"
)

// Server defaults.
const (
	DefaultAddr           = "127.0.0.1:8080"
	DefaultRequestTimeout = 25 * time.Second
)

// Config holds all application settings.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	SpotifyID     string `yaml:"spotify_id"`
	SpotifySecret string `yaml:"spotify_secret"`
	Market        string `yaml:"spotify_market"`

	HuggingFaceAPIKey string `yaml:"huggingface_api_key"`
	SentimentModel    string `yaml:"sentiment_model"`
	SentimentURL      string `yaml:"sentiment_url"`

	// UpstreamTimeout bounds each call to the sentiment service and the catalog.
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	// RequestTimeout bounds all upstream work for one incoming request.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	TokenStore  string `yaml:"token_store"`
	TokenFile   string `yaml:"token_file"`
	DatabaseURL string `yaml:"database_url"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr:        DefaultAddr,
		Market:          spotify.DefaultMarket,
		SentimentModel:  sentiment.DefaultModel,
		SentimentURL:    sentiment.DefaultBaseURL,
		UpstreamTimeout: sentiment.DefaultTimeout,
		RequestTimeout:  DefaultRequestTimeout,
		TokenStore:      TokenStoreMemory,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it. A .env file in the working directory is loaded if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	// Load .env file if exists; real environment variables take precedence.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.SpotifyID, "SPOTIFY_ID")
	setString(&c.SpotifySecret, "SPOTIFY_SECRET")
	setString(&c.Market, "SPOTIFY_MARKET")
	setString(&c.HuggingFaceAPIKey, "HUGGINGFACE_API_KEY")
	setString(&c.SentimentModel, "SENTIMENT_MODEL")
	setString(&c.SentimentURL, "SENTIMENT_URL")
	setString(&c.TokenStore, "TOKEN_STORE")
	setString(&c.TokenFile, "TOKEN_FILE")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if err := setDuration(&c.UpstreamTimeout, "UPSTREAM_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&c.RequestTimeout, "REQUEST_TIMEOUT")
}

// Validate checks required settings and enumerations.
func (c *Config) Validate() error {
	if c.SpotifyID == "" || c.SpotifySecret == "" {
		return fmt.Errorf("%w: SPOTIFY_ID and SPOTIFY_SECRET are required", ErrInvalid)
	}
	if c.HuggingFaceAPIKey == "" {
		return fmt.Errorf("%w: HUGGINGFACE_API_KEY is required", ErrInvalid)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("%w: UPSTREAM_TIMEOUT must be positive", ErrInvalid)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: REQUEST_TIMEOUT must be positive", ErrInvalid)
	}

	c.TokenStore = strings.ToLower(c.TokenStore)
	switch c.TokenStore {
	case TokenStoreMemory, TokenStoreFile:
	case TokenStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres token store", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown TOKEN_STORE %q", ErrInvalid, c.TokenStore)
	}
	return nil
}

// Sentiment returns the sentiment client configuration.
func (c *Config) Sentiment() *sentiment.Config {
	return &sentiment.Config{
		APIKey:  c.HuggingFaceAPIKey,
		Model:   c.SentimentModel,
		BaseURL: c.SentimentURL,
		Timeout: c.UpstreamTimeout,
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	*dst = d
	return nil
}
