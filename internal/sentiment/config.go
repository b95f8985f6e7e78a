// Package sentiment provides a client for a hosted text-classification model
// that labels free text as positive, negative or neutral.
package sentiment

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL is the Hugging Face Inference API.
	DefaultBaseURL = "https://api-inference.huggingface.co"

	// DefaultModel is a binary POSITIVE/NEGATIVE classifier.
	DefaultModel = "distilbert-base-uncased-finetuned-sst-2-english"

	// DefaultTimeout bounds a single classification request.
	DefaultTimeout = 10 * time.Second
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("missing HUGGINGFACE_API_KEY")

// Config holds sentiment service configuration.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Validate fills defaults and checks required fields.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}
