package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/justestif/go-spotify-mood-mixer/internal/mood"
)

const userAgent = "go-spotify-mood-mixer/1.0"

// ErrUpstreamUnavailable is returned when the sentiment service cannot be
// reached or answers with something other than a classification.
var ErrUpstreamUnavailable = errors.New("sentiment service unavailable")

// Classifier abstracts the sentiment service for callers and tests.
type Classifier interface {
	Classify(ctx context.Context, text string) (mood.SentimentSignal, error)
}

// Client calls a hosted text-classification model.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

var _ Classifier = (*Client)(nil)

// NewClient creates a sentiment client from a validated configuration.
func NewClient(cfg *Config) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

type apiError struct {
	Error string `json:"error"`
}

// Classify returns the primary (highest ranked) sentiment for text.
// The service orders labels by score, so the first entry is used.
func (c *Client) Classify(ctx context.Context, text string) (mood.SentimentSignal, error) {
	body, err := json.Marshal(classifyRequest{Inputs: text})
	if err != nil {
		return mood.SentimentSignal{}, fmt.Errorf("encoding request: %w", err)
	}

	reqURL, err := url.JoinPath(c.baseURL, "models", c.model)
	if err != nil {
		return mood.SentimentSignal{}, fmt.Errorf("building request URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return mood.SentimentSignal{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mood.SentimentSignal{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return mood.SentimentSignal{}, fmt.Errorf("%w: reading response: %v", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return mood.SentimentSignal{}, fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, apiErr.Error)
		}
		return mood.SentimentSignal{}, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	signals, err := parseSignals(data)
	if err != nil {
		return mood.SentimentSignal{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if len(signals) == 0 {
		return mood.SentimentSignal{}, fmt.Errorf("%w: empty classification", ErrUpstreamUnavailable)
	}

	primary := signals[0]
	primary.Score = clamp(primary.Score)
	return primary, nil
}

// parseSignals accepts both the flat [{label,score}] shape and the nested
// [[{label,score}]] shape returned for single inputs.
func parseSignals(data []byte) ([]mood.SentimentSignal, error) {
	var nested [][]mood.SentimentSignal
	if err := json.Unmarshal(data, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []mood.SentimentSignal
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parsing classification: %w", err)
	}
	return flat, nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
