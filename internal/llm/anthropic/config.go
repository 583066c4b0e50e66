package anthropic

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultModel     = "claude-haiku-4-5-20251001"
	DefaultMaxTokens = 1024
	APIVersion       = "2023-06-01"
)

// Config for the Messages API client.
type Config struct {
	APIKey    string        // if empty, falls back to env ANTHROPIC_API_KEY
	BaseURL   string        // default https://api.anthropic.com/v1
	Model     string        // e.g. "claude-haiku-4-5-20251001"
	MaxTokens int           // default 1024
	Timeout   time.Duration // http client timeout; per-attempt deadlines come from ctx
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient fills config defaults. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}
