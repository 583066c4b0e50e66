package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/proof-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Cache    CacheConfig    `yaml:"cache"`
	OCR      OCRConfig      `yaml:"ocr"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	HTTPAddr    string `yaml:"http_addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// DatabaseConfig holds database-related configuration. An empty Driver
// disables persistence.
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"` // postgres | sqlite
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// LLMConfig holds configuration for the document-understanding service
type LLMConfig struct {
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	MaxTokens         int           `yaml:"max_tokens"`
	AttemptTimeout    time.Duration `yaml:"attempt_timeout"`
	MaxAttempts       int           `yaml:"max_attempts"`
	InitialBackoff    time.Duration `yaml:"initial_backoff"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	ReviewThreshold   *float64      `yaml:"review_threshold"` // nil until set; an explicit 0 is rejected
}

// DefaultReviewThreshold applies when REVIEW_THRESHOLD is unset.
const DefaultReviewThreshold = 0.5

// Threshold returns the configured review threshold or the default.
func (l LLMConfig) Threshold() float64 {
	if l.ReviewThreshold == nil {
		return DefaultReviewThreshold
	}
	return *l.ReviewThreshold
}

// CacheConfig holds extraction cache configuration
type CacheConfig struct {
	Backend       string        `yaml:"backend"` // memory | redis
	MaxEntries    int           `yaml:"max_entries"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Prefix        string        `yaml:"prefix"`
}

// OCRConfig holds text-extraction binaries configuration
type OCRConfig struct {
	Pdftotext   string `yaml:"pdftotext"`
	Pdftoppm    string `yaml:"pdftoppm"`
	Tesseract   string `yaml:"tesseract"`
	TessdataDir string `yaml:"tessdata_dir"`
	Lang        string `yaml:"lang"`
	DPI         int    `yaml:"dpi"`
	MaxPages    int    `yaml:"max_pages"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// LoadConfig reads an optional YAML file, applies environment overrides
// (a local .env file is honored), then fills defaults for unset values.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	mergeWithEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func mergeWithEnv(c *Config) {
	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", c.Server.MaxUploadMB)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.LLM.APIKey = getEnv("ANTHROPIC_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("ANTHROPIC_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("ANTHROPIC_MODEL", c.LLM.Model)
	c.LLM.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.AttemptTimeout = getEnvAsDuration("LLM_ATTEMPT_TIMEOUT", c.LLM.AttemptTimeout)
	c.LLM.MaxAttempts = getEnvAsInt("LLM_MAX_ATTEMPTS", c.LLM.MaxAttempts)
	c.LLM.InitialBackoff = getEnvAsDuration("LLM_INITIAL_BACKOFF", c.LLM.InitialBackoff)
	c.LLM.MaxBackoff = getEnvAsDuration("LLM_MAX_BACKOFF", c.LLM.MaxBackoff)
	c.LLM.RequestsPerSecond = getEnvAsFloat64("LLM_REQUESTS_PER_SECOND", c.LLM.RequestsPerSecond)
	c.LLM.ReviewThreshold = getEnvAsFloat64Ptr("REVIEW_THRESHOLD", c.LLM.ReviewThreshold)

	c.Cache.Backend = getEnv("CACHE_BACKEND", c.Cache.Backend)
	c.Cache.MaxEntries = getEnvAsInt("CACHE_MAX_ENTRIES", c.Cache.MaxEntries)
	c.Cache.TTL = getEnvAsDuration("CACHE_TTL", c.Cache.TTL)
	c.Cache.RedisAddr = getEnv("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnv("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvAsInt("REDIS_DB", c.Cache.RedisDB)
	c.Cache.Prefix = getEnv("CACHE_PREFIX", c.Cache.Prefix)

	c.OCR.Pdftotext = getEnv("PDFTOTEXT_BIN", c.OCR.Pdftotext)
	c.OCR.Pdftoppm = getEnv("PDFTOPPM_BIN", c.OCR.Pdftoppm)
	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.Lang = getEnv("OCR_LANG", c.OCR.Lang)
	c.OCR.DPI = getEnvAsInt("OCR_DPI", c.OCR.DPI)
	c.OCR.MaxPages = getEnvAsInt("OCR_MAX_PAGES", c.OCR.MaxPages)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// applyDefaults fills unset values. A zero review threshold counts as unset.
func applyDefaults(c *Config) {
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = ":9090"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = constants.MaxUploadMBDefault
	}

	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 20
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 5
	}
	if c.Database.MaxConnLifetime == 0 {
		c.Database.MaxConnLifetime = 30 * time.Minute
	}
	if c.Database.MaxConnIdleTime == 0 {
		c.Database.MaxConnIdleTime = 5 * time.Minute
	}
	if c.Database.DialTimeout == 0 {
		c.Database.DialTimeout = 3 * time.Second
	}

	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.anthropic.com/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "claude-haiku-4-5-20251001"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.AttemptTimeout == 0 {
		c.LLM.AttemptTimeout = 30 * time.Second
	}
	if c.LLM.MaxAttempts == 0 {
		c.LLM.MaxAttempts = 3
	}
	if c.LLM.InitialBackoff == 0 {
		c.LLM.InitialBackoff = 2 * time.Second
	}
	if c.LLM.MaxBackoff == 0 {
		c.LLM.MaxBackoff = 10 * time.Second
	}
	if c.LLM.ReviewThreshold == nil {
		t := DefaultReviewThreshold
		c.LLM.ReviewThreshold = &t
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 1024
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "proofs:"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64Ptr(key string, defaultValue *float64) *float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return &floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration. A missing API key is allowed:
// extraction calls are rejected individually until one is configured.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Cache.Backend) {
	case "memory", "redis":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown cache backend %q", c.Cache.Backend), ErrInvalidInput)
	}
	if c.LLM.MaxAttempts <= 0 {
		return NewAppError("CONFIG_ERROR", "LLM_MAX_ATTEMPTS must be positive", ErrInvalidInput)
	}
	if t := c.LLM.ReviewThreshold; t != nil && (*t <= 0 || *t > 1) {
		return NewAppError("CONFIG_ERROR", "REVIEW_THRESHOLD must be within (0,1]", ErrInvalidInput)
	}
	switch strings.ToLower(c.Database.Driver) {
	case "":
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required when DB_DRIVER is set", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown database driver %q", c.Database.Driver), ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" && c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR or HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
