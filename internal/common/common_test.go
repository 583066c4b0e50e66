package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.LLM.AttemptTimeout)
	assert.Equal(t, 2*time.Second, cfg.LLM.InitialBackoff)
	assert.Equal(t, 10*time.Second, cfg.LLM.MaxBackoff)
	assert.Equal(t, 0.5, cfg.LLM.Threshold())
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 10, cfg.Server.MaxUploadMB)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  http_addr: ":9999"
llm:
  model: "file-model"
  max_attempts: 5
  attempt_timeout: 12s
cache:
  backend: redis
  ttl: 1h
database:
  driver: sqlite
  dsn: /tmp/proofs.db
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("ANTHROPIC_MODEL", "env-model")
	t.Setenv("REVIEW_THRESHOLD", "0.7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.HTTPAddr)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.LLM.MaxAttempts)
	assert.Equal(t, 12*time.Second, cfg.LLM.AttemptTimeout)
	assert.Equal(t, 0.7, cfg.LLM.Threshold())
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	require.NoError(t, cfg.Validate())
}

func TestExplicitZeroReviewThresholdIsRejected(t *testing.T) {
	t.Setenv("REVIEW_THRESHOLD", "0")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, cfg.LLM.ReviewThreshold)
	assert.Zero(t, *cfg.LLM.ReviewThreshold)

	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "REVIEW_THRESHOLD")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"non-positive attempts", func(c *Config) { c.LLM.MaxAttempts = -1 }},
		{"threshold above one", func(c *Config) { v := 1.5; c.LLM.ReviewThreshold = &v }},
		{"threshold zero", func(c *Config) { v := 0.0; c.LLM.ReviewThreshold = &v }},
		{"driver without dsn", func(c *Config) { c.Database.Driver = "postgres"; c.Database.DSN = "" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle"; c.Database.DSN = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestErrorKinds(t *testing.T) {
	perm := fmt.Errorf("extract: %w", Permanent("bad proof type", nil))
	trans := fmt.Errorf("extract: %w", Transient("timed out", context.DeadlineExceeded))

	assert.True(t, IsPermanent(perm))
	assert.False(t, IsTransient(perm))
	assert.True(t, IsTransient(trans))
	assert.ErrorIs(t, trans, context.DeadlineExceeded)

	assert.Equal(t, http.StatusBadRequest, HTTPStatus(perm))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(trans))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))

	assert.Equal(t, codes.InvalidArgument, status.Code(ToStatus(perm)))
	assert.Equal(t, codes.Unavailable, status.Code(ToStatus(trans)))
	assert.Equal(t, codes.Internal, status.Code(ToStatus(errors.New("boom"))))
	assert.NoError(t, ToStatus(nil))
}

func TestValidateUpload(t *testing.T) {
	require.NoError(t, ValidateUpload("card.PNG", 1024, 10))

	err := ValidateUpload("notes.docx", 1024, 10)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Contains(t, err.Error(), "file type not supported")

	err = ValidateUpload("big.pdf", 11*1024*1024, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum limit of 10MB")

	err = ValidateUpload("", 10, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is required")
}

func TestValidateAndReturnError(t *testing.T) {
	ok := NewValidator().Field("text", "hello", Required)
	require.NoError(t, ValidateAndReturnError(ok))

	bad := NewValidator().Field("text", "", Required)
	err := ValidateAndReturnError(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Equal(t, codes.InvalidArgument, status.Code(ToStatus(err)))
}

func TestMaxLengthDoesNotEchoText(t *testing.T) {
	long := strings.Repeat("secret résumé line ", 20)
	v := NewValidator().Field("text", long, MaxLength(50))

	err := ValidateAndReturnError(v)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "380 chars")
	assert.Contains(t, err.Error(), "at most 50 characters")
	require.Len(t, v.Errors(), 1)
	assert.Equal(t, "380 chars", v.Errors()[0].Value)
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	require.NotEmpty(t, id)
	assert.Equal(t, id, RequestIDFromContext(ctx))

	ctx2, id2 := EnsureRequestID(ctx)
	assert.Equal(t, id, id2)
	assert.Equal(t, ctx, ctx2)
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(LogConfig{Level: "debug", Format: "json"}, &buf).Debug("extract.test", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"extract.test"`)

	buf.Reset()
	NewLogger(LogConfig{Level: "warn", Format: "text"}, &buf).Info("hidden")
	assert.Empty(t, buf.String())
}
