// Package app wires configuration into a ready proofs service. The daemon,
// the CLI and the health tool share it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/proof-extractor/internal/cache"
	"github.com/joseph-ayodele/proof-extractor/internal/common"
	"github.com/joseph-ayodele/proof-extractor/internal/extraction"
	"github.com/joseph-ayodele/proof-extractor/internal/llm/anthropic"
	"github.com/joseph-ayodele/proof-extractor/internal/repository"
	"github.com/joseph-ayodele/proof-extractor/internal/services/proofs"
	"github.com/joseph-ayodele/proof-extractor/internal/textextract"
)

// App holds the long-lived dependencies built from a Config.
type App struct {
	Config  *common.Config
	Service *proofs.Service
	Text    *textextract.Extractor
	DB      *repository.DB // nil when persistence is disabled

	closers []func()
	logger  *slog.Logger
}

// Build validates cfg and constructs the cache, the model client, the
// orchestrator, the optional proof store and the text extractor.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg, logger: logger}

	store, err := a.openCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	client := anthropic.NewClient(anthropic.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.AttemptTimeout,
	}, nil, logger)
	if !client.Configured() {
		logger.Warn("ANTHROPIC_API_KEY not configured, document extraction will be rejected")
	}

	orch, err := extraction.NewOrchestrator(client, store, extraction.Config{
		MaxAttempts:       cfg.LLM.MaxAttempts,
		AttemptTimeout:    cfg.LLM.AttemptTimeout,
		InitialBackoff:    cfg.LLM.InitialBackoff,
		MaxBackoff:        cfg.LLM.MaxBackoff,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		ReviewThreshold:   cfg.LLM.Threshold(),
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var proofRepo repository.ProofRepository
	if cfg.Database.Driver != "" {
		if err := a.openDB(ctx); err != nil {
			a.Close()
			return nil, err
		}
		proofRepo = repository.NewProofRepository(a.DB, logger)
	} else {
		logger.Info("DB_DRIVER not set, extracted proofs will not be persisted")
	}

	a.Text = textextract.NewExtractor(textextract.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.Lang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	a.Service = proofs.NewService(orch, proofRepo, a.Text, cfg.Server.MaxUploadMB, logger)
	return a, nil
}

func (a *App) openCache(ctx context.Context) (cache.Store, error) {
	cfg := a.Config.Cache
	if strings.EqualFold(cfg.Backend, "redis") {
		rs, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
			TTL:      cfg.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := rs.Close(); err != nil {
				a.logger.Error("failed to close redis cache", "error", err)
			}
		})
		a.logger.Info("using redis cache", "addr", cfg.RedisAddr, "prefix", cfg.Prefix)
		return rs, nil
	}
	a.logger.Info("using in-memory cache", "max_entries", cfg.MaxEntries, "ttl", cfg.TTL)
	return cache.NewMemoryStore(cfg.MaxEntries, cfg.TTL), nil
}

func (a *App) openDB(ctx context.Context) error {
	cfg := a.Config.Database
	db, err := repository.Open(ctx, repository.Config{
		Driver:           cfg.Driver,
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, func() { db.Close(a.logger) })

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	a.DB = db
	return nil
}

// Close releases everything Build opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
