// Package extraction turns document bytes into validated, confidence-gated
// field records by way of an external document-understanding service.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/cache"
	"github.com/joseph-ayodele/proof-extractor/internal/common"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
	"github.com/joseph-ayodele/proof-extractor/internal/llm"
)

// Config tunes the retry loop and the review gate.
type Config struct {
	MaxAttempts       int
	AttemptTimeout    time.Duration
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	RequestsPerSecond float64 // <= 0 disables rate limiting
	ReviewThreshold   float64
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 30 * time.Second
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 2 * time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	if c.ReviewThreshold <= 0 {
		c.ReviewThreshold = DefaultReviewThreshold
	}
	return c
}

// Sleeper waits d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Request is one document submitted for extraction.
type Request struct {
	Data      []byte
	ProofType constants.ProofType
	MimeType  string // declared by the uploader; may be empty or wrong
	Filename  string
}

// Orchestrator owns the cache, the retry policy and response validation.
// It is safe for concurrent use.
type Orchestrator struct {
	caller    llm.DocumentCaller
	store     cache.Store
	validator *llm.SchemaValidator
	limiter   *rate.Limiter
	group     singleflight.Group
	cfg       Config
	sleep     Sleeper
	logger    *slog.Logger
}

type Option func(*Orchestrator)

// WithSleeper replaces the wall-clock backoff wait.
func WithSleeper(s Sleeper) Option {
	return func(o *Orchestrator) { o.sleep = s }
}

func NewOrchestrator(caller llm.DocumentCaller, store cache.Store, cfg Config, logger *slog.Logger, opts ...Option) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = cache.NewMemoryStore(0, 0)
	}
	validator, err := llm.NewSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("compile response schemas: %w", err)
	}
	cfg = cfg.withDefaults()

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	o := &Orchestrator{
		caller:    caller,
		store:     store,
		validator: validator,
		limiter:   rate.NewLimiter(limit, 1),
		cfg:       cfg,
		sleep:     sleepContext,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Extract returns the field record for req. A cached result is returned
// with CacheHit set; otherwise the service is called, the answer validated
// and gated, and the result cached. Errors are common.PermanentError or
// common.TransientError.
func (o *Orchestrator) Extract(ctx context.Context, req Request) (entity.ExtractionResult, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	logger := o.logger.With("req_id", reqID, "proof_type", req.ProofType)

	if o.caller == nil || !o.caller.Configured() {
		return entity.ExtractionResult{}, common.Permanent("ANTHROPIC_API_KEY is not set", common.ErrInvalidInput)
	}
	contract, ok := llm.ContractFor(req.ProofType)
	if !ok {
		return entity.ExtractionResult{}, common.Permanentf("invalid proof_type %q: must be one of: %s", req.ProofType, constants.ProofTypeList())
	}

	mimeType := ResolveMimeType(req.MimeType, req.Filename)
	contentHash := ContentHash(req.Data)
	key := CacheKey(contentHash, req.ProofType)
	logger = logger.With("content_hash", contentHash[:12])

	if r, hit := o.lookup(ctx, key, logger); hit {
		return r, nil
	}

	dreq := llm.DocumentRequest{
		RequestID: reqID,
		ProofType: req.ProofType,
		MimeType:  mimeType,
		Data:      req.Data,
		Prompt:    llm.BuildPrompt(contract),
	}
	// The shared call must not inherit any one caller's cancellation: it
	// runs detached under its own deadline and each waiter selects on its
	// own ctx. A call abandoned by every waiter still fills the cache.
	ch := o.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.flightTimeout())
		defer cancel()
		return o.extractFresh(fctx, contract, key, dreq, logger)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return entity.ExtractionResult{}, res.Err
		}
		if res.Shared {
			logger.Debug("extract.singleflight.shared")
		}
		return res.Val.(entity.ExtractionResult).Clone(), nil
	case <-ctx.Done():
		logger.Warn("extract.cancelled", "error", ctx.Err())
		return entity.ExtractionResult{}, common.Transient("extraction cancelled", ctx.Err())
	}
}

// flightTimeout bounds a detached shared call: every attempt timing out
// plus the longest backoff between each pair.
func (o *Orchestrator) flightTimeout() time.Duration {
	n := time.Duration(o.cfg.MaxAttempts)
	return n*o.cfg.AttemptTimeout + (n-1)*o.cfg.MaxBackoff
}

// ExtractJob is Extract with the job proof type.
func (o *Orchestrator) ExtractJob(ctx context.Context, data []byte, mimeType, filename string) (entity.ExtractionResult, error) {
	return o.Extract(ctx, Request{Data: data, ProofType: constants.ProofJob, MimeType: mimeType, Filename: filename})
}

// ClearCache drops every cached result.
func (o *Orchestrator) ClearCache(ctx context.Context) (int, error) {
	n, err := o.store.Clear(ctx)
	if err != nil {
		return n, fmt.Errorf("clear cache: %w", err)
	}
	o.logger.Info("extract.cache.cleared", "entries", n)
	return n, nil
}

// CacheStats reports the cache size.
func (o *Orchestrator) CacheStats(ctx context.Context) (cache.Stats, error) {
	st, err := o.store.Stats(ctx)
	if err != nil {
		return st, fmt.Errorf("cache stats: %w", err)
	}
	return st, nil
}

// lookup treats cache failures as misses.
func (o *Orchestrator) lookup(ctx context.Context, key string, logger *slog.Logger) (entity.ExtractionResult, bool) {
	r, ok, err := o.store.Get(ctx, key)
	if err != nil {
		logger.Warn("extract.cache.get_failed", "error", err)
		return entity.ExtractionResult{}, false
	}
	if !ok {
		return entity.ExtractionResult{}, false
	}
	r.CacheHit = true
	logger.Info("extract.cache.hit", "needs_review", r.NeedsReview)
	return r, true
}

func (o *Orchestrator) extractFresh(ctx context.Context, contract llm.ProofContract, key string, dreq llm.DocumentRequest, logger *slog.Logger) (entity.ExtractionResult, error) {
	start := time.Now()

	text, err := o.callWithRetry(ctx, dreq, logger)
	if err != nil {
		return entity.ExtractionResult{}, err
	}

	doc, err := llm.DecodeProofDocument(text)
	if err != nil {
		logger.Error("extract.parse_failed", "error", err, "raw_bytes", len(text))
		return entity.ExtractionResult{}, common.Permanent("model returned invalid JSON", err)
	}
	llm.NormalizeProofDocument(contract, doc, logger)
	if err := o.validator.Validate(contract.ProofType, doc); err != nil {
		logger.Error("extract.schema_validation_failed", "error", err)
		return entity.ExtractionResult{}, common.Permanent("model response does not match the "+string(contract.ProofType)+" contract", err)
	}

	fields, conf := llm.DocumentFields(contract, doc)
	flagged := LowConfidenceFields(contract.FieldNames(), conf, o.cfg.ReviewThreshold)
	result := entity.ExtractionResult{
		ProofType:           contract.ProofType,
		Fields:              fields,
		Confidence:          conf,
		NeedsReview:         len(flagged) > 0,
		LowConfidenceFields: flagged,
		CacheHit:            false,
	}

	if err := o.store.Set(ctx, key, result.Clone()); err != nil {
		logger.Warn("extract.cache.set_failed", "error", err)
	}
	logger.Info("extract.ok",
		"needs_review", result.NeedsReview,
		"flagged", len(flagged),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// callWithRetry is the only place retry semantics live. Transient outcomes
// are retried with exponential backoff up to MaxAttempts; permanent ones
// end the loop at once.
func (o *Orchestrator) callWithRetry(ctx context.Context, req llm.DocumentRequest, logger *slog.Logger) (string, error) {
	bo := o.newBackOff()
	var last llm.Outcome

	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		if err := o.limiter.Wait(ctx); err != nil {
			return "", common.Transient("rate limiter wait", err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.AttemptTimeout)
		out := o.caller.Call(attemptCtx, req)
		cancel()

		switch out.Kind {
		case llm.OutcomeOK:
			logger.Debug("extract.attempt.ok", "attempt", attempt)
			return out.Text, nil
		case llm.OutcomePermanent:
			logger.Error("extract.attempt.permanent", "attempt", attempt, "status", out.Status, "reason", out.Reason)
			return "", common.Permanent(out.Reason, nil)
		}

		last = out
		logger.Warn("extract.attempt.transient", "attempt", attempt, "status", out.Status, "reason", out.Reason)
		if err := ctx.Err(); err != nil {
			return "", common.Transient("extraction cancelled", err)
		}
		if attempt == o.cfg.MaxAttempts {
			break
		}

		delay := bo.NextBackOff()
		logger.Info("extract.retry.backoff", "attempt", attempt, "delay_ms", delay.Milliseconds())
		if err := o.sleep(ctx, delay); err != nil {
			return "", common.Transient("extraction cancelled during backoff", err)
		}
	}

	return "", common.Transient(fmt.Sprintf("extraction service unavailable after %d attempts: %s", o.cfg.MaxAttempts, last.Reason), nil)
}

// newBackOff yields InitialBackoff, then doubles up to MaxBackoff, without jitter.
func (o *Orchestrator) newBackOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     o.cfg.InitialBackoff,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         o.cfg.MaxBackoff,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
