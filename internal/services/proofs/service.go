// Package proofs composes extraction, text heuristics and persistence into
// the caller-facing proof operations shared by the gRPC, HTTP and CLI fronts.
package proofs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/cache"
	"github.com/joseph-ayodele/proof-extractor/internal/common"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
	"github.com/joseph-ayodele/proof-extractor/internal/export"
	"github.com/joseph-ayodele/proof-extractor/internal/extraction"
	"github.com/joseph-ayodele/proof-extractor/internal/heuristic"
	"github.com/joseph-ayodele/proof-extractor/internal/repository"
	"github.com/joseph-ayodele/proof-extractor/internal/textextract"
)

// maxTextRunes bounds the text route input.
const maxTextRunes = 100_000

// Extractor is the document extraction backend, normally *extraction.Orchestrator.
type Extractor interface {
	Extract(ctx context.Context, req extraction.Request) (entity.ExtractionResult, error)
	ClearCache(ctx context.Context) (int, error)
	CacheStats(ctx context.Context) (cache.Stats, error)
}

// TextSource pulls plain text out of an uploaded document.
type TextSource interface {
	ExtractBytes(ctx context.Context, filename string, data []byte) (textextract.Result, error)
}

// Service handles proof business logic.
type Service struct {
	extractor   Extractor
	proofRepo   repository.ProofRepository
	text        TextSource
	maxUploadMB int
	logger      *slog.Logger
}

// NewService creates a new proof service. proofRepo and text may be nil:
// results are then not persisted and the document text route is disabled.
func NewService(extractor Extractor, proofRepo repository.ProofRepository, text TextSource, maxUploadMB int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = constants.MaxUploadMBDefault
	}
	return &Service{
		extractor:   extractor,
		proofRepo:   proofRepo,
		text:        text,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// ExtractRequest represents an uploaded proof document.
type ExtractRequest struct {
	Filename  string
	MimeType  string
	Data      []byte
	ProofType string
}

// ExtractResponse is the caller-facing extraction result.
type ExtractResponse struct {
	ProofType      constants.ProofType     `json:"proof_type"`
	ExtractedData  entity.ExtractionResult `json:"extracted_data"`
	NeedsReview    bool                    `json:"needs_review"`
	FlaggedFields  []string                `json:"flagged_fields"`
	ValidationHash *string                 `json:"validation_hash"`
	Cached         bool                    `json:"cached"`
	ProofID        *uuid.UUID              `json:"proof_id,omitempty"`
}

// Extract validates the upload, runs the document extraction and persists
// fresh results.
func (s *Service) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	if err := common.ValidateUpload(req.Filename, int64(len(req.Data)), s.maxUploadMB); err != nil {
		return nil, err
	}
	validator := common.NewValidator().
		Field("file", req.Data, common.Required).
		Field("proof_type", req.ProofType, common.Required, common.OneOf(constants.ProofTypeStrings()...))
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	ctx, reqID := common.EnsureRequestID(ctx)
	logger := s.logger.With("req_id", reqID)

	pt := constants.ProofType(req.ProofType)
	result, err := s.extractor.Extract(ctx, extraction.Request{
		Data:      req.Data,
		ProofType: pt,
		MimeType:  req.MimeType,
		Filename:  req.Filename,
	})
	if err != nil {
		logger.Warn("proof extraction failed", "proof_type", pt, "permanent", common.IsPermanent(err), "error", err)
		return nil, err
	}

	hash, err := extraction.ValidationHash(result)
	if err != nil {
		return nil, fmt.Errorf("validation hash: %w", err)
	}

	flagged := result.LowConfidenceFields
	if flagged == nil {
		flagged = []string{}
	}
	resp := &ExtractResponse{
		ProofType:      pt,
		ExtractedData:  result,
		NeedsReview:    result.NeedsReview,
		FlaggedFields:  flagged,
		ValidationHash: hash,
		Cached:         result.CacheHit,
	}

	if !result.CacheHit {
		resp.ProofID = s.save(ctx, logger, req.Filename, req.Data, result, hash)
	}

	logger.Info("proof extracted successfully",
		"proof_type", pt,
		"needs_review", resp.NeedsReview,
		"cached", resp.Cached,
	)
	return resp, nil
}

// save persists a fresh result. Storage failures do not fail the request.
func (s *Service) save(ctx context.Context, logger *slog.Logger, filename string, data []byte, r entity.ExtractionResult, hash *string) *uuid.UUID {
	if s.proofRepo == nil {
		return nil
	}
	p := &entity.StoredProof{
		ProofType:      r.ProofType,
		Filename:       filepath.Base(filename),
		ContentHash:    extraction.ContentHash(data),
		Fields:         r.Fields,
		Confidence:     r.Confidence,
		Status:         constants.StatusFor(r.NeedsReview),
		FlaggedFields:  r.LowConfidenceFields,
		ValidationHash: hash,
	}
	if err := s.proofRepo.Save(ctx, p); err != nil {
		logger.Error("failed to persist proof", "proof_type", r.ProofType, "error", err)
		return nil
	}
	id := p.ID
	return &id
}

// TextRequest carries already-extracted career text.
type TextRequest struct {
	Text      string
	ProofType string
}

// ExtractText runs the heuristic extractor for the proof type over text.
func (s *Service) ExtractText(ctx context.Context, req TextRequest) (*entity.TextExtraction, error) {
	validator := common.NewValidator().
		Field("text", req.Text, common.Required, common.MaxLength(maxTextRunes)).
		Field("proof_type", req.ProofType, common.Required, common.OneOf(constants.ProofTypeStrings()...))
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	out, ok := heuristic.Extract(req.Text, constants.ProofType(req.ProofType))
	if !ok {
		return nil, common.Permanentf("invalid proof_type %q: must be one of: %s", req.ProofType, constants.ProofTypeList())
	}

	_, reqID := common.EnsureRequestID(ctx)
	s.logger.Info("text classified", "req_id", reqID, "proof_type", out.ProofType, "schema", out.Schema)
	return &out, nil
}

// DocumentTextRequest is an uploaded document for the heuristic route.
type DocumentTextRequest struct {
	Filename  string
	Data      []byte
	ProofType string
}

// ExtractDocumentText pulls text out of the document, then classifies it
// heuristically.
func (s *Service) ExtractDocumentText(ctx context.Context, req DocumentTextRequest) (*entity.TextExtraction, error) {
	if s.text == nil {
		return nil, common.Permanent("document text extraction is not configured", common.ErrInvalidInput)
	}
	maxBytes := int64(s.maxUploadMB) * 1024 * 1024
	validator := common.NewValidator().
		Field("filename", req.Filename, common.Required, textRouteExtension).
		Field("size", int64(len(req.Data)), common.MaxBytes(maxBytes)).
		Field("file", req.Data, common.Required)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	res, err := s.text.ExtractBytes(ctx, req.Filename, req.Data)
	if err != nil {
		return nil, fmt.Errorf("extract document text: %w", err)
	}
	for _, w := range res.Warnings {
		s.logger.Warn("text extraction warning", "filename", req.Filename, "warning", w)
	}
	if strings.TrimSpace(res.Text) == "" {
		return nil, common.Permanentf("no text found in %s", filepath.Base(req.Filename))
	}
	return s.ExtractText(ctx, TextRequest{Text: res.Text, ProofType: req.ProofType})
}

// textRouteExtension accepts uploadable documents plus plain text files.
func textRouteExtension(fieldName string, value interface{}) *common.ValidationError {
	name, _ := value.(string)
	if _, ok := constants.TextExtensions[constants.NormalizeExt(filepath.Ext(name))]; ok {
		return nil
	}
	return common.AllowedExtension(fieldName, value)
}

// CacheStats reports the extraction cache size.
func (s *Service) CacheStats(ctx context.Context) (cache.Stats, error) {
	return s.extractor.CacheStats(ctx)
}

// ClearCache drops every cached extraction and returns the number removed.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	n, err := s.extractor.ClearCache(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("cache cleared", "entries", n)
	return n, nil
}

// ListProofsRequest filters stored proofs.
type ListProofsRequest struct {
	ProofType string
	Status    string
	Limit     int
}

// ListProofs returns stored proofs newest first.
func (s *Service) ListProofs(ctx context.Context, req ListProofsRequest) ([]*entity.StoredProof, error) {
	filter, err := s.listFilter(req)
	if err != nil {
		return nil, err
	}
	plist, err := s.proofRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list proofs: %w", err)
	}
	s.logger.Info("proofs listed successfully", "count", len(plist))
	return plist, nil
}

// ExportProofs renders the filtered proofs as an XLSX workbook.
func (s *Service) ExportProofs(ctx context.Context, req ListProofsRequest) ([]byte, int, error) {
	filter, err := s.listFilter(req)
	if err != nil {
		return nil, 0, err
	}
	return export.NewService(s.proofRepo, s.logger).ExportProofsXLSX(ctx, filter)
}

func (s *Service) listFilter(req ListProofsRequest) (repository.ListFilter, error) {
	if s.proofRepo == nil {
		return repository.ListFilter{}, fmt.Errorf("proof store is not configured: %w", common.ErrNotFound)
	}
	validator := common.NewValidator()
	if req.ProofType != "" {
		validator.Field("proof_type", req.ProofType, common.OneOf(constants.ProofTypeStrings()...))
	}
	if req.Status != "" {
		validator.Field("status", req.Status, common.OneOf(string(constants.ProofStatusAccepted), string(constants.ProofStatusNeedsReview)))
	}
	if err := common.ValidateAndReturnError(validator); err != nil {
		return repository.ListFilter{}, err
	}
	return repository.ListFilter{
		ProofType: constants.ProofType(req.ProofType),
		Status:    constants.ProofStatus(req.Status),
		Limit:     req.Limit,
	}, nil
}

// GetProof returns one stored proof by id.
func (s *Service) GetProof(ctx context.Context, id string) (*entity.StoredProof, error) {
	if s.proofRepo == nil {
		return nil, fmt.Errorf("proof store is not configured: %w", common.ErrNotFound)
	}
	pid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, common.Permanent("id must be a UUID", common.ErrInvalidInput)
	}
	return s.proofRepo.GetByID(ctx, pid)
}
