package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/proof-extractor/constants"
)

// ExtractionResult is the outcome of one API-backed extraction.
type ExtractionResult struct {
	ProofType           constants.ProofType `json:"proof_type"`
	Fields              Fields              `json:"fields"`
	Confidence          Confidence          `json:"confidence"`
	NeedsReview         bool                `json:"needs_review"`
	LowConfidenceFields []string            `json:"low_confidence_fields"`
	CacheHit            bool                `json:"cache_hit"`
}

// Clone returns a copy sharing no maps or slices with r.
func (r ExtractionResult) Clone() ExtractionResult {
	out := r
	out.Fields = r.Fields.Clone()
	out.Confidence = r.Confidence.Clone()
	if r.LowConfidenceFields != nil {
		out.LowConfidenceFields = append([]string(nil), r.LowConfidenceFields...)
	}
	return out
}

// TextExtraction is the outcome of the heuristic route over plain text.
type TextExtraction struct {
	ProofType constants.ProofType  `json:"proof_type"`
	Schema    constants.SchemaKind `json:"schema,omitempty"`
	Fields    Fields               `json:"fields"`
}

// StoredProof represents a persisted extraction for data transfer between layers.
type StoredProof struct {
	ID             uuid.UUID             `json:"id"`
	ProofType      constants.ProofType   `json:"proof_type"`
	Filename       string                `json:"filename"`
	ContentHash    string                `json:"content_hash"`
	Fields         Fields                `json:"fields"`
	Confidence     Confidence            `json:"confidence"`
	Status         constants.ProofStatus `json:"status"`
	FlaggedFields  []string              `json:"flagged_fields"`
	ValidationHash *string               `json:"validation_hash,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}
