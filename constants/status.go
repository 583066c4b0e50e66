package constants

// ProofStatus is the canonical review status for rows in extracted_proofs.
type ProofStatus string

// Stable values (store these exact strings in DB).
const (
	ProofStatusAccepted    ProofStatus = "ACCEPTED"     // every declared field met the threshold
	ProofStatusNeedsReview ProofStatus = "NEEDS_REVIEW" // at least one field flagged
)

// StatusFor maps a review flag to the stored status.
func StatusFor(needsReview bool) ProofStatus {
	if needsReview {
		return ProofStatusNeedsReview
	}
	return ProofStatusAccepted
}
