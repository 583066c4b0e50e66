package extraction

import "github.com/joseph-ayodele/proof-extractor/internal/entity"

// DefaultReviewThreshold is the confidence below which a field is flagged.
const DefaultReviewThreshold = 0.5

// LowConfidenceFields returns, in declared order, every field whose score is
// missing or below threshold. The result is never nil.
func LowConfidenceFields(declared []string, conf entity.Confidence, threshold float64) []string {
	out := make([]string, 0, len(declared))
	for _, name := range declared {
		if score, ok := conf[name]; !ok || score < threshold {
			out = append(out, name)
		}
	}
	return out
}
