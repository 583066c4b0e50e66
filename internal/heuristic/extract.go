package heuristic

import (
	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

// Extract runs the heuristic extractor for proofType over already-extracted
// text. The boolean is false only for an unrecognized proof type.
func Extract(text string, proofType constants.ProofType) (entity.TextExtraction, bool) {
	out := entity.TextExtraction{ProofType: proofType}
	switch proofType {
	case constants.ProofJob:
		out.Schema, out.Fields = ExtractJob(text)
	case constants.ProofCertificate:
		out.Fields = ExtractCertificate(text)
	case constants.ProofSkill:
		out.Fields = ExtractSkill(text)
	case constants.ProofMilestone:
		out.Fields = ExtractMilestone(text)
	case constants.ProofContribution:
		out.Fields = ExtractContribution(text)
	default:
		return entity.TextExtraction{}, false
	}
	return out, true
}
