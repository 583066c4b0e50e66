package constants

import "strings"

// ProofType is the declared category of a career document submitted for extraction.
type ProofType string

const (
	ProofJob          ProofType = "job"
	ProofCertificate  ProofType = "certificate"
	ProofSkill        ProofType = "skill"
	ProofMilestone    ProofType = "milestone"
	ProofContribution ProofType = "contribution"
)

var allProofTypes = []ProofType{
	ProofJob,
	ProofCertificate,
	ProofSkill,
	ProofMilestone,
	ProofContribution,
}

// ProofTypes returns every recognized proof type in declaration order.
func ProofTypes() []ProofType {
	out := make([]ProofType, len(allProofTypes))
	copy(out, allProofTypes)
	return out
}

// ProofTypeStrings returns the recognized proof types as plain strings.
func ProofTypeStrings() []string {
	result := make([]string, len(allProofTypes))
	for i, pt := range allProofTypes {
		result[i] = string(pt)
	}
	return result
}

// Valid reports whether p is one of the recognized proof types. No case folding
// or trimming is applied: "Job" is not a valid proof type.
func (p ProofType) Valid() bool {
	for _, pt := range allProofTypes {
		if p == pt {
			return true
		}
	}
	return false
}

// ParseProofType returns the proof type named by s, or false when s is not recognized.
func ParseProofType(s string) (ProofType, bool) {
	pt := ProofType(s)
	return pt, pt.Valid()
}

// ProofTypeList renders the recognized proof types for error messages.
func ProofTypeList() string {
	return strings.Join(ProofTypeStrings(), ", ")
}
