package constants

import "strings"

// Closed vocabularies for categorical fields returned by the extraction service.
var (
	EmploymentTypes   = []string{"full-time", "part-time", "intern", "contributor", "contract"}
	CredentialTypes   = []string{"Course", "Bootcamp", "Workshop", "Award", "Certification"}
	ProficiencyLevels = []string{"Beginner", "Intermediate", "Advanced", "Expert"}
	MilestoneTypes    = []string{"Promotion", "Award", "Recognition", "Key Result", "Achievement"}
	ContributionTypes = []string{"Talk", "Article", "Open Source", "Community Role", "Tutorial", "Workshop"}
)

// synonyms map loosely phrased model output onto a vocabulary value.
var synonyms = map[string]string{
	"full time":     "full-time",
	"fulltime":      "full-time",
	"part time":     "part-time",
	"parttime":      "part-time",
	"internship":    "intern",
	"contractor":    "contract",
	"opensource":    "Open Source",
	"open-source":   "Open Source",
	"key-result":    "Key Result",
	"certificate":   "Certification",
	"certification": "Certification",
}

// Canonicalize returns the vocabulary entry matching input case-insensitively.
// The second result is false when input has no counterpart in vocab.
func Canonicalize(input string, vocab []string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return input, false
	}
	for _, v := range vocab {
		if normalized == strings.ToLower(v) {
			return v, true
		}
	}
	if syn, ok := synonyms[normalized]; ok {
		for _, v := range vocab {
			if v == syn {
				return v, true
			}
		}
	}
	return input, false
}
