package llm

import (
	"strings"
)

// BuildPrompt renders the instruction sent alongside the document. It asks for
// exactly the declared fields plus a confidence object mirroring them.
func BuildPrompt(c ProofContract) string {
	var b strings.Builder
	b.WriteString("Extract ")
	b.WriteString(c.Subject)
	b.WriteString(" from this document.\n")
	b.WriteString("Return ONLY a valid JSON object with exactly these fields:\n\n{\n")
	for _, f := range c.Fields {
		b.WriteString(`  "` + f.Name + `": "...",` + "\n")
	}
	b.WriteString(`  "` + ConfidenceKey + `": {` + "\n")
	for i, f := range c.Fields {
		b.WriteString(`    "` + f.Name + `": 0.0`)
		if i < len(c.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  }\n}\n\nRules:\n")

	for _, f := range c.Fields {
		switch {
		case len(f.Vocabulary) > 0:
			b.WriteString("- " + f.Name + " must be one of: " + strings.Join(f.Vocabulary, ", ") + "\n")
		case f.Hint != "":
			b.WriteString("- " + f.Hint + "\n")
		}
	}
	for _, n := range c.Notes {
		b.WriteString("- " + n + "\n")
	}
	b.WriteString("- Use null for any field you cannot find; never omit a field\n")
	b.WriteString("- confidence is a float from 0.0 (uncertain) to 1.0 (certain) per field\n")
	b.WriteString("- No markdown, no explanation, no extra keys. Raw JSON only")
	return b.String()
}
