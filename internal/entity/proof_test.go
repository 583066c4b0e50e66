package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractionResultCloneIsDeep(t *testing.T) {
	orig := ExtractionResult{
		ProofType:           "job",
		Fields:              NewFields("job_title", "company"),
		Confidence:          Confidence{"job_title": 0.9},
		LowConfidenceFields: []string{"company"},
		NeedsReview:         true,
	}
	orig.Fields.Set("job_title", "Community Lead")

	cp := orig.Clone()
	cp.Fields.Set("job_title", "Changed")
	cp.Fields.Set("company", "Other")
	cp.Confidence["job_title"] = 0.1
	cp.LowConfidenceFields[0] = "job_title"

	assert.Equal(t, "Community Lead", orig.Fields.Value("job_title"))
	require.Contains(t, orig.Fields, "company")
	assert.Nil(t, orig.Fields["company"])
	assert.Equal(t, 0.9, orig.Confidence["job_title"])
	assert.Equal(t, []string{"company"}, orig.LowConfidenceFields)
}

func TestFieldsSetTrimsAndNullsEmpty(t *testing.T) {
	f := NewFields("a", "b")
	f.Set("a", "  value ")
	f.Set("b", "   ")

	assert.Equal(t, "value", f.Value("a"))
	assert.Nil(t, f["b"])
	assert.Equal(t, map[string]any{"a": "value", "b": nil}, f.AsMap())
}
