package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/proof-extractor/constants"
)

func TestExtractSkill(t *testing.T) {
	f := ExtractSkill("Go Programming\nAdvanced level, verified through GitHub contributions")

	assert.Equal(t, "Go Programming", f.Value(FieldSkillName))
	assert.Equal(t, "Programming", f.Value(FieldSkillCategory))
	assert.Equal(t, "Advanced", f.Value(FieldProficiencyLevel))
	assert.Equal(t, "GitHub Activity", f.Value(FieldEvidenceType))
}

func TestExtractMilestone(t *testing.T) {
	f := ExtractMilestone("Promoted to Senior Engineer\nPromotion awarded by Acme Corp\nMarch 2023")

	assert.Equal(t, "Promotion", f.Value(FieldMilestoneType))
	assert.Equal(t, "Acme Corp", f.Value(FieldIssuer))
	assert.Equal(t, "March 2023", f.Value(FieldDate))
	assert.Equal(t, "Promoted to Senior Engineer Promotion awarded by Acme Corp March 2023", f.Value(FieldMilestoneSummary))
}

func TestExtractContribution(t *testing.T) {
	f := ExtractContribution("Building gRPC services in Go\nTalk at GopherCon Africa, Nov 2023\nhttps://youtube.com/watch?v=abc")

	assert.Equal(t, "Talk", f.Value(FieldContributionType))
	assert.Equal(t, "YouTube", f.Value(FieldPlatformName))
	assert.Equal(t, "Nov 2023", f.Value(FieldDate))
	assert.Equal(t, "Building gRPC services in Go", f.Value(FieldTitle))
	assert.Equal(t, "https://youtube.com/watch?v=abc", f.Value(FieldURL))
}

func TestKeywordExtractorsOnEmptyText(t *testing.T) {
	for _, f := range []map[string]*string{ExtractSkill(""), ExtractMilestone(""), ExtractContribution("")} {
		for k, v := range f {
			require.NotNil(t, v, k)
			assert.Equal(t, Unknown, *v, k)
		}
	}
}

func TestExtractDispatch(t *testing.T) {
	out, ok := Extract(linkedinCard, constants.ProofJob)
	require.True(t, ok)
	assert.Equal(t, constants.SchemaLinkedIn, out.Schema)
	assert.Equal(t, "EkoLance", out.Fields.Value(FieldCompany))

	out, ok = Extract("freeCodeCamp", constants.ProofCertificate)
	require.True(t, ok)
	assert.Empty(t, out.Schema)
	assert.Equal(t, "freeCodeCamp", out.Fields.Value(FieldIssuer))

	_, ok = Extract("text", constants.ProofType("resume"))
	assert.False(t, ok)
}
