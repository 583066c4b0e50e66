package llm

import "github.com/joseph-ayodele/proof-extractor/constants"

// ConfidenceKey is the top-level key holding per-field confidence scores.
const ConfidenceKey = "confidence"

// FieldSpec declares one field of a proof contract.
type FieldSpec struct {
	Name string
	// Vocabulary closes the set of accepted values. Nil means free text.
	Vocabulary []string
	// Hint is a prompt rule for free-text fields, e.g. a date format.
	Hint string
}

// ProofContract is the declared output of the service for one proof type.
type ProofContract struct {
	ProofType constants.ProofType
	Subject   string
	Fields    []FieldSpec
	Notes     []string
}

// FieldNames returns the declared field names in order.
func (c ProofContract) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a declared field by name.
func (c ProofContract) Field(name string) (FieldSpec, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

var contracts = map[constants.ProofType]ProofContract{
	constants.ProofJob: {
		ProofType: constants.ProofJob,
		Subject:   "job details",
		Fields: []FieldSpec{
			{Name: "job_title"},
			{Name: "company"},
			{Name: "employment_type", Vocabulary: constants.EmploymentTypes},
			{Name: "date_range", Hint: `date_range format: "Month Year - Month Year" or "Month Year - Present"`},
			{Name: "location"},
			{Name: "job_category", Hint: "job_category examples: Tech Support, Design, Engineering, Operations, Marketing, Community"},
		},
	},
	constants.ProofCertificate: {
		ProofType: constants.ProofCertificate,
		Subject:   "certificate or training details",
		Fields: []FieldSpec{
			{Name: "certificate_title"},
			{Name: "issuer"},
			{Name: "completion_date", Hint: `completion_date format: "Month Year"`},
			{Name: "credential_type", Vocabulary: constants.CredentialTypes},
			{Name: "program_category", Hint: "program_category examples: Blockchain Dev, UI/UX, Data Science, Marketing, DevOps"},
		},
	},
	constants.ProofSkill: {
		ProofType: constants.ProofSkill,
		Subject:   "skill or competency details",
		Fields: []FieldSpec{
			{Name: "skill_name"},
			{Name: "skill_category", Hint: "skill_category examples: Programming, Design, Management, Communication, Technical Writing"},
			{Name: "proficiency_level", Vocabulary: constants.ProficiencyLevels},
			{Name: "evidence_type", Hint: "evidence_type examples: GitHub Activity, Portfolio, Test Result, Certificate, Work Sample"},
		},
		Notes: []string{"use null for proficiency_level when it is not clear"},
	},
	constants.ProofMilestone: {
		ProofType: constants.ProofMilestone,
		Subject:   "career milestone details",
		Fields: []FieldSpec{
			{Name: "milestone_type", Vocabulary: constants.MilestoneTypes},
			{Name: "issuer"},
			{Name: "date", Hint: `date format: "Month Year"`},
			{Name: "milestone_summary", Hint: "milestone_summary should be generic, 1-2 sentences max"},
		},
	},
	constants.ProofContribution: {
		ProofType: constants.ProofContribution,
		Subject:   "community contribution details",
		Fields: []FieldSpec{
			{Name: "contribution_type", Vocabulary: constants.ContributionTypes},
			{Name: "platform_name", Hint: "platform_name examples: GitHub, Medium, Dev.to, YouTube, Conference Name"},
			{Name: "date", Hint: `date format: "Month Year"`},
			{Name: "title"},
			{Name: "url", Hint: "url should be the link if visible in the document"},
		},
	},
}

// ContractFor returns the contract for pt.
func ContractFor(pt constants.ProofType) (ProofContract, bool) {
	c, ok := contracts[pt]
	return c, ok
}
