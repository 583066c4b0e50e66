package heuristic

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

// Skill, milestone and contribution record field names.
const (
	FieldSkillName        = "skill_name"
	FieldSkillCategory    = "skill_category"
	FieldProficiencyLevel = "proficiency_level"
	FieldEvidenceType     = "evidence_type"

	FieldMilestoneType    = "milestone_type"
	FieldDate             = "date"
	FieldMilestoneSummary = "milestone_summary"

	FieldContributionType = "contribution_type"
	FieldPlatformName     = "platform_name"
	FieldTitle            = "title"
	FieldURL              = "url"
)

const summaryRunes = 200

var (
	reIssuedBy = regexp.MustCompile(`\bby\s+([^\n]+)`)

	skillCategories = []string{"Programming", "Design", "Management", "Communication", "Technical Writing", "Data Science", "DevOps", "Marketing"}

	evidenceTypes = []needle{
		{"github", "GitHub Activity"},
		{"portfolio", "Portfolio"},
		{"test result", "Test Result"},
		{"assessment", "Test Result"},
		{"certificate", "Certificate"},
		{"work sample", "Work Sample"},
	}

	contributionTypes = []needle{
		{"open source", "Open Source"},
		{"pull request", "Open Source"},
		{"community role", "Community Role"},
		{"moderator", "Community Role"},
		{"organizer", "Community Role"},
		{"tutorial", "Tutorial"},
		{"workshop", "Workshop"},
		{"talk", "Talk"},
		{"speaker", "Talk"},
		{"article", "Article"},
		{"blog", "Article"},
	}

	platforms = []string{"GitHub", "GitLab", "Medium", "Dev.to", "Hashnode", "YouTube", "Substack", "Stack Overflow", "Discord"}
)

// ExtractSkill reads a skill or competency note.
func ExtractSkill(text string) entity.Fields {
	lines := nonEmptyLines(text)
	f := entity.NewFields(FieldSkillName, FieldSkillCategory, FieldProficiencyLevel, FieldEvidenceType)
	f.Set(FieldSkillName, firstLineOr(lines, Unknown))
	f.Set(FieldSkillCategory, keyword(text, skillCategories))
	f.Set(FieldProficiencyLevel, keyword(text, constants.ProficiencyLevels))
	f.Set(FieldEvidenceType, lookup(text, evidenceTypes))
	return f
}

// ExtractMilestone reads a promotion, award or similar milestone note.
func ExtractMilestone(text string) entity.Fields {
	f := entity.NewFields(FieldMilestoneType, FieldIssuer, FieldDate, FieldMilestoneSummary)
	f.Set(FieldMilestoneType, keyword(text, constants.MilestoneTypes))
	f.Set(FieldIssuer, find(text, reIssuedBy))
	f.Set(FieldDate, dateIn(text))

	summary := prefixRunes(collapseSpace(text), summaryRunes)
	if summary == "" {
		summary = Unknown
	}
	f.Set(FieldMilestoneSummary, summary)
	return f
}

// ExtractContribution reads a talk, article or open-source contribution note.
func ExtractContribution(text string) entity.Fields {
	lines := nonEmptyLines(text)
	f := entity.NewFields(FieldContributionType, FieldPlatformName, FieldDate, FieldTitle, FieldURL)
	f.Set(FieldContributionType, lookup(text, contributionTypes))
	f.Set(FieldPlatformName, keyword(text, platforms))
	f.Set(FieldDate, dateIn(text))
	f.Set(FieldTitle, firstLineOr(lines, Unknown))
	f.Set(FieldURL, find(text, reURL))
	return f
}

// dateIn prefers "Month Year" and falls back to a bare year.
func dateIn(text string) string {
	if m := reMonthYear.FindString(text); m != "" {
		return m
	}
	return find(text, reYear)
}

func collapseSpace(s string) string {
	return strings.Join(nonEmptyLines(s), " ")
}
