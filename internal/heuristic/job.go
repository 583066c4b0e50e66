package heuristic

import (
	"strings"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

// Job record field names.
const (
	FieldJobTitle       = "job_title"
	FieldCompany        = "company"
	FieldEmploymentType = "employment_type"
	FieldDateRange      = "date_range"
	FieldLocation       = "location"
)

const maxLocationRunes = 60

// ExtractJob detects the schema of text and runs the matching job extractor.
func ExtractJob(text string) (constants.SchemaKind, entity.Fields) {
	schema := Detect(text)
	return schema, ExtractJobWithSchema(text, schema)
}

// ExtractJobWithSchema runs the job extractor for schema. Unknown schema
// kinds fall back to the generic extractor.
func ExtractJobWithSchema(text string, schema constants.SchemaKind) entity.Fields {
	lines := nonEmptyLines(text)
	switch schema {
	case constants.SchemaLinkedIn:
		return extractLinkedIn(lines)
	case constants.SchemaResumeBlock:
		return extractResumeBlock(text, lines)
	default:
		return extractGeneric(text, lines)
	}
}

// extractLinkedIn reads a professional-network job card:
//
//	Community Lead
//	EkoLance · part-time
//	Nov 2022 - Jan 2025
//	Germany · Remote
func extractLinkedIn(lines []string) entity.Fields {
	f := entity.NewFields(FieldJobTitle, FieldCompany, FieldEmploymentType, FieldDateRange, FieldLocation)
	if len(lines) == 0 {
		return f
	}
	f.Set(FieldJobTitle, lines[0])

	if len(lines) > 1 {
		parts := reSeparator.Split(lines[1], -1)
		for i, p := range parts {
			if !ContainsEmploymentType(p) {
				continue
			}
			f.Set(FieldEmploymentType, p)
			for j, other := range parts {
				if j != i && strings.TrimSpace(other) != "" {
					f.Set(FieldCompany, other)
					break
				}
			}
			break
		}
	}

	dateIdx := -1
	for i, line := range lines {
		if dr, ok := DateRange(line); ok {
			f.Set(FieldDateRange, dr)
			dateIdx = i
			break
		}
	}

	if dateIdx >= 0 && dateIdx+1 < len(lines) {
		candidate := lines[dateIdx+1]
		if reSeparatorChar.MatchString(candidate) && runeLen(candidate) < maxLocationRunes {
			f.Set(FieldLocation, candidate)
		}
	}
	return f
}

// extractResumeBlock reads a résumé section headed by the organisation line.
func extractResumeBlock(text string, lines []string) entity.Fields {
	f := entity.NewFields(FieldJobTitle, FieldCompany, FieldEmploymentType, FieldDateRange)
	if len(lines) == 0 {
		return f
	}

	company := reParenthetical.ReplaceAllString(lines[0], "")
	company = reYearOnward.ReplaceAllString(company, "")
	f.Set(FieldCompany, company)

	dateIdx := -1
	if dr, ok := DateRange(lines[0]); ok {
		f.Set(FieldDateRange, dr)
		dateIdx = 0
	} else {
		for i := 1; i < len(lines); i++ {
			if dr, ok := DateRange(lines[i]); ok {
				f.Set(FieldDateRange, dr)
				dateIdx = i
				break
			}
		}
	}

	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if i == dateIdx {
			continue
		}
		if reBulletStart.MatchString(line) {
			break // responsibilities started
		}
		if reDateToken.MatchString(prefixRunes(line, 20)) {
			continue
		}
		if isUpper(line) {
			continue
		}
		if ContainsEmploymentType(line) && runeLen(line) < 30 {
			continue
		}
		f.Set(FieldJobTitle, line)
		break
	}

	if t, ok := EmploymentTypeIn(text); ok {
		f.Set(FieldEmploymentType, t)
	}
	return f
}

// extractGeneric favours recall over precision.
func extractGeneric(text string, lines []string) entity.Fields {
	f := entity.NewFields(FieldJobTitle, FieldCompany, FieldEmploymentType, FieldDateRange)
	if len(lines) == 0 {
		return f
	}

	title := lines[0]
	for _, l := range lines {
		if !reYear.MatchString(l) && runeLen(l) < 80 {
			title = l
			break
		}
	}
	f.Set(FieldJobTitle, title)

	for _, l := range lines {
		if reCompanyShape.MatchString(l) && l != title {
			f.Set(FieldCompany, l)
			break
		}
	}

	if t, ok := EmploymentTypeIn(text); ok {
		f.Set(FieldEmploymentType, t)
	}
	if dr, ok := DateRange(text); ok {
		f.Set(FieldDateRange, dr)
	}
	return f
}
