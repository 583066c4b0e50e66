package heuristic

import "github.com/joseph-ayodele/proof-extractor/constants"

const detectHeadRunes = 300

// Detect classifies text into a structural schema. Rules are evaluated in
// order and the first match wins:
//
//  1. a separator in the first 300 characters plus either a duration
//     annotation or an employment type on the second line -> linkedin
//  2. a header first line plus a bulleted line or a date range on line one -> resume_block
//  3. a header first line plus a date range anywhere -> resume_block
//  4. otherwise -> generic
func Detect(text string) constants.SchemaKind {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return constants.SchemaGeneric
	}

	head := prefixRunes(text, detectHeadRunes)
	hasSeparator := reSeparatorChar.MatchString(head)
	hasDuration := reDuration.MatchString(text)
	hasTypeOnLine2 := len(lines) > 1 && ContainsEmploymentType(lines[1])
	if hasSeparator && (hasDuration || hasTypeOnLine2) {
		return constants.SchemaLinkedIn
	}

	first := lines[0]
	if !isHeader(first) {
		return constants.SchemaGeneric
	}
	if reBulletLine.MatchString(text) || reDateRange.MatchString(first) {
		return constants.SchemaResumeBlock
	}
	if reDateRange.MatchString(text) {
		return constants.SchemaResumeBlock
	}
	return constants.SchemaGeneric
}
