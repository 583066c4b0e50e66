// Package heuristic classifies free-form career text and pulls typed fields
// out of it with positional and lexical rules. Every function here is pure
// and total: unresolved fields come back unset or "Unknown", never as errors.
package heuristic

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Unknown is the placeholder for fields the keyword extractors cannot resolve.
const Unknown = "Unknown"

const (
	monthPattern = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*`
	datePattern  = `(?:` + monthPattern + `\s+)?\d{4}`
)

var (
	reDateRange     = regexp.MustCompile(`(?i)(` + datePattern + `)\s*[-–]\s*(` + datePattern + `|Present)`)
	reSeparator     = regexp.MustCompile(`\s*[·•]\s*`)
	reSeparatorChar = regexp.MustCompile(`[·•]`)
	reDuration      = regexp.MustCompile(`\d+\s+yrs?\b|\d+\s+mos?\b`)
	reCapsHeader    = regexp.MustCompile(`^[A-Z][A-Z\s\d\.\-]{8,}$`)
	reBulletLine    = regexp.MustCompile(`(?m)^\s*[•●\-\*]`)
	reBulletStart   = regexp.MustCompile(`^[•●\-\*]`)
	reYear          = regexp.MustCompile(`\b\d{4}\b`)
	reMonthYear     = regexp.MustCompile(monthPattern + `\s+\d{4}`)
	reDateToken     = regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec|\d{4})\b`)
	reParenthetical = regexp.MustCompile(`\s*[\(\[].*?[\)\]]`)
	reYearOnward    = regexp.MustCompile(`\s*\d{4}[\s\S]*$`)
	reCompanyShape  = regexp.MustCompile(`^[A-Z][a-zA-Z\s&\.,\-]{2,40}$`)
	reURL           = regexp.MustCompile(`https?://[^\s]+`)
)

// EmploymentTypes is the token vocabulary scanned for in job text, in priority order.
var EmploymentTypes = []string{
	"full-time", "part-time", "contract", "freelance",
	"internship", "seasonal", "self-employed", "remote",
}

// DateRange returns the first "<start> - <end>" range in s.
func DateRange(s string) (string, bool) {
	m := reDateRange.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1] + " - " + m[2], true
}

// ContainsEmploymentType reports whether s mentions any employment-type token.
func ContainsEmploymentType(s string) bool {
	_, ok := EmploymentTypeIn(s)
	return ok
}

// EmploymentTypeIn returns the first vocabulary token (in vocabulary order)
// that appears anywhere in s, case-insensitively.
func EmploymentTypeIn(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, t := range EmploymentTypes {
		if strings.Contains(lower, t) {
			return t, true
		}
	}
	return "", false
}

// nonEmptyLines splits on any newline convention and drops blank lines.
func nonEmptyLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func prefixRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// isUpper is true when s has at least one cased letter and no lowercase ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

func isHeader(line string) bool {
	return isUpper(line) || reCapsHeader.MatchString(line)
}

// keyword returns the first word found in text case-insensitively, or Unknown.
func keyword(text string, words []string) string {
	lower := strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return w
		}
	}
	return Unknown
}

type needle struct {
	match string // lowercase substring
	value string
}

func lookup(text string, needles []needle) string {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lower, n.match) {
			return n.value
		}
	}
	return Unknown
}

// find returns the first capture group of re in text (or the whole match when
// re has no groups), or Unknown.
func find(text string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Unknown
	}
	if len(m) > 1 {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
		return Unknown
	}
	return m[0]
}

func firstLineOr(lines []string, def string) string {
	if len(lines) == 0 {
		return def
	}
	return lines[0]
}
