package heuristic

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

// Certificate record field names.
const (
	FieldCertificateTitle = "certificate_title"
	FieldRecipientName    = "recipient_name"
	FieldIssuer           = "issuer"
	FieldIssuerSignatory  = "issuer_signatory"
	FieldIssuerTitle      = "issuer_title"
	FieldIssueDate        = "issue_date"
	FieldCredentialType   = "credential_type"
	FieldVerificationURL  = "verification_url"
	FieldProgramDuration  = "program_duration"
)

var certificateFields = []string{
	FieldCertificateTitle,
	FieldRecipientName,
	FieldIssuer,
	FieldIssuerSignatory,
	FieldIssuerTitle,
	FieldIssueDate,
	FieldCredentialType,
	FieldVerificationURL,
	FieldProgramDuration,
}

const signatoryTitles = `Executive Director|Chief Executive Officer|Program Director|Founder|Instructor|President|CEO|Director`

var (
	reCredentialType = regexp.MustCompile(`(?i)\b(Developer Certification|Professional Certificate|Certificate of Completion|Certificate of Achievement|Certification|Certificate|Bootcamp|Workshop|Course|Award)\b`)
	reIssueDate      = regexp.MustCompile(`(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}`)
	reSignatory      = regexp.MustCompile(`([A-Z][a-zA-Z'\-]+ [A-Z][a-zA-Z'\-]+)\s*,?\s*(?:` + signatoryTitles + `)\b`)
	reSignatoryTitle = regexp.MustCompile(`\b(` + signatoryTitles + `)\b`)
	reVerifyURL      = regexp.MustCompile(`https://[^\s]+`)
	reDurationHours  = regexp.MustCompile(`(\d+)\s+hours`)
)

// knownIssuers is matched in order against the lowercased text.
var knownIssuers = []needle{
	{"freecodecamp", "freeCodeCamp"},
	{"coursera", "Coursera"},
	{"udemy", "Udemy"},
	{"udacity", "Udacity"},
	{"linkedin learning", "LinkedIn Learning"},
	{"edx", "edX"},
	{"datacamp", "DataCamp"},
	{"pluralsight", "Pluralsight"},
	{"hackerrank", "HackerRank"},
	{"alx africa", "ALX Africa"},
	{"andela", "Andela"},
	{"amazon web services", "Amazon Web Services"},
	{"microsoft", "Microsoft"},
	{"google", "Google"},
}

var knownSignatories = []string{"Quincy Larson"}

// ExtractCertificate reads a completion certificate. It does not depend on
// schema detection; each field comes from its own pattern over the text
// with lines joined by spaces, and defaults to Unknown.
func ExtractCertificate(text string) entity.Fields {
	f := make(entity.Fields, len(certificateFields))
	for _, name := range certificateFields {
		f.Set(name, Unknown)
	}

	lines := nonEmptyLines(text)
	full := strings.Join(lines, " ")

	if issuer := lookup(full, knownIssuers); issuer != Unknown {
		f.Set(FieldIssuer, issuer)
	}
	if v, ok := lineAfter(lines, "certifies that"); ok {
		f.Set(FieldRecipientName, v)
	}
	if v, ok := lineAfter(lines, "successfully completed"); ok {
		f.Set(FieldCertificateTitle, v)
	}

	f.Set(FieldCredentialType, find(full, reCredentialType))
	if d := reIssueDate.FindString(full); d != "" {
		f.Set(FieldIssueDate, d)
	}
	f.Set(FieldIssuerTitle, find(full, reSignatoryTitle))
	f.Set(FieldIssuerSignatory, signatory(full))
	f.Set(FieldVerificationURL, find(full, reVerifyURL))

	if m := reDurationHours.FindStringSubmatch(full); m != nil {
		f.Set(FieldProgramDuration, m[1]+" hours")
	}
	return f
}

// lineAfter returns the line following the first line containing marker.
func lineAfter(lines []string, marker string) (string, bool) {
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), marker) {
			if i+1 < len(lines) {
				return lines[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

func signatory(full string) string {
	if m := reSignatory.FindStringSubmatch(full); m != nil {
		return m[1]
	}
	for _, name := range knownSignatories {
		if strings.Contains(full, name) {
			return name
		}
	}
	return Unknown
}
