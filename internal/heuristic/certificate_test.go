package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCertificate(t *testing.T) {
	text := `freeCodeCamp
This certifies that
Jane Doe
has successfully completed the
Developer Certification
on August 12, 2024, representing approximately 300 hours of work
Quincy Larson
Executive Director
Verify this certification at https://freecodecamp.org/certification/janedoe/dev`

	f := ExtractCertificate(text)

	assert.Equal(t, "freeCodeCamp", f.Value(FieldIssuer))
	assert.Equal(t, "Jane Doe", f.Value(FieldRecipientName))
	assert.Equal(t, "Developer Certification", f.Value(FieldCertificateTitle))
	assert.Equal(t, "Developer Certification", f.Value(FieldCredentialType))
	assert.Equal(t, "August 12, 2024", f.Value(FieldIssueDate))
	assert.Equal(t, "Quincy Larson", f.Value(FieldIssuerSignatory))
	assert.Equal(t, "Executive Director", f.Value(FieldIssuerTitle))
	assert.Equal(t, "https://freecodecamp.org/certification/janedoe/dev", f.Value(FieldVerificationURL))
	assert.Equal(t, "300 hours", f.Value(FieldProgramDuration))
}

func TestExtractCertificateDefaultsToUnknown(t *testing.T) {
	for _, text := range []string{"", "nothing useful here", "This certifies that"} {
		f := ExtractCertificate(text)
		assert.Len(t, f, len(certificateFields))
		for _, name := range certificateFields {
			assert.Equal(t, Unknown, f.Value(name), "text %q field %s", text, name)
		}
	}
}

func TestExtractCertificateOtherIssuer(t *testing.T) {
	text := "Coursera\nCertificate of Completion\nThis certifies that\nAda Obi\nhas successfully completed\nMachine Learning Foundations\nMarch 3, 2023\nAndrew Ng, Instructor"

	f := ExtractCertificate(text)

	assert.Equal(t, "Coursera", f.Value(FieldIssuer))
	assert.Equal(t, "Ada Obi", f.Value(FieldRecipientName))
	assert.Equal(t, "Machine Learning Foundations", f.Value(FieldCertificateTitle))
	assert.Equal(t, "Certificate of Completion", f.Value(FieldCredentialType))
	assert.Equal(t, "March 3, 2023", f.Value(FieldIssueDate))
	assert.Equal(t, "Andrew Ng", f.Value(FieldIssuerSignatory))
	assert.Equal(t, "Instructor", f.Value(FieldIssuerTitle))
	assert.Equal(t, Unknown, f.Value(FieldProgramDuration))
}
