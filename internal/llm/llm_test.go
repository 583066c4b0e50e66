package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/proof-extractor/constants"
)

func jobContract(t *testing.T) ProofContract {
	t.Helper()
	c, ok := ContractFor(constants.ProofJob)
	require.True(t, ok)
	return c
}

func TestContractsCoverEveryProofType(t *testing.T) {
	for _, pt := range constants.ProofTypes() {
		c, ok := ContractFor(pt)
		require.True(t, ok, pt)
		assert.Equal(t, pt, c.ProofType)
		assert.NotEmpty(t, c.Fields)
	}
	_, ok := ContractFor("resume")
	assert.False(t, ok)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(jobContract(t))

	assert.True(t, strings.HasPrefix(p, "Extract job details from this document."))
	for _, f := range []string{"job_title", "company", "employment_type", "date_range", "location", "job_category"} {
		assert.Contains(t, p, `"`+f+`": "...",`)
		assert.Contains(t, p, `"`+f+`": 0.0`)
	}
	assert.Contains(t, p, "employment_type must be one of: full-time, part-time, intern, contributor, contract")
	assert.Contains(t, p, "Use null for any field you cannot find")
	assert.NotContains(t, p, "0.0,\n  }")
}

func validJobDoc() map[string]any {
	return map[string]any{
		"job_title":       "Community Lead",
		"company":         "EkoLance",
		"employment_type": "part-time",
		"date_range":      "Nov 2022 - Jan 2025",
		"location":        nil,
		"job_category":    "Community",
		"confidence": map[string]any{
			"job_title":       0.95,
			"company":         0.9,
			"employment_type": 0.8,
			"date_range":      0.85,
			"location":        nil,
			"job_category":    0.6,
		},
	}
}

func TestSchemaValidator(t *testing.T) {
	v, err := NewSchemaValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(map[string]any)
		wantErr bool
	}{
		{"valid", func(map[string]any) {}, false},
		{"null vocabulary value", func(d map[string]any) { d["employment_type"] = nil }, false},
		{"confidence omitted", func(d map[string]any) { delete(d, "confidence") }, false},
		{"missing declared key", func(d map[string]any) { delete(d, "location") }, true},
		{"out of vocabulary", func(d map[string]any) { d["employment_type"] = "gig" }, true},
		{"extra key", func(d map[string]any) { d["salary"] = "1" }, true},
		{"non string value", func(d map[string]any) { d["company"] = 12.0 }, true},
		{"confidence above one", func(d map[string]any) { d["confidence"].(map[string]any)["company"] = 1.5 }, true},
		{"confidence below zero", func(d map[string]any) { d["confidence"].(map[string]any)["company"] = -0.1 }, true},
		{"confidence not an object", func(d map[string]any) { d["confidence"] = "high" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validJobDoc()
			tt.mutate(doc)
			err := v.Validate(constants.ProofJob, doc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Error(t, v.Validate("resume", validJobDoc()))
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```json\n{\"a\":1}```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFences(tt.in))
	}
}

func TestDecodeProofDocument(t *testing.T) {
	doc, err := DecodeProofDocument("```json\n{\"job_title\": \"Engineer\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", doc["job_title"])

	_, err = DecodeProofDocument("null")
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = DecodeProofDocument("[1,2]")
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = DecodeProofDocument("I could not read this document.")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotObject)
}

func TestNormalizeProofDocument(t *testing.T) {
	c := jobContract(t)
	doc := validJobDoc()
	doc["employment_type"] = "Full Time"
	doc["company"] = "  EkoLance  "
	doc["location"] = "   "
	doc["job_category"] = 7.0
	doc["notes"] = "extra"
	doc["confidence"].(map[string]any)["salary"] = 0.1

	changed := NormalizeProofDocument(c, doc, nil)

	assert.Equal(t, "full-time", doc["employment_type"])
	assert.Equal(t, "EkoLance", doc["company"])
	assert.Nil(t, doc["location"])
	assert.Contains(t, doc, "location")
	assert.Equal(t, "7", doc["job_category"])
	assert.NotContains(t, doc, "notes")
	assert.NotContains(t, doc["confidence"], "salary")
	assert.Contains(t, changed, "notes(unknown)")
	assert.Contains(t, changed, "employment_type(canonical)")

	v, err := NewSchemaValidator()
	require.NoError(t, err)
	assert.NoError(t, v.Validate(constants.ProofJob, doc))
}

func TestNormalizeKeepsMissingKeysMissing(t *testing.T) {
	doc := validJobDoc()
	delete(doc, "company")
	doc["confidence"] = nil

	NormalizeProofDocument(jobContract(t), doc, nil)

	assert.NotContains(t, doc, "company")
	assert.NotContains(t, doc, ConfidenceKey)
}

func TestDocumentFields(t *testing.T) {
	fields, conf := DocumentFields(jobContract(t), validJobDoc())

	assert.Len(t, fields, 6)
	assert.Equal(t, "EkoLance", fields.Value("company"))
	assert.Contains(t, fields, "location")
	assert.Nil(t, fields["location"])
	assert.InDelta(t, 0.9, conf["company"], 1e-9)
	_, ok := conf["location"]
	assert.False(t, ok)
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   OutcomeKind
	}{
		{200, OutcomeOK},
		{204, OutcomeOK},
		{400, OutcomePermanent},
		{401, OutcomePermanent},
		{403, OutcomePermanent},
		{404, OutcomePermanent},
		{429, OutcomeTransient},
		{500, OutcomeTransient},
		{503, OutcomeTransient},
		{529, OutcomeTransient},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.status))
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want OutcomeKind
	}{
		{"nil", nil, OutcomeOK},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), OutcomeTransient},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, OutcomeTransient},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), OutcomeTransient},
		{"eof", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), OutcomeTransient},
		{"timeout", timeoutErr{}, OutcomeTransient},
		{"other", errors.New("unsupported protocol scheme"), OutcomePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTransportError(tt.err))
		})
	}
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "v", r.Header.Get("X-Test"))
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer srv.Close()

	resp, err := PostJSON(context.Background(), srv.Client(), srv.URL, map[string]string{"a": "b"}, map[string]string{"X-Test": "v"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.Status)
	assert.JSONEq(t, `{"error":"slow down"}`, string(resp.Body))
}
