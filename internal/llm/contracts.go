package llm

import (
	"context"

	"github.com/joseph-ayodele/proof-extractor/constants"
)

// DocumentRequest is one extraction attempt against a document-understanding service.
type DocumentRequest struct {
	RequestID string
	ProofType constants.ProofType
	MimeType  string
	Data      []byte // raw document bytes, encoded by the caller implementation
	Prompt    string
}

// OutcomeKind tags the result of a single call.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeTransient
	OutcomePermanent
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeTransient:
		return "transient"
	case OutcomePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of DocumentCaller.Call. Text is set only for
// OutcomeOK; Reason describes failures. Status is the HTTP status when the
// service answered at all, zero otherwise.
type Outcome struct {
	Kind   OutcomeKind
	Text   string
	Status int
	Reason string
}

func OK(text string) Outcome { return Outcome{Kind: OutcomeOK, Text: text} }

func Transient(status int, reason string) Outcome {
	return Outcome{Kind: OutcomeTransient, Status: status, Reason: reason}
}

func Permanent(status int, reason string) Outcome {
	return Outcome{Kind: OutcomePermanent, Status: status, Reason: reason}
}

// DocumentCaller is the interface the extraction orchestrator depends on.
// Call never returns an error; every failure is folded into the outcome kind.
type DocumentCaller interface {
	Call(ctx context.Context, req DocumentRequest) Outcome
	// Configured reports whether credentials are present.
	Configured() bool
}
