package constants

// SchemaKind is the detected structural layout of free-form career text.
type SchemaKind string

const (
	SchemaLinkedIn    SchemaKind = "linkedin"
	SchemaResumeBlock SchemaKind = "resume_block"
	SchemaGeneric     SchemaKind = "generic"
)
