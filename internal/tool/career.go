// Package tool exposes the heuristic career-text extractors as MCP tools.
package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
	"github.com/joseph-ayodele/proof-extractor/internal/heuristic"
)

// MetadataDetectCareerSchema describes the detect_career_schema tool.
var MetadataDetectCareerSchema = &mcp.Tool{
	Name: "detect_career_schema",
	Description: "Classify the layout of free-form career text. Returns one of: " +
		"linkedin (a professional-network job card), resume_block (an upper-case header " +
		"followed by dates or bullets) or generic.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Plain text copied from a profile, resume or OCR output",
			},
		},
	},
}

// InputDetectCareerSchema is the input for the DetectCareerSchema tool.
type InputDetectCareerSchema struct {
	Text string `json:"text"`
}

// OutputDetectCareerSchema is the output for the DetectCareerSchema tool.
type OutputDetectCareerSchema struct {
	Schema constants.SchemaKind `json:"schema"`
}

// DetectCareerSchema runs the schema detector. Empty text is generic.
func DetectCareerSchema(_ context.Context, _ *mcp.CallToolRequest, input InputDetectCareerSchema) (*mcp.CallToolResult, OutputDetectCareerSchema, error) {
	return nil, OutputDetectCareerSchema{Schema: heuristic.Detect(input.Text)}, nil
}

// MetadataExtractCareerText describes the extract_career_text tool.
var MetadataExtractCareerText = &mcp.Tool{
	Name: "extract_career_text",
	Description: "Extract structured fields from career text without calling a model. " +
		"Job text is routed by detected layout; certificates, skills, milestones and " +
		"contributions use keyword and pattern rules. Fields that cannot be resolved " +
		"are returned as null (job) or \"Unknown\" (other proof types).",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"text", "proof_type"},
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Plain text of the proof document",
			},
			"proof_type": map[string]interface{}{
				"type":        "string",
				"description": "Which field set to extract",
				"enum":        constants.ProofTypeStrings(),
			},
		},
	},
}

// InputExtractCareerText is the input for the ExtractCareerText tool.
type InputExtractCareerText struct {
	Text      string `json:"text"`
	ProofType string `json:"proof_type"`
}

// OutputExtractCareerText is the output for the ExtractCareerText tool.
type OutputExtractCareerText struct {
	ProofType constants.ProofType  `json:"proof_type"`
	Schema    constants.SchemaKind `json:"schema,omitempty"`
	Fields    entity.Fields        `json:"fields"`
}

// ExtractCareerText runs the heuristic extractor for the requested proof type.
func ExtractCareerText(_ context.Context, _ *mcp.CallToolRequest, input InputExtractCareerText) (*mcp.CallToolResult, OutputExtractCareerText, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, OutputExtractCareerText{}, fmt.Errorf("text is required")
	}
	out, ok := heuristic.Extract(input.Text, constants.ProofType(input.ProofType))
	if !ok {
		return nil, OutputExtractCareerText{}, fmt.Errorf("invalid proof_type %q: must be one of: %s", input.ProofType, constants.ProofTypeList())
	}
	return nil, OutputExtractCareerText{
		ProofType: out.ProofType,
		Schema:    out.Schema,
		Fields:    out.Fields,
	}, nil
}

// NewServer returns an MCP server with every career tool registered.
func NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "proof-extractor", Version: version}, nil)
	mcp.AddTool(server, MetadataDetectCareerSchema, DetectCareerSchema)
	mcp.AddTool(server, MetadataExtractCareerText, ExtractCareerText)
	return server
}
