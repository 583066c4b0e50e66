package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/llm"
)

const maxReasonBytes = 512

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Source *blockSource `json:"source,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type blockSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Call implements llm.DocumentCaller with one POST to /messages. PDFs are sent
// as a document block, everything else as an image block.
func (c *Client) Call(ctx context.Context, req llm.DocumentRequest) llm.Outcome {
	start := time.Now()
	if !c.Configured() {
		return llm.Permanent(0, "ANTHROPIC_API_KEY is not set")
	}

	c.logger.Info("llm.extract.start",
		"req_id", req.RequestID,
		"model", c.cfg.Model,
		"proof_type", req.ProofType,
		"mime_type", req.MimeType,
		"bytes", len(req.Data),
	)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/messages"
	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": APIVersion,
	}
	resp, err := llm.PostJSON(ctx, c.http, endpoint, c.buildPayload(req), headers, c.logger)
	if err != nil {
		kind := llm.ClassifyTransportError(err)
		c.logger.Warn("llm.extract.transport_error",
			"req_id", req.RequestID, "kind", kind.String(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Outcome{Kind: kind, Reason: fmt.Sprintf("anthropic request: %v", err)}
	}

	if kind := llm.ClassifyStatus(resp.Status); kind != llm.OutcomeOK {
		reason := fmt.Sprintf("anthropic status %d: %s", resp.Status, truncate(resp.Body))
		c.logger.Warn("llm.extract.http_error",
			"req_id", req.RequestID, "kind", kind.String(), "status", resp.Status,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Outcome{Kind: kind, Status: resp.Status, Reason: reason}
	}

	var mr messagesResponse
	if err := json.Unmarshal(resp.Body, &mr); err != nil {
		c.logger.Error("llm.extract.decode_error", "req_id", req.RequestID, "error", err, "raw_bytes", len(resp.Body))
		return llm.Permanent(resp.Status, fmt.Sprintf("decode anthropic response: %v", err))
	}
	if len(mr.Content) == 0 || strings.TrimSpace(mr.Content[0].Text) == "" {
		c.logger.Error("llm.extract.no_content", "req_id", req.RequestID, "raw", truncate(resp.Body))
		return llm.Permanent(resp.Status, "no text content in anthropic response")
	}

	c.logger.Info("llm.extract.ok",
		"req_id", req.RequestID,
		"proof_type", req.ProofType,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.OK(mr.Content[0].Text)
}

func (c *Client) buildPayload(req llm.DocumentRequest) messagesRequest {
	blockType := "image"
	if req.MimeType == constants.MimePDF {
		blockType = "document"
	}
	return messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: blockType,
					Source: &blockSource{
						Type:      "base64",
						MediaType: req.MimeType,
						Data:      base64.StdEncoding.EncodeToString(req.Data),
					},
				},
				{Type: "text", Text: req.Prompt},
			},
		}},
	}
}

func truncate(b []byte) string {
	if len(b) > maxReasonBytes {
		return string(b[:maxReasonBytes]) + "…"
	}
	return string(b)
}
