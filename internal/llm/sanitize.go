package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/entity"
)

var reCodeFence = regexp.MustCompile("(?m)^```json|^```|```$")

// ErrNotObject is returned when the response parses but is not a JSON object.
var ErrNotObject = errors.New("response is not a JSON object")

// StripCodeFences removes stray markdown fence markers around a JSON answer.
func StripCodeFences(raw string) string {
	return strings.TrimSpace(reCodeFence.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// DecodeProofDocument strips fences and parses text as a JSON object. A
// literal null, an array or a scalar yields ErrNotObject.
func DecodeProofDocument(text string) (map[string]any, error) {
	cleaned := StripCodeFences(text)
	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return m, nil
}

// NormalizeProofDocument prepares a decoded response for strict validation:
//   - unknown top-level keys and unknown confidence keys are removed
//   - string values are trimmed; blank strings become null
//   - numeric field values are rendered as strings
//   - vocabulary values are canonicalized case-insensitively
//
// Missing declared keys are left missing so validation rejects them. The
// returned list names every change, for logging.
func NormalizeProofDocument(c ProofContract, doc map[string]any, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	changed := make([]string, 0, 4)

	for k := range maps.Clone(doc) {
		if k == ConfidenceKey {
			continue
		}
		if _, ok := c.Field(k); !ok {
			delete(doc, k)
			changed = append(changed, k+"(unknown)")
		}
	}

	for _, f := range c.Fields {
		v, ok := doc[f.Name]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				doc[f.Name] = nil
				changed = append(changed, f.Name+"(empty)")
				continue
			}
			if len(f.Vocabulary) > 0 {
				if canon, ok := constants.Canonicalize(s, f.Vocabulary); ok && canon != s {
					s = canon
					changed = append(changed, f.Name+"(canonical)")
				}
			}
			doc[f.Name] = s
		case float64:
			doc[f.Name] = strconv.FormatFloat(t, 'f', -1, 64)
			changed = append(changed, f.Name+"(number)")
		}
	}

	switch scores := doc[ConfidenceKey].(type) {
	case nil:
		if _, present := doc[ConfidenceKey]; present {
			delete(doc, ConfidenceKey)
			changed = append(changed, ConfidenceKey+"(null)")
		}
	case map[string]any:
		for k := range maps.Clone(scores) {
			if _, ok := c.Field(k); !ok {
				delete(scores, k)
				changed = append(changed, ConfidenceKey+"."+k+"(unknown)")
			}
		}
	}

	if len(changed) > 0 {
		slices.Sort(changed)
		logger.Warn("llm.extract.normalize_sanitize", "proof_type", c.ProofType, "changed", changed)
	}
	return changed
}

// DocumentFields splits a validated document into the declared field record
// and the confidence map. Null or absent scores are left out of the map.
func DocumentFields(c ProofContract, doc map[string]any) (entity.Fields, entity.Confidence) {
	fields := entity.NewFields(c.FieldNames()...)
	for _, name := range c.FieldNames() {
		if s, ok := doc[name].(string); ok {
			fields.Set(name, s)
		}
	}

	conf := make(entity.Confidence, len(c.Fields))
	if scores, ok := doc[ConfidenceKey].(map[string]any); ok {
		for _, name := range c.FieldNames() {
			if f, ok := scores[name].(float64); ok {
				conf[name] = f
			}
		}
	}
	return fields, conf
}
