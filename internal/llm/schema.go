package llm

// BuildProofJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// service response of one contract. Every declared field is required and may
// be null; vocabulary fields are enums. The confidence object is optional and
// may only name declared fields.
func BuildProofJSONSchema(c ProofContract) map[string]any {
	props := make(map[string]any, len(c.Fields)+1)
	scores := make(map[string]any, len(c.Fields))
	for _, f := range c.Fields {
		props[f.Name] = fieldProp(f)
		scores[f.Name] = map[string]any{
			"type":    []any{"number", "null"},
			"minimum": 0.0,
			"maximum": 1.0,
		}
	}
	props[ConfidenceKey] = map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           scores,
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             c.FieldNames(),
	}
}

func fieldProp(f FieldSpec) map[string]any {
	p := map[string]any{"type": []any{"string", "null"}}
	if len(f.Vocabulary) > 0 {
		enum := make([]any, 0, len(f.Vocabulary)+1)
		for _, v := range f.Vocabulary {
			enum = append(enum, v)
		}
		p["enum"] = append(enum, nil)
	}
	return p
}
