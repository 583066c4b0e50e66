package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/proof-extractor/constants"
)

// SchemaValidator holds one compiled schema per proof type.
type SchemaValidator struct {
	schemas map[constants.ProofType]*jsonschema.Schema
}

// NewSchemaValidator compiles the schema of every known contract.
func NewSchemaValidator() (*SchemaValidator, error) {
	v := &SchemaValidator{schemas: make(map[constants.ProofType]*jsonschema.Schema, len(contracts))}
	for pt, c := range contracts {
		s, err := compileSchema("proof-"+string(pt)+".json", BuildProofJSONSchema(c))
		if err != nil {
			return nil, fmt.Errorf("proof type %s: %w", pt, err)
		}
		v.schemas[pt] = s
	}
	return v, nil
}

// Validate checks doc against the schema for pt.
func (v *SchemaValidator) Validate(pt constants.ProofType, doc map[string]any) error {
	s, ok := v.schemas[pt]
	if !ok {
		return fmt.Errorf("no schema for proof type %q", pt)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
