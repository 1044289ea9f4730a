package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compiled analysis schemas, keyed by their JSON text; there is one per mode
var schemaCache sync.Map

// ValidateJSONAgainstSchema checks a normalized model answer against an
// analysis schema from BuildAnalysisJSONSchema. The returned error names the
// first offending location, e.g. "/tasks/0/questions/0".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := compileAnalysisSchema(schemaMap)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("analysis: decode answer: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("analysis: answer does not match schema: %w", err)
	}
	return nil
}

func compileAnalysisSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("analysis: marshal schema: %w", err)
	}
	if s, ok := schemaCache.Load(string(b)); ok {
		return s.(*jsonschema.Schema), nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("analysis.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("analysis: add schema: %w", err)
	}
	schema, err := compiler.Compile("analysis.json")
	if err != nil {
		return nil, fmt.Errorf("analysis: compile schema: %w", err)
	}
	schemaCache.Store(string(b), schema)
	return schema, nil
}
