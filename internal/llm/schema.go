package llm

import (
	"github.com/joseph-ayodele/perito/constants"
)

// BuildAnalysisJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is embedded in the prompt and used locally to validate the answer.
func BuildAnalysisJSONSchema(kinds []constants.TaskKind) map[string]any {
	if len(kinds) == 0 {
		kinds = constants.AllTaskKinds()
	}

	metadata := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"case_number": nullableString(),
			"plaintiff":   nullableString(),
			"defendant":   nullableString(),
			"court":       nullableString(),
		},
	}

	task := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"kind":        map[string]any{"type": "string", "enum": constants.TaskKindsAsStrings(kinds)},
			"source_page": map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string"},
			"title":       map[string]any{"type": "string"},
			"event_date":  map[string]any{"type": "string"},
			"questions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
			"party":            map[string]any{"type": "string"},
			"relevant_excerpt": map[string]any{"type": "string"},
		},
		"required": []string{"kind", "source_page", "description"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"summary":  map[string]any{"type": "string"},
			"metadata": metadata,
			"tasks":    map[string]any{"type": "array", "items": task},
		},
		"required": []string{"tasks"},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}
