package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/perito/constants"
)

var (
	topLevelKeys = map[string]struct{}{"summary": {}, "metadata": {}, "tasks": {}}
	metadataKeys = map[string]struct{}{"case_number": {}, "plaintiff": {}, "defendant": {}, "court": {}}
	taskKeys     = map[string]struct{}{
		"kind": {}, "source_page": {}, "description": {}, "title": {}, "event_date": {},
		"questions": {}, "party": {}, "relevant_excerpt": {},
	}

	// field names the model borrows from the Portuguese vocabulary
	keySynonyms = map[string]string{
		"resumo":          "summary",
		"resumo_caso":     "summary",
		"tarefas":         "tasks",
		"tipo":            "kind",
		"type":            "kind",
		"pagina":          "source_page",
		"page":            "source_page",
		"descricao":       "description",
		"titulo":          "title",
		"data_evento":     "event_date",
		"quesitos":        "questions",
		"parte":           "party",
		"dados_para_doc":  "relevant_excerpt",
		"numero_processo": "case_number",
		"autor":           "plaintiff",
		"reu":             "defendant",
		"vara":            "court",
	}
)

// NormalizeAnalysisJSON
// - Renames known synonyms (tipo -> kind, pagina -> source_page, ...)
// - Canonicalizes task kinds (NOMEACAO -> APPOINTMENT)
// - Coerces numeric page labels to strings
// - Splits a questions string into one question per line
// - Drops nulls on optionals and removes unknown keys
//
// Values of the wrong shape (an object where a question or a metadata string
// belongs) are left untouched so that schema validation rejects the answer.
func NormalizeAnalysisJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("normalize: decode: %w", err)
	}

	var dropped []string
	renameKeys(m, "", &dropped)
	stripUnknown(m, topLevelKeys, "", &dropped)

	if s, ok := m["summary"].(string); ok {
		m["summary"] = strings.TrimSpace(s)
	}

	switch md := m["metadata"].(type) {
	case map[string]any:
		renameKeys(md, "metadata.", &dropped)
		stripUnknown(md, metadataKeys, "metadata.", &dropped)
		for k, v := range md {
			switch t := v.(type) {
			case nil:
			case string:
				if s := strings.TrimSpace(t); s == "" {
					md[k] = nil
				} else {
					md[k] = s
				}
			case float64:
				md[k] = strconv.FormatFloat(t, 'f', -1, 64)
			}
		}
	case nil:
		delete(m, "metadata")
	}

	switch ts := m["tasks"].(type) {
	case []any:
		for i, item := range ts {
			if t, ok := item.(map[string]any); ok {
				normalizeTask(t, fmt.Sprintf("tasks[%d].", i), &dropped)
			}
		}
	case nil:
		m["tasks"] = []any{}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("normalize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.analyze.normalize", "dropped", dropped)
	}
	return out, dropped, nil
}

func normalizeTask(t map[string]any, prefix string, dropped *[]string) {
	renameKeys(t, prefix, dropped)
	stripUnknown(t, taskKeys, prefix, dropped)

	if s, ok := t["kind"].(string); ok {
		if k, known := constants.CanonicalizeTaskKind(s); known {
			t["kind"] = string(k)
		}
	}

	switch p := t["source_page"].(type) {
	case float64:
		t["source_page"] = strconv.FormatFloat(p, 'f', -1, 64)
	case string:
		t["source_page"] = strings.TrimSpace(p)
	}

	if q, ok := t["questions"]; ok {
		switch v := q.(type) {
		case nil:
			t["questions"] = []any{}
		case string:
			t["questions"] = splitQuestions(v)
		case []any:
			kept := make([]any, 0, len(v))
			for _, item := range v {
				s, isStr := item.(string)
				switch {
				case !isStr:
					kept = append(kept, item)
				case strings.TrimSpace(s) != "":
					kept = append(kept, strings.TrimSpace(s))
				}
			}
			t["questions"] = kept
		}
	}

	if d, ok := t["description"]; ok && d == nil {
		t["description"] = ""
	}
	for _, k := range []string{"title", "event_date", "party", "relevant_excerpt"} {
		if v, ok := t[k]; ok {
			if v == nil {
				delete(t, k)
				*dropped = append(*dropped, prefix+k+"(null)")
			} else if s, isStr := v.(string); isStr {
				t[k] = strings.TrimSpace(s)
			}
		}
	}
}

func renameKeys(m map[string]any, prefix string, dropped *[]string) {
	for from, to := range keySynonyms {
		v, ok := m[from]
		if !ok {
			continue
		}
		// don't overwrite existing value if already present
		if _, exists := m[to]; !exists {
			m[to] = v
		}
		delete(m, from)
		*dropped = append(*dropped, prefix+from+"->"+to)
	}
}

func stripUnknown(m map[string]any, allowed map[string]struct{}, prefix string, dropped *[]string) {
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			*dropped = append(*dropped, prefix+k+"(unknown)")
		}
	}
}

// splitQuestions turns a newline separated block into a question list.
func splitQuestions(s string) []any {
	out := []any{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
