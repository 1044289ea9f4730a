package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/perito/internal/common"
)

var reFence = regexp.MustCompile("(?m)^\\s*```[A-Za-z0-9_-]*\\s*$")

// SanitizeAndExtract recovers the JSON payload from a model answer.
//
// Code fences are stripped first. If what remains is not valid JSON, every
// balanced {...} block is tried in order of its opening brace and the first
// valid one wins. Answers with no usable object fail with EXTRACTION_PARSE
// carrying the raw text; there is no default payload.
func SanitizeAndExtract(raw string) ([]byte, error) {
	cleaned := strings.TrimSpace(reFence.ReplaceAllString(strings.TrimSpace(raw), ""))
	cleaned = strings.TrimSpace(strings.Trim(cleaned, "`"))

	if cleaned != "" && json.Valid([]byte(cleaned)) {
		return []byte(cleaned), nil
	}

	for start := strings.IndexByte(cleaned, '{'); start >= 0; {
		if block, ok := balancedObject(cleaned[start:]); ok && json.Valid([]byte(block)) {
			return []byte(block), nil
		}
		next := strings.IndexByte(cleaned[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, common.ExtractionParseError("no JSON object in model answer", raw, common.ErrNoPayload)
}

// balancedObject returns the {...} block that opens at s[0]. Braces inside
// string literals are ignored.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
