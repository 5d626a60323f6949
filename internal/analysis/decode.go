package analysis

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spigell/career-advisor/internal/apperr"
)

// Decode parses the raw model reply and validates it. A reply that is not JSON yields a
// MalformedResponseError carrying the raw text; a reply of the wrong shape yields a
// SchemaViolationError.
func Decode(raw string) (*Analysis, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, &apperr.MalformedResponseError{Raw: raw, Cause: errors.New("empty response")}
	}

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, &apperr.MalformedResponseError{Raw: raw, Cause: err}
	}

	return Validate(doc)
}

// extractJSON strips the markdown fences some models put around JSON replies.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
