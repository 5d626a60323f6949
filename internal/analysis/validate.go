package analysis

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/career-advisor/internal/apperr"
)

//go:embed schema.json
var schemaJSON []byte

const rootField = "(root)"

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Schema returns the JSON schema an analysis must satisfy.
func Schema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

// Validate checks a decoded JSON document against the analysis schema and returns the typed result.
// Unknown fields are ignored and empty arrays are accepted.
func Validate(raw any) (*Analysis, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile analysis schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate analysis: %w", err)
	}

	if !result.Valid() {
		return nil, newSchemaViolation(result.Errors())
	}

	var out Analysis
	if err := mapstructure.Decode(raw, &out); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	out.normalize()

	return &out, nil
}

func newSchemaViolation(errs []gojsonschema.ResultError) *apperr.SchemaViolationError {
	violations := make([]apperr.Violation, 0, len(errs))
	for _, desc := range errs {
		violations = append(violations, apperr.Violation{
			Field:  fieldPath(desc),
			Reason: reason(desc),
		})
	}

	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Field < violations[j].Field
	})

	first := violations[0]
	return &apperr.SchemaViolationError{
		Field:      first.Field,
		Reason:     first.Reason,
		Violations: violations,
	}
}

// fieldPath renders a gojsonschema context such as "recommended_paths.1" plus the
// missing property as "recommended_paths[1].required_skills".
func fieldPath(desc gojsonschema.ResultError) string {
	context := strings.TrimPrefix(desc.Field(), rootField)
	context = strings.TrimPrefix(context, ".")

	var segments []string
	if context != "" {
		segments = strings.Split(context, ".")
	}

	if desc.Type() == "required" {
		if property, ok := desc.Details()["property"].(string); ok && property != "" {
			segments = append(segments, property)
		}
	}

	var b strings.Builder
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			b.WriteString("[")
			b.WriteString(segment)
			b.WriteString("]")
			continue
		}
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(segment)
	}

	if b.Len() == 0 {
		return rootField
	}
	return b.String()
}

func reason(desc gojsonschema.ResultError) string {
	switch desc.Type() {
	case "required":
		return "is required"
	case "invalid_type":
		return fmt.Sprintf("expected %v, got %v", desc.Details()["expected"], desc.Details()["given"])
	default:
		return desc.Description()
	}
}
