// Package validation checks worker job variables against the JSON schemas declared in
// the activity registry.
package validation

import (
	"fmt"
	"sort"
	"strings"

	apperrors "devtogether/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// SchemaValidator holds a compiled JSON schema.
type SchemaValidator struct {
	schema *gojsonschema.Schema
}

// NewSchemaValidator compiles schema. A nil or empty schema accepts every document.
func NewSchemaValidator(schema map[string]interface{}) (*SchemaValidator, error) {
	if len(schema) == 0 {
		return &SchemaValidator{}, nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &SchemaValidator{schema: compiled}, nil
}

// Validate checks document, which may be a map, a struct or raw JSON bytes.
func (v *SchemaValidator) Validate(document interface{}) (*ValidationResult, error) {
	if v == nil || v.schema == nil {
		return &ValidationResult{Valid: true}, nil
	}

	var loader gojsonschema.JSONLoader
	switch doc := document.(type) {
	case []byte:
		loader = gojsonschema.NewBytesLoader(doc)
	case string:
		loader = gojsonschema.NewStringLoader(doc)
	default:
		loader = gojsonschema.NewGoLoader(doc)
	}

	result, err := v.schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	sort.Slice(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out, nil
}

// Check validates document and converts any violation into an INVALID_INPUT error.
func (v *SchemaValidator) Check(document interface{}) error {
	result, err := v.Validate(document)
	if err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}
	if result.Valid {
		return nil
	}
	return apperrors.NewInvalidInputError(result.Summary())
}

// Summary renders the errors as "field: message; ...".
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}
