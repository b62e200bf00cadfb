// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

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

// Schema is a compiled JSON Schema. It is safe for concurrent use.
type Schema struct {
	schema *gojsonschema.Schema
}

// CompileSchema compiles a schema decoded from JSON (for example a registry
// inputSchema).
func CompileSchema(schemaMap map[string]interface{}) (*Schema, error) {
	if len(schemaMap) == 0 {
		return nil, fmt.Errorf("empty schema")
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: compiled}, nil
}

// ValidateJSON validates a raw JSON document. The error is non-nil only when
// the document is not JSON at all.
func (s *Schema) ValidateJSON(document string) (*ValidationResult, error) {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

// Validate validates an already decoded Go value.
func (s *Schema) Validate(document interface{}) (*ValidationResult, error) {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	errors := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errors = append(errors, ValidationError{
			Field:   fieldOf(desc),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	// gojsonschema walks object properties in map order.
	sort.SliceStable(errors, func(i, j int) bool {
		if errors[i].Field != errors[j].Field {
			return errors[i].Field < errors[j].Field
		}
		return errors[i].Code < errors[j].Code
	})
	return &ValidationResult{Valid: result.Valid(), Errors: errors}
}

// fieldOf names the offending field. Required-property errors are reported
// against the parent object, so the missing property is appended.
func fieldOf(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() != "required" {
		return field
	}
	prop, ok := desc.Details()["property"].(string)
	if !ok || strings.HasSuffix(field, prop) {
		return field
	}
	if field == "(root)" || field == "" {
		return prop
	}
	return field + "." + prop
}

// Add appends an error produced outside the schema and marks the result invalid.
func (vr *ValidationResult) Add(field, message, code string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message, Code: code})
	vr.Valid = false
}

// ValidateActivityNaming validates activity ID follows naming convention
func ValidateActivityNaming(activityId string) error {
	namingPattern := regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+$`)
	if !namingPattern.MatchString(activityId) {
		return fmt.Errorf("activity ID must follow format: domain.subdomain.action (e.g., credit.application.analyze)")
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
