// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"casematch-workers/pkg/registry"

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

// ValidateInput validates input against a JSON schema document.
func ValidateInput(input map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	if len(schema) == 0 {
		return &ValidationResult{Valid: true}, nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return validateCompiled(compiled, input)
}

func validateCompiled(schema *gojsonschema.Schema, input map[string]interface{}) (*ValidationResult, error) {
	result, err := schema.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldPath(desc),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// fieldPath maps gojsonschema contexts ("(root).query.age") to dotted paths.
func fieldPath(desc gojsonschema.ResultError) string {
	field := "(root)"
	if desc.Context() != nil {
		field = desc.Context().String()
	}
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			field += "." + prop
		}
	}
	field = strings.TrimPrefix(field, "(root)")
	return strings.TrimPrefix(field, ".")
}

// RegistryValidator validates job variables against the input schema of each activity.
type RegistryValidator struct {
	mu       sync.RWMutex
	schemas  map[string]*gojsonschema.Schema
	registry *registry.ActivityRegistry
}

func NewRegistryValidator(reg *registry.ActivityRegistry) *RegistryValidator {
	return &RegistryValidator{
		schemas:  make(map[string]*gojsonschema.Schema),
		registry: reg,
	}
}

// Validate checks input against the activity registered for taskType.
// Task types without a registered schema pass.
func (v *RegistryValidator) Validate(taskType string, input map[string]interface{}) (*ValidationResult, error) {
	schema, err := v.schemaFor(taskType)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return &ValidationResult{Valid: true}, nil
	}
	return validateCompiled(schema, input)
}

func (v *RegistryValidator) schemaFor(taskType string) (*gojsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.schemas[taskType]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}

	var compiled *gojsonschema.Schema
	if v.registry != nil {
		if act, found := v.registry.FindByTaskType(taskType); found && len(act.InputSchema) > 0 {
			s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(act.InputSchema))
			if err != nil {
				return nil, fmt.Errorf("activity %s: invalid input schema: %w", act.ID, err)
			}
			compiled = s
		}
	}

	v.mu.Lock()
	v.schemas[taskType] = compiled
	v.mu.Unlock()
	return compiled, nil
}

var activityIDPattern = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+$`)

// ValidateActivityNaming validates activity ID follows naming convention
func ValidateActivityNaming(activityID string) error {
	if !activityIDPattern.MatchString(activityID) {
		return fmt.Errorf("activity ID must follow format: domain.subdomain.action (e.g., casematch.cases.rank)")
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
