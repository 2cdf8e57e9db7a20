package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Dr-Musa/najah-realestate/pkg/registry"
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

// Validator checks documents against one compiled JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator(schema map[string]interface{}) (*Validator, error) {
	if len(schema) == 0 {
		return &Validator{}, nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// ForTaskType compiles the input schema the registry declares for taskType.
func ForTaskType(reg *registry.ActivityRegistry, taskType string) (*Validator, error) {
	act, ok := reg.FindByTaskType(taskType)
	if !ok {
		return nil, fmt.Errorf("task type %q not in activity registry", taskType)
	}
	return NewValidator(act.InputSchema)
}

// Validate checks doc, which may be any value encoding/json could marshal.
func (v *Validator) Validate(doc interface{}) (*ValidationResult, error) {
	if v == nil || v.schema == nil {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}
