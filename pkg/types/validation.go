package types

import "fmt"

// Validation error codes. Each violation category reports a distinct code
// so callers can react programmatically.
const (
	CodeTypeMismatch    = "type-mismatch"
	CodeEnumViolation   = "enum-violation"
	CodeRangeViolation  = "range-violation"
	CodeLengthViolation = "length-violation"
	CodePatternMismatch = "pattern-violation"
	CodeRequiredMissing = "required-missing"
	CodeUnknownField    = "unknown-field"
	CodeDeprecatedField = "deprecated-field"
	CodeDependency      = "dependency-conflict"
	CodeInvalidName     = "invalid-name"
	CodeInvalidVersion  = "invalid-version"
)

// FieldError is a blocking validation failure scoped to one field path.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
}

// FieldWarning is a non-blocking validation finding.
type FieldWarning struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w FieldWarning) String() string {
	return fmt.Sprintf("%s: %s (%s)", w.Field, w.Message, w.Code)
}

// Suggestion proposes a correction for a warning, typically a close field
// name for an unknown key.
type Suggestion struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult aggregates the outcome of validating a document or a
// full system configuration. Warnings and suggestions never block
// persistence; errors do.
type ValidationResult struct {
	IsValid     bool           `json:"isValid"`
	Errors      []FieldError   `json:"errors"`
	Warnings    []FieldWarning `json:"warnings"`
	Suggestions []Suggestion   `json:"suggestions"`
}

// NewValidationResult creates an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

// AddError records a blocking failure and marks the result invalid.
func (r *ValidationResult) AddError(field, code, format string, args ...interface{}) {
	r.Errors = append(r.Errors, FieldError{
		Field:   field,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
	r.IsValid = false
}

// AddWarning records a non-blocking finding.
func (r *ValidationResult) AddWarning(field, code, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, FieldWarning{
		Field:   field,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// AddSuggestion records a proposed correction.
func (r *ValidationResult) AddSuggestion(field, format string, args ...interface{}) {
	r.Suggestions = append(r.Suggestions, Suggestion{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// Merge folds another result into this one, prefixing every field path of
// the merged result with the given section name.
func (r *ValidationResult) Merge(prefix string, other *ValidationResult) {
	if other == nil {
		return
	}
	for _, e := range other.Errors {
		r.Errors = append(r.Errors, FieldError{
			Field:   joinField(prefix, e.Field),
			Code:    e.Code,
			Message: e.Message,
		})
	}
	for _, w := range other.Warnings {
		r.Warnings = append(r.Warnings, FieldWarning{
			Field:   joinField(prefix, w.Field),
			Code:    w.Code,
			Message: w.Message,
		})
	}
	for _, s := range other.Suggestions {
		r.Suggestions = append(r.Suggestions, Suggestion{
			Field:   joinField(prefix, s.Field),
			Message: s.Message,
		})
	}
	if !other.IsValid {
		r.IsValid = false
	}
}

// ErrorMessages returns the rendered error strings, mostly for logs and CLI
// output.
func (r *ValidationResult) ErrorMessages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.String()
	}
	return out
}

func joinField(prefix, field string) string {
	if prefix == "" {
		return field
	}
	if field == "" {
		return prefix
	}
	return prefix + "." + field
}
