// Package validate checks configuration documents against the schema
// registry and flags cross-section inconsistencies.
package validate

import (
	"fmt"
	"regexp"

	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/schema"
	"github.com/clubworks/hookconf/pkg/types"
)

// Validator validates configuration documents against registered schemas.
type Validator struct {
	registry *schema.Registry
	logger   log.Logger
}

// NewValidator creates a validator backed by the given schema registry.
func NewValidator(registry *schema.Registry, logger log.Logger) *Validator {
	return &Validator{
		registry: registry,
		logger:   logger.WithComponent("validator"),
	}
}

// Registry exposes the schema registry the validator resolves from.
func (v *Validator) Registry() *schema.Registry { return v.registry }

// ValidateDocument validates one section document against a schema.
func (v *Validator) ValidateDocument(doc types.Document, s *schema.Schema) *types.ValidationResult {
	result := types.NewValidationResult()
	v.validateObject(doc, s.Fields(), s.FieldNames(), "", result)
	return result
}

// ValidateSection resolves the named schema and validates the document
// against it.
func (v *Validator) ValidateSection(doc types.Document, schemaName string) *types.ValidationResult {
	result := types.NewValidationResult()
	s, ok := v.registry.Get(schemaName)
	if !ok {
		result.AddError("", types.CodeUnknownField, "no schema registered for section %q", schemaName)
		return result
	}
	return v.ValidateDocument(doc, s)
}

// validateObject walks the known fields of an object and then sweeps the
// document for unknown keys.
func (v *Validator) validateObject(doc types.Document, fields map[string]*schema.FieldSchema, known []string, prefix string, result *types.ValidationResult) {
	for name, fs := range fields {
		path := joinPath(prefix, name)
		value, present := doc[name]

		if !present {
			if fs.Required {
				result.AddError(path, types.CodeRequiredMissing, "required field is missing")
			}
			continue
		}

		if fs.Deprecated {
			result.AddWarning(path, types.CodeDeprecatedField, "field is deprecated and will be removed in a future version")
		}

		v.validateField(path, value, fs, result)
	}

	for name := range doc {
		if _, ok := fields[name]; ok {
			continue
		}
		path := joinPath(prefix, name)
		result.AddWarning(path, types.CodeUnknownField, "unknown field %q", name)
		if match, ok := closestFieldName(name, known); ok {
			result.AddSuggestion(path, "did you mean %q?", match)
		}
	}
}

// validateField checks a single value against its descriptor. A type
// mismatch stops further checks for this field; sibling fields continue.
func (v *Validator) validateField(path string, value interface{}, fs *schema.FieldSchema, result *types.ValidationResult) {
	switch fs.Type {
	case schema.TypeString:
		s, ok := value.(string)
		if !ok {
			result.AddError(path, types.CodeTypeMismatch, "expected string, got %T", value)
			return
		}
		v.validateString(path, s, fs, result)

	case schema.TypeInt:
		n, ok := asInt(value)
		if !ok {
			result.AddError(path, types.CodeTypeMismatch, "expected integer, got %T", value)
			return
		}
		v.validateNumber(path, float64(n), fs, result)

	case schema.TypeFloat:
		f, ok := asFloat(value)
		if !ok {
			result.AddError(path, types.CodeTypeMismatch, "expected number, got %T", value)
			return
		}
		v.validateNumber(path, f, fs, result)

	case schema.TypeBool:
		if _, ok := value.(bool); !ok {
			result.AddError(path, types.CodeTypeMismatch, "expected boolean, got %T", value)
			return
		}

	case schema.TypeObject:
		obj, ok := value.(map[string]interface{})
		if !ok {
			result.AddError(path, types.CodeTypeMismatch, "expected object, got %T", value)
			return
		}
		if fs.Properties != nil {
			known := make([]string, 0, len(fs.Properties))
			for name := range fs.Properties {
				known = append(known, name)
			}
			v.validateObject(obj, fs.Properties, known, path, result)
		}

	case schema.TypeArray:
		arr, ok := asSlice(value)
		if !ok {
			result.AddError(path, types.CodeTypeMismatch, "expected array, got %T", value)
			return
		}
		if fs.Items != nil {
			for i, item := range arr {
				v.validateField(fmt.Sprintf("%s[%d]", path, i), item, fs.Items, result)
			}
		}

	default:
		result.AddError(path, types.CodeTypeMismatch, "unsupported schema type %q", fs.Type)
	}
}

func (v *Validator) validateString(path, s string, fs *schema.FieldSchema, result *types.ValidationResult) {
	if len(fs.Enum) > 0 && !containsString(fs.Enum, s) {
		result.AddError(path, types.CodeEnumViolation, "value %q is not one of %v", s, fs.Enum)
	}
	if fs.MinLength != nil && len(s) < *fs.MinLength {
		result.AddError(path, types.CodeLengthViolation, "length %d is below minimum %d", len(s), *fs.MinLength)
	}
	if fs.MaxLength != nil && len(s) > *fs.MaxLength {
		result.AddError(path, types.CodeLengthViolation, "length %d exceeds maximum %d", len(s), *fs.MaxLength)
	}
	if fs.Pattern != "" {
		re, err := regexp.Compile(fs.Pattern)
		if err != nil {
			result.AddError(path, types.CodePatternMismatch, "invalid pattern %q in schema: %v", fs.Pattern, err)
		} else if !re.MatchString(s) {
			result.AddError(path, types.CodePatternMismatch, "value %q does not match pattern %q", s, fs.Pattern)
		}
	}
}

func (v *Validator) validateNumber(path string, f float64, fs *schema.FieldSchema, result *types.ValidationResult) {
	if fs.Min != nil && f < *fs.Min {
		result.AddError(path, types.CodeRangeViolation, "value %v is below minimum %v", f, *fs.Min)
	}
	if fs.Max != nil && f > *fs.Max {
		result.AddError(path, types.CodeRangeViolation, "value %v exceeds maximum %v", f, *fs.Max)
	}
	if len(fs.Enum) > 0 && !containsString(fs.Enum, fmt.Sprintf("%v", f)) {
		result.AddError(path, types.CodeEnumViolation, "value %v is not one of %v", f, fs.Enum)
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func containsString(ss []string, s string) bool {
	for _, candidate := range ss {
		if candidate == s {
			return true
		}
	}
	return false
}

// asInt accepts the integer encodings that appear after JSON/YAML parsing
// and document conversion.
func asInt(value interface{}) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
		return 0, false
	case float32:
		if float64(n) == float64(int64(n)) {
			return int64(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func asFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asSlice(value interface{}) ([]interface{}, bool) {
	switch arr := value.(type) {
	case []interface{}:
		return arr, true
	case []string:
		out := make([]interface{}, len(arr))
		for i, s := range arr {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
