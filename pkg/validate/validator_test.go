package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/schema"
	"github.com/clubworks/hookconf/pkg/types"
)

func newTestValidator() *Validator {
	return NewValidator(schema.NewRegistry(), log.NewTestLogger())
}

func errorCodes(result *types.ValidationResult) map[string]string {
	codes := make(map[string]string, len(result.Errors))
	for _, e := range result.Errors {
		codes[e.Field] = e.Code
	}
	return codes
}

func warningCodes(result *types.ValidationResult) map[string]string {
	codes := make(map[string]string, len(result.Warnings))
	for _, w := range result.Warnings {
		codes[w.Field] = w.Code
	}
	return codes
}

func TestValidateSectionValidGlobal(t *testing.T) {
	v := newTestValidator()

	result := v.ValidateSection(types.Document{
		"hooksEnabled":         true,
		"logLevel":             "debug",
		"maxHookExecutionTime": 5000,
		"retryAttempts":        3,
		"retryDelay":           1000,
		"enableMetrics":        true,
		"enableCaching":        true,
		"cacheTimeout":         300,
	}, schema.GlobalSchema)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateSectionErrorCodes(t *testing.T) {
	v := newTestValidator()

	result := v.ValidateSection(types.Document{
		"hooksEnabled":         "yes",       // type-mismatch
		"logLevel":             "verbose",   // enum-violation
		"maxHookExecutionTime": 5,           // range-violation, below minimum 10
		"retryAttempts":        3,
		"retryDelay":           1000,
	}, schema.GlobalSchema)

	assert.False(t, result.IsValid)
	codes := errorCodes(result)
	assert.Equal(t, types.CodeTypeMismatch, codes["hooksEnabled"])
	assert.Equal(t, types.CodeEnumViolation, codes["logLevel"])
	assert.Equal(t, types.CodeRangeViolation, codes["maxHookExecutionTime"])
}

func TestValidateSectionRequiredMissing(t *testing.T) {
	v := newTestValidator()

	result := v.ValidateSection(types.Document{
		"hooksEnabled": true,
	}, schema.GlobalSchema)

	codes := errorCodes(result)
	assert.Equal(t, types.CodeRequiredMissing, codes["logLevel"])
	assert.Equal(t, types.CodeRequiredMissing, codes["maxHookExecutionTime"])
	assert.Equal(t, types.CodeRequiredMissing, codes["retryAttempts"])
	assert.Equal(t, types.CodeRequiredMissing, codes["retryDelay"])
}

func TestTypeMismatchStopsNestedChecksSiblingsContinue(t *testing.T) {
	v := newTestValidator()

	// maxHookExecutionTime carries both the wrong type and an out-of-range
	// value; only the type error may be reported. logLevel is a sibling and
	// must still be checked.
	result := v.ValidateSection(types.Document{
		"hooksEnabled":         true,
		"logLevel":             "verbose",
		"maxHookExecutionTime": "way-too-long",
		"retryAttempts":        3,
		"retryDelay":           1000,
	}, schema.GlobalSchema)

	codes := errorCodes(result)
	assert.Equal(t, types.CodeTypeMismatch, codes["maxHookExecutionTime"])
	assert.Equal(t, types.CodeEnumViolation, codes["logLevel"])
	assert.Len(t, result.Errors, 2)
}

func TestUnknownFieldWarningWithSuggestion(t *testing.T) {
	v := newTestValidator()

	result := v.ValidateSection(types.Document{
		"hooksEnabled":         true,
		"logLevel":             "info",
		"maxHookExecutionTime": 5000,
		"retryAttempts":        3,
		"retryDelay":           1000,
		"cacheTimeut":          300,
	}, schema.GlobalSchema)

	// Unknown fields never block.
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "cacheTimeut", result.Warnings[0].Field)
	assert.Equal(t, types.CodeUnknownField, result.Warnings[0].Code)
	require.Len(t, result.Suggestions, 1)
	assert.Contains(t, result.Suggestions[0].Message, "cacheTimeout")
}

func TestUnknownFieldNoSuggestionWhenDistant(t *testing.T) {
	v := newTestValidator()

	result := v.ValidateSection(types.Document{
		"hooksEnabled":         true,
		"logLevel":             "info",
		"maxHookExecutionTime": 5000,
		"retryAttempts":        3,
		"retryDelay":           1000,
		"zzzzzz":               1,
	}, schema.GlobalSchema)

	require.Len(t, result.Warnings, 1)
	assert.Empty(t, result.Suggestions)
}

func TestArrayItemPaths(t *testing.T) {
	v := newTestValidator()

	result := v.ValidateSection(types.Document{
		"enabled": true,
		"hooks":   []interface{}{"beforeCreate", "onSave", "afterUpdate"},
	}, schema.ContentTypeSchema)

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "hooks[1]", result.Errors[0].Field)
	assert.Equal(t, types.CodeEnumViolation, result.Errors[0].Code)
}

func TestJSONNumbersAcceptedForIntFields(t *testing.T) {
	v := newTestValidator()

	result := v.ValidateSection(types.Document{
		"hooksEnabled":         true,
		"logLevel":             "info",
		"maxHookExecutionTime": float64(5000), // as encoding/json delivers it
		"retryAttempts":        float64(3),
		"retryDelay":           float64(1000),
	}, schema.GlobalSchema)

	assert.True(t, result.IsValid, "errors: %v", result.ErrorMessages())

	// A fractional value is not an integer.
	result = v.ValidateSection(types.Document{
		"hooksEnabled":         true,
		"logLevel":             "info",
		"maxHookExecutionTime": 5000.5,
		"retryAttempts":        3,
		"retryDelay":           1000,
	}, schema.GlobalSchema)
	codes := errorCodes(result)
	assert.Equal(t, types.CodeTypeMismatch, codes["maxHookExecutionTime"])
}

func TestStringConstraints(t *testing.T) {
	v := newTestValidator()
	s := schema.NewSchema("rules", map[string]*schema.FieldSchema{
		"name": {
			Type:      schema.TypeString,
			MinLength: intPtrT(3),
			MaxLength: intPtrT(8),
			Pattern:   "^[a-z]+$",
		},
	})

	tests := []struct {
		name  string
		value string
		code  string
	}{
		{"tooLong", "standings", types.CodeLengthViolation},
		{"tooShort", "ab", types.CodeLengthViolation},
		{"patternMiss", "Abc", types.CodePatternMismatch},
		{"ok", "goals", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateDocument(types.Document{"name": tt.value}, s)
			if tt.code == "" {
				assert.True(t, result.IsValid)
				return
			}
			codes := errorCodes(result)
			assert.Equal(t, tt.code, codes["name"])
		})
	}
}

func intPtrT(v int) *int { return &v }

func TestValidateSystemDocument(t *testing.T) {
	v := newTestValidator()
	doc := types.NewDefaultConfiguration().Document()

	result := v.ValidateSystemDocument(doc)
	assert.True(t, result.IsValid, "default configuration must validate: %v", result.ErrorMessages())
}

func TestValidateSystemDocumentBadVersion(t *testing.T) {
	v := newTestValidator()
	doc := types.NewDefaultConfiguration().Document()
	doc["version"] = "one-point-oh"

	result := v.ValidateSystemDocument(doc)
	codes := errorCodes(result)
	assert.Equal(t, types.CodeInvalidVersion, codes["version"])
}

func TestValidateSystemDocumentMissingSections(t *testing.T) {
	v := newTestValidator()

	result := v.ValidateSystemDocument(types.Document{"version": "1.0.0"})
	codes := errorCodes(result)
	assert.Equal(t, types.CodeRequiredMissing, codes["global"])
	assert.Equal(t, types.CodeRequiredMissing, codes["factory"])
}

func TestContentTypeNameValidation(t *testing.T) {
	v := newTestValidator()
	doc := types.NewDefaultConfiguration().Document()
	contentTypes := doc["contentTypes"].(map[string]interface{})
	contentTypes["Saison!"] = map[string]interface{}{
		"enabled": true,
	}

	result := v.ValidateSystemDocument(doc)
	codes := errorCodes(result)
	assert.Equal(t, types.CodeInvalidName, codes["contentTypes.Saison!"])

	// A valid lowercase name passes.
	delete(contentTypes, "Saison!")
	contentTypes["team"] = map[string]interface{}{
		"enabled": true,
	}
	result = v.ValidateSystemDocument(doc)
	assert.True(t, result.IsValid, "errors: %v", result.ErrorMessages())
}

func TestDependencyChecksAreWarnings(t *testing.T) {
	v := newTestValidator()

	cfg := types.NewDefaultConfiguration()
	cfg.FeatureFlags.EnableBackgroundSync = true
	cfg.Factory.EnableBackgroundJobs = false
	cfg.FeatureFlags.EnableCacheWarming = true
	cfg.Global.EnableCaching = false
	cfg.FeatureFlags.EnableMetricsCollection = true
	cfg.Global.EnableMetrics = false
	cfg.FeatureFlags.EnableTableCalculation = true
	cfg.FeatureFlags.EnableAdvancedValidation = false

	result := v.ValidateSystemDocument(cfg.Document())

	// Dependency findings never block.
	assert.True(t, result.IsValid, "errors: %v", result.ErrorMessages())

	warnings := warningCodes(result)
	assert.Equal(t, types.CodeDependency, warnings["featureFlags.enableBackgroundSync"])
	assert.Equal(t, types.CodeDependency, warnings["featureFlags.enableCacheWarming"])
	assert.Equal(t, types.CodeDependency, warnings["featureFlags.enableMetricsCollection"])
	assert.Equal(t, types.CodeDependency, warnings["featureFlags.enableTableCalculation"])

	// Table calculation warning carries a suggestion.
	found := false
	for _, s := range result.Suggestions {
		if s.Field == "featureFlags.enableAdvancedValidation" {
			found = true
		}
	}
	assert.True(t, found, "expected suggestion to enable advanced validation")
}

func TestSectionPrefixedPaths(t *testing.T) {
	v := newTestValidator()
	cfg := types.NewDefaultConfiguration()
	doc := cfg.Document()
	doc["global"].(map[string]interface{})["logLevel"] = "silent"
	doc["contentTypes"].(map[string]interface{})["club"].(map[string]interface{})["priority"] = 42

	result := v.ValidateSystemDocument(doc)
	codes := errorCodes(result)
	assert.Equal(t, types.CodeEnumViolation, codes["global.logLevel"])
	assert.Equal(t, types.CodeRangeViolation, codes["contentTypes.club.priority"])
}

func TestValidateSystemNil(t *testing.T) {
	v := newTestValidator()
	result := v.ValidateSystem(nil)
	assert.False(t, result.IsValid)
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
	}{
		{"cacheTimeut", "cacheTimeout", 0.9},
		{"logLevel", "logLevel", 1.0},
	}
	for _, tt := range tests {
		got := similarity(tt.a, tt.b)
		assert.GreaterOrEqual(t, got, tt.min, "%s vs %s", tt.a, tt.b)
	}

	assert.Less(t, similarity("zzzzzz", "logLevel"), suggestionThreshold)
}
