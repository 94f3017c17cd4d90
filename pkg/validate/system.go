package validate

import (
	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/schema"
	"github.com/clubworks/hookconf/pkg/types"
)

// ValidateSystem validates a full typed configuration.
func (v *Validator) ValidateSystem(cfg *types.SystemConfiguration) *types.ValidationResult {
	if cfg == nil {
		result := types.NewValidationResult()
		result.AddError("", types.CodeRequiredMissing, "configuration is nil")
		return result
	}
	return v.ValidateSystemDocument(cfg.Document())
}

// ValidateSystemDocument validates a full configuration in document form:
// every section against its schema with section-prefixed field paths,
// followed by the cross-section dependency checks.
func (v *Validator) ValidateSystemDocument(doc types.Document) *types.ValidationResult {
	result := types.NewValidationResult()

	version, _ := doc["version"].(string)
	if version == "" || !types.VersionPattern.MatchString(version) {
		result.AddError("version", types.CodeInvalidVersion, "version %q must match MAJOR.MINOR.PATCH", version)
	}

	v.validateSystemSection(doc, "global", schema.GlobalSchema, true, result)
	v.validateSystemSection(doc, "factory", schema.FactorySchema, true, result)
	v.validateSystemSection(doc, "featureFlags", schema.FeatureFlagsSchema, false, result)

	v.validateContentTypes(doc, result)
	v.checkDependencies(doc, result)

	if !result.IsValid {
		v.logger.Debug("system validation failed",
			log.Int("errors", len(result.Errors)),
			log.Int("warnings", len(result.Warnings)))
	}
	return result
}

func (v *Validator) validateSystemSection(doc types.Document, key, schemaName string, required bool, result *types.ValidationResult) {
	raw, present := doc[key]
	if !present {
		if required {
			result.AddError(key, types.CodeRequiredMissing, "section is missing")
		}
		return
	}
	section, ok := raw.(map[string]interface{})
	if !ok {
		result.AddError(key, types.CodeTypeMismatch, "expected object, got %T", raw)
		return
	}
	result.Merge(key, v.ValidateSection(section, schemaName))
}

func (v *Validator) validateContentTypes(doc types.Document, result *types.ValidationResult) {
	raw, present := doc["contentTypes"]
	if !present {
		return
	}
	contentTypes, ok := raw.(map[string]interface{})
	if !ok {
		result.AddError("contentTypes", types.CodeTypeMismatch, "expected object, got %T", raw)
		return
	}

	for name, entry := range contentTypes {
		path := "contentTypes." + name
		if !types.ContentTypeNamePattern.MatchString(name) {
			result.AddError(path, types.CodeInvalidName,
				"content type name %q must match %s", name, types.ContentTypeNamePattern.String())
		}
		section, ok := entry.(map[string]interface{})
		if !ok {
			result.AddError(path, types.CodeTypeMismatch, "expected object, got %T", entry)
			continue
		}
		result.Merge(path, v.ValidateSection(section, schema.ContentTypeSchema))
	}
}

// checkDependencies runs the cross-section consistency checks. These are
// warnings only and never block persistence.
func (v *Validator) checkDependencies(doc types.Document, result *types.ValidationResult) {
	boolAt := func(path string) (bool, bool) {
		raw, ok := types.GetPath(doc, path)
		if !ok {
			return false, false
		}
		b, ok := raw.(bool)
		return b, ok
	}

	if sync, ok := boolAt("featureFlags.enableBackgroundSync"); ok && sync {
		if jobs, ok := boolAt("factory.enableBackgroundJobs"); ok && !jobs {
			result.AddWarning("featureFlags.enableBackgroundSync", types.CodeDependency,
				"background sync is enabled but factory.enableBackgroundJobs is disabled")
		}
	}

	if warming, ok := boolAt("featureFlags.enableCacheWarming"); ok && warming {
		if caching, ok := boolAt("global.enableCaching"); ok && !caching {
			result.AddWarning("featureFlags.enableCacheWarming", types.CodeDependency,
				"cache warming is enabled but global.enableCaching is disabled")
		}
	}

	if collection, ok := boolAt("featureFlags.enableMetricsCollection"); ok && collection {
		if metrics, ok := boolAt("global.enableMetrics"); ok && !metrics {
			result.AddWarning("featureFlags.enableMetricsCollection", types.CodeDependency,
				"metrics collection is enabled but global.enableMetrics is disabled")
		}
	}

	if calc, ok := boolAt("featureFlags.enableTableCalculation"); ok && calc {
		if advanced, ok := boolAt("featureFlags.enableAdvancedValidation"); ok && !advanced {
			result.AddWarning("featureFlags.enableTableCalculation", types.CodeDependency,
				"table calculation runs without advanced validation")
			result.AddSuggestion("featureFlags.enableAdvancedValidation",
				"enable advanced validation when table calculation is on")
		}
	}
}
