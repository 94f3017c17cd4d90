package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Document is the open map form of a configuration. Validation, inheritance
// and migrations operate on documents; the typed aggregate is decoded from a
// document once it has been validated.
type Document = map[string]interface{}

// CloneDocument deep-copies a document. Maps and slices are copied
// structurally; scalar leaves are shared (they are immutable values).
func CloneDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return CloneDocument(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

// Document converts the typed aggregate to its open map form.
func (c *SystemConfiguration) Document() Document {
	contentTypes := make(Document, len(c.ContentTypes))
	for name, ct := range c.ContentTypes {
		contentTypes[name] = ct.document()
	}

	environments := make(Document, len(c.Environments))
	for env, override := range c.Environments {
		environments[env] = CloneDocument(override)
	}

	return Document{
		"version": c.Version,
		"global": Document{
			"hooksEnabled":         c.Global.HooksEnabled,
			"logLevel":             c.Global.LogLevel,
			"maxHookExecutionTime": c.Global.MaxHookExecutionTime,
			"retryAttempts":        c.Global.RetryAttempts,
			"retryDelay":           c.Global.RetryDelay,
			"enableMetrics":        c.Global.EnableMetrics,
			"enableCaching":        c.Global.EnableCaching,
			"cacheTimeout":         c.Global.CacheTimeout,
		},
		"factory": Document{
			"autoRegister":           c.Factory.AutoRegister,
			"validateOnRegistration": c.Factory.ValidateOnRegistration,
			"enableProfiling":        c.Factory.EnableProfiling,
			"maxConcurrentHooks":     c.Factory.MaxConcurrentHooks,
			"enableBackgroundJobs":   c.Factory.EnableBackgroundJobs,
			"jobQueueSize":           c.Factory.JobQueueSize,
		},
		"contentTypes": contentTypes,
		"environments": environments,
		"featureFlags": Document{
			"enableAdvancedValidation": c.FeatureFlags.EnableAdvancedValidation,
			"enableTableCalculation":   c.FeatureFlags.EnableTableCalculation,
			"enableLiveUpdates":        c.FeatureFlags.EnableLiveUpdates,
			"enableAuditLog":           c.FeatureFlags.EnableAuditLog,
			"enableAutoBackfill":       c.FeatureFlags.EnableAutoBackfill,
			"enableCacheWarming":       c.FeatureFlags.EnableCacheWarming,
			"enableBackgroundSync":     c.FeatureFlags.EnableBackgroundSync,
			"enableMetricsCollection":  c.FeatureFlags.EnableMetricsCollection,
		},
		"metadata": Document{
			"createdAt":   c.Metadata.CreatedAt,
			"updatedAt":   c.Metadata.UpdatedAt,
			"environment": c.Metadata.Environment,
			"updatedBy":   c.Metadata.UpdatedBy,
		},
	}
}

func (c ContentTypeConfig) document() Document {
	return Document{
		"enabled":          c.Enabled,
		"hooks":            toAnySlice(c.Hooks),
		"validationRules":  toAnySlice(c.ValidationRules),
		"calculationRules": toAnySlice(c.CalculationRules),
		"cacheStrategy":    c.CacheStrategy,
		"priority":         c.Priority,
	}
}

func toAnySlice(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// FromDocument decodes a document into the typed aggregate. The document is
// expected to have passed schema validation; decode errors here indicate a
// programmer error in the pipeline, not user input.
func FromDocument(doc Document) (*SystemConfiguration, error) {
	var cfg SystemConfiguration
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		// time.Time values already in the document are set directly by the
		// decoder's identical-type path; only string timestamps need parsing.
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document decoder: %w", err)
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode configuration document: %w", err)
	}
	return &cfg, nil
}

// GetPath resolves a dot-separated path inside a document. The boolean
// reports whether the full path exists.
func GetPath(doc Document, path string) (interface{}, bool) {
	if path == "" {
		return doc, true
	}
	segments := strings.Split(path, ".")
	var current interface{} = doc
	for _, seg := range segments {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SetPath writes a value at a dot-separated path, creating intermediate
// objects as needed. It fails if an intermediate segment exists but is not
// an object.
func SetPath(doc Document, path string, value interface{}) error {
	segments := strings.Split(path, ".")
	current := doc
	for i, seg := range segments {
		if i == len(segments)-1 {
			current[seg] = value
			return nil
		}
		next, exists := current[seg]
		if !exists {
			child := make(Document)
			current[seg] = child
			current = child
			continue
		}
		child, ok := next.(map[string]interface{})
		if !ok {
			return fmt.Errorf("path %q: segment %q is not an object", path, seg)
		}
		current = child
	}
	return nil
}
