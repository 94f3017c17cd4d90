// Package types defines the configuration aggregate, the validation result
// model, and the error taxonomy shared by every hookconf component.
package types

import (
	"regexp"
	"time"
)

// CurrentVersion is the configuration schema version this build understands.
const CurrentVersion = "1.0.0"

// Patterns enforced across the system.
var (
	// VersionPattern matches semantic version strings.
	VersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

	// ContentTypeNamePattern matches lowercase-hyphen content type keys.
	ContentTypeNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

	// FeatureFlagNamePattern matches camelCase feature flag names.
	FeatureFlagNamePattern = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
)

// Hook names a content type may subscribe to.
var KnownHooks = []string{
	"beforeCreate", "afterCreate",
	"beforeUpdate", "afterUpdate",
	"beforeDelete", "afterDelete",
}

// GlobalConfig holds the behavioral settings applied to every lifecycle
// hook of the host application.
type GlobalConfig struct {
	HooksEnabled         bool   `json:"hooksEnabled" yaml:"hooksEnabled" mapstructure:"hooksEnabled"`
	LogLevel             string `json:"logLevel" yaml:"logLevel" mapstructure:"logLevel"`
	MaxHookExecutionTime int    `json:"maxHookExecutionTime" yaml:"maxHookExecutionTime" mapstructure:"maxHookExecutionTime"`
	RetryAttempts        int    `json:"retryAttempts" yaml:"retryAttempts" mapstructure:"retryAttempts"`
	RetryDelay           int    `json:"retryDelay" yaml:"retryDelay" mapstructure:"retryDelay"`
	EnableMetrics        bool   `json:"enableMetrics" yaml:"enableMetrics" mapstructure:"enableMetrics"`
	EnableCaching        bool   `json:"enableCaching" yaml:"enableCaching" mapstructure:"enableCaching"`
	CacheTimeout         int    `json:"cacheTimeout" yaml:"cacheTimeout" mapstructure:"cacheTimeout"`
}

// FactoryConfig controls how hook factories register and execute.
type FactoryConfig struct {
	AutoRegister           bool `json:"autoRegister" yaml:"autoRegister" mapstructure:"autoRegister"`
	ValidateOnRegistration bool `json:"validateOnRegistration" yaml:"validateOnRegistration" mapstructure:"validateOnRegistration"`
	EnableProfiling        bool `json:"enableProfiling" yaml:"enableProfiling" mapstructure:"enableProfiling"`
	MaxConcurrentHooks     int  `json:"maxConcurrentHooks" yaml:"maxConcurrentHooks" mapstructure:"maxConcurrentHooks"`
	EnableBackgroundJobs   bool `json:"enableBackgroundJobs" yaml:"enableBackgroundJobs" mapstructure:"enableBackgroundJobs"`
	JobQueueSize           int  `json:"jobQueueSize" yaml:"jobQueueSize" mapstructure:"jobQueueSize"`
}

// ContentTypeConfig is the per-entity-kind override of which hooks run and
// which validation/calculation rules apply.
type ContentTypeConfig struct {
	Enabled          bool     `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Hooks            []string `json:"hooks" yaml:"hooks" mapstructure:"hooks"`
	ValidationRules  []string `json:"validationRules" yaml:"validationRules" mapstructure:"validationRules"`
	CalculationRules []string `json:"calculationRules" yaml:"calculationRules" mapstructure:"calculationRules"`
	CacheStrategy    string   `json:"cacheStrategy" yaml:"cacheStrategy" mapstructure:"cacheStrategy"`
	Priority         int      `json:"priority" yaml:"priority" mapstructure:"priority"`
}

// FeatureFlags gates the optional capabilities of the host application.
type FeatureFlags struct {
	EnableAdvancedValidation bool `json:"enableAdvancedValidation" yaml:"enableAdvancedValidation" mapstructure:"enableAdvancedValidation"`
	EnableTableCalculation   bool `json:"enableTableCalculation" yaml:"enableTableCalculation" mapstructure:"enableTableCalculation"`
	EnableLiveUpdates        bool `json:"enableLiveUpdates" yaml:"enableLiveUpdates" mapstructure:"enableLiveUpdates"`
	EnableAuditLog           bool `json:"enableAuditLog" yaml:"enableAuditLog" mapstructure:"enableAuditLog"`
	EnableAutoBackfill       bool `json:"enableAutoBackfill" yaml:"enableAutoBackfill" mapstructure:"enableAutoBackfill"`
	EnableCacheWarming       bool `json:"enableCacheWarming" yaml:"enableCacheWarming" mapstructure:"enableCacheWarming"`
	EnableBackgroundSync     bool `json:"enableBackgroundSync" yaml:"enableBackgroundSync" mapstructure:"enableBackgroundSync"`
	EnableMetricsCollection  bool `json:"enableMetricsCollection" yaml:"enableMetricsCollection" mapstructure:"enableMetricsCollection"`
}

// ConfigMetadata records provenance of a configuration snapshot.
type ConfigMetadata struct {
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt" mapstructure:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt" mapstructure:"updatedAt"`
	Environment string    `json:"environment" yaml:"environment" mapstructure:"environment"`
	UpdatedBy   string    `json:"updatedBy" yaml:"updatedBy" mapstructure:"updatedBy"`
}

// EnvironmentOverride is a partial document merged onto the global section
// when resolving the effective configuration for one environment.
type EnvironmentOverride map[string]interface{}

// SystemConfiguration is the root configuration aggregate. Instances are
// treated as immutable snapshots: every transition produces a new value via
// Clone, never an in-place mutation.
type SystemConfiguration struct {
	Version      string                         `json:"version" yaml:"version" mapstructure:"version"`
	Global       GlobalConfig                   `json:"global" yaml:"global" mapstructure:"global"`
	Factory      FactoryConfig                  `json:"factory" yaml:"factory" mapstructure:"factory"`
	ContentTypes map[string]ContentTypeConfig   `json:"contentTypes" yaml:"contentTypes" mapstructure:"contentTypes"`
	Environments map[string]EnvironmentOverride `json:"environments,omitempty" yaml:"environments,omitempty" mapstructure:"environments"`
	FeatureFlags FeatureFlags                   `json:"featureFlags" yaml:"featureFlags" mapstructure:"featureFlags"`
	Metadata     ConfigMetadata                 `json:"metadata" yaml:"metadata" mapstructure:"metadata"`
}

// NewDefaultConfiguration returns the built-in defaults for the current
// version.
func NewDefaultConfiguration() *SystemConfiguration {
	now := time.Now().UTC()
	return &SystemConfiguration{
		Version: CurrentVersion,
		Global: GlobalConfig{
			HooksEnabled:         true,
			LogLevel:             "info",
			MaxHookExecutionTime: 5000,
			RetryAttempts:        3,
			RetryDelay:           1000,
			EnableMetrics:        true,
			EnableCaching:        true,
			CacheTimeout:         300,
		},
		Factory: FactoryConfig{
			AutoRegister:           true,
			ValidateOnRegistration: true,
			EnableProfiling:        false,
			MaxConcurrentHooks:     10,
			EnableBackgroundJobs:   true,
			JobQueueSize:           100,
		},
		ContentTypes: map[string]ContentTypeConfig{
			"club": {
				Enabled:          true,
				Hooks:            []string{"beforeCreate", "beforeUpdate", "afterUpdate"},
				ValidationRules:  []string{"name-required", "unique-short-name"},
				CalculationRules: []string{},
				CacheStrategy:    "moderate",
				Priority:         5,
			},
			"match": {
				Enabled:          true,
				Hooks:            []string{"beforeCreate", "afterCreate", "afterUpdate"},
				ValidationRules:  []string{"teams-distinct", "score-range"},
				CalculationRules: []string{"table-standings"},
				CacheStrategy:    "minimal",
				Priority:         7,
			},
			"league-table": {
				Enabled:          true,
				Hooks:            []string{"afterUpdate"},
				ValidationRules:  []string{},
				CalculationRules: []string{"table-standings", "goal-difference"},
				CacheStrategy:    "aggressive",
				Priority:         3,
			},
		},
		Environments: map[string]EnvironmentOverride{},
		FeatureFlags: FeatureFlags{
			EnableAdvancedValidation: true,
			EnableTableCalculation:   true,
			EnableLiveUpdates:        false,
			EnableAuditLog:           true,
			EnableAutoBackfill:       false,
			EnableCacheWarming:       false,
			EnableBackgroundSync:     false,
			EnableMetricsCollection:  true,
		},
		Metadata: ConfigMetadata{
			CreatedAt:   now,
			UpdatedAt:   now,
			Environment: "development",
			UpdatedBy:   "system",
		},
	}
}

// Clone performs an explicit structural deep copy of the configuration.
func (c *SystemConfiguration) Clone() *SystemConfiguration {
	if c == nil {
		return nil
	}
	clone := *c

	clone.ContentTypes = make(map[string]ContentTypeConfig, len(c.ContentTypes))
	for name, ct := range c.ContentTypes {
		clone.ContentTypes[name] = ct.Clone()
	}

	clone.Environments = make(map[string]EnvironmentOverride, len(c.Environments))
	for env, override := range c.Environments {
		clone.Environments[env] = CloneDocument(override)
	}

	return &clone
}

// Clone deep-copies a content type configuration.
func (c ContentTypeConfig) Clone() ContentTypeConfig {
	clone := c
	clone.Hooks = append([]string(nil), c.Hooks...)
	clone.ValidationRules = append([]string(nil), c.ValidationRules...)
	clone.CalculationRules = append([]string(nil), c.CalculationRules...)
	return clone
}

// Touch returns a copy with updated modification metadata.
func (c *SystemConfiguration) Touch(environment, updatedBy string) *SystemConfiguration {
	clone := c.Clone()
	clone.Metadata.UpdatedAt = time.Now().UTC()
	if environment != "" {
		clone.Metadata.Environment = environment
	}
	if updatedBy != "" {
		clone.Metadata.UpdatedBy = updatedBy
	}
	return clone
}
