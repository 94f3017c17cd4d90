package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Well-known schema names.
const (
	GlobalSchema       = "global"
	FactorySchema      = "factory"
	ContentTypeSchema  = "content-type"
	FeatureFlagsSchema = "feature-flags"
)

// Registry holds the schemas of every configuration section.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates a registry pre-populated with the built-in section
// schemas.
func NewRegistry() *Registry {
	r := &Registry{schemas: make(map[string]*Schema)}
	r.register(globalSchema())
	r.register(factorySchema())
	r.register(contentTypeSchema())
	r.register(featureFlagsSchema())
	return r
}

// Register adds or replaces a schema.
func (r *Registry) Register(s *Schema) error {
	if s == nil || s.Name() == "" {
		return fmt.Errorf("schema must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Name()] = s
	return nil
}

func (r *Registry) register(s *Schema) {
	r.schemas[s.Name()] = s
}

// Get returns the schema registered under the given name.
func (r *Registry) Get(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns the registered schema names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func globalSchema() *Schema {
	return NewSchema(GlobalSchema, map[string]*FieldSchema{
		"hooksEnabled": {
			Type:        TypeBool,
			Required:    true,
			Default:     true,
			Description: "master switch for all lifecycle hooks",
		},
		"logLevel": {
			Type:     TypeString,
			Required: true,
			Default:  "info",
			Enum:     []string{"debug", "info", "warn", "error"},
		},
		"maxHookExecutionTime": {
			Type:        TypeInt,
			Required:    true,
			Default:     5000,
			Min:         floatPtr(10),
			Max:         floatPtr(30000),
			Description: "per-hook execution budget in milliseconds",
		},
		"retryAttempts": {
			Type:     TypeInt,
			Required: true,
			Default:  3,
			Min:      floatPtr(0),
			Max:      floatPtr(10),
		},
		"retryDelay": {
			Type:     TypeInt,
			Required: true,
			Default:  1000,
			Min:      floatPtr(100),
			Max:      floatPtr(10000),
		},
		"enableMetrics": {
			Type:    TypeBool,
			Default: true,
		},
		"enableCaching": {
			Type:    TypeBool,
			Default: true,
		},
		"cacheTimeout": {
			Type:        TypeInt,
			Default:     300,
			Min:         floatPtr(60),
			Max:         floatPtr(3600),
			Description: "cache entry lifetime in seconds",
		},
	})
}

func factorySchema() *Schema {
	return NewSchema(FactorySchema, map[string]*FieldSchema{
		"autoRegister": {
			Type:    TypeBool,
			Default: true,
		},
		"validateOnRegistration": {
			Type:    TypeBool,
			Default: true,
		},
		"enableProfiling": {
			Type:    TypeBool,
			Default: false,
		},
		"maxConcurrentHooks": {
			Type:     TypeInt,
			Required: true,
			Default:  10,
			Min:      floatPtr(1),
			Max:      floatPtr(50),
		},
		"enableBackgroundJobs": {
			Type:    TypeBool,
			Default: true,
		},
		"jobQueueSize": {
			Type:    TypeInt,
			Default: 100,
			Min:     floatPtr(10),
			Max:     floatPtr(1000),
		},
	})
}

func contentTypeSchema() *Schema {
	return NewSchema(ContentTypeSchema, map[string]*FieldSchema{
		"enabled": {
			Type:     TypeBool,
			Required: true,
			Default:  true,
		},
		"hooks": {
			Type: TypeArray,
			Items: &FieldSchema{
				Type: TypeString,
				Enum: []string{
					"beforeCreate", "afterCreate",
					"beforeUpdate", "afterUpdate",
					"beforeDelete", "afterDelete",
				},
			},
		},
		"validationRules": {
			Type:  TypeArray,
			Items: &FieldSchema{Type: TypeString, MinLength: intPtr(1), MaxLength: intPtr(64)},
		},
		"calculationRules": {
			Type:  TypeArray,
			Items: &FieldSchema{Type: TypeString, MinLength: intPtr(1), MaxLength: intPtr(64)},
		},
		"cacheStrategy": {
			Type:    TypeString,
			Default: "moderate",
			Enum:    []string{"none", "minimal", "moderate", "aggressive"},
		},
		"priority": {
			Type:    TypeInt,
			Default: 5,
			Min:     floatPtr(1),
			Max:     floatPtr(10),
		},
	})
}

func featureFlagsSchema() *Schema {
	flag := func(def bool) *FieldSchema {
		return &FieldSchema{Type: TypeBool, Default: def}
	}
	return NewSchema(FeatureFlagsSchema, map[string]*FieldSchema{
		"enableAdvancedValidation": flag(true),
		"enableTableCalculation":   flag(true),
		"enableLiveUpdates":        flag(false),
		"enableAuditLog":           flag(true),
		"enableAutoBackfill":       flag(false),
		"enableCacheWarming":       flag(false),
		"enableBackgroundSync":     flag(false),
		"enableMetricsCollection":  flag(true),
	})
}
