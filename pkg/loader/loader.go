package loader

import (
	"fmt"
	"time"

	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/types"
	"github.com/clubworks/hookconf/pkg/validate"
	"github.com/clubworks/hookconf/pkg/version"
)

// Options configures a Loader.
type Options struct {
	// Dir is the directory config files are read from.
	Dir string

	// BaseName is the config file base name, e.g. "hookconf" for
	// hookconf.production.json.
	BaseName string

	// EnvPrefix is the environment variable prefix (default HOOK_CONFIG_).
	EnvPrefix string

	// CacheTTL is the per-environment cache lifetime (default 5 minutes).
	CacheTTL time.Duration
}

// Loader resolves the effective configuration from its sources, first
// success wins: file, host-embedded document, environment variables,
// built-in defaults.
type Loader struct {
	sources   []Source
	embedded  *EmbeddedSource
	validator *validate.Validator
	versions  *version.Manager
	cache     *cache
	logger    log.Logger
}

// NewLoader wires a loader with the standard source precedence.
func NewLoader(opts Options, validator *validate.Validator, versions *version.Manager, logger log.Logger) *Loader {
	embedded := NewEmbeddedSource(nil)
	baseName := opts.BaseName
	if baseName == "" {
		baseName = "hookconf"
	}
	return &Loader{
		sources: []Source{
			&FileSource{Dir: opts.Dir, BaseName: baseName},
			embedded,
			&EnvSource{Prefix: opts.EnvPrefix, Registry: validator.Registry()},
			&DefaultSource{},
		},
		embedded:  embedded,
		validator: validator,
		versions:  versions,
		cache:     newCache(opts.CacheTTL),
		logger:    logger.WithComponent("loader"),
	}
}

// SetEmbedded registers the host-provided document served by the embedded
// source. The cache is dropped so the next load sees it.
func (l *Loader) SetEmbedded(doc types.Document) {
	l.embedded.Set(doc)
	l.cache.invalidateAll()
}

// Invalidate drops the cached configuration for an environment.
func (l *Loader) Invalidate(environment string) {
	l.cache.invalidate(environment)
}

// Load resolves the effective configuration for an environment, consulting
// the cache first.
func (l *Loader) Load(environment string) (*Result, error) {
	if cached, ok := l.cache.get(environment); ok {
		return cached, nil
	}

	var allErrors []string
	for _, source := range l.sources {
		sourceResult := source.Load(environment)
		if !sourceResult.Success {
			allErrors = append(allErrors, sourceResult.Errors...)
			continue
		}

		result, err := l.process(sourceResult, environment)
		if err != nil {
			allErrors = append(allErrors, fmt.Sprintf("%s: %v", source.Name(), err))
			l.logger.Warn("source produced invalid configuration, falling through",
				log.Str("source", source.Name()),
				log.Err(err))
			continue
		}
		result.Warnings = append(sourceResult.Warnings, result.Warnings...)

		l.cache.put(environment, result)
		l.logger.Info("configuration loaded",
			log.Str("environment", environment),
			log.Str("source", result.Source))
		return result, nil
	}

	return nil, types.NewValidationError(
		"no source produced a valid configuration: %v", allErrors)
}

// process runs the per-source pipeline: merge with defaults, migrate on
// version mismatch, validate, apply environment overrides, decode.
func (l *Loader) process(sourceResult *SourceResult, environment string) (*Result, error) {
	defaults := types.NewDefaultConfiguration().Document()
	doc := mergeWithDefaults(sourceResult.Document, defaults)

	result := &Result{Source: sourceResult.Name}

	declared, _ := doc["version"].(string)
	if declared != "" && declared != types.CurrentVersion {
		migrated, err := l.versions.Migrate(doc, declared, types.CurrentVersion)
		if err != nil {
			return nil, err
		}
		doc = migrated
		result.MigratedFrom = declared
	}

	validation := l.validator.ValidateSystemDocument(doc)
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.String())
	}
	if !validation.IsValid {
		return nil, types.NewValidationError(
			"validation failed: %v", validation.ErrorMessages())
	}

	l.applyEnvironmentOverride(doc, environment)

	cfg, err := types.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	cfg.Metadata.Environment = environment
	result.Configuration = cfg
	return result, nil
}

// applyEnvironmentOverride merges the environments[env] block onto the
// global section.
func (l *Loader) applyEnvironmentOverride(doc types.Document, environment string) {
	environments, ok := doc["environments"].(map[string]interface{})
	if !ok {
		return
	}
	override, ok := environments[environment].(map[string]interface{})
	if !ok {
		return
	}
	global, ok := doc["global"].(map[string]interface{})
	if !ok {
		global = make(map[string]interface{})
		doc["global"] = global
	}
	doc["global"] = overlayOnto(global, override)
}
