// Package loader resolves the effective configuration from ordered sources:
// config file, host-embedded document, environment variables, and built-in
// defaults, with per-environment caching.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/clubworks/hookconf/pkg/schema"
	"github.com/clubworks/hookconf/pkg/types"
)

// Source names reported in load results.
const (
	SourceFile     = "file"
	SourceEmbedded = "embedded"
	SourceEnv      = "env"
	SourceDefault  = "default"
)

// DefaultEnvPrefix is the environment variable prefix scanned by the env
// source.
const DefaultEnvPrefix = "HOOK_CONFIG_"

// SourceResult is the outcome of asking one source for a raw configuration
// document.
type SourceResult struct {
	Success  bool
	Name     string
	Document types.Document
	Errors   []string
	Warnings []string
}

// Source produces a raw configuration document for an environment.
type Source interface {
	Name() string
	Load(environment string) *SourceResult
}

// FileSource reads <base>.<environment>.json before falling back to the
// generic <base>.json.
type FileSource struct {
	Dir      string
	BaseName string
}

// Name returns the source name.
func (s *FileSource) Name() string { return SourceFile }

// Load reads and parses the environment-specific or generic config file.
func (s *FileSource) Load(environment string) *SourceResult {
	result := &SourceResult{Name: SourceFile}

	candidates := []string{
		filepath.Join(s.Dir, fmt.Sprintf("%s.%s.json", s.BaseName, environment)),
		filepath.Join(s.Dir, fmt.Sprintf("%s.json", s.BaseName)),
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				result.Errors = append(result.Errors, fmt.Sprintf("read %s: %v", path, err))
			}
			continue
		}
		var doc types.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("parse %s: %v", path, err))
			continue
		}
		result.Success = true
		result.Document = doc
		return result
	}

	result.Errors = append(result.Errors, "no configuration file found")
	return result
}

// EmbeddedSource serves a document the host application registered at
// startup.
type EmbeddedSource struct {
	doc types.Document
}

// NewEmbeddedSource creates an embedded source; a nil document means the
// host provided nothing.
func NewEmbeddedSource(doc types.Document) *EmbeddedSource {
	return &EmbeddedSource{doc: doc}
}

// Set replaces the embedded document.
func (s *EmbeddedSource) Set(doc types.Document) { s.doc = doc }

// Name returns the source name.
func (s *EmbeddedSource) Name() string { return SourceEmbedded }

// Load returns the embedded document when one was registered.
func (s *EmbeddedSource) Load(string) *SourceResult {
	result := &SourceResult{Name: SourceEmbedded}
	if s.doc == nil {
		result.Errors = append(result.Errors, "no embedded configuration registered")
		return result
	}
	result.Success = true
	result.Document = types.CloneDocument(s.doc)
	return result
}

// EnvSource assembles a document from prefixed environment variables. Keys
// are lower-cased and split on underscores into a dot path; values are
// parsed as a JSON literal, then boolean, then number, then raw string.
type EnvSource struct {
	Prefix   string
	Registry *schema.Registry
	Environ  func() []string
}

// Name returns the source name.
func (s *EnvSource) Name() string { return SourceEnv }

// Load scans the environment for prefixed variables.
func (s *EnvSource) Load(string) *SourceResult {
	result := &SourceResult{Name: SourceEnv}

	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	environ := os.Environ
	if s.Environ != nil {
		environ = s.Environ
	}

	doc := make(types.Document)
	matched := 0
	for _, entry := range environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		matched++

		path := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, prefix)), "_", ".")
		if err := types.SetPath(doc, path, parseEnvValue(value)); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipping %s: %v", key, err))
		}
	}

	if matched == 0 {
		result.Errors = append(result.Errors, "no matching environment variables")
		return result
	}

	if s.Registry != nil {
		doc = canonicalizeKeys(doc, s.Registry)
	}
	result.Success = true
	result.Document = doc
	return result
}

// parseEnvValue auto-detects structured literals, booleans and numbers,
// falling back to the raw string.
func parseEnvValue(raw string) interface{} {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var parsed interface{}
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return parsed
		}
	}
	if trimmed == "true" {
		return true
	}
	if trimmed == "false" {
		return false
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return raw
}

// canonicalizeKeys maps the lower-cased env keys back onto the camelCase
// field names the schemas declare.
func canonicalizeKeys(doc types.Document, registry *schema.Registry) types.Document {
	sections := map[string]string{
		"global":       schema.GlobalSchema,
		"factory":      schema.FactorySchema,
		"featureflags": schema.FeatureFlagsSchema,
	}

	out := make(types.Document, len(doc))
	for key, value := range doc {
		schemaName, isSection := sections[key]
		if !isSection {
			out[canonicalTopLevel(key)] = value
			continue
		}
		canonicalKey := canonicalTopLevel(key)
		section, ok := value.(map[string]interface{})
		if !ok {
			out[canonicalKey] = value
			continue
		}
		s, found := registry.Get(schemaName)
		if !found {
			out[canonicalKey] = value
			continue
		}
		out[canonicalKey] = canonicalizeSection(section, s)
	}
	return out
}

func canonicalizeSection(section map[string]interface{}, s *schema.Schema) map[string]interface{} {
	names := make(map[string]string, len(s.FieldNames()))
	for _, name := range s.FieldNames() {
		names[strings.ToLower(name)] = name
	}
	out := make(map[string]interface{}, len(section))
	for key, value := range section {
		if canonical, ok := names[key]; ok {
			out[canonical] = value
		} else {
			out[key] = value
		}
	}
	return out
}

func canonicalTopLevel(key string) string {
	switch key {
	case "featureflags":
		return "featureFlags"
	case "contenttypes":
		return "contentTypes"
	default:
		return key
	}
}

// DefaultSource always succeeds with the built-in defaults.
type DefaultSource struct{}

// Name returns the source name.
func (s *DefaultSource) Name() string { return SourceDefault }

// Load returns the built-in default configuration document.
func (s *DefaultSource) Load(string) *SourceResult {
	return &SourceResult{
		Name:     SourceDefault,
		Success:  true,
		Document: types.NewDefaultConfiguration().Document(),
	}
}
