// Package inherit derives an environment-specific configuration from a base
// document plus declared environment override rules.
package inherit

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/clubworks/hookconf/pkg/types"
)

// RuleKind selects how a rule combines its value with the configuration.
type RuleKind string

// Rule kinds.
const (
	RuleOverride RuleKind = "override"
	RuleMerge    RuleKind = "merge"
	RuleAppend   RuleKind = "append"
	RuleIgnore   RuleKind = "ignore"
)

// Rule mutates one field path of the configuration. Paths are dot-separated
// and may contain a `*` segment meaning "every key at this level".
type Rule struct {
	Path     string      `yaml:"path" json:"path"`
	Kind     RuleKind    `yaml:"kind" json:"kind"`
	Value    interface{} `yaml:"value" json:"value"`
	Priority int         `yaml:"priority" json:"priority"`
}

// Hierarchy declares the inheritance relationship and rules of one
// environment.
type Hierarchy struct {
	Environment  string   `yaml:"environment" json:"environment"`
	InheritsFrom []string `yaml:"inheritsFrom" json:"inheritsFrom"`
	Rules        []Rule   `yaml:"rules" json:"rules"`
	Priority     int      `yaml:"priority" json:"priority"`
}

// sortedRules returns the rules ordered by ascending numeric priority,
// preserving declaration order for equal priorities.
func (h *Hierarchy) sortedRules() []Rule {
	rules := append([]Rule(nil), h.Rules...)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})
	return rules
}

// hierarchyManifest is the YAML file shape for declaring hierarchies.
type hierarchyManifest struct {
	Hierarchies []Hierarchy `yaml:"hierarchies"`
}

// LoadHierarchies reads environment hierarchies from a YAML manifest.
func LoadHierarchies(path string) ([]Hierarchy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewPersistenceError(path, "failed to read hierarchy manifest", err)
	}
	var manifest hierarchyManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, types.NewPersistenceError(path, "failed to parse hierarchy manifest", err)
	}
	return manifest.Hierarchies, nil
}
