package inherit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/types"
)

func baseDocument() types.Document {
	return types.Document{
		"version": "1.0.0",
		"global": map[string]interface{}{
			"logLevel":      "info",
			"enableMetrics": true,
			"retryAttempts": 3,
		},
		"contentTypes": map[string]interface{}{
			"club":  map[string]interface{}{"enabled": true, "priority": 5},
			"match": map[string]interface{}{"enabled": true, "priority": 7},
		},
	}
}

func TestChainOrdering(t *testing.T) {
	e := NewEngine([]Hierarchy{
		{Environment: "development", InheritsFrom: []string{"test"}},
		{Environment: "staging", InheritsFrom: []string{"development"}},
		{Environment: "production", InheritsFrom: []string{"staging"}},
	}, log.NewTestLogger())

	chain, err := e.Chain("production")
	require.NoError(t, err)
	assert.Equal(t, []string{"test", "development", "staging", "production"}, chain)
}

func TestChainUnknownEnvironmentIsItself(t *testing.T) {
	e := NewEngine(nil, log.NewTestLogger())

	chain, err := e.Chain("qa")
	require.NoError(t, err)
	assert.Equal(t, []string{"qa"}, chain)
}

func TestChainCircularInheritance(t *testing.T) {
	e := NewEngine([]Hierarchy{
		{Environment: "a", InheritsFrom: []string{"b"}},
		{Environment: "b", InheritsFrom: []string{"a"}},
	}, log.NewTestLogger())

	_, err := e.Chain("a")
	require.Error(t, err)
	assert.True(t, types.IsInheritanceError(err))
}

func TestResolveNoRulesStampsMetadataOnly(t *testing.T) {
	e := NewEngine(nil, log.NewTestLogger())
	base := baseDocument()

	out, err := e.Resolve(base, "staging")
	require.NoError(t, err)

	meta := out["metadata"].(map[string]interface{})
	assert.Equal(t, "staging", meta["environment"])
	assert.NotEmpty(t, meta["updatedAt"])

	// Everything else untouched, and the base document not mutated.
	assert.Equal(t, base["global"], out["global"])
	_, hasMeta := base["metadata"]
	assert.False(t, hasMeta)
}

func TestResolveLogLevelChain(t *testing.T) {
	e := NewEngine([]Hierarchy{
		{
			Environment: "development",
			Rules: []Rule{
				{Path: "global.logLevel", Kind: RuleOverride, Value: "debug"},
			},
		},
		{
			Environment:  "staging",
			InheritsFrom: []string{"development"},
			Rules: []Rule{
				{Path: "global.logLevel", Kind: RuleOverride, Value: "info"},
			},
		},
		{
			Environment:  "production",
			InheritsFrom: []string{"staging"},
			Rules: []Rule{
				{Path: "global.logLevel", Kind: RuleOverride, Value: "error"},
				{Path: "global.enableMetrics", Kind: RuleOverride, Value: true},
			},
		},
	}, log.NewTestLogger())

	tests := []struct {
		environment string
		logLevel    string
	}{
		{"development", "debug"},
		{"staging", "info"},
		{"production", "error"},
	}
	for _, tt := range tests {
		out, err := e.Resolve(baseDocument(), tt.environment)
		require.NoError(t, err)
		got, _ := types.GetPath(out, "global.logLevel")
		assert.Equal(t, tt.logLevel, got, "environment %s", tt.environment)
	}
}

func TestResolveDescendantOverridesRootAncestor(t *testing.T) {
	// production is the root of the chain test -> development -> staging ->
	// production; descendants override its strict settings.
	e := NewEngine([]Hierarchy{
		{
			Environment: "production",
			Rules: []Rule{
				{Path: "global.logLevel", Kind: RuleOverride, Value: "error"},
				{Path: "global.retryAttempts", Kind: RuleOverride, Value: 5},
			},
		},
		{
			Environment:  "staging",
			InheritsFrom: []string{"production"},
			Rules: []Rule{
				{Path: "global.logLevel", Kind: RuleOverride, Value: "info"},
			},
		},
		{
			Environment:  "development",
			InheritsFrom: []string{"staging"},
			Rules: []Rule{
				{Path: "global.logLevel", Kind: RuleOverride, Value: "debug"},
			},
		},
		{
			Environment:  "test",
			InheritsFrom: []string{"development"},
		},
	}, log.NewTestLogger())

	out, err := e.Resolve(baseDocument(), "development")
	require.NoError(t, err)
	got, _ := types.GetPath(out, "global.logLevel")
	assert.Equal(t, "debug", got, "development's own rule beats the production root")
	retries, _ := types.GetPath(out, "global.retryAttempts")
	assert.Equal(t, 5, retries, "unopposed root rules still apply")

	out, err = e.Resolve(baseDocument(), "test")
	require.NoError(t, err)
	got, _ = types.GetPath(out, "global.logLevel")
	assert.Equal(t, "debug", got, "test declares no rules and keeps its parent's value")
}

func TestResolveRulePriorityOrder(t *testing.T) {
	e := NewEngine([]Hierarchy{
		{
			Environment: "development",
			Rules: []Rule{
				{Path: "global.logLevel", Kind: RuleOverride, Value: "late", Priority: 10},
				{Path: "global.logLevel", Kind: RuleOverride, Value: "early", Priority: 1},
			},
		},
	}, log.NewTestLogger())

	out, err := e.Resolve(baseDocument(), "development")
	require.NoError(t, err)
	got, _ := types.GetPath(out, "global.logLevel")
	assert.Equal(t, "late", got, "higher priority value applies last and wins")
}

func TestResolveMergeRule(t *testing.T) {
	e := NewEngine([]Hierarchy{
		{
			Environment: "development",
			Rules: []Rule{
				{
					Path: "contentTypes.club",
					Kind: RuleMerge,
					Value: map[string]interface{}{
						"priority":      9,
						"cacheStrategy": "none",
					},
				},
			},
		},
	}, log.NewTestLogger())

	out, err := e.Resolve(baseDocument(), "development")
	require.NoError(t, err)

	club, _ := types.GetPath(out, "contentTypes.club")
	clubMap := club.(map[string]interface{})
	assert.Equal(t, 9, clubMap["priority"])
	assert.Equal(t, "none", clubMap["cacheStrategy"])
	assert.Equal(t, true, clubMap["enabled"], "merge keeps keys the rule does not name")
}

func TestResolveAppendRule(t *testing.T) {
	base := baseDocument()
	club := base["contentTypes"].(map[string]interface{})["club"].(map[string]interface{})
	club["hooks"] = []interface{}{"beforeCreate"}

	e := NewEngine([]Hierarchy{
		{
			Environment: "development",
			Rules: []Rule{
				{Path: "contentTypes.club.hooks", Kind: RuleAppend, Value: []interface{}{"afterUpdate"}},
			},
		},
	}, log.NewTestLogger())

	out, err := e.Resolve(base, "development")
	require.NoError(t, err)

	hooks, _ := types.GetPath(out, "contentTypes.club.hooks")
	assert.Equal(t, []interface{}{"beforeCreate", "afterUpdate"}, hooks)
}

func TestResolveAppendRequiresArrays(t *testing.T) {
	e := NewEngine([]Hierarchy{
		{
			Environment: "development",
			Rules: []Rule{
				{Path: "global.logLevel", Kind: RuleAppend, Value: []interface{}{"x"}},
			},
		},
	}, log.NewTestLogger())

	_, err := e.Resolve(baseDocument(), "development")
	require.Error(t, err)
	assert.True(t, types.IsInheritanceError(err))
}

func TestResolveWildcardRule(t *testing.T) {
	e := NewEngine([]Hierarchy{
		{
			Environment: "development",
			Rules: []Rule{
				{Path: "contentTypes.*.enabled", Kind: RuleOverride, Value: false},
			},
		},
	}, log.NewTestLogger())

	out, err := e.Resolve(baseDocument(), "development")
	require.NoError(t, err)

	for _, name := range []string{"club", "match"} {
		enabled, _ := types.GetPath(out, "contentTypes."+name+".enabled")
		assert.Equal(t, false, enabled, "content type %s", name)
	}
}

func TestIgnoreBlocksAncestorOverride(t *testing.T) {
	e := NewEngine([]Hierarchy{
		{
			Environment: "staging",
			Rules: []Rule{
				{Path: "global.logLevel", Kind: RuleOverride, Value: "warn"},
				{Path: "global.retryAttempts", Kind: RuleOverride, Value: 5},
			},
		},
		{
			Environment:  "production",
			InheritsFrom: []string{"staging"},
			Rules: []Rule{
				{Path: "global.logLevel", Kind: RuleIgnore},
			},
		},
	}, log.NewTestLogger())

	out, err := e.Resolve(baseDocument(), "production")
	require.NoError(t, err)

	logLevel, _ := types.GetPath(out, "global.logLevel")
	assert.Equal(t, "info", logLevel, "ignored path keeps the base value even against ancestor rules")

	retry, _ := types.GetPath(out, "global.retryAttempts")
	assert.Equal(t, 5, retry, "non-ignored ancestor rules still apply")
}

func TestResolveCreatesIntermediateObjects(t *testing.T) {
	e := NewEngine([]Hierarchy{
		{
			Environment: "development",
			Rules: []Rule{
				{Path: "environments.development.logLevel", Kind: RuleOverride, Value: "debug"},
			},
		},
	}, log.NewTestLogger())

	out, err := e.Resolve(types.Document{"version": "1.0.0"}, "development")
	require.NoError(t, err)

	got, ok := types.GetPath(out, "environments.development.logLevel")
	require.True(t, ok)
	assert.Equal(t, "debug", got)
}

func TestResolveScalarSegmentFails(t *testing.T) {
	e := NewEngine([]Hierarchy{
		{
			Environment: "development",
			Rules: []Rule{
				{Path: "version.minor", Kind: RuleOverride, Value: 2},
			},
		},
	}, log.NewTestLogger())

	_, err := e.Resolve(baseDocument(), "development")
	require.Error(t, err)
	assert.True(t, types.IsInheritanceError(err))
}

func TestLoadHierarchies(t *testing.T) {
	manifest := `
hierarchies:
  - environment: development
    rules:
      - path: global.logLevel
        kind: override
        value: debug
  - environment: production
    inheritsFrom: [development]
    priority: 10
    rules:
      - path: global.logLevel
        kind: ignore
`
	path := filepath.Join(t.TempDir(), "hierarchies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	hierarchies, err := LoadHierarchies(path)
	require.NoError(t, err)
	require.Len(t, hierarchies, 2)

	assert.Equal(t, "development", hierarchies[0].Environment)
	assert.Equal(t, RuleOverride, hierarchies[0].Rules[0].Kind)
	assert.Equal(t, []string{"development"}, hierarchies[1].InheritsFrom)
	assert.Equal(t, RuleIgnore, hierarchies[1].Rules[0].Kind)
	assert.Equal(t, 10, hierarchies[1].Priority)
}

func TestLoadHierarchiesMissingFile(t *testing.T) {
	_, err := LoadHierarchies(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, types.IsPersistenceError(err))
}
