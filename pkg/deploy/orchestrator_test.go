package deploy

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubworks/hookconf/pkg/inherit"
	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/persist"
	"github.com/clubworks/hookconf/pkg/schema"
	"github.com/clubworks/hookconf/pkg/types"
	"github.com/clubworks/hookconf/pkg/validate"
	"github.com/clubworks/hookconf/pkg/version"
)

func newTestOrchestrator(t *testing.T, hierarchies []inherit.Hierarchy) *Orchestrator {
	t.Helper()
	logger := log.NewTestLogger()
	validator := validate.NewValidator(schema.NewRegistry(), logger)
	return NewOrchestrator(
		inherit.NewEngine(hierarchies, logger),
		validator,
		version.NewManager(logger),
		persist.NewStore(persist.DefaultOptions(), validator, logger),
		logger,
	)
}

func targetFor(t *testing.T, dir, environment string) Target {
	t.Helper()
	return Target{
		Environment:       environment,
		Path:              filepath.Join(dir, "hookconf."+environment+".json"),
		RequireValidation: true,
	}
}

func TestExecuteSingleTarget(t *testing.T) {
	dir := t.TempDir()
	o := newTestOrchestrator(t, nil)

	plan := NewPlan(types.NewDefaultConfiguration(), []Target{targetFor(t, dir, "staging")}, false)
	status, err := o.Execute(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, status.State)
	assert.Equal(t, 1, status.Succeeded)
	assert.Equal(t, 0, status.Failed)
	require.Len(t, status.Results, 1)
	assert.True(t, status.Results[0].Success)

	data, err := os.ReadFile(plan.Targets[0].Path)
	require.NoError(t, err)
	var written types.SystemConfiguration
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, "staging", written.Metadata.Environment)

	recorded, ok := o.Status(plan.ID)
	require.True(t, ok)
	assert.Equal(t, status, recorded)
}

func TestExecuteAppliesInheritancePerTarget(t *testing.T) {
	dir := t.TempDir()
	o := newTestOrchestrator(t, []inherit.Hierarchy{
		{
			Environment: "production",
			Rules: []inherit.Rule{
				{Path: "global.logLevel", Kind: inherit.RuleOverride, Value: "error"},
			},
		},
	})

	plan := NewPlan(types.NewDefaultConfiguration(), []Target{
		targetFor(t, dir, "staging"),
		targetFor(t, dir, "production"),
	}, false)
	status, err := o.Execute(context.Background(), plan)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, status.State)

	var staging, production types.SystemConfiguration
	stagingData, _ := os.ReadFile(plan.Targets[0].Path)
	require.NoError(t, json.Unmarshal(stagingData, &staging))
	productionData, _ := os.ReadFile(plan.Targets[1].Path)
	require.NoError(t, json.Unmarshal(productionData, &production))

	assert.Equal(t, "info", staging.Global.LogLevel)
	assert.Equal(t, "error", production.Global.LogLevel)
}

func TestExecuteHaltsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	// The staging hierarchy injects an invalid value, failing validation.
	o := newTestOrchestrator(t, []inherit.Hierarchy{
		{
			Environment: "staging",
			Rules: []inherit.Rule{
				{Path: "global.logLevel", Kind: inherit.RuleOverride, Value: "shouting"},
			},
		},
	})

	plan := NewPlan(types.NewDefaultConfiguration(), []Target{
		targetFor(t, dir, "development"),
		targetFor(t, dir, "staging"),
		targetFor(t, dir, "production"),
	}, false)
	status, err := o.Execute(context.Background(), plan)
	require.NoError(t, err)

	// development succeeded before the halt, so the plan still completes.
	assert.Equal(t, StateCompleted, status.State)
	assert.Equal(t, 1, status.Succeeded)
	assert.Equal(t, 1, status.Failed)
	require.Len(t, status.Results, 2, "production is never evaluated")

	_, err = os.Stat(plan.Targets[2].Path)
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteFailsWhenNothingSucceeds(t *testing.T) {
	dir := t.TempDir()
	o := newTestOrchestrator(t, []inherit.Hierarchy{
		{
			Environment: "staging",
			Rules: []inherit.Rule{
				{Path: "global.retryAttempts", Kind: inherit.RuleOverride, Value: 99},
			},
		},
	})

	plan := NewPlan(types.NewDefaultConfiguration(), []Target{targetFor(t, dir, "staging")}, false)
	status, err := o.Execute(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, 0, status.Succeeded)
}

func TestExecuteRejectsEmptyPlan(t *testing.T) {
	o := newTestOrchestrator(t, nil)

	plan := NewPlan(types.NewDefaultConfiguration(), nil, false)
	status, err := o.Execute(context.Background(), plan)
	require.Error(t, err)
	assert.True(t, types.IsDeploymentError(err))
	assert.Nil(t, status)

	_, ok := o.Status(plan.ID)
	assert.False(t, ok, "rejected plans leave no status behind")
}

func TestDryRunEvaluatesAllTargetsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	o := newTestOrchestrator(t, []inherit.Hierarchy{
		{
			Environment: "staging",
			Rules: []inherit.Rule{
				{Path: "global.logLevel", Kind: inherit.RuleOverride, Value: "shouting"},
			},
		},
	})

	plan := NewPlan(types.NewDefaultConfiguration(), []Target{
		targetFor(t, dir, "development"),
		targetFor(t, dir, "staging"),
		targetFor(t, dir, "production"),
	}, true)
	status, err := o.Execute(context.Background(), plan)
	require.NoError(t, err)

	require.Len(t, status.Results, 3, "dry run evaluates every target, even after a failure")
	assert.Equal(t, 2, status.Succeeded)
	assert.Equal(t, 1, status.Failed)
	assert.Equal(t, StateCompleted, status.State)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run writes no files")
}

func TestApprovalRequired(t *testing.T) {
	dir := t.TempDir()
	o := newTestOrchestrator(t, nil)

	target := targetFor(t, dir, "production")
	target.RequireApproval = true

	plan := NewPlan(types.NewDefaultConfiguration(), []Target{target}, false)
	status, err := o.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, status.State)
	assert.Contains(t, status.Results[0].Error, "approval")

	plan = NewPlan(types.NewDefaultConfiguration(), []Target{target}, false)
	plan.ApprovedBy = "release-manager"
	status, err = o.Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, status.State)
}

func TestRedeployRecordsBackupAndRollback(t *testing.T) {
	dir := t.TempDir()
	o := newTestOrchestrator(t, nil)
	target := targetFor(t, dir, "staging")

	first := types.NewDefaultConfiguration()
	status, err := o.Execute(context.Background(), NewPlan(first, []Target{target}, false))
	require.NoError(t, err)
	require.Equal(t, StateCompleted, status.State)
	assert.False(t, status.Results[0].RollbackAvailable, "first deployment has no prior file")

	second := first.Clone()
	second.Global.LogLevel = "warn"
	plan := NewPlan(second, []Target{target}, false)
	status, err = o.Execute(context.Background(), plan)
	require.NoError(t, err)
	require.Equal(t, StateCompleted, status.State)
	assert.True(t, status.Results[0].RollbackAvailable)
	assert.NotEmpty(t, status.Results[0].BackupPath)

	var onDisk types.SystemConfiguration
	data, _ := os.ReadFile(target.Path)
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "warn", onDisk.Global.LogLevel)

	require.NoError(t, o.RollbackPlan(plan.ID))
	recorded, _ := o.Status(plan.ID)
	assert.Equal(t, StateRolledBack, recorded.State)

	data, _ = os.ReadFile(target.Path)
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "info", onDisk.Global.LogLevel)
}

func TestRollbackTargetWithoutBackup(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	err := o.RollbackTarget("staging")
	require.Error(t, err)
	assert.True(t, types.IsDeploymentError(err))
}

func TestMigrateForOlderIncomingConfiguration(t *testing.T) {
	dir := t.TempDir()
	o := newTestOrchestrator(t, nil)
	target := targetFor(t, dir, "staging")

	// Seed the target with a current-version file.
	seeded := types.NewDefaultConfiguration()
	status, err := o.Execute(context.Background(), NewPlan(seeded, []Target{target}, false))
	require.NoError(t, err)
	require.Equal(t, StateCompleted, status.State)

	// Deploy an older configuration; it is migrated up to the stored version.
	old := types.NewDefaultConfiguration()
	old.Version = "0.9.0"
	target.RequireValidation = false
	plan := NewPlan(old, []Target{target}, false)
	status, err = o.Execute(context.Background(), plan)
	require.NoError(t, err)

	require.Equal(t, StateCompleted, status.State, "error: %s", status.Results[0].Error)
	assert.Equal(t, "0.9.0", status.Results[0].MigratedFrom)

	var onDisk types.SystemConfiguration
	data, _ := os.ReadFile(target.Path)
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, types.CurrentVersion, onDisk.Version)
}

func TestLoadPlanManifest(t *testing.T) {
	manifest := `
targets:
  - environment: staging
    path: /etc/hookconf/hookconf.staging.json
    requireValidation: true
  - environment: production
    path: /etc/hookconf/hookconf.production.json
    requireValidation: true
    requireApproval: true
dryRun: true
`
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	cfg := types.NewDefaultConfiguration()
	plan, err := LoadPlan(path, cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	assert.True(t, plan.DryRun)
	require.Len(t, plan.Targets, 2)
	assert.Equal(t, "staging", plan.Targets[0].Environment)
	assert.True(t, plan.Targets[1].RequireApproval)
	assert.Same(t, cfg, plan.Configuration)
}
