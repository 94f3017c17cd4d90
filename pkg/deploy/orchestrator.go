package deploy

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/clubworks/hookconf/pkg/inherit"
	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/persist"
	"github.com/clubworks/hookconf/pkg/types"
	"github.com/clubworks/hookconf/pkg/validate"
	"github.com/clubworks/hookconf/pkg/version"
)

// Orchestrator executes deployment plans. Targets are processed strictly
// sequentially to preserve stop-on-first-failure semantics.
type Orchestrator struct {
	inheritance *inherit.Engine
	validator   *validate.Validator
	versions    *version.Manager
	store       *persist.Store
	logger      log.Logger

	statuses map[string]*Status
	backups  map[string]string
}

// NewOrchestrator wires a deployment orchestrator.
func NewOrchestrator(inheritance *inherit.Engine, validator *validate.Validator, versions *version.Manager, store *persist.Store, logger log.Logger) *Orchestrator {
	return &Orchestrator{
		inheritance: inheritance,
		validator:   validator,
		versions:    versions,
		store:       store,
		logger:      logger.WithComponent("deploy"),
		statuses:    make(map[string]*Status),
		backups:     make(map[string]string),
	}
}

// Status returns the recorded status of a plan.
func (o *Orchestrator) Status(planID string) (*Status, bool) {
	s, ok := o.statuses[planID]
	return s, ok
}

// Execute runs a plan. Execution halts at the first failing target unless
// the plan is a dry run; dry runs evaluate every target for diagnostics. A
// plan finishes completed when at least one target succeeded, even with
// other targets failed; it finishes failed only when zero targets
// succeeded. Plans with no targets or no configuration are rejected before
// any status is recorded.
func (o *Orchestrator) Execute(ctx context.Context, plan *Plan) (*Status, error) {
	if len(plan.Targets) == 0 {
		return nil, types.NewDeploymentError("", "plan has no targets", nil)
	}
	if plan.Configuration == nil {
		return nil, types.NewDeploymentError("", "plan carries no configuration", nil)
	}

	status := &Status{
		PlanID:    plan.ID,
		State:     StatePending,
		StartedAt: time.Now().UTC(),
	}
	o.statuses[plan.ID] = status
	status.State = StateRunning

	o.logger.Info("deployment started",
		log.Str("plan", plan.ID),
		log.Int("targets", len(plan.Targets)),
		log.Bool("dryRun", plan.DryRun))

	for _, target := range plan.Targets {
		result := o.deployTarget(plan, target)
		status.Results = append(status.Results, result)
		if result.Success {
			status.Succeeded++
		} else {
			status.Failed++
			if !plan.DryRun {
				o.logger.Error("deployment halted on failing target",
					log.Str("plan", plan.ID),
					log.Str("environment", target.Environment),
					log.Str("error", result.Error))
				break
			}
		}
	}

	if status.Succeeded > 0 {
		status.State = StateCompleted
	} else {
		status.State = StateFailed
	}
	status.FinishedAt = time.Now().UTC()

	o.logger.Info("deployment finished",
		log.Str("plan", plan.ID),
		log.Str("state", string(status.State)),
		log.Int("succeeded", status.Succeeded),
		log.Int("failed", status.Failed))
	return status, nil
}

// deployTarget runs the per-target pipeline: inheritance, validation,
// migration, persistence.
func (o *Orchestrator) deployTarget(plan *Plan, target Target) Result {
	started := time.Now()
	result := Result{Environment: target.Environment, DryRun: plan.DryRun}
	fail := func(err error) Result {
		result.Error = err.Error()
		result.Duration = time.Since(started)
		return result
	}

	if target.RequireApproval && plan.ApprovedBy == "" {
		return fail(types.NewDeploymentError(target.Environment,
			"target requires approval and the plan carries none", nil))
	}

	doc, err := o.inheritance.Resolve(plan.Configuration.Document(), target.Environment)
	if err != nil {
		return fail(err)
	}

	if target.RequireValidation {
		validation := o.validator.ValidateSystemDocument(doc)
		if !validation.IsValid {
			return fail(types.NewDeploymentError(target.Environment,
				"validation failed: "+validation.ErrorMessages()[0], nil))
		}
	}

	doc, migratedFrom, err := o.migrateForTarget(doc, target)
	if err != nil {
		return fail(err)
	}
	result.MigratedFrom = migratedFrom

	if plan.DryRun {
		result.Success = true
		result.Duration = time.Since(started)
		return result
	}

	cfg, err := types.FromDocument(doc)
	if err != nil {
		return fail(types.NewDeploymentError(target.Environment,
			"failed to decode resolved configuration", err))
	}

	backup, err := o.store.Save(cfg, target.Path, "deployment "+plan.ID)
	if err != nil {
		return fail(err)
	}
	if backup != nil {
		result.BackupPath = backup.BackupPath
		result.RollbackAvailable = true
		o.backups[target.Environment] = backup.BackupPath
	}

	result.Success = true
	result.Duration = time.Since(started)
	return result
}

// migrateForTarget compares the incoming document's version with the
// version currently stored at the target and migrates forward when the
// incoming configuration is older.
func (o *Orchestrator) migrateForTarget(doc types.Document, target Target) (types.Document, string, error) {
	incoming, _ := doc["version"].(string)

	stored := o.storedVersion(target.Path)
	if stored == "" || incoming == "" {
		return doc, "", nil
	}

	cmp := version.Compare(incoming, stored)
	if !cmp.IsOlder {
		return doc, "", nil
	}

	migrated, err := o.versions.Migrate(doc, incoming, stored)
	if err != nil {
		return nil, "", types.NewDeploymentError(target.Environment,
			"version migration failed", err)
	}
	return migrated, incoming, nil
}

func (o *Orchestrator) storedVersion(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}
	v, _ := doc["version"].(string)
	return v
}

// RollbackTarget restores the backup recorded for an environment during the
// last deployment to it.
func (o *Orchestrator) RollbackTarget(environment string) error {
	backupPath, ok := o.backups[environment]
	if !ok {
		return types.NewDeploymentError(environment, "no rollback backup recorded", nil)
	}
	if _, err := o.store.Restore(backupPath, "", false); err != nil {
		return err
	}
	o.logger.Info("target rolled back",
		log.Str("environment", environment),
		log.Str("backup", backupPath))
	return nil
}

// RollbackPlan restores every succeeded target of a completed plan and
// marks the plan rolled back.
func (o *Orchestrator) RollbackPlan(planID string) error {
	status, ok := o.statuses[planID]
	if !ok {
		return types.NewDeploymentError("", "unknown plan "+planID, nil)
	}
	for _, result := range status.Results {
		if !result.Success || result.DryRun || !result.RollbackAvailable {
			continue
		}
		if err := o.RollbackTarget(result.Environment); err != nil {
			return err
		}
	}
	status.State = StateRolledBack
	return nil
}
