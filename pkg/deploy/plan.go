// Package deploy plans and executes configuration rollout to one or more
// environments, composing inheritance, validation, version migration, and
// persistence.
package deploy

import (
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/clubworks/hookconf/pkg/types"
)

// Target is one environment-specific destination for a rollout.
type Target struct {
	Environment       string `yaml:"environment" json:"environment"`
	Path              string `yaml:"path" json:"path"`
	RequireValidation bool   `yaml:"requireValidation" json:"requireValidation"`
	RequireApproval   bool   `yaml:"requireApproval" json:"requireApproval"`
}

// Plan describes a configuration rollout.
type Plan struct {
	ID            string
	Targets       []Target
	Configuration *types.SystemConfiguration
	DryRun        bool

	// ApprovedBy satisfies targets that require approval.
	ApprovedBy string
}

// State is the lifecycle state of a deployment plan.
type State string

// Plan states.
const (
	StatePending    State = "pending"
	StateRunning    State = "running"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateRolledBack State = "rolled_back"
)

// Result is the per-target outcome of a deployment.
type Result struct {
	Environment  string        `json:"environment"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	BackupPath   string        `json:"backupPath,omitempty"`
	MigratedFrom string        `json:"migratedFrom,omitempty"`
	DryRun       bool          `json:"dryRun"`
	Duration     time.Duration `json:"duration"`

	// RollbackAvailable is set when a backup of the target's previous file
	// was captured.
	RollbackAvailable bool `json:"rollbackAvailable"`
}

// Status aggregates the results of one plan.
type Status struct {
	PlanID     string    `json:"planId"`
	State      State     `json:"state"`
	Results    []Result  `json:"results"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// planManifest is the YAML shape of a deployment plan file.
type planManifest struct {
	Targets []Target `yaml:"targets"`
	DryRun  bool     `yaml:"dryRun"`
}

// NewPlan creates a plan with a fresh ID.
func NewPlan(cfg *types.SystemConfiguration, targets []Target, dryRun bool) *Plan {
	return &Plan{
		ID:            uuid.NewString(),
		Targets:       targets,
		Configuration: cfg,
		DryRun:        dryRun,
	}
}

// LoadPlan reads targets and flags from a YAML manifest; the configuration
// to roll out is attached by the caller.
func LoadPlan(path string, cfg *types.SystemConfiguration) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewPersistenceError(path, "failed to read plan manifest", err)
	}
	var manifest planManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, types.NewPersistenceError(path, "failed to parse plan manifest", err)
	}
	plan := NewPlan(cfg, manifest.Targets, manifest.DryRun)
	return plan, nil
}
