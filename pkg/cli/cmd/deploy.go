package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clubworks/hookconf/pkg/cli/format"
	"github.com/clubworks/hookconf/pkg/deploy"
	"github.com/clubworks/hookconf/pkg/inherit"
)

func newDeployCmd() *cobra.Command {
	var (
		planFile      string
		hierarchyFile string
		environment   string
		dryRun        bool
		approvedBy    string
	)

	cmd := &cobra.Command{
		Use:   "deploy -f plan.yaml",
		Short: "Roll the configuration out to one or more environments",
		Long: `Deploy the effective configuration to the targets of a plan manifest.

Each target is resolved through the environment inheritance hierarchy,
validated, migrated on version mismatch and persisted atomically with a
backup of the previous file. Targets are processed sequentially and a
failing target halts the rollout unless --dry-run is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			loadResult, err := a.loader.Load(environment)
			if err != nil {
				return err
			}

			plan, err := deploy.LoadPlan(planFile, loadResult.Configuration)
			if err != nil {
				return err
			}
			if dryRun {
				plan.DryRun = true
			}
			plan.ApprovedBy = approvedBy

			var hierarchies []inherit.Hierarchy
			if hierarchyFile != "" {
				hierarchies, err = inherit.LoadHierarchies(hierarchyFile)
				if err != nil {
					return err
				}
			}
			engine := inherit.NewEngine(hierarchies, a.logger)

			orchestrator := deploy.NewOrchestrator(engine, a.validator, a.versions, a.store, a.logger)
			status, err := orchestrator.Execute(context.Background(), plan)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(status.Results))
			for _, r := range status.Results {
				outcome := format.SuccessColor.Sprint("ok")
				if !r.Success {
					outcome = format.ErrorColor.Sprint("failed")
				}
				note := r.Error
				if r.MigratedFrom != "" && note == "" {
					note = "migrated from " + r.MigratedFrom
				}
				rows = append(rows, []string{r.Environment, outcome, r.BackupPath, note})
			}
			renderTable([]string{"ENVIRONMENT", "RESULT", "BACKUP", "NOTE"}, rows)

			fmt.Printf("plan %s: %s (%d succeeded, %d failed)\n",
				status.PlanID, status.State, status.Succeeded, status.Failed)
			if status.State == deploy.StateFailed {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&planFile, "file", "f", "", "deployment plan manifest (required)")
	cmd.Flags().StringVar(&hierarchyFile, "hierarchies", "", "environment hierarchy manifest")
	cmd.Flags().StringVarP(&environment, "env", "e", "development", "environment to resolve the base configuration for")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "evaluate all targets without writing")
	cmd.Flags().StringVar(&approvedBy, "approve", "", "approver for targets that require approval")
	cmd.MarkFlagRequired("file")
	return cmd
}
