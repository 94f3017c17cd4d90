package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clubworks/hookconf/pkg/cli/format"
	"github.com/clubworks/hookconf/pkg/types"
)

func newMigrateCmd() *cobra.Command {
	var (
		toVersion string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "migrate <file>",
		Short: "Migrate a configuration file to a newer version",
		Long: `Migrate a configuration file along the registered migration chain.
The file's declared version is the starting point; --to selects the
target version (default: the current version of this build).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			from, _ := doc["version"].(string)
			if from == "" {
				return fmt.Errorf("%s declares no version", args[0])
			}
			if from == toVersion {
				format.Success("already at version %s, nothing to do", from)
				return nil
			}

			migrated, err := a.versions.Migrate(doc, from, toVersion)
			if err != nil {
				return err
			}

			if dryRun {
				path, err := a.versions.Path(from, toVersion)
				if err != nil {
					return err
				}
				format.Success("migration %s -> %s is possible (%d steps applied in memory)",
					from, toVersion, len(path))
				return nil
			}

			cfg, err := types.FromDocument(migrated)
			if err != nil {
				return err
			}
			if _, err := a.store.Save(cfg, args[0], fmt.Sprintf("migration %s -> %s", from, toVersion)); err != nil {
				return err
			}
			format.Success("migrated %s from %s to %s", args[0], from, toVersion)
			return nil
		},
	}

	cmd.Flags().StringVar(&toVersion, "to", types.CurrentVersion, "target version")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and apply the chain in memory without writing")
	return cmd
}
