package cmd

import (
	"github.com/spf13/cobra"

	"github.com/clubworks/hookconf/pkg/cli/format"
)

func newRestoreCmd() *cobra.Command {
	var (
		target      string
		skipCurrent bool
		verifyOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "restore <backup>",
		Short: "Restore a configuration file from a backup",
		Long: `Restore a backup artifact: its checksum and embedded configuration are
verified, the current file is backed up, and the restored configuration
is written atomically. --verify-only checks the backup without writing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			backupPath := args[0]

			if err := a.store.VerifyBackup(backupPath); err != nil {
				return err
			}
			if verifyOnly {
				format.Success("backup verified: %s", backupPath)
				return nil
			}

			cfg, err := a.store.Restore(backupPath, target, !skipCurrent)
			if err != nil {
				return err
			}
			format.Success("restored configuration version %s from %s",
				cfg.Version, backupPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "restore to this path instead of the backup's original path")
	cmd.Flags().BoolVar(&skipCurrent, "skip-current-backup", false, "do not back up the current file before restoring")
	cmd.Flags().BoolVar(&verifyOnly, "verify-only", false, "verify the backup without writing anything")
	return cmd
}
