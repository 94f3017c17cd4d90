package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clubworks/hookconf/pkg/cli/format"
	"github.com/clubworks/hookconf/pkg/persist"
)

func newBackupCmd() *cobra.Command {
	var (
		reason   string
		schedule string
	)

	cmd := &cobra.Command{
		Use:   "backup [file]",
		Short: "Back up a configuration file",
		Long: `Create a timestamped backup of a configuration file. Without an
argument the active configuration file of the tool config is backed up.

With --schedule, hookconf stays in the foreground and snapshots the file
on the given cron schedule, pruning old backups past the retention count:

  hookconf backup --schedule "0 3 * * *"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			path := a.cfg.ConfigPath()
			if len(args) == 1 {
				path = args[0]
			}

			if schedule != "" {
				scheduler := persist.NewScheduler(a.store, a.logger)
				if _, err := scheduler.Add(schedule, path); err != nil {
					return fmt.Errorf("invalid schedule %q: %w", schedule, err)
				}
				scheduler.Start()
				fmt.Printf("backing up %s on schedule %q, ctrl-c to stop\n", path, schedule)

				stop := make(chan os.Signal, 1)
				signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
				<-stop
				scheduler.Stop()
				return nil
			}

			meta, err := a.store.CreateBackup(path, reason)
			if err != nil {
				return err
			}
			format.Success("backup created: %s (%d bytes, checksum %s)",
				meta.BackupPath, meta.Size, meta.Checksum)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "manual", "reason recorded in the backup metadata")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule for periodic backups")
	return cmd
}

func newListBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-backups [file]",
		Short: "List the backups of a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			path := a.cfg.ConfigPath()
			if len(args) == 1 {
				path = args[0]
			}

			backups, err := a.store.ListBackups(path)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Println("no backups found")
				return nil
			}

			rows := make([][]string, 0, len(backups))
			for _, b := range backups {
				rows = append(rows, []string{
					b.BackupPath,
					b.Timestamp.Format("2006-01-02 15:04:05"),
					b.Version,
					b.Environment,
					b.Reason,
					fmt.Sprintf("%d", b.Size),
				})
			}
			renderTable([]string{"BACKUP", "CREATED", "VERSION", "ENVIRONMENT", "REASON", "SIZE"}, rows)
			return nil
		},
	}
	return cmd
}
