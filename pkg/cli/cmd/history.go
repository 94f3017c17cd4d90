package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clubworks/hookconf/pkg/audit"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the durable update audit log",
		Long: `List the audit entries recorded in the durable audit store. The store
must be enabled in the tool configuration; the in-memory history of a
running host application is not visible across processes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if !a.cfg.Audit.Enabled {
				return fmt.Errorf("audit store is disabled; set audit.enabled in the tool config")
			}

			store := audit.NewStore(a.logger)
			if err := store.Open(a.cfg.Audit.Path); err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no audit entries")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rolledBack := ""
				if e.RolledBack {
					rolledBack = "rolled back"
				}
				rows = append(rows, []string{
					e.Timestamp.Format("2006-01-02 15:04:05"),
					e.UpdateID,
					string(e.Type),
					e.Path,
					e.Author,
					e.Reason,
					rolledBack,
				})
			}
			renderTable([]string{"TIME", "UPDATE", "TYPE", "PATH", "AUTHOR", "REASON", ""}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to show (0 for all)")
	return cmd
}
