// Package cmd implements the hookconf command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clubworks/hookconf/internal/config"
	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/version"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hookconf",
	Short: "hookconf - schema-validated, environment-aware configuration",
	Long: `hookconf manages the hook configuration of a club-management
application: it loads settings from files, embedded documents and
environment variables, validates them against section schemas, migrates
between configuration versions, persists atomically with backups, and
rolls configuration out to multiple environments.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			return
		}
	},
	Version: version.BuildVersion,
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "tool config file (default is ./hookconf.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newListBackupsCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadToolConfig reads the tool configuration honoring the --config flag.
func loadToolConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load tool config: %w", err)
	}
	return cfg, nil
}

// newCLILogger builds the logger used by CLI invocations.
func newCLILogger(cfg *config.Config) log.Logger {
	level := log.ParseLevel(cfg.Log.Level)
	if verbose {
		level = log.DebugLevel
	}
	var formatter log.Formatter = log.NewTextFormatter()
	if cfg.Log.Format == "json" {
		formatter = &log.JSONFormatter{}
	}
	return log.NewLogger(log.WithLevel(level), log.WithFormatter(formatter))
}
