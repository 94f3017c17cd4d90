package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		environment string
		outFormat   string
		outFile     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the effective configuration",
		Long: `Export the effective configuration for an environment as JSON, YAML,
or flattened environment variable assignments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			result, err := a.loader.Load(environment)
			if err != nil {
				return err
			}

			var data []byte
			switch outFormat {
			case "json":
				data, err = a.store.ExportJSON(result.Configuration)
			case "yaml":
				data, err = a.store.ExportYAML(result.Configuration)
			case "env":
				data, err = a.store.ExportEnv(result.Configuration, a.cfg.EnvPrefix)
			default:
				return fmt.Errorf("unknown format %q (json, yaml, env)", outFormat)
			}
			if err != nil {
				return err
			}

			if outFile == "" {
				fmt.Print(string(data))
				return nil
			}
			return os.WriteFile(outFile, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&environment, "env", "e", "development", "environment to resolve")
	cmd.Flags().StringVar(&outFormat, "format", "json", "output format: json, yaml, env")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "write to file instead of stdout")
	return cmd
}
