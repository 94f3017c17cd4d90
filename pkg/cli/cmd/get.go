package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clubworks/hookconf/pkg/types"
)

func newGetCmd() *cobra.Command {
	var environment string

	cmd := &cobra.Command{
		Use:   "get [section]",
		Short: "Print the effective configuration or one section of it",
		Long: `Resolve the effective configuration for an environment and print it
as JSON. An optional dot path selects a section, e.g.:

  hookconf get global
  hookconf get contentTypes.match
  hookconf get global.logLevel --env production`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			result, err := a.loader.Load(environment)
			if err != nil {
				return err
			}

			var value interface{} = result.Configuration.Document()
			if len(args) == 1 {
				v, ok := types.GetPath(result.Configuration.Document(), args[0])
				if !ok {
					return fmt.Errorf("no value at path %q", args[0])
				}
				value = v
			}

			data, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			if verbose {
				fmt.Printf("source: %s\n", result.Source)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&environment, "env", "e", "development", "environment to resolve")
	return cmd
}
