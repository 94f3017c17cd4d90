package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clubworks/hookconf/pkg/cli/format"
	"github.com/clubworks/hookconf/pkg/types"
)

func newValidateCmd() *cobra.Command {
	var environment string

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a configuration file or the effective configuration",
		Long: `Validate a configuration document against the section schemas.

With a file argument the file is validated as-is. Without one, the
effective configuration for the chosen environment is resolved through
the normal source precedence and validated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			var doc types.Document
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[0], err)
				}
				if err := json.Unmarshal(data, &doc); err != nil {
					return fmt.Errorf("failed to parse %s: %w", args[0], err)
				}
			} else {
				result, err := a.loader.Load(environment)
				if err != nil {
					return err
				}
				doc = result.Configuration.Document()
			}

			result := a.validator.ValidateSystemDocument(doc)
			format.PrintValidation(result)
			if !result.IsValid {
				format.Error("configuration is invalid (%d errors, %d warnings)",
					len(result.Errors), len(result.Warnings))
				os.Exit(1)
			}
			format.Success("configuration is valid (%d warnings)", len(result.Warnings))
			return nil
		},
	}

	cmd.Flags().StringVarP(&environment, "env", "e", "development", "environment to resolve when no file is given")
	return cmd
}
