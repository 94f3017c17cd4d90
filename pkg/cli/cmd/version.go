package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clubworks/hookconf/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.BuildInfo())
		},
	}
}
