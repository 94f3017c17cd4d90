package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/clubworks/hookconf/pkg/cli/format"
	"github.com/clubworks/hookconf/pkg/persist"
	"github.com/clubworks/hookconf/pkg/types"
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <a.json> <b.json>",
		Short: "Compare two configuration files field by field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := readDocument(args[0])
			if err != nil {
				return err
			}
			right, err := readDocument(args[1])
			if err != nil {
				return err
			}

			flatLeft := persist.Flatten(left)
			flatRight := persist.Flatten(right)

			paths := make(map[string]bool, len(flatLeft)+len(flatRight))
			for p := range flatLeft {
				paths[p] = true
			}
			for p := range flatRight {
				paths[p] = true
			}
			sorted := make([]string, 0, len(paths))
			for p := range paths {
				sorted = append(sorted, p)
			}
			sort.Strings(sorted)

			changes := 0
			for _, path := range sorted {
				lv, inLeft := flatLeft[path]
				rv, inRight := flatRight[path]
				switch {
				case !inLeft:
					changes++
					fmt.Printf("%s %s = %s\n", format.SuccessColor.Sprint("+"), path, rv)
				case !inRight:
					changes++
					fmt.Printf("%s %s = %s\n", format.ErrorColor.Sprint("-"), path, lv)
				case lv != rv:
					changes++
					fmt.Printf("%s %s: %s -> %s\n", format.WarningColor.Sprint("~"), path, lv, rv)
				}
			}

			if changes == 0 {
				format.Success("configurations are identical")
			} else {
				fmt.Printf("%d differences\n", changes)
			}
			return nil
		},
	}
	return cmd
}

func readDocument(path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}
