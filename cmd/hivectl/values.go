package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hiverecon/pkg/api"
	"github.com/joshuapare/hiverecon/pkg/types"
)

var valuesSlack bool

func init() {
	cmd := newValuesCmd()
	cmd.Flags().BoolVar(&valuesSlack, "slack", false, "Show bytes left in each data cell past the value")
	rootCmd.AddCommand(cmd)
}

func newValuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "values <hive> [path]",
		Short: "List all values at a registry key",
		Long: `The values command lists the values of a key with their type, length
and data. Without a path it lists the root key's values.

Example:
  hivectl values SYSTEM "Select"
  hivectl values SOFTWARE "Microsoft\\Windows\\CurrentVersion\\Run" --json
  hivectl values NTUSER.DAT "Software" --slack`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValues(args)
		},
	}
	return cmd
}

func runValues(args []string) error {
	h, err := openHive(args[0])
	if err != nil {
		return err
	}
	var keyPath string
	if len(args) > 1 {
		keyPath = args[1]
	}
	k, err := h.Key(keyPath)
	if err != nil {
		return fmt.Errorf("failed to find key: %w", err)
	}

	sorted := slices.Clone(k.Values)
	slices.SortStableFunc(sorted, func(a, b *types.Value) int { return strings.Compare(a.Name, b.Name) })

	if jsonOut {
		values := make([]api.Value, 0, len(sorted))
		for _, v := range sorted {
			values = append(values, api.FromValue(v))
		}
		return printJSON(map[string]interface{}{
			"hive":   args[0],
			"path":   k.Path(),
			"values": values,
		})
	}

	for _, v := range sorted {
		state := ""
		if v.Deleted {
			state = " [deleted]"
		}
		printInfo("%s\t%s\t%d\t%s%s\n", v.DisplayName(), v.Type, v.Length, v.Text(), state)
		if valuesSlack && len(v.Slack) > 0 {
			printInfo("  slack: % X\n", v.Slack)
		}
	}
	return nil
}
