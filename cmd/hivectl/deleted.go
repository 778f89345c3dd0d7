package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/hiverecon/pkg/api"
	"github.com/joshuapare/hiverecon/pkg/types"
)

func init() {
	rootCmd.AddCommand(newDeletedCmd())
}

func newDeletedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deleted <hive>",
		Short: "List keys and values recovered from free space",
		Long: `The deleted command always parses in recovery mode. It prints deleted
keys reattached under a live parent, then keys whose parent is gone, then
value records that no key references.

Example:
  hivectl deleted NTUSER.DAT
  hivectl deleted NTUSER.DAT --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleted(args)
		},
	}
	return cmd
}

func runDeleted(args []string) error {
	recoverDeleted = true
	h, err := openHive(args[0])
	if err != nil {
		return err
	}

	if jsonOut {
		keys := []api.Key{}
		for _, k := range h.Deleted() {
			k.Walk(func(n *types.Key) bool {
				keys = append(keys, api.FromKey(n))
				return true
			})
		}
		values := []api.Value{}
		for _, v := range h.Unassociated() {
			values = append(values, api.FromValue(v))
		}
		return printJSON(map[string]interface{}{
			"hive":         args[0],
			"keys":         keys,
			"unassociated": values,
		})
	}

	for _, root := range h.Deleted() {
		root.Walk(func(k *types.Key) bool {
			where := "orphan"
			if k.HasActiveParent() {
				where = "reattached"
			}
			printInfo("key\t%s\t%s\t%s\n", k.Path(), stamp(k), where)
			for _, v := range k.Values {
				printInfo("value\t%s\t%s\t%s\t%s\n", k.Path(), v.DisplayName(), v.Type, v.Text())
			}
			return true
		})
	}
	for _, v := range h.Unassociated() {
		printInfo("unassociated\t0x%08X\t%s\t%s\t%s\n", v.Offset, v.DisplayName(), v.Type, v.Text())
	}
	st := h.Stats()
	printVerbose("\nDeleted keys: %d, deleted values: %d, unassociated values: %d\n",
		st.DeletedKeys, st.DeletedValues, st.UnassociatedValues)
	return nil
}
