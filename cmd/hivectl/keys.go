package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hiverecon/pkg/types"
)

var (
	keysRecursive bool
	keysDepth     int
)

func init() {
	cmd := newKeysCmd()
	cmd.Flags().BoolVarP(&keysRecursive, "recursive", "R", false, "List all subkeys recursively")
	cmd.Flags().IntVar(&keysDepth, "depth", 0, "Maximum recursion depth (0 = unlimited)")
	rootCmd.AddCommand(cmd)
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys <hive> [path]",
		Short: "List keys at a given path",
		Long: `The keys command lists the subkeys of a key. Without a path it lists
the root's subkeys. Recovered keys are marked when --recover is set.

Example:
  hivectl keys SYSTEM
  hivectl keys SYSTEM "ControlSet001\\Services"
  hivectl keys SOFTWARE --recursive --depth 2
  hivectl keys NTUSER.DAT Software --recover --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(args)
		},
	}
	return cmd
}

type keyEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	LastWrite string `json:"last_write"`
	SubKeys   int    `json:"subkeys"`
	Values    int    `json:"values"`
	Deleted   bool   `json:"deleted,omitempty"`
}

func runKeys(args []string) error {
	h, err := openHive(args[0])
	if err != nil {
		return err
	}
	var keyPath string
	if len(args) > 1 {
		keyPath = args[1]
	}
	parent, err := h.Key(keyPath)
	if err != nil {
		return fmt.Errorf("failed to find key: %w", err)
	}

	maxDepth := 1
	if keysRecursive {
		maxDepth = keysDepth
	}
	var keys []keyEntry
	var visit func(k *types.Key, depth int)
	visit = func(k *types.Key, depth int) {
		for _, c := range k.SubKeys {
			keys = append(keys, keyEntry{
				Name:      c.Name,
				Path:      c.Path(),
				LastWrite: stamp(c),
				SubKeys:   len(c.SubKeys),
				Values:    len(c.Values),
				Deleted:   c.Deleted(),
			})
			if maxDepth == 0 || depth < maxDepth {
				visit(c, depth+1)
			}
		}
	}
	visit(parent, 1)

	if jsonOut {
		return printJSON(map[string]interface{}{
			"hive":  args[0],
			"path":  parent.Path(),
			"keys":  keys,
			"count": len(keys),
		})
	}

	for _, k := range keys {
		name := k.Name
		if keysRecursive {
			name = k.Path
		}
		if k.Deleted {
			name += " [deleted]"
		}
		printInfo("%s\n", name)
	}
	printVerbose("\nTotal: %d keys\n", len(keys))
	return nil
}

func stamp(k *types.Key) string {
	return k.LastWrite.UTC().Format("2006-01-02T15:04:05Z")
}
