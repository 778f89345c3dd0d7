package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

func init() {
	cmd := newExportCmd()
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <hive>",
		Short: "Export every key and value as pipe-separated text",
		Long: `The export command writes one line per key and per value, followed by
total_* counters. Fields are separated by '|'; '%', '|' and line breaks
inside fields are percent-encoded.

  key|<path>|<last write>|<subkeys>|<values>|<state>|<offset>
  value|<key path>|<name>|<type>|<length>|<state>|<offset>|<data>

Example:
  hivectl export SYSTEM > system.txt
  hivectl export NTUSER.DAT --recover -o ntuser.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args)
		},
	}
	return cmd
}

func runExport(args []string) error {
	h, err := openHive(args[0])
	if err != nil {
		return err
	}

	if exportOutput == "" {
		return h.ExportText(os.Stdout)
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := h.ExportText(f); err != nil {
		f.Close()
		return fmt.Errorf("export failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	printVerbose("Exported to %s\n", exportOutput)
	return nil
}
