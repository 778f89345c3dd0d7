package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsDiagnostics bool

func init() {
	cmd := newStatsCmd()
	cmd.Flags().BoolVarP(&statsDiagnostics, "diagnostics", "d", false, "List every diagnostic found while parsing")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <hive>",
		Short: "Show record counts and parse diagnostics",
		Long: `The stats command reports how many keys and values the hive holds,
how many were recovered, how its bins are used and what went wrong while
parsing it.

Example:
  hivectl stats SYSTEM
  hivectl stats SYSTEM --recover --diagnostics
  hivectl stats SYSTEM --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

func runStats(args []string) error {
	h, err := openHive(args[0])
	if err != nil {
		return err
	}
	st := h.Stats()
	report := h.Diagnostics()

	if jsonOut {
		out := map[string]interface{}{
			"hive":    args[0],
			"stats":   st,
			"summary": report.Summary,
		}
		if statsDiagnostics {
			out["diagnostics"] = report.Diagnostics
		}
		return printJSON(out)
	}

	printInfo("\nHive Statistics:\n")
	printInfo("  File:                %s\n", args[0])
	printInfo("  Size:                %s\n", humanSize(st.FileSize))
	printInfo("  Type:                %s\n", st.HiveType)
	printInfo("  Keys:                %d\n", st.Keys)
	printInfo("  Values:              %d\n", st.Values)
	printInfo("  Deleted keys:        %d\n", st.DeletedKeys)
	printInfo("  Deleted values:      %d\n", st.DeletedValues)
	printInfo("  Unassociated values: %d\n", st.UnassociatedValues)
	printInfo("  Bins:                %d\n", st.Bins)
	printInfo("  Used cell bytes:     %d\n", st.UsedCellBytes)
	printInfo("  Free cell bytes:     %d\n", st.FreeCellBytes)
	printInfo("  Scanned/expected:    %d / %d\n", st.ScannedBytes, st.ExpectedBytes)
	printInfo("  Checksum:            %s\n", okWord(st.ChecksumValid))
	printInfo("  Replayed logs:       %d\n", st.ReplayedLogs)
	printInfo("  Diagnostics:         %d\n", st.Diagnostics)

	if statsDiagnostics && len(report.Diagnostics) > 0 {
		printInfo("\n%s", report.FormatTextCompact())
	}
	return nil
}

func humanSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
}
