package main

import (
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOut {
			return printJSON(map[string]string{
				"version": version,
				"commit":  commit,
				"built":   date,
				"go":      runtime.Version(),
			})
		}
		printInfo("hivectl %s\n", version)
		printInfo("  commit: %s\n", commit)
		printInfo("  built: %s\n", date)
		printInfo("  go: %s\n", runtime.Version())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
