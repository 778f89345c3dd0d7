package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hiverecon/internal/config"
	"github.com/joshuapare/hiverecon/internal/logger"
	"github.com/joshuapare/hiverecon/pkg/hive"
	"github.com/joshuapare/hiverecon/pkg/types"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configFile string

	// Parse flags shared by every command that opens a hive
	recoverDeleted bool
	replayLogs     bool
	logPaths       []string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "hivectl",
	Short: "Inspect offline Windows registry hive files",
	Long: `hivectl parses Windows registry hive files offline. It rebuilds the key
tree, replays pending transaction logs, recovers deleted keys and values from
free space and searches everything it finds.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: hivectl.yaml in ., $HOME/.hivectl, /etc/hivectl)")

	rootCmd.PersistentFlags().BoolVarP(&recoverDeleted, "recover", "r", false, "Recover deleted keys and values")
	rootCmd.PersistentFlags().BoolVar(&replayLogs, "replay", true, "Replay transaction logs into a dirty hive")
	rootCmd.PersistentFlags().StringSliceVar(&logPaths, "log", nil, "Transaction log file (repeatable; default: <hive>.LOG1/.LOG2/.LOG)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and configures logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	cfg = c
	if !cmd.Flags().Changed("recover") && cfg.Recover {
		recoverDeleted = true
	}
	if !cmd.Flags().Changed("replay") {
		replayLogs = cfg.ReplayLogs
	}
	opts := cfg.LoggerOptions()
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if quiet {
		opts.Level = slog.LevelError
	}
	return logger.Init(opts)
}

// loadOptions merges the configuration with command-line flags.
func loadOptions() types.LoadOptions {
	var opts types.LoadOptions
	if cfg != nil {
		opts = cfg.LoadOptions()
	}
	opts.Recover = recoverDeleted
	opts.ReplayLogs = replayLogs
	opts.LogPaths = logPaths
	opts.Logger = logger.L
	if verbose && !quiet {
		last := types.Phase("")
		opts.Progress = func(p types.Progress) {
			if p.Phase != last {
				last = p.Phase
				printVerbose("  %s...\n", p.Phase)
			}
		}
	}
	return opts
}

// openHive parses the hive at path with the current flags.
func openHive(path string) (*hive.Hive, error) {
	printVerbose("Opening hive: %s\n", path)
	h, err := hive.Load(context.Background(), path, loadOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load hive: %w", err)
	}
	if n := len(h.Diagnostics().Diagnostics); n > 0 {
		printVerbose("Loaded with %d diagnostic(s)\n", n)
	}
	return h, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
