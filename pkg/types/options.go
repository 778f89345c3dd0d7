package types

import "log/slog"

// Phase names a long-running stage of a load.
type Phase string

const (
	PhaseReplay  Phase = "replay"
	PhaseScan    Phase = "scan"
	PhaseBuild   Phase = "build"
	PhaseRecover Phase = "recover"
	PhaseIndex   Phase = "index"
)

// Progress is reported during a load. Fraction is in [0, 1] and never
// decreases within a phase.
type Progress struct {
	Phase    Phase
	Fraction float64
}

// ProgressFunc receives progress updates on the loading goroutine.
type ProgressFunc func(Progress)

// LoadOptions controls how a hive is parsed.
type LoadOptions struct {
	// Recover salvages deleted keys and values and carves free cells.
	Recover bool

	// ReplayLogs applies transaction logs to a dirty hive before parsing.
	// When LogPaths and LogData are empty, logs next to the hive file are
	// discovered by name.
	ReplayLogs bool

	// LogPaths names transaction log files explicitly.
	LogPaths []string

	// LogData supplies transaction logs as raw bytes.
	LogData [][]byte

	// Progress receives phase progress. Nil disables reporting.
	Progress ProgressFunc

	// Logger receives soft warnings. Nil selects the package default.
	Logger *slog.Logger

	// MaxHiveSize rejects larger files before reading them. Zero means no limit.
	MaxHiveSize int64
}
