// Package diag accumulates the soft and consistency issues of a single parse
// and mirrors each one to the structured logger.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/hiverecon/pkg/types"
)

// Collector gathers diagnostics for one parse. A nil *Collector discards
// everything, so packages can be driven without one in tests.
type Collector struct {
	mu     sync.Mutex
	report *types.DiagnosticReport
	log    *slog.Logger
	phase  types.Phase
}

// New creates a collector logging through log.
func New(log *slog.Logger, fileSize int64) *Collector {
	r := types.NewDiagnosticReport()
	r.FileSize = fileSize
	return &Collector{report: r, log: log}
}

// SetPhase tags subsequent diagnostics with phase.
func (c *Collector) SetPhase(p types.Phase) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// Warnf records a warning: a record or branch was skipped.
func (c *Collector) Warnf(cat types.DiagCategory, off uint64, structure, format string, args ...any) {
	c.add(types.SevWarning, cat, off, structure, fmt.Sprintf(format, args...))
}

// Infof records an informational consistency note.
func (c *Collector) Infof(cat types.DiagCategory, off uint64, structure, format string, args ...any) {
	c.add(types.SevInfo, cat, off, structure, fmt.Sprintf(format, args...))
}

// Errorf records data that could not be resolved at all.
func (c *Collector) Errorf(cat types.DiagCategory, off uint64, structure, format string, args ...any) {
	c.add(types.SevError, cat, off, structure, fmt.Sprintf(format, args...))
}

// Mismatch records a warning carrying the expected and actual values.
func (c *Collector) Mismatch(cat types.DiagCategory, off uint64, structure, issue string, expected, actual any) {
	if c == nil {
		return
	}
	c.record(types.Diagnostic{
		Severity:  types.SevWarning,
		Category:  cat,
		Offset:    off,
		Structure: structure,
		Issue:     issue,
		Expected:  expected,
		Actual:    actual,
	})
}

func (c *Collector) add(sev types.Severity, cat types.DiagCategory, off uint64, structure, issue string) {
	if c == nil {
		return
	}
	c.record(types.Diagnostic{Severity: sev, Category: cat, Offset: off, Structure: structure, Issue: issue})
}

func (c *Collector) record(d types.Diagnostic) {
	c.mu.Lock()
	d.Phase = string(c.phase)
	c.report.Add(d)
	c.mu.Unlock()

	if c.log == nil {
		return
	}
	level := slog.LevelWarn
	if d.Severity == types.SevInfo {
		level = slog.LevelInfo
	}
	attrs := []any{
		slog.String("phase", d.Phase),
		slog.String("category", d.Category.String()),
		slog.String("structure", d.Structure),
		slog.String("offset", fmt.Sprintf("0x%X", d.Offset)),
	}
	if d.Expected != nil || d.Actual != nil {
		attrs = append(attrs, slog.Any("expected", d.Expected), slog.Any("actual", d.Actual))
	}
	c.log.Log(context.Background(), level, d.Issue, attrs...)
}

// Len returns the number of diagnostics recorded so far.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.report.Diagnostics)
}

// Report finalizes and returns the report.
func (c *Collector) Report() *types.DiagnosticReport {
	if c == nil {
		return types.NewDiagnosticReport()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Finalize()
	return c.report
}
