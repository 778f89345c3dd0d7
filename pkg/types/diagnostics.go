package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Severity classifies how serious a diagnostic issue is.
type Severity int

const (
	SevInfo    Severity = iota // unusual but valid, or a consistency note
	SevWarning                 // a record or branch was skipped
	SevError                   // data could not be resolved
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// MarshalText renders the severity by name in JSON output.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// DiagCategory classifies the type of issue found.
type DiagCategory int

const (
	DiagStructure   DiagCategory = iota // REGF/HBIN/cell/list structure problems
	DiagData                            // value data truncation or overrun
	DiagIntegrity                       // checksums, sequence numbers, dangling references
	DiagConsistency                     // byte totals and counts that disagree
	DiagRecovery                        // notes from deleted-record recovery
	DiagLog                             // transaction log decoding and replay
)

func (c DiagCategory) String() string {
	switch c {
	case DiagStructure:
		return "STRUCTURE"
	case DiagData:
		return "DATA"
	case DiagIntegrity:
		return "INTEGRITY"
	case DiagConsistency:
		return "CONSISTENCY"
	case DiagRecovery:
		return "RECOVERY"
	case DiagLog:
		return "LOG"
	}
	return "UNKNOWN"
}

// MarshalText renders the category by name in JSON output.
func (c DiagCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Diagnostic is a single non-fatal issue found during a parse.
type Diagnostic struct {
	Severity  Severity     `json:"severity"`
	Category  DiagCategory `json:"category"`
	Phase     string       `json:"phase"`
	Offset    uint64       `json:"offset"` // absolute byte offset in the hive buffer
	Structure string       `json:"structure"`
	Issue     string       `json:"issue"`
	Expected  any          `json:"expected,omitempty"`
	Actual    any          `json:"actual,omitempty"`
	KeyPath   string       `json:"key_path,omitempty"`
}

// DiagnosticReport collects every diagnostic of one parse. Counters live
// here, never in package state, so independent loads do not interfere.
type DiagnosticReport struct {
	FileSize    int64        `json:"file_size"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Summary     DiagSummary  `json:"summary"`

	BySeverity  map[Severity][]Diagnostic `json:"-"`
	ByStructure map[string][]Diagnostic   `json:"-"`
	ByOffset    []Diagnostic              `json:"-"`
}

// DiagSummary provides quick statistics.
type DiagSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// NewDiagnosticReport creates an empty report.
func NewDiagnosticReport() *DiagnosticReport {
	return &DiagnosticReport{
		BySeverity:  make(map[Severity][]Diagnostic),
		ByStructure: make(map[string][]Diagnostic),
	}
}

// Add appends a diagnostic and updates the summary and groupings.
func (r *DiagnosticReport) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	switch d.Severity {
	case SevError:
		r.Summary.Errors++
	case SevWarning:
		r.Summary.Warnings++
	case SevInfo:
		r.Summary.Info++
	}
	r.BySeverity[d.Severity] = append(r.BySeverity[d.Severity], d)
	r.ByStructure[d.Structure] = append(r.ByStructure[d.Structure], d)
}

// Finalize sorts diagnostics by offset for sequential reporting.
func (r *DiagnosticReport) Finalize() {
	r.ByOffset = make([]Diagnostic, len(r.Diagnostics))
	copy(r.ByOffset, r.Diagnostics)
	sort.SliceStable(r.ByOffset, func(i, j int) bool {
		return r.ByOffset[i].Offset < r.ByOffset[j].Offset
	})
}

// HasErrors reports whether any error-level issue was recorded.
func (r *DiagnosticReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

// Count returns the number of diagnostics in category c.
func (r *DiagnosticReport) Count(c DiagCategory) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Category == c {
			n++
		}
	}
	return n
}

// FormatJSON returns the report as indented JSON.
func (r *DiagnosticReport) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatTextCompact returns one line per issue, ordered by offset.
func (r *DiagnosticReport) FormatTextCompact() string {
	var b strings.Builder
	list := r.ByOffset
	if list == nil {
		list = r.Diagnostics
	}
	for _, d := range list {
		fmt.Fprintf(&b, "0x%08X [%s/%s/%s] %s\n",
			d.Offset, d.Severity, d.Structure, d.Category, d.Issue)
	}
	if len(r.Diagnostics) == 0 {
		b.WriteString("No issues found.\n")
	}
	return b.String()
}
