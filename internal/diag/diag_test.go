package diag

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hiverecon/pkg/types"
)

func TestCollectorRecordsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	c := New(slog.New(slog.NewTextHandler(&buf, nil)), 8192)
	c.SetPhase(types.PhaseScan)
	c.Warnf(types.DiagStructure, 0x3000, "hbin", "bad signature %q", "xxxx")
	c.Mismatch(types.DiagConsistency, 0, "regf", "scanned bytes differ", 8192, 4096)
	c.SetPhase(types.PhaseBuild)
	c.Infof(types.DiagData, 0x1020, "vk", "slack present")

	r := c.Report()
	require.Equal(t, 3, c.Len())
	require.Equal(t, int64(8192), r.FileSize)
	require.Equal(t, 2, r.Summary.Warnings)
	require.Equal(t, "scan", r.Diagnostics[0].Phase)
	require.Equal(t, "build", r.Diagnostics[2].Phase)
	require.Equal(t, 8192, r.Diagnostics[1].Expected)

	out := buf.String()
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, `offset=0x3000`)
	require.Contains(t, out, "level=INFO")
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.SetPhase(types.PhaseScan)
	c.Warnf(types.DiagStructure, 0, "cell", "ignored")
	require.Zero(t, c.Len())
	require.NotNil(t, c.Report())
}
