package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hiverecon/internal/format"
)

func TestKeyPath(t *testing.T) {
	root := &Key{Name: "ROOT", Flags: KeyRoot}
	sw := &Key{Name: "Software", Parent: root}
	run := &Key{Name: "Run", Parent: sw}
	root.SubKeys = []*Key{sw}
	sw.SubKeys = []*Key{run}

	require.Empty(t, root.Path())
	require.Equal(t, `Software\Run`, run.Path())
	require.Same(t, run, sw.SubKey("RUN"))
	require.Nil(t, sw.SubKey("missing"))

	var seen []string
	root.Walk(func(k *Key) bool {
		seen = append(seen, k.Name)
		return true
	})
	require.Equal(t, []string{"ROOT", "Software", "Run"}, seen)
}

func TestKeyFlags(t *testing.T) {
	k := &Key{Flags: KeyDeleted | KeyHasActiveParent}
	require.True(t, k.Deleted())
	require.True(t, k.HasActiveParent())
	require.False(t, k.IsRoot())
}

func TestValueDecoders(t *testing.T) {
	sz := &Value{Name: "", Type: REG_SZ, Raw: append(format.EncodeUTF16LE("Hello"), 0, 0)}
	s, err := sz.String()
	require.NoError(t, err)
	require.Equal(t, "Hello", s)
	require.Equal(t, "(Default)", sz.DisplayName())
	require.Equal(t, "Hello", sz.Text())

	_, err = sz.Uint32()
	require.ErrorIs(t, err, ErrTypeMismatch)

	dw := &Value{Type: REG_DWORD, Raw: []byte{0x2A, 0, 0, 0}}
	n, err := dw.Uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(42), n)
	require.Equal(t, "0x0000002A (42)", dw.Text())

	be := &Value{Type: REG_DWORD_BE, Raw: []byte{0, 0, 0, 0x2A}}
	n, err = be.Uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(42), n)

	short := &Value{Type: REG_QWORD, Raw: []byte{1}}
	_, err = short.Uint64()
	require.ErrorIs(t, err, ErrCorrupt)
	require.Equal(t, "01", short.Text())

	multi := &Value{Type: REG_MULTI_SZ, Raw: append(append(format.EncodeUTF16LE("a"), 0, 0), 0, 0)}
	ss, err := multi.Strings()
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, ss)

	bin := &Value{Type: REG_BINARY, Raw: []byte{0xde, 0xad}, Length: 4}
	require.Equal(t, "DEAD", bin.Text())
	require.True(t, bin.Truncated())
	d := bin.Data()
	d[0] = 0
	require.Equal(t, byte(0xde), bin.Raw[0])
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("load: %w", Wrap(ErrNoRoot, errors.New("no nk with flag 0x04")))
	require.ErrorIs(t, err, ErrNoRoot)
	require.NotErrorIs(t, err, ErrNotHive)
	require.Contains(t, err.Error(), "root key not found")

	var te *Error
	require.ErrorAs(t, err, &te)
	require.Equal(t, ErrKindCorrupt, te.Kind)
}

func TestDiagnosticReport(t *testing.T) {
	r := NewDiagnosticReport()
	r.Add(Diagnostic{Severity: SevWarning, Category: DiagStructure, Offset: 0x2000, Structure: "hbin", Issue: "bad signature"})
	r.Add(Diagnostic{Severity: SevInfo, Category: DiagConsistency, Offset: 0x10, Structure: "regf", Issue: "byte count mismatch"})
	r.Finalize()

	require.Equal(t, 1, r.Summary.Warnings)
	require.Equal(t, 1, r.Summary.Info)
	require.False(t, r.HasErrors())
	require.Equal(t, uint64(0x10), r.ByOffset[0].Offset)
	require.Equal(t, 1, r.Count(DiagConsistency))
	require.Contains(t, r.FormatTextCompact(), "[WARNING/hbin/STRUCTURE] bad signature")

	js, err := r.FormatJSON()
	require.NoError(t, err)
	require.Contains(t, js, `"severity": "WARNING"`)
}
