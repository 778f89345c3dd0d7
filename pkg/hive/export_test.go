package hive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/hivetest"
	"github.com/joshuapare/hiverecon/pkg/types"
)

func TestExportText(t *testing.T) {
	b := hivetest.NewBuilder()
	root := b.AddRoot(hivetest.KeyDef{
		Name: "ROOT",
		SubKeys: []hivetest.KeyDef{{
			Name:   "Tools",
			Values: []hivetest.ValueDef{{Name: "a|b", Type: uint32(types.REG_SZ), Data: format.EncodeUTF16LE("line1\nline2\x00")}},
		}},
	})
	b.SetRoot(root)
	gone := b.AddKey(hivetest.KeyDef{Name: "Gone"}, root, "Gone")
	b.Free(gone)
	b.AllocFree(hivetest.VK{Name: "Stray", Type: uint32(types.REG_DWORD), DataLen: 4 | format.VKDataInlineBit, DataOff: 5}.Bytes())
	raw := b.Bytes()

	h, err := LoadBytes(context.Background(), raw, types.LoadOptions{Recover: true})
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, h.ExportText(&out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")

	require.True(t, strings.HasPrefix(lines[0], "key||"))
	require.Contains(t, lines[0], "|2|0|root|")

	tools, err := h.Value("Tools", "a|b")
	require.NoError(t, err)
	require.Contains(t, lines, fmt.Sprintf("value|Tools|a%%7Cb|REG_SZ|24|live|0x%08X|line1%%0Aline2", tools.Offset))
	require.Contains(t, out.String(), "|0|0|reattached|")
	require.Contains(t, out.String(), "\nkey|Gone|")
	require.Contains(t, out.String(), "value||Stray|REG_DWORD|4|deleted|")
	require.Contains(t, out.String(), "|0x00000005 (5)\n")

	tail := lines[len(lines)-5:]
	require.Equal(t, []string{
		"total_keys|2",
		"total_values|1",
		"total_deleted_keys|1",
		"total_deleted_values|0",
		"total_unassociated_values|1",
	}, tail)
}
