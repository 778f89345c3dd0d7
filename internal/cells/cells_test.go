package cells

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hiverecon/internal/format"
)

func rawCell(tag string, payload []byte, free bool) format.Cell {
	data := append([]byte(tag), payload...)
	c := format.Cell{Offset: format.HiveDataBase + 0x20, Size: len(data) + format.CellHeaderSize, Free: free, Data: data}
	copy(c.Tag[:], tag)
	return c
}

func TestDecodeKeyCell(t *testing.T) {
	body := make([]byte, format.NKNameOffset-2+3)
	format.PutU16(body, format.NKFlagsOffset-2, format.NKFlagCompressedName)
	format.PutU16(body, format.NKNameLenOffset-2, 3)
	copy(body[format.NKNameOffset-2:], "Sub")

	c, err := Decode(rawCell("nk", body, false))
	require.NoError(t, err)
	kc, ok := c.(*KeyCell)
	require.True(t, ok)
	require.Equal(t, "Sub", kc.Name)
	require.Equal(t, uint32(0x20), kc.Offset())
	require.Equal(t, "nk", kc.Signature())
	require.False(t, kc.Free())

	require.False(t, kc.Referenced())
	kc.MarkReferenced()
	require.True(t, kc.Referenced())
}

func TestDecodeRejectsUnknown(t *testing.T) {
	_, err := Decode(rawCell("zz", make([]byte, 8), false))
	require.ErrorIs(t, err, format.ErrUnsupported)

	_, err = Decode(rawCell("vk", []byte{1}, true))
	require.ErrorIs(t, err, format.ErrTruncated)
}

func TestNewList(t *testing.T) {
	tests := []struct {
		tag  string
		want ListKind
	}{
		{"lf", ListDirect},
		{"lh", ListDirect},
		{"ri", ListIndexed},
		{"li", ListPlain},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			l := NewList(0x40, false, format.ListRecord{Tag: tt.tag, Entries: []uint32{1, 2}})
			require.Equal(t, tt.want, l.Kind)
			require.Equal(t, []uint32{1, 2}, l.Entries)
		})
	}
	require.Equal(t, "indexed", ListIndexed.String())
}

func TestCarvedCellsAreFree(t *testing.T) {
	k := NewKey(0x100, 0x60, format.NKRecord{NameRaw: []byte("Old"), Flags: format.NKFlagCompressedName})
	require.True(t, k.Free())
	require.Equal(t, "Old", k.Name)

	v := NewValue(0x200, 0x20, format.VKRecord{})
	require.True(t, v.Free())
	require.Empty(t, v.Name)
}
