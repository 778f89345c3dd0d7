package format_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/hivetest"
)

func testHive() []byte {
	return hivetest.Build(hivetest.KeyDef{
		Name: "ROOT",
		SubKeys: []hivetest.KeyDef{
			{Name: "Software"},
		},
	}).Bytes
}

func TestParseIncrementalLog(t *testing.T) {
	hive := testHive()
	pages := []format.DirtyPage{{Offset: 0, Data: hive[format.HiveDataBase : format.HiveDataBase+format.HBINAlignment]}}
	raw := hivetest.IncrementalLog(hive, 5,
		hivetest.Entry{Sequence: 5, DataSize: 0x1000, Pages: pages},
		hivetest.Entry{Sequence: 6, DataSize: 0x1000, Pages: pages},
	)

	l, err := format.ParseLog(raw)
	require.NoError(t, err)
	require.Equal(t, format.LogIncremental, l.Format)
	require.True(t, l.Header.IsLog())
	require.NoError(t, l.Stopped)
	require.Len(t, l.Entries, 2)
	require.Equal(t, uint32(5), l.Sequence())
	require.Equal(t, uint32(6), l.LastSequence())
	require.Equal(t, pages[0].Data, l.Entries[0].Pages[0].Data)
}

func TestParseIncrementalLogStopsOnBadHash(t *testing.T) {
	hive := testHive()
	raw := hivetest.IncrementalLog(hive, 5,
		hivetest.Entry{Sequence: 5, DataSize: 0x1000},
		hivetest.Entry{Sequence: 6, DataSize: 0x1000, CorruptHash: true},
		hivetest.Entry{Sequence: 7, DataSize: 0x1000},
	)

	l, err := format.ParseLog(raw)
	require.NoError(t, err)
	require.Len(t, l.Entries, 1)
	require.ErrorIs(t, l.Stopped, format.ErrBadHash)
}

func TestParseIncrementalLogStopsOnSequenceGap(t *testing.T) {
	hive := testHive()
	raw := hivetest.IncrementalLog(hive, 5,
		hivetest.Entry{Sequence: 5, DataSize: 0x1000},
		hivetest.Entry{Sequence: 9, DataSize: 0x1000},
	)

	l, err := format.ParseLog(raw)
	require.NoError(t, err)
	require.Len(t, l.Entries, 1)
	require.ErrorIs(t, l.Stopped, format.ErrSanityLimit)
}

func TestParseLegacyLog(t *testing.T) {
	before := testHive()
	after := append([]byte(nil), before...)
	after[format.HiveDataBase+0x600] = 0xAA
	sectors := hivetest.DirtySectors(before, after)
	require.Equal(t, []int{3}, sectors)

	l, err := format.ParseLog(hivetest.LegacyLog(before, 4, after, sectors))
	require.NoError(t, err)
	require.Equal(t, format.LogLegacy, l.Format)
	require.Len(t, l.Entries, 1)
	require.Len(t, l.Entries[0].Pages, 1)
	require.Equal(t, uint32(0x600), l.Entries[0].Pages[0].Offset)
	require.Equal(t, byte(0xAA), l.Entries[0].Pages[0].Data[0])
	require.Equal(t, uint32(4), l.LastSequence())
}

func TestParseLogRejects(t *testing.T) {
	_, err := format.ParseLog([]byte("short"))
	require.ErrorIs(t, err, format.ErrTruncated)

	hive := testHive()
	raw := append([]byte(nil), hive[:format.LogBaseBlockSize]...)
	raw = append(raw, make([]byte, format.LogBaseBlockSize)...)
	_, err = format.ParseLog(raw)
	require.ErrorIs(t, err, format.ErrUnsupported)
}
