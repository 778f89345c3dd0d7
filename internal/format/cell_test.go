package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func page() []byte {
	b := make([]byte, HeaderSize+HBINAlignment)
	copy(b[HiveDataBase:], HBINSignature)
	PutU32(b, HiveDataBase+HBINSizeField, HBINAlignment)
	return b
}

func TestParseHBIN(t *testing.T) {
	b := page()
	h, err := ParseHBIN(b, HiveDataBase)
	require.NoError(t, err)
	require.Equal(t, uint32(HBINAlignment), h.Size)
	require.Equal(t, len(b), h.End())

	PutU32(b, HiveDataBase+HBINSizeField, 0x10)
	_, err = ParseHBIN(b, HiveDataBase)
	require.ErrorIs(t, err, ErrSanityLimit)

	_, err = ParseHBIN(b, 0)
	require.ErrorIs(t, err, ErrSignatureMismatch)

	_, err = ParseHBIN(b, len(b)-4)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestNextCell(t *testing.T) {
	b := page()
	first := HiveDataBase + HBINHeaderSize
	PutI32(b, first, -16)
	copy(b[first+4:], NKSignature)
	PutI32(b, first+16, 32)

	c, next, err := NextCell(b, first, len(b))
	require.NoError(t, err)
	require.False(t, c.Free)
	require.Equal(t, 16, c.Size)
	require.Equal(t, "nk", c.TagString())
	require.Equal(t, uint32(HBINHeaderSize), c.Rel())
	require.Equal(t, first+16, next)

	c, _, err = NextCell(b, next, len(b))
	require.NoError(t, err)
	require.True(t, c.Free)
	require.Len(t, c.Data, 28)

	got, err := CellAt(b, HBINHeaderSize)
	require.NoError(t, err)
	require.Equal(t, first, got.Offset)
}

func TestNextCellRejects(t *testing.T) {
	b := page()
	first := HiveDataBase + HBINHeaderSize

	_, _, err := NextCell(b, first, len(b))
	require.ErrorIs(t, err, ErrSanityLimit)

	PutI32(b, first, -2)
	_, _, err = NextCell(b, first, len(b))
	require.ErrorIs(t, err, ErrSanityLimit)

	PutI32(b, first, -0x2000)
	_, _, err = NextCell(b, first, len(b))
	require.ErrorIs(t, err, ErrTruncated)

	_, err = CellAt(b, InvalidOffset)
	require.Error(t, err)
}
