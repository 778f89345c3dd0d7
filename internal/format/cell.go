package format

import (
	"fmt"

	"github.com/joshuapare/hiverecon/internal/buf"
)

// Cell is a single allocation (free or in use) within a hive bin.
//
// Cell header layout (little-endian):
//
//	Offset  Size  Description
//	0x00    4     Signed size. Negative => allocated, positive => free.
//	              The absolute value includes the 4-byte header.
//	0x04    ...   Payload. The first two bytes form the record tag.
type Cell struct {
	Offset int  // absolute offset of the size field
	Size   int  // total size including header
	Free   bool // positive size field
	Tag    [SignatureSize]byte
	Data   []byte // payload, aliases the hive buffer
}

// Rel returns the cell index, the offset relative to the first hive bin.
func (c Cell) Rel() uint32 {
	return uint32(c.Offset - HiveDataBase)
}

// TagString returns the two-character record tag.
func (c Cell) TagString() string {
	return string(c.Tag[:])
}

// NextCell decodes the cell at off, which must lie inside a bin ending at
// end, and returns it along with the offset of the following cell.
func NextCell(b []byte, off, end int) (Cell, int, error) {
	if end > len(b) {
		end = len(b)
	}
	if off < 0 || off+CellHeaderSize > end {
		return Cell{}, 0, fmt.Errorf("cell at 0x%X: %w", off, ErrTruncated)
	}
	raw := buf.I32LE(b[off:])
	if raw == 0 {
		return Cell{}, 0, fmt.Errorf("cell at 0x%X: zero size: %w", off, ErrSanityLimit)
	}
	size := int(raw)
	if raw < 0 {
		size = -size
	}
	if size < CellHeaderSize {
		return Cell{}, 0, fmt.Errorf("cell at 0x%X: size %d below header: %w", off, size, ErrSanityLimit)
	}
	next, ok := buf.AddOverflowSafe(off, size)
	if !ok || next > end {
		return Cell{}, 0, fmt.Errorf("cell at 0x%X: size %d overruns bin: %w", off, size, ErrTruncated)
	}
	c := Cell{
		Offset: off,
		Size:   size,
		Free:   raw > 0,
		Data:   b[off+CellHeaderSize : next],
	}
	if len(c.Data) >= SignatureSize {
		c.Tag[0], c.Tag[1] = c.Data[0], c.Data[1]
	}
	return c, next, nil
}

// CellAt decodes the cell addressed by a cell index without requiring the
// enclosing bin; the declared size is clamped by the buffer.
func CellAt(b []byte, rel uint32) (Cell, error) {
	if rel == InvalidOffset {
		return Cell{}, fmt.Errorf("cell index 0x%X: %w", rel, ErrTruncated)
	}
	off := HiveDataBase + int(rel)
	c, _, err := NextCell(b, off, len(b))
	return c, err
}
