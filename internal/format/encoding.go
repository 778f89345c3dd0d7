package format

import (
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/hiverecon/internal/buf"
)

// PutU32 writes v little-endian at off. The caller guarantees the range.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU16 writes v little-endian at off.
func PutU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

// PutU64 writes v little-endian at off.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// PutI32 writes a signed cell size at off.
func PutI32(b []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(b[off:off+4], uint32(v))
}

// CheckedReadU16 reads a uint16 at off or reports ErrTruncated.
func CheckedReadU16(b []byte, off int) (uint16, error) {
	v, ok := buf.U16At(b, off)
	if !ok {
		return 0, fmt.Errorf("u16 at 0x%X: %w", off, ErrTruncated)
	}
	return v, nil
}

// CheckedReadU32 reads a uint32 at off or reports ErrTruncated.
func CheckedReadU32(b []byte, off int) (uint32, error) {
	v, ok := buf.U32At(b, off)
	if !ok {
		return 0, fmt.Errorf("u32 at 0x%X: %w", off, ErrTruncated)
	}
	return v, nil
}

// CheckedReadU64 reads a uint64 at off or reports ErrTruncated.
func CheckedReadU64(b []byte, off int) (uint64, error) {
	v, ok := buf.U64At(b, off)
	if !ok {
		return 0, fmt.Errorf("u64 at 0x%X: %w", off, ErrTruncated)
	}
	return v, nil
}

// AlignUp rounds n up to a multiple of the power-of-two a.
func AlignUp(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}
