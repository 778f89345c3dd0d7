// Package buf contains bounds-checked little-endian readers used by every
// decoder that touches raw hive bytes.
package buf

import "encoding/binary"

// U16LE reads a little-endian uint16 from the start of b. Returns 0 when b is too short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32LE reads a little-endian uint32 from the start of b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U64LE reads a little-endian uint64 from the start of b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// I32LE reads a little-endian int32 from the start of b. Returns 0 when b is too short.
func I32LE(b []byte) int32 {
	return int32(U32LE(b))
}

// U16At reads a little-endian uint16 at off. ok is false when the two bytes
// are not available.
func U16At(b []byte, off int) (v uint16, ok bool) {
	s, ok := Slice(b, off, 2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(s), true
}

// U32At reads a little-endian uint32 at off.
func U32At(b []byte, off int) (v uint32, ok bool) {
	s, ok := Slice(b, off, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(s), true
}

// I32At reads a little-endian int32 at off.
func I32At(b []byte, off int) (int32, bool) {
	v, ok := U32At(b, off)
	return int32(v), ok
}

// U64At reads a little-endian uint64 at off.
func U64At(b []byte, off int) (v uint64, ok bool) {
	s, ok := Slice(b, off, 8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(s), true
}
