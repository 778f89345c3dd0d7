package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/hiverecon/internal/buf"
)

// HBIN describes a hive bin. Each bin begins with a 0x20-byte header
// (little-endian):
//
//	Offset  Size  Field
//	0x00    4     'h' 'b' 'i' 'n'
//	0x04    4     Offset of this bin relative to the first bin
//	0x08    4     Size of the bin, a multiple of 0x1000
//	0x0C    8     Reserved
//	0x14    8     Timestamp (meaningful for the first bin only)
//	0x1C    4     Spare
//
// Size may be zero in damaged hives; the scanner steps over those pages.
type HBIN struct {
	FileOffset uint32 // absolute position of the header in the buffer
	RelOffset  uint32 // offset field as stored
	Size       uint32
	Stamp      uint64
}

// ParseHBIN validates the signature of the bin header at off and decodes it.
// A size that is not page aligned is reported as ErrSanityLimit with the
// header still returned so callers can decide how far to skip.
func ParseHBIN(b []byte, off int) (HBIN, error) {
	head, ok := buf.Slice(b, off, HBINHeaderSize)
	if !ok {
		return HBIN{}, fmt.Errorf("hbin at 0x%X: %w", off, ErrTruncated)
	}
	if !bytes.Equal(head[:SignatureSize*2], HBINSignature) {
		return HBIN{}, fmt.Errorf("hbin at 0x%X: %w", off, ErrSignatureMismatch)
	}
	h := HBIN{
		FileOffset: uint32(off),
		RelOffset:  buf.U32LE(head[HBINOffsetField:]),
		Size:       buf.U32LE(head[HBINSizeField:]),
		Stamp:      buf.U64LE(head[HBINStampField:]),
	}
	if h.Size%HBINAlignment != 0 {
		return h, fmt.Errorf("hbin at 0x%X: size 0x%X not page aligned: %w", off, h.Size, ErrSanityLimit)
	}
	return h, nil
}

// End returns the absolute offset one past the bin.
func (h HBIN) End() int {
	return int(h.FileOffset) + int(h.Size)
}
