// Package hivetest synthesises registry hives and transaction logs byte by
// byte for tests. Hives are laid out the way Windows writes them: a base
// block, then page-aligned bins of 8-byte aligned cells, with the unused
// tail of every bin left as one free cell.
package hivetest

import (
	"github.com/joshuapare/hiverecon/internal/buf"
	"github.com/joshuapare/hiverecon/internal/format"
)

// Builder lays out cells. Offsets it returns are cell indexes, relative to
// the first bin.
type Builder struct {
	Minor     uint32
	Primary   uint32
	Secondary uint32
	FileName  string
	LastWrite uint64

	// Keys and Values map paths (and path|name) to record offsets for
	// everything added through AddKey.
	Keys   map[string]uint32
	Values map[string]uint32

	buf      []byte
	binEnd   int
	next     int
	root     uint32
	security uint32
}

// NewBuilder returns a builder holding a base block and one empty bin.
func NewBuilder() *Builder {
	b := &Builder{
		Minor:     5,
		Primary:   1,
		Secondary: 1,
		FileName:  `\REGISTRY\MACHINE\SOFTWARE`,
		LastWrite: 0x01D9_0000_0000_0000,
		Keys:      make(map[string]uint32),
		Values:    make(map[string]uint32),
		buf:       make([]byte, format.HeaderSize),
		root:      format.InvalidOffset,
		security:  format.InvalidOffset,
	}
	b.NewPage(format.HBINAlignment)
	return b
}

// NewPage closes the current bin and starts a new one of size bytes.
func (b *Builder) NewPage(size int) {
	b.closeBin()
	start := len(b.buf)
	b.buf = append(b.buf, make([]byte, size)...)
	copy(b.buf[start:], format.HBINSignature)
	format.PutU32(b.buf, start+format.HBINOffsetField, uint32(start-format.HiveDataBase))
	format.PutU32(b.buf, start+format.HBINSizeField, uint32(size))
	b.binEnd, b.next = start+size, start+format.HBINHeaderSize
}

// RawPage appends size bytes with no bin header, for damaged-layout tests.
func (b *Builder) RawPage(size int) int {
	b.closeBin()
	start := len(b.buf)
	b.buf = append(b.buf, make([]byte, size)...)
	b.binEnd, b.next = 0, 0
	return start
}

func (b *Builder) closeBin() {
	if b.binEnd == 0 {
		return
	}
	if rest := b.binEnd - b.next; rest > 0 {
		format.PutI32(b.buf, b.next, int32(rest))
	}
	b.next = b.binEnd
}

// Alloc stores payload in a new allocated cell.
func (b *Builder) Alloc(payload []byte) uint32 {
	return b.alloc(payload, false)
}

// AllocFree stores payload in a new free cell.
func (b *Builder) AllocFree(payload []byte) uint32 {
	return b.alloc(payload, true)
}

func (b *Builder) alloc(payload []byte, free bool) uint32 {
	size := format.AlignUp(len(payload)+format.CellHeaderSize, format.CellAlignment)
	if b.binEnd == 0 || b.next+size > b.binEnd {
		b.NewPage(format.AlignUp(size+format.HBINHeaderSize, format.HBINAlignment))
	}
	off := b.next
	v := int32(size)
	if !free {
		v = -v
	}
	format.PutI32(b.buf, off, v)
	copy(b.buf[off+format.CellHeaderSize:], payload)
	b.next += size
	return uint32(off - format.HiveDataBase)
}

// Free marks the cell at rel as free, keeping its contents.
func (b *Builder) Free(rel uint32) {
	off := format.HiveDataBase + int(rel)
	size := buf.I32LE(b.buf[off:])
	if size < 0 {
		format.PutI32(b.buf, off, -size)
	}
}

// Payload returns the writable payload of the cell at rel.
func (b *Builder) Payload(rel uint32) []byte {
	off := format.HiveDataBase + int(rel)
	size := buf.I32LE(b.buf[off:])
	if size < 0 {
		size = -size
	}
	return b.buf[off+format.CellHeaderSize : off+int(size)]
}

// SetField writes a uint32 at field within the payload of the cell at rel.
func (b *Builder) SetField(rel uint32, field int, v uint32) {
	format.PutU32(b.Payload(rel), field, v)
}

// SetField16 writes a uint16 at field within the payload of the cell at rel.
func (b *Builder) SetField16(rel uint32, field int, v uint16) {
	format.PutU16(b.Payload(rel), field, v)
}

// SetRoot records the root key offset written to the base block.
func (b *Builder) SetRoot(rel uint32) {
	b.root = rel
}

// Raw exposes the buffer laid out so far, for tests that corrupt bytes in
// place before calling Bytes.
func (b *Builder) Raw() []byte {
	return b.buf
}

// Bytes closes the last bin, writes the base block and returns a copy of
// the hive.
func (b *Builder) Bytes() []byte {
	b.closeBin()
	out := append([]byte(nil), b.buf...)
	copy(out, format.REGFSignature)
	format.PutU32(out, format.REGFPrimarySeqOffset, b.Primary)
	format.PutU32(out, format.REGFSecondarySeqOffset, b.Secondary)
	format.PutU64(out, format.REGFTimeStampOffset, b.LastWrite)
	format.PutU32(out, format.REGFMajorVersionOffset, 1)
	format.PutU32(out, format.REGFMinorVersionOffset, b.Minor)
	format.PutU32(out, format.REGFTypeOffset, format.FileTypePrimary)
	format.PutU32(out, format.REGFFormatOffset, 1)
	format.PutU32(out, format.REGFRootCellOffset, b.root)
	format.PutU32(out, format.REGFDataSizeOffset, uint32(len(out)-format.HeaderSize))
	format.PutU32(out, format.REGFClusterOffset, 1)
	name := format.EncodeUTF16LE(b.FileName)
	copy(out[format.REGFFileNameOffset:format.REGFFileNameOffset+format.REGFFileNameSize], name)
	format.PatchChecksum(out)
	return out
}
