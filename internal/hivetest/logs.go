package hivetest

import (
	"bytes"

	"github.com/joshuapare/hiverecon/internal/format"
)

// Entry declares one HvLE log entry.
type Entry struct {
	Sequence uint32
	DataSize uint32
	Pages    []format.DirtyPage
	// CorruptHash stores a wrong Hash1 so the entry fails validation.
	CorruptHash bool
}

// DiffPages returns the 4 KiB pages of after that differ from before,
// offsets relative to the first bin. Pages past the end of before are
// always included.
func DiffPages(before, after []byte) []format.DirtyPage {
	var out []format.DirtyPage
	for off := format.HiveDataBase; off < len(after); off += format.HBINAlignment {
		end := min(off+format.HBINAlignment, len(after))
		if end <= len(before) && bytes.Equal(before[off:end], after[off:end]) {
			continue
		}
		out = append(out, format.DirtyPage{
			Offset: uint32(off - format.HiveDataBase),
			Data:   append([]byte(nil), after[off:end]...),
		})
	}
	return out
}

// Dirty returns a copy of hive whose primary sequence is one ahead of its
// secondary, with a valid checksum.
func Dirty(hive []byte, secondary uint32) []byte {
	out := append([]byte(nil), hive...)
	format.PutU32(out, format.REGFPrimarySeqOffset, secondary+1)
	format.PutU32(out, format.REGFSecondarySeqOffset, secondary)
	format.PatchChecksum(out)
	return out
}

// logBase copies the hive's base block into a log base block.
func logBase(hive []byte, fileType, seq uint32) []byte {
	b := make([]byte, format.LogBaseBlockSize)
	copy(b, hive[:format.LogBaseBlockSize])
	format.PutU32(b, format.REGFTypeOffset, fileType)
	format.PutU32(b, format.REGFPrimarySeqOffset, seq)
	format.PutU32(b, format.REGFSecondarySeqOffset, seq)
	format.PatchChecksum(b)
	return b
}

// IncrementalLog encodes an HvLE log for hive. seq is stored in the base block.
func IncrementalLog(hive []byte, seq uint32, entries ...Entry) []byte {
	out := logBase(hive, format.FileTypeLogNewFmt, seq)
	for _, e := range entries {
		out = append(out, EncodeEntry(e)...)
	}
	return out
}

// EncodeEntry encodes one HvLE entry with valid hashes unless CorruptHash
// is set.
func EncodeEntry(e Entry) []byte {
	size := format.LogEntryHeaderSize + len(e.Pages)*format.LogEntryPageRefSize
	for _, p := range e.Pages {
		size += len(p.Data)
	}
	size = format.AlignUp(size, format.LogEntryAlignment)
	b := make([]byte, size)
	copy(b, format.HvLESignature)
	format.PutU32(b, format.LogEntrySizeOffset, uint32(size))
	format.PutU32(b, format.LogEntrySequenceOffset, e.Sequence)
	format.PutU32(b, format.LogEntryDataSizeOffset, e.DataSize)
	format.PutU32(b, format.LogEntryPageCountOffset, uint32(len(e.Pages)))
	data := format.LogEntryHeaderSize + len(e.Pages)*format.LogEntryPageRefSize
	for i, p := range e.Pages {
		ref := format.LogEntryHeaderSize + i*format.LogEntryPageRefSize
		format.PutU32(b, ref, p.Offset)
		format.PutU32(b, ref+format.OffsetFieldSize, uint32(len(p.Data)))
		copy(b[data:], p.Data)
		data += len(p.Data)
	}
	h1 := format.Marvin32(b[format.LogEntryHeaderSize:], format.LogHashSeed)
	if e.CorruptHash {
		h1++
	}
	format.PutU64(b, format.LogEntryHash1Offset, h1)
	format.PutU64(b, format.LogEntryHash2Offset, format.Marvin32(b[:format.LogEntryHash2Offset], format.LogHashSeed))
	return b
}

// DirtySectors lists the 512-byte sectors of hive bin data that differ
// between before and after.
func DirtySectors(before, after []byte) []int {
	var out []int
	for off := format.HiveDataBase; off < len(after); off += format.LogDirtySectorSize {
		end := min(off+format.LogDirtySectorSize, len(after))
		if end <= len(before) && bytes.Equal(before[off:end], after[off:end]) {
			continue
		}
		out = append(out, (off-format.HiveDataBase)/format.LogDirtySectorSize)
	}
	return out
}

// LegacyLog encodes a DIRT log carrying the listed sectors of after.
func LegacyLog(hive []byte, seq uint32, after []byte, sectors []int) []byte {
	out := logBase(hive, format.FileTypeLog, seq)
	dataSize := len(after) - format.HeaderSize
	format.PutU32(out, format.REGFDataSizeOffset, uint32(dataSize))
	format.PatchChecksum(out)

	count := dataSize / format.LogDirtySectorSize
	vec := make([]byte, (count+7)/8)
	for _, s := range sectors {
		vec[s/8] |= 1 << (s % 8)
	}
	out = append(out, format.DIRTSignature...)
	out = append(out, vec...)
	out = append(out, make([]byte, format.AlignUp(len(out), format.LogDirtySectorSize)-len(out))...)
	for _, s := range sectors {
		off := format.HiveDataBase + s*format.LogDirtySectorSize
		out = append(out, after[off:off+format.LogDirtySectorSize]...)
	}
	return out
}
