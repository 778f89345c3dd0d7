package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/hiverecon/internal/buf"
)

// LogFormat identifies the layout following a transaction log's base block.
type LogFormat int

const (
	// LogLegacy is the pre-Windows 8.1 layout: a DIRT vector with one bit per
	// 512-byte sector of hive bin data, followed by the dirty sectors.
	LogLegacy LogFormat = iota + 1
	// LogIncremental is the HvLE layout: a sequence of self-checking entries,
	// each carrying whole dirty pages.
	LogIncremental
)

func (f LogFormat) String() string {
	switch f {
	case LogLegacy:
		return "legacy"
	case LogIncremental:
		return "incremental"
	}
	return "unknown"
}

// DirtyPage is a run of bytes to write at Offset, relative to the first bin.
type DirtyPage struct {
	Offset uint32
	Data   []byte
}

// LogEntry is one unit of replay. Legacy logs decode to a single entry.
//
// HvLE entry layout (little-endian, 512-byte aligned):
//
//	Offset  Size  Field
//	0x00    4     'H' 'v' 'L' 'E'
//	0x04    4     Entry size
//	0x08    4     Flags
//	0x0C    4     Sequence number
//	0x10    4     Hive bins data size after applying the entry
//	0x14    4     Dirty page count
//	0x18    8     Marvin32 of bytes 0x28..size
//	0x20    8     Marvin32 of bytes 0x00..0x1F
//	0x28    8n    (offset, size) per dirty page
//	...           page data, in reference order
type LogEntry struct {
	FileOffset       int
	Sequence         uint32
	Flags            uint32
	HiveBinsDataSize uint32
	Pages            []DirtyPage
}

// Log is a decoded transaction log.
type Log struct {
	Header  Header
	Format  LogFormat
	Entries []LogEntry
	// Stopped is set when decoding ended before the end of the file because
	// an entry was malformed, failed its hash or broke the sequence chain.
	Stopped error
}

// Sequence is the log's primary sequence number, used to order logs.
func (l *Log) Sequence() uint32 {
	return l.Header.PrimarySequence
}

// LastSequence is the sequence number reached after replaying every entry.
func (l *Log) LastSequence() uint32 {
	if n := len(l.Entries); n > 0 {
		return l.Entries[n-1].Sequence
	}
	return l.Header.PrimarySequence
}

// ParseLog decodes a transaction log. A log with a valid base block but no
// usable entries is returned without error; Stopped explains any early end.
func ParseLog(b []byte) (*Log, error) {
	hdr, err := ParseHeader(b)
	if err != nil {
		return nil, fmt.Errorf("log base block: %w", err)
	}
	l := &Log{Header: hdr}
	body, _ := buf.Slice(b, LogBaseBlockSize, SignatureSize*2)
	switch {
	case bytes.Equal(body, HvLESignature) || hdr.Type == FileTypeLogNewFmt:
		l.Format = LogIncremental
		l.Entries, l.Stopped = parseIncremental(b)
	case bytes.Equal(body, DIRTSignature):
		l.Format = LogLegacy
		var e LogEntry
		e, l.Stopped = parseLegacy(b, hdr)
		if l.Stopped == nil {
			l.Entries = []LogEntry{e}
		}
	default:
		return nil, fmt.Errorf("log body at 0x%X: %w", LogBaseBlockSize, ErrUnsupported)
	}
	return l, nil
}

func parseIncremental(b []byte) ([]LogEntry, error) {
	var out []LogEntry
	for off := LogBaseBlockSize; off+LogEntryHeaderSize <= len(b); {
		if !bytes.Equal(b[off:off+4], HvLESignature) {
			return out, nil
		}
		e, size, err := decodeEntry(b, off)
		if err != nil {
			return out, err
		}
		if n := len(out); n > 0 && e.Sequence != out[n-1].Sequence+1 {
			return out, fmt.Errorf("log entry at 0x%X: sequence %d does not follow %d: %w",
				off, e.Sequence, out[n-1].Sequence, ErrSanityLimit)
		}
		out = append(out, e)
		off += size
	}
	return out, nil
}

func decodeEntry(b []byte, off int) (LogEntry, int, error) {
	size := int(buf.U32LE(b[off+LogEntrySizeOffset:]))
	if size < LogEntryHeaderSize || size%LogEntryAlignment != 0 || off+size > len(b) {
		return LogEntry{}, 0, fmt.Errorf("log entry at 0x%X: size 0x%X: %w", off, size, ErrTruncated)
	}
	entry := b[off : off+size]
	h1 := buf.U64LE(entry[LogEntryHash1Offset:])
	h2 := buf.U64LE(entry[LogEntryHash2Offset:])
	if Marvin32(entry[:LogEntryHash2Offset], LogHashSeed) != h2 ||
		Marvin32(entry[LogEntryHeaderSize:], LogHashSeed) != h1 {
		return LogEntry{}, 0, fmt.Errorf("log entry at 0x%X: %w", off, ErrBadHash)
	}
	e := LogEntry{
		FileOffset:       off,
		Flags:            buf.U32LE(entry[LogEntryFlagsOffset:]),
		Sequence:         buf.U32LE(entry[LogEntrySequenceOffset:]),
		HiveBinsDataSize: buf.U32LE(entry[LogEntryDataSizeOffset:]),
	}
	count := int(buf.U32LE(entry[LogEntryPageCountOffset:]))
	data, err := buf.CheckListBounds(size, LogEntryHeaderSize, count, LogEntryPageRefSize)
	if err != nil {
		return LogEntry{}, 0, fmt.Errorf("log entry at 0x%X: page refs: %w", off, ErrTruncated)
	}
	e.Pages = make([]DirtyPage, 0, count)
	for i := range count {
		ref := LogEntryHeaderSize + i*LogEntryPageRefSize
		pOff := buf.U32LE(entry[ref:])
		pLen := int(buf.U32LE(entry[ref+OffsetFieldSize:]))
		page, ok := buf.Slice(entry, data, pLen)
		if !ok {
			return LogEntry{}, 0, fmt.Errorf("log entry at 0x%X: page %d: %w", off, i, ErrTruncated)
		}
		e.Pages = append(e.Pages, DirtyPage{Offset: pOff, Data: page})
		data += pLen
	}
	return e, size, nil
}

func parseLegacy(b []byte, hdr Header) (LogEntry, error) {
	sectors := int(hdr.HiveBinsDataSize) / LogDirtySectorSize
	vecLen := (sectors + 7) / 8
	vecOff := LogDirtyVectorOffset + LogDirtyVectorHeaderSize
	vec, ok := buf.Slice(b, vecOff, vecLen)
	if !ok {
		return LogEntry{}, fmt.Errorf("dirty vector: %w", ErrTruncated)
	}
	e := LogEntry{
		FileOffset:       LogDirtyVectorOffset,
		Sequence:         hdr.PrimarySequence,
		HiveBinsDataSize: hdr.HiveBinsDataSize,
	}
	data := AlignUp(vecOff+vecLen, LogDirtySectorSize)
	for i := range sectors {
		if vec[i/8]&(1<<(i%8)) == 0 {
			continue
		}
		sector, ok := buf.Slice(b, data, LogDirtySectorSize)
		if !ok {
			return LogEntry{}, fmt.Errorf("dirty sector %d: %w", i, ErrTruncated)
		}
		e.Pages = append(e.Pages, DirtyPage{Offset: uint32(i * LogDirtySectorSize), Data: sector})
		data += LogDirtySectorSize
	}
	return e, nil
}
