package format

import (
	"fmt"

	"github.com/joshuapare/hiverecon/internal/buf"
)

// ListRecord is a decoded subkey list. All four kinds share a
// signature + uint16 count header followed by a table:
//
//	li: count x uint32 key cell index
//	lf: count x (uint32 key cell index, 4-byte name hint)
//	lh: count x (uint32 key cell index, uint32 name hash)
//	ri: count x uint32 cell index of an li/lf/lh sub-list
//
// The lf hint and lh hash are not retained; lookups compare stored names.
type ListRecord struct {
	Tag     string
	Count   uint16
	Entries []uint32
}

// IsListTag reports whether tag names one of the four list kinds.
func IsListTag(tag string) bool {
	switch tag {
	case "li", "lf", "lh", "ri":
		return true
	}
	return false
}

// DecodeList decodes any list kind. When the table is shorter than the
// declared count the entries that fit are returned alongside ErrTruncated.
func DecodeList(b []byte) (ListRecord, error) {
	if len(b) < ListHeaderSize {
		return ListRecord{}, fmt.Errorf("list: %w", ErrTruncated)
	}
	tag := string(b[:SignatureSize])
	stride := LIEntrySize
	switch tag {
	case "li":
	case "ri":
		stride = RIEntrySize
	case "lf", "lh":
		stride = LFEntrySize
	default:
		return ListRecord{}, fmt.Errorf("list tag %q: %w", tag, ErrUnsupported)
	}
	lr := ListRecord{Tag: tag, Count: buf.U16LE(b[SignatureSize:])}
	table := b[ListHeaderSize:]
	n := int(lr.Count)
	var err error
	if fit := len(table) / stride; fit < n {
		n = fit
		err = fmt.Errorf("%s list: %d of %d entries present: %w", tag, fit, lr.Count, ErrTruncated)
	}
	lr.Entries = make([]uint32, n)
	for i := range n {
		lr.Entries[i] = buf.U32LE(table[i*stride:])
	}
	return lr, err
}

// DecodeValueList reads up to count cell indexes from a value list cell.
// The declared count may exceed what the cell holds; the entries that fit
// are returned with ErrTruncated.
func DecodeValueList(b []byte, count uint32) ([]uint32, error) {
	if count == 0 {
		return nil, nil
	}
	n := int(count)
	var err error
	if fit := len(b) / OffsetFieldSize; fit < n {
		n = fit
		err = fmt.Errorf("value list: %d of %d entries present: %w", fit, count, ErrTruncated)
	}
	out := make([]uint32, n)
	for i := range n {
		out[i] = buf.U32LE(b[i*OffsetFieldSize:])
	}
	return out, err
}

// DecodeOffsetTable reads every whole uint32 in b. Recovery uses it to look
// past a value list's declared count.
func DecodeOffsetTable(b []byte) []uint32 {
	out := make([]uint32, len(b)/OffsetFieldSize)
	for i := range out {
		out[i] = buf.U32LE(b[i*OffsetFieldSize:])
	}
	return out
}
