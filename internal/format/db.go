package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/hiverecon/internal/buf"
)

// DBRecord is a big-data header, used for values larger than a single cell
// can hold:
//
//	Offset  Size  Description
//	0x00    2     'd' 'b'
//	0x02    2     Number of blocks
//	0x04    4     Cell index of the block list
//	0x08    4     Unused
//
// The block list is a plain table of cell indexes. Every block but the last
// carries DBChunkSize bytes of data; trailing bytes in a block cell are padding.
type DBRecord struct {
	Count      uint16
	ListOffset uint32
}

// IsDBRecord reports whether a cell payload starts with the db tag.
func IsDBRecord(b []byte) bool {
	return len(b) >= SignatureSize && bytes.Equal(b[:SignatureSize], DBSignature)
}

// DecodeDB decodes a big-data header payload.
func DecodeDB(b []byte) (DBRecord, error) {
	if len(b) < DBMinSize {
		return DBRecord{}, fmt.Errorf("db: %w (need %d bytes, have %d)", ErrTruncated, DBMinSize, len(b))
	}
	if !IsDBRecord(b) {
		return DBRecord{}, fmt.Errorf("db: %w", ErrSignatureMismatch)
	}
	return DBRecord{
		Count:      buf.U16LE(b[DBCountOffset:]),
		ListOffset: buf.U32LE(b[DBListOffset:]),
	}, nil
}

// UsesBigData reports whether a value of length n on a hive of the given
// minor version is stored through a db record.
func UsesBigData(minor uint32, n int) bool {
	return minor >= 4 && n > DBChunkSize
}
