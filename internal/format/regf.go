package format

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/joshuapare/hiverecon/internal/buf"
)

// Header is the decoded base block. The fields the engine relies on are laid
// out as follows (little-endian):
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x000   4    'r' 'e' 'g' 'f'
//	 0x004   4    Primary sequence number
//	 0x008   4    Secondary sequence number
//	 0x00C   8    Last write timestamp (FILETIME)
//	 0x014   4    Major version
//	 0x018   4    Minor version
//	 0x01C   4    File type (0 = primary, 1/2/6 = transaction log)
//	 0x020   4    File format (1 = direct memory load)
//	 0x024   4    Root cell offset (relative to 0x1000)
//	 0x028   4    Hive bins data size
//	 0x02C   4    Clustering factor
//	 0x030  64    Embedded file name (UTF-16LE, partial)
//	 0x070  16    RmId GUID
//	 0x080  16    LogId GUID
//	 0x090   4    Flags
//	 0x094  16    TmId GUID
//	 0x1FC   4    Checksum of 0x000..0x1FB
type Header struct {
	PrimarySequence   uint32
	SecondarySequence uint32
	LastWriteRaw      uint64
	MajorVersion      uint32
	MinorVersion      uint32
	Type              uint32
	Format            uint32
	RootCellOffset    uint32
	HiveBinsDataSize  uint32
	ClusteringFactor  uint32
	FileName          string
	RmID              uuid.UUID
	LogID             uuid.UUID
	TmID              uuid.UUID
	Flags             uint32
	Checksum          uint32

	// ComputedChecksum is the checksum recomputed from the header bytes.
	ComputedChecksum uint32
	// FileLength is the length of the buffer the header was parsed from.
	FileLength int
}

// Dirty reports whether the sequence numbers disagree, meaning the hive has
// unflushed log data and must be reconciled before its contents are trusted.
func (h Header) Dirty() bool {
	return h.PrimarySequence != h.SecondarySequence
}

// ChecksumOK reports whether the stored checksum matches the header bytes.
func (h Header) ChecksumOK() bool {
	return h.Checksum == h.ComputedChecksum
}

// IsLog reports whether the file type marks a transaction log.
func (h Header) IsLog() bool {
	return h.Type == FileTypeLog || h.Type == FileTypeLogAlt || h.Type == FileTypeLogNewFmt
}

// ExpectedLength is the file length implied by the header: the base block
// followed by every hive bin.
func (h Header) ExpectedLength() int {
	return HeaderSize + int(h.HiveBinsDataSize)
}

// ParseHeader validates the signature and decodes a base block. Only the
// first LogBaseBlockSize bytes are required so the same decoder serves hives
// and transaction logs.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < LogBaseBlockSize {
		return Header{}, fmt.Errorf("regf header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:REGFSignatureSize], REGFSignature) {
		return Header{}, fmt.Errorf("regf header: %w", ErrSignatureMismatch)
	}
	return Header{
		PrimarySequence:   buf.U32LE(b[REGFPrimarySeqOffset:]),
		SecondarySequence: buf.U32LE(b[REGFSecondarySeqOffset:]),
		LastWriteRaw:      buf.U64LE(b[REGFTimeStampOffset:]),
		MajorVersion:      buf.U32LE(b[REGFMajorVersionOffset:]),
		MinorVersion:      buf.U32LE(b[REGFMinorVersionOffset:]),
		Type:              buf.U32LE(b[REGFTypeOffset:]),
		Format:            buf.U32LE(b[REGFFormatOffset:]),
		RootCellOffset:    buf.U32LE(b[REGFRootCellOffset:]),
		HiveBinsDataSize:  buf.U32LE(b[REGFDataSizeOffset:]),
		ClusteringFactor:  buf.U32LE(b[REGFClusterOffset:]),
		FileName:          DecodeUTF16String(b[REGFFileNameOffset : REGFFileNameOffset+REGFFileNameSize]),
		RmID:              ParseGUID(b[REGFRmIDOffset:]),
		LogID:             ParseGUID(b[REGFLogIDOffset:]),
		Flags:             buf.U32LE(b[REGFFlagsOffset:]),
		TmID:              ParseGUID(b[REGFTmIDOffset:]),
		Checksum:          buf.U32LE(b[REGFCheckSumOffset:]),
		ComputedChecksum:  Checksum(b),
		FileLength:        len(b),
	}, nil
}

// Checksum computes the base block checksum: the XOR of the first 127
// little-endian dwords, with 0xFFFFFFFF stored as 0xFFFFFFFE and 0 stored as 1.
func Checksum(b []byte) uint32 {
	var sum uint32
	for i := range REGFChecksumDwords {
		sum ^= buf.U32LE(b[i*4:])
	}
	switch sum {
	case 0xFFFFFFFF:
		return 0xFFFFFFFE
	case 0:
		return 1
	}
	return sum
}

// PatchChecksum recomputes and stores the base block checksum in b.
func PatchChecksum(b []byte) uint32 {
	sum := Checksum(b)
	PutU32(b, REGFCheckSumOffset, sum)
	return sum
}

// ParseGUID converts a Windows GUID (little-endian Data1..Data3) to a UUID.
func ParseGUID(b []byte) uuid.UUID {
	var u uuid.UUID
	if len(b) < GUIDSize {
		return u
	}
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:], b[8:GUIDSize])
	return u
}

// PutGUID stores u in Windows GUID layout at b[0:16].
func PutGUID(b []byte, u uuid.UUID) {
	b[0], b[1], b[2], b[3] = u[3], u[2], u[1], u[0]
	b[4], b[5] = u[5], u[4]
	b[6], b[7] = u[7], u[6]
	copy(b[8:GUIDSize], u[8:])
}
