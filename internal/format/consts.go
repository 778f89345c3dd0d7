// Package format houses low-level decoders for the Windows registry hive file
// format and its transaction logs. Decoders operate on byte slices, never
// allocate more than the decoded record needs, and report problems through
// the sentinel errors in errors.go so higher layers can decide whether a
// problem is fatal or merely a diagnostic.
package format

var (
	// REGFSignature opens every hive file and every transaction log.
	REGFSignature = []byte{'r', 'e', 'g', 'f'}

	// HBINSignature opens every hive bin (page).
	HBINSignature = []byte{'h', 'b', 'i', 'n'}

	// Two-character record tags found at the start of an allocated cell payload.
	NKSignature = []byte{'n', 'k'}
	VKSignature = []byte{'v', 'k'}
	SKSignature = []byte{'s', 'k'}
	LFSignature = []byte{'l', 'f'}
	LHSignature = []byte{'l', 'h'}
	LISignature = []byte{'l', 'i'}
	RISignature = []byte{'r', 'i'}
	DBSignature = []byte{'d', 'b'}

	// HvLESignature opens every entry of a new-format (Windows 8.1+) log.
	HvLESignature = []byte{'H', 'v', 'L', 'E'}

	// DIRTSignature opens the dirty vector of a legacy log.
	DIRTSignature = []byte{'D', 'I', 'R', 'T'}
)

const (
	// HeaderSize is the size of the base block. Cell offsets are relative to
	// the end of it.
	HeaderSize = 4096

	// HiveDataBase is the file offset of the first hive bin.
	HiveDataBase = 0x1000

	// HBINAlignment is the fixed page width; bins are multiples of it.
	HBINAlignment = 0x1000

	// HBINHeaderSize is the size of a hive bin header.
	HBINHeaderSize = 0x20

	// CellHeaderSize is the signed size prefix in front of every cell.
	CellHeaderSize = 4

	// CellAlignment is the alignment of cells inside a bin.
	CellAlignment = 8

	// InvalidOffset marks an unused offset field.
	InvalidOffset = 0xFFFFFFFF

	// SignatureSize is the size of a record tag.
	SignatureSize = 2

	// OffsetFieldSize is the size of a cell index.
	OffsetFieldSize = 4

	// GUIDSize is the size of a GUID field in the base block.
	GUIDSize = 16
)

// Hive bin header fields.
const (
	HBINOffsetField = 0x04 // uint32, offset of this bin relative to HiveDataBase
	HBINSizeField   = 0x08 // uint32, size of this bin
	HBINStampField  = 0x14 // uint64, FILETIME (first bin only)
)

// Base block fields.
const (
	REGFSignatureSize       = 4
	REGFPrimarySeqOffset    = 0x004
	REGFSecondarySeqOffset  = 0x008
	REGFTimeStampOffset     = 0x00C
	REGFMajorVersionOffset  = 0x014
	REGFMinorVersionOffset  = 0x018
	REGFTypeOffset          = 0x01C
	REGFFormatOffset        = 0x020
	REGFRootCellOffset      = 0x024
	REGFDataSizeOffset      = 0x028
	REGFClusterOffset       = 0x02C
	REGFFileNameOffset      = 0x030
	REGFFileNameSize        = 64
	REGFRmIDOffset          = 0x070
	REGFLogIDOffset         = 0x080
	REGFFlagsOffset         = 0x090
	REGFTmIDOffset          = 0x094
	REGFLastReorgTimeOffset = 0x0A8
	REGFCheckSumOffset      = 0x1FC

	// REGFChecksumRegionLen covers 0x000..0x1FB, 127 dwords.
	REGFChecksumRegionLen = 0x1FC
	REGFChecksumDwords    = REGFChecksumRegionLen / 4

	// LogBaseBlockSize is the portion of the base block written at the start
	// of a transaction log.
	LogBaseBlockSize = 0x200
)

// File types stored at REGFTypeOffset.
const (
	FileTypePrimary   = 0
	FileTypeLog       = 1
	FileTypeLogAlt    = 2
	FileTypeLogNewFmt = 6
)

// NK record fields, relative to the payload start ("nk").
const (
	NKFlagsOffset          = 0x02
	NKLastWriteOffset      = 0x04
	NKParentOffset         = 0x10
	NKSubkeyCountOffset    = 0x14
	NKVolSubkeyCountOffset = 0x18
	NKSubkeyListOffset     = 0x1C
	NKVolSubkeyListOffset  = 0x20
	NKValueCountOffset     = 0x24
	NKValueListOffset      = 0x28
	NKSecurityOffset       = 0x2C
	NKClassNameOffset      = 0x30
	NKMaxNameLenOffset     = 0x34
	NKMaxClassLenOffset    = 0x38
	NKMaxValueNameOffset   = 0x3C
	NKMaxValueDataOffset   = 0x40
	NKNameLenOffset        = 0x48
	NKClassLenOffset       = 0x4A
	NKNameOffset           = 0x4C

	NKMinSize = NKNameOffset
)

// NK flags.
const (
	NKFlagVolatile       = 0x0001
	NKFlagHiveExit       = 0x0002
	NKFlagHiveEntry      = 0x0004 // root key of the hive
	NKFlagNoDelete       = 0x0008
	NKFlagSymLink        = 0x0010
	NKFlagCompressedName = 0x0020
)

// VK record fields.
const (
	VKNameLenOffset = 0x02
	VKDataLenOffset = 0x04
	VKDataOffOffset = 0x08
	VKTypeOffset    = 0x0C
	VKFlagsOffset   = 0x10
	VKNameOffset    = 0x14

	VKMinSize = VKNameOffset

	VKFlagASCIIName  = 0x0001
	VKDataInlineBit  = 0x80000000
	VKDataLengthMask = 0x7FFFFFFF
)

// SK record fields.
const (
	SKFlinkOffset            = 0x04
	SKBlinkOffset            = 0x08
	SKReferenceCountOffset   = 0x0C
	SKDescriptorLengthOffset = 0x10
	SKDescriptorOffset       = 0x14

	SKMinSize = SKDescriptorOffset
)

// List records share a signature + uint16 count header.
const (
	ListHeaderSize = 4
	LIEntrySize    = 4
	LFEntrySize    = 8
	RIEntrySize    = 4
)

// DB (big data) record.
const (
	DBCountOffset = 0x02
	DBListOffset  = 0x04
	DBMinSize     = 0x0C

	// DBChunkSize is the payload carried by every block but the last.
	DBChunkSize = 16344

	// DBBlockPadding trails every block and is not value data.
	DBBlockPadding = 4
)

// New-format log entry header (HvLE).
const (
	LogEntrySizeOffset       = 0x04
	LogEntryFlagsOffset      = 0x08
	LogEntrySequenceOffset   = 0x0C
	LogEntryDataSizeOffset   = 0x10
	LogEntryPageCountOffset  = 0x14
	LogEntryHash1Offset      = 0x18
	LogEntryHash2Offset      = 0x20
	LogEntryHeaderSize       = 0x28
	LogEntryPageRefSize      = 8
	LogEntryAlignment        = 0x200
	LogDirtySectorSize       = 0x200
	LogDirtyVectorOffset     = 0x200
	LogDirtyVectorHeaderSize = 4
)

// Sanity limits applied by the record decoders. Values above them are
// treated as corruption rather than trusted as allocation sizes.
const (
	MaxSubkeyCount  = 0x00FFFFFF
	MaxValueCount   = 0x00FFFFFF
	MaxNameLen      = 0x7FFF
	MaxClassLen     = 0xFFFF
	MaxValueDataLen = 0x7FFFFFFF
)
