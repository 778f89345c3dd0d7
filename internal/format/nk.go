package format

import (
	"bytes"
	"fmt"
)

// NKRecord holds the fields of a key node. Layout relative to the payload:
//
//	Offset  Size  Field
//	0x00    2     'n' 'k'
//	0x02    2     Flags (0x04 root, 0x20 compressed name)
//	0x04    8     Last write time (FILETIME)
//	0x0C    4     Access bits
//	0x10    4     Parent cell index
//	0x14    4     Number of subkeys
//	0x18    4     Number of volatile subkeys
//	0x1C    4     Subkey list cell index
//	0x20    4     Volatile subkey list cell index
//	0x24    4     Number of values
//	0x28    4     Value list cell index
//	0x2C    4     Security cell index
//	0x30    4     Class name cell index
//	0x34    16    Max subkey name, class, value name, value data lengths
//	0x44    4     Work var
//	0x48    2     Name length in bytes
//	0x4A    2     Class length in bytes
//	0x4C    n     Name (Windows-1252 when compressed, else UTF-16LE)
type NKRecord struct {
	Flags              uint16
	LastWriteRaw       uint64
	ParentOffset       uint32
	SubkeyCount        uint32
	VolatileCount      uint32
	SubkeyListOffset   uint32
	ValueCount         uint32
	ValueListOffset    uint32
	SecurityOffset     uint32
	ClassNameOffset    uint32
	MaxNameLength      uint32
	MaxClassLength     uint32
	MaxValueNameLength uint32
	MaxValueDataLength uint32
	NameLength         uint16
	ClassLength        uint16
	NameRaw            []byte
}

// NameIsCompressed reports whether the name is stored in 8-bit form.
func (nk NKRecord) NameIsCompressed() bool {
	return nk.Flags&NKFlagCompressedName != 0
}

// IsRoot reports whether the key carries the hive-entry flag.
func (nk NKRecord) IsRoot() bool {
	return nk.Flags&NKFlagHiveEntry != 0
}

// Name decodes the key name.
func (nk NKRecord) Name() string {
	return DecodeName(nk.NameRaw, nk.NameIsCompressed())
}

// DecodeNK decodes a key node payload.
func DecodeNK(b []byte) (NKRecord, error) {
	if len(b) < NKMinSize {
		return NKRecord{}, fmt.Errorf("nk: %w (have %d, need %d)", ErrTruncated, len(b), NKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], NKSignature) {
		return NKRecord{}, fmt.Errorf("nk: %w", ErrSignatureMismatch)
	}
	f := fields{rec: "nk", b: b}
	nk := NKRecord{
		Flags:              f.u16(NKFlagsOffset, "flags"),
		LastWriteRaw:       f.u64(NKLastWriteOffset, "last write"),
		ParentOffset:       f.u32(NKParentOffset, "parent"),
		SubkeyCount:        f.u32(NKSubkeyCountOffset, "subkey count"),
		VolatileCount:      f.u32(NKVolSubkeyCountOffset, "volatile count"),
		SubkeyListOffset:   f.u32(NKSubkeyListOffset, "subkey list"),
		ValueCount:         f.u32(NKValueCountOffset, "value count"),
		ValueListOffset:    f.u32(NKValueListOffset, "value list"),
		SecurityOffset:     f.u32(NKSecurityOffset, "security"),
		ClassNameOffset:    f.u32(NKClassNameOffset, "class name"),
		MaxNameLength:      f.u32(NKMaxNameLenOffset, "max name len"),
		MaxClassLength:     f.u32(NKMaxClassLenOffset, "max class len"),
		MaxValueNameLength: f.u32(NKMaxValueNameOffset, "max value name len"),
		MaxValueDataLength: f.u32(NKMaxValueDataOffset, "max value data len"),
		NameLength:         f.u16(NKNameLenOffset, "name len"),
		ClassLength:        f.u16(NKClassLenOffset, "class len"),
	}
	f.limit(uint64(nk.SubkeyCount), MaxSubkeyCount, "subkey count")
	f.limit(uint64(nk.ValueCount), MaxValueCount, "value count")
	f.limit(uint64(nk.NameLength), MaxNameLen, "name len")
	nk.NameRaw = f.bytes(NKNameOffset, int(nk.NameLength), "name")
	if f.err != nil {
		return NKRecord{}, f.err
	}
	return nk, nil
}
