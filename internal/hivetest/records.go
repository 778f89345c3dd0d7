package hivetest

import (
	"github.com/joshuapare/hiverecon/internal/format"
)

// NK describes a key node payload.
type NK struct {
	Name        string
	Flags       uint16
	LastWrite   uint64
	Parent      uint32
	SubkeyCount uint32
	SubkeyList  uint32
	ValueCount  uint32
	ValueList   uint32
	Security    uint32
	Class       uint32
	ClassLen    uint16
}

// Bytes encodes the record. Names representable in Windows-1252 are stored
// compressed, others as UTF-16LE.
func (n NK) Bytes() []byte {
	name, flags := encodeName(n.Name, n.Flags, format.NKFlagCompressedName)
	b := make([]byte, format.NKNameOffset+len(name))
	copy(b, format.NKSignature)
	format.PutU16(b, format.NKFlagsOffset, flags)
	format.PutU64(b, format.NKLastWriteOffset, n.LastWrite)
	format.PutU32(b, format.NKParentOffset, n.Parent)
	format.PutU32(b, format.NKSubkeyCountOffset, n.SubkeyCount)
	format.PutU32(b, format.NKSubkeyListOffset, orInvalid(n.SubkeyList, n.SubkeyCount))
	format.PutU32(b, format.NKVolSubkeyListOffset, format.InvalidOffset)
	format.PutU32(b, format.NKValueCountOffset, n.ValueCount)
	format.PutU32(b, format.NKValueListOffset, orInvalid(n.ValueList, n.ValueCount))
	format.PutU32(b, format.NKSecurityOffset, n.Security)
	format.PutU32(b, format.NKClassNameOffset, orInvalid(n.Class, uint32(n.ClassLen)))
	format.PutU16(b, format.NKNameLenOffset, uint16(len(name)))
	format.PutU16(b, format.NKClassLenOffset, n.ClassLen)
	copy(b[format.NKNameOffset:], name)
	return b
}

// VK describes a value record payload. DataLen is stored as given, so
// callers set format.VKDataInlineBit themselves.
type VK struct {
	Name    string
	Type    uint32
	DataLen uint32
	DataOff uint32
}

// Bytes encodes the record.
func (v VK) Bytes() []byte {
	name, flags := encodeName(v.Name, 0, format.VKFlagASCIIName)
	b := make([]byte, format.VKNameOffset+len(name))
	copy(b, format.VKSignature)
	format.PutU16(b, format.VKNameLenOffset, uint16(len(name)))
	format.PutU32(b, format.VKDataLenOffset, v.DataLen)
	format.PutU32(b, format.VKDataOffOffset, v.DataOff)
	format.PutU32(b, format.VKTypeOffset, v.Type)
	format.PutU16(b, format.VKFlagsOffset, flags)
	copy(b[format.VKNameOffset:], name)
	return b
}

// SK encodes a security cell with the given descriptor bytes.
func SK(refCount uint32, descriptor []byte) []byte {
	b := make([]byte, format.SKDescriptorOffset+len(descriptor))
	copy(b, format.SKSignature)
	format.PutU32(b, format.SKReferenceCountOffset, refCount)
	format.PutU32(b, format.SKDescriptorLengthOffset, uint32(len(descriptor)))
	copy(b[format.SKDescriptorOffset:], descriptor)
	return b
}

// List encodes an li, lf, lh or ri list. Hint and hash slots are zeroed.
func List(tag string, offsets []uint32) []byte {
	stride := format.LIEntrySize
	if tag == "lf" || tag == "lh" {
		stride = format.LFEntrySize
	}
	b := make([]byte, format.ListHeaderSize+len(offsets)*stride)
	copy(b, tag)
	format.PutU16(b, format.SignatureSize, uint16(len(offsets)))
	for i, off := range offsets {
		format.PutU32(b, format.ListHeaderSize+i*stride, off)
	}
	return b
}

// OffsetTable encodes a bare uint32 table, as used by value lists and db
// block lists.
func OffsetTable(offsets []uint32) []byte {
	b := make([]byte, len(offsets)*format.OffsetFieldSize)
	for i, off := range offsets {
		format.PutU32(b, i*format.OffsetFieldSize, off)
	}
	return b
}

// DB encodes a big-data header.
func DB(count uint16, list uint32) []byte {
	b := make([]byte, format.DBMinSize)
	copy(b, format.DBSignature)
	format.PutU16(b, format.DBCountOffset, count)
	format.PutU32(b, format.DBListOffset, list)
	return b
}

func encodeName(name string, flags, compressed uint16) ([]byte, uint16) {
	if raw, ok := format.EncodeWindows1252(name); ok {
		return raw, flags | compressed
	}
	return format.EncodeUTF16LE(name), flags &^ compressed
}

func orInvalid(off, count uint32) uint32 {
	if count == 0 && off == 0 {
		return format.InvalidOffset
	}
	return off
}
