package format

import (
	"bytes"
	"fmt"
)

// VKRecord holds the fields of a value record:
//
//	Offset  Size  Field
//	0x00    2     'v' 'k'
//	0x02    2     Name length
//	0x04    4     Data length; the high bit marks inline data
//	0x08    4     Data cell index, or the data itself when inline
//	0x0C    4     Data type
//	0x10    2     Flags (0x01 compressed name)
//	0x12    2     Spare
//	0x14    n     Name
type VKRecord struct {
	NameLength uint16
	DataLength uint32
	DataOffset uint32
	Type       uint32
	Flags      uint16
	NameRaw    []byte
}

// NameIsASCII reports whether the name is stored as 8-bit bytes.
func (vk VKRecord) NameIsASCII() bool {
	return vk.Flags&VKFlagASCIIName != 0
}

// Name decodes the value name. An empty name is the key's default value.
func (vk VKRecord) Name() string {
	return DecodeName(vk.NameRaw, vk.NameIsASCII())
}

// DataInline reports whether the data lives in the DataOffset field.
func (vk VKRecord) DataInline() bool {
	return vk.DataLength&VKDataInlineBit != 0
}

// Length returns the declared data length without the inline bit.
func (vk VKRecord) Length() int {
	return int(vk.DataLength & VKDataLengthMask)
}

// InlineData returns the inline bytes, at most four.
func (vk VKRecord) InlineData() []byte {
	var raw [OffsetFieldSize]byte
	PutU32(raw[:], 0, vk.DataOffset)
	n := min(vk.Length(), OffsetFieldSize)
	return append([]byte(nil), raw[:n]...)
}

// DecodeVK decodes a value record payload.
func DecodeVK(b []byte) (VKRecord, error) {
	if len(b) < VKMinSize {
		return VKRecord{}, fmt.Errorf("vk: %w (have %d, need %d)", ErrTruncated, len(b), VKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], VKSignature) {
		return VKRecord{}, fmt.Errorf("vk: %w", ErrSignatureMismatch)
	}
	f := fields{rec: "vk", b: b}
	vk := VKRecord{
		NameLength: f.u16(VKNameLenOffset, "name len"),
		DataLength: f.u32(VKDataLenOffset, "data len"),
		DataOffset: f.u32(VKDataOffOffset, "data off"),
		Type:       f.u32(VKTypeOffset, "type"),
		Flags:      f.u16(VKFlagsOffset, "flags"),
	}
	f.limit(uint64(vk.NameLength), MaxNameLen, "name len")
	vk.NameRaw = f.bytes(VKNameOffset, int(vk.NameLength), "name")
	if f.err != nil {
		return VKRecord{}, f.err
	}
	return vk, nil
}
