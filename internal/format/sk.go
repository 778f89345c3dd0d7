package format

import (
	"bytes"
	"fmt"
)

// SKRecord is a security cell (_CM_KEY_SECURITY):
//
//	Offset  Size  Description
//	0x00    2     's' 'k'
//	0x02    2     Reserved
//	0x04    4     Flink
//	0x08    4     Blink
//	0x0C    4     Reference count
//	0x10    4     Descriptor length
//	0x14    ...   SECURITY_DESCRIPTOR_RELATIVE
//
// The descriptor is kept opaque.
type SKRecord struct {
	Flink      uint32
	Blink      uint32
	RefCount   uint32
	Descriptor []byte
}

// DecodeSK decodes a security cell payload.
func DecodeSK(b []byte) (SKRecord, error) {
	if len(b) < SKMinSize {
		return SKRecord{}, fmt.Errorf("sk: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:SignatureSize], SKSignature) {
		return SKRecord{}, fmt.Errorf("sk: %w", ErrSignatureMismatch)
	}
	f := fields{rec: "sk", b: b}
	sk := SKRecord{
		Flink:    f.u32(SKFlinkOffset, "flink"),
		Blink:    f.u32(SKBlinkOffset, "blink"),
		RefCount: f.u32(SKReferenceCountOffset, "refcount"),
	}
	n := f.u32(SKDescriptorLengthOffset, "descriptor len")
	sk.Descriptor = f.bytes(SKDescriptorOffset, int(n), "descriptor")
	if f.err != nil {
		return SKRecord{}, f.err
	}
	return sk, nil
}
