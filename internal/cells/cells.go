// Package cells models the records found by the page scanner. Records are
// addressed by cell index (offset relative to the first hive bin) and keep
// only decoded fields; byte payloads alias the hive buffer.
package cells

import (
	"fmt"

	"github.com/joshuapare/hiverecon/internal/format"
)

// Cell is the capability shared by key, value and security records.
type Cell interface {
	Offset() uint32
	Signature() string
	Free() bool
	Size() int
	Referenced() bool
	MarkReferenced()
}

type base struct {
	off        uint32
	size       int
	free       bool
	referenced bool
}

func (b *base) Offset() uint32   { return b.off }
func (b *base) Free() bool       { return b.free }
func (b *base) Size() int        { return b.size }
func (b *base) Referenced() bool { return b.referenced }
func (b *base) MarkReferenced()  { b.referenced = true }

// KeyCell is a key node.
type KeyCell struct {
	base
	NK   format.NKRecord
	Name string
}

func (*KeyCell) Signature() string { return "nk" }

// ValueCell is a value record.
type ValueCell struct {
	base
	VK   format.VKRecord
	Name string
}

func (*ValueCell) Signature() string { return "vk" }

// SecurityCell is a security descriptor record. Its descriptor stays opaque.
type SecurityCell struct {
	base
	SK format.SKRecord
}

func (*SecurityCell) Signature() string { return "sk" }

// Decode builds the record model for an nk, vk or sk cell. Free cells keep
// their free flag so recovery can tell residual records from live ones.
func Decode(c format.Cell) (Cell, error) {
	b := base{off: c.Rel(), size: c.Size, free: c.Free}
	switch c.TagString() {
	case "nk":
		nk, err := format.DecodeNK(c.Data)
		if err != nil {
			return nil, err
		}
		return &KeyCell{base: b, NK: nk, Name: nk.Name()}, nil
	case "vk":
		vk, err := format.DecodeVK(c.Data)
		if err != nil {
			return nil, err
		}
		return &ValueCell{base: b, VK: vk, Name: vk.Name()}, nil
	case "sk":
		sk, err := format.DecodeSK(c.Data)
		if err != nil {
			return nil, err
		}
		return &SecurityCell{base: b, SK: sk}, nil
	}
	return nil, fmt.Errorf("cell tag %q: %w", c.TagString(), format.ErrUnsupported)
}

// NewKey wraps an already decoded key node, used when carving records out of
// free space.
func NewKey(off uint32, size int, nk format.NKRecord) *KeyCell {
	return &KeyCell{base: base{off: off, size: size, free: true}, NK: nk, Name: nk.Name()}
}

// NewValue wraps an already decoded value record found in free space.
func NewValue(off uint32, size int, vk format.VKRecord) *ValueCell {
	return &ValueCell{base: base{off: off, size: size, free: true}, VK: vk, Name: vk.Name()}
}
