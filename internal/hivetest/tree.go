package hivetest

import (
	"time"

	"github.com/joshuapare/hiverecon/internal/format"
)

// KeyDef declares a key and everything below it.
type KeyDef struct {
	Name      string
	Class     string
	LastWrite time.Time
	// List selects the subkey list kind: "lf" (default), "lh", "li" or
	// "ri" (two lf halves).
	List    string
	Values  []ValueDef
	SubKeys []KeyDef
}

// ValueDef declares a value. Slack is written into the data cell after Data.
type ValueDef struct {
	Name  string
	Type  uint32
	Data  []byte
	Slack []byte
}

// Hive is a built hive plus the offsets of what went into it.
type Hive struct {
	Bytes  []byte
	Keys   map[string]uint32
	Values map[string]uint32
}

// Build lays out root and its subtree in a fresh hive.
func Build(root KeyDef) *Hive {
	b := NewBuilder()
	b.SetRoot(b.AddRoot(root))
	return &Hive{Bytes: b.Bytes(), Keys: b.Keys, Values: b.Values}
}

// AddRoot adds root with the hive-entry flag and registers it under "".
func (b *Builder) AddRoot(root KeyDef) uint32 {
	return b.addKey(root, format.InvalidOffset, "", format.NKFlagHiveEntry)
}

// AddKey adds def under parent without linking it into the parent's subkey
// list, which is how a deleted key looks once its parent forgot it.
func (b *Builder) AddKey(def KeyDef, parent uint32, path string) uint32 {
	return b.addKey(def, parent, path, 0)
}

// ValueKey is the Values map key for a value.
func ValueKey(path, name string) string {
	return path + "|" + name
}

func (b *Builder) addKey(def KeyDef, parent uint32, path string, flags uint16) uint32 {
	if b.security == format.InvalidOffset {
		b.security = b.Alloc(SK(1, []byte{1, 0, 0x04, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}))
	}
	var stamp uint64
	if !def.LastWrite.IsZero() {
		stamp = format.TimeToFiletime(def.LastWrite)
	}
	nk := b.Alloc(NK{
		Name:      def.Name,
		Flags:     flags,
		LastWrite: stamp,
		Parent:    parent,
		Security:  b.security,
	}.Bytes())
	b.Keys[path] = nk

	if def.Class != "" {
		class := format.EncodeUTF16LE(def.Class)
		b.SetField(nk, format.NKClassNameOffset, b.Alloc(class))
		b.SetField16(nk, format.NKClassLenOffset, uint16(len(class)))
	}
	if len(def.Values) > 0 {
		offs := make([]uint32, 0, len(def.Values))
		for _, v := range def.Values {
			off := b.AddValue(v)
			b.Values[ValueKey(path, v.Name)] = off
			offs = append(offs, off)
		}
		b.SetField(nk, format.NKValueCountOffset, uint32(len(offs)))
		b.SetField(nk, format.NKValueListOffset, b.Alloc(OffsetTable(offs)))
	}
	if len(def.SubKeys) > 0 {
		offs := make([]uint32, 0, len(def.SubKeys))
		for _, c := range def.SubKeys {
			offs = append(offs, b.addKey(c, nk, join(path, c.Name), 0))
		}
		b.SetField(nk, format.NKSubkeyCountOffset, uint32(len(offs)))
		b.SetField(nk, format.NKSubkeyListOffset, b.subkeyList(def.List, offs))
	}
	return nk
}

func (b *Builder) subkeyList(kind string, offs []uint32) uint32 {
	switch kind {
	case "", "lf":
		return b.Alloc(List("lf", offs))
	case "ri":
		half := (len(offs) + 1) / 2
		first := b.Alloc(List("lf", offs[:half]))
		second := b.Alloc(List("lf", offs[half:]))
		return b.Alloc(List("ri", []uint32{first, second}))
	default:
		return b.Alloc(List(kind, offs))
	}
}

// AddValue lays out a value record and its data: inline up to four bytes,
// db blocks past one chunk, a single data cell otherwise.
func (b *Builder) AddValue(v ValueDef) uint32 {
	vk := VK{Name: v.Name, Type: v.Type, DataLen: uint32(len(v.Data))}
	n := len(v.Data)
	switch {
	case n <= format.OffsetFieldSize:
		var inline [format.OffsetFieldSize]byte
		copy(inline[:], v.Data)
		vk.DataLen |= format.VKDataInlineBit
		vk.DataOff = uint32(inline[0]) | uint32(inline[1])<<8 | uint32(inline[2])<<16 | uint32(inline[3])<<24
	case format.UsesBigData(b.Minor, n):
		var blocks []uint32
		for rest := v.Data; len(rest) > 0; {
			chunk := rest[:min(len(rest), format.DBChunkSize)]
			rest = rest[len(chunk):]
			blocks = append(blocks, b.Alloc(append(append([]byte(nil), chunk...), make([]byte, format.DBBlockPadding)...)))
		}
		list := b.Alloc(OffsetTable(blocks))
		vk.DataOff = b.Alloc(DB(uint16(len(blocks)), list))
	default:
		vk.DataOff = b.Alloc(append(append([]byte(nil), v.Data...), v.Slack...))
	}
	return b.Alloc(vk.Bytes())
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + `\` + name
}
