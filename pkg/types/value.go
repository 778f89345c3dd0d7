package types

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/joshuapare/hiverecon/internal/cells"
	"github.com/joshuapare/hiverecon/internal/format"
)

// Value is a reconstructed registry value. Raw holds the resolved data, at
// most Length bytes; Slack holds whatever the data cell carried past it.
type Value struct {
	Name    string
	Type    RegType
	Offset  uint32
	Length  int
	Inline  bool
	BigData bool
	Deleted bool
	Raw     []byte
	Slack   []byte
	Cell    *cells.ValueCell
}

// DisplayName returns the name, with "(Default)" for the unnamed value.
func (v *Value) DisplayName() string {
	if v.Name == "" {
		return "(Default)"
	}
	return v.Name
}

// Data returns a copy of the raw value data.
func (v *Value) Data() []byte {
	return append([]byte(nil), v.Raw...)
}

// Truncated reports whether fewer bytes than declared could be resolved.
func (v *Value) Truncated() bool {
	return len(v.Raw) < v.Length
}

// String decodes REG_SZ, REG_EXPAND_SZ and REG_LINK data.
func (v *Value) String() (string, error) {
	switch v.Type {
	case REG_SZ, REG_EXPAND_SZ, REG_LINK:
		return format.DecodeUTF16String(v.Raw), nil
	}
	return "", v.typeErr(REG_SZ)
}

// Strings decodes REG_MULTI_SZ data.
func (v *Value) Strings() ([]string, error) {
	if v.Type != REG_MULTI_SZ {
		return nil, v.typeErr(REG_MULTI_SZ)
	}
	return format.DecodeMultiString(v.Raw), nil
}

// Uint32 decodes REG_DWORD and REG_DWORD_BE data.
func (v *Value) Uint32() (uint32, error) {
	if v.Type != REG_DWORD && v.Type != REG_DWORD_BE {
		return 0, v.typeErr(REG_DWORD)
	}
	if len(v.Raw) < 4 {
		return 0, Wrap(ErrCorrupt, fmt.Errorf("dword value %q has %d bytes", v.Name, len(v.Raw)))
	}
	if v.Type == REG_DWORD_BE {
		return binary.BigEndian.Uint32(v.Raw), nil
	}
	return binary.LittleEndian.Uint32(v.Raw), nil
}

// Uint64 decodes REG_QWORD data.
func (v *Value) Uint64() (uint64, error) {
	if v.Type != REG_QWORD {
		return 0, v.typeErr(REG_QWORD)
	}
	if len(v.Raw) < 8 {
		return 0, Wrap(ErrCorrupt, fmt.Errorf("qword value %q has %d bytes", v.Name, len(v.Raw)))
	}
	return binary.LittleEndian.Uint64(v.Raw), nil
}

// Text renders the data for display and export. Decoding failures fall back
// to hex so every value has a rendering.
func (v *Value) Text() string {
	switch v.Type {
	case REG_SZ, REG_EXPAND_SZ, REG_LINK:
		s, _ := v.String()
		return s
	case REG_MULTI_SZ:
		ss, _ := v.Strings()
		return strings.Join(ss, ", ")
	case REG_DWORD, REG_DWORD_BE:
		if n, err := v.Uint32(); err == nil {
			return fmt.Sprintf("0x%08X (%d)", n, n)
		}
	case REG_QWORD:
		if n, err := v.Uint64(); err == nil {
			return fmt.Sprintf("0x%016X (%d)", n, n)
		}
	}
	return strings.ToUpper(hex.EncodeToString(v.Raw))
}

func (v *Value) typeErr(want RegType) error {
	return Wrap(ErrTypeMismatch, fmt.Errorf("value %q is %s, not %s", v.Name, v.Type, want))
}
