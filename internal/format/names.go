package format

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// asciiLimit bounds the fast paths: bytes below it map to themselves in both
// Windows-1252 and UTF-16LE.
const asciiLimit = 0x80

// DecodeName decodes a key or value name stored either compressed
// (Windows-1252) or as UTF-16LE.
func DecodeName(raw []byte, compressed bool) string {
	if compressed {
		return DecodeWindows1252(raw)
	}
	return DecodeUTF16LE(raw)
}

// DecodeWindows1252 decodes 8-bit text, using an ASCII fast path.
func DecodeWindows1252(b []byte) string {
	for _, c := range b {
		if c >= asciiLimit {
			out, err := charmap.Windows1252.NewDecoder().Bytes(b)
			if err != nil {
				return string(b)
			}
			return string(out)
		}
	}
	return string(b)
}

// DecodeUTF16LE decodes UTF-16LE bytes. Valid surrogate pairs are combined;
// unpaired surrogates become U+FFFD and a trailing odd byte is dropped.
func DecodeUTF16LE(data []byte) string {
	if len(data) < 2 {
		return ""
	}
	if s, ok := asciiUTF16(data); ok {
		return s
	}
	var b strings.Builder
	b.Grow(len(data))
	for i := 0; i+1 < len(data); i += 2 {
		r := rune(data[i]) | rune(data[i+1])<<8
		if utf16.IsSurrogate(r) {
			if i+3 < len(data) {
				r2 := rune(data[i+2]) | rune(data[i+3])<<8
				if p := utf16.DecodeRune(r, r2); p != utf8.RuneError {
					b.WriteRune(p)
					i += 2
					continue
				}
			}
			r = utf8.RuneError
		}
		b.WriteRune(r)
	}
	return b.String()
}

func asciiUTF16(data []byte) (string, bool) {
	if len(data)%2 != 0 {
		return "", false
	}
	for i := 0; i < len(data); i += 2 {
		if data[i+1] != 0 || data[i] >= asciiLimit {
			return "", false
		}
	}
	var b strings.Builder
	b.Grow(len(data) / 2)
	for i := 0; i < len(data); i += 2 {
		b.WriteByte(data[i])
	}
	return b.String(), true
}

// DecodeUTF16String decodes a UTF-16LE string terminated by the first NUL
// code unit or the end of data.
func DecodeUTF16String(data []byte) string {
	return DecodeUTF16LE(data[:utf16NUL(data)])
}

// DecodeMultiString splits a REG_MULTI_SZ payload at NUL code units. The
// terminating empty string is not returned.
func DecodeMultiString(data []byte) []string {
	var out []string
	for len(data) >= 2 {
		n := utf16NUL(data)
		if n == 0 {
			break
		}
		out = append(out, DecodeUTF16LE(data[:n]))
		if n+2 > len(data) {
			break
		}
		data = data[n+2:]
	}
	return out
}

// utf16NUL returns the byte index of the first aligned NUL code unit, or the
// even-truncated length when there is none.
func utf16NUL(data []byte) int {
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return i
		}
	}
	return len(data) &^ 1
}

// EncodeUTF16LE encodes s as UTF-16LE without a terminator.
func EncodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		PutU16(out, i*2, u)
	}
	return out
}

// EncodeWindows1252 encodes s in 8-bit form, reporting false when s holds a
// character the code page cannot represent.
func EncodeWindows1252(s string) ([]byte, bool) {
	out, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, false
	}
	return out, true
}
