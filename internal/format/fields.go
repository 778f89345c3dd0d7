package format

import "fmt"

// fields reads fixed-offset little-endian fields from a record payload and
// keeps the first failure, so decoders can read every field and check once.
type fields struct {
	rec string
	b   []byte
	err error
}

func (f *fields) u16(off int, what string) uint16 {
	if f.err != nil {
		return 0
	}
	v, err := CheckedReadU16(f.b, off)
	if err != nil {
		f.err = fmt.Errorf("%s %s: %w", f.rec, what, err)
	}
	return v
}

func (f *fields) u32(off int, what string) uint32 {
	if f.err != nil {
		return 0
	}
	v, err := CheckedReadU32(f.b, off)
	if err != nil {
		f.err = fmt.Errorf("%s %s: %w", f.rec, what, err)
	}
	return v
}

func (f *fields) u64(off int, what string) uint64 {
	if f.err != nil {
		return 0
	}
	v, err := CheckedReadU64(f.b, off)
	if err != nil {
		f.err = fmt.Errorf("%s %s: %w", f.rec, what, err)
	}
	return v
}

// limit fails the read when v exceeds max.
func (f *fields) limit(v, max uint64, what string) {
	if f.err == nil && v > max {
		f.err = fmt.Errorf("%s %s %d exceeds limit %d: %w", f.rec, what, v, max, ErrSanityLimit)
	}
}

// bytes returns b[off:off+n] or records a truncation.
func (f *fields) bytes(off, n int, what string) []byte {
	if f.err != nil {
		return nil
	}
	end := off + n
	if n < 0 || end > len(f.b) {
		f.err = fmt.Errorf("%s %s: %w (need %d bytes from 0x%X, have %d)",
			f.rec, what, ErrTruncated, n, off, len(f.b))
		return nil
	}
	return f.b[off:end]
}
