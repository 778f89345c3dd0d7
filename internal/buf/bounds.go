package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
		return 0, false
	}
	return a + b, true
}

// MulOverflowSafe multiplies two non-negative ints. Negative operands and
// overflowing products report ok = false.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CheckListBounds validates that count elements of elemSize bytes starting at
// off fit in a buffer of bufLen bytes and returns the end offset.
//
//	end, err := buf.CheckListBounds(len(payload), 4, int(count), 8)
//	if err != nil {
//	    return fmt.Errorf("lf list: %w", err)
//	}
func CheckListBounds(bufLen, off, count, elemSize int) (int, error) {
	if off < 0 || count < 0 || elemSize < 0 {
		return 0, fmt.Errorf("negative list geometry: off=%d count=%d elem=%d", off, count, elemSize)
	}
	total, ok := MulOverflowSafe(count, elemSize)
	if !ok {
		return 0, fmt.Errorf("overflow: count=%d * elem=%d", count, elemSize)
	}
	end, ok := AddOverflowSafe(off, total)
	if !ok {
		return 0, fmt.Errorf("overflow: off=%d + size=%d", off, total)
	}
	if end > bufLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return end, nil
}

// Slice returns b[off:off+n] if the whole range is inside b.
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// Clamp returns b[off:off+n] trimmed to whatever part of the range exists.
// Used where a declared length may legitimately overrun the buffer.
func Clamp(b []byte, off, n int) []byte {
	if off < 0 || off >= len(b) || n <= 0 {
		return nil
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		end = len(b)
	}
	return b[off:end]
}
