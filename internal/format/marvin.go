package format

import (
	"math/bits"

	"github.com/joshuapare/hiverecon/internal/buf"
)

// LogHashSeed is the Marvin32 seed used for HvLE entry hashes.
const LogHashSeed uint64 = 0x82EF4D887A4E55C5

// Marvin32 computes the Marvin32 hash of data with the given seed.
func Marvin32(data []byte, seed uint64) uint64 {
	lo, hi := uint32(seed), uint32(seed>>32)
	for len(data) >= 4 {
		lo += buf.U32LE(data)
		lo, hi = marvinBlock(lo, hi)
		data = data[4:]
	}
	final := uint32(0x80)
	for i := len(data) - 1; i >= 0; i-- {
		final = final<<8 | uint32(data[i])
	}
	lo += final
	lo, hi = marvinBlock(lo, hi)
	lo, hi = marvinBlock(lo, hi)
	return uint64(hi)<<32 | uint64(lo)
}

func marvinBlock(lo, hi uint32) (uint32, uint32) {
	hi ^= lo
	lo = bits.RotateLeft32(lo, 20) + hi
	hi = bits.RotateLeft32(hi, 9) ^ lo
	lo = bits.RotateLeft32(lo, 27) + hi
	hi = bits.RotateLeft32(hi, 19)
	return lo, hi
}
