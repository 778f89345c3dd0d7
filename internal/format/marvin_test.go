package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarvin32(t *testing.T) {
	data := []byte("registry transaction log entry")
	h := Marvin32(data, LogHashSeed)
	require.Equal(t, h, Marvin32(data, LogHashSeed))
	require.NotEqual(t, h, Marvin32(data, LogHashSeed+1))

	// Every tail length takes a distinct path through the finaliser.
	seen := map[uint64]bool{}
	for n := range 9 {
		seen[Marvin32(data[:n], LogHashSeed)] = true
	}
	require.Len(t, seen, 9)

	flipped := append([]byte(nil), data...)
	flipped[len(flipped)-1] ^= 1
	require.NotEqual(t, h, Marvin32(flipped, LogHashSeed))
}
