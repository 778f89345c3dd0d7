package mmfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCopiesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hive.bin")
	want := []byte{0xde, 0xad, 0xbe, 0xef, 0x42}
	require.NoError(t, os.WriteFile(path, want, 0o644))

	data, err := Load(path, 0)
	require.NoError(t, err)
	require.Equal(t, want, data)

	data[0] = 0
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, want, onDisk)
}

func TestLoadZeroLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	data, err := Load(path, 0)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestLoadLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	_, err := Load(path, 32)
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = Load(filepath.Join(t.TempDir(), "missing"), 0)
	require.ErrorIs(t, err, os.ErrNotExist)
}
