//go:build !unix

package mmfile

import "os"

func noUnmap() error { return nil }

// Map reads the whole file on platforms without mmap. The cleanup is a no-op.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	return data, noUnmap, err
}
