// Package mmfile reads hive and log files into owned buffers. On unix the
// file is mapped read-only and copied out, so the returned slice outlives
// the mapping and later patches (log replay) never touch the file.
package mmfile

import (
	"errors"
	"fmt"
	"os"
)

// ErrTooLarge is returned when a file exceeds the caller's size limit.
var ErrTooLarge = errors.New("mmfile: file exceeds size limit")

// Load returns a private copy of the file at path. A maxSize of zero or less
// disables the limit.
func Load(path string, maxSize int64) ([]byte, error) {
	if maxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > maxSize {
			return nil, fmt.Errorf("%s: %d bytes: %w", path, info.Size(), ErrTooLarge)
		}
	}
	data, cleanup, err := Map(path)
	if err != nil {
		return nil, err
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	if err := cleanup(); err != nil {
		return nil, fmt.Errorf("unmap %s: %w", path, err)
	}
	return owned, nil
}
