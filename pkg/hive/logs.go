package hive

import (
	"os"
	"path/filepath"
	"strings"
)

var logSuffixes = []string{".LOG1", ".LOG2", ".LOG"}

// DiscoverLogs lists the transaction logs stored next to a hive file, in
// LOG1, LOG2, LOG order. Names are compared case-insensitively since hives
// copied off NTFS keep their original casing.
func DiscoverLogs(hivePath string) []string {
	dir, base := filepath.Split(hivePath)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, suffix := range logSuffixes {
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(e.Name(), base+suffix) {
				out = append(out, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	return out
}
