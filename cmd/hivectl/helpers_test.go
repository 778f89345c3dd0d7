package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/hivetest"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// testHivePath writes a small SOFTWARE-like hive with one deleted key and
// returns its path.
func testHivePath(t *testing.T) string {
	t.Helper()
	b := hivetest.NewBuilder()
	root := b.AddRoot(hivetest.KeyDef{
		Name: "ROOT",
		SubKeys: []hivetest.KeyDef{
			{Name: "Microsoft", SubKeys: []hivetest.KeyDef{
				{Name: "Windows", SubKeys: []hivetest.KeyDef{
					{Name: "Run", Values: []hivetest.ValueDef{
						{Name: "Updater", Type: uint32(types.REG_SZ), Data: format.EncodeUTF16LE(`C:\upd.exe` + "\x00")},
						{Name: "Count", Type: uint32(types.REG_DWORD), Data: []byte{7, 0, 0, 0}},
					}},
				}},
			}},
			{Name: "Classes", LastWrite: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	})
	b.SetRoot(root)
	gone := b.AddKey(hivetest.KeyDef{
		Name:   "Removed",
		Values: []hivetest.ValueDef{{Name: "Trace", Type: uint32(types.REG_SZ), Data: format.EncodeUTF16LE("evidence\x00")}},
	}, root, "Removed")
	b.Free(gone)

	path := filepath.Join(t.TempDir(), "SOFTWARE")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write hive: %v", err)
	}
	return path
}

// resetFlags restores every global flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	recoverDeleted, replayLogs, logPaths = false, true, nil
	cfg = nil
	keysRecursive, keysDepth = false, 0
	valuesSlack = false
	searchRegex, searchMaxResults, searchAfter, searchBefore = false, 0, "", ""
	statsDiagnostics = false
	exportOutput = ""
	infoRaw = false
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	// Read captured output
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
