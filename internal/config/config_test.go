package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with no home config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.False(t, cfg.Recover)
	require.True(t, cfg.ReplayLogs)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "127.0.0.1:8470", cfg.Listen)
	require.Equal(t, int64(2<<30), cfg.MaxHiveSize)

	opts := cfg.LoadOptions()
	require.True(t, opts.ReplayLogs)
	require.Equal(t, cfg.MaxHiveSize, opts.MaxHiveSize)
	require.Equal(t, slog.LevelWarn, cfg.LoggerOptions().Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("recover: true\nlog_level: debug\nlisten: \":9000\"\n"), 0o644))
	t.Setenv("HIVECTL_LISTEN", ":9100")

	cfg, err := Load(file)
	require.NoError(t, err)
	require.True(t, cfg.Recover)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, ":9100", cfg.Listen)
	require.True(t, cfg.LoadOptions().Recover)
}

func TestLoadSearchPath(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hivectl.yaml"), []byte("log_format: json\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HIVECTL_MAX_HIVE_SIZE=4096\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("HIVECTL_MAX_HIVE_SIZE") })

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, int64(4096), cfg.MaxHiveSize)
}

func TestLoadErrors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	tests := []struct {
		name string
		body string
	}{
		{"bad level", "log_level: loud\n"},
		{"bad format", "log_format: xml\n"},
		{"negative size", "max_hive_size: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(file, []byte(tt.body), 0o644))
			_, err := Load(file)
			require.Error(t, err)
		})
	}
}
