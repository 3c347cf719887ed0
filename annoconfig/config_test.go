package annoconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	s, err := Load(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
	assert.Equal(t, 10., s.Editor.ClickThreshold)
	assert.Equal(t, 500*time.Millisecond, s.Editor.LongPressDelay)
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"editor": { "defaultLineLength": 80, "longPressDelay": "750ms" },
		"retry": { "attempts": 3 }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(cfg), 0o644))

	s, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 80., s.Editor.DefaultLineLength)
	assert.Equal(t, 750*time.Millisecond, s.Editor.LongPressDelay)
	assert.Equal(t, 3, s.Retry.Attempts)
	// untouched keys keep their default
	assert.Equal(t, 10., s.Editor.ClickThreshold)
	assert.Equal(t, 100*time.Millisecond, s.Retry.Delay)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{`), 0o644))

	_, err := Load(dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_Flags(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"logLevel": "debug"}`), 0o644))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--log-level", "error"}))

	s, err := Load(dir, fs)
	require.NoError(t, err)
	assert.Equal(t, "error", s.LogLevel)
	// not set on the command line
	assert.Equal(t, "okmarker.db", s.Store.Path)
}
