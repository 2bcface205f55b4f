package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"gridsync/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 1, cfg.Sheets.Header)
	assert.Equal(t, "nan", cfg.Sheets.NAValues)
	assert.Equal(t, 60, cfg.Sheets.RequestsPerMinute)
	assert.False(t, cfg.Sheets.RawValues)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := `
[sheets]
spreadsheet_id = "from-file"
worksheet = "People"
header = 2

[log]
format = "console"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(file), 0o600))
	t.Setenv("SHEETS_WORKSHEET", "FromEnv")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "FromEnv", cfg.Sheets.Worksheet)
	assert.Equal(t, 2, cfg.Sheets.Header)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SHEETS_COL_INDENT=3\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SHEETS_COL_INDENT") })

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Sheets.ColIndent)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("[sheets\n"), 0o600))

	_, err := config.LoadConfig(dir)
	assert.Error(t, err)
}

func TestWriteTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	require.NoError(t, config.WriteTemplate(path, false))
	assert.Error(t, config.WriteTemplate(path, false))
	assert.NoError(t, config.WriteTemplate(path, true))

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	defaults, err := config.Defaults()
	require.NoError(t, err)
	assert.Equal(t, defaults, cfg)
}
