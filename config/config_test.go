package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PAYROLL_CONFIG", "PAYROLL_PORT", "PAYROLL_DB", "PAYROLL_TZ", "PAYROLL_LOG_LEVEL",
		"PAYROLL_ALLOWED_ORIGINS", "PAYROLL_REPORT_INTERVAL", "PAYROLL_STATIC_DIR",
	} {
		t.Setenv(key, "")
	}
	// Keep a stray .env in the package directory out of the way.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "payroll.db", cfg.Database.Path)
	assert.Equal(t, time.Hour, cfg.Reports.Interval)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "payroll.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 9090
  timezone: UTC
  log_level: debug
  allowed_origins: ["https://payroll.example"]
database:
  path: /tmp/from-yaml.db
reports:
  interval: 30m
`), 0o600))
	t.Setenv("PAYROLL_CONFIG", path)
	t.Setenv("PAYROLL_DB", ":memory:")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, ":memory:", cfg.Database.Path, "env beats file")
	assert.Equal(t, 30*time.Minute, cfg.Reports.Interval)
	assert.Equal(t, []string{"https://payroll.example"}, cfg.App.AllowedOrigins)
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("PAYROLL_PORT=7000\nPAYROLL_ALLOWED_ORIGINS=a.example, b.example\n"), 0o600))
	// godotenv never overrides variables that are already set.
	os.Unsetenv("PAYROLL_PORT")
	os.Unsetenv("PAYROLL_ALLOWED_ORIGINS")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.App.Port)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.App.AllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PAYROLL_PORT", "eighty"},
		{"PAYROLL_PORT", "70000"},
		{"PAYROLL_TZ", "Mars/Olympus"},
		{"PAYROLL_LOG_LEVEL", "loud"},
		{"PAYROLL_REPORT_INTERVAL", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
