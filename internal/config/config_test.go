package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadAppliesDefaultsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
server:
  port: 8080
database:
  type: sqlite
  sqlite:
    path: `+filepath.Join(dir, "sub", "tc.db")+`
clock:
  timezone: America/New_York
  clock_in_window:
    earliest: "06:50"
    late_after: "07:10"
auto_clock_out:
  time: "19:30"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "America/New_York", cfg.Clock.Timezone)
	assert.Equal(t, "19:30", cfg.AutoClockOut.Time)
	assert.Equal(t, "Automatic clock-out", cfg.AutoClockOut.Note)
	assert.True(t, cfg.Clock.EnforceTransitions)
	assert.NotEmpty(t, cfg.Session.Secret)
	assert.DirExists(t, filepath.Join(dir, "sub"))

	w, err := cfg.ClockInWindow()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour+50*time.Minute, w.Earliest)
	assert.Equal(t, time.Duration(0), w.Latest)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TIMECLOCK_DB_TYPE", "bolt")
	t.Setenv("TIMECLOCK_BOLT_PATH", filepath.Join(dir, "tc.bolt"))
	t.Setenv("TIMECLOCK_SESSION_SECRET", "from-env")
	t.Setenv("PORT", "9999")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "bolt", cfg.Database.Type)
	assert.Equal(t, "from-env", cfg.Session.Secret)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown db", func(c *Config) { c.Database.Type = "mongo" }},
		{"mysql without user", func(c *Config) { c.Database.Type = "mysql"; c.Database.MySQL.Database = "tc" }},
		{"bad timezone", func(c *Config) { c.Clock.Timezone = "Mars/Olympus" }},
		{"bad auto time", func(c *Config) { c.AutoClockOut.Time = "6pm" }},
		{"bad ttl", func(c *Config) { c.Session.TTL = "forever" }},
		{"bad window", func(c *Config) { c.Clock.ClockInWindow.Latest = "25:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
