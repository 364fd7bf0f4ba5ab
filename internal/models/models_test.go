package models

import (
	"path/filepath"
	"testing"
	"time"

	"timeclock/internal/config"
	"timeclock/internal/timeclock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.MySQLConfig{
		Host:     "db.internal",
		Port:     3306,
		Username: "clock",
		Password: "p@ss:word",
		Database: "timeclock",
		Charset:  "utf8mb4",
	})

	assert.Contains(t, dsn, "clock:p@ss:word@tcp(db.internal:3306)/timeclock?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestStringArray(t *testing.T) {
	tags := StringArray{" MX", "mx", "", "Admin", "PH "}.Normalize()
	assert.Equal(t, StringArray{"Admin", "MX", "PH"}, tags)
	assert.True(t, tags.Contains("admin"))
	assert.False(t, tags.Contains("US"))

	v, err := tags.Value()
	require.NoError(t, err)
	assert.Equal(t, `["Admin","MX","PH"]`, v)

	var back StringArray
	require.NoError(t, back.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringArray{"a", "b"}, back)
	require.NoError(t, back.Scan(nil))
	assert.Empty(t, back)
	assert.Error(t, back.Scan(42))
}

func TestOpenDBMigratesAndStoresUTC(t *testing.T) {
	cfg := config.Default()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "models.db")

	db, err := OpenDB(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	loc := time.FixedZone("PDT", -7*3600)
	rec := Record{Name: "Ana", PIN: "1111", Action: timeclock.ActionClockIn, Time: time.Date(2024, 3, 11, 8, 0, 0, 0, loc)}
	require.NoError(t, db.Create(&rec).Error)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, time.UTC, rec.Time.Location())

	var got Record
	require.NoError(t, db.First(&got, "id = ?", rec.ID).Error)
	assert.True(t, got.Time.Equal(rec.Time))
	assert.Equal(t, timeclock.ActionClockIn, got.Event().Action)
}
