package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"timeclock/internal/timeclock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedPayrollDay(t *testing.T, env *testEnv) {
	t.Helper()
	env.addEmployee(t, "Zed", "2222")
	env.addEmployee(t, "Ana", "1111")

	env.act(t, "1111", timeclock.ActionClockIn, "08:00")
	env.act(t, "1111", timeclock.ActionStartLunch, "12:00")
	env.act(t, "1111", timeclock.ActionEndLunch, "12:30")
	env.act(t, "1111", timeclock.ActionStartRestroom, "14:00")
	env.act(t, "1111", timeclock.ActionEndRestroom, "14:10")
	env.act(t, "1111", timeclock.ActionClockOut, "17:00")

	// open shift: counted as a shift, contributes no hours
	env.act(t, "2222", timeclock.ActionClockIn, "09:00")
}

func TestHoursReport(t *testing.T) {
	env := newTestEnv(t)
	seedPayrollDay(t, env)

	report, err := env.reports.Hours(context.Background(), "2024-03-11", "2024-03-11")
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	ana := report.Rows[0]
	assert.Equal(t, "Ana", ana.Name)
	assert.Equal(t, "8.50", ana.PaidHours)
	assert.Equal(t, "8h 30m", ana.PaidDisplay)
	assert.Equal(t, "9.00", ana.WorkHours)
	assert.Equal(t, "0.50", ana.LunchHours)
	assert.Equal(t, "0.17", ana.RestroomHours)
	assert.Equal(t, 1, ana.Shifts)
	assert.Empty(t, ana.Warnings)

	zed := report.Rows[1]
	assert.Equal(t, "Zed", zed.Name)
	assert.Equal(t, "0.00", zed.WorkHours)
	assert.Equal(t, 1, zed.Shifts)
	assert.NotEmpty(t, zed.Warnings)
}

func TestHoursReportOutsideRangeIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	seedPayrollDay(t, env)

	report, err := env.reports.Hours(context.Background(), "2024-03-12", "2024-03-15")
	require.NoError(t, err)
	assert.Empty(t, report.Rows)

	_, err = env.reports.Hours(context.Background(), "2024-03-15", "2024-03-12")
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestHoursReportCSVAndXLSX(t *testing.T) {
	env := newTestEnv(t)
	seedPayrollDay(t, env)

	report, err := env.reports.Hours(context.Background(), "", "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, hoursHeader, rows[0])
	assert.Equal(t, []string{"Ana", "8.50", "8h 30m", "9.00", "0.00", "0.50", "0.17", "0.00", "0.00", "1"}, rows[1])

	buf.Reset()
	require.NoError(t, report.WriteXLSX(&buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheetRows, err := f.GetRows("Hours")
	require.NoError(t, err)
	require.Len(t, sheetRows, 3)
	assert.Equal(t, "Employee", sheetRows[0][0])
	assert.Equal(t, "Ana", sheetRows[1][0])
	assert.Equal(t, "8.5", sheetRows[1][1])
}

func TestWriteRecordsCSV(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(t, "Ana", "1111")
	env.act(t, "1111", timeclock.ActionClockIn, "08:00")

	env.now.Set(monday("17:00"))
	_, err := env.records.ManualClockOut(context.Background(), "1111", "", "10.0.0.9", "forgot")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.reports.WriteRecordsCSV(context.Background(), &buf, "2024-03-11", "2024-03-11"))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "pin", "action", "time", "ip", "admin_action", "note"}, rows[0])
	assert.Equal(t, []string{"Ana", "1111", "ClockIn", "03/11/2024, 08:00:00 AM", "10.0.0.1", "false", ""}, rows[1])
	assert.Equal(t, []string{"Ana", "1111", "ClockOut", "03/11/2024, 05:00:00 PM", "10.0.0.9", "true", "forgot"}, rows[2])
}
