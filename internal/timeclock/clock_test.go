package timeclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pacific(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return loc
}

func TestClockParseAndFormat(t *testing.T) {
	loc := pacific(t)
	c := NewClock(loc, nil)

	ts, err := c.Parse("03/11/2024, 08:00:00 AM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 11, 15, 0, 0, 0, time.UTC), ts.UTC())
	assert.Equal(t, "03/11/2024, 08:00:00 AM", c.Format(ts))

	short, err := c.Parse("3/11/2024, 8:00:00 AM")
	require.NoError(t, err)
	assert.True(t, short.Equal(ts))

	iso, err := c.Parse("2024-03-11T15:00:00Z")
	require.NoError(t, err)
	assert.True(t, iso.Equal(ts))

	_, err = c.Parse("yesterday-ish")
	assert.Error(t, err)
}

func TestClockParseDate(t *testing.T) {
	c := NewClock(pacific(t), nil)

	d, err := c.ParseDate("2024-03-11")
	require.NoError(t, err)
	assert.Equal(t, "03/11/2024, 12:00:00 AM", c.Format(d))

	fromDisplay, err := c.ParseDate("03/11/2024, 12:00:00 AM")
	require.NoError(t, err)
	assert.True(t, fromDisplay.Equal(d))
}

func TestClockRejectsUnrepresentableYears(t *testing.T) {
	c := NewClock(pacific(t), nil)

	old, err := c.ParseDate("1900-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1900, old.Year())

	for _, s := range []string{"1600-01-01", "2300-01-01", "0001-01-01T00:00:00Z", "01/01/9999, 12:00:00 AM"} {
		_, err := c.Parse(s)
		assert.Error(t, err, s)
	}
	_, _, err = c.Range("1500-01-01", "")
	assert.Error(t, err)
}

func TestClockRangeAcrossDST(t *testing.T) {
	c := NewClock(pacific(t), nil)

	// 2024-03-10 is the spring-forward day: 23 hours long
	start, end, err := c.Range("2024-03-10", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, 23*time.Hour-time.Nanosecond, end.Sub(start))

	_, _, err = c.Range("2024-03-12", "2024-03-10")
	assert.Error(t, err)

	open, openEnd, err := c.Range("", "")
	require.NoError(t, err)
	assert.True(t, open.IsZero())
	assert.True(t, openEnd.IsZero())
}

func TestClockWorkWeek(t *testing.T) {
	c := NewClock(pacific(t), nil)
	sunday := time.Date(2024, 3, 17, 10, 0, 0, 0, c.Location())

	monday, friday := c.WorkWeek(sunday)
	assert.Equal(t, "2024-03-11", c.FormatDate(monday))
	assert.Equal(t, "2024-03-15", c.FormatDate(friday))

	wednesday := time.Date(2024, 3, 13, 10, 0, 0, 0, c.Location())
	monday2, _ := c.WorkWeek(wednesday)
	assert.True(t, monday.Equal(monday2))
}

func TestClockNowUsesLocation(t *testing.T) {
	fixed := time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC)
	c := NewClock(pacific(t), func() time.Time { return fixed })
	assert.Equal(t, 10, c.Now().Day())
	assert.Equal(t, 19, c.Now().Hour())
}
