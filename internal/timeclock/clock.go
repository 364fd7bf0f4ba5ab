package timeclock

import (
	"fmt"
	"strings"
	"time"
)

// DisplayLayout is the en-US locale rendering the keypad and exports show.
const DisplayLayout = "01/02/2006, 03:04:05 PM"

const DateLayout = "2006-01-02"

var parseLayouts = []string{
	DisplayLayout,
	"1/2/2006, 3:04:05 PM",
	"01/02/2006 03:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// Stored instants are nanosecond counts, which only cover these years.
const (
	MinYear = 1678
	MaxYear = 2261
)

var dateLayouts = []string{
	DateLayout,
	"01/02/2006",
	"1/2/2006",
}

// Clock pins every wall-clock computation to one business timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a clock in loc. A nil now uses time.Now.
func NewClock(loc *time.Location, now func() time.Time) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Clock{loc: loc, now: now}
}

// LoadClock resolves an IANA zone name such as "America/Los_Angeles".
func LoadClock(tz string) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return NewClock(loc, nil), nil
}

func (c *Clock) Location() *time.Location { return c.loc }

// Now returns the current instant in the business timezone.
func (c *Clock) Now() time.Time { return c.now().In(c.loc) }

// Format renders t for display in the business timezone.
func (c *Clock) Format(t time.Time) string { return t.In(c.loc).Format(DisplayLayout) }

// FormatDate renders the business-timezone calendar date of t.
func (c *Clock) FormatDate(t time.Time) string { return t.In(c.loc).Format(DateLayout) }

// Parse reads an RFC3339 instant or a wall-clock string in the business timezone.
func (c *Clock) Parse(s string) (time.Time, error) {
	t, err := c.parse(s)
	if err != nil {
		return t, err
	}
	return checkYear(t, s)
}

func (c *Clock) parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t, nil
		}
	}
	if t, err := c.parseDate(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("failed to parse time: %v", s)
}

// ParseDate reads a calendar date and returns local midnight of that day.
// Full timestamps are accepted too and truncated to their local day.
func (c *Clock) ParseDate(s string) (time.Time, error) {
	t, err := c.parseDate(s)
	if err != nil {
		return t, err
	}
	return checkYear(t, s)
}

func (c *Clock) parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t, nil
		}
	}
	if idx := strings.Index(s, ","); idx > 0 {
		return c.parseDate(s[:idx])
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		start, _ := c.DayBounds(t)
		return start, nil
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %v", s)
}

func checkYear(t time.Time, s string) (time.Time, error) {
	if y := t.UTC().Year(); y < MinYear || y > MaxYear {
		return time.Time{}, fmt.Errorf("year out of range %d-%d: %v", MinYear, MaxYear, s)
	}
	return t, nil
}

// DayBounds returns local midnight and the last nanosecond of t's local day.
func (c *Clock) DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(c.loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// WorkWeek returns Monday 00:00 through Friday 23:59:59.999 of t's week.
func (c *Clock) WorkWeek(t time.Time) (time.Time, time.Time) {
	t = t.In(c.loc)
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	monday, _ := c.DayBounds(t.AddDate(0, 0, -offset))
	_, friday := c.DayBounds(monday.AddDate(0, 0, 4))
	return monday, friday
}

// Range turns optional "YYYY-MM-DD" bounds into an inclusive instant window:
// start at local midnight, end at the last instant of its day. Empty bounds
// stay zero (open).
func (c *Clock) Range(startDate, endDate string) (time.Time, time.Time, error) {
	var start, end time.Time
	if startDate != "" {
		d, err := c.ParseDate(startDate)
		if err != nil {
			return start, end, err
		}
		start = d
	}
	if endDate != "" {
		d, err := c.ParseDate(endDate)
		if err != nil {
			return start, end, err
		}
		_, end = c.DayBounds(d)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}
	return start, end, nil
}
