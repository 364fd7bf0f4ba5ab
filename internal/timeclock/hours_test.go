package timeclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregateHoursLunchScenario(t *testing.T) {
	events := []Event{
		ev(ActionClockIn, "08:00"),
		ev(ActionStartLunch, "12:00"),
		ev(ActionEndLunch, "12:30"),
		ev(ActionClockOut, "17:00"),
	}

	s := AggregateHours(events, time.Time{}, time.Time{})

	assert.Equal(t, 540.0, s.WorkMinutes())
	assert.Equal(t, 30.0, s.LunchMinutes())
	assert.Equal(t, 510.0, s.PaidMinutes())
	assert.Equal(t, "8h 30m", FormatDuration(s.Paid()))
	assert.Equal(t, "8.50", Hours(s.Paid()))
	assert.Equal(t, 1, s.Shifts)
	assert.False(t, s.Degraded())
	assert.Empty(t, s.Warnings())
}

func TestAggregateHoursPaidRoundTrip(t *testing.T) {
	events := []Event{
		ev(ActionClockIn, "08:00"),
		ev(ActionStartBreak, "09:45"),
		ev(ActionEndBreak, "10:00"),
		ev(ActionStartRestroom, "10:30"),
		ev(ActionEndRestroom, "10:40"),
		ev(ActionStartLunch, "12:00"),
		ev(ActionEndLunch, "12:45"),
		ev(ActionStartMeeting, "14:00"),
		ev(ActionEndMeeting, "15:00"),
		ev(ActionStartItIssue, "15:10"),
		ev(ActionEndItIssue, "15:25"),
		ev(ActionClockOut, "16:30"),
	}

	s := AggregateHours(events, time.Time{}, time.Time{})

	assert.Equal(t, s.WorkMinutes(), s.PaidMinutes()+s.BreakMinutes()+s.LunchMinutes())
	assert.Equal(t, 15*time.Minute, s.Activity(ActivityBreak))
	assert.Equal(t, 10*time.Minute, s.Activity(ActivityRestroom))
	assert.Equal(t, time.Hour, s.Activity(ActivityMeeting))
	assert.Equal(t, 15*time.Minute, s.Activity(ActivityItIssue))
	// restroom, meeting and IT time stay paid
	assert.Equal(t, 8*time.Hour+30*time.Minute-15*time.Minute-45*time.Minute, s.Paid())
}

func TestAggregateHoursUnterminatedClockIn(t *testing.T) {
	events := []Event{
		ev(ActionClockIn, "08:00"),
		ev(ActionClockOut, "12:00"),
		ev(ActionClockIn, "13:00"),
	}

	s := AggregateHours(events, time.Time{}, time.Time{})

	assert.Equal(t, 4*time.Hour, s.Work)
	assert.Equal(t, 2, s.Shifts)
	assert.True(t, s.OpenShift)
	assert.Len(t, s.Warnings(), 1)

	only := AggregateHours([]Event{ev(ActionClockIn, "08:00")}, time.Time{}, time.Time{})
	assert.Equal(t, time.Duration(0), only.Work)
}

func TestAggregateHoursSecondClockInDiscardsFirst(t *testing.T) {
	events := []Event{
		ev(ActionClockIn, "08:00"),
		ev(ActionClockIn, "09:00"),
		ev(ActionClockOut, "10:00"),
	}

	s := AggregateHours(events, time.Time{}, time.Time{})

	assert.Equal(t, time.Hour, s.Work)
	assert.Equal(t, 2, s.Shifts)
	assert.Equal(t, 1, s.Discarded)
}

func TestAggregateHoursUnmatchedActivities(t *testing.T) {
	events := []Event{
		ev(ActionClockIn, "08:00"),
		ev(ActionEndBreak, "09:00"),
		ev(ActionStartLunch, "12:00"),
		ev(ActionClockOut, "16:00"),
	}

	s := AggregateHours(events, time.Time{}, time.Time{})

	assert.Equal(t, 8*time.Hour, s.Work)
	assert.Equal(t, time.Duration(0), s.Activity(ActivityLunch))
	assert.Equal(t, 8*time.Hour, s.Paid())
	assert.Equal(t, []Activity{ActivityLunch}, s.OpenActivities)
	assert.Equal(t, 1, s.Discarded)
}

func TestAggregateHoursWindowFilter(t *testing.T) {
	events := []Event{
		{Action: ActionClockIn, Time: day.Add(-24*time.Hour + 8*time.Hour)},
		{Action: ActionClockOut, Time: day.Add(-24*time.Hour + 16*time.Hour)},
		ev(ActionClockIn, "08:00"),
		ev(ActionClockOut, "12:00"),
	}

	s := AggregateHours(events, day, day.Add(24*time.Hour-time.Nanosecond))
	assert.Equal(t, 4*time.Hour, s.Work)
	assert.Equal(t, 1, s.Shifts)

	// a window cutting a shift in half leaves the ClockIn open
	cut := AggregateHours(events, time.Time{}, at("10:00"))
	assert.Equal(t, 8*time.Hour, cut.Work)
	assert.True(t, cut.OpenShift)
}

func TestAggregateHoursIsIdempotent(t *testing.T) {
	events := []Event{
		ev(ActionClockOut, "17:00"),
		ev(ActionStartBreak, "10:00"),
		ev(ActionClockIn, "08:00"),
		ev(ActionEndBreak, "10:15"),
	}
	first := AggregateHours(events, time.Time{}, time.Time{})
	second := AggregateHours(events, time.Time{}, time.Time{})
	assert.Equal(t, first, second)
	// input order untouched
	assert.Equal(t, ActionClockOut, events[0].Action)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h 0m", FormatDuration(0))
	assert.Equal(t, "1h 5m", FormatDuration(65*time.Minute))
	assert.Equal(t, "-0h 30m", FormatDuration(-30*time.Minute))
	assert.Equal(t, "0h 1m", FormatDuration(59*time.Second))
}
