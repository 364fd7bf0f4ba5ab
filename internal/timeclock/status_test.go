package timeclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

func at(hhmm string) time.Time {
	d, err := ParseClock(hhmm)
	if err != nil {
		panic(err)
	}
	return day.Add(d)
}

func ev(a Action, hhmm string) Event {
	return Event{PIN: "1234", Action: a, Time: at(hhmm)}
}

func TestCurrentStatusNoEvents(t *testing.T) {
	assert.Equal(t, StatusNotClockedIn, CurrentStatus(nil))
	assert.Equal(t, StatusNotClockedIn, CurrentStatus([]Event{}))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		action Action
		want   Status
	}{
		{ActionClockIn, StatusWorking},
		{ActionEndBreak, StatusWorking},
		{ActionEndRestroom, StatusWorking},
		{ActionEndLunch, StatusWorking},
		{ActionEndItIssue, StatusWorking},
		{ActionEndMeeting, StatusWorking},
		{ActionStartBreak, StatusOnBreak},
		{ActionStartLunch, StatusOnLunch},
		{ActionStartRestroom, StatusOnRestroom},
		{ActionStartItIssue, StatusOnItIssue},
		{ActionStartMeeting, StatusInMeeting},
		{ActionClockOut, StatusClockedOut},
		{ActionAbsent, StatusAbsent},
		{Action("Bogus"), StatusNotClockedIn},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.action))
		})
	}
}

func TestCurrentStatusUsesChronologicallyLastEvent(t *testing.T) {
	events := []Event{
		ev(ActionStartLunch, "12:00"),
		ev(ActionClockOut, "17:00"),
		ev(ActionClockIn, "08:00"),
		ev(ActionEndLunch, "12:30"),
	}
	assert.Equal(t, StatusClockedOut, CurrentStatus(events))

	// reordering everything but the trailing event does not matter
	reordered := []Event{events[3], events[2], events[1], events[0]}
	assert.Equal(t, StatusClockedOut, CurrentStatus(reordered))
}

func TestCurrentStatusIsIdempotent(t *testing.T) {
	events := []Event{ev(ActionClockIn, "08:00"), ev(ActionStartBreak, "10:00")}
	first := CurrentStatus(events)
	second := CurrentStatus(events)
	assert.Equal(t, StatusOnBreak, first)
	assert.Equal(t, first, second)
}

func TestCurrentStatusTieKeepsAppendOrder(t *testing.T) {
	events := []Event{ev(ActionClockIn, "08:00"), ev(ActionClockOut, "08:00")}
	assert.Equal(t, StatusClockedOut, CurrentStatus(events))
}

func TestStatusByPIN(t *testing.T) {
	events := []Event{
		{PIN: "1111", Action: ActionClockIn, Time: at("08:00")},
		{PIN: "2222", Action: ActionClockIn, Time: at("08:00")},
		{PIN: "2222", Action: ActionStartBreak, Time: at("10:00")},
		{PIN: "3333", Action: ActionAbsent, Time: at("00:00")},
	}
	statuses := StatusByPIN(events)
	require.Len(t, statuses, 3)
	assert.Equal(t, StatusWorking, statuses["1111"])
	assert.Equal(t, StatusOnBreak, statuses["2222"])
	assert.Equal(t, StatusAbsent, statuses["3333"])
}

func TestStatusHelpers(t *testing.T) {
	act, ok := StatusOnLunch.Activity()
	assert.True(t, ok)
	assert.Equal(t, ActivityLunch, act)
	assert.True(t, StatusOnLunch.OnShift())
	assert.True(t, StatusWorking.OnShift())
	assert.False(t, StatusClockedOut.OnShift())
	assert.False(t, StatusAbsent.IsWorking())
}

func TestElapsed(t *testing.T) {
	assert.Equal(t, 2*time.Hour+5*time.Minute, Elapsed(at("08:00"), at("10:05").Add(30*time.Second)))
	assert.Equal(t, time.Duration(0), Elapsed(at("10:00"), at("09:00")))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("startLunch")
	require.NoError(t, err)
	assert.Equal(t, ActionStartLunch, a)

	a, err = ParseAction("ClockOut")
	require.NoError(t, err)
	assert.Equal(t, ActionClockOut, a)

	_, err = ParseAction("nap")
	assert.Error(t, err)

	assert.True(t, ActionEndItIssue.IsEnd())
	act, ok := ActionEndItIssue.Activity()
	assert.True(t, ok)
	assert.Equal(t, ActivityItIssue, act)
	assert.False(t, Action("startLunch").Valid())
}
