package timeclock

import (
	"sort"
	"strings"
	"time"
)

// Event is the engine's view of one EventRecord.
type Event struct {
	PIN    string
	Action Action
	Time   time.Time
}

// Status is derived from the event log and never persisted.
type Status string

const (
	StatusNotClockedIn Status = "NotClockedIn"
	StatusWorking      Status = "Working"
	StatusOnBreak      Status = "OnBreak:Break"
	StatusOnLunch      Status = "OnBreak:Lunch"
	StatusOnRestroom   Status = "OnBreak:Restroom"
	StatusOnItIssue    Status = "OnBreak:ItIssue"
	StatusInMeeting    Status = "OnBreak:Meeting"
	StatusClockedOut   Status = "ClockedOut"
	StatusAbsent       Status = "Absent"
)

const onBreakPrefix = "OnBreak:"

// IsWorking reports whether the employee is on the clock and not in an activity.
func (s Status) IsWorking() bool { return s == StatusWorking }

// Activity returns the activity an OnBreak status refers to.
func (s Status) Activity() (Activity, bool) {
	if !strings.HasPrefix(string(s), onBreakPrefix) {
		return "", false
	}
	return Activity(strings.TrimPrefix(string(s), onBreakPrefix)), true
}

// OnShift reports whether the employee has clocked in and not yet clocked out.
func (s Status) OnShift() bool {
	_, inActivity := s.Activity()
	return s.IsWorking() || inActivity
}

// StatusFor maps the last action of a sequence to a status.
func StatusFor(a Action) Status {
	switch a {
	case ActionClockIn:
		return StatusWorking
	case ActionClockOut:
		return StatusClockedOut
	case ActionAbsent:
		return StatusAbsent
	}
	if act, ok := a.Activity(); ok {
		if a.IsEnd() {
			return StatusWorking
		}
		return Status(onBreakPrefix + string(act))
	}
	return StatusNotClockedIn
}

// SortEvents returns a copy of events ordered by time. Events with equal
// timestamps keep their input (append) order.
func SortEvents(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return sorted
}

// LastEvent returns the chronologically last event.
func LastEvent(events []Event) (Event, bool) {
	if len(events) == 0 {
		return Event{}, false
	}
	last := 0
	for i := 1; i < len(events); i++ {
		if !events[i].Time.Before(events[last].Time) {
			last = i
		}
	}
	return events[last], true
}

// CurrentStatus derives the status from the chronologically last event.
func CurrentStatus(events []Event) Status {
	last, ok := LastEvent(events)
	if !ok {
		return StatusNotClockedIn
	}
	return StatusFor(last.Action)
}

// GroupByPIN splits a full log into per-employee sequences.
func GroupByPIN(events []Event) map[string][]Event {
	groups := make(map[string][]Event)
	for _, e := range events {
		groups[e.PIN] = append(groups[e.PIN], e)
	}
	return groups
}

// StatusByPIN derives the current status of every PIN present in the log.
func StatusByPIN(events []Event) map[string]Status {
	groups := GroupByPIN(events)
	statuses := make(map[string]Status, len(groups))
	for pin, evs := range groups {
		statuses[pin] = CurrentStatus(evs)
	}
	return statuses
}

// Elapsed returns now - since truncated to whole minutes, never negative.
func Elapsed(since, now time.Time) time.Duration {
	d := now.Sub(since).Truncate(time.Minute)
	if d < 0 {
		return 0
	}
	return d
}
