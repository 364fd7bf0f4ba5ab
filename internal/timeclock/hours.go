package timeclock

import (
	"fmt"
	"math"
	"time"
)

// PayrollSummary is the result of walking one employee's events over a window.
type PayrollSummary struct {
	Work       time.Duration
	Activities map[Activity]time.Duration
	Shifts     int

	// OpenShift is set when the window ends with an unmatched ClockIn.
	OpenShift bool
	// OpenActivities lists activities left without their End* at window end.
	OpenActivities []Activity
	// Discarded counts cursors dropped silently: a ClockIn overwritten by another
	// ClockIn, a Start overwritten by the same Start, or an End/ClockOut with no open cursor.
	Discarded int
}

// Activity returns the accumulated time for one activity.
func (p PayrollSummary) Activity(act Activity) time.Duration {
	return p.Activities[act]
}

// Paid is work time minus break and lunch. Restroom, IT issue and meeting
// time stay paid.
func (p PayrollSummary) Paid() time.Duration {
	return p.Work - p.Activity(ActivityBreak) - p.Activity(ActivityLunch)
}

func (p PayrollSummary) WorkMinutes() float64  { return p.Work.Minutes() }
func (p PayrollSummary) PaidMinutes() float64  { return p.Paid().Minutes() }
func (p PayrollSummary) BreakMinutes() float64 { return p.Activity(ActivityBreak).Minutes() }
func (p PayrollSummary) LunchMinutes() float64 { return p.Activity(ActivityLunch).Minutes() }

// Degraded reports whether any part of the sequence was ignored.
func (p PayrollSummary) Degraded() bool {
	return p.OpenShift || len(p.OpenActivities) > 0 || p.Discarded > 0
}

// Warnings describes the ignored parts in words. Totals are not affected.
func (p PayrollSummary) Warnings() []string {
	var out []string
	if p.OpenShift {
		out = append(out, "shift still open at end of range; not counted")
	}
	for _, act := range p.OpenActivities {
		out = append(out, fmt.Sprintf("%s still open at end of range; not counted", act.Label()))
	}
	if p.Discarded > 0 {
		out = append(out, fmt.Sprintf("%d unmatched event(s) ignored", p.Discarded))
	}
	return out
}

// InWindow reports whether t lies in [start, end]. A zero bound is open.
func InWindow(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}

// FilterWindow keeps the events inside [start, end].
func FilterWindow(events []Event, start, end time.Time) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if InWindow(e.Time, start, end) {
			out = append(out, e)
		}
	}
	return out
}

// AggregateHours walks one employee's events inside [start, end] with an open
// ClockIn cursor and one open cursor per activity. Unterminated cursors
// contribute nothing; they are only reported through the summary flags.
func AggregateHours(events []Event, start, end time.Time) PayrollSummary {
	sorted := SortEvents(FilterWindow(events, start, end))

	summary := PayrollSummary{Activities: make(map[Activity]time.Duration, len(Activities))}
	var clockIn *time.Time
	open := make(map[Activity]time.Time)

	for _, e := range sorted {
		switch {
		case e.Action == ActionClockIn:
			summary.Shifts++
			if clockIn != nil {
				summary.Discarded++
			}
			t := e.Time
			clockIn = &t
		case e.Action == ActionClockOut:
			if clockIn == nil {
				summary.Discarded++
				continue
			}
			summary.Work += e.Time.Sub(*clockIn)
			clockIn = nil
		case e.Action.IsStart():
			act, _ := e.Action.Activity()
			if _, ok := open[act]; ok {
				summary.Discarded++
			}
			open[act] = e.Time
		case e.Action.IsEnd():
			act, _ := e.Action.Activity()
			began, ok := open[act]
			if !ok {
				summary.Discarded++
				continue
			}
			summary.Activities[act] += e.Time.Sub(began)
			delete(open, act)
		}
	}

	summary.OpenShift = clockIn != nil
	for _, act := range Activities {
		if _, ok := open[act]; ok {
			summary.OpenActivities = append(summary.OpenActivities, act)
		}
	}
	return summary
}

// Hours renders a duration as decimal hours with two places.
func Hours(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Hours())
}

// FormatDuration renders a duration as "8h 30m". Minutes are rounded and
// negative durations keep their sign on the hour part.
func FormatDuration(d time.Duration) string {
	mins := int64(math.Round(d.Minutes()))
	sign := ""
	if mins < 0 {
		sign = "-"
		mins = -mins
	}
	return fmt.Sprintf("%s%dh %dm", sign, mins/60, mins%60)
}
