package timeclock

import (
	"fmt"
	"time"
)

// TransitionError is returned when an action is not allowed from the current status.
type TransitionError struct {
	From   Status
	Action Action
	Reason string
}

func (e *TransitionError) Error() string { return e.Reason }

func reject(from Status, a Action, format string, args ...any) error {
	return &TransitionError{From: from, Action: a, Reason: fmt.Sprintf(format, args...)}
}

// ValidateTransition checks a requested action against the adjacency table:
//
//	ClockIn        <- NotClockedIn, ClockedOut, Absent
//	ClockOut       <- Working
//	Start<X>       <- Working
//	End<X>         <- OnBreak:<X>
//	Absent         <- NotClockedIn, ClockedOut, Absent
func ValidateTransition(current Status, a Action) error {
	if !a.Valid() {
		return reject(current, a, "Invalid action: %s", a)
	}
	activity, inActivity := current.Activity()

	switch {
	case a == ActionClockIn:
		if current.OnShift() {
			return reject(current, a, "You are already clocked in")
		}
		return nil

	case a == ActionClockOut:
		if inActivity {
			return reject(current, a, "You must end %s before you can clock out", activity.Label())
		}
		if !current.IsWorking() {
			return reject(current, a, "You must clock in before you can clock out")
		}
		return nil

	case a == ActionAbsent:
		if current.OnShift() {
			return reject(current, a, "You must clock out before being marked absent")
		}
		return nil

	case a.IsStart():
		want, _ := a.Activity()
		if inActivity {
			if activity == want {
				return reject(current, a, "You are already on %s", activity.Label())
			}
			return reject(current, a, "You must end %s first", activity.Label())
		}
		if !current.IsWorking() {
			return reject(current, a, "You must clock in first")
		}
		return nil

	case a.IsEnd():
		want, _ := a.Activity()
		if !inActivity || activity != want {
			return reject(current, a, "You must start %s before you can end it", want.Label())
		}
		return nil
	}
	return reject(current, a, "Invalid action: %s, Last status: %s", a, current)
}

// ClockInWindow restricts keypad clock-ins to a daily time-of-day range in the
// business timezone. A zero field disables that bound.
type ClockInWindow struct {
	Earliest  time.Duration // offset from local midnight
	Latest    time.Duration
	LateAfter time.Duration
}

// Enabled reports whether any bound is configured.
func (w ClockInWindow) Enabled() bool {
	return w.Earliest > 0 || w.Latest > 0 || w.LateAfter > 0
}

// Check validates a clock-in at now (already in the business timezone) and
// reports whether it counts as late.
func (w ClockInWindow) Check(now time.Time) (late bool, err error) {
	offset := SinceMidnight(now)
	if w.Earliest > 0 && offset < w.Earliest {
		return false, reject(StatusNotClockedIn, ActionClockIn, "Clock-in not allowed before %s", FormatClock(w.Earliest))
	}
	if w.Latest > 0 && offset >= w.Latest {
		return false, reject(StatusNotClockedIn, ActionClockIn, "Clock-in not allowed after %s", FormatClock(w.Latest))
	}
	return w.LateAfter > 0 && offset > w.LateAfter, nil
}

// SinceMidnight returns the wall-clock offset of t from midnight of its own day.
func SinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// FormatClock renders an offset from midnight as "3:04 PM".
func FormatClock(d time.Duration) string {
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("3:04 PM")
}
