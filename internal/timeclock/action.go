package timeclock

import (
	"fmt"
	"strings"
)

// Action is one entry of the fixed event vocabulary.
type Action string

const (
	ActionClockIn       Action = "ClockIn"
	ActionClockOut      Action = "ClockOut"
	ActionStartBreak    Action = "StartBreak"
	ActionEndBreak      Action = "EndBreak"
	ActionStartRestroom Action = "StartRestroom"
	ActionEndRestroom   Action = "EndRestroom"
	ActionStartLunch    Action = "StartLunch"
	ActionEndLunch      Action = "EndLunch"
	ActionStartItIssue  Action = "StartItIssue"
	ActionEndItIssue    Action = "EndItIssue"
	ActionStartMeeting  Action = "StartMeeting"
	ActionEndMeeting    Action = "EndMeeting"
	ActionAbsent        Action = "Absent"
)

// Activity is a sub-state entered by a Start* action and left by the matching End*.
type Activity string

const (
	ActivityBreak    Activity = "Break"
	ActivityLunch    Activity = "Lunch"
	ActivityRestroom Activity = "Restroom"
	ActivityItIssue  Activity = "ItIssue"
	ActivityMeeting  Activity = "Meeting"
)

// Activities lists every activity in display order.
var Activities = []Activity{ActivityBreak, ActivityLunch, ActivityRestroom, ActivityItIssue, ActivityMeeting}

var actions = []Action{
	ActionClockIn, ActionClockOut,
	ActionStartBreak, ActionEndBreak,
	ActionStartRestroom, ActionEndRestroom,
	ActionStartLunch, ActionEndLunch,
	ActionStartItIssue, ActionEndItIssue,
	ActionStartMeeting, ActionEndMeeting,
	ActionAbsent,
}

// Actions returns the full vocabulary.
func Actions() []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// ParseAction accepts the canonical form ("StartLunch") as well as the
// lower camel form the keypad sends ("startLunch"), case-insensitively.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	for _, a := range actions {
		if strings.EqualFold(string(a), s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Valid reports whether a is exactly one of the canonical actions.
func (a Action) Valid() bool {
	for _, known := range actions {
		if a == known {
			return true
		}
	}
	return false
}

// IsStart reports whether the action opens an activity.
func (a Action) IsStart() bool {
	return strings.HasPrefix(string(a), "Start") && a.Valid()
}

// IsEnd reports whether the action closes an activity.
func (a Action) IsEnd() bool {
	return strings.HasPrefix(string(a), "End") && a.Valid()
}

// Activity returns the activity a Start*/End* action refers to.
func (a Action) Activity() (Activity, bool) {
	switch {
	case a.IsStart():
		return Activity(strings.TrimPrefix(string(a), "Start")), true
	case a.IsEnd():
		return Activity(strings.TrimPrefix(string(a), "End")), true
	}
	return "", false
}

// StartAction returns the action that opens the activity.
func (act Activity) StartAction() Action { return Action("Start" + string(act)) }

// EndAction returns the action that closes the activity.
func (act Activity) EndAction() Action { return Action("End" + string(act)) }

// Label is the lower-case human wording used in messages.
func (act Activity) Label() string {
	if act == ActivityItIssue {
		return "IT issue"
	}
	return strings.ToLower(string(act))
}
