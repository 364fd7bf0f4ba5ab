// Package timeclock derives employee status and payroll hours from the
// append-only event log. Everything here is a pure function of its input:
// no storage, no hidden state, no clock except the one passed in.
package timeclock
