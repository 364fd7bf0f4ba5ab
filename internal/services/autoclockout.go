package services

import (
	"context"
	"sync"
	"time"

	"timeclock/internal/config"
	"timeclock/internal/logger"
	"timeclock/internal/timeclock"
)

// AutoClockOutIP attributes records written by the daily job.
const AutoClockOutIP = "auto-clock-out"

// AutoClockOut clocks out everyone still Working once a day at a fixed
// wall-clock minute. A missed minute is not caught up.
type AutoClockOut struct {
	records *RecordService
	clock   *timeclock.Clock
	at      time.Duration
	note    string

	mu      sync.Mutex
	lastRun string
}

func NewAutoClockOut(cfg config.AutoClockOutConfig, records *RecordService, clock *timeclock.Clock) (*AutoClockOut, error) {
	at, err := timeclock.ParseClock(cfg.Time)
	if err != nil {
		return nil, err
	}
	note := cfg.Note
	if note == "" {
		note = "Automatic clock-out"
	}
	return &AutoClockOut{records: records, clock: clock, at: at, note: note}, nil
}

func (a *AutoClockOut) Name() string { return "auto-clock-out" }

// Due reports whether now falls on the trigger hour and minute.
func (a *AutoClockOut) Due(now time.Time) bool {
	now = now.In(a.clock.Location())
	return now.Hour() == int(a.at/time.Hour) && now.Minute() == int((a.at%time.Hour)/time.Minute)
}

// Run performs at most one pass per matching minute. Passes are serialised.
func (a *AutoClockOut) Run(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	if !a.Due(now) {
		return nil
	}
	minute := now.Format("2006-01-02 15:04")
	if a.lastRun == minute {
		return nil
	}
	a.lastRun = minute

	result, err := a.records.ClockOutWorking(ctx, a.note, AutoClockOutIP)
	if err != nil {
		return err
	}
	logger.Info("auto_clock_out.done", "clocked_out", len(result.ClockedOut), "failed", len(result.Failed))
	return nil
}
