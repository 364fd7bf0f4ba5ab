package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"timeclock/internal/config"
	"timeclock/internal/logger"
	"timeclock/internal/models"
	"timeclock/internal/store"
	"timeclock/internal/timeclock"
)

var (
	ErrInvalidAction    = errors.New("invalid action")
	ErrAbsentAdminOnly  = errors.New("absences can only be recorded by an administrator")
	ErrInvalidTime      = errors.New("invalid time")
	ErrDuplicateAbsence = errors.New("employee is already marked absent on this date")
	ErrNotOnShift       = errors.New("employee is not clocked in")
)

// ExistingRecordsError means the employee already has activity on the date
// being marked absent. Retrying with force overrides it.
type ExistingRecordsError struct {
	Name  string
	Date  string
	Count int
}

func (e *ExistingRecordsError) Error() string {
	return fmt.Sprintf("%s already has %d record(s) on %s", e.Name, e.Count, e.Date)
}

// RecordInput is a keypad action. Time may be empty for "now".
type RecordInput struct {
	PIN    string
	Action string
	Time   string
	IP     string
}

type RecordResult struct {
	Record models.Record
	Late   bool
}

// ClockOutResult summarises a batch clock-out.
type ClockOutResult struct {
	ClockedOut []models.Record
	Failed     []string
}

// RecordService is the only writer of the event log.
type RecordService struct {
	store         store.Store
	clock         *timeclock.Clock
	notifier      Notifier
	enforce       bool
	window        timeclock.ClockInWindow
	notifyTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRecordService(cfg *config.Config, st store.Store, clock *timeclock.Clock, notifier Notifier) (*RecordService, error) {
	window, err := cfg.ClockInWindow()
	if err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RecordService{
		store:         st,
		clock:         clock,
		notifier:      notifier,
		enforce:       cfg.Clock.EnforceTransitions,
		window:        window,
		notifyTimeout: config.Duration(cfg.Discord.Timeout, 10*time.Second),
		locks:         make(map[string]*sync.Mutex),
	}, nil
}

// lockPIN serialises read-validate-append sequences for one employee.
func (s *RecordService) lockPIN(pin string) func() {
	s.mu.Lock()
	l, ok := s.locks[pin]
	if !ok {
		l = &sync.Mutex{}
		s.locks[pin] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *RecordService) resolveTime(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return s.clock.Now(), nil
	}
	t, err := s.clock.Parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	return t, nil
}

func (s *RecordService) findEmployee(ctx context.Context, pin string) (*models.Employee, error) {
	employee, err := s.store.FindEmployee(ctx, strings.TrimSpace(pin))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

// Status derives the employee's current status from their log.
func (s *RecordService) Status(ctx context.Context, pin string) (timeclock.Status, *models.Record, error) {
	records, err := s.store.ListRecords(ctx, store.RecordFilter{PIN: pin})
	if err != nil {
		return "", nil, err
	}
	if len(records) == 0 {
		return timeclock.StatusNotClockedIn, nil, nil
	}
	last := lastRecord(records)
	return timeclock.StatusFor(last.Action), last, nil
}

// lastRecord returns the chronologically last record; ties go to the later one.
func lastRecord(records []models.Record) *models.Record {
	last := 0
	for i := 1; i < len(records); i++ {
		if !records[i].Time.Before(records[last].Time) {
			last = i
		}
	}
	return &records[last]
}

// AddRecord appends a keypad action for the employee.
func (s *RecordService) AddRecord(ctx context.Context, in RecordInput) (*RecordResult, error) {
	employee, err := s.findEmployee(ctx, in.PIN)
	if err != nil {
		return nil, err
	}

	action, err := timeclock.ParseAction(in.Action)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAction, in.Action)
	}
	if action == timeclock.ActionAbsent {
		return nil, ErrAbsentAdminOnly
	}

	at, err := s.resolveTime(in.Time)
	if err != nil {
		return nil, err
	}

	unlock := s.lockPIN(employee.PIN)
	defer unlock()

	if s.enforce {
		current, _, err := s.Status(ctx, employee.PIN)
		if err != nil {
			return nil, err
		}
		if err := timeclock.ValidateTransition(current, action); err != nil {
			return nil, err
		}
	}

	late := false
	if action == timeclock.ActionClockIn && s.window.Enabled() {
		late, err = s.window.Check(at.In(s.clock.Location()))
		if err != nil {
			return nil, err
		}
	}

	rec := models.Record{
		Name:   employee.Name,
		PIN:    employee.PIN,
		Action: action,
		Time:   at,
		IP:     in.IP,
	}
	if err := s.append(ctx, &rec); err != nil {
		return nil, err
	}

	logger.Info("record.added", "pin", rec.PIN, "action", rec.Action, "late", late)
	return &RecordResult{Record: rec, Late: late}, nil
}

// ManualClockOut appends an admin ClockOut with a note.
func (s *RecordService) ManualClockOut(ctx context.Context, pin, rawTime, ip, note string) (*models.Record, error) {
	employee, err := s.findEmployee(ctx, pin)
	if err != nil {
		return nil, err
	}
	at, err := s.resolveTime(rawTime)
	if err != nil {
		return nil, err
	}

	unlock := s.lockPIN(employee.PIN)
	defer unlock()

	if s.enforce {
		current, _, err := s.Status(ctx, employee.PIN)
		if err != nil {
			return nil, err
		}
		if !current.OnShift() {
			return nil, ErrNotOnShift
		}
	}

	rec := models.Record{
		Name:        employee.Name,
		PIN:         employee.PIN,
		Action:      timeclock.ActionClockOut,
		Time:        at,
		IP:          ip,
		AdminAction: true,
		Note:        strings.TrimSpace(note),
	}
	if err := s.append(ctx, &rec); err != nil {
		return nil, err
	}

	logger.Info("record.manual_clock_out", "pin", rec.PIN)
	return &rec, nil
}

// ClockOutWorking appends an admin ClockOut for every PIN whose status is
// Working. A failure for one employee is logged and the rest continue.
func (s *RecordService) ClockOutWorking(ctx context.Context, note, ip string) (*ClockOutResult, error) {
	records, err := s.store.ListRecords(ctx, store.RecordFilter{})
	if err != nil {
		return nil, err
	}

	statuses := timeclock.StatusByPIN(models.Events(records))
	pins := make([]string, 0, len(statuses))
	for pin, st := range statuses {
		if st.IsWorking() {
			pins = append(pins, pin)
		}
	}
	sort.Strings(pins)

	result := &ClockOutResult{ClockedOut: []models.Record{}}
	for _, pin := range pins {
		rec, err := s.clockOutIfWorking(ctx, pin, note, ip)
		if err != nil {
			logger.Warn("clock_out.failed", "pin", pin, "err", err)
			result.Failed = append(result.Failed, pin)
			continue
		}
		if rec != nil {
			result.ClockedOut = append(result.ClockedOut, *rec)
		}
	}
	return result, nil
}

func (s *RecordService) clockOutIfWorking(ctx context.Context, pin, note, ip string) (*models.Record, error) {
	unlock := s.lockPIN(pin)
	defer unlock()

	// re-derived under the lock; the employee may have moved on
	current, last, err := s.Status(ctx, pin)
	if err != nil {
		return nil, err
	}
	if !current.IsWorking() {
		return nil, nil
	}

	name := last.Name
	if employee, err := s.store.FindEmployee(ctx, pin); err == nil {
		name = employee.Name
	}

	rec := models.Record{
		Name:        name,
		PIN:         pin,
		Action:      timeclock.ActionClockOut,
		Time:        s.clock.Now(),
		IP:          ip,
		AdminAction: true,
		Note:        note,
	}
	if err := s.append(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkAbsent records an absence at local midnight of the given date.
func (s *RecordService) MarkAbsent(ctx context.Context, pin, date, ip, note string, force bool) (*models.Record, error) {
	employee, err := s.findEmployee(ctx, pin)
	if err != nil {
		return nil, err
	}

	day, err := s.clock.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	start, end := s.clock.DayBounds(day)

	unlock := s.lockPIN(employee.PIN)
	defer unlock()

	existing, err := s.store.ListRecords(ctx, store.RecordFilter{PIN: employee.PIN, From: start, To: end})
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.Action == timeclock.ActionAbsent {
			return nil, ErrDuplicateAbsence
		}
	}
	if len(existing) > 0 && !force {
		return nil, &ExistingRecordsError{Name: employee.Name, Date: s.clock.FormatDate(start), Count: len(existing)}
	}

	if s.enforce && !force {
		today, _ := s.clock.DayBounds(s.clock.Now())
		if today.Equal(start) {
			current, _, err := s.Status(ctx, employee.PIN)
			if err != nil {
				return nil, err
			}
			if err := timeclock.ValidateTransition(current, timeclock.ActionAbsent); err != nil {
				return nil, err
			}
		}
	}

	note = strings.TrimSpace(note)
	if note == "" {
		note = "Marked absent by admin"
	}
	rec := models.Record{
		Name:        employee.Name,
		PIN:         employee.PIN,
		Action:      timeclock.ActionAbsent,
		Time:        start,
		IP:          ip,
		AdminAction: true,
		Note:        note,
	}
	if err := s.append(ctx, &rec); err != nil {
		return nil, err
	}

	logger.Info("record.absent", "pin", rec.PIN, "date", s.clock.FormatDate(start), "forced", force)
	return &rec, nil
}

// Records returns the filtered log.
func (s *RecordService) Records(ctx context.Context, f store.RecordFilter) ([]models.Record, error) {
	records, err := s.store.ListRecords(ctx, f)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

func (s *RecordService) append(ctx context.Context, rec *models.Record) error {
	if err := s.store.AppendRecord(ctx, rec); err != nil {
		return err
	}
	dispatch(s.notifier, *rec, s.notifyTimeout)
	return nil
}

// EmployeeStatus is what the keypad shows after a PIN is entered.
type EmployeeStatus struct {
	Name           string           `json:"name"`
	PIN            string           `json:"pin"`
	Status         timeclock.Status `json:"status"`
	LastAction     timeclock.Action `json:"last_action,omitempty"`
	LastActionTime string           `json:"last_action_time,omitempty"`
	Elapsed        string           `json:"elapsed,omitempty"`
}

func (s *RecordService) EmployeeStatus(ctx context.Context, pin string) (*EmployeeStatus, error) {
	employee, err := s.findEmployee(ctx, pin)
	if err != nil {
		return nil, err
	}
	current, last, err := s.Status(ctx, employee.PIN)
	if err != nil {
		return nil, err
	}

	view := &EmployeeStatus{Name: employee.Name, PIN: employee.PIN, Status: current}
	if last != nil {
		view.LastAction = last.Action
		view.LastActionTime = s.clock.Format(last.Time)
		view.Elapsed = timeclock.FormatDuration(timeclock.Elapsed(last.Time, s.clock.Now()))
	}
	return view, nil
}
