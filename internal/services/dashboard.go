package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"timeclock/internal/models"
	"timeclock/internal/store"
	"timeclock/internal/timeclock"
)

// Dashboard categories.
const (
	CategoryNotClockedIn = "notClockedIn"
	CategoryWorking      = "working"
	CategoryOnBreak      = "onBreak"
	CategoryAbsent       = "absent"
)

type DashboardEmployee struct {
	Name           string             `json:"name"`
	PIN            string             `json:"pin"`
	Tags           models.StringArray `json:"tags"`
	Status         timeclock.Status   `json:"status"`
	Category       string             `json:"category"`
	LastAction     timeclock.Action   `json:"last_action,omitempty"`
	LastActionTime string             `json:"last_action_time,omitempty"`
	Duration       string             `json:"duration,omitempty"`
	AbsentToday    bool               `json:"absent_today"`
}

type DashboardStats struct {
	CurrentlyWorking int `json:"currently_working"`
	AbsentToday      int `json:"absent_today"`
	WeekHours        int `json:"week_hours"`
}

type Dashboard struct {
	Stats      DashboardStats                 `json:"stats"`
	Categories map[string][]DashboardEmployee `json:"categories"`
	Counts     map[string]int                 `json:"counts"`
	Tags       []string                       `json:"tags"`
}

type DashboardService struct {
	store store.Store
	clock *timeclock.Clock
}

func NewDashboardService(st store.Store, clock *timeclock.Clock) *DashboardService {
	return &DashboardService{store: st, clock: clock}
}

// Build derives the live view. search matches name or PIN; tag is exact.
// Stats always cover every employee; categories honour the filters.
func (s *DashboardService) Build(ctx context.Context, search, tag string) (*Dashboard, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, store.RecordFilter{})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	todayStart, todayEnd := s.clock.DayBounds(now)
	byPIN := timeclock.GroupByPIN(models.Events(records))

	absentToday := make(map[string]bool)
	for _, r := range records {
		if r.Action == timeclock.ActionAbsent && timeclock.InWindow(r.Time, todayStart, todayEnd) {
			absentToday[r.PIN] = true
		}
	}

	d := &Dashboard{
		Categories: map[string][]DashboardEmployee{
			CategoryNotClockedIn: {},
			CategoryWorking:      {},
			CategoryOnBreak:      {},
			CategoryAbsent:       {},
		},
		Counts: map[string]int{},
		Tags:   []string{},
	}

	search = strings.ToLower(strings.TrimSpace(search))
	tags := make(map[string]bool)

	for _, e := range employees {
		for _, t := range e.Tags {
			tags[t] = true
		}

		events := byPIN[e.PIN]
		view := DashboardEmployee{
			Name:        e.Name,
			PIN:         e.PIN,
			Tags:        e.Tags,
			Status:      timeclock.CurrentStatus(events),
			AbsentToday: absentToday[e.PIN],
		}
		if last, ok := timeclock.LastEvent(events); ok {
			view.LastAction = last.Action
			view.LastActionTime = s.clock.Format(last.Time)
			view.Duration = timeclock.FormatDuration(timeclock.Elapsed(last.Time, now))
		}
		view.Category = categorize(view.Status, view.AbsentToday)

		if view.Status.IsWorking() {
			d.Stats.CurrentlyWorking++
		}
		if view.AbsentToday {
			d.Stats.AbsentToday++
		}

		if !matchesSearch(e, search) || (tag != "" && !e.Tags.Contains(tag)) {
			continue
		}
		d.Categories[view.Category] = append(d.Categories[view.Category], view)
	}

	for cat, list := range d.Categories {
		d.Counts[cat] = len(list)
	}
	for t := range tags {
		d.Tags = append(d.Tags, t)
	}
	sort.Strings(d.Tags)

	d.Stats.WeekHours = s.weekHours(byPIN, now)
	return d, nil
}

// weekHours totals ClockIn/ClockOut time over Monday-Friday of now's week,
// rounded to whole hours.
func (s *DashboardService) weekHours(byPIN map[string][]timeclock.Event, now time.Time) int {
	monday, friday := s.clock.WorkWeek(now)
	var total time.Duration
	for _, events := range byPIN {
		total += timeclock.AggregateHours(events, monday, friday).Work
	}
	return int(math.Round(total.Hours()))
}

func categorize(st timeclock.Status, absentToday bool) string {
	switch {
	case absentToday:
		return CategoryAbsent
	case st.IsWorking():
		return CategoryWorking
	case st.OnShift():
		return CategoryOnBreak
	default:
		return CategoryNotClockedIn
	}
}

func matchesSearch(e models.Employee, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), search) || strings.Contains(e.PIN, search)
}
