package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"timeclock/internal/models"
	"timeclock/internal/store"
	"timeclock/internal/timeclock"

	"github.com/xuri/excelize/v2"
)

var recordCSVHeader = []string{"name", "pin", "action", "time", "ip", "admin_action", "note"}

var hoursHeader = []string{
	"Employee",
	"Paid Hours (Decimal)",
	"Paid Hours (H:M)",
	"Total Work Hours",
	"Break Time (hrs)",
	"Lunch Time (hrs)",
	"Restroom Time (hrs)",
	"IT Issue Time (hrs)",
	"Meeting Time (hrs)",
	"Number of Shifts",
}

// HoursRow is one employee's payroll summary over the requested range.
type HoursRow struct {
	Name          string   `json:"name"`
	PIN           string   `json:"pin"`
	PaidHours     string   `json:"paid_hours"`
	PaidDisplay   string   `json:"paid_display"`
	WorkHours     string   `json:"work_hours"`
	BreakHours    string   `json:"break_hours"`
	LunchHours    string   `json:"lunch_hours"`
	RestroomHours string   `json:"restroom_hours"`
	ItIssueHours  string   `json:"it_issue_hours"`
	MeetingHours  string   `json:"meeting_hours"`
	Shifts        int      `json:"shifts"`
	Warnings      []string `json:"warnings,omitempty"`

	Summary timeclock.PayrollSummary `json:"-"`
}

func newHoursRow(name, pin string, sum timeclock.PayrollSummary) HoursRow {
	return HoursRow{
		Name:          name,
		PIN:           pin,
		PaidHours:     timeclock.Hours(sum.Paid()),
		PaidDisplay:   timeclock.FormatDuration(sum.Paid()),
		WorkHours:     timeclock.Hours(sum.Work),
		BreakHours:    timeclock.Hours(sum.Activity(timeclock.ActivityBreak)),
		LunchHours:    timeclock.Hours(sum.Activity(timeclock.ActivityLunch)),
		RestroomHours: timeclock.Hours(sum.Activity(timeclock.ActivityRestroom)),
		ItIssueHours:  timeclock.Hours(sum.Activity(timeclock.ActivityItIssue)),
		MeetingHours:  timeclock.Hours(sum.Activity(timeclock.ActivityMeeting)),
		Shifts:        sum.Shifts,
		Warnings:      sum.Warnings(),
		Summary:       sum,
	}
}

func (r HoursRow) cells() []string {
	return []string{
		r.Name, r.PaidHours, r.PaidDisplay, r.WorkHours,
		r.BreakHours, r.LunchHours, r.RestroomHours, r.ItIssueHours, r.MeetingHours,
		strconv.Itoa(r.Shifts),
	}
}

type HoursReport struct {
	StartDate string     `json:"start_date,omitempty"`
	EndDate   string     `json:"end_date,omitempty"`
	Rows      []HoursRow `json:"rows"`
}

type ReportService struct {
	store store.Store
	clock *timeclock.Clock
}

func NewReportService(st store.Store, clock *timeclock.Clock) *ReportService {
	return &ReportService{store: st, clock: clock}
}

func (s *ReportService) window(startDate, endDate string) (time.Time, time.Time, error) {
	start, end, err := s.clock.Range(startDate, endDate)
	if err != nil {
		return start, end, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	return start, end, nil
}

// WriteRecordsCSV streams the log for the date range as CSV.
func (s *ReportService) WriteRecordsCSV(ctx context.Context, w io.Writer, startDate, endDate string) error {
	start, end, err := s.window(startDate, endDate)
	if err != nil {
		return err
	}
	records, err := s.store.ListRecords(ctx, store.RecordFilter{From: start, To: end})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(recordCSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Name,
			r.PIN,
			string(r.Action),
			s.clock.Format(r.Time),
			r.IP,
			strconv.FormatBool(r.AdminAction),
			r.Note,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Hours aggregates every employee present in the range.
func (s *ReportService) Hours(ctx context.Context, startDate, endDate string) (*HoursReport, error) {
	start, end, err := s.window(startDate, endDate)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, store.RecordFilter{From: start, To: end})
	if err != nil {
		return nil, err
	}

	// latest denormalised name wins for display
	names := make(map[string]string)
	for _, r := range records {
		if name := strings.TrimSpace(r.Name); name != "" {
			names[r.PIN] = name
		}
	}

	report := &HoursReport{StartDate: startDate, EndDate: endDate, Rows: []HoursRow{}}
	for pin, events := range timeclock.GroupByPIN(models.Events(records)) {
		name, ok := names[pin]
		if !ok {
			continue
		}
		sum := timeclock.AggregateHours(events, start, end)
		report.Rows = append(report.Rows, newHoursRow(name, pin, sum))
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		a, b := strings.ToLower(report.Rows[i].Name), strings.ToLower(report.Rows[j].Name)
		if a != b {
			return a < b
		}
		return report.Rows[i].PIN < report.Rows[j].PIN
	})
	return report, nil
}

// WriteCSV renders the summary in the hours calculator layout.
func (r *HoursReport) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(hoursHeader); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := cw.Write(row.cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders the summary as a single-sheet workbook.
func (r *HoursReport) WriteXLSX(w io.Writer) error {
	const sheet = "Hours"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(hoursHeader))
	for i, h := range hoursHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(hoursHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	for i, row := range r.Rows {
		sum := row.Summary
		values := []interface{}{
			row.Name,
			roundHours(sum.Paid()),
			row.PaidDisplay,
			roundHours(sum.Work),
			roundHours(sum.Activity(timeclock.ActivityBreak)),
			roundHours(sum.Activity(timeclock.ActivityLunch)),
			roundHours(sum.Activity(timeclock.ActivityRestroom)),
			roundHours(sum.Activity(timeclock.ActivityItIssue)),
			roundHours(sum.Activity(timeclock.ActivityMeeting)),
			row.Shifts,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 16); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func roundHours(d time.Duration) float64 {
	v, _ := strconv.ParseFloat(timeclock.Hours(d), 64)
	return v
}
