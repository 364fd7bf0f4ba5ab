package handlers

import (
	"fmt"

	"timeclock/internal/services"
	"timeclock/internal/store"
	"timeclock/internal/timeclock"

	"github.com/gin-gonic/gin"
)

const bulkClockOutNote = "Bulk clock-out by admin"

type RecordHandler struct {
	recordService *services.RecordService
	auditService  *services.AuditService
	clock         *timeclock.Clock
}

func NewRecordHandler(recordService *services.RecordService, auditService *services.AuditService, clock *timeclock.Clock) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		auditService:  auditService,
		clock:         clock,
	}
}

type AddRecordRequest struct {
	PIN    string `json:"pin" binding:"required"`
	Action string `json:"action" binding:"required"`
	Time   string `json:"time"`
	IP     string `json:"ip"`
}

type ManualClockOutRequest struct {
	PIN  string `json:"pin" binding:"required"`
	Time string `json:"time"`
	IP   string `json:"ip"`
	Note string `json:"note"`
}

type BulkClockOutRequest struct {
	Note string `json:"note"`
	IP   string `json:"ip"`
}

type MarkAbsentRequest struct {
	PIN   string `json:"pin" binding:"required"`
	Date  string `json:"date" binding:"required"`
	IP    string `json:"ip"`
	Note  string `json:"note"`
	Force bool   `json:"force"`
}

type GetRecordsRequest struct {
	PIN       string `json:"pin"`
	Action    string `json:"action"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// AddRecord appends a keypad action.
func (h *RecordHandler) AddRecord(c *gin.Context) {
	var req AddRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.recordService.AddRecord(c.Request.Context(), services.RecordInput{
		PIN:    req.PIN,
		Action: req.Action,
		Time:   req.Time,
		IP:     clientIP(c, req.IP),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(201, gin.H{
		"id":     result.Record.ID,
		"name":   result.Record.Name,
		"late":   result.Late,
		"record": newRecordResponse(h.clock, result.Record),
	})
}

// ManualClockOut clocks an employee out on their behalf.
func (h *RecordHandler) ManualClockOut(c *gin.Context) {
	var req ManualClockOutRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.recordService.ManualClockOut(c.Request.Context(), req.PIN, req.Time, clientIP(c, req.IP), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	logAudit(c, h.auditService, "clock_out", "record", rec.ID, fmt.Sprintf("pin=%s note=%s", rec.PIN, rec.Note))

	c.JSON(201, gin.H{"id": rec.ID, "name": rec.Name})
}

// BulkClockOut clocks out everyone currently working.
func (h *RecordHandler) BulkClockOut(c *gin.Context) {
	var req BulkClockOutRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	note := req.Note
	if note == "" {
		note = bulkClockOutNote
	}

	result, err := h.recordService.ClockOutWorking(c.Request.Context(), note, clientIP(c, req.IP))
	if err != nil {
		respondError(c, err)
		return
	}
	logAudit(c, h.auditService, "bulk_clock_out", "record", "",
		fmt.Sprintf("clocked_out=%d failed=%d", len(result.ClockedOut), len(result.Failed)))

	failed := result.Failed
	if failed == nil {
		failed = []string{}
	}
	c.JSON(200, gin.H{
		"clocked_out": len(result.ClockedOut),
		"failed":      failed,
		"records":     newRecordResponses(h.clock, result.ClockedOut),
	})
}

// MarkAbsent records an absence for a date.
func (h *RecordHandler) MarkAbsent(c *gin.Context) {
	var req MarkAbsentRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.recordService.MarkAbsent(c.Request.Context(), req.PIN, req.Date, clientIP(c, req.IP), req.Note, req.Force)
	if err != nil {
		respondError(c, err)
		return
	}
	logAudit(c, h.auditService, "mark_absent", "record", rec.ID, fmt.Sprintf("pin=%s date=%s force=%t", rec.PIN, req.Date, req.Force))

	c.JSON(201, gin.H{"id": rec.ID, "name": rec.Name})
}

// GetRecords returns the log, optionally filtered.
func (h *RecordHandler) GetRecords(c *gin.Context) {
	var req GetRecordsRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	filter := store.RecordFilter{PIN: req.PIN}
	if req.Action != "" {
		action, err := timeclock.ParseAction(req.Action)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		filter.Action = action
	}
	from, to, err := h.clock.Range(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	filter.From, filter.To = from, to

	records, err := h.recordService.Records(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, newRecordResponses(h.clock, records))
}
