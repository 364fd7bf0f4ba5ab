package handlers

import (
	"errors"
	"time"

	"timeclock/internal/api/middleware"
	"timeclock/internal/logger"
	"timeclock/internal/models"
	"timeclock/internal/services"
	"timeclock/internal/timeclock"

	"github.com/gin-gonic/gin"
)

// RecordResponse is the wire shape of an event record.
type RecordResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	PIN         string           `json:"pin"`
	Action      timeclock.Action `json:"action"`
	Time        string           `json:"time"`
	Timestamp   string           `json:"timestamp"`
	IP          string           `json:"ip"`
	AdminAction bool             `json:"admin_action,omitempty"`
	Note        string           `json:"note,omitempty"`
}

func newRecordResponse(clock *timeclock.Clock, r models.Record) RecordResponse {
	return RecordResponse{
		ID:          r.ID,
		Name:        r.Name,
		PIN:         r.PIN,
		Action:      r.Action,
		Time:        clock.Format(r.Time),
		Timestamp:   r.Time.UTC().Format(time.RFC3339),
		IP:          r.IP,
		AdminAction: r.AdminAction,
		Note:        r.Note,
	}
}

func newRecordResponses(clock *timeclock.Clock, records []models.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, newRecordResponse(clock, r))
	}
	return out
}

// respondError maps service errors onto status codes. Anything unrecognised
// is logged and reported as a 500 without internals.
func respondError(c *gin.Context, err error) {
	var existing *services.ExistingRecordsError
	var transition *timeclock.TransitionError

	switch {
	case errors.As(err, &existing):
		c.JSON(400, gin.H{"error": err.Error(), "warning": true, "existing_records": existing.Count})
	case errors.As(err, &transition):
		c.JSON(400, gin.H{"error": transition.Reason, "status": transition.From})
	case errors.Is(err, services.ErrDuplicateAbsence),
		errors.Is(err, services.ErrPINExists),
		errors.Is(err, services.ErrUsernameExists):
		c.JSON(409, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrNotAdminEmployee):
		c.JSON(401, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAbsentAdminOnly):
		c.JSON(403, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmployeeNotFound),
		errors.Is(err, services.ErrInvalidPIN),
		errors.Is(err, services.ErrNameTooShort),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrInvalidTime),
		errors.Is(err, services.ErrNotOnShift),
		errors.Is(err, services.ErrUsernameRequired):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}

// clientIP prefers the address reported by the kiosk over the socket peer.
func clientIP(c *gin.Context, reported string) string {
	if reported != "" {
		return reported
	}
	return c.ClientIP()
}

func actor(c *gin.Context) string {
	return c.GetString(middleware.ContextActor)
}

func logAudit(c *gin.Context, audit *services.AuditService, action, resource, resourceID, details string) {
	audit.Log(c.Request.Context(), models.AuditLog{
		Actor:      actor(c),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	})
}
