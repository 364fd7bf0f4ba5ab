package handlers

import (
	"bytes"
	"fmt"

	"timeclock/internal/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

type ReportQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Format    string `form:"format" binding:"omitempty,oneof=json csv xlsx"`
}

func (q ReportQuery) filename(prefix, ext string) string {
	name := prefix
	if q.StartDate != "" {
		name += "_" + q.StartDate
	}
	if q.EndDate != "" {
		name += "_" + q.EndDate
	}
	return name + "." + ext
}

// DownloadRecords streams the raw log for a date range as CSV.
func (h *ReportHandler) DownloadRecords(c *gin.Context) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": FormatBindingError(err)})
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.WriteRecordsCSV(c.Request.Context(), &buf, q.StartDate, q.EndDate); err != nil {
		respondError(c, err)
		return
	}

	attachment(c, q.filename("timecard_records", "csv"))
	c.Data(200, "text/csv; charset=utf-8", buf.Bytes())
}

// CalculateHours returns the per-employee payroll summary.
func (h *ReportHandler) CalculateHours(c *gin.Context) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": FormatBindingError(err)})
		return
	}

	report, err := h.reportService.Hours(c.Request.Context(), q.StartDate, q.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	switch q.Format {
	case "csv":
		if err := report.WriteCSV(&buf); err != nil {
			respondError(c, err)
			return
		}
		attachment(c, q.filename("hours_summary", "csv"))
		c.Data(200, "text/csv; charset=utf-8", buf.Bytes())
	case "xlsx":
		if err := report.WriteXLSX(&buf); err != nil {
			respondError(c, err)
			return
		}
		attachment(c, q.filename("hours_summary", "xlsx"))
		c.Data(200, xlsxContentType, buf.Bytes())
	default:
		c.JSON(200, report)
	}
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}
