package handlers

import (
	"timeclock/internal/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard returns live status, categories and stats.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.Build(c.Request.Context(), c.Query("search"), c.Query("tag"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, dashboard)
}
