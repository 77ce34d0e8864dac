package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/api/dashboard")
	{
		dashboard.GET("/summary", middleware.RequireRole("admin", "manager"), h.GetSummary)
	}
}

// GetSummary returns pipeline counts and revenue data grouped by period
// @Summary      Get dashboard summary
// @Description  Returns quote pipeline counts, outstanding invoice amounts and revenue grouped by time period
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Param        group_by    query     string  false  "Group by period: month, quarter, year (default: month)"
// @Param        start_date  query     string  false  "Start date (RFC3339)"
// @Param        end_date    query     string  false  "End date (RFC3339)"
// @Success      200         {object}  response.Response{data=service.DashboardSummary}
// @Failure      500         {object}  response.Response
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	startDateStr := c.Query("start_date")
	endDateStr := c.Query("end_date")

	// Default to the current year
	now := time.Now()
	if startDateStr == "" {
		startDateStr = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).Format(time.RFC3339)
	}
	if endDateStr == "" {
		endDateStr = now.Format(time.RFC3339)
	}

	filter := service.RevenueFilter{
		GroupBy:   c.DefaultQuery("group_by", "month"),
		StartDate: startDateStr,
		EndDate:   endDateStr,
	}

	companyID, _ := requestScope(c)
	summary, err := h.dashboardService.GetSummary(c.Request.Context(), companyID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
