package handlers

import (
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/Sayan-dev731/attendance-api/internal/errors"
	"github.com/Sayan-dev731/attendance-api/internal/models"
	"github.com/Sayan-dev731/attendance-api/internal/repository"
	"github.com/Sayan-dev731/attendance-api/internal/services"
	"github.com/Sayan-dev731/attendance-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the admin/hr reporting views. Role gating is applied
// by the route group middleware.
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Overview returns the scoped overview stats.
func (h *ReportHandler) Overview(c *gin.Context) {
	filter := parseReportFilter(c)

	stats, err := h.reportService.Overview(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to compute overview stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// EmployeeSummary returns per-employee aggregate metrics.
func (h *ReportHandler) EmployeeSummary(c *gin.Context) {
	filter := parseReportFilter(c)

	summaries, err := h.reportService.EmployeeSummaries(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to compute employee summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employees": summaries,
	})
}

// TasksByEmployee returns the per-employee grouping with paginated task
// sub-lists.
func (h *ReportHandler) TasksByEmployee(c *gin.Context) {
	filter := parseReportFilter(c)
	params := utils.GetPaginationParams(c)

	groups, err := h.reportService.TasksByEmployee(filter, params.Page, params.Limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to group tasks by employee")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employees": groups,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int64(len(groups)),
		},
	})
}

// parseReportFilter extracts the optional report scoping parameters. Invalid
// values degrade to "no filter".
func parseReportFilter(c *gin.Context) repository.ReportFilter {
	var filter repository.ReportFilter

	if raw := c.Query("user_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.UserID = &id
		}
	}
	if raw := c.Query("status"); raw != "" && raw != "all" {
		if status := models.TaskStatus(raw); models.ValidTaskStatus(status) {
			filter.Status = &status
		}
	}
	if raw := c.Query("priority"); raw != "" && raw != "all" {
		if priority := models.TaskPriority(raw); models.ValidTaskPriority(priority) {
			filter.Priority = &priority
		}
	}
	if raw := c.Query("category"); raw != "" && raw != "all" {
		if category := models.TaskCategory(raw); models.ValidTaskCategory(category) {
			filter.Category = &category
		}
	}
	if from, ok := parseReportDate(c.Query("from")); ok {
		filter.CreatedFrom = &from
	}
	if to, ok := parseReportDate(c.Query("to")); ok {
		filter.CreatedTo = &to
	}

	return filter
}

// parseReportDate accepts RFC3339 timestamps or plain dates.
func parseReportDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
