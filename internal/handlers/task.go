package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sayan-dev731/attendance-api/internal/dto"
	apierrors "github.com/Sayan-dev731/attendance-api/internal/errors"
	"github.com/Sayan-dev731/attendance-api/internal/middleware"
	"github.com/Sayan-dev731/attendance-api/internal/models"
	"github.com/Sayan-dev731/attendance-api/internal/services"
	"github.com/Sayan-dev731/attendance-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the caller with optional filters.
// Absent or invalid filter values degrade to "no filter", never to an error.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		Search:   strings.TrimSpace(c.Query("search")),
		SortBy:   c.DefaultQuery("sortBy", "created_at"),
		SortDesc: c.DefaultQuery("sortOrder", "desc") != "asc",
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if raw := c.Query("assigned_to"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			input.AssignedTo = &id
		}
	}

	// status supports a comma-separated set matched as "any of"
	if raw := c.Query("status"); raw != "" && raw != "all" {
		for _, part := range strings.Split(raw, ",") {
			status := models.TaskStatus(strings.TrimSpace(part))
			if models.ValidTaskStatus(status) {
				input.Statuses = append(input.Statuses, status)
			}
		}
	}
	if raw := c.Query("priority"); raw != "" && raw != "all" {
		if priority := models.TaskPriority(raw); models.ValidTaskPriority(priority) {
			input.Priority = &priority
		}
	}
	if raw := c.Query("category"); raw != "" && raw != "all" {
		if category := models.TaskCategory(raw); models.ValidTaskCategory(category) {
			input.Category = &category
		}
	}

	tasks, total, err := h.taskService.ListTasks(caller, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a specific task by ID.
func (h *TaskHandler) GetTask(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(caller, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task. Admin/hr only; the creator identity is
// taken from the session, never from the request body.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title            string     `json:"title" binding:"required"`
		Description      string     `json:"description" binding:"required"`
		AssignedTo       uint64     `json:"assigned_to" binding:"required"`
		DueDate          *time.Time `json:"due_date" binding:"required"`
		Priority         string     `json:"priority" binding:"required"`
		Category         string     `json:"category" binding:"required"`
		EstimatedHours   float64    `json:"estimated_hours"`
		Tags             []string   `json:"tags"`
		Dependencies     []uint64   `json:"dependencies"`
		IsRecurring      bool       `json:"is_recurring"`
		RecurringPattern string     `json:"recurring_pattern"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(caller, services.CreateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		AssignedTo:       req.AssignedTo,
		DueDate:          req.DueDate,
		Priority:         models.TaskPriority(req.Priority),
		Category:         models.TaskCategory(req.Category),
		EstimatedHours:   req.EstimatedHours,
		Tags:             req.Tags,
		Dependencies:     req.Dependencies,
		IsRecurring:      req.IsRecurring,
		RecurringPattern: req.RecurringPattern,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to a task. Fields outside the caller's
// allow-set are dropped silently.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(caller, taskID, fields)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task. Admin only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(caller, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AddComment appends a comment to a task.
func (h *TaskHandler) AddComment(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	type AddCommentRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Comment text is required")
		return
	}

	comments, err := h.taskService.AddComment(caller, taskID, strings.TrimSpace(req.Text))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comments": dto.ToCommentDTOs(comments),
	})
}

// AddTimeEntry appends a time-tracking entry to a task. Assignee only.
func (h *TaskHandler) AddTimeEntry(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	type AddTimeEntryRequest struct {
		StartTime   *time.Time `json:"start_time" binding:"required"`
		EndTime     *time.Time `json:"end_time" binding:"required"`
		Description string     `json:"description"`
	}

	var req AddTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "start_time and end_time are required")
		return
	}

	entries, err := h.taskService.AddTimeEntry(caller, taskID, services.AddTimeEntryInput{
		StartTime:   *req.StartTime,
		EndTime:     *req.EndTime,
		Description: req.Description,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"time_entries": dto.ToTimeEntryDTOs(entries),
	})
}

// GenerateTasks generates task drafts from free text using AI.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateTaskDrafts(c.Request.Context(), caller, req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
	})
}

// parseTaskID extracts the task id path parameter, responding with a 400 on
// malformed input.
func parseTaskID(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return taskID, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskAccessDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrInvalidHours),
		errors.Is(err, services.ErrInvalidDependency),
		errors.Is(err, services.ErrCommentTextRequired),
		errors.Is(err, services.ErrInvalidTimeRange),
		errors.Is(err, services.ErrInvalidFieldValue),
		errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
