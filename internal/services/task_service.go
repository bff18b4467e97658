package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Sayan-dev731/attendance-api/internal/constants"
	"github.com/Sayan-dev731/attendance-api/internal/models"
	"github.com/Sayan-dev731/attendance-api/internal/policy"
	"github.com/Sayan-dev731/attendance-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskAccessDenied    = errors.New("access to this task is denied")
	ErrAssigneeNotFound    = errors.New("assigned user not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrTitleEmpty          = errors.New("title cannot be empty")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidProgress     = errors.New("progress must be between 0 and 100")
	ErrInvalidHours        = errors.New("hours must be non-negative")
	ErrInvalidDependency   = errors.New("one or more dependency tasks do not exist")
	ErrCommentTextRequired = errors.New("comment text is required")
	ErrInvalidTimeRange    = errors.New("end time must be after start time")
	ErrInvalidFieldValue   = errors.New("invalid field value")

	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
)

// taskPreloads are the relations loaded when a single task is returned.
var taskPreloads = []string{
	"Assignee", "Assigner",
	"Comments", "Comments.Author",
	"TimeEntries", "Dependencies",
}

// TaskService handles task business logic. Every operation takes the caller
// explicitly and consults the access policy; existence is always checked
// before authorization so missing tasks report not-found, never forbidden.
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	aiService *AIService
}

// NewTaskService creates a new TaskService; aiService may be nil when task
// draft generation is not configured.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		aiService: aiService,
	}
}

// ListTasksInput represents filters for listing tasks. Enum values are
// pre-validated by the handler; invalid or "all" values never reach here.
type ListTasksInput struct {
	AssignedTo *uint64
	Statuses   []models.TaskStatus
	Priority   *models.TaskPriority
	Category   *models.TaskCategory
	Search     string
	SortBy     string
	SortDesc   bool
	Page       int
	PageSize   int
}

// ListTasks returns the tasks visible to the caller. Non-privileged callers
// are always scoped to their own tasks regardless of the requested assignee.
func (s *TaskService) ListTasks(caller policy.Caller, input ListTasksInput) ([]models.Task, int64, error) {
	assignee := policy.ListScope(caller, input.AssignedTo)

	filter := repository.TaskFilter{
		AssignedTo: &assignee,
		Statuses:   input.Statuses,
		Priority:   input.Priority,
		Category:   input.Category,
		Search:     input.Search,
		SortBy:     input.SortBy,
		SortDesc:   input.SortDesc,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data if the caller may read it.
func (s *TaskService) GetTask(caller policy.Caller, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanRead(caller, task) {
		return nil, ErrTaskAccessDenied
	}

	return task, nil
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title            string
	Description      string
	AssignedTo       uint64
	DueDate          *time.Time
	Priority         models.TaskPriority
	Category         models.TaskCategory
	EstimatedHours   float64
	Tags             []string
	Dependencies     []uint64
	IsRecurring      bool
	RecurringPattern string
}

// CreateTask creates a new task. Only privileged callers may create; the
// creator identity is always the caller, never client input.
func (s *TaskService) CreateTask(caller policy.Caller, input CreateTaskInput) (*models.Task, error) {
	if !policy.CanCreate(caller) {
		return nil, ErrTaskAccessDenied
	}

	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Description == "" {
		return nil, ErrDescriptionRequired
	}
	if !models.ValidTaskPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}
	if !models.ValidTaskCategory(input.Category) {
		return nil, ErrInvalidCategory
	}
	if input.EstimatedHours < 0 {
		return nil, ErrInvalidHours
	}

	if _, err := s.userRepo.FindByID(input.AssignedTo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to verify assignee: %w", err)
	}

	if err := s.verifyDependencies(input.Dependencies); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:            input.Title,
		Description:      input.Description,
		AssignedTo:       input.AssignedTo,
		AssignedBy:       caller.ID,
		Status:           models.TaskStatusPending,
		Priority:         input.Priority,
		Category:         input.Category,
		DueDate:          input.DueDate,
		EstimatedHours:   input.EstimatedHours,
		Tags:             input.Tags,
		IsRecurring:      input.IsRecurring,
		RecurringPattern: input.RecurringPattern,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if len(input.Dependencies) > 0 {
		if err := s.taskRepo.ReplaceDependencies(task.ID, input.Dependencies); err != nil {
			return nil, fmt.Errorf("failed to link dependencies: %w", err)
		}
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateTask applies a partial update. Only the fields the caller's role and
// relationship permit are applied; everything else in the request body is
// silently dropped. Setting status to completed forces progress to 100 and
// stamps completed_at on the first transition.
func (s *TaskService) UpdateTask(caller policy.Caller, taskID uint64, fields map[string]any) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	allowed, ok := policy.UpdatableFields(caller, task)
	if !ok {
		return nil, ErrTaskAccessDenied
	}

	var newDependencies []uint64
	replaceDependencies := false

	for key, value := range fields {
		if !allowed[key] {
			continue
		}

		switch key {
		case "title":
			title, ok := value.(string)
			if !ok || title == "" {
				return nil, ErrTitleEmpty
			}
			task.Title = title
		case "description":
			if desc, ok := value.(string); ok {
				task.Description = desc
			}
		case "priority":
			p, ok := value.(string)
			if !ok || !models.ValidTaskPriority(models.TaskPriority(p)) {
				return nil, ErrInvalidPriority
			}
			task.Priority = models.TaskPriority(p)
		case "category":
			cat, ok := value.(string)
			if !ok || !models.ValidTaskCategory(models.TaskCategory(cat)) {
				return nil, ErrInvalidCategory
			}
			task.Category = models.TaskCategory(cat)
		case "status":
			st, ok := value.(string)
			if !ok || !models.ValidTaskStatus(models.TaskStatus(st)) {
				return nil, ErrInvalidStatus
			}
			task.Status = models.TaskStatus(st)
		case "progress":
			progress, ok := toFloat(value)
			if !ok || progress < 0 || progress > 100 {
				return nil, ErrInvalidProgress
			}
			task.Progress = int(progress)
		case "assigned_to":
			id, ok := toFloat(value)
			if !ok || id <= 0 {
				return nil, ErrInvalidFieldValue
			}
			assigneeID := uint64(id)
			if _, err := s.userRepo.FindByID(assigneeID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrAssigneeNotFound
				}
				return nil, fmt.Errorf("failed to verify assignee: %w", err)
			}
			task.AssignedTo = assigneeID
		case "due_date":
			if value == nil {
				task.DueDate = nil
				continue
			}
			raw, ok := value.(string)
			if !ok {
				return nil, ErrInvalidFieldValue
			}
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, ErrInvalidFieldValue
			}
			task.DueDate = &parsed
		case "estimated_hours":
			hours, ok := toFloat(value)
			if !ok || hours < 0 {
				return nil, ErrInvalidHours
			}
			task.EstimatedHours = hours
		case "actual_hours":
			hours, ok := toFloat(value)
			if !ok || hours < 0 {
				return nil, ErrInvalidHours
			}
			task.ActualHours = hours
		case "tags":
			tags, ok := toStringSlice(value)
			if !ok {
				return nil, ErrInvalidFieldValue
			}
			task.Tags = tags
		case "dependencies":
			ids, ok := toUint64Slice(value)
			if !ok {
				return nil, ErrInvalidFieldValue
			}
			if err := s.verifyDependencies(ids); err != nil {
				return nil, err
			}
			newDependencies = ids
			replaceDependencies = true
		case "completion_reason":
			if reason, ok := value.(string); ok {
				task.CompletionReason = reason
			}
		}
	}

	if task.Status == models.TaskStatusCompleted {
		task.Progress = 100
		if task.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if replaceDependencies {
		if err := s.taskRepo.ReplaceDependencies(task.ID, newDependencies); err != nil {
			return nil, fmt.Errorf("failed to replace dependencies: %w", err)
		}
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// DeleteTask removes a task and its dependent records. Admin only.
func (s *TaskService) DeleteTask(caller policy.Caller, taskID uint64) error {
	_, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanDelete(caller) {
		return ErrTaskAccessDenied
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AddComment appends a comment and returns the task's full comment list.
func (s *TaskService) AddComment(caller policy.Caller, taskID uint64, text string) ([]models.TaskComment, error) {
	if text == "" {
		return nil, ErrCommentTextRequired
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanComment(caller, task) {
		return nil, ErrTaskAccessDenied
	}

	comment := &models.TaskComment{
		TaskID:   task.ID,
		AuthorID: caller.ID,
		Text:     text,
	}
	if err := s.taskRepo.AddComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return s.taskRepo.ListComments(task.ID)
}

// AddTimeEntryInput represents input for appending a time-tracking entry.
type AddTimeEntryInput struct {
	StartTime   time.Time
	EndTime     time.Time
	Description string
}

// AddTimeEntry appends a time-tracking entry and returns the task's full
// entry list. Assignee only; duration and date are derived, never accepted
// from the client.
func (s *TaskService) AddTimeEntry(caller policy.Caller, taskID uint64, input AddTimeEntryInput) ([]models.TimeEntry, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanTrackTime(caller, task) {
		return nil, ErrTaskAccessDenied
	}

	if !input.EndTime.After(input.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	duration := int(math.Round(input.EndTime.Sub(input.StartTime).Minutes()))
	if duration < 1 {
		return nil, ErrInvalidTimeRange
	}

	start := input.StartTime
	entry := &models.TimeEntry{
		TaskID:      task.ID,
		StartTime:   start,
		EndTime:     input.EndTime,
		Duration:    duration,
		Date:        time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()),
		Description: input.Description,
	}
	if err := s.taskRepo.AddTimeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to add time entry: %w", err)
	}

	return s.taskRepo.ListTimeEntries(task.ID)
}

// GenerateTaskDrafts extracts task drafts from free text using the AI
// service. Privileged callers only, matching task creation.
func (s *TaskService) GenerateTaskDrafts(ctx context.Context, caller policy.Caller, text string) ([]TaskDraft, error) {
	if !policy.CanCreate(caller) {
		return nil, ErrTaskAccessDenied
	}
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.aiService.GenerateTaskDrafts(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		drafts = drafts[:constants.MaxAIGeneratedTasks]
	}

	valid := make([]TaskDraft, 0, len(drafts))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, draft := range drafts {
		if strings.TrimSpace(draft.Title) == "" {
			continue
		}
		if !models.ValidTaskPriority(models.TaskPriority(draft.Priority)) {
			draft.Priority = string(models.TaskPriorityMedium)
		}
		if !models.ValidTaskCategory(models.TaskCategory(draft.Category)) {
			draft.Category = string(models.TaskCategoryOther)
		}
		if draft.DueDate != nil && draft.DueDate.Before(cutoff) {
			draft.DueDate = nil
		}
		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	return valid, nil
}

// verifyDependencies checks that every referenced task exists.
func (s *TaskService) verifyDependencies(ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	unique := uniqueUint64(ids)
	count, err := s.taskRepo.CountTasksByIDs(unique)
	if err != nil {
		return fmt.Errorf("failed to verify dependencies: %w", err)
	}
	if int(count) != len(unique) {
		return ErrInvalidDependency
	}
	return nil
}

// toFloat normalizes the numeric representations encoding/json produces.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func toStringSlice(value any) ([]string, bool) {
	raw, ok := value.([]any)
	if !ok {
		return nil, false
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		result = append(result, s)
	}
	return result, true
}

func toUint64Slice(value any) ([]uint64, bool) {
	raw, ok := value.([]any)
	if !ok {
		return nil, false
	}
	result := make([]uint64, 0, len(raw))
	for _, item := range raw {
		f, ok := toFloat(item)
		if !ok || f <= 0 {
			return nil, false
		}
		result = append(result, uint64(f))
	}
	return result, true
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
