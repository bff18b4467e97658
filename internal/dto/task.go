package dto

import (
	"time"

	"github.com/Sayan-dev731/attendance-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         uint64          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	Department string          `json:"department,omitempty"`
}

// CommentDTO represents a task comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	AuthorID  uint64    `json:"author_id"`
	Author    *UserDTO  `json:"author,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TimeEntryDTO represents a time-tracking entry in API responses
type TimeEntryDTO struct {
	ID          uint64    `json:"id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Duration    int       `json:"duration"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID               uint64              `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	AssignedTo       uint64              `json:"assigned_to"`
	AssignedBy       uint64              `json:"assigned_by"`
	Status           models.TaskStatus   `json:"status"`
	Priority         models.TaskPriority `json:"priority"`
	Category         models.TaskCategory `json:"category"`
	Progress         int                 `json:"progress"`
	EstimatedHours   float64             `json:"estimated_hours"`
	ActualHours      float64             `json:"actual_hours"`
	DueDate          *time.Time          `json:"due_date"`
	Tags             []string            `json:"tags"`
	IsRecurring      bool                `json:"is_recurring"`
	RecurringPattern string              `json:"recurring_pattern,omitempty"`
	CompletionReason string              `json:"completion_reason,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Assignee         *UserDTO            `json:"assignee,omitempty"`
	Assigner         *UserDTO            `json:"assigner,omitempty"`
	Comments         []CommentDTO        `json:"comments,omitempty"`
	TimeEntries      []TimeEntryDTO      `json:"time_entries,omitempty"`
	Dependencies     []uint64            `json:"dependencies,omitempty"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.Department,
	}
}

// ToCommentDTO converts a TaskComment model to CommentDTO
func ToCommentDTO(comment models.TaskComment) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}

	if comment.Author.ID != 0 {
		author := ToUserDTO(comment.Author)
		dto.Author = &author
	}

	return dto
}

// ToCommentDTOs converts a slice of comments
func ToCommentDTOs(comments []models.TaskComment) []CommentDTO {
	dtos := make([]CommentDTO, len(comments))
	for i, comment := range comments {
		dtos[i] = ToCommentDTO(comment)
	}
	return dtos
}

// ToTimeEntryDTO converts a TimeEntry model to TimeEntryDTO
func ToTimeEntryDTO(entry models.TimeEntry) TimeEntryDTO {
	return TimeEntryDTO{
		ID:          entry.ID,
		StartTime:   entry.StartTime,
		EndTime:     entry.EndTime,
		Duration:    entry.Duration,
		Date:        entry.Date,
		Description: entry.Description,
	}
}

// ToTimeEntryDTOs converts a slice of time entries
func ToTimeEntryDTOs(entries []models.TimeEntry) []TimeEntryDTO {
	dtos := make([]TimeEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = ToTimeEntryDTO(entry)
	}
	return dtos
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		AssignedTo:       task.AssignedTo,
		AssignedBy:       task.AssignedBy,
		Status:           task.Status,
		Priority:         task.Priority,
		Category:         task.Category,
		Progress:         task.Progress,
		EstimatedHours:   task.EstimatedHours,
		ActualHours:      task.ActualHours,
		DueDate:          task.DueDate,
		Tags:             task.Tags,
		IsRecurring:      task.IsRecurring,
		RecurringPattern: task.RecurringPattern,
		CompletionReason: task.CompletionReason,
		CompletedAt:      task.CompletedAt,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}

	// Include relations only when preloaded
	if task.Assignee.ID != 0 {
		assignee := ToUserDTO(task.Assignee)
		dto.Assignee = &assignee
	}
	if task.Assigner.ID != 0 {
		assigner := ToUserDTO(task.Assigner)
		dto.Assigner = &assigner
	}
	if len(task.Comments) > 0 {
		dto.Comments = ToCommentDTOs(task.Comments)
	}
	if len(task.TimeEntries) > 0 {
		dto.TimeEntries = ToTimeEntryDTOs(task.TimeEntries)
	}
	if len(task.Dependencies) > 0 {
		dto.Dependencies = make([]uint64, len(task.Dependencies))
		for i, dep := range task.Dependencies {
			dto.Dependencies[i] = dep.DependsOnID
		}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
