package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusOverdue    TaskStatus = "overdue"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// ValidTaskStatus reports whether s is one of the known task statuses.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted,
		TaskStatusOverdue, TaskStatusCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// ValidTaskPriority reports whether p is one of the known priorities.
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type TaskCategory string

const (
	TaskCategoryDevelopment   TaskCategory = "development"
	TaskCategoryDesign        TaskCategory = "design"
	TaskCategoryTesting       TaskCategory = "testing"
	TaskCategoryDocumentation TaskCategory = "documentation"
	TaskCategoryMeeting       TaskCategory = "meeting"
	TaskCategoryResearch      TaskCategory = "research"
	TaskCategoryOther         TaskCategory = "other"
)

// ValidTaskCategory reports whether c is one of the known categories.
func ValidTaskCategory(c TaskCategory) bool {
	switch c {
	case TaskCategoryDevelopment, TaskCategoryDesign, TaskCategoryTesting,
		TaskCategoryDocumentation, TaskCategoryMeeting, TaskCategoryResearch,
		TaskCategoryOther:
		return true
	}
	return false
}

type Task struct {
	ID               uint64       `gorm:"primarykey" json:"id"`
	Title            string       `gorm:"type:varchar(255);not null" json:"title"`
	Description      string       `gorm:"type:text;not null" json:"description"`
	AssignedTo       uint64       `gorm:"not null;index" json:"assigned_to"`
	AssignedBy       uint64       `gorm:"not null;index" json:"assigned_by"`
	Status           TaskStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Priority         TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Category         TaskCategory `gorm:"type:varchar(30);not null;default:'other'" json:"category"`
	Progress         int          `gorm:"not null;default:0" json:"progress"`
	EstimatedHours   float64      `gorm:"not null;default:0" json:"estimated_hours"`
	ActualHours      float64      `gorm:"not null;default:0" json:"actual_hours"`
	DueDate          *time.Time   `json:"due_date"`
	Tags             []string     `gorm:"serializer:json" json:"tags"`
	IsRecurring      bool         `gorm:"not null;default:false" json:"is_recurring"`
	RecurringPattern string       `gorm:"type:varchar(50)" json:"recurring_pattern,omitempty"`
	CompletionReason string       `gorm:"type:text" json:"completion_reason,omitempty"`
	CompletedAt      *time.Time   `json:"completed_at"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	// Relations
	Assignee     User             `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Assigner     User             `gorm:"foreignKey:AssignedBy" json:"assigner,omitempty"`
	Comments     []TaskComment    `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
	TimeEntries  []TimeEntry      `gorm:"foreignKey:TaskID" json:"time_entries,omitempty"`
	Dependencies []TaskDependency `gorm:"foreignKey:TaskID" json:"dependencies,omitempty"`
}
