package repository

import (
	"time"

	"github.com/Sayan-dev731/attendance-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering, sorting and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update persists the task row
	Update(task *models.Task) error

	// Delete removes a task and its comments, time entries and dependency
	// links in a single transaction
	Delete(id uint64) error

	// ReplaceDependencies replaces the task's dependency links
	ReplaceDependencies(taskID uint64, dependsOnIDs []uint64) error

	// AddComment appends a comment to a task
	AddComment(comment *models.TaskComment) error

	// ListComments lists a task's comments in insertion order
	ListComments(taskID uint64) ([]models.TaskComment, error)

	// AddTimeEntry appends a time-tracking entry to a task
	AddTimeEntry(entry *models.TimeEntry) error

	// ListTimeEntries lists a task's time entries in insertion order
	ListTimeEntries(taskID uint64) ([]models.TimeEntry, error)

	// CountTasksByIDs counts how many of the given task IDs exist
	CountTasksByIDs(taskIDs []uint64) (int64, error)
}

// TaskFilter holds filtering options for listing tasks. The assignee scope
// is resolved by the access policy before the filter reaches the repository.
type TaskFilter struct {
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

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// ReportFilter holds the optional scoping parameters for the reporting
// aggregations.
type ReportFilter struct {
	UserID      *uint64
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	Category    *models.TaskCategory
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OverviewRow is the scanned result of the overview aggregation.
type OverviewRow struct {
	TotalTasks          int64
	CompletedTasks      int64
	InProgressTasks     int64
	OverdueTasks        int64
	TotalEstimatedHours float64
	TotalActualHours    float64
	AvgEstimatedHours   float64
	AvgActualHours      float64
}

// PriorityCountRow is one row of the by-priority breakdown.
type PriorityCountRow struct {
	Priority models.TaskPriority
	Count    int64
}

// CategoryStatsRow is one row of the by-category breakdown.
type CategoryStatsRow struct {
	Category       models.TaskCategory
	Count          int64
	AvgActualHours float64
}

// EmployeeTaskRow is one row of the per-employee aggregation; the derived
// completion rate and efficiency are computed by the report service.
type EmployeeTaskRow struct {
	UserID              uint64
	Name                string
	Email               string
	Department          string
	TotalTasks          int64
	CompletedTasks      int64
	InProgressTasks     int64
	OverdueTasks        int64
	TotalEstimatedHours float64
	TotalActualHours    float64
	AvgProgress         float64
}

// ReportRepository defines the interface for the reporting aggregations
type ReportRepository interface {
	// Overview computes the scoped status/hour totals
	Overview(filter ReportFilter) (*OverviewRow, error)

	// PriorityBreakdown counts matching tasks per priority
	PriorityBreakdown(filter ReportFilter) ([]PriorityCountRow, error)

	// CategoryBreakdown counts matching tasks and averages actual hours per category
	CategoryBreakdown(filter ReportFilter) ([]CategoryStatsRow, error)

	// EmployeeSummary aggregates matching tasks per assignee
	EmployeeSummary(filter ReportFilter) ([]EmployeeTaskRow, error)

	// TasksByAssignee lists matching tasks grouped under their assignees
	TasksByAssignee(filter ReportFilter) ([]models.Task, error)
}
