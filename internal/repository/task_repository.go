package repository

import (
	"fmt"
	"strings"

	"github.com/Sayan-dev731/attendance-api/internal/database"
	"github.com/Sayan-dev731/attendance-api/internal/models"
	"gorm.io/gorm"
)

// taskSortColumns whitelists the sortable columns; anything else falls back
// to created_at.
var taskSortColumns = map[string]bool{
	"created_at": true,
	"due_date":   true,
	"priority":   true,
	"status":     true,
	"progress":   true,
	"title":      true,
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering, sorting and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.AssignedTo != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.AssignedTo)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("tasks.status IN ?", filter.Statuses)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.Category != nil {
		query = query.Where("tasks.category = ?", *filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ? OR LOWER(tasks.tags) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	if !taskSortColumns[sortBy] {
		sortBy = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	listQuery := query.Order(fmt.Sprintf("tasks.%s %s", sortBy, direction))

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize))
	}

	if err := listQuery.Preload("Assignee").Preload("Assigner").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update persists the task row
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task and its dependent rows in a single transaction
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TimeEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ? OR depends_on_id = ?", id, id).Delete(&models.TaskDependency{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ReplaceDependencies replaces the task's dependency links
func (r *GormTaskRepository) ReplaceDependencies(taskID uint64, dependsOnIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskDependency{}).Error; err != nil {
			return err
		}

		if len(dependsOnIDs) == 0 {
			return nil
		}

		links := make([]models.TaskDependency, len(dependsOnIDs))
		for i, dependsOnID := range dependsOnIDs {
			links[i] = models.TaskDependency{
				TaskID:      taskID,
				DependsOnID: dependsOnID,
			}
		}
		return tx.Create(&links).Error
	})
}

// AddComment appends a comment to a task
func (r *GormTaskRepository) AddComment(comment *models.TaskComment) error {
	return r.db.Create(comment).Error
}

// ListComments lists a task's comments in insertion order
func (r *GormTaskRepository) ListComments(taskID uint64) ([]models.TaskComment, error) {
	var comments []models.TaskComment
	err := r.db.Where("task_id = ?", taskID).
		Preload("Author").
		Order("task_comments.id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// AddTimeEntry appends a time-tracking entry to a task
func (r *GormTaskRepository) AddTimeEntry(entry *models.TimeEntry) error {
	return r.db.Create(entry).Error
}

// ListTimeEntries lists a task's time entries in insertion order
func (r *GormTaskRepository) ListTimeEntries(taskID uint64) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	err := r.db.Where("task_id = ?", taskID).
		Order("time_entries.id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountTasksByIDs counts how many of the given task IDs exist
func (r *GormTaskRepository) CountTasksByIDs(taskIDs []uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("id IN ?", taskIDs).
		Count(&count).Error
	return count, err
}
