package repository

import (
	"github.com/Sayan-dev731/attendance-api/internal/models"
	"gorm.io/gorm"
)

// GormReportRepository is a GORM implementation of ReportRepository
type GormReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &GormReportRepository{db: db}
}

// scoped applies the report filter to a task query.
func (r *GormReportRepository) scoped(filter ReportFilter) *gorm.DB {
	query := r.db.Model(&models.Task{})

	if filter.UserID != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.Category != nil {
		query = query.Where("tasks.category = ?", *filter.Category)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("tasks.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("tasks.created_at <= ?", *filter.CreatedTo)
	}

	return query
}

// Overview computes the scoped status/hour totals
func (r *GormReportRepository) Overview(filter ReportFilter) (*OverviewRow, error) {
	var row OverviewRow
	err := r.scoped(filter).
		Select(`COUNT(*) AS total_tasks,
			COALESCE(SUM(CASE WHEN tasks.status = 'completed' THEN 1 ELSE 0 END), 0) AS completed_tasks,
			COALESCE(SUM(CASE WHEN tasks.status = 'in-progress' THEN 1 ELSE 0 END), 0) AS in_progress_tasks,
			COALESCE(SUM(CASE WHEN tasks.status = 'overdue' THEN 1 ELSE 0 END), 0) AS overdue_tasks,
			COALESCE(SUM(tasks.estimated_hours), 0) AS total_estimated_hours,
			COALESCE(SUM(tasks.actual_hours), 0) AS total_actual_hours,
			COALESCE(AVG(tasks.estimated_hours), 0) AS avg_estimated_hours,
			COALESCE(AVG(tasks.actual_hours), 0) AS avg_actual_hours`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// PriorityBreakdown counts matching tasks per priority
func (r *GormReportRepository) PriorityBreakdown(filter ReportFilter) ([]PriorityCountRow, error) {
	var rows []PriorityCountRow
	err := r.scoped(filter).
		Select("tasks.priority AS priority, COUNT(*) AS count").
		Group("tasks.priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CategoryBreakdown counts matching tasks and averages actual hours per category
func (r *GormReportRepository) CategoryBreakdown(filter ReportFilter) ([]CategoryStatsRow, error) {
	var rows []CategoryStatsRow
	err := r.scoped(filter).
		Select(`tasks.category AS category,
			COUNT(*) AS count,
			COALESCE(AVG(tasks.actual_hours), 0) AS avg_actual_hours`).
		Group("tasks.category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// EmployeeSummary aggregates matching tasks per assignee
func (r *GormReportRepository) EmployeeSummary(filter ReportFilter) ([]EmployeeTaskRow, error) {
	var rows []EmployeeTaskRow
	err := r.scoped(filter).
		Select(`tasks.assigned_to AS user_id,
			users.name AS name,
			users.email AS email,
			users.department AS department,
			COUNT(*) AS total_tasks,
			COALESCE(SUM(CASE WHEN tasks.status = 'completed' THEN 1 ELSE 0 END), 0) AS completed_tasks,
			COALESCE(SUM(CASE WHEN tasks.status = 'in-progress' THEN 1 ELSE 0 END), 0) AS in_progress_tasks,
			COALESCE(SUM(CASE WHEN tasks.status = 'overdue' THEN 1 ELSE 0 END), 0) AS overdue_tasks,
			COALESCE(SUM(tasks.estimated_hours), 0) AS total_estimated_hours,
			COALESCE(SUM(tasks.actual_hours), 0) AS total_actual_hours,
			COALESCE(AVG(tasks.progress), 0) AS avg_progress`).
		Joins("JOIN users ON users.id = tasks.assigned_to").
		Group("tasks.assigned_to, users.name, users.email, users.department").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TasksByAssignee lists matching tasks with assignees preloaded, ordered so
// the service can group them per employee
func (r *GormReportRepository) TasksByAssignee(filter ReportFilter) ([]models.Task, error) {
	var tasks []models.Task
	err := r.scoped(filter).
		Order("tasks.assigned_to ASC, tasks.created_at DESC").
		Preload("Assignee").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
