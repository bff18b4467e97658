package services

import (
	"fmt"
	"sort"

	"github.com/Sayan-dev731/attendance-api/internal/models"
	"github.com/Sayan-dev731/attendance-api/internal/repository"
)

// ReportService computes the admin/hr reporting views. Role gating happens
// at the transport layer; derived metrics are computed here from the
// repository's aggregation rows.
type ReportService struct {
	reportRepo repository.ReportRepository
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo repository.ReportRepository) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
	}
}

// OverviewStats is the overview report payload.
type OverviewStats struct {
	TotalTasks          int64                         `json:"total_tasks"`
	CompletedTasks      int64                         `json:"completed_tasks"`
	InProgressTasks     int64                         `json:"in_progress_tasks"`
	OverdueTasks        int64                         `json:"overdue_tasks"`
	TotalEstimatedHours float64                       `json:"total_estimated_hours"`
	TotalActualHours    float64                       `json:"total_actual_hours"`
	AvgEstimatedHours   float64                       `json:"avg_estimated_hours"`
	AvgActualHours      float64                       `json:"avg_actual_hours"`
	ByPriority          []repository.PriorityCountRow `json:"by_priority"`
	ByCategory          []repository.CategoryStatsRow `json:"by_category"`
}

// Overview returns the scoped overview stats with the priority and category
// breakdowns.
func (s *ReportService) Overview(filter repository.ReportFilter) (*OverviewStats, error) {
	row, err := s.reportRepo.Overview(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compute overview: %w", err)
	}

	byPriority, err := s.reportRepo.PriorityBreakdown(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compute priority breakdown: %w", err)
	}

	byCategory, err := s.reportRepo.CategoryBreakdown(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compute category breakdown: %w", err)
	}

	return &OverviewStats{
		TotalTasks:          row.TotalTasks,
		CompletedTasks:      row.CompletedTasks,
		InProgressTasks:     row.InProgressTasks,
		OverdueTasks:        row.OverdueTasks,
		TotalEstimatedHours: row.TotalEstimatedHours,
		TotalActualHours:    row.TotalActualHours,
		AvgEstimatedHours:   row.AvgEstimatedHours,
		AvgActualHours:      row.AvgActualHours,
		ByPriority:          byPriority,
		ByCategory:          byCategory,
	}, nil
}

// EmployeeSummary is one employee's aggregate metrics. Efficiency is nil
// when either side of the estimated/actual ratio is zero.
type EmployeeSummary struct {
	UserID              uint64   `json:"user_id"`
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	Department          string   `json:"department"`
	TotalTasks          int64    `json:"total_tasks"`
	CompletedTasks      int64    `json:"completed_tasks"`
	InProgressTasks     int64    `json:"in_progress_tasks"`
	OverdueTasks        int64    `json:"overdue_tasks"`
	TotalEstimatedHours float64  `json:"total_estimated_hours"`
	TotalActualHours    float64  `json:"total_actual_hours"`
	AvgProgress         float64  `json:"avg_progress"`
	CompletionRate      float64  `json:"completion_rate"`
	Efficiency          *float64 `json:"efficiency"`
}

// EmployeeSummaries returns per-employee aggregates for every employee with
// at least one matching task, sorted by completion rate descending with ties
// broken by name ascending.
func (s *ReportService) EmployeeSummaries(filter repository.ReportFilter) ([]EmployeeSummary, error) {
	rows, err := s.reportRepo.EmployeeSummary(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compute employee summary: %w", err)
	}

	summaries := make([]EmployeeSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, summarize(row))
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].CompletionRate != summaries[j].CompletionRate {
			return summaries[i].CompletionRate > summaries[j].CompletionRate
		}
		return summaries[i].Name < summaries[j].Name
	})

	return summaries, nil
}

// EmployeeTasks is an employee summary with a paginated window of the
// employee's matching tasks.
type EmployeeTasks struct {
	EmployeeSummary
	Tasks      []models.Task `json:"tasks"`
	TasksTotal int           `json:"tasks_total"`
}

// TasksByEmployee returns the per-employee grouping with each employee's
// task sub-list paginated. Page and pageSize apply to the sub-lists, not to
// the employee list itself.
func (s *ReportService) TasksByEmployee(filter repository.ReportFilter, page, pageSize int) ([]EmployeeTasks, error) {
	summaries, err := s.EmployeeSummaries(filter)
	if err != nil {
		return nil, err
	}

	tasks, err := s.reportRepo.TasksByAssignee(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by assignee: %w", err)
	}

	grouped := make(map[uint64][]models.Task, len(summaries))
	for _, task := range tasks {
		grouped[task.AssignedTo] = append(grouped[task.AssignedTo], task)
	}

	result := make([]EmployeeTasks, 0, len(summaries))
	for _, summary := range summaries {
		employeeTasks := grouped[summary.UserID]
		result = append(result, EmployeeTasks{
			EmployeeSummary: summary,
			Tasks:           pageSlice(employeeTasks, page, pageSize),
			TasksTotal:      len(employeeTasks),
		})
	}

	return result, nil
}

// summarize derives completion rate and efficiency from an aggregation row.
func summarize(row repository.EmployeeTaskRow) EmployeeSummary {
	summary := EmployeeSummary{
		UserID:              row.UserID,
		Name:                row.Name,
		Email:               row.Email,
		Department:          row.Department,
		TotalTasks:          row.TotalTasks,
		CompletedTasks:      row.CompletedTasks,
		InProgressTasks:     row.InProgressTasks,
		OverdueTasks:        row.OverdueTasks,
		TotalEstimatedHours: row.TotalEstimatedHours,
		TotalActualHours:    row.TotalActualHours,
		AvgProgress:         row.AvgProgress,
	}

	if row.TotalTasks > 0 {
		summary.CompletionRate = float64(row.CompletedTasks) / float64(row.TotalTasks) * 100
	}
	if row.TotalEstimatedHours > 0 && row.TotalActualHours > 0 {
		efficiency := row.TotalEstimatedHours / row.TotalActualHours * 100
		summary.Efficiency = &efficiency
	}

	return summary
}

// pageSlice returns the page-th window of size pageSize from tasks.
func pageSlice(tasks []models.Task, page, pageSize int) []models.Task {
	if page < 1 || pageSize < 1 {
		return tasks
	}

	start := (page - 1) * pageSize
	if start >= len(tasks) {
		return []models.Task{}
	}
	end := start + pageSize
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[start:end]
}
