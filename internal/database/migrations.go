package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for filtering and sorting
		{"tasks", "idx_tasks_assigned_to", "assigned_to"},
		{"tasks", "idx_tasks_assigned_by", "assigned_by"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_priority", "priority"},
		{"tasks", "idx_tasks_category", "category"},
		{"tasks", "idx_tasks_due_date", "due_date"},
		{"tasks", "idx_tasks_created_at", "created_at"},

		// Comment and time-entry lookups by task
		{"task_comments", "idx_task_comments_task_id", "task_id"},
		{"time_entries", "idx_time_entries_task_id", "task_id"},

		// Dependency join table
		{"task_dependencies", "idx_task_dependencies_task_id", "task_id"},
		{"task_dependencies", "idx_task_dependencies_depends_on_id", "depends_on_id"},

		// User lookups
		{"users", "idx_users_role", "role"},
		{"users", "idx_users_department", "department"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
