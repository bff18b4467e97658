package models

import "time"

// TaskDependency links a task to another task it depends on.
// Informational only; no cycle or ordering enforcement.
type TaskDependency struct {
	TaskID      uint64    `gorm:"primarykey" json:"task_id"`
	DependsOnID uint64    `gorm:"primarykey" json:"depends_on_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	DependsOn Task `gorm:"foreignKey:DependsOnID" json:"depends_on,omitempty"`
}
