package models

import "time"

// TaskComment is an append-only comment on a task, ordered by insertion.
type TaskComment struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	AuthorID  uint64    `gorm:"not null" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
