package models

import "time"

// TimeEntry is an append-only time-tracking record on a task.
// Duration is derived from the start/end pair and Date is the calendar
// day of the start time; neither is accepted from client input.
type TimeEntry struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	TaskID      uint64    `gorm:"not null;index" json:"task_id"`
	StartTime   time.Time `gorm:"not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	Duration    int       `gorm:"not null" json:"duration"`
	Date        time.Time `gorm:"not null" json:"date"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
