package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleHR       UserRole = "hr"
	RoleEmployee UserRole = "employee"
)

// IsPrivileged reports whether the role carries management access
// (cross-user task visibility, task creation, reporting).
func (r UserRole) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleHR
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

type User struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	Department   string     `gorm:"type:varchar(100)" json:"department"`
	Status       UserStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	AssignedTasks []Task `gorm:"foreignKey:AssignedTo" json:"-"`
	CreatedTasks  []Task `gorm:"foreignKey:AssignedBy" json:"-"`
}
