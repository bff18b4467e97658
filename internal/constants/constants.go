package constants

// Context and session keys
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Pagination
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Auth
const MinPasswordLength = 8

// AI task generation
const MaxAIGeneratedTasks = 20
