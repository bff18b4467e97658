// Package policy implements the role-based task access policy: which tasks a
// caller may see, which operations they may perform, and which fields they
// may change. Every function is a pure decision over the caller, the
// operation, and the task's current state; callers supply identity explicitly
// and the package performs no I/O.
package policy

import "github.com/Sayan-dev731/attendance-api/internal/models"

// Caller identifies the authenticated actor making a request.
type Caller struct {
	ID   uint64
	Role models.UserRole
}

// Relationship classifies a caller relative to a task for update gating.
type Relationship int

const (
	// RelationNone means the caller is neither privileged nor connected to
	// the task; mutating operations are denied outright.
	RelationNone Relationship = iota
	// RelationAssignee is the task's assigned_to user (non-privileged).
	RelationAssignee
	// RelationManager is any admin or hr caller, regardless of assignment.
	RelationManager
)

// RelationOf classifies the caller against the task. Admin/hr callers are
// managers even when they are also the assignee.
func RelationOf(caller Caller, task *models.Task) Relationship {
	if caller.Role.IsPrivileged() {
		return RelationManager
	}
	if task.AssignedTo == caller.ID {
		return RelationAssignee
	}
	return RelationNone
}

// ListScope resolves the assignee a task listing must be restricted to.
// Non-privileged callers are always scoped to their own tasks; any requested
// assignee is silently overridden, never an error. Privileged callers get
// the requested assignee when one is supplied, otherwise their own id (the
// personal dashboard view).
func ListScope(caller Caller, requestedAssignee *uint64) uint64 {
	if !caller.Role.IsPrivileged() {
		return caller.ID
	}
	if requestedAssignee != nil {
		return *requestedAssignee
	}
	return caller.ID
}

// CanRead reports whether the caller may read the task. Existence must be
// established before this is consulted so that a missing task is reported as
// not-found rather than access-denied.
func CanRead(caller Caller, task *models.Task) bool {
	return caller.Role.IsPrivileged() || task.AssignedTo == caller.ID
}

// CanCreate reports whether the caller may create tasks.
func CanCreate(caller Caller) bool {
	return caller.Role.IsPrivileged()
}

// CanDelete reports whether the caller may delete tasks. Deletion is
// admin-only; hr has no override.
func CanDelete(caller Caller) bool {
	return caller.Role == models.RoleAdmin
}

// CanComment reports whether the caller may append a comment: privileged
// callers, the assignee, and the task's creator.
func CanComment(caller Caller, task *models.Task) bool {
	return caller.Role.IsPrivileged() ||
		task.AssignedTo == caller.ID ||
		task.AssignedBy == caller.ID
}

// CanTrackTime reports whether the caller may append a time-tracking entry.
// Intentionally narrower than comment access: assignee only, with no
// admin/hr override.
func CanTrackTime(caller Caller, task *models.Task) bool {
	return task.AssignedTo == caller.ID
}

// updatableFields maps a relationship to the JSON keys that relationship may
// change on a task update. Keys absent from the set are silently dropped
// from the request, not rejected.
var updatableFields = map[Relationship][]string{
	RelationManager: {
		"title", "description", "priority", "assigned_to", "due_date",
		"estimated_hours", "category", "tags", "status", "progress",
		"dependencies", "completion_reason",
	},
	RelationAssignee: {
		"status", "progress", "actual_hours", "completion_reason",
	},
}

// UpdatableFields returns the set of JSON field names the caller may change
// on the task. The second return is false when the caller has no relationship
// that permits updating at all, in which case the operation is access-denied
// rather than a no-op.
func UpdatableFields(caller Caller, task *models.Task) (map[string]bool, bool) {
	rel := RelationOf(caller, task)
	fields, ok := updatableFields[rel]
	if !ok {
		return nil, false
	}

	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
	}
	return allowed, true
}
