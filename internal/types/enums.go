package types

// Role is a member's role within a workspace.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAssigner Role = "assigner"
	RoleWorker   Role = "worker"
)

// ProjectRole is a member's role within a project. Projects reuse the
// assigner/worker subset of workspace roles; a user may hold both.
type ProjectRole string

const (
	ProjectRoleAssigner ProjectRole = "assigner"
	ProjectRoleWorker   ProjectRole = "worker"
)

// TaskStatus values
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Task Priority values
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ApprovalStatus values for workspace tasks. The zero state is represented as
// NULL in the database and as an empty string here.
type ApprovalStatus string

const (
	ApprovalNone            ApprovalStatus = ""
	ApprovalPendingApproval ApprovalStatus = "pending-approval"
	ApprovalApproved        ApprovalStatus = "approved"
	ApprovalRejected        ApprovalStatus = "rejected"
)

// ProjectStatus values
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
)

// Approval actions accepted by the approval endpoint
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// statusRotation is the toggle order for personal tasks.
var statusRotation = [3]TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

// NextStatus rotates a personal task's status: pending → in-progress →
// completed → pending.
func NextStatus(s TaskStatus) TaskStatus {
	for i, cur := range statusRotation {
		if cur == s {
			return statusRotation[(i+1)%len(statusRotation)]
		}
	}
	return StatusPending
}

func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleAssigner, RoleWorker:
		return true
	}
	return false
}

// IsValidProjectRole reports whether role is usable at project scope.
func IsValidProjectRole(role ProjectRole) bool {
	return role == ProjectRoleAssigner || role == ProjectRoleWorker
}

func IsValidProjectStatus(status ProjectStatus) bool {
	return status == ProjectActive || status == ProjectArchived
}

func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func IsValidPriority(priority Priority) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func IsValidApprovalAction(action string) bool {
	return action == ActionApprove || action == ActionReject
}
