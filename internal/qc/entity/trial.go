package entity

import "strings"

// Roles
const (
	RoleHOD  = "HOD"
	RoleUser = "User"
)

// IsHOD reports whether role is the reviewer role.
func IsHOD(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), RoleHOD)
}

// Approval status values sent with department role updates.
const (
	ApprovalPending   = "pending"
	ApprovalCompleted = "completed"
	ApprovalApproved  = "approved"
)
