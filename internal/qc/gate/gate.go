// Package gate decides who may act on a trial at a department and builds
// the department-advance requests sent to the foundry API.
package gate

import (
	"errors"
	"strings"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
)

var (
	ErrReadOnly    = errors.New("form is read-only")
	ErrNotAssigned = errors.New("trial is not assigned to you at this department")
)

// IsAssigned reports whether any progress entry belongs to username at
// department. Entries without a username are already scoped to the caller.
func IsAssigned(progress []foundryapi.Progress, username string, department int) bool {
	for _, p := range progress {
		if p.DepartmentID != department {
			continue
		}
		if p.Username == "" || strings.EqualFold(p.Username, username) {
			return true
		}
	}
	return false
}

// IsAssignedTrial narrows IsAssigned to one trial.
func IsAssignedTrial(progress []foundryapi.Progress, username string, department int, trialID string) bool {
	var scoped []foundryapi.Progress
	for _, p := range progress {
		if p.TrialID == trialID {
			scoped = append(scoped, p)
		}
	}
	return IsAssigned(scoped, username, department)
}

// NextDepartment returns the stage after dept on the route, or
// entity.DepartmentClosed after the last stage.
func NextDepartment(dept int) int {
	for i, d := range entity.Route {
		if d.ID != dept {
			continue
		}
		if i+1 < len(entity.Route) {
			return entity.Route[i+1].ID
		}
		return entity.DepartmentClosed
	}
	return entity.DepartmentClosed
}

// Locked reports whether fields are disabled: an HOD reviewing an existing
// trial sees them read-only until the edit toggle is on.
func Locked(role, trialID string, editEnabled bool) bool {
	return entity.IsHOD(role) && trialID != "" && !editEnabled
}

// CheckEdit returns ErrReadOnly when the session's fields are locked.
func CheckEdit(s *entity.FormSession) error {
	if Locked(s.Role, s.TrialID, s.EditEnabled) {
		return ErrReadOnly
	}
	return nil
}

// ToggleEdit flips the HOD edit toggle. Turning it off keeps every edit
// made so far; it only re-locks the fields. Non-reviewers are always
// editable, so the toggle is a no-op for them.
func ToggleEdit(s *entity.FormSession, on bool) bool {
	if !s.IsReviewer() {
		return false
	}
	s.EditEnabled = on
	return true
}

// AdvanceRequest builds the HOD approval that moves the trial on.
func AdvanceRequest(s *entity.FormSession, remarks string) foundryapi.UpdateDepartmentRequest {
	return foundryapi.UpdateDepartmentRequest{
		TrialID:          s.TrialID,
		NextDepartmentID: NextDepartment(s.Kind.Department()),
		Username:         s.Username,
		Role:             s.Role,
		Remarks:          remarks,
	}
}

// RoleUpdateRequest builds the completion of the submitter's step.
func RoleUpdateRequest(s *entity.FormSession, trialID string) foundryapi.UpdateDepartmentRoleRequest {
	return foundryapi.UpdateDepartmentRoleRequest{
		TrialID:             trialID,
		CurrentDepartmentID: s.Kind.Department(),
		Username:            s.Username,
		Role:                s.Role,
		ApprovalStatus:      entity.ApprovalCompleted,
	}
}
