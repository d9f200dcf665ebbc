package gate

import (
	"testing"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/stretchr/testify/assert"
)

func TestIsAssigned(t *testing.T) {
	progress := []foundryapi.Progress{
		{TrialID: "T1", DepartmentID: 5, Username: "ravi"},
		{TrialID: "T2", DepartmentID: 7, Username: "Asha"},
		{TrialID: "T3", DepartmentID: 6},
	}

	assert.True(t, IsAssigned(progress, "asha", 7))
	assert.False(t, IsAssigned(progress, "asha", 5))
	assert.True(t, IsAssigned(progress, "anyone", 6))
	assert.False(t, IsAssigned(nil, "asha", 7))

	assert.True(t, IsAssignedTrial(progress, "asha", 7, "T2"))
	assert.False(t, IsAssignedTrial(progress, "asha", 7, "T1"))
}

func TestNextDepartment(t *testing.T) {
	assert.Equal(t, entity.DepartmentSandPlant, NextDepartment(entity.DepartmentMethods))
	assert.Equal(t, entity.DepartmentMachineShop, NextDepartment(entity.DepartmentQuality))
	assert.Equal(t, entity.DepartmentClosed, NextDepartment(entity.DepartmentMachineShop))
	assert.Equal(t, entity.DepartmentClosed, NextDepartment(42))
}

func TestHODGatingWithToggle(t *testing.T) {
	s := &entity.FormSession{Kind: entity.KindDimensional, Role: "HOD", TrialID: "T1"}

	assert.ErrorIs(t, CheckEdit(s), ErrReadOnly)

	assert.True(t, ToggleEdit(s, true))
	assert.NoError(t, CheckEdit(s))

	assert.True(t, ToggleEdit(s, false))
	assert.ErrorIs(t, CheckEdit(s), ErrReadOnly)
}

func TestNonReviewerAlwaysEditable(t *testing.T) {
	fresh := &entity.FormSession{Kind: entity.KindVisual, Role: "User"}
	assert.NoError(t, CheckEdit(fresh))
	assert.False(t, ToggleEdit(fresh, true))

	hodNew := &entity.FormSession{Kind: entity.KindVisual, Role: "hod"}
	assert.NoError(t, CheckEdit(hodNew))
}

func TestRequests(t *testing.T) {
	s := &entity.FormSession{Kind: entity.KindVisual, Role: "HOD", TrialID: "T1", Username: "ravi"}

	adv := AdvanceRequest(s, "ok")
	assert.Equal(t, foundryapi.UpdateDepartmentRequest{
		TrialID: "T1", NextDepartmentID: entity.DepartmentMetallurgy, Username: "ravi", Role: "HOD", Remarks: "ok",
	}, adv)

	role := RoleUpdateRequest(s, "T1")
	assert.Equal(t, entity.DepartmentFettling, role.CurrentDepartmentID)
	assert.Equal(t, entity.ApprovalCompleted, role.ApprovalStatus)
}
