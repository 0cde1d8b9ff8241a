package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleOrdering(t *testing.T) {
	roles := Roles()
	for i := 1; i < len(roles); i++ {
		assert.LessOrEqual(t, roles[i-1].Level(), roles[i].Level(), "%s should not outrank %s", roles[i-1], roles[i])
	}
	assert.Equal(t, 0, Role("INTERN").Level())
	assert.False(t, Role("INTERN").Valid())
}

func TestRoleManagerial(t *testing.T) {
	tests := []struct {
		role       Role
		managerial bool
	}{
		{RoleSales, false},
		{RoleBusinessDevelopment, false},
		{RoleOnboardingSpecialist, false},
		{RoleAreaSalesManager, true},
		{RoleZonalSalesManager, true},
		{RoleRegionalSalesManager, true},
		{RoleNationalSalesManager, true},
		{RoleAdmin, true},
		{Role("UNKNOWN"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.managerial, tt.role.Managerial())
		})
	}
}

func TestRoleCanManage(t *testing.T) {
	assert.True(t, RoleAdmin.CanManage(RoleNationalSalesManager))
	assert.True(t, RoleRegionalSalesManager.CanManage(RoleSales))
	assert.True(t, RoleAreaSalesManager.CanManage(RoleOnboardingSpecialist))
	assert.False(t, RoleAreaSalesManager.CanManage(RoleAreaSalesManager))
	assert.False(t, RoleZonalSalesManager.CanManage(RoleRegionalSalesManager))
	assert.False(t, RoleBusinessDevelopment.CanManage(RoleSales))
	assert.False(t, RoleAdmin.CanManage(Role("UNKNOWN")))
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleAreaSalesManager))
	assert.True(t, RoleAreaSalesManager.AtLeast(RoleAreaSalesManager))
	assert.False(t, RoleSales.AtLeast(RoleAreaSalesManager))
	assert.False(t, Role("").AtLeast(Role("")))
}
