package domain

// Role enumerates the seniority levels of the sales organization.
type Role string

const (
	RoleSales                Role = "SALES"
	RoleBusinessDevelopment  Role = "BUSINESS_DEVELOPMENT"
	RoleOnboardingSpecialist Role = "ONBOARDING_SPECIALIST"
	RoleAreaSalesManager     Role = "AREA_SALES_MANAGER"
	RoleZonalSalesManager    Role = "ZONAL_SALES_MANAGER"
	RoleRegionalSalesManager Role = "REGIONAL_SALES_MANAGER"
	RoleNationalSalesManager Role = "NATIONAL_SALES_MANAGER"
	RoleAdmin                Role = "ADMIN"
)

const baseRoleLevel = 1

var roleLevels = map[Role]int{
	RoleSales:                baseRoleLevel,
	RoleBusinessDevelopment:  baseRoleLevel,
	RoleOnboardingSpecialist: baseRoleLevel,
	RoleAreaSalesManager:     2,
	RoleZonalSalesManager:    3,
	RoleRegionalSalesManager: 4,
	RoleNationalSalesManager: 5,
	RoleAdmin:                6,
}

// Roles with no subordinates regardless of level.
var noSubordinateRoles = map[Role]struct{}{
	RoleBusinessDevelopment:  {},
	RoleOnboardingSpecialist: {},
}

// Roles lists every known role from most junior to most senior.
func Roles() []Role {
	return []Role{
		RoleSales,
		RoleBusinessDevelopment,
		RoleOnboardingSpecialist,
		RoleAreaSalesManager,
		RoleZonalSalesManager,
		RoleRegionalSalesManager,
		RoleNationalSalesManager,
		RoleAdmin,
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the seniority of r; unknown roles report 0.
func (r Role) Level() int {
	return roleLevels[r]
}

// Managerial reports whether users holding r may have subordinates.
func (r Role) Managerial() bool {
	if _, exempt := noSubordinateRoles[r]; exempt {
		return false
	}
	return r.Level() > baseRoleLevel
}

// CanManage reports whether a user with role r may be the direct manager of a user with role sub.
func (r Role) CanManage(sub Role) bool {
	return r.Managerial() && sub.Valid() && r.Level() > sub.Level()
}

// AtLeast reports whether r is at or above min in the seniority order.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Level() >= min.Level()
}
