package auth

import (
	"fmt"

	"projector/internal/domain"
)

// ForbiddenError indicates missing permission.
type ForbiddenError struct {
	Permission string
}

func (e ForbiddenError) Error() string {
	return fmt.Sprintf("permission %s required", e.Permission)
}

const (
	PermManageEmployees = "employees.manage"
	PermManageCatalog   = "catalog.manage"
	PermWritePrograms   = "programs.write"
)

var rolePermissions = map[domain.Role][]string{
	domain.RoleProcurementManager: {PermManageEmployees, PermManageCatalog, PermWritePrograms},
	domain.RoleTeamLeader:         {PermManageCatalog, PermWritePrograms},
	domain.RoleProcurementOfficer: {PermWritePrograms},
	domain.RoleJuniorOfficer:      {PermWritePrograms},
}

// Permissions lists what a role may do.
func Permissions(role domain.Role) []string {
	return append([]string(nil), rolePermissions[role]...)
}

func (id Identity) Can(perm string) bool {
	for _, p := range rolePermissions[id.Role] {
		if p == perm {
			return true
		}
	}
	return false
}

// Require returns ForbiddenError when the identity lacks perm.
func Require(id Identity, perm string) error {
	if !id.Can(perm) {
		return ForbiddenError{Permission: perm}
	}
	return nil
}
