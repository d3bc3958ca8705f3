package service

import "github.com/aussiebroadwan/pulse/internal/pulse/domain"

// Permission names an administrative capability.
type Permission string

const (
	PermManageRoles Permission = "roles:manage"
	PermReadRoles   Permission = "roles:read"
	PermInviteUsers Permission = "users:invite"
)

// Authorize is the first call of every tenant scoped operation. Only the
// creator of a company holds any Permission, and only within the company
// they created. It returns ErrNotOwner before anything is looked up, so a
// rejected caller learns nothing about other tenants.
func Authorize(actor domain.User, perm Permission) error {
	switch perm {
	case PermManageRoles, PermReadRoles, PermInviteUsers:
	default:
		return ErrNotOwner
	}
	if !actor.IsCreator || actor.OwnCompanyID == "" {
		return ErrNotOwner
	}
	return nil
}
