// Package identity holds the authenticated actor model shared by every module.
package identity

import (
	"fmt"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

type Role int

const (
	RoleGuest Role = iota + 1
	RolePropertyOwner
	RoleAdmin
)

// String returns the persisted representation of the role.
func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RolePropertyOwner:
		return "property_owner"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole maps a stored role value to a Role.
// Unrecognized values are an internal error: they can only come from a corrupted row.
func ParseRole(s string) (Role, error) {
	switch s {
	case "guest":
		return RoleGuest, nil
	case "property_owner":
		return RolePropertyOwner, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, apperror.Wrap(fmt.Errorf("unknown role %q", s), apperror.KindInternal, "internal server error")
}

// AuthUser is the authenticated caller of an operation.
type AuthUser struct {
	ID   string
	Role Role
}

func (u AuthUser) IsAdmin() bool         { return u.Role == RoleAdmin }
func (u AuthUser) IsGuest() bool         { return u.Role == RoleGuest }
func (u AuthUser) IsPropertyOwner() bool { return u.Role == RolePropertyOwner }

// System is the actor used by background jobs.
var System = AuthUser{ID: "system", Role: RoleAdmin}
