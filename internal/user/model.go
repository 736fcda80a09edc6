package user

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(apperror.KindNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(apperror.KindConflict, "email already used")
	ErrInvalidCredentials = apperror.New(apperror.KindAuthenticationFailed, "invalid email or password")
	ErrInactiveUser       = apperror.New(apperror.KindAuthenticationFailed, "account is unavailable")
	ErrEmailRequired      = apperror.New(apperror.KindInvalidRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(apperror.KindInvalidRequest, "password must be at least 8 characters")
	ErrSelfDeactivation   = apperror.New(apperror.KindInvalidRequest, "admins cannot deactivate themselves")
	ErrBootstrapConflict  = apperror.New(apperror.KindConflict, "bootstrap admin email belongs to a non-admin account")
)

const minPasswordLength = 8

// User represents an account. Users are deactivated, never deleted.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	Role         identity.Role
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Identity returns the user as an actor for policy checks.
func (u *User) Identity() identity.AuthUser {
	return identity.AuthUser{ID: u.ID, Role: u.Role}
}

// Filter defines filter options for listing users.
type Filter struct {
	Email       string
	DisplayName string
	Role        *identity.Role
	IsActive    *bool

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
