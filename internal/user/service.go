package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
	"github.com/nekogravitycat/stay-booking-backend/internal/policy"
)

// Service defines business logic related to users.
type Service interface {
	// Register creates a guest account.
	Register(ctx context.Context, email, password, displayName string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// ResolveIdentity returns the stored role of an active user.
	ResolveIdentity(ctx context.Context, id string) (identity.AuthUser, error)

	CreatePropertyOwner(ctx context.Context, actor identity.AuthUser, email, password, displayName string) (*User, error)
	List(ctx context.Context, actor identity.AuthUser, filter Filter) ([]*User, int, error)
	Deactivate(ctx context.Context, actor identity.AuthUser, id string) error

	// EnsureAdmin creates the admin account unless one with that email already exists.
	EnsureAdmin(ctx context.Context, email, password string) (*User, bool, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewService(repo Repository, hasher auth.PasswordHasher, log logrus.FieldLogger) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
		log:    log.WithField("component", "user_service"),
		now:    time.Now,
	}
}

func (s *service) createUser(ctx context.Context, email, password, displayName string, role identity.Role) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" {
		return nil, ErrEmailRequired
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var displayNamePtr *string
	if d := strings.TrimSpace(displayName); d != "" {
		displayNamePtr = &d
	}

	u := &User{
		Email:        cleanEmail,
		PasswordHash: hash,
		DisplayName:  displayNamePtr,
		Role:         role,
		IsActive:     true,
	}

	// The unique index on email decides races between concurrent registrations.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": role.String()}).Info("user created")
	return u, nil
}

func (s *service) Register(ctx context.Context, email, password, displayName string) (*User, error) {
	return s.createUser(ctx, email, password, displayName, identity.RoleGuest)
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("failed to record last login")
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ResolveIdentity(ctx context.Context, id string) (identity.AuthUser, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return identity.AuthUser{}, ErrInactiveUser
		}
		return identity.AuthUser{}, err
	}
	if !u.IsActive {
		return identity.AuthUser{}, ErrInactiveUser
	}
	return u.Identity(), nil
}

func (s *service) CreatePropertyOwner(ctx context.Context, actor identity.AuthUser, email, password, displayName string) (*User, error) {
	if err := policy.Authorize(actor, policy.ActionProvisionOwner, policy.Resource{}); err != nil {
		return nil, err
	}
	return s.createUser(ctx, email, password, displayName, identity.RolePropertyOwner)
}

func (s *service) List(ctx context.Context, actor identity.AuthUser, filter Filter) ([]*User, int, error) {
	if err := policy.Authorize(actor, policy.ActionManageUsers, policy.Resource{}); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Deactivate(ctx context.Context, actor identity.AuthUser, id string) error {
	if err := policy.Authorize(actor, policy.ActionManageUsers, policy.Resource{}); err != nil {
		return err
	}
	if actor.ID == id {
		return ErrSelfDeactivation
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": id, "actor_id": actor.ID}).Info("user deactivated")
	return nil
}

func (s *service) EnsureAdmin(ctx context.Context, email, password string) (*User, bool, error) {
	existing, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
		if existing.Role != identity.RoleAdmin {
			return nil, false, ErrBootstrapConflict
		}
		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	u, err := s.createUser(ctx, email, password, "Administrator", identity.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
