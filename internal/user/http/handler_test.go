package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
	"github.com/nekogravitycat/stay-booking-backend/internal/policy"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
)

const userID = "5a4b3c2d-1e0f-4a9b-8c7d-6e5f4a3b2c1d"

// stubUsers holds a single account with password "correct horse".
type stubUsers struct {
	user.Service
	account     *user.User
	deactivated string
}

func newStubUsers(role identity.Role) *stubUsers {
	return &stubUsers{account: &user.User{ID: userID, Email: "ana@example.com", Role: role, IsActive: true}}
}

func (s *stubUsers) Register(ctx context.Context, email, password, displayName string) (*user.User, error) {
	if email == s.account.Email {
		return nil, user.ErrEmailAlreadyUsed
	}
	return &user.User{ID: "new", Email: email, Role: identity.RoleGuest, IsActive: true}, nil
}

func (s *stubUsers) Login(ctx context.Context, email, password string) (*user.User, error) {
	if email != s.account.Email || password != "correct horse" {
		return nil, user.ErrInvalidCredentials
	}
	return s.account, nil
}

func (s *stubUsers) GetByID(ctx context.Context, id string) (*user.User, error) {
	if id != s.account.ID {
		return nil, user.ErrNotFound
	}
	return s.account, nil
}

func (s *stubUsers) ResolveIdentity(ctx context.Context, id string) (identity.AuthUser, error) {
	if id != s.account.ID || !s.account.IsActive {
		return identity.AuthUser{}, user.ErrInactiveUser
	}
	return s.account.Identity(), nil
}

func (s *stubUsers) List(ctx context.Context, actor identity.AuthUser, filter user.Filter) ([]*user.User, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, policy.ErrDenied
	}
	return []*user.User{s.account}, 1, nil
}

func (s *stubUsers) Deactivate(ctx context.Context, actor identity.AuthUser, id string) error {
	if !actor.IsAdmin() {
		return policy.ErrDenied
	}
	s.deactivated = id
	return nil
}

func setup(svc *stubUsers) (*gin.Engine, *auth.JWTManager) {
	gin.SetMode(gin.TestMode)
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute)
	r := gin.New()
	RegisterRoutes(r, NewHandler(svc, jwtManager), auth.AuthRequired(jwtManager, svc))
	return r, jwtManager
}

func call(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginAndMe(t *testing.T) {
	svc := newStubUsers(identity.RoleGuest)
	r, _ := setup(svc)

	w := call(r, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, int64(900), login.ExpiresIn)
	assert.Equal(t, "guest", login.User.Role)

	w = call(r, http.MethodGet, "/me", "", login.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var me MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, userID, me.User.ID)

	// A deactivated account loses access even with a live token.
	svc.account.IsActive = false
	w = call(r, http.MethodGet, "/me", "", login.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister(t *testing.T) {
	r, _ := setup(newStubUsers(identity.RoleGuest))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"created", `{"email":"new@example.com","password":"longenough"}`, http.StatusCreated},
		{"taken", `{"email":"ana@example.com","password":"longenough"}`, http.StatusConflict},
		{"short password", `{"email":"new@example.com","password":"short"}`, http.StatusBadRequest},
		{"bad email", `{"email":"nope","password":"longenough"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(r, http.MethodPost, "/auth/register", tt.body, "")
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	t.Run("guest is forbidden", func(t *testing.T) {
		svc := newStubUsers(identity.RoleGuest)
		r, jwtManager := setup(svc)
		token, err := jwtManager.GenerateAccessToken(svc.account.Identity())
		require.NoError(t, err)

		w := call(r, http.MethodGet, "/admin/users", "", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin lists and deactivates", func(t *testing.T) {
		svc := newStubUsers(identity.RoleAdmin)
		r, jwtManager := setup(svc)
		token, err := jwtManager.GenerateAccessToken(svc.account.Identity())
		require.NoError(t, err)

		w := call(r, http.MethodGet, "/admin/users?role=admin&page_size=5", "", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"page_size":5`)

		target := "0f1e2d3c-4b5a-4978-8695-a4b3c2d1e0f9"
		w = call(r, http.MethodPost, "/admin/users/"+target+"/deactivate", "", token)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, target, svc.deactivated)
	})

	t.Run("missing token", func(t *testing.T) {
		r, _ := setup(newStubUsers(identity.RoleAdmin))
		w := call(r, http.MethodGet, "/admin/users", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
