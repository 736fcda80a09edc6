package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
)

const authUserKey = "authUser"

// SetCurrentUser stores u as the request's actor.
func SetCurrentUser(c *gin.Context, u identity.AuthUser) {
	c.Set(authUserKey, u)
}

// CurrentUser returns the actor stored by AuthRequired.
func CurrentUser(c *gin.Context) (identity.AuthUser, bool) {
	v, ok := c.Get(authUserKey)
	if !ok {
		return identity.AuthUser{}, false
	}
	u, ok := v.(identity.AuthUser)
	return u, ok
}
