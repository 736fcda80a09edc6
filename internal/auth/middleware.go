package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

// UserResolver loads the current role of a token subject.
// It fails with KindAuthenticationFailed for unknown or deactivated users.
type UserResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (identity.AuthUser, error)
}

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>
func AuthRequired(jwtManager *JWTManager, resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header format"})
			return
		}

		claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		actor, err := resolver.ResolveIdentity(c.Request.Context(), claims.UserID)
		if err != nil {
			if apperror.Is(err, apperror.KindAuthenticationFailed) || apperror.Is(err, apperror.KindNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account is unavailable"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		SetCurrentUser(c, actor)
		c.Next()
	}
}
