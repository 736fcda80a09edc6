package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers auth, profile and user administration routes.
func RegisterRoutes(g gin.IRouter, h *UserHandler, authMiddleware gin.HandlerFunc) {
	// Public Routes
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// Authenticated Routes
	g.GET("/me", authMiddleware, h.Me)

	// Admin Routes; the admin role is enforced by the user service.
	adminGroup := g.Group("/admin")
	adminGroup.Use(authMiddleware)
	{
		adminGroup.POST("/property-owners", h.CreatePropertyOwner)
		adminGroup.GET("/users", h.List)
		adminGroup.POST("/users/:id/deactivate", h.Deactivate)
	}
}
