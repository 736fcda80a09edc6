package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g gin.IRouter, h *Handler, authMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	g.GET("/properties/:id/availability", h.Availability)

	// === Authenticated Routes ===
	g.GET("/properties/:id/bookings", authMiddleware, h.ListForProperty)

	group := g.Group("/bookings")
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("", h.ListMine)
		group.GET("/:id", h.Get)
		group.POST("/:id/approve", h.Approve)
		group.POST("/:id/deny", h.Deny)
		group.POST("/:id/cancel", h.Cancel)
	}
}
