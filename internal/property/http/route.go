package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g gin.IRouter, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/properties")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:id", h.Get)

	// === Authenticated Routes ===
	group.GET("/mine", authMiddleware, h.ListMine)
	group.POST("", authMiddleware, h.Create)
	group.PATCH("/:id", authMiddleware, h.Update)
	group.DELETE("/:id", authMiddleware, h.Deactivate)
	group.POST("/:id/images", authMiddleware, h.UploadImage)
}
