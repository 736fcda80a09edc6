package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the public file routes. Uploads go through the owning module's handler.
func RegisterRoutes(r gin.IRouter, handler *Handler) {
	group := r.Group("/files")

	group.GET("/:id", handler.ServeFile)
	group.GET("/:id/thumbnail", handler.ServeThumbnail)
}
