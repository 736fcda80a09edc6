package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/file"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
)

// FileUploadConfig defines the configuration for generic file uploads
type FileUploadConfig struct {
	FormFieldName string                                         // default "file"
	MaxSizeBytes  int64                                          // 0 = no limit
	AllowedTypes  []string                                       // empty = allow all
	ResizeImage   bool                                           // require an image, stored as JPEG
	AfterUpload   func(ctx context.Context, fileID string) error // optional; failure rolls the upload back
}

// HandleFileUpload is a generic reusable handler for file uploads.
// It must run behind auth.AuthRequired.
func (h *Handler) HandleFileUpload(c *gin.Context, config FileUploadConfig) {
	actor, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldName + " is required"})
		return
	}

	ctx := c.Request.Context()
	f, err := h.fileService.Upload(ctx, file.UploadInput{
		FileHeader:   fileHeader,
		UserID:       actor.ID,
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
		ResizeImage:  config.ResizeImage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if config.AfterUpload != nil {
		if err := config.AfterUpload(ctx, f.ID); err != nil {
			// The request context may already be done.
			if delErr := h.fileService.Delete(context.WithoutCancel(ctx), f.ID); delErr != nil {
				h.log.WithError(delErr).WithField("file_id", f.ID).Error("failed to roll back upload")
			}
			response.Error(c, err)
			return
		}
	}

	var thumbURL *string
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		thumbURL = &t
	}

	c.JSON(http.StatusCreated, FileUploadResponse{
		FileID:       f.ID,
		URL:          file.FileURL(f.ID),
		ThumbnailURL: thumbURL,
		ContentType:  f.ContentType,
		Size:         f.Size,
	})
}
