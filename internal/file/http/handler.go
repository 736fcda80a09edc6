package http

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/file"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
	log         logrus.FieldLogger
}

func NewHandler(fileService file.Service, log logrus.FieldLogger) *Handler {
	return &Handler{
		fileService: fileService,
		log:         log,
	}
}

func (h *Handler) stream(c *gin.Context, body io.ReadCloser, contentType, filename string) {
	defer body.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, body); err != nil {
		// headers are already sent
		h.log.WithError(err).WithField("path", c.Request.URL.Path).Warn("file stream interrupted")
	}
}

// ServeFile serves the file content by ID.
func (h *Handler) ServeFile(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	body, info, err := h.fileService.Download(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, body, info.ContentType, info.Filename)
}

// ServeThumbnail serves the JPEG thumbnail of an image file.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	body, info, err := h.fileService.DownloadThumbnail(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, body, "image/jpeg", info.ID+"_thumb.jpg")
}
