package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/file"
	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var testActor = identity.AuthUser{ID: "owner-1", Role: identity.RolePropertyOwner}

type fakeFileService struct {
	uploaded file.UploadInput
	deleted  []string
}

func (f *fakeFileService) Upload(ctx context.Context, in file.UploadInput) (*file.File, error) {
	f.uploaded = in
	thumb := "upload/ab/thumb.jpg"
	return &file.File{ID: "f-1", ContentType: "image/jpeg", Size: 42, ThumbnailPath: &thumb}, nil
}

func (f *fakeFileService) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeFileService) Get(ctx context.Context, id string) (*file.File, error) {
	return nil, file.ErrNotFound
}

func (f *fakeFileService) Download(ctx context.Context, id string) (io.ReadCloser, *file.File, error) {
	if id != "6f1c2b52-3f0e-4a63-9d5b-1a2b3c4d5e6f" {
		return nil, nil, file.ErrNotFound
	}
	return io.NopCloser(strings.NewReader("payload")), &file.File{ID: id, Filename: "room.jpg", ContentType: "image/jpeg"}, nil
}

func (f *fakeFileService) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *file.File, error) {
	return nil, nil, file.ErrNoThumbnail
}

func multipartRequest(t *testing.T, field string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "room.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func uploadRouter(h *Handler, cfg FileUploadConfig, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/upload", func(c *gin.Context) {
		if authenticated {
			auth.SetCurrentUser(c, testActor)
		}
		h.HandleFileUpload(c, cfg)
	})
	return r
}

func TestHandleFileUpload(t *testing.T) {
	logger, _ := test.NewNullLogger()

	t.Run("success runs hook", func(t *testing.T) {
		svc := &fakeFileService{}
		var hooked string
		cfg := FileUploadConfig{
			MaxSizeBytes: 1024,
			ResizeImage:  true,
			AfterUpload: func(ctx context.Context, fileID string) error {
				hooked = fileID
				return nil
			},
		}
		w := httptest.NewRecorder()
		uploadRouter(NewHandler(svc, logger), cfg, true).ServeHTTP(w, multipartRequest(t, "file"))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "f-1", hooked)
		assert.Equal(t, testActor.ID, svc.uploaded.UserID)
		assert.True(t, svc.uploaded.ResizeImage)
		assert.Contains(t, w.Body.String(), "/v1/files/f-1/thumbnail")
		assert.Empty(t, svc.deleted)
	})

	t.Run("hook failure rolls back", func(t *testing.T) {
		svc := &fakeFileService{}
		cfg := FileUploadConfig{
			AfterUpload: func(ctx context.Context, fileID string) error {
				return apperror.New(apperror.KindAuthorizationDenied, "not your property")
			},
		}
		w := httptest.NewRecorder()
		uploadRouter(NewHandler(svc, logger), cfg, true).ServeHTTP(w, multipartRequest(t, "file"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, []string{"f-1"}, svc.deleted)
	})

	t.Run("missing field", func(t *testing.T) {
		w := httptest.NewRecorder()
		uploadRouter(NewHandler(&fakeFileService{}, logger), FileUploadConfig{FormFieldName: "image"}, true).
			ServeHTTP(w, multipartRequest(t, "file"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "image is required")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		uploadRouter(NewHandler(&fakeFileService{}, logger), FileUploadConfig{}, false).
			ServeHTTP(w, multipartRequest(t, "file"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestServeFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	r := gin.New()
	RegisterRoutes(r, NewHandler(&fakeFileService{}, logger))

	tests := []struct {
		path string
		want int
	}{
		{"/files/6f1c2b52-3f0e-4a63-9d5b-1a2b3c4d5e6f", http.StatusOK},
		{"/files/00000000-0000-4000-8000-000000000000", http.StatusNotFound},
		{"/files/not-a-uuid", http.StatusBadRequest},
		{"/files/6f1c2b52-3f0e-4a63-9d5b-1a2b3c4d5e6f/thumbnail", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.want, w.Code, tt.path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/6f1c2b52-3f0e-4a63-9d5b-1a2b3c4d5e6f", nil))
	assert.Equal(t, "payload", w.Body.String())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "room.jpg")
}
