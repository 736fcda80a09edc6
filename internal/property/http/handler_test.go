package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/file"
	filehttp "github.com/nekogravitycat/stay-booking-backend/internal/file/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
	"github.com/nekogravitycat/stay-booking-backend/internal/policy"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

const propertyID = "3e2d1c0b-9a8f-4e7d-b6c5-a4b3c2d1e0f9"

var owner = identity.AuthUser{ID: "owner-1", Role: identity.RolePropertyOwner}

type stubProperties struct {
	property.Service
	listed    property.Filter
	manageErr error
	added     []string
}

func (s *stubProperties) List(ctx context.Context, filter property.Filter) ([]*property.Property, int, error) {
	s.listed = filter
	return []*property.Property{{ID: propertyID, Title: "Loft", Type: property.TypeApartment}}, 1, nil
}

func (s *stubProperties) GetActive(ctx context.Context, id string) (*property.Property, error) {
	if id != propertyID {
		return nil, property.ErrNotFound
	}
	return &property.Property{ID: id, OwnerID: owner.ID, Title: "Loft", Type: property.TypeApartment, Images: []string{"img-1"}, IsActive: true}, nil
}

func (s *stubProperties) CheckManage(ctx context.Context, actor identity.AuthUser, id string) error {
	return s.manageErr
}

func (s *stubProperties) AddImage(ctx context.Context, actor identity.AuthUser, id, fileID string) error {
	s.added = append(s.added, fileID)
	return nil
}

type stubFiles struct {
	file.Service
	uploads int
}

func (f *stubFiles) Upload(ctx context.Context, in file.UploadInput) (*file.File, error) {
	f.uploads++
	return &file.File{ID: "img-2", ContentType: "image/jpeg", Size: 10}, nil
}

func newRouter(props property.Service, files file.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	r := gin.New()
	asOwner := func(c *gin.Context) {
		auth.SetCurrentUser(c, owner)
		c.Next()
	}
	RegisterRoutes(r, NewHandler(props, filehttp.NewHandler(files, logger), 1<<20), asOwner)
	return r
}

func imageUpload(t *testing.T, path string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "room.jpg")
	require.NoError(t, err)
	_, err = io.WriteString(part, "not really a jpeg")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestListProperties(t *testing.T) {
	props := &stubProperties{}
	r := newRouter(props, &stubFiles{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties?location=lisbon&guests=2&check_in=2030-06-01&check_out=2030-06-04", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, props.listed.Stay)
	assert.Equal(t, 3, props.listed.Stay.Nights())
	assert.Equal(t, "lisbon", props.listed.Location)
	assert.Equal(t, 2, props.listed.Guests)

	for _, q := range []string{"check_in=2030-06-01", "check_in=2030-06-04&check_out=2030-06-01", "type=castle"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestGetProperty(t *testing.T) {
	r := newRouter(&stubProperties{}, &stubFiles{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties/"+propertyID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp PropertyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Images, 1)
	assert.Equal(t, "/v1/files/img-1", resp.Images[0].URL)
	assert.Equal(t, []string{}, resp.Amenities)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties/9f8e7d6c-5b4a-4c3d-a2b1-0f9e8d7c6b5a", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadImage(t *testing.T) {
	t.Run("attaches the upload", func(t *testing.T) {
		props := &stubProperties{}
		files := &stubFiles{}
		w := httptest.NewRecorder()
		newRouter(props, files).ServeHTTP(w, imageUpload(t, "/properties/"+propertyID+"/images"))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, []string{"img-2"}, props.added)
	})

	t.Run("non-owner is refused before upload", func(t *testing.T) {
		props := &stubProperties{manageErr: policy.ErrDenied}
		files := &stubFiles{}
		w := httptest.NewRecorder()
		newRouter(props, files).ServeHTTP(w, imageUpload(t, "/properties/"+propertyID+"/images"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Zero(t, files.uploads)
		assert.Empty(t, props.added)
	})
}
