package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	filehttp "github.com/nekogravitycat/stay-booking-backend/internal/file/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

var imageTypes = []string{"image/jpeg", "image/png", "image/webp"}

var errPartialStay = apperror.New(apperror.KindInvalidRequest, "check_in and check_out must be given together")

type Handler struct {
	service       property.Service
	fileHandler   *filehttp.Handler
	maxImageBytes int64
}

func NewHandler(service property.Service, fileHandler *filehttp.Handler, maxImageBytes int64) *Handler {
	return &Handler{
		service:       service,
		fileHandler:   fileHandler,
		maxImageBytes: maxImageBytes,
	}
}

// List searches active properties.
func (h *Handler) List(c *gin.Context) {
	var req ListPropertiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	req.Normalize()

	filter := property.Filter{
		Location:  strings.TrimSpace(req.Location),
		Type:      property.Type(req.Type),
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		Guests:    req.Guests,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: strings.ToUpper(req.SortOrder),
	}
	if (req.CheckIn == "") != (req.CheckOut == "") {
		response.Error(c, errPartialStay)
		return
	}
	if req.CheckIn != "" {
		stay, err := daterange.Parse(req.CheckIn, req.CheckOut)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.Stay = &stay
	}

	h.writePage(c, req.ListParams, func(ctx context.Context) ([]*property.Property, int, error) {
		return h.service.List(ctx, filter)
	})
}

// ListMine lists the current owner's properties, including deactivated ones.
func (h *Handler) ListMine(c *gin.Context) {
	actor, _ := auth.CurrentUser(c)

	var req request.ListParams
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	req.Normalize()

	filter := property.Filter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: strings.ToUpper(req.SortOrder),
	}
	h.writePage(c, req, func(ctx context.Context) ([]*property.Property, int, error) {
		return h.service.ListByOwner(ctx, actor, filter)
	})
}

func (h *Handler) writePage(c *gin.Context, params request.ListParams, list func(ctx context.Context) ([]*property.Property, int, error)) {
	props, total, err := list(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PropertyResponse, len(props))
	for i, p := range props {
		items[i] = NewPropertyResponse(p)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, params.Page, params.PageSize, total))
}

// Get returns an active property.
func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	p, err := h.service.GetActive(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPropertyResponse(p))
}

func (h *Handler) Create(c *gin.Context) {
	actor, _ := auth.CurrentUser(c)

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), actor, property.CreateRequest{
		Title:       req.Title,
		Description: req.Description,
		Type:        property.Type(req.Type),
		Location:    req.Location,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		PostalCode:  req.PostalCode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		NightlyRate: req.NightlyRate,
		MaxGuests:   req.MaxGuests,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Amenities:   req.Amenities,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPropertyResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	actor, _ := auth.CurrentUser(c)

	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	upd := property.UpdateRequest{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		PostalCode:  req.PostalCode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		NightlyRate: req.NightlyRate,
		MaxGuests:   req.MaxGuests,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Amenities:   req.Amenities,
	}
	if req.Type != nil {
		t := property.Type(*req.Type)
		upd.Type = &t
	}

	p, err := h.service.Update(c.Request.Context(), actor, uri.ID, upd)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPropertyResponse(p))
}

// Deactivate hides a property from search and blocks new bookings. Existing bookings are kept.
func (h *Handler) Deactivate(c *gin.Context) {
	actor, _ := auth.CurrentUser(c)

	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), actor, uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage attaches an uploaded photo to a property.
func (h *Handler) UploadImage(c *gin.Context) {
	actor, _ := auth.CurrentUser(c)

	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	// Refuse before accepting the upload.
	if err := h.service.CheckManage(c.Request.Context(), actor, uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	h.fileHandler.HandleFileUpload(c, filehttp.FileUploadConfig{
		MaxSizeBytes: h.maxImageBytes,
		AllowedTypes: imageTypes,
		ResizeImage:  true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			return h.service.AddImage(ctx, actor, uri.ID, fileID)
		},
	})
}
