package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	actor, _ := auth.CurrentUser(c)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	stay, err := daterange.Parse(req.CheckIn, req.CheckOut)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.RequestBooking(c.Request.Context(), actor, booking.CreateRequest{
		PropertyID:     req.PropertyID,
		CheckIn:        stay.CheckIn,
		CheckOut:       stay.CheckOut,
		GuestCount:     req.GuestCount,
		SpecialRequest: req.SpecialRequest,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	actor, _ := auth.CurrentUser(c)

	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), actor, req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// ListMine lists the bookings requested by the current user.
func (h *Handler) ListMine(c *gin.Context) {
	actor, _ := auth.CurrentUser(c)

	filter, req, ok := bindFilter(c)
	if !ok {
		return
	}

	bookings, total, err := h.service.ListMine(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, bookings, req, total)
}

// ListForProperty lists every booking of a property for its owner or an admin.
func (h *Handler) ListForProperty(c *gin.Context) {
	actor, _ := auth.CurrentUser(c)

	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	filter, req, ok := bindFilter(c)
	if !ok {
		return
	}

	bookings, total, err := h.service.ListForProperty(c.Request.Context(), actor, uri.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, bookings, req, total)
}

func (h *Handler) Approve(c *gin.Context) {
	h.transition(c, booking.StatusApproved)
}

func (h *Handler) Deny(c *gin.Context) {
	h.transition(c, booking.StatusDenied)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, booking.StatusCancelled)
}

func (h *Handler) transition(c *gin.Context, target booking.Status) {
	actor, _ := auth.CurrentUser(c)

	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.TransitionBooking(c.Request.Context(), actor, req.ID, target)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Availability answers whether a property is free for a stay and what it would cost.
func (h *Handler) Availability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	stay, err := daterange.Parse(req.CheckIn, req.CheckOut)
	if err != nil {
		response.Error(c, err)
		return
	}

	a, err := h.service.Quote(c.Request.Context(), uri.ID, stay)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		Available:   a.Available,
		Nights:      a.Quote.Nights,
		NightlyRate: a.Quote.NightlyRate,
		TotalPrice:  a.Quote.Total,
	})
}

// bindFilter binds list query parameters; on failure it has already written the response.
func bindFilter(c *gin.Context) (booking.Filter, ListBookingsRequest, bool) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return booking.Filter{}, req, false
	}
	req.Normalize()

	filter := booking.Filter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: strings.ToUpper(req.SortOrder),
	}
	if req.Status != "" {
		st, err := booking.ParseStatus(req.Status)
		if err != nil {
			response.Error(c, err)
			return booking.Filter{}, req, false
		}
		filter.Status = &st
	}
	if req.From != "" {
		from, _ := time.Parse(time.DateOnly, req.From)
		filter.From = &from
	}
	if req.To != "" {
		to, _ := time.Parse(time.DateOnly, req.To)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		response.Error(c, daterange.ErrInvalidRange)
		return booking.Filter{}, req, false
	}
	return filter, req, true
}

func writePage(c *gin.Context, bookings []*booking.Booking, req ListBookingsRequest, total int) {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}
