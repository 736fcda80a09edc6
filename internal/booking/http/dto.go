package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=pending approved denied cancelled completed"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	SortBy string `form:"sort_by" binding:"omitempty,oneof=check_in check_out created_at total_price status"`
}

type CreateBookingRequest struct {
	PropertyID     string  `json:"property_id" binding:"required,uuid"`
	CheckIn        string  `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut       string  `json:"check_out" binding:"required,datetime=2006-01-02"`
	GuestCount     int     `json:"guest_count" binding:"required,min=1"`
	SpecialRequest *string `json:"special_request" binding:"omitempty,max=1000"`
}

// AvailabilityRequest defines the query of the availability pre-flight.
type AvailabilityRequest struct {
	CheckIn  string `form:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut string `form:"check_out" binding:"required,datetime=2006-01-02"`
}

type AvailabilityResponse struct {
	Available   bool  `json:"available"`
	Nights      int   `json:"nights"`
	NightlyRate int64 `json:"nightly_rate"`
	TotalPrice  int64 `json:"total_price"`
}

type BookingResponse struct {
	ID             string    `json:"id"`
	PropertyID     string    `json:"property_id"`
	UserID         string    `json:"user_id"`
	CheckIn        string    `json:"check_in"`
	CheckOut       string    `json:"check_out"`
	Nights         int       `json:"nights"`
	GuestCount     int       `json:"guest_count"`
	TotalPrice     int64     `json:"total_price"`
	Status         string    `json:"status"`
	SpecialRequest *string   `json:"special_request"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	stay := b.Stay()
	return BookingResponse{
		ID:             b.ID,
		PropertyID:     b.PropertyID,
		UserID:         b.UserID,
		CheckIn:        stay.CheckIn.Format(time.DateOnly),
		CheckOut:       stay.CheckOut.Format(time.DateOnly),
		Nights:         stay.Nights(),
		GuestCount:     b.GuestCount,
		TotalPrice:     b.TotalPrice,
		Status:         b.Status.String(),
		SpecialRequest: b.SpecialRequest,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
