package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/file"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

// ListPropertiesRequest defines the search parameters of the public listing.
// check_in and check_out must be given together.
type ListPropertiesRequest struct {
	request.ListParams
	Location string `form:"location"`
	Type     string `form:"type" binding:"omitempty,oneof=hotel hostel apartment"`
	MinPrice *int64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice *int64 `form:"max_price" binding:"omitempty,min=0"`
	Guests   int    `form:"guests" binding:"omitempty,min=1"`
	CheckIn  string `form:"check_in" binding:"omitempty,datetime=2006-01-02"`
	CheckOut string `form:"check_out" binding:"omitempty,datetime=2006-01-02"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=created_at nightly_rate max_guests title"`
}

type ImageResponse struct {
	FileID       string `json:"file_id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type PropertyResponse struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Location    string          `json:"location"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	Country     string          `json:"country"`
	PostalCode  *string         `json:"postal_code"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	NightlyRate int64           `json:"nightly_rate"`
	MaxGuests   int             `json:"max_guests"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	Amenities   []string        `json:"amenities"`
	Images      []ImageResponse `json:"images"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewPropertyResponse(p *property.Property) PropertyResponse {
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	images := make([]ImageResponse, len(p.Images))
	for i, id := range p.Images {
		images[i] = ImageResponse{FileID: id, URL: file.FileURL(id), ThumbnailURL: file.ThumbnailURL(id)}
	}

	return PropertyResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Title:       p.Title,
		Description: p.Description,
		Type:        string(p.Type),
		Location:    p.Location,
		Address:     p.Address,
		City:        p.City,
		Country:     p.Country,
		PostalCode:  p.PostalCode,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		NightlyRate: p.NightlyRate,
		MaxGuests:   p.MaxGuests,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Amenities:   amenities,
		Images:      images,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type CreatePropertyRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description"`
	Type        string   `json:"type" binding:"required,oneof=hotel hostel apartment"`
	Location    string   `json:"location"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	PostalCode  *string  `json:"postal_code"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	NightlyRate int64    `json:"nightly_rate" binding:"required,min=1"`
	MaxGuests   int      `json:"max_guests" binding:"required,min=1"`
	Bedrooms    int      `json:"bedrooms" binding:"min=0"`
	Bathrooms   int      `json:"bathrooms" binding:"min=0"`
	Amenities   []string `json:"amenities"`
}

type UpdatePropertyRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=200"`
	Description *string  `json:"description"`
	Type        *string  `json:"type" binding:"omitempty,oneof=hotel hostel apartment"`
	Location    *string  `json:"location"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	Country     *string  `json:"country"`
	PostalCode  *string  `json:"postal_code"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	NightlyRate *int64   `json:"nightly_rate" binding:"omitempty,min=1"`
	MaxGuests   *int     `json:"max_guests" binding:"omitempty,min=1"`
	Bedrooms    *int     `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms   *int     `json:"bathrooms" binding:"omitempty,min=0"`
	Amenities   []string `json:"amenities"`
}
