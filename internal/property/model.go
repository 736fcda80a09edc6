package property

import (
	"fmt"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
)

var (
	ErrNotFound          = apperror.New(apperror.KindNotFound, "property not found")
	ErrInvalidRate       = apperror.New(apperror.KindInvalidRequest, "nightly rate must be greater than zero")
	ErrInvalidCapacity   = apperror.New(apperror.KindInvalidRequest, "max guests must be greater than zero")
	ErrInvalidRooms      = apperror.New(apperror.KindInvalidRequest, "bedrooms and bathrooms cannot be negative")
	ErrInvalidType       = apperror.New(apperror.KindInvalidRequest, "property type must be one of hotel, hostel, apartment")
	ErrTitleRequired     = apperror.New(apperror.KindInvalidRequest, "title is required")
	ErrInvalidPriceRange = apperror.New(apperror.KindInvalidRequest, "min price cannot exceed max price")
)

type Type string

const (
	TypeHotel     Type = "hotel"
	TypeHostel    Type = "hostel"
	TypeApartment Type = "apartment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeHotel, TypeHostel, TypeApartment:
		return true
	}
	return false
}

// parseType maps a stored property_type value.
func parseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", apperror.Wrap(fmt.Errorf("unknown property type %q", s), apperror.KindInternal, "internal server error")
	}
	return t, nil
}

// Property is a listing that guests can book.
// NightlyRate is in minor currency units.
type Property struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Type        Type
	Location    string
	Address     string
	City        string
	Country     string
	PostalCode  *string
	Latitude    *float64
	Longitude   *float64
	NightlyRate int64
	MaxGuests   int
	Bedrooms    int
	Bathrooms   int
	Amenities   []string
	Images      []string // file IDs
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Filter struct {
	Location        string // matched against location, city and country
	Type            Type
	MinPrice        *int64
	MaxPrice        *int64
	Guests          int
	Stay            *daterange.Range // only properties free for the whole stay
	OwnerID         string
	IncludeInactive bool

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
