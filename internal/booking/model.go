package booking

import (
	"fmt"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
)

var (
	ErrNotFound      = apperror.New(apperror.KindNotFound, "booking not found")
	ErrDateConflict  = apperror.New(apperror.KindConflict, "property is already booked for these dates")
	ErrStatusChanged = apperror.New(apperror.KindConflict, "booking status changed concurrently, please retry")
	ErrCheckInPast   = apperror.New(apperror.KindInvalidRequest, "check-in date cannot be in the past")
	ErrGuestCount    = apperror.New(apperror.KindInvalidRequest, "guest count exceeds property capacity")
	ErrNoGuests      = apperror.New(apperror.KindInvalidRequest, "at least one guest is required")
)

type Status int

const (
	StatusPending Status = iota + 1
	StatusApproved
	StatusDenied
	StatusCancelled
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusDenied:
		return "denied"
	case StatusCancelled:
		return "cancelled"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus maps a stored status value to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending":
		return StatusPending, nil
	case "approved":
		return StatusApproved, nil
	case "denied":
		return StatusDenied, nil
	case "cancelled":
		return StatusCancelled, nil
	case "completed":
		return StatusCompleted, nil
	}
	return 0, apperror.Wrap(fmt.Errorf("unknown booking status %q", s), apperror.KindInternal, "internal server error")
}

// activeStatuses are the statuses that hold dates on a property's calendar.
var activeStatuses = []Status{StatusPending, StatusApproved}

// IsActive reports whether a booking in this status blocks its dates.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

type Booking struct {
	ID             string
	PropertyID     string
	UserID         string // requester
	CheckIn        time.Time
	CheckOut       time.Time
	GuestCount     int
	TotalPrice     int64
	Status         Status
	SpecialRequest *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Stay returns the booked dates as a Range.
func (b *Booking) Stay() daterange.Range {
	return daterange.Range{CheckIn: daterange.Day(b.CheckIn), CheckOut: daterange.Day(b.CheckOut)}
}

type Filter struct {
	UserID     string
	PropertyID string
	Status     *Status
	From       *time.Time // bookings checking out after this date
	To         *time.Time // bookings checking in before this date
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
