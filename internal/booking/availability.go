package booking

import (
	"context"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
)

// ActiveLister loads the bookings that currently hold dates on a property.
type ActiveLister interface {
	ListActiveByProperty(ctx context.Context, propertyID string) ([]*Booking, error)
}

// Checker answers whether a property is free for a stay.
type Checker struct {
	store ActiveLister
}

func NewChecker(store ActiveLister) *Checker {
	return &Checker{store: store}
}

// IsAvailable reports whether no pending or approved booking on the property overlaps stay.
// The answer is advisory: Repository.Create re-checks under the property lock before inserting.
func (c *Checker) IsAvailable(ctx context.Context, propertyID string, stay daterange.Range) (bool, error) {
	active, err := c.store.ListActiveByProperty(ctx, propertyID)
	if err != nil {
		return false, err
	}
	return len(Conflicts(active, stay)) == 0, nil
}

// Conflicts returns the active bookings whose dates overlap stay.
func Conflicts(bookings []*Booking, stay daterange.Range) []*Booking {
	var out []*Booking
	for _, b := range bookings {
		if !b.Status.IsActive() {
			continue
		}
		if b.Stay().Overlaps(stay) {
			out = append(out, b)
		}
	}
	return out
}

// conflictGuard is the insert-time guard used by RequestBooking.
func conflictGuard(stay daterange.Range) Guard {
	return func(active []*Booking) error {
		if len(Conflicts(active, stay)) > 0 {
			return ErrDateConflict
		}
		return nil
	}
}
