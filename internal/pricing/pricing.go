// Package pricing derives the total price of a stay from a flat nightly rate.
package pricing

import (
	"math"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
)

var (
	ErrInvalidRange  = apperror.New(apperror.KindInvalidRequest, "stay must be at least one night")
	ErrInvalidRate   = apperror.New(apperror.KindInvalidRequest, "nightly rate must be positive")
	ErrTotalTooLarge = apperror.New(apperror.KindInvalidRequest, "total price is too large")
)

// Quote is the price breakdown of a stay. Amounts are in minor currency units.
type Quote struct {
	Nights      int
	NightlyRate int64
	Total       int64
}

// Price computes nights * nightlyRate for the stay.
func Price(nightlyRate int64, stay daterange.Range) (Quote, error) {
	nights := stay.Nights()
	if nights <= 0 {
		return Quote{}, ErrInvalidRange
	}
	if nightlyRate <= 0 {
		return Quote{}, ErrInvalidRate
	}
	if nightlyRate > math.MaxInt64/int64(nights) {
		return Quote{}, ErrTotalTooLarge
	}

	return Quote{
		Nights:      nights,
		NightlyRate: nightlyRate,
		Total:       int64(nights) * nightlyRate,
	}, nil
}
