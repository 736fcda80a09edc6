// Package daterange models a stay as a half-open range of calendar dates.
package daterange

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

const secondsPerDay = 24 * 60 * 60

var (
	ErrInvalidRange = apperror.New(apperror.KindInvalidRequest, "check-out must be after check-in")
	ErrInvalidDate  = apperror.New(apperror.KindInvalidRequest, "dates must use the YYYY-MM-DD format")
)

// Range is a stay from CheckIn (inclusive) to CheckOut (exclusive).
// Both ends are UTC midnights.
type Range struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New builds a Range from two dates, discarding any time-of-day.
func New(checkIn, checkOut time.Time) (Range, error) {
	r := Range{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if !r.CheckIn.Before(r.CheckOut) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// Parse builds a Range from two YYYY-MM-DD strings.
func Parse(checkIn, checkOut string) (Range, error) {
	in, err := time.Parse(time.DateOnly, checkIn)
	if err != nil {
		return Range{}, apperror.Wrap(err, apperror.KindInvalidRequest, ErrInvalidDate.Message)
	}
	out, err := time.Parse(time.DateOnly, checkOut)
	if err != nil {
		return Range{}, apperror.Wrap(err, apperror.KindInvalidRequest, ErrInvalidDate.Message)
	}
	return New(in, out)
}

// Nights returns the number of nights in the stay. A zero Range has none.
// Counted on Unix seconds since Time.Sub saturates for spans beyond ~292 years.
func (r Range) Nights() int {
	return int((r.CheckOut.Unix() - r.CheckIn.Unix()) / secondsPerDay)
}

// Overlaps reports whether two stays share at least one night.
// A check-out on the same day as another check-in does not overlap.
func (r Range) Overlaps(o Range) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

func (r Range) String() string {
	return r.CheckIn.Format(time.DateOnly) + "/" + r.CheckOut.Format(time.DateOnly)
}
