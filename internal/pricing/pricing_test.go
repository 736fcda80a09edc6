package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
)

func TestPrice(t *testing.T) {
	stay, err := daterange.Parse("2024-06-01", "2024-06-04")
	require.NoError(t, err)

	q, err := Price(10000, stay)
	require.NoError(t, err)
	assert.Equal(t, Quote{Nights: 3, NightlyRate: 10000, Total: 30000}, q)
}

func TestPriceErrors(t *testing.T) {
	oneNight, err := daterange.Parse("2024-06-01", "2024-06-02")
	require.NoError(t, err)

	sameDay := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	zeroNights := daterange.Range{CheckIn: sameDay, CheckOut: sameDay}
	reversed := daterange.Range{CheckIn: sameDay.AddDate(0, 0, 2), CheckOut: sameDay}

	tests := []struct {
		name  string
		rate  int64
		stay  daterange.Range
		wants error
	}{
		{"zero nights", 10000, zeroNights, ErrInvalidRange},
		{"negative nights", 10000, reversed, ErrInvalidRange},
		{"zero value range", 10000, daterange.Range{}, ErrInvalidRange},
		{"zero rate", 0, oneNight, ErrInvalidRate},
		{"negative rate", -5, oneNight, ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Price(tt.rate, tt.stay)
			assert.ErrorIs(t, err, tt.wants)
			assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err))
		})
	}
}

func TestPriceOverflow(t *testing.T) {
	stay, err := daterange.Parse("2024-06-01", "2024-06-03")
	require.NoError(t, err)

	_, err = Price(math.MaxInt64/2+1, stay)
	assert.ErrorIs(t, err, ErrTotalTooLarge)

	q, err := Price(math.MaxInt64/2, stay)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64/2)*2, q.Total)
}

func TestPriceLongStay(t *testing.T) {
	stay, err := daterange.Parse("2000-01-01", "9999-12-31")
	require.NoError(t, err)

	q, err := Price(100, stay)
	require.NoError(t, err)
	assert.Equal(t, 2921939, q.Nights)
	assert.Equal(t, int64(292193900), q.Total)

	_, err = Price(math.MaxInt64/1000, stay)
	assert.ErrorIs(t, err, ErrTotalTooLarge)
}
