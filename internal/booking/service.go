package booking

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/stay-booking-backend/internal/policy"
	"github.com/nekogravitycat/stay-booking-backend/internal/pricing"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

// maxTransitionAttempts bounds retries after losing a status compare-and-swap.
const maxTransitionAttempts = 2

const completionBatchSize = 200

// PropertyFinder is the property lookup the booking service depends on.
type PropertyFinder interface {
	GetActive(ctx context.Context, id string) (*property.Property, error)
	GetByID(ctx context.Context, id string) (*property.Property, error)
}

type CreateRequest struct {
	PropertyID     string
	CheckIn        time.Time
	CheckOut       time.Time
	GuestCount     int
	SpecialRequest *string
}

// Availability is the pre-flight answer for a stay.
type Availability struct {
	Available bool
	Quote     pricing.Quote
}

// CompletionResult counts the outcome of one CompleteDue run.
type CompletionResult struct {
	Completed int
	Failed    int
}

type Service interface {
	// RequestBooking creates a pending booking after checking capacity, dates and availability.
	RequestBooking(ctx context.Context, actor identity.AuthUser, req CreateRequest) (*Booking, error)
	// TransitionBooking moves a booking to target if the lifecycle and the actor allow it.
	// The lifecycle is checked before the actor, so any caller can tell a terminal
	// booking (InvalidTransition) from a live one they may not touch (Forbidden).
	TransitionBooking(ctx context.Context, actor identity.AuthUser, id string, target Status) (*Booking, error)

	IsAvailable(ctx context.Context, propertyID string, stay daterange.Range) (bool, error)
	Quote(ctx context.Context, propertyID string, stay daterange.Range) (*Availability, error)

	GetByID(ctx context.Context, actor identity.AuthUser, id string) (*Booking, error)
	ListMine(ctx context.Context, actor identity.AuthUser, filter Filter) ([]*Booking, int, error)
	ListForProperty(ctx context.Context, actor identity.AuthUser, propertyID string, filter Filter) ([]*Booking, int, error)

	// CompleteDue completes approved bookings whose check-out date is before now's date.
	CompleteDue(ctx context.Context, now time.Time) (CompletionResult, error)
}

type Option func(*service)

// WithClock overrides the time source used to reject past check-in dates.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	repo       Repository
	properties PropertyFinder
	checker    *Checker
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewService(repo Repository, properties PropertyFinder, log logrus.FieldLogger, opts ...Option) Service {
	s := &service{
		repo:       repo,
		properties: properties,
		checker:    NewChecker(repo),
		log:        log.WithField("component", "booking_service"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) RequestBooking(ctx context.Context, actor identity.AuthUser, req CreateRequest) (*Booking, error) {
	prop, err := s.properties.GetActive(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, policy.ActionCreateBooking, policy.Resource{OwnerID: prop.OwnerID}); err != nil {
		return nil, err
	}

	stay, err := daterange.New(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if stay.CheckIn.Before(daterange.Day(s.now())) {
		return nil, ErrCheckInPast
	}
	if req.GuestCount < 1 {
		return nil, ErrNoGuests
	}
	if req.GuestCount > prop.MaxGuests {
		return nil, ErrGuestCount
	}

	quote, err := pricing.Price(prop.NightlyRate, stay)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		PropertyID:     prop.ID,
		UserID:         actor.ID,
		CheckIn:        stay.CheckIn,
		CheckOut:       stay.CheckOut,
		GuestCount:     req.GuestCount,
		TotalPrice:     quote.Total,
		Status:         StatusPending,
		SpecialRequest: req.SpecialRequest,
	}

	if err := s.repo.Create(ctx, b, conflictGuard(stay)); err != nil {
		if errors.Is(err, ErrDateConflict) {
			s.log.WithFields(logrus.Fields{
				"property_id": prop.ID,
				"stay":        stay.String(),
			}).Info("booking rejected: dates unavailable")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":  b.ID,
		"property_id": b.PropertyID,
		"user_id":     b.UserID,
		"stay":        stay.String(),
		"total_price": b.TotalPrice,
	}).Info("booking requested")

	return b, nil
}

var transitionActions = map[Status]policy.Action{
	StatusApproved:  policy.ActionApproveBooking,
	StatusDenied:    policy.ActionDenyBooking,
	StatusCancelled: policy.ActionCancelBooking,
	StatusCompleted: policy.ActionCompleteBooking,
}

func (s *service) TransitionBooking(ctx context.Context, actor identity.AuthUser, id string, target Status) (*Booking, error) {
	for attempt := 1; ; attempt++ {
		b, err := s.transitionOnce(ctx, actor, id, target)
		if errors.Is(err, ErrStatusChanged) && attempt < maxTransitionAttempts {
			s.log.WithFields(logrus.Fields{"booking_id": id, "target": target.String()}).
				Warn("booking status changed concurrently, retrying with fresh read")
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.WithFields(logrus.Fields{
			"booking_id": b.ID,
			"status":     b.Status.String(),
			"actor_id":   actor.ID,
		}).Info("booking transitioned")
		return b, nil
	}
}

// transitionOnce is one read-check-CAS round of TransitionBooking.
func (s *service) transitionOnce(ctx context.Context, actor identity.AuthUser, id string, target Status) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prop, err := s.properties.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}

	// Lifecycle first: an impossible move fails the same way for every actor.
	if err := CheckTransition(b.Status, target); err != nil {
		return nil, err
	}

	res := policy.Resource{OwnerID: prop.OwnerID, RequesterID: b.UserID}
	if err := policy.Authorize(actor, transitionActions[target], res); err != nil {
		return nil, err
	}

	return s.repo.UpdateStatus(ctx, b.ID, b.Status, target)
}

func (s *service) IsAvailable(ctx context.Context, propertyID string, stay daterange.Range) (bool, error) {
	if stay.Nights() <= 0 {
		return false, daterange.ErrInvalidRange
	}
	if _, err := s.properties.GetActive(ctx, propertyID); err != nil {
		return false, err
	}
	return s.checker.IsAvailable(ctx, propertyID, stay)
}

func (s *service) Quote(ctx context.Context, propertyID string, stay daterange.Range) (*Availability, error) {
	prop, err := s.properties.GetActive(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	quote, err := pricing.Price(prop.NightlyRate, stay)
	if err != nil {
		return nil, err
	}
	ok, err := s.checker.IsAvailable(ctx, propertyID, stay)
	if err != nil {
		return nil, err
	}
	return &Availability{Available: ok, Quote: quote}, nil
}

func (s *service) GetByID(ctx context.Context, actor identity.AuthUser, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prop, err := s.properties.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}
	res := policy.Resource{OwnerID: prop.OwnerID, RequesterID: b.UserID}
	if err := policy.Authorize(actor, policy.ActionViewBooking, res); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListMine(ctx context.Context, actor identity.AuthUser, filter Filter) ([]*Booking, int, error) {
	filter.UserID = actor.ID
	filter.PropertyID = ""
	return s.repo.List(ctx, filter)
}

func (s *service) ListForProperty(ctx context.Context, actor identity.AuthUser, propertyID string, filter Filter) ([]*Booking, int, error) {
	prop, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, 0, err
	}
	if err := policy.Authorize(actor, policy.ActionViewPropertyBookings, policy.Resource{OwnerID: prop.OwnerID}); err != nil {
		return nil, 0, err
	}
	filter.PropertyID = propertyID
	filter.UserID = ""
	return s.repo.List(ctx, filter)
}

func (s *service) CompleteDue(ctx context.Context, now time.Time) (CompletionResult, error) {
	var result CompletionResult

	due, err := s.repo.ListDueForCompletion(ctx, daterange.Day(now), completionBatchSize)
	if err != nil {
		return result, err
	}

	for _, b := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := s.TransitionBooking(ctx, identity.System, b.ID, StatusCompleted); err != nil {
			s.log.WithError(err).WithField("booking_id", b.ID).Error("failed to complete booking")
			result.Failed++
			continue
		}
		result.Completed++
	}
	return result, nil
}
