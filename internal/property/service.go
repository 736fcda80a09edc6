package property

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
	"github.com/nekogravitycat/stay-booking-backend/internal/policy"
)

type CreateRequest struct {
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
}

// UpdateRequest holds the fields to change; nil means unchanged.
type UpdateRequest struct {
	Title       *string
	Description *string
	Type        *Type
	Location    *string
	Address     *string
	City        *string
	Country     *string
	PostalCode  *string
	Latitude    *float64
	Longitude   *float64
	NightlyRate *int64
	MaxGuests   *int
	Bedrooms    *int
	Bathrooms   *int
	Amenities   []string
}

type Service interface {
	Create(ctx context.Context, actor identity.AuthUser, req CreateRequest) (*Property, error)
	// GetActive returns ErrNotFound for deactivated properties.
	GetActive(ctx context.Context, id string) (*Property, error)
	// GetByID returns the property whatever its active flag.
	GetByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, filter Filter) ([]*Property, int, error)
	ListByOwner(ctx context.Context, actor identity.AuthUser, filter Filter) ([]*Property, int, error)
	Update(ctx context.Context, actor identity.AuthUser, id string, req UpdateRequest) (*Property, error)
	Deactivate(ctx context.Context, actor identity.AuthUser, id string) error
	// CheckManage verifies actor may modify the property, without changing anything.
	CheckManage(ctx context.Context, actor identity.AuthUser, id string) error
	AddImage(ctx context.Context, actor identity.AuthUser, id, fileID string) error
}

type service struct {
	repo Repository
	log  logrus.FieldLogger
}

func NewService(repo Repository, log logrus.FieldLogger) Service {
	return &service{
		repo: repo,
		log:  log.WithField("component", "property_service"),
	}
}

func validate(p *Property) error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if !p.Type.Valid() {
		return ErrInvalidType
	}
	if p.NightlyRate <= 0 {
		return ErrInvalidRate
	}
	if p.MaxGuests <= 0 {
		return ErrInvalidCapacity
	}
	if p.Bedrooms < 0 || p.Bathrooms < 0 {
		return ErrInvalidRooms
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor identity.AuthUser, req CreateRequest) (*Property, error) {
	if err := policy.Authorize(actor, policy.ActionCreateProperty, policy.Resource{}); err != nil {
		return nil, err
	}

	p := &Property{
		OwnerID:     actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        req.Type,
		Location:    req.Location,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		PostalCode:  req.PostalCode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		NightlyRate: req.NightlyRate,
		MaxGuests:   req.MaxGuests,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Amenities:   req.Amenities,
		IsActive:    true,
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"property_id": p.ID, "owner_id": p.OwnerID}).Info("property created")
	return p, nil
}

func (s *service) GetActive(ctx context.Context, id string) (*Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Property, int, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, 0, ErrInvalidPriceRange
	}
	filter.IncludeInactive = false
	return s.repo.List(ctx, filter)
}

func (s *service) ListByOwner(ctx context.Context, actor identity.AuthUser, filter Filter) ([]*Property, int, error) {
	if err := policy.Authorize(actor, policy.ActionListOwnProperties, policy.Resource{}); err != nil {
		return nil, 0, err
	}
	filter.OwnerID = actor.ID
	filter.IncludeInactive = true
	return s.repo.List(ctx, filter)
}

// loadManaged fetches the property and checks actor may manage it.
func (s *service) loadManaged(ctx context.Context, actor identity.AuthUser, id string) (*Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionManageProperty, policy.Resource{OwnerID: p.OwnerID}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, actor identity.AuthUser, id string, req UpdateRequest) (*Property, error) {
	p, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Type != nil {
		p.Type = *req.Type
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	if req.PostalCode != nil {
		p.PostalCode = req.PostalCode
	}
	if req.Latitude != nil {
		p.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = req.Longitude
	}
	if req.NightlyRate != nil {
		p.NightlyRate = *req.NightlyRate
	}
	if req.MaxGuests != nil {
		p.MaxGuests = *req.MaxGuests
	}
	if req.Bedrooms != nil {
		p.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = *req.Bathrooms
	}
	if req.Amenities != nil {
		p.Amenities = req.Amenities
	}

	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Deactivate(ctx context.Context, actor identity.AuthUser, id string) error {
	if _, err := s.loadManaged(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"property_id": id, "actor_id": actor.ID}).Info("property deactivated")
	return nil
}

func (s *service) CheckManage(ctx context.Context, actor identity.AuthUser, id string) error {
	_, err := s.loadManaged(ctx, actor, id)
	return err
}

func (s *service) AddImage(ctx context.Context, actor identity.AuthUser, id, fileID string) error {
	if _, err := s.loadManaged(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.AddImage(ctx, id, fileID)
}
