package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skyspotter/internal/domain"
)

type locationService struct {
	locationRepo domain.LocationRepository
}

// NewLocationService creates a LocationService over the given repository.
func NewLocationService(locationRepo domain.LocationRepository) domain.LocationService {
	return &locationService{locationRepo: locationRepo}
}

func (s *locationService) Create(ctx context.Context, userID string, l *domain.Location) (*domain.Location, error) {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return nil, fmt.Errorf("latitude must be between -90 and 90")
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return nil, fmt.Errorf("longitude must be between -180 and 180")
	}
	now := time.Now()
	l.AddedBy = userID
	l.CreatedAt = now
	l.UpdatedAt = now
	if err := s.locationRepo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return l, nil
}

func (s *locationService) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}

func (s *locationService) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Location, int, error) {
	return s.locationRepo.List(ctx, p)
}

func (s *locationService) Update(ctx context.Context, userID, id string, name, description *string) (*domain.Location, error) {
	existing, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AddedBy != userID {
		return nil, domain.ErrNotLocationOwner
	}
	return s.locationRepo.Update(ctx, id, name, description)
}
