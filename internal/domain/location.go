package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for location operations.
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrNotLocationOwner = errors.New("not the user who added this location")
)

// Location is a stargazing spot added by a user.
// RatingCount and AverageRating are denormalized from the location's live
// review set and recomputed transactionally on every review write.
// swagger:model Location
type Location struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	AddedBy       string    `json:"added_by"`
	RatingCount   int       `json:"rating_count"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LocationRepository defines the interface for location storage.
type LocationRepository interface {
	Create(ctx context.Context, l *Location) error
	GetByID(ctx context.Context, id string) (*Location, error)
	List(ctx context.Context, p PaginationParams) ([]*Location, int, error)
	Update(ctx context.Context, id string, name, description *string) (*Location, error)
	Delete(ctx context.Context, id string) error
	// RecalculateRating recomputes rating_count and average_rating from the
	// location's live reviews, locking the location row for the duration.
	RecalculateRating(ctx context.Context, id string) error
}

// LocationService defines location business logic.
type LocationService interface {
	Create(ctx context.Context, userID string, l *Location) (*Location, error)
	GetByID(ctx context.Context, id string) (*Location, error)
	List(ctx context.Context, p PaginationParams) ([]*Location, int, error)
	Update(ctx context.Context, userID, id string, name, description *string) (*Location, error)
}
