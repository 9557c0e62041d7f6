package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for review operations.
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("user already reviewed this location")
	ErrSelfReview      = errors.New("cannot review your own location")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrNotReviewAuthor = errors.New("not the review author")
)

// Review is a rating plus comment a user leaves on a location.
// swagger:model Review
type Review struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	AuthorID   string    `json:"author_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReviewRepository defines the interface for review storage.
// Create, Update, and Delete run the location's rating aggregation in the
// same transaction as the review mutation.
type ReviewRepository interface {
	Create(ctx context.Context, rev *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	GetByAuthorAndLocation(ctx context.Context, authorID, locationID string) (*Review, error)
	ListByLocation(ctx context.Context, locationID string, p PaginationParams) ([]*Review, int, error)
	Update(ctx context.Context, rev *Review) error
	Delete(ctx context.Context, id string) error
}

// ReviewService defines review business logic.
type ReviewService interface {
	Create(ctx context.Context, authorID, locationID string, rating int, comment string) (*Review, error)
	GetByID(ctx context.Context, id string) (*Review, error)
	ListByLocation(ctx context.Context, locationID string, p PaginationParams) ([]*Review, int, error)
	Update(ctx context.Context, authorID, reviewID string, rating *int, comment *string) (*Review, error)
	Delete(ctx context.Context, authorID, reviewID string) error
}
