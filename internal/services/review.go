package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"skyspotter/internal/domain"
)

type reviewService struct {
	reviewRepo   domain.ReviewRepository
	locationRepo domain.LocationRepository
	badges       domain.BadgeService
	logger       *slog.Logger
}

// NewReviewService creates a ReviewService. The repository keeps the parent
// location's rating aggregates in sync inside each mutation's transaction;
// this service owns the business rules around the mutation. badges may be nil.
func NewReviewService(reviewRepo domain.ReviewRepository, locationRepo domain.LocationRepository, badges domain.BadgeService, logger *slog.Logger) domain.ReviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		locationRepo: locationRepo,
		badges:       badges,
		logger:       logger,
	}
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func (s *reviewService) Create(ctx context.Context, authorID, locationID string, rating int, comment string) (*domain.Review, error) {
	if !validRating(rating) {
		return nil, domain.ErrInvalidRating
	}
	location, err := s.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if location.AddedBy == authorID {
		return nil, domain.ErrSelfReview
	}

	now := time.Now()
	rev := &domain.Review{
		LocationID: locationID,
		AuthorID:   authorID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reviewRepo.Create(ctx, rev); err != nil {
		return nil, err
	}

	if s.badges != nil {
		if err := s.badges.CheckAfterReview(ctx, authorID); err != nil {
			s.logger.Warn("badge check after review failed", "author_id", authorID, "error", err)
		}
	}
	return rev, nil
}

func (s *reviewService) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	return s.reviewRepo.GetByID(ctx, id)
}

func (s *reviewService) ListByLocation(ctx context.Context, locationID string, p domain.PaginationParams) ([]*domain.Review, int, error) {
	if _, err := s.locationRepo.GetByID(ctx, locationID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByLocation(ctx, locationID, p)
}

func (s *reviewService) Update(ctx context.Context, authorID, reviewID string, rating *int, comment *string) (*domain.Review, error) {
	rev, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rev.AuthorID != authorID {
		return nil, domain.ErrNotReviewAuthor
	}
	if rating != nil {
		if !validRating(*rating) {
			return nil, domain.ErrInvalidRating
		}
		rev.Rating = *rating
	}
	if comment != nil {
		rev.Comment = strings.TrimSpace(*comment)
	}
	rev.UpdatedAt = time.Now()
	if err := s.reviewRepo.Update(ctx, rev); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return rev, nil
}

func (s *reviewService) Delete(ctx context.Context, authorID, reviewID string) error {
	rev, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if rev.AuthorID != authorID {
		return domain.ErrNotReviewAuthor
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}
