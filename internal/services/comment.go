package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skyspotter/internal/domain"
)

type commentService struct {
	commentRepo domain.CommentRepository
	reviewRepo  domain.ReviewRepository
}

// NewCommentService creates a CommentService over the given repositories.
func NewCommentService(commentRepo domain.CommentRepository, reviewRepo domain.ReviewRepository) domain.CommentService {
	return &commentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

func (s *commentService) Create(ctx context.Context, authorID, reviewID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("comment body is required")
	}
	if _, err := s.reviewRepo.GetByID(ctx, reviewID); err != nil {
		return nil, err
	}
	c := &domain.Comment{
		ReviewID:  reviewID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return c, nil
}

func (s *commentService) ListByReview(ctx context.Context, reviewID string, p domain.PaginationParams) ([]*domain.Comment, int, error) {
	if _, err := s.reviewRepo.GetByID(ctx, reviewID); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, p)
}

func (s *commentService) Delete(ctx context.Context, userID, commentID string) error {
	c, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != userID {
		return domain.ErrNotReviewAuthor
	}
	return s.commentRepo.Delete(ctx, commentID)
}
