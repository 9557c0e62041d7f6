package domain

import (
	"context"
	"errors"
	"time"
)

var ErrCommentNotFound = errors.New("comment not found")

// Comment is a short reply to a review.
type Comment struct {
	ID        string    `json:"id"`
	ReviewID  string    `json:"review_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentRepository defines the interface for comment storage.
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	ListByReview(ctx context.Context, reviewID string, p PaginationParams) ([]*Comment, int, error)
	Delete(ctx context.Context, id string) error
}

// CommentService defines comment business logic.
type CommentService interface {
	Create(ctx context.Context, authorID, reviewID, body string) (*Comment, error)
	ListByReview(ctx context.Context, reviewID string, p PaginationParams) ([]*Comment, int, error)
	Delete(ctx context.Context, userID, commentID string) error
}
