package domain

import (
	"context"
	"time"
)

// Badge is an achievement a user can earn.
type Badge struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
}

// UserBadge records a badge awarded to a user.
type UserBadge struct {
	UserID    string    `json:"user_id"`
	BadgeCode string    `json:"badge_code"`
	AwardedAt time.Time `json:"awarded_at"`
}

// BadgeRepository defines the interface for badge storage.
// Award is idempotent: re-awarding an earned badge is a no-op.
type BadgeRepository interface {
	ListBadges(ctx context.Context) ([]*Badge, error)
	ListByUser(ctx context.Context, userID string) ([]*UserBadge, error)
	Award(ctx context.Context, userID, badgeCode string) error
	CountReviewsByAuthor(ctx context.Context, userID string) (int, error)
	CountVotesByVoter(ctx context.Context, userID string) (int, error)
}

// BadgeService checks thresholds and awards badges after user activity.
type BadgeService interface {
	CheckAfterReview(ctx context.Context, userID string) error
	CheckAfterVote(ctx context.Context, userID string) error
	ListByUser(ctx context.Context, userID string) ([]*UserBadge, error)
}
