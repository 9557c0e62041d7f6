package domain

import (
	"context"
	"errors"
	"time"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

// Follow links a follower to a followee.
type Follow struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowRepository defines the interface for follow storage.
// Create is idempotent: following an already-followed user is a no-op.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID string) error
	Delete(ctx context.Context, followerID, followeeID string) error
	ListFollowing(ctx context.Context, followerID string) ([]*Follow, error)
	ListFollowers(ctx context.Context, followeeID string) ([]*Follow, error)
}

// FollowService defines follow business logic.
type FollowService interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	Following(ctx context.Context, userID string) ([]*Follow, error)
	Followers(ctx context.Context, userID string) ([]*Follow, error)
}
