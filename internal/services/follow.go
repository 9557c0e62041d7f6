package services

import (
	"context"
	"fmt"

	"skyspotter/internal/domain"
)

type followService struct {
	followRepo domain.FollowRepository
	userRepo   domain.UserRepository
}

// NewFollowService creates a FollowService over the given repositories.
func NewFollowService(followRepo domain.FollowRepository, userRepo domain.UserRepository) domain.FollowService {
	return &followService{followRepo: followRepo, userRepo: userRepo}
}

func (s *followService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return domain.ErrSelfFollow
	}
	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}
	if err := s.followRepo.Create(ctx, followerID, followeeID); err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}
	return nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return s.followRepo.Delete(ctx, followerID, followeeID)
}

func (s *followService) Following(ctx context.Context, userID string) ([]*domain.Follow, error) {
	return s.followRepo.ListFollowing(ctx, userID)
}

func (s *followService) Followers(ctx context.Context, userID string) ([]*domain.Follow, error) {
	return s.followRepo.ListFollowers(ctx, userID)
}
