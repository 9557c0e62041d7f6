package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"skyspotter/internal/domain"
)

type badgeService struct {
	badgeRepo domain.BadgeRepository
	userRepo  domain.UserRepository
	email     domain.EmailService
	logger    *slog.Logger
}

// NewBadgeService creates a BadgeService. Badges are checked synchronously
// after review and vote writes; awarding is idempotent so re-checks are
// harmless. email may be nil.
func NewBadgeService(badgeRepo domain.BadgeRepository, userRepo domain.UserRepository, email domain.EmailService, logger *slog.Logger) domain.BadgeService {
	return &badgeService{
		badgeRepo: badgeRepo,
		userRepo:  userRepo,
		email:     email,
		logger:    logger,
	}
}

func (s *badgeService) CheckAfterReview(ctx context.Context, userID string) error {
	count, err := s.badgeRepo.CountReviewsByAuthor(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count reviews: %w", err)
	}
	return s.awardEligible(ctx, userID, "review_", count)
}

func (s *badgeService) CheckAfterVote(ctx context.Context, userID string) error {
	count, err := s.badgeRepo.CountVotesByVoter(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count votes: %w", err)
	}
	return s.awardEligible(ctx, userID, "vote_", count)
}

func (s *badgeService) ListByUser(ctx context.Context, userID string) ([]*domain.UserBadge, error) {
	return s.badgeRepo.ListByUser(ctx, userID)
}

// awardEligible awards every badge of the given family whose threshold the
// count has reached. Badge codes are namespaced by activity, e.g.
// review_explorer, vote_supporter.
func (s *badgeService) awardEligible(ctx context.Context, userID, codePrefix string, count int) error {
	badges, err := s.badgeRepo.ListBadges(ctx)
	if err != nil {
		return fmt.Errorf("failed to list badges: %w", err)
	}
	earned, err := s.badgeRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list earned badges: %w", err)
	}
	have := make(map[string]bool, len(earned))
	for _, ub := range earned {
		have[ub.BadgeCode] = true
	}

	for _, b := range badges {
		if !strings.HasPrefix(b.Code, codePrefix) || count < b.Threshold || have[b.Code] {
			continue
		}
		if err := s.badgeRepo.Award(ctx, userID, b.Code); err != nil {
			return fmt.Errorf("failed to award badge %s: %w", b.Code, err)
		}
		s.logger.Info("badge awarded", "user_id", userID, "badge", b.Code)
		s.notify(ctx, userID, b)
	}
	return nil
}

func (s *badgeService) notify(ctx context.Context, userID string, b *domain.Badge) {
	if s.email == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user for badge email", "user_id", userID, "error", err)
		return
	}
	data := &domain.BadgeAwardedEmailData{Email: user.Email, Name: user.Name, BadgeName: b.Name}
	if err := s.email.SendBadgeAwarded(ctx, data); err != nil {
		s.logger.Warn("failed to send badge email", "email", user.Email, "error", err)
	}
}
