package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"skyspotter/internal/domain"
)

type voteService struct {
	voteRepo domain.VoteRepository
	resolver domain.TargetResolver
	badges   domain.BadgeService
	logger   *slog.Logger
}

// NewVoteService creates a VoteService over the given vote store and target
// resolver. badges may be nil; badge checks are best-effort.
func NewVoteService(voteRepo domain.VoteRepository, resolver domain.TargetResolver, badges domain.BadgeService, logger *slog.Logger) domain.VoteService {
	return &voteService{
		voteRepo: voteRepo,
		resolver: resolver,
		badges:   badges,
		logger:   logger,
	}
}

// HandleVote runs the toggle state machine for one (voter, target) pair:
// no vote -> create with the given direction; same direction -> delete
// (toggle off); opposite direction -> flip in place. Counts are recomputed
// by scanning the target's votes after the mutation.
func (s *voteService) HandleVote(ctx context.Context, voterID string, target domain.Target, direction domain.VoteDirection) (*domain.VoteResult, error) {
	if direction != domain.VoteUp && direction != domain.VoteDown {
		return nil, domain.ErrInvalidVoteType
	}
	if !target.Kind.Valid() {
		return nil, domain.ErrTargetNotFound
	}
	authorID, err := s.resolver.AuthorOf(ctx, target)
	if err != nil {
		return nil, err
	}
	if authorID == voterID {
		return nil, domain.ErrSelfVote
	}

	userVote, err := s.toggle(ctx, voterID, target, direction)
	if err != nil {
		return nil, err
	}

	up, down, err := s.voteRepo.Counts(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}

	if s.badges != nil && userVote != domain.VoteNone {
		if err := s.badges.CheckAfterVote(ctx, voterID); err != nil {
			s.logger.Warn("badge check after vote failed", "voter_id", voterID, "error", err)
		}
	}

	return &domain.VoteResult{
		Upvotes:   up,
		Downvotes: down,
		NetScore:  up - down,
		UserVote:  userVote,
	}, nil
}

func (s *voteService) toggle(ctx context.Context, voterID string, target domain.Target, direction domain.VoteDirection) (domain.VoteDirection, error) {
	isUpvote := direction == domain.VoteUp

	existing, err := s.voteRepo.Get(ctx, voterID, target)
	if errors.Is(err, domain.ErrVoteNotFound) {
		v := &domain.Vote{
			VoterID:   voterID,
			Target:    target,
			IsUpvote:  isUpvote,
			CreatedAt: time.Now(),
		}
		err := s.voteRepo.Create(ctx, v)
		if err == nil {
			return direction, nil
		}
		// Lost a race with a concurrent request from the same voter; the
		// storage uniqueness constraint caught it. Fall through to the
		// existing-vote branches.
		if !errors.Is(err, domain.ErrDuplicateVote) {
			return "", fmt.Errorf("failed to create vote: %w", err)
		}
		existing, err = s.voteRepo.Get(ctx, voterID, target)
		if err != nil {
			return "", fmt.Errorf("failed to reload vote: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to load vote: %w", err)
	}

	if existing.IsUpvote == isUpvote {
		// Same direction: toggle off.
		if err := s.voteRepo.Delete(ctx, existing.ID); err != nil && !errors.Is(err, domain.ErrVoteNotFound) {
			return "", fmt.Errorf("failed to remove vote: %w", err)
		}
		return domain.VoteNone, nil
	}
	// Opposite direction: flip in place.
	if err := s.voteRepo.SetDirection(ctx, existing.ID, isUpvote); err != nil {
		return "", fmt.Errorf("failed to flip vote: %w", err)
	}
	return direction, nil
}

// GetVoteCounts is the read-only path. It never fails the request: any
// internal error degrades to zeroed counts with the error message attached.
func (s *voteService) GetVoteCounts(ctx context.Context, target domain.Target, voterID string) *domain.VoteResult {
	result := &domain.VoteResult{UserVote: domain.VoteNone}

	up, down, err := s.voteRepo.Counts(ctx, target)
	if err != nil {
		s.logger.Warn("vote count lookup failed", "target_kind", target.Kind, "target_id", target.ID, "error", err)
		result.Error = "failed to load vote counts"
		return result
	}
	result.Upvotes = up
	result.Downvotes = down
	result.NetScore = up - down

	if voterID != "" {
		v, err := s.voteRepo.Get(ctx, voterID, target)
		switch {
		case err == nil:
			if v.IsUpvote {
				result.UserVote = domain.VoteUp
			} else {
				result.UserVote = domain.VoteDown
			}
		case errors.Is(err, domain.ErrVoteNotFound):
			// No vote from this user; nothing to report.
		default:
			s.logger.Warn("user vote lookup failed", "voter_id", voterID, "error", err)
			result.Error = "failed to load user vote"
		}
	}
	return result
}
