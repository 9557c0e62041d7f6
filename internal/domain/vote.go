package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for vote operations.
var (
	ErrInvalidVoteType = errors.New("vote_type must be \"up\" or \"down\"")
	ErrSelfVote        = errors.New("cannot vote on your own content")
	ErrVoteNotFound    = errors.New("vote not found")
	ErrDuplicateVote   = errors.New("vote already exists for this target")
	ErrTargetNotFound  = errors.New("vote target not found")
)

// TargetKind discriminates what a vote or report points at.
type TargetKind string

const (
	TargetReview   TargetKind = "review"
	TargetComment  TargetKind = "comment"
	TargetLocation TargetKind = "location"
)

// Valid reports whether k is a known target kind.
func (k TargetKind) Valid() bool {
	switch k {
	case TargetReview, TargetComment, TargetLocation:
		return true
	}
	return false
}

// Target identifies the entity a vote or report applies to.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// VoteDirection is "up" or "down".
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
	VoteNone VoteDirection = "none"
)

// Vote is a single user's vote on a target. At most one row exists per
// (voter, target); repeat votes toggle it off, opposite votes flip it.
type Vote struct {
	ID        string    `json:"id"`
	VoterID   string    `json:"voter_id"`
	Target    Target    `json:"target"`
	IsUpvote  bool      `json:"is_upvote"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteResult is returned from vote actions and count lookups.
// UserVote is the caller's vote after the action ("up", "down", or "none").
// Error is set only on the read-only count path, which degrades to zeroed
// counts instead of failing the request.
type VoteResult struct {
	Upvotes   int           `json:"upvotes"`
	Downvotes int           `json:"downvotes"`
	NetScore  int           `json:"net_score"`
	UserVote  VoteDirection `json:"user_vote"`
	Error     string        `json:"error,omitempty"`
}

// VoteRepository defines the interface for vote storage. Create must rely on
// a storage-level uniqueness constraint over (voter, target) and surface
// ErrDuplicateVote on conflict, so concurrent toggles never double-insert.
type VoteRepository interface {
	Get(ctx context.Context, voterID string, target Target) (*Vote, error)
	Create(ctx context.Context, v *Vote) error
	SetDirection(ctx context.Context, id string, isUpvote bool) error
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context, target Target) (upvotes, downvotes int, err error)
}

// TargetResolver resolves the author of a vote/report target, used for
// self-vote checks. Returns ErrTargetNotFound for a dangling reference.
type TargetResolver interface {
	AuthorOf(ctx context.Context, target Target) (authorID string, err error)
}

// VoteService defines the toggle-vote business logic.
type VoteService interface {
	HandleVote(ctx context.Context, voterID string, target Target, direction VoteDirection) (*VoteResult, error)
	GetVoteCounts(ctx context.Context, target Target, voterID string) *VoteResult
}
