package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"skyspotter/internal/domain"
)

type voteRepository struct {
	DB *sql.DB
}

// NewVoteRepository returns a VoteRepository backed by postgres. The votes
// table carries a unique index over (voter_id, target_kind, target_id), so
// concurrent toggle requests cannot double-insert.
func NewVoteRepository(db *sql.DB) domain.VoteRepository {
	return &voteRepository{DB: db}
}

func (r *voteRepository) Get(ctx context.Context, voterID string, target domain.Target) (*domain.Vote, error) {
	query := `
		SELECT id, voter_id, target_kind, target_id, is_upvote, created_at
		FROM votes
		WHERE voter_id = $1 AND target_kind = $2 AND target_id = $3
	`
	v := &domain.Vote{}
	err := r.DB.QueryRowContext(ctx, query, voterID, target.Kind, target.ID).
		Scan(&v.ID, &v.VoterID, &v.Target.Kind, &v.Target.ID, &v.IsUpvote, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *voteRepository) Create(ctx context.Context, v *domain.Vote) error {
	query := `
		INSERT INTO votes (voter_id, target_kind, target_id, is_upvote, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, v.VoterID, v.Target.Kind, v.Target.ID, v.IsUpvote, v.CreatedAt).
		Scan(&v.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateVote
		}
		return err
	}
	return nil
}

func (r *voteRepository) SetDirection(ctx context.Context, id string, isUpvote bool) error {
	query := `UPDATE votes SET is_upvote = $1 WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, isUpvote, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrVoteNotFound
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM votes WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrVoteNotFound
	}
	return nil
}

// Counts scans all votes for the target. Intentionally O(n) per target rather
// than incrementally maintained counters; per-target vote sets stay small.
func (r *voteRepository) Counts(ctx context.Context, target domain.Target) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE is_upvote),
			COUNT(*) FILTER (WHERE NOT is_upvote)
		FROM votes
		WHERE target_kind = $1 AND target_id = $2
	`
	var up, down int
	err := r.DB.QueryRowContext(ctx, query, target.Kind, target.ID).Scan(&up, &down)
	if err != nil {
		return 0, 0, err
	}
	return up, down, nil
}
