package postgres

import (
	"context"
	"database/sql"

	"skyspotter/internal/domain"
)

type followRepository struct {
	DB *sql.DB
}

func NewFollowRepository(db *sql.DB) domain.FollowRepository {
	return &followRepository{DB: db}
}

func (r *followRepository) Create(ctx context.Context, followerID, followeeID string) error {
	query := `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, followerID, followeeID)
	return err
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	_, err := r.DB.ExecContext(ctx, query, followerID, followeeID)
	return err
}

func (r *followRepository) ListFollowing(ctx context.Context, followerID string) ([]*domain.Follow, error) {
	return r.list(ctx, `SELECT follower_id, followee_id, created_at FROM follows WHERE follower_id = $1 ORDER BY created_at DESC`, followerID)
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID string) ([]*domain.Follow, error) {
	return r.list(ctx, `SELECT follower_id, followee_id, created_at FROM follows WHERE followee_id = $1 ORDER BY created_at DESC`, followeeID)
}

func (r *followRepository) list(ctx context.Context, query, arg string) ([]*domain.Follow, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	follows := make([]*domain.Follow, 0)
	for rows.Next() {
		f := &domain.Follow{}
		if err := rows.Scan(&f.FollowerID, &f.FolloweeID, &f.CreatedAt); err != nil {
			return nil, err
		}
		follows = append(follows, f)
	}
	return follows, rows.Err()
}
