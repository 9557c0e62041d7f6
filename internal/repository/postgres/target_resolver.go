package postgres

import (
	"context"
	"database/sql"
	"errors"

	"skyspotter/internal/domain"
)

type targetResolver struct {
	DB *sql.DB
}

// NewTargetResolver returns a TargetResolver that looks up the author column
// of the table matching the target kind. One query per kind instead of a
// runtime type registry.
func NewTargetResolver(db *sql.DB) domain.TargetResolver {
	return &targetResolver{DB: db}
}

func (r *targetResolver) AuthorOf(ctx context.Context, target domain.Target) (string, error) {
	var query string
	switch target.Kind {
	case domain.TargetReview:
		query = `SELECT author_id FROM reviews WHERE id = $1`
	case domain.TargetComment:
		query = `SELECT author_id FROM comments WHERE id = $1`
	case domain.TargetLocation:
		query = `SELECT added_by FROM locations WHERE id = $1`
	default:
		return "", domain.ErrTargetNotFound
	}
	var authorID string
	err := r.DB.QueryRowContext(ctx, query, target.ID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrTargetNotFound
		}
		return "", err
	}
	return authorID, nil
}
