package postgres

import (
	"context"
	"database/sql"

	"skyspotter/internal/domain"
)

type badgeRepository struct {
	DB *sql.DB
}

func NewBadgeRepository(db *sql.DB) domain.BadgeRepository {
	return &badgeRepository{DB: db}
}

func (r *badgeRepository) ListBadges(ctx context.Context) ([]*domain.Badge, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT code, name, threshold FROM badges ORDER BY threshold ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	badges := make([]*domain.Badge, 0)
	for rows.Next() {
		b := &domain.Badge{}
		if err := rows.Scan(&b.Code, &b.Name, &b.Threshold); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func (r *badgeRepository) ListByUser(ctx context.Context, userID string) ([]*domain.UserBadge, error) {
	query := `
		SELECT user_id, badge_code, awarded_at
		FROM user_badges
		WHERE user_id = $1
		ORDER BY awarded_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	earned := make([]*domain.UserBadge, 0)
	for rows.Next() {
		ub := &domain.UserBadge{}
		if err := rows.Scan(&ub.UserID, &ub.BadgeCode, &ub.AwardedAt); err != nil {
			return nil, err
		}
		earned = append(earned, ub)
	}
	return earned, rows.Err()
}

func (r *badgeRepository) Award(ctx context.Context, userID, badgeCode string) error {
	query := `
		INSERT INTO user_badges (user_id, badge_code, awarded_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, badge_code) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, userID, badgeCode)
	return err
}

func (r *badgeRepository) CountReviewsByAuthor(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE author_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *badgeRepository) CountVotesByVoter(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE voter_id = $1`, userID).Scan(&n)
	return n, err
}
