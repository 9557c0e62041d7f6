package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"skyspotter/internal/domain"
)

type reviewRepository struct {
	DB *sql.DB
}

// NewReviewRepository returns a ReviewRepository backed by postgres. Every
// mutation recomputes the parent location's rating aggregates in the same
// transaction, so readers never observe a stale count or average.
func NewReviewRepository(db *sql.DB) domain.ReviewRepository {
	return &reviewRepository{DB: db}
}

const reviewColumns = `id, location_id, author_id, rating, comment, created_at, updated_at`

func scanReview(row interface{ Scan(...any) error }) (*domain.Review, error) {
	rev := &domain.Review{}
	err := row.Scan(&rev.ID, &rev.LocationID, &rev.AuthorID, &rev.Rating, &rev.Comment, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *reviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO reviews (location_id, author_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		rev.LocationID, rev.AuthorID, rev.Rating, rev.Comment, rev.CreatedAt, rev.UpdatedAt,
	).Scan(&rev.ID)
	if err != nil {
		tx.Rollback()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateReview
		}
		return err
	}
	if err := recalcLocationRating(ctx, tx, rev.LocationID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	rev, err := scanReview(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, err
	}
	return rev, nil
}

func (r *reviewRepository) GetByAuthorAndLocation(ctx context.Context, authorID, locationID string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE author_id = $1 AND location_id = $2`
	rev, err := scanReview(r.DB.QueryRowContext(ctx, query, authorID, locationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, err
	}
	return rev, nil
}

func (r *reviewRepository) ListByLocation(ctx context.Context, locationID string, p domain.PaginationParams) ([]*domain.Review, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE location_id = $1`, locationID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE location_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, locationID, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, total, rows.Err()
}

func (r *reviewRepository) Update(ctx context.Context, rev *domain.Review) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	query := `
		UPDATE reviews SET rating = $1, comment = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := tx.ExecContext(ctx, query, rev.Rating, rev.Comment, rev.UpdatedAt, rev.ID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		tx.Rollback()
		return domain.ErrReviewNotFound
	}
	if err := recalcLocationRating(ctx, tx, rev.LocationID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// Capture location_id before the row disappears; the aggregate recompute
	// needs it after the delete.
	var locationID string
	err = tx.QueryRowContext(ctx, `SELECT location_id FROM reviews WHERE id = $1`, id).Scan(&locationID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrReviewNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		tx.Rollback()
		return err
	}
	if err := recalcLocationRating(ctx, tx, locationID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
