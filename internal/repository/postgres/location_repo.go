package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"skyspotter/internal/domain"
)

type locationRepository struct {
	DB *sql.DB
}

func NewLocationRepository(db *sql.DB) domain.LocationRepository {
	return &locationRepository{DB: db}
}

const locationColumns = `id, name, description, latitude, longitude, added_by, rating_count, average_rating, created_at, updated_at`

func scanLocation(row interface{ Scan(...any) error }) (*domain.Location, error) {
	l := &domain.Location{}
	err := row.Scan(
		&l.ID, &l.Name, &l.Description, &l.Latitude, &l.Longitude,
		&l.AddedBy, &l.RatingCount, &l.AverageRating, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *locationRepository) Create(ctx context.Context, l *domain.Location) error {
	query := `
		INSERT INTO locations (name, description, latitude, longitude, added_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		l.Name, l.Description, l.Latitude, l.Longitude, l.AddedBy, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
}

func (r *locationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	l, err := scanLocation(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLocationNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *locationRepository) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Location, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	locations := make([]*domain.Location, 0)
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, 0, err
		}
		locations = append(locations, l)
	}
	return locations, total, rows.Err()
}

func (r *locationRepository) Update(ctx context.Context, id string, name, description *string) (*domain.Location, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *name)
		n++
	}
	if description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *description)
		n++
	}
	if n == 1 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE locations SET %s
		WHERE id = $%d
		RETURNING `+locationColumns+`
	`, strings.Join(setClauses, ", "), n)
	l, err := scanLocation(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLocationNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *locationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrLocationNotFound
	}
	return nil
}

// RecalculateRating recomputes the denormalized aggregates in its own
// transaction. Review mutations use recalcLocationRating directly inside
// their own transactions instead.
func (r *locationRepository) RecalculateRating(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := recalcLocationRating(ctx, tx, id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// recalcLocationRating locks the location row and rewrites rating_count and
// average_rating from the live review set. Idempotent; safe to re-run.
// The FOR UPDATE lock serializes concurrent review writes on one location.
func recalcLocationRating(ctx context.Context, tx *sql.Tx, locationID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM locations WHERE id = $1 FOR UPDATE`, locationID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrLocationNotFound
		}
		return err
	}
	query := `
		UPDATE locations SET
			rating_count = agg.cnt,
			average_rating = agg.avg_rating,
			updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS cnt,
			       COALESCE(ROUND(AVG(rating)::numeric, 2), 0) AS avg_rating
			FROM reviews
			WHERE location_id = $1
		) AS agg
		WHERE locations.id = $1
	`
	_, err = tx.ExecContext(ctx, query, locationID)
	return err
}
