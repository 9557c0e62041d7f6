package postgres

import (
	"context"
	"database/sql"
	"errors"

	"skyspotter/internal/domain"
)

type suppressionRepository struct {
	DB *sql.DB
}

// NewSuppressionRepository returns a SuppressionRepository backed by postgres.
// A partial unique index (email) WHERE is_active guarantees at most one
// active suppression row per address, even under concurrent bounce and
// complaint ingestion.
func NewSuppressionRepository(db *sql.DB) domain.SuppressionRepository {
	return &suppressionRepository{DB: db}
}

const suppressionColumns = `id, email, user_id, reason, added_date, is_active, bounce_id, complaint_id, notes`

func scanSuppression(row interface{ Scan(...any) error }) (*domain.EmailSuppression, error) {
	s := &domain.EmailSuppression{}
	var userID, bounceID, complaintID sql.NullString
	err := row.Scan(&s.ID, &s.Email, &userID, &s.Reason, &s.AddedDate, &s.IsActive, &bounceID, &complaintID, &s.Notes)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		s.UserID = &userID.String
	}
	if bounceID.Valid {
		s.BounceID = &bounceID.String
	}
	if complaintID.Valid {
		s.ComplaintID = &complaintID.String
	}
	return s, nil
}

func (r *suppressionRepository) GetActiveByEmail(ctx context.Context, email string) (*domain.EmailSuppression, error) {
	query := `SELECT ` + suppressionColumns + ` FROM email_suppressions WHERE email = $1 AND is_active`
	s, err := scanSuppression(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSuppressionNotFound
		}
		return nil, err
	}
	return s, nil
}

// UpsertActive inserts an active suppression row, or updates the notes of the
// existing active row. The conflict target is the partial unique index over
// active rows, so the reason of an already-active suppression is preserved.
func (r *suppressionRepository) UpsertActive(ctx context.Context, s *domain.EmailSuppression) error {
	query := `
		INSERT INTO email_suppressions
			(email, user_id, reason, added_date, is_active, bounce_id, complaint_id, notes)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7)
		ON CONFLICT (email) WHERE is_active DO UPDATE
			SET notes = EXCLUDED.notes
		RETURNING ` + suppressionColumns + `
	`
	got, err := scanSuppression(r.DB.QueryRowContext(ctx, query,
		s.Email, s.UserID, s.Reason, s.AddedDate, s.BounceID, s.ComplaintID, s.Notes,
	))
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

func (r *suppressionRepository) Deactivate(ctx context.Context, email string) error {
	query := `UPDATE email_suppressions SET is_active = FALSE WHERE email = $1 AND is_active`
	result, err := r.DB.ExecContext(ctx, query, email)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrSuppressionNotFound
	}
	return nil
}

func (r *suppressionRepository) List(ctx context.Context, onlyActive bool, p domain.PaginationParams) ([]*domain.EmailSuppression, int, error) {
	where := ""
	if onlyActive {
		where = " WHERE is_active"
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM email_suppressions`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + suppressionColumns + `
		FROM email_suppressions` + where + `
		ORDER BY added_date DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	entries := make([]*domain.EmailSuppression, 0)
	for rows.Next() {
		s, err := scanSuppression(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, s)
	}
	return entries, total, rows.Err()
}
