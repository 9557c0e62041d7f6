package postgres

import (
	"context"
	"database/sql"
	"errors"

	"skyspotter/internal/domain"
)

type bounceRepository struct {
	DB *sql.DB
}

// NewBounceRepository returns a BounceRepository backed by postgres. The
// email_bounces table is keyed by email (unique index), one row per address.
func NewBounceRepository(db *sql.DB) domain.BounceRepository {
	return &bounceRepository{DB: db}
}

const bounceColumns = `id, email, user_id, bounce_type, bounce_subtype, bounce_count,
		first_bounce_date, last_bounce_date, suppressed, provider_message_id, diagnostic_code, raw_payload`

func (r *bounceRepository) GetByEmail(ctx context.Context, email string) (*domain.EmailBounce, error) {
	query := `SELECT ` + bounceColumns + ` FROM email_bounces WHERE email = $1`
	b := &domain.EmailBounce{}
	var userID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&b.ID, &b.Email, &userID, &b.BounceType, &b.BounceSubtype, &b.BounceCount,
		&b.FirstBounceDate, &b.LastBounceDate, &b.Suppressed, &b.ProviderMessageID,
		&b.DiagnosticCode, &b.RawPayload,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBounceNotFound
		}
		return nil, err
	}
	if userID.Valid {
		b.UserID = &userID.String
	}
	return b, nil
}

func (r *bounceRepository) Create(ctx context.Context, b *domain.EmailBounce) error {
	query := `
		INSERT INTO email_bounces
			(email, user_id, bounce_type, bounce_subtype, bounce_count,
			 first_bounce_date, last_bounce_date, suppressed, provider_message_id,
			 diagnostic_code, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		b.Email, b.UserID, b.BounceType, b.BounceSubtype, b.BounceCount,
		b.FirstBounceDate, b.LastBounceDate, b.Suppressed, b.ProviderMessageID,
		b.DiagnosticCode, b.RawPayload,
	).Scan(&b.ID)
}

// RecordRepeat refreshes the row with the latest bounce details. The count
// only increments when the provider message id is new; redelivery of the same
// notification must not double-count.
func (r *bounceRepository) RecordRepeat(ctx context.Context, b *domain.EmailBounce) error {
	query := `
		UPDATE email_bounces SET
			bounce_count = bounce_count + CASE WHEN provider_message_id = $2 THEN 0 ELSE 1 END,
			bounce_type = $3,
			bounce_subtype = $4,
			diagnostic_code = $5,
			provider_message_id = $2,
			last_bounce_date = $6,
			raw_payload = $7
		WHERE email = $1
		RETURNING id, bounce_count, suppressed
	`
	err := r.DB.QueryRowContext(ctx, query,
		b.Email, b.ProviderMessageID, b.BounceType, b.BounceSubtype,
		b.DiagnosticCode, b.LastBounceDate, b.RawPayload,
	).Scan(&b.ID, &b.BounceCount, &b.Suppressed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrBounceNotFound
		}
		return err
	}
	return nil
}

// Reset clears suppression state for an address. Zero rows affected means the
// address never bounced, which is fine for manual or complaint suppressions.
func (r *bounceRepository) Reset(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE email_bounces SET suppressed = FALSE, bounce_count = 0 WHERE email = $1`, email)
	return err
}

func (r *bounceRepository) MarkSuppressed(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE email_bounces SET suppressed = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBounceNotFound
	}
	return nil
}
