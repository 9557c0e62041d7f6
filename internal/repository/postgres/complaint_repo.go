package postgres

import (
	"context"
	"database/sql"

	"skyspotter/internal/domain"
)

type complaintRepository struct {
	DB *sql.DB
}

// NewComplaintRepository returns a ComplaintRepository backed by postgres.
// Complaints are append-only; history is never rewritten.
func NewComplaintRepository(db *sql.DB) domain.ComplaintRepository {
	return &complaintRepository{DB: db}
}

func (r *complaintRepository) Create(ctx context.Context, c *domain.EmailComplaint) error {
	query := `
		INSERT INTO email_complaints
			(email, user_id, complaint_type, complaint_date, suppressed,
			 provider_message_id, feedback_id, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		c.Email, c.UserID, c.ComplaintType, c.ComplaintDate, c.Suppressed,
		c.ProviderMessageID, c.FeedbackID, c.RawPayload,
	).Scan(&c.ID)
}

func (r *complaintRepository) ExistsByMessageID(ctx context.Context, email, providerMessageID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM email_complaints WHERE email = $1 AND provider_message_id = $2)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, email, providerMessageID).Scan(&exists)
	return exists, err
}

func (r *complaintRepository) ListByEmail(ctx context.Context, email string) ([]*domain.EmailComplaint, error) {
	query := `
		SELECT id, email, user_id, complaint_type, complaint_date, suppressed,
		       provider_message_id, feedback_id, raw_payload
		FROM email_complaints
		WHERE email = $1
		ORDER BY complaint_date DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	complaints := make([]*domain.EmailComplaint, 0)
	for rows.Next() {
		c := &domain.EmailComplaint{}
		var userID sql.NullString
		if err := rows.Scan(&c.ID, &c.Email, &userID, &c.ComplaintType, &c.ComplaintDate,
			&c.Suppressed, &c.ProviderMessageID, &c.FeedbackID, &c.RawPayload); err != nil {
			return nil, err
		}
		if userID.Valid {
			c.UserID = &userID.String
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}
