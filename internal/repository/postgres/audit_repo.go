package postgres

import (
	"context"
	"database/sql"

	"skyspotter/internal/domain"
)

type auditRepository struct {
	DB *sql.DB
}

// NewAuditRepository returns an AuditRepository backed by postgres. Events
// are append-only; the id is generated app-side so callers can reference it
// before the row lands.
func NewAuditRepository(db *sql.DB) domain.AuditRepository {
	return &auditRepository{DB: db}
}

func (r *auditRepository) Append(ctx context.Context, ev *domain.EmailAuditEvent) error {
	query := `
		INSERT INTO email_audit_events (id, actor, kind, email, reason, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query, ev.ID, ev.Actor, ev.Kind, ev.Email, ev.Reason, ev.Detail, ev.CreatedAt)
	return err
}
