package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"skyspotter/internal/domain"
)

type reportRepository struct {
	DB *sql.DB
}

// NewReportRepository returns a ReportRepository backed by postgres. A partial
// unique index over (reporter_id, target_kind, target_id) WHERE status='open'
// rejects duplicate open reports at the storage layer.
func NewReportRepository(db *sql.DB) domain.ReportRepository {
	return &reportRepository{DB: db}
}

const reportColumns = `id, reporter_id, target_kind, target_id, reason, status, created_at, updated_at`

func scanReport(row interface{ Scan(...any) error }) (*domain.Report, error) {
	rep := &domain.Report{}
	err := row.Scan(&rep.ID, &rep.ReporterID, &rep.Target.Kind, &rep.Target.ID, &rep.Reason, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *reportRepository) Create(ctx context.Context, rep *domain.Report) error {
	query := `
		INSERT INTO reports (reporter_id, target_kind, target_id, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		rep.ReporterID, rep.Target.Kind, rep.Target.ID, rep.Reason, rep.Status, rep.CreatedAt, rep.UpdatedAt,
	).Scan(&rep.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateReport
		}
		return err
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	rep, err := scanReport(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	return rep, nil
}

func (r *reportRepository) ListByStatus(ctx context.Context, status domain.ReportStatus, p domain.PaginationParams) ([]*domain.Report, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, status, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	reports := make([]*domain.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, rep)
	}
	return reports, total, rows.Err()
}

func (r *reportRepository) SetStatus(ctx context.Context, id string, status domain.ReportStatus) error {
	query := `UPDATE reports SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}
