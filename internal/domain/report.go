package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for moderation reports.
var (
	ErrReportNotFound  = errors.New("report not found")
	ErrDuplicateReport = errors.New("an open report already exists for this target")
)

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportOpen      ReportStatus = "open"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report is a user-filed moderation report against a target.
type Report struct {
	ID         string       `json:"id"`
	ReporterID string       `json:"reporter_id"`
	Target     Target       `json:"target"`
	Reason     string       `json:"reason"`
	Status     ReportStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// ReportRepository defines the interface for report storage.
type ReportRepository interface {
	Create(ctx context.Context, rep *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	ListByStatus(ctx context.Context, status ReportStatus, p PaginationParams) ([]*Report, int, error)
	SetStatus(ctx context.Context, id string, status ReportStatus) error
}

// ReportService defines moderation business logic.
type ReportService interface {
	File(ctx context.Context, reporterID string, target Target, reason string) (*Report, error)
	ListOpen(ctx context.Context, p PaginationParams) ([]*Report, int, error)
	Resolve(ctx context.Context, id string) error
	Dismiss(ctx context.Context, id string) error
}
