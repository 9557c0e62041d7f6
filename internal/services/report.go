package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skyspotter/internal/domain"
)

type reportService struct {
	reportRepo domain.ReportRepository
	resolver   domain.TargetResolver
}

// NewReportService creates a ReportService. Targets are validated through the
// same resolver the vote service uses.
func NewReportService(reportRepo domain.ReportRepository, resolver domain.TargetResolver) domain.ReportService {
	return &reportService{reportRepo: reportRepo, resolver: resolver}
}

func (s *reportService) File(ctx context.Context, reporterID string, target domain.Target, reason string) (*domain.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("reason is required")
	}
	if !target.Kind.Valid() {
		return nil, domain.ErrTargetNotFound
	}
	if _, err := s.resolver.AuthorOf(ctx, target); err != nil {
		return nil, err
	}
	now := time.Now()
	rep := &domain.Report{
		ReporterID: reporterID,
		Target:     target,
		Reason:     reason,
		Status:     domain.ReportOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reportRepo.Create(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *reportService) ListOpen(ctx context.Context, p domain.PaginationParams) ([]*domain.Report, int, error) {
	return s.reportRepo.ListByStatus(ctx, domain.ReportOpen, p)
}

func (s *reportService) Resolve(ctx context.Context, id string) error {
	return s.reportRepo.SetStatus(ctx, id, domain.ReportResolved)
}

func (s *reportService) Dismiss(ctx context.Context, id string) error {
	return s.reportRepo.SetStatus(ctx, id, domain.ReportDismissed)
}
