package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"skyspotter/internal/domain"
)

// Audit event kinds emitted on suppression transitions.
const (
	auditBounceRecorded    = "bounce_recorded"
	auditComplaintRecorded = "complaint_recorded"
	auditSuppressed        = "suppressed"
	auditUnsuppressed      = "unsuppressed"
)

type suppressionService struct {
	bounces      domain.BounceRepository
	complaints   domain.ComplaintRepository
	suppressions domain.SuppressionRepository
	audit        domain.AuditRepository
	users        domain.UserRepository
	// softThreshold is the bounce_count at which soft/transient bouncers
	// are suppressed. Hard bounces suppress on first occurrence.
	softThreshold int
	logger        *slog.Logger
}

// NewSuppressionService creates the controller that maintains bounce,
// complaint, and suppression state for email addresses. users may be nil;
// it is only consulted to link events to a platform account.
func NewSuppressionService(
	bounces domain.BounceRepository,
	complaints domain.ComplaintRepository,
	suppressions domain.SuppressionRepository,
	audit domain.AuditRepository,
	users domain.UserRepository,
	softThreshold int,
	logger *slog.Logger,
) domain.SuppressionService {
	if softThreshold < 1 {
		softThreshold = 3
	}
	return &suppressionService{
		bounces:       bounces,
		complaints:    complaints,
		suppressions:  suppressions,
		audit:         audit,
		users:         users,
		softThreshold: softThreshold,
		logger:        logger,
	}
}

// ProcessBounce records one bounce notification for one recipient and
// evaluates suppression: hard bounces suppress immediately, soft and
// transient bounces accumulate until bounce_count reaches the threshold.
func (s *suppressionService) ProcessBounce(ctx context.Context, ev *domain.BounceEvent) error {
	email := normalizeEmail(ev.Email)
	if email == "" {
		return fmt.Errorf("bounce event has no recipient email")
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	var duplicate bool
	bounce, err := s.bounces.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrBounceNotFound):
		bounce = &domain.EmailBounce{
			Email:             email,
			UserID:            s.lookupUserID(ctx, email),
			BounceType:        ev.BounceType,
			BounceSubtype:     ev.BounceSubtype,
			BounceCount:       1,
			FirstBounceDate:   ev.Timestamp,
			LastBounceDate:    ev.Timestamp,
			ProviderMessageID: ev.ProviderMessageID,
			DiagnosticCode:    ev.DiagnosticCode,
			RawPayload:        ev.RawPayload,
		}
		if err := s.bounces.Create(ctx, bounce); err != nil {
			return fmt.Errorf("failed to create bounce record: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to load bounce record: %w", err)
	default:
		// An unchanged provider message id means SNS redelivered a
		// notification we already hold; the count will not move and the
		// audit log gets nothing.
		duplicate = ev.ProviderMessageID != "" && bounce.ProviderMessageID == ev.ProviderMessageID
		bounce.BounceType = ev.BounceType
		bounce.BounceSubtype = ev.BounceSubtype
		bounce.DiagnosticCode = ev.DiagnosticCode
		bounce.ProviderMessageID = ev.ProviderMessageID
		bounce.LastBounceDate = ev.Timestamp
		bounce.RawPayload = ev.RawPayload
		if err := s.bounces.RecordRepeat(ctx, bounce); err != nil {
			return fmt.Errorf("failed to update bounce record: %w", err)
		}
	}

	if !duplicate {
		s.appendAudit(ctx, "system", auditBounceRecorded, email, string(ev.BounceType),
			fmt.Sprintf("subtype=%s count=%d", ev.BounceSubtype, bounce.BounceCount))
	}

	if !s.shouldSuppress(bounce) || bounce.Suppressed {
		return nil
	}

	reason := domain.SuppressSoftBounce
	if bounce.BounceType == domain.BounceHard {
		reason = domain.SuppressHardBounce
	}
	if err := s.bounces.MarkSuppressed(ctx, bounce.ID); err != nil {
		return fmt.Errorf("failed to mark bounce suppressed: %w", err)
	}
	bounce.Suppressed = true
	entry := &domain.EmailSuppression{
		Email:     email,
		UserID:    bounce.UserID,
		Reason:    reason,
		AddedDate: time.Now(),
		BounceID:  &bounce.ID,
		Notes:     fmt.Sprintf("auto-suppressed after %d bounce(s)", bounce.BounceCount),
	}
	if err := s.suppressions.UpsertActive(ctx, entry); err != nil {
		return fmt.Errorf("failed to add suppression: %w", err)
	}
	s.appendAudit(ctx, "system", auditSuppressed, email, string(reason),
		fmt.Sprintf("bounce_count=%d", bounce.BounceCount))
	return nil
}

// shouldSuppress implements the bounce suppression policy. Hard bounces are
// terminal on first sight; soft and transient bounces must repeat.
func (s *suppressionService) shouldSuppress(b *domain.EmailBounce) bool {
	if b.BounceType == domain.BounceHard {
		return true
	}
	return b.BounceCount >= s.softThreshold
}

// ProcessComplaint records a complaint and unconditionally suppresses the
// recipient. Complaints bypass the bounce threshold entirely; any complaint
// is terminal. Redelivery of the same provider message id is a no-op for
// history but still re-asserts the suppression.
func (s *suppressionService) ProcessComplaint(ctx context.Context, ev *domain.ComplaintEvent) error {
	email := normalizeEmail(ev.Email)
	if email == "" {
		return fmt.Errorf("complaint event has no recipient email")
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	userID := s.lookupUserID(ctx, email)

	duplicate := false
	if ev.ProviderMessageID != "" {
		exists, err := s.complaints.ExistsByMessageID(ctx, email, ev.ProviderMessageID)
		if err != nil {
			return fmt.Errorf("failed to check complaint history: %w", err)
		}
		duplicate = exists
	}

	var complaintID *string
	if !duplicate {
		complaint := &domain.EmailComplaint{
			Email:             email,
			UserID:            userID,
			ComplaintType:     ev.ComplaintType,
			ComplaintDate:     ev.Timestamp,
			Suppressed:        true,
			ProviderMessageID: ev.ProviderMessageID,
			FeedbackID:        ev.FeedbackID,
			RawPayload:        ev.RawPayload,
		}
		if err := s.complaints.Create(ctx, complaint); err != nil {
			return fmt.Errorf("failed to create complaint record: %w", err)
		}
		complaintID = &complaint.ID
		s.appendAudit(ctx, "system", auditComplaintRecorded, email, ev.ComplaintType,
			fmt.Sprintf("feedback_id=%s", ev.FeedbackID))
	}

	entry := &domain.EmailSuppression{
		Email:       email,
		UserID:      userID,
		Reason:      domain.SuppressComplaint,
		AddedDate:   time.Now(),
		ComplaintID: complaintID,
		Notes:       "auto-suppressed on complaint",
	}
	if err := s.suppressions.UpsertActive(ctx, entry); err != nil {
		return fmt.Errorf("failed to add suppression: %w", err)
	}
	if !duplicate {
		s.appendAudit(ctx, "system", auditSuppressed, email, string(domain.SuppressComplaint), "")
	}
	return nil
}

// SuppressManually puts an address on the suppression list by staff action.
func (s *suppressionService) SuppressManually(ctx context.Context, adminID, email, notes string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	entry := &domain.EmailSuppression{
		Email:     email,
		UserID:    s.lookupUserID(ctx, email),
		Reason:    domain.SuppressManual,
		AddedDate: time.Now(),
		Notes:     notes,
	}
	if err := s.suppressions.UpsertActive(ctx, entry); err != nil {
		return fmt.Errorf("failed to add suppression: %w", err)
	}
	s.appendAudit(ctx, adminID, auditSuppressed, email, string(domain.SuppressManual), notes)
	return nil
}

// Unsuppress deactivates the active suppression row for the address. History
// rows are kept; only is_active changes. The bounce record is reset alongside
// so a later bounce accumulates from zero and can suppress again.
func (s *suppressionService) Unsuppress(ctx context.Context, adminID, email string) error {
	email = normalizeEmail(email)
	if err := s.suppressions.Deactivate(ctx, email); err != nil {
		return err
	}
	if err := s.bounces.Reset(ctx, email); err != nil {
		return fmt.Errorf("failed to reset bounce history: %w", err)
	}
	s.appendAudit(ctx, adminID, auditUnsuppressed, email, "", "")
	return nil
}

func (s *suppressionService) IsSuppressed(ctx context.Context, email string) (bool, error) {
	_, err := s.suppressions.GetActiveByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrSuppressionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *suppressionService) List(ctx context.Context, onlyActive bool, p domain.PaginationParams) ([]*domain.EmailSuppression, int, error) {
	return s.suppressions.List(ctx, onlyActive, p)
}

// appendAudit writes a transition record for the external audit collaborator.
// Audit failures are logged, never propagated; they must not fail ingestion.
func (s *suppressionService) appendAudit(ctx context.Context, actor, kind, email, reason, detail string) {
	ev := &domain.EmailAuditEvent{
		ID:        uuid.NewString(),
		Actor:     actor,
		Kind:      kind,
		Email:     email,
		Reason:    reason,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := s.audit.Append(ctx, ev); err != nil {
		s.logger.Error("failed to append audit event", "kind", kind, "email", email, "error", err)
	}
}

func (s *suppressionService) lookupUserID(ctx context.Context, email string) *string {
	if s.users == nil {
		return nil
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}
	return &u.ID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
