package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for email deliverability records.
var (
	ErrBounceNotFound      = errors.New("bounce record not found")
	ErrSuppressionNotFound = errors.New("no active suppression for email")
)

// BounceType classifies a bounce notification.
type BounceType string

const (
	BounceHard      BounceType = "hard"
	BounceSoft      BounceType = "soft"
	BounceTransient BounceType = "transient"
)

// SuppressionReason explains why an address is on the suppression list.
type SuppressionReason string

const (
	SuppressHardBounce  SuppressionReason = "hard_bounce"
	SuppressSoftBounce  SuppressionReason = "soft_bounce"
	SuppressComplaint   SuppressionReason = "complaint"
	SuppressManual      SuppressionReason = "manual"
	SuppressUnsubscribe SuppressionReason = "unsubscribe"
)

// EmailBounce tracks bounce history for a single address. One row per email;
// BounceCount increments on repeat bounces with a new provider message id.
type EmailBounce struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	UserID            *string    `json:"user_id,omitempty"`
	BounceType        BounceType `json:"bounce_type"`
	BounceSubtype     string     `json:"bounce_subtype"`
	BounceCount       int        `json:"bounce_count"`
	FirstBounceDate   time.Time  `json:"first_bounce_date"`
	LastBounceDate    time.Time  `json:"last_bounce_date"`
	Suppressed        bool       `json:"suppressed"`
	ProviderMessageID string     `json:"provider_message_id"`
	DiagnosticCode    string     `json:"diagnostic_code"`
	RawPayload        []byte     `json:"-"`
}

// EmailComplaint records a spam complaint. Append-only; multiple rows per
// email are allowed.
type EmailComplaint struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	UserID            *string   `json:"user_id,omitempty"`
	ComplaintType     string    `json:"complaint_type"`
	ComplaintDate     time.Time `json:"complaint_date"`
	Suppressed        bool      `json:"suppressed"`
	ProviderMessageID string    `json:"provider_message_id"`
	FeedbackID        string    `json:"feedback_id"`
	RawPayload        []byte    `json:"-"`
}

// EmailSuppression is a standing decision to never send to an address.
// At most one active row exists per email at any time.
type EmailSuppression struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	UserID      *string           `json:"user_id,omitempty"`
	Reason      SuppressionReason `json:"reason"`
	AddedDate   time.Time         `json:"added_date"`
	IsActive    bool              `json:"is_active"`
	BounceID    *string           `json:"bounce_id,omitempty"`
	ComplaintID *string           `json:"complaint_id,omitempty"`
	Notes       string            `json:"notes"`
}

// EmailAuditEvent records a suppression transition for the external audit
// log collaborator.
type EmailAuditEvent struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"` // "system" or an admin user id
	Kind      string    `json:"kind"`  // bounce_recorded, complaint_recorded, suppressed, unsuppressed
	Email     string    `json:"email"`
	Reason    string    `json:"reason"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// BounceRepository stores bounce history keyed by email.
type BounceRepository interface {
	GetByEmail(ctx context.Context, email string) (*EmailBounce, error)
	Create(ctx context.Context, b *EmailBounce) error
	// RecordRepeat increments bounce_count and refreshes type, subtype,
	// diagnostic code, message id, and last_bounce_date. When the provider
	// message id matches the stored one the delivery is a duplicate and the
	// count must not increment.
	RecordRepeat(ctx context.Context, b *EmailBounce) error
	MarkSuppressed(ctx context.Context, id string) error
	// Reset clears the suppressed flag and zeroes bounce_count so the next
	// bounce starts a fresh accumulation. An address with no bounce history
	// is not an error.
	Reset(ctx context.Context, email string) error
}

// ComplaintRepository stores complaints (append-only).
type ComplaintRepository interface {
	Create(ctx context.Context, c *EmailComplaint) error
	ExistsByMessageID(ctx context.Context, email, providerMessageID string) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]*EmailComplaint, error)
}

// SuppressionRepository stores suppression list entries. UpsertActive must
// never produce two simultaneously-active rows for one email; implementations
// back this with a partial unique index over active rows.
type SuppressionRepository interface {
	GetActiveByEmail(ctx context.Context, email string) (*EmailSuppression, error)
	UpsertActive(ctx context.Context, s *EmailSuppression) error
	Deactivate(ctx context.Context, email string) error
	List(ctx context.Context, onlyActive bool, p PaginationParams) ([]*EmailSuppression, int, error)
}

// AuditRepository appends suppression audit events.
type AuditRepository interface {
	Append(ctx context.Context, ev *EmailAuditEvent) error
}

// BounceEvent is a parsed per-recipient bounce from a provider notification.
type BounceEvent struct {
	Email             string
	BounceType        BounceType
	BounceSubtype     string
	DiagnosticCode    string
	ProviderMessageID string
	Timestamp         time.Time
	RawPayload        []byte
}

// ComplaintEvent is a parsed per-recipient complaint from a provider notification.
type ComplaintEvent struct {
	Email             string
	ComplaintType     string
	FeedbackID        string
	ProviderMessageID string
	Timestamp         time.Time
	RawPayload        []byte
}

// SuppressionService decides, from bounce/complaint history, whether an
// address must be suppressed, and maintains the suppression list.
type SuppressionService interface {
	ProcessBounce(ctx context.Context, ev *BounceEvent) error
	ProcessComplaint(ctx context.Context, ev *ComplaintEvent) error
	SuppressManually(ctx context.Context, adminID, email, notes string) error
	Unsuppress(ctx context.Context, adminID, email string) error
	IsSuppressed(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, onlyActive bool, p PaginationParams) ([]*EmailSuppression, int, error)
}
