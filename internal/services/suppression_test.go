package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"skyspotter/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBounceRepo implements domain.BounceRepository, one record per email,
// mirroring the dedup-by-message-id semantics of the real table.
type fakeBounceRepo struct {
	byEmail map[string]*domain.EmailBounce
	nextID  int
}

func newFakeBounceRepo() *fakeBounceRepo {
	return &fakeBounceRepo{byEmail: make(map[string]*domain.EmailBounce), nextID: 1}
}

func (f *fakeBounceRepo) GetByEmail(ctx context.Context, email string) (*domain.EmailBounce, error) {
	if b, ok := f.byEmail[email]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, domain.ErrBounceNotFound
}

func (f *fakeBounceRepo) Create(ctx context.Context, b *domain.EmailBounce) error {
	b.ID = "bounce-" + strconv.Itoa(f.nextID)
	f.nextID++
	copied := *b
	f.byEmail[b.Email] = &copied
	return nil
}

func (f *fakeBounceRepo) RecordRepeat(ctx context.Context, b *domain.EmailBounce) error {
	stored, ok := f.byEmail[b.Email]
	if !ok {
		return domain.ErrBounceNotFound
	}
	if stored.ProviderMessageID != b.ProviderMessageID {
		stored.BounceCount++
	}
	stored.BounceType = b.BounceType
	stored.BounceSubtype = b.BounceSubtype
	stored.DiagnosticCode = b.DiagnosticCode
	stored.ProviderMessageID = b.ProviderMessageID
	stored.LastBounceDate = b.LastBounceDate
	b.ID = stored.ID
	b.BounceCount = stored.BounceCount
	b.Suppressed = stored.Suppressed
	return nil
}

func (f *fakeBounceRepo) Reset(ctx context.Context, email string) error {
	if b, ok := f.byEmail[email]; ok {
		b.Suppressed = false
		b.BounceCount = 0
	}
	return nil
}

func (f *fakeBounceRepo) MarkSuppressed(ctx context.Context, id string) error {
	for _, b := range f.byEmail {
		if b.ID == id {
			b.Suppressed = true
			return nil
		}
	}
	return domain.ErrBounceNotFound
}

// fakeComplaintRepo implements domain.ComplaintRepository (append-only).
type fakeComplaintRepo struct {
	complaints []*domain.EmailComplaint
	nextID     int
}

func (f *fakeComplaintRepo) Create(ctx context.Context, c *domain.EmailComplaint) error {
	f.nextID++
	c.ID = "complaint-" + strconv.Itoa(f.nextID)
	copied := *c
	f.complaints = append(f.complaints, &copied)
	return nil
}

func (f *fakeComplaintRepo) ExistsByMessageID(ctx context.Context, email, providerMessageID string) (bool, error) {
	for _, c := range f.complaints {
		if c.Email == email && c.ProviderMessageID == providerMessageID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeComplaintRepo) ListByEmail(ctx context.Context, email string) ([]*domain.EmailComplaint, error) {
	var out []*domain.EmailComplaint
	for _, c := range f.complaints {
		if c.Email == email {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeSuppressionRepo implements domain.SuppressionRepository with at most
// one active entry per email, like the partial unique index guarantees.
type fakeSuppressionRepo struct {
	entries []*domain.EmailSuppression
	nextID  int
}

func (f *fakeSuppressionRepo) activeFor(email string) *domain.EmailSuppression {
	for _, e := range f.entries {
		if e.Email == email && e.IsActive {
			return e
		}
	}
	return nil
}

func (f *fakeSuppressionRepo) GetActiveByEmail(ctx context.Context, email string) (*domain.EmailSuppression, error) {
	if e := f.activeFor(email); e != nil {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrSuppressionNotFound
}

func (f *fakeSuppressionRepo) UpsertActive(ctx context.Context, s *domain.EmailSuppression) error {
	if existing := f.activeFor(s.Email); existing != nil {
		existing.Notes = s.Notes
		*s = *existing
		return nil
	}
	f.nextID++
	s.ID = "supp-" + strconv.Itoa(f.nextID)
	s.IsActive = true
	copied := *s
	f.entries = append(f.entries, &copied)
	return nil
}

func (f *fakeSuppressionRepo) Deactivate(ctx context.Context, email string) error {
	if e := f.activeFor(email); e != nil {
		e.IsActive = false
		return nil
	}
	return domain.ErrSuppressionNotFound
}

func (f *fakeSuppressionRepo) List(ctx context.Context, onlyActive bool, p domain.PaginationParams) ([]*domain.EmailSuppression, int, error) {
	var out []*domain.EmailSuppression
	for _, e := range f.entries {
		if onlyActive && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

// fakeAuditRepo implements domain.AuditRepository.
type fakeAuditRepo struct {
	events []*domain.EmailAuditEvent
}

func (f *fakeAuditRepo) Append(ctx context.Context, ev *domain.EmailAuditEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeAuditRepo) kinds() []string {
	out := make([]string, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Kind
	}
	return out
}

type suppressionFixture struct {
	bounces      *fakeBounceRepo
	complaints   *fakeComplaintRepo
	suppressions *fakeSuppressionRepo
	audit        *fakeAuditRepo
	svc          domain.SuppressionService
}

func newSuppressionFixture(threshold int) *suppressionFixture {
	f := &suppressionFixture{
		bounces:      newFakeBounceRepo(),
		complaints:   &fakeComplaintRepo{},
		suppressions: &fakeSuppressionRepo{},
		audit:        &fakeAuditRepo{},
	}
	f.svc = NewSuppressionService(f.bounces, f.complaints, f.suppressions, f.audit, nil, threshold, testLogger())
	return f
}

func bounceEvent(email string, t domain.BounceType, messageID string) *domain.BounceEvent {
	return &domain.BounceEvent{
		Email:             email,
		BounceType:        t,
		BounceSubtype:     "General",
		DiagnosticCode:    "550 5.1.1 user unknown",
		ProviderMessageID: messageID,
		Timestamp:         time.Now(),
	}
}

func TestSuppressionService_HardBounceSuppressesImmediately(t *testing.T) {
	ctx := context.Background()
	f := newSuppressionFixture(3)

	err := f.svc.ProcessBounce(ctx, bounceEvent("Dead@Example.com", domain.BounceHard, "msg-1"))
	require.NoError(t, err)

	// Address is normalized to lower case.
	entry, err := f.suppressions.GetActiveByEmail(ctx, "dead@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.SuppressHardBounce, entry.Reason)
	require.NotNil(t, entry.BounceID)

	b := f.bounces.byEmail["dead@example.com"]
	require.NotNil(t, b)
	assert.True(t, b.Suppressed)
	assert.Equal(t, 1, b.BounceCount)

	assert.Equal(t, []string{"bounce_recorded", "suppressed"}, f.audit.kinds())
}

func TestSuppressionService_SoftBounceAccumulatesToThreshold(t *testing.T) {
	ctx := context.Background()
	f := newSuppressionFixture(3)
	email := "flaky@example.com"

	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceSoft, "msg-1")))
	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceSoft, "msg-2")))

	suppressed, err := f.svc.IsSuppressed(ctx, email)
	require.NoError(t, err)
	assert.False(t, suppressed, "two soft bounces stay below the threshold")

	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceTransient, "msg-3")))

	suppressed, err = f.svc.IsSuppressed(ctx, email)
	require.NoError(t, err)
	assert.True(t, suppressed)

	entry, err := f.suppressions.GetActiveByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, domain.SuppressSoftBounce, entry.Reason)
	assert.Equal(t, 3, f.bounces.byEmail[email].BounceCount)
}

func TestSuppressionService_DuplicateDeliveryDoesNotCount(t *testing.T) {
	ctx := context.Background()
	f := newSuppressionFixture(2)
	email := "flaky@example.com"

	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceSoft, "msg-1")))
	// SNS redelivers the same notification.
	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceSoft, "msg-1")))

	assert.Equal(t, 1, f.bounces.byEmail[email].BounceCount)
	suppressed, err := f.svc.IsSuppressed(ctx, email)
	require.NoError(t, err)
	assert.False(t, suppressed)

	// The redelivery also leaves no trace in the audit stream.
	assert.Equal(t, []string{"bounce_recorded"}, f.audit.kinds())
}

func TestSuppressionService_RepeatBounceAfterSuppressionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newSuppressionFixture(3)
	email := "dead@example.com"

	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceHard, "msg-1")))
	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceHard, "msg-2")))

	// Still exactly one active suppression entry.
	active := 0
	for _, e := range f.suppressions.entries {
		if e.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
	// The second bounce is recorded but emits no second "suppressed" event.
	assert.Equal(t, []string{"bounce_recorded", "suppressed", "bounce_recorded"}, f.audit.kinds())
}

func TestSuppressionService_ComplaintAlwaysSuppresses(t *testing.T) {
	ctx := context.Background()
	f := newSuppressionFixture(3)

	err := f.svc.ProcessComplaint(ctx, &domain.ComplaintEvent{
		Email:             "angry@example.com",
		ComplaintType:     "abuse",
		FeedbackID:        "fb-1",
		ProviderMessageID: "msg-1",
		Timestamp:         time.Now(),
	})
	require.NoError(t, err)

	entry, err := f.suppressions.GetActiveByEmail(ctx, "angry@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.SuppressComplaint, entry.Reason)
	require.NotNil(t, entry.ComplaintID)
	require.Len(t, f.complaints.complaints, 1)
	assert.True(t, f.complaints.complaints[0].Suppressed)
	assert.Equal(t, []string{"complaint_recorded", "suppressed"}, f.audit.kinds())
}

func TestSuppressionService_DuplicateComplaintKeepsHistoryClean(t *testing.T) {
	ctx := context.Background()
	f := newSuppressionFixture(3)
	ev := &domain.ComplaintEvent{
		Email:             "angry@example.com",
		ComplaintType:     "abuse",
		FeedbackID:        "fb-1",
		ProviderMessageID: "msg-1",
		Timestamp:         time.Now(),
	}

	require.NoError(t, f.svc.ProcessComplaint(ctx, ev))
	require.NoError(t, f.svc.ProcessComplaint(ctx, ev))

	assert.Len(t, f.complaints.complaints, 1, "redelivery must not append a second complaint")
	suppressed, err := f.svc.IsSuppressed(ctx, ev.Email)
	require.NoError(t, err)
	assert.True(t, suppressed)
	assert.Equal(t, []string{"complaint_recorded", "suppressed"}, f.audit.kinds())
}

func TestSuppressionService_ManualSuppressAndUnsuppress(t *testing.T) {
	ctx := context.Background()
	f := newSuppressionFixture(3)

	require.NoError(t, f.svc.SuppressManually(ctx, "admin-1", "spam-target@example.com", "user request"))

	entry, err := f.suppressions.GetActiveByEmail(ctx, "spam-target@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.SuppressManual, entry.Reason)
	assert.Equal(t, "user request", entry.Notes)
	require.Len(t, f.audit.events, 1)
	assert.Equal(t, "admin-1", f.audit.events[0].Actor)

	require.NoError(t, f.svc.Unsuppress(ctx, "admin-1", "spam-target@example.com"))
	suppressed, err := f.svc.IsSuppressed(ctx, "spam-target@example.com")
	require.NoError(t, err)
	assert.False(t, suppressed)

	// History is kept, just deactivated.
	assert.Len(t, f.suppressions.entries, 1)
	assert.False(t, f.suppressions.entries[0].IsActive)

	err = f.svc.Unsuppress(ctx, "admin-1", "never-suppressed@example.com")
	require.ErrorIs(t, err, domain.ErrSuppressionNotFound)
}

func TestSuppressionService_BounceAfterUnsuppressResuppresses(t *testing.T) {
	ctx := context.Background()
	f := newSuppressionFixture(3)
	email := "revived@example.com"

	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceHard, "msg-1")))
	suppressed, err := f.svc.IsSuppressed(ctx, email)
	require.NoError(t, err)
	require.True(t, suppressed)

	// Admin lifts the suppression; the bounce history restarts from zero.
	require.NoError(t, f.svc.Unsuppress(ctx, "admin-1", email))
	b := f.bounces.byEmail[email]
	require.NotNil(t, b)
	assert.False(t, b.Suppressed)
	assert.Equal(t, 0, b.BounceCount)

	// The address bounces again: it must go straight back on the list.
	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceHard, "msg-2")))
	suppressed, err = f.svc.IsSuppressed(ctx, email)
	require.NoError(t, err)
	assert.True(t, suppressed, "hard bounce after unsuppress must re-suppress the address")
	assert.Equal(t, 1, b.BounceCount, "count restarts instead of resuming the old tally")

	assert.Equal(t, []string{
		"bounce_recorded", "suppressed",
		"unsuppressed",
		"bounce_recorded", "suppressed",
	}, f.audit.kinds())
}

func TestSuppressionService_SoftBounceAfterUnsuppressStartsFreshCount(t *testing.T) {
	ctx := context.Background()
	f := newSuppressionFixture(2)
	email := "flaky@example.com"

	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceSoft, "msg-1")))
	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceSoft, "msg-2")))
	require.NoError(t, f.svc.Unsuppress(ctx, "admin-1", email))

	// One soft bounce is below the threshold again after the reset.
	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceSoft, "msg-3")))
	suppressed, err := f.svc.IsSuppressed(ctx, email)
	require.NoError(t, err)
	assert.False(t, suppressed)

	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceSoft, "msg-4")))
	suppressed, err = f.svc.IsSuppressed(ctx, email)
	require.NoError(t, err)
	assert.True(t, suppressed)
}

func TestSuppressionService_ComplaintOutranksBounceHistory(t *testing.T) {
	ctx := context.Background()
	f := newSuppressionFixture(3)
	email := "both@example.com"

	// One soft bounce, then a complaint: the complaint suppresses regardless
	// of the bounce count.
	require.NoError(t, f.svc.ProcessBounce(ctx, bounceEvent(email, domain.BounceSoft, "msg-1")))
	require.NoError(t, f.svc.ProcessComplaint(ctx, &domain.ComplaintEvent{
		Email:             email,
		ComplaintType:     "abuse",
		ProviderMessageID: "msg-2",
		Timestamp:         time.Now(),
	}))

	entry, err := f.suppressions.GetActiveByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, domain.SuppressComplaint, entry.Reason)
}
