package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"skyspotter/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestSuppressionRepository_UpsertActive(t *testing.T) {
	ctx := context.Background()

	t.Run("insert returns stored row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		added := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		bounceID := "bounce-1"
		mock.ExpectQuery(`INSERT INTO email_suppressions`).
			WithArgs("dead@example.com", nil, domain.SuppressHardBounce, sqlmock.AnyArg(),
				&bounceID, nil, "auto-suppressed after 1 bounce(s)").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "email", "user_id", "reason", "added_date", "is_active",
				"bounce_id", "complaint_id", "notes",
			}).AddRow("supp-1", "dead@example.com", nil, "hard_bounce", added, true,
				"bounce-1", nil, "auto-suppressed after 1 bounce(s)"))

		repo := NewSuppressionRepository(db)
		s := &domain.EmailSuppression{
			Email:     "dead@example.com",
			Reason:    domain.SuppressHardBounce,
			AddedDate: added,
			BounceID:  &bounceID,
			Notes:     "auto-suppressed after 1 bounce(s)",
		}
		require.NoError(t, repo.UpsertActive(ctx, s))
		require.Equal(t, "supp-1", s.ID)
		require.True(t, s.IsActive)
		require.Equal(t, domain.SuppressHardBounce, s.Reason)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict with active row keeps the original reason", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		added := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
		// The address was already suppressed for a complaint; a later bounce
		// upsert must not downgrade the reason.
		mock.ExpectQuery(`INSERT INTO email_suppressions`).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "email", "user_id", "reason", "added_date", "is_active",
				"bounce_id", "complaint_id", "notes",
			}).AddRow("supp-1", "dead@example.com", nil, "complaint", added, true,
				nil, "complaint-1", "auto-suppressed after 3 bounce(s)"))

		repo := NewSuppressionRepository(db)
		s := &domain.EmailSuppression{
			Email:     "dead@example.com",
			Reason:    domain.SuppressSoftBounce,
			AddedDate: time.Now(),
			Notes:     "auto-suppressed after 3 bounce(s)",
		}
		require.NoError(t, repo.UpsertActive(ctx, s))
		require.Equal(t, domain.SuppressComplaint, s.Reason)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSuppressionRepository_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE email_suppressions SET is_active = FALSE`).
			WithArgs("dead@example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewSuppressionRepository(db)
		require.NoError(t, repo.Deactivate(ctx, "dead@example.com"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no active row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE email_suppressions SET is_active = FALSE`).
			WithArgs("never@example.com").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewSuppressionRepository(db)
		err = repo.Deactivate(ctx, "never@example.com")
		require.ErrorIs(t, err, domain.ErrSuppressionNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSuppressionRepository_GetActiveByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM email_suppressions WHERE email = \$1 AND is_active`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "user_id", "reason", "added_date", "is_active",
			"bounce_id", "complaint_id", "notes",
		}))

	repo := NewSuppressionRepository(db)
	_, err = repo.GetActiveByEmail(context.Background(), "clean@example.com")
	require.ErrorIs(t, err, domain.ErrSuppressionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
