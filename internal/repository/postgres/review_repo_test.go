package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"skyspotter/internal/domain"

	"github.com/stretchr/testify/require"
)

func expectRatingRecalc(mock sqlmock.Sqlmock, locationID string) {
	mock.ExpectQuery(`SELECT id FROM locations WHERE id = \$1 FOR UPDATE`).
		WithArgs(locationID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(locationID))
	mock.ExpectExec(`UPDATE locations SET`).
		WithArgs(locationID).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestReviewRepository_Create(t *testing.T) {
	ctx := context.Background()
	review := func() *domain.Review {
		now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		return &domain.Review{
			LocationID: "loc-1",
			AuthorID:   "author-1",
			Rating:     4,
			Comment:    "dark skies, low horizon glow",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success recomputes rating in same transaction",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO reviews`).
					WithArgs("loc-1", "author-1", 4, "dark skies, low horizon glow", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("review-uuid-1"))
				expectRatingRecalc(mock, "loc-1")
				mock.ExpectCommit()
			},
		},
		{
			name: "duplicate review rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO reviews`).
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateReview,
		},
		{
			name: "recalc failure rolls back the insert",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO reviews`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("review-uuid-1"))
				mock.ExpectQuery(`SELECT id FROM locations WHERE id = \$1 FOR UPDATE`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewReviewRepository(db)
			err = repo.Create(ctx, review())
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReviewRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("captures location before deleting and recomputes", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT location_id FROM reviews WHERE id = \$1`).
			WithArgs("review-1").
			WillReturnRows(sqlmock.NewRows([]string{"location_id"}).AddRow("loc-1"))
		mock.ExpectExec(`DELETE FROM reviews WHERE id = \$1`).
			WithArgs("review-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectRatingRecalc(mock, "loc-1")
		mock.ExpectCommit()

		repo := NewReviewRepository(db)
		require.NoError(t, repo.Delete(ctx, "review-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing review", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT location_id FROM reviews WHERE id = \$1`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		repo := NewReviewRepository(db)
		err = repo.Delete(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrReviewNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReviewRepository_Update(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reviews SET rating`).
		WithArgs(5, "even better in winter", sqlmock.AnyArg(), "review-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectRatingRecalc(mock, "loc-1")
	mock.ExpectCommit()

	repo := NewReviewRepository(db)
	err = repo.Update(ctx, &domain.Review{
		ID:         "review-1",
		LocationID: "loc-1",
		Rating:     5,
		Comment:    "even better in winter",
		UpdatedAt:  time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationRepository_RecalculateRating_MissingLocation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM locations WHERE id = \$1 FOR UPDATE`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	repo := NewLocationRepository(db)
	err = repo.RecalculateRating(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrLocationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
