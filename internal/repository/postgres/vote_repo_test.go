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

func TestVoteRepository_Create(t *testing.T) {
	ctx := context.Background()
	vote := func() *domain.Vote {
		return &domain.Vote{
			VoterID:   "voter-1",
			Target:    domain.Target{Kind: domain.TargetReview, ID: "review-1"},
			IsUpvote:  true,
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		}
	}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO votes`).
					WithArgs("voter-1", domain.TargetReview, "review-1", true, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("vote-uuid-1"))
			},
		},
		{
			name: "unique violation returns ErrDuplicateVote",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO votes`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateVote,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO votes`).
					WillReturnError(sql.ErrConnDone)
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
			repo := NewVoteRepository(db)
			v := vote()
			err = repo.Create(ctx, v)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
				require.Equal(t, "vote-uuid-1", v.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVoteRepository_Get(t *testing.T) {
	ctx := context.Background()
	target := domain.Target{Kind: domain.TargetComment, ID: "comment-1"}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, voter_id, target_kind, target_id, is_upvote, created_at`).
		WithArgs("voter-1", domain.TargetComment, "comment-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "voter_id", "target_kind", "target_id", "is_upvote", "created_at"}).
			AddRow("vote-1", "voter-1", "comment", "comment-1", false, created))

	repo := NewVoteRepository(db)
	v, err := repo.Get(ctx, "voter-1", target)
	require.NoError(t, err)
	require.Equal(t, "vote-1", v.ID)
	require.False(t, v.IsUpvote)
	require.Equal(t, target, v.Target)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, voter_id, target_kind, target_id, is_upvote, created_at`).
		WillReturnError(sql.ErrNoRows)

	repo := NewVoteRepository(db)
	_, err = repo.Get(context.Background(), "voter-1", domain.Target{Kind: domain.TargetReview, ID: "x"})
	require.ErrorIs(t, err, domain.ErrVoteNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_SetDirection_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE votes SET is_upvote`).
		WithArgs(true, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewVoteRepository(db)
	err = repo.SetDirection(context.Background(), "missing", true)
	require.ErrorIs(t, err, domain.ErrVoteNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_Counts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs(domain.TargetLocation, "loc-1").
		WillReturnRows(sqlmock.NewRows([]string{"up", "down"}).AddRow(7, 2))

	repo := NewVoteRepository(db)
	up, down, err := repo.Counts(context.Background(), domain.Target{Kind: domain.TargetLocation, ID: "loc-1"})
	require.NoError(t, err)
	require.Equal(t, 7, up)
	require.Equal(t, 2, down)
	require.NoError(t, mock.ExpectationsWereMet())
}
