package services

import (
	"context"
	"testing"
	"time"

	"skyspotter/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReviewRepo implements domain.ReviewRepository in memory.
type fakeReviewRepo struct {
	byID      map[string]*domain.Review
	nextID    int
	createErr error
	// recalcs counts how many mutations ran, standing in for the in-tx
	// rating recompute the real repository performs.
	recalcs int
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{byID: make(map[string]*domain.Review), nextID: 1}
}

func (f *fakeReviewRepo) Create(ctx context.Context, rev *domain.Review) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.AuthorID == rev.AuthorID && existing.LocationID == rev.LocationID {
			return domain.ErrDuplicateReview
		}
	}
	rev.ID = "review-" + string(rune('0'+f.nextID))
	f.nextID++
	copied := *rev
	f.byID[rev.ID] = &copied
	f.recalcs++
	return nil
}

func (f *fakeReviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	if rev, ok := f.byID[id]; ok {
		copied := *rev
		return &copied, nil
	}
	return nil, domain.ErrReviewNotFound
}

func (f *fakeReviewRepo) GetByAuthorAndLocation(ctx context.Context, authorID, locationID string) (*domain.Review, error) {
	for _, rev := range f.byID {
		if rev.AuthorID == authorID && rev.LocationID == locationID {
			copied := *rev
			return &copied, nil
		}
	}
	return nil, domain.ErrReviewNotFound
}

func (f *fakeReviewRepo) ListByLocation(ctx context.Context, locationID string, p domain.PaginationParams) ([]*domain.Review, int, error) {
	var out []*domain.Review
	for _, rev := range f.byID {
		if rev.LocationID == locationID {
			out = append(out, rev)
		}
	}
	return out, len(out), nil
}

func (f *fakeReviewRepo) Update(ctx context.Context, rev *domain.Review) error {
	if _, ok := f.byID[rev.ID]; !ok {
		return domain.ErrReviewNotFound
	}
	copied := *rev
	f.byID[rev.ID] = &copied
	f.recalcs++
	return nil
}

func (f *fakeReviewRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(f.byID, id)
	f.recalcs++
	return nil
}

// fakeLocationRepo implements domain.LocationRepository.
type fakeLocationRepo struct {
	byID map[string]*domain.Location
}

func (f *fakeLocationRepo) Create(ctx context.Context, l *domain.Location) error {
	f.byID[l.ID] = l
	return nil
}

func (f *fakeLocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	if l, ok := f.byID[id]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, domain.ErrLocationNotFound
}

func (f *fakeLocationRepo) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Location, int, error) {
	return nil, 0, nil
}

func (f *fakeLocationRepo) Update(ctx context.Context, id string, name, description *string) (*domain.Location, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeLocationRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeLocationRepo) RecalculateRating(ctx context.Context, id string) error { return nil }

func newReviewFixture() (*fakeReviewRepo, *fakeLocationRepo, domain.ReviewService) {
	reviews := newFakeReviewRepo()
	locations := &fakeLocationRepo{byID: map[string]*domain.Location{
		"loc-1": {ID: "loc-1", Name: "Dark Sky Ridge", AddedBy: "owner-1"},
	}}
	svc := NewReviewService(reviews, locations, nil, testLogger())
	return reviews, locations, svc
}

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		reviews, _, svc := newReviewFixture()
		rev, err := svc.Create(ctx, "author-1", "loc-1", 4, "  great seeing  ")
		require.NoError(t, err)
		assert.Equal(t, 4, rev.Rating)
		assert.Equal(t, "great seeing", rev.Comment)
		assert.Equal(t, 1, reviews.recalcs)
	})

	t.Run("invalid rating", func(t *testing.T) {
		_, _, svc := newReviewFixture()
		for _, rating := range []int{0, 6, -1} {
			_, err := svc.Create(ctx, "author-1", "loc-1", rating, "")
			require.ErrorIs(t, err, domain.ErrInvalidRating)
		}
	})

	t.Run("unknown location", func(t *testing.T) {
		_, _, svc := newReviewFixture()
		_, err := svc.Create(ctx, "author-1", "missing", 3, "")
		require.ErrorIs(t, err, domain.ErrLocationNotFound)
	})

	t.Run("owner cannot review own location", func(t *testing.T) {
		reviews, _, svc := newReviewFixture()
		_, err := svc.Create(ctx, "owner-1", "loc-1", 5, "")
		require.ErrorIs(t, err, domain.ErrSelfReview)
		assert.Empty(t, reviews.byID)
	})

	t.Run("second review of same location rejected", func(t *testing.T) {
		_, _, svc := newReviewFixture()
		_, err := svc.Create(ctx, "author-1", "loc-1", 4, "first")
		require.NoError(t, err)
		_, err = svc.Create(ctx, "author-1", "loc-1", 5, "second")
		require.ErrorIs(t, err, domain.ErrDuplicateReview)
	})
}

func TestReviewService_UpdateAndDelete_AuthorOnly(t *testing.T) {
	ctx := context.Background()
	reviews, _, svc := newReviewFixture()

	rev, err := svc.Create(ctx, "author-1", "loc-1", 4, "solid")
	require.NoError(t, err)

	newRating := 5
	_, err = svc.Update(ctx, "someone-else", rev.ID, &newRating, nil)
	require.ErrorIs(t, err, domain.ErrNotReviewAuthor)

	updated, err := svc.Update(ctx, "author-1", rev.ID, &newRating, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "solid", updated.Comment)
	assert.True(t, updated.UpdatedAt.After(time.Time{}))

	badRating := 9
	_, err = svc.Update(ctx, "author-1", rev.ID, &badRating, nil)
	require.ErrorIs(t, err, domain.ErrInvalidRating)

	err = svc.Delete(ctx, "someone-else", rev.ID)
	require.ErrorIs(t, err, domain.ErrNotReviewAuthor)

	require.NoError(t, svc.Delete(ctx, "author-1", rev.ID))
	assert.Empty(t, reviews.byID)
	// Create, update, delete each ran the aggregate recompute.
	assert.Equal(t, 3, reviews.recalcs)
}
