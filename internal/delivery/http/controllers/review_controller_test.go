package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skyspotter/internal/delivery/http/middleware"
	"skyspotter/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReviewService implements domain.ReviewService for handler tests.
type fakeReviewService struct {
	reviews []*domain.Review
	listErr error
}

func (f *fakeReviewService) Create(ctx context.Context, authorID, locationID string, rating int, comment string) (*domain.Review, error) {
	return nil, nil
}

func (f *fakeReviewService) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	return nil, domain.ErrReviewNotFound
}

func (f *fakeReviewService) ListByLocation(ctx context.Context, locationID string, p domain.PaginationParams) ([]*domain.Review, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.reviews, len(f.reviews), nil
}

func (f *fakeReviewService) Update(ctx context.Context, authorID, reviewID string, rating *int, comment *string) (*domain.Review, error) {
	return nil, nil
}

func (f *fakeReviewService) Delete(ctx context.Context, authorID, reviewID string) error {
	return nil
}

func TestReviewController_ListByLocation_AttachesVotes(t *testing.T) {
	now := time.Now()
	reviews := &fakeReviewService{reviews: []*domain.Review{
		{ID: "review-1", LocationID: "loc-1", AuthorID: "author-1", Rating: 4, CreatedAt: now},
	}}
	votes := &fakeVoteService{result: &domain.VoteResult{
		Upvotes: 7, Downvotes: 2, NetScore: 5, UserVote: domain.VoteUp,
	}}
	controller := NewReviewController(discardLogger(), reviews, votes)

	req := httptest.NewRequest(http.MethodGet, "/locations/loc-1/reviews", nil)
	req.SetPathValue("id", "loc-1")
	req = req.WithContext(middleware.SetUserID(req.Context(), "viewer-1"))
	rec := httptest.NewRecorder()

	controller.ListByLocation(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data ReviewListResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.Len(t, envelope.Data.Reviews, 1)
	assert.Equal(t, "review-1", envelope.Data.Reviews[0].ID)
	require.NotNil(t, envelope.Data.Reviews[0].Votes)
	assert.Equal(t, 5, envelope.Data.Reviews[0].Votes.NetScore)
	assert.Equal(t, domain.VoteUp, envelope.Data.Reviews[0].Votes.UserVote)

	// The viewer's id reached the count lookup for the per-user vote.
	assert.Equal(t, "viewer-1", votes.lastVoter)
	assert.Equal(t, domain.Target{Kind: domain.TargetReview, ID: "review-1"}, votes.lastTarget)
	assert.Equal(t, 1, envelope.Data.Pagination.Total)
}

func TestReviewController_ListByLocation_AnonymousViewer(t *testing.T) {
	reviews := &fakeReviewService{reviews: []*domain.Review{
		{ID: "review-1", LocationID: "loc-1", AuthorID: "author-1", Rating: 3},
	}}
	votes := &fakeVoteService{result: &domain.VoteResult{UserVote: domain.VoteNone}}
	controller := NewReviewController(discardLogger(), reviews, votes)

	req := httptest.NewRequest(http.MethodGet, "/locations/loc-1/reviews", nil)
	req.SetPathValue("id", "loc-1")
	rec := httptest.NewRecorder()

	controller.ListByLocation(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, votes.lastVoter)
}
