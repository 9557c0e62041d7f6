package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"skyspotter/internal/delivery/http/helpers"
	"skyspotter/internal/delivery/http/middleware"
	"skyspotter/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVoteService implements domain.VoteService for handler tests.
type fakeVoteService struct {
	result     *domain.VoteResult
	err        error
	lastVoter  string
	lastTarget domain.Target
	lastDir    domain.VoteDirection
}

func (f *fakeVoteService) HandleVote(ctx context.Context, voterID string, target domain.Target, direction domain.VoteDirection) (*domain.VoteResult, error) {
	f.lastVoter = voterID
	f.lastTarget = target
	f.lastDir = direction
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeVoteService) GetVoteCounts(ctx context.Context, target domain.Target, voterID string) *domain.VoteResult {
	f.lastVoter = voterID
	f.lastTarget = target
	return f.result
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newVoteRequest(t *testing.T, userID, kind, id string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/votes/"+kind+"/"+id, bytes.NewReader(raw))
	req.SetPathValue("kind", kind)
	req.SetPathValue("id", id)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestVoteController_Vote(t *testing.T) {
	tests := []struct {
		name         string
		userID       string
		body         any
		svc          *fakeVoteService
		wantStatus   int
		wantErrCode  string
		checkService func(t *testing.T, f *fakeVoteService)
	}{
		{
			name:   "success",
			userID: "voter-1",
			body:   VoteRequest{VoteType: "up"},
			svc: &fakeVoteService{result: &domain.VoteResult{
				Upvotes: 3, Downvotes: 1, NetScore: 2, UserVote: domain.VoteUp,
			}},
			wantStatus: http.StatusOK,
			checkService: func(t *testing.T, f *fakeVoteService) {
				assert.Equal(t, "voter-1", f.lastVoter)
				assert.Equal(t, domain.Target{Kind: domain.TargetReview, ID: "review-1"}, f.lastTarget)
				assert.Equal(t, domain.VoteUp, f.lastDir)
			},
		},
		{
			name:        "unauthenticated",
			userID:      "",
			body:        VoteRequest{VoteType: "up"},
			svc:         &fakeVoteService{},
			wantStatus:  http.StatusUnauthorized,
			wantErrCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:        "invalid vote type in body",
			userID:      "voter-1",
			body:        VoteRequest{VoteType: "sideways"},
			svc:         &fakeVoteService{},
			wantStatus:  http.StatusBadRequest,
			wantErrCode: helpers.ErrCodeBadRequest,
		},
		{
			name:        "self vote",
			userID:      "voter-1",
			body:        VoteRequest{VoteType: "down"},
			svc:         &fakeVoteService{err: domain.ErrSelfVote},
			wantStatus:  http.StatusBadRequest,
			wantErrCode: helpers.ErrCodeBadRequest,
		},
		{
			name:        "target not found",
			userID:      "voter-1",
			body:        VoteRequest{VoteType: "up"},
			svc:         &fakeVoteService{err: domain.ErrTargetNotFound},
			wantStatus:  http.StatusNotFound,
			wantErrCode: helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := NewVoteController(discardLogger(), tt.svc)
			req := newVoteRequest(t, tt.userID, "review", "review-1", tt.body)
			rec := httptest.NewRecorder()

			controller.Vote(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			envelope := decodeEnvelope(t, rec)
			if tt.wantErrCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
			} else {
				require.Nil(t, envelope.Error)
			}
			if tt.checkService != nil {
				tt.checkService(t, tt.svc)
			}
		})
	}
}

func TestVoteController_Vote_ResponseBody(t *testing.T) {
	svc := &fakeVoteService{result: &domain.VoteResult{
		Upvotes: 5, Downvotes: 2, NetScore: 3, UserVote: domain.VoteDown,
	}}
	controller := NewVoteController(discardLogger(), svc)
	req := newVoteRequest(t, "voter-1", "comment", "comment-1", VoteRequest{VoteType: "down"})
	rec := httptest.NewRecorder()

	controller.Vote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data VoteResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Equal(t, 5, envelope.Data.Upvotes)
	assert.Equal(t, 2, envelope.Data.Downvotes)
	assert.Equal(t, 3, envelope.Data.VoteCount)
	assert.Equal(t, "down", envelope.Data.UserVote)
}

func TestVoteController_GetCounts_AlwaysOK(t *testing.T) {
	// The read path degrades instead of failing; a storage error still
	// produces a 200 with zeroed counts and an error field.
	svc := &fakeVoteService{result: &domain.VoteResult{
		UserVote: domain.VoteNone, Error: "failed to load vote counts",
	}}
	controller := NewVoteController(discardLogger(), svc)
	req := httptest.NewRequest(http.MethodGet, "/votes/location/loc-1", nil)
	req.SetPathValue("kind", "location")
	req.SetPathValue("id", "loc-1")
	rec := httptest.NewRecorder()

	controller.GetCounts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data VoteResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Equal(t, 0, envelope.Data.Upvotes)
	assert.Equal(t, "none", envelope.Data.UserVote)
	assert.NotEmpty(t, envelope.Data.Error)
}
