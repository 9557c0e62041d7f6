package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"skyspotter/internal/delivery/http/helpers"
	"skyspotter/internal/delivery/http/middleware"
	"skyspotter/internal/domain"
)

// VoteRequest is the request body for POST /votes/{kind}/{id}
type VoteRequest struct {
	VoteType string `json:"vote_type"`
}

// Validate implements Validator.
func (v VoteRequest) Validate() []string {
	if v.VoteType != "up" && v.VoteType != "down" {
		return []string{"vote_type must be \"up\" or \"down\""}
	}
	return nil
}

// VoteResponse is the response body for vote actions and count lookups.
type VoteResponse struct {
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	VoteCount int    `json:"vote_count"`
	UserVote  string `json:"user_vote"`
	Error     string `json:"error,omitempty"`
}

func newVoteResponse(r *domain.VoteResult) VoteResponse {
	return VoteResponse{
		Upvotes:   r.Upvotes,
		Downvotes: r.Downvotes,
		VoteCount: r.NetScore,
		UserVote:  string(r.UserVote),
		Error:     r.Error,
	}
}

// VoteController handles toggle-vote actions and vote count lookups.
type VoteController struct {
	Logger  *slog.Logger
	Service domain.VoteService
}

// NewVoteController creates a VoteController with the given logger and service.
func NewVoteController(logger *slog.Logger, svc domain.VoteService) *VoteController {
	return &VoteController{Logger: logger, Service: svc}
}

func targetFromRequest(r *http.Request) domain.Target {
	return domain.Target{
		Kind: domain.TargetKind(r.PathValue("kind")),
		ID:   r.PathValue("id"),
	}
}

// Vote godoc
// @Summary Cast, flip, or retract a vote
// @Description Toggle semantics per (voter, target): first vote creates it, repeating the same direction removes it, the opposite direction flips it.
// @Tags votes
// @Accept json
// @Produce json
// @Param kind path string true "Target kind: review, comment, or location"
// @Param id path string true "Target ID"
// @Param body body VoteRequest true "Vote direction"
// @Success 200 {object} helpers.APIResponse "data contains VoteResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /votes/{kind}/{id} [post]
func (c *VoteController) Vote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	var req VoteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	target := targetFromRequest(r)

	result, err := c.Service.HandleVote(r.Context(), userID, target, domain.VoteDirection(req.VoteType))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidVoteType), errors.Is(err, domain.ErrSelfVote):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrTargetNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "vote target not found")
		default:
			c.Logger.Error("vote action failed", "target_kind", target.Kind, "target_id", target.ID, "error", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to process vote")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newVoteResponse(result))
}

// GetCounts godoc
// @Summary Get vote counts for a target
// @Description Read-only; degrades to zeroed counts with an error field instead of failing.
// @Tags votes
// @Produce json
// @Param kind path string true "Target kind: review, comment, or location"
// @Param id path string true "Target ID"
// @Success 200 {object} helpers.APIResponse "data contains VoteResponse"
// @Router /votes/{kind}/{id} [get]
func (c *VoteController) GetCounts(w http.ResponseWriter, r *http.Request) {
	// Authentication is optional here; an authenticated caller also gets
	// their own current vote back.
	userID, _ := middleware.UserIDFromContext(r.Context())
	result := c.Service.GetVoteCounts(r.Context(), targetFromRequest(r), userID)
	helpers.WriteJSONSuccess(w, http.StatusOK, newVoteResponse(result))
}
