package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"skyspotter/internal/delivery/http/helpers"
	"skyspotter/internal/delivery/http/middleware"
	"skyspotter/internal/domain"
)

// CreateReviewRequest is the request body for POST /locations/{id}/reviews
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Validate implements Validator.
func (c CreateReviewRequest) Validate() []string {
	if c.Rating < 1 || c.Rating > 5 {
		return []string{"rating must be between 1 and 5"}
	}
	return nil
}

// UpdateReviewRequest is the request body for PATCH /reviews/{id}.
// Nil fields are left unchanged.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// Validate implements Validator.
func (u UpdateReviewRequest) Validate() []string {
	if u.Rating == nil && u.Comment == nil {
		return []string{"at least one of rating or comment is required"}
	}
	if u.Rating != nil && (*u.Rating < 1 || *u.Rating > 5) {
		return []string{"rating must be between 1 and 5"}
	}
	return nil
}

// ReviewWithVotes is a review plus its current vote tally. Votes carry the
// caller's own vote when the request is authenticated.
type ReviewWithVotes struct {
	*domain.Review
	Votes *domain.VoteResult `json:"votes"`
}

// ReviewListResponse is the paginated response body for review listings.
type ReviewListResponse struct {
	Reviews    []ReviewWithVotes      `json:"reviews"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ReviewController handles review CRUD. Every mutation also refreshes the
// parent location's aggregate rating through the service layer.
type ReviewController struct {
	Logger  *slog.Logger
	Service domain.ReviewService
	Votes   domain.VoteService
}

// NewReviewController creates a ReviewController.
func NewReviewController(logger *slog.Logger, svc domain.ReviewService, votes domain.VoteService) *ReviewController {
	return &ReviewController{Logger: logger, Service: svc, Votes: votes}
}

// Create godoc
// @Summary Review a location
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Location ID"
// @Param body body CreateReviewRequest true "Rating and comment"
// @Success 201 {object} helpers.APIResponse "data contains Review"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Security BearerAuth
// @Router /locations/{id}/reviews [post]
func (c *ReviewController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	var req CreateReviewRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	locationID := r.PathValue("id")
	review, err := c.Service.Create(r.Context(), userID, locationID, req.Rating, strings.TrimSpace(req.Comment))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLocationNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "location not found")
		case errors.Is(err, domain.ErrInvalidRating), errors.Is(err, domain.ErrSelfReview):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrDuplicateReview):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "you already reviewed this location")
		default:
			c.Logger.Error("failed to create review", "location_id", locationID, "error", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to create review")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, review)
}

// ListByLocation godoc
// @Summary List reviews for a location
// @Tags reviews
// @Produce json
// @Param id path string true "Location ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains ReviewListResponse"
// @Router /locations/{id}/reviews [get]
func (c *ReviewController) ListByLocation(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("id")
	p := helpers.ParsePagination(r)
	reviews, total, err := c.Service.ListByLocation(r.Context(), locationID, p)
	if err != nil {
		c.Logger.Error("failed to list reviews", "location_id", locationID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list reviews")
		return
	}
	// The caller's user id is present only on authenticated requests; the
	// count lookup never fails the listing.
	viewerID, _ := middleware.UserIDFromContext(r.Context())
	out := make([]ReviewWithVotes, len(reviews))
	for i, rev := range reviews {
		out[i] = ReviewWithVotes{
			Review: rev,
			Votes:  c.Votes.GetVoteCounts(r.Context(), domain.Target{Kind: domain.TargetReview, ID: rev.ID}, viewerID),
		}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ReviewListResponse{
		Reviews:    out,
		Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// Update godoc
// @Summary Edit your review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param body body UpdateReviewRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains Review"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /reviews/{id} [patch]
func (c *ReviewController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	var req UpdateReviewRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reviewID := r.PathValue("id")
	review, err := c.Service.Update(r.Context(), userID, reviewID, req.Rating, req.Comment)
	if err != nil {
		c.writeReviewError(w, reviewID, err, "failed to update review")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, review)
}

// Delete godoc
// @Summary Delete your review
// @Tags reviews
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /reviews/{id} [delete]
func (c *ReviewController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	reviewID := r.PathValue("id")
	if err := c.Service.Delete(r.Context(), userID, reviewID); err != nil {
		c.writeReviewError(w, reviewID, err, "failed to delete review")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (c *ReviewController) writeReviewError(w http.ResponseWriter, reviewID string, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrReviewNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "review not found")
	case errors.Is(err, domain.ErrNotReviewAuthor):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the author can modify a review")
	case errors.Is(err, domain.ErrInvalidRating):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.Error(fallback, "review_id", reviewID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, fallback)
	}
}
