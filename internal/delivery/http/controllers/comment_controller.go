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

// CreateCommentRequest is the request body for POST /reviews/{id}/comments
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// Validate implements Validator.
func (c CreateCommentRequest) Validate() []string {
	if strings.TrimSpace(c.Body) == "" {
		return []string{"body is required"}
	}
	return nil
}

// CommentListResponse is the paginated response body for comment listings.
type CommentListResponse struct {
	Comments   []*domain.Comment      `json:"comments"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// CommentController handles comments on reviews.
type CommentController struct {
	Logger  *slog.Logger
	Service domain.CommentService
}

// NewCommentController creates a CommentController.
func NewCommentController(logger *slog.Logger, svc domain.CommentService) *CommentController {
	return &CommentController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Comment on a review
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param body body CreateCommentRequest true "Comment body"
// @Success 201 {object} helpers.APIResponse "data contains Comment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /reviews/{id}/comments [post]
func (c *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	var req CreateCommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reviewID := r.PathValue("id")
	comment, err := c.Service.Create(r.Context(), userID, reviewID, strings.TrimSpace(req.Body))
	if err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "review not found")
			return
		}
		c.Logger.Error("failed to create comment", "review_id", reviewID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to create comment")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// ListByReview godoc
// @Summary List comments on a review
// @Tags comments
// @Produce json
// @Param id path string true "Review ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains CommentListResponse"
// @Router /reviews/{id}/comments [get]
func (c *CommentController) ListByReview(w http.ResponseWriter, r *http.Request) {
	reviewID := r.PathValue("id")
	p := helpers.ParsePagination(r)
	comments, total, err := c.Service.ListByReview(r.Context(), reviewID, p)
	if err != nil {
		c.Logger.Error("failed to list comments", "review_id", reviewID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list comments")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CommentListResponse{
		Comments:   comments,
		Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// Delete godoc
// @Summary Delete your comment
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /comments/{id} [delete]
func (c *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	commentID := r.PathValue("id")
	if err := c.Service.Delete(r.Context(), userID, commentID); err != nil {
		switch {
		case errors.Is(err, domain.ErrCommentNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "comment not found")
		case errors.Is(err, domain.ErrNotReviewAuthor):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the author can delete a comment")
		default:
			c.Logger.Error("failed to delete comment", "comment_id", commentID, "error", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to delete comment")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}
