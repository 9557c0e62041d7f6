package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"skyspotter/internal/delivery/http/helpers"
	"skyspotter/internal/delivery/http/middleware"
	"skyspotter/internal/domain"
)

// FollowController handles follow relationships between users.
type FollowController struct {
	Logger  *slog.Logger
	Service domain.FollowService
}

// NewFollowController creates a FollowController.
func NewFollowController(logger *slog.Logger, svc domain.FollowService) *FollowController {
	return &FollowController{Logger: logger, Service: svc}
}

// Follow godoc
// @Summary Follow a user
// @Description Idempotent; following an already-followed user is a no-op.
// @Tags follows
// @Produce json
// @Param id path string true "User ID to follow"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /users/{id}/follow [post]
func (c *FollowController) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	followeeID := r.PathValue("id")
	if err := c.Service.Follow(r.Context(), userID, followeeID); err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfFollow):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "cannot follow yourself")
		case errors.Is(err, domain.ErrUserNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
		default:
			c.Logger.Error("failed to follow user", "followee_id", followeeID, "error", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to follow user")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "following"})
}

// Unfollow godoc
// @Summary Unfollow a user
// @Tags follows
// @Produce json
// @Param id path string true "User ID to unfollow"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Security BearerAuth
// @Router /users/{id}/follow [delete]
func (c *FollowController) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	followeeID := r.PathValue("id")
	if err := c.Service.Unfollow(r.Context(), userID, followeeID); err != nil {
		c.Logger.Error("failed to unfollow user", "followee_id", followeeID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to unfollow user")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "unfollowed"})
}

// Following godoc
// @Summary List users a user follows
// @Tags follows
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains []Follow"
// @Router /users/{id}/following [get]
func (c *FollowController) Following(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	follows, err := c.Service.Following(r.Context(), userID)
	if err != nil {
		c.Logger.Error("failed to list following", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list following")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, follows)
}

// Followers godoc
// @Summary List a user's followers
// @Tags follows
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains []Follow"
// @Router /users/{id}/followers [get]
func (c *FollowController) Followers(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	follows, err := c.Service.Followers(r.Context(), userID)
	if err != nil {
		c.Logger.Error("failed to list followers", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list followers")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, follows)
}
