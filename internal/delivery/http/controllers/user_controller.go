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

// UpdateProfileRequest is the request body for PATCH /users/me
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (u UpdateProfileRequest) Validate() []string {
	if strings.TrimSpace(u.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// UserController handles profile and badge lookups.
type UserController struct {
	Logger *slog.Logger
	Users  domain.UserService
	Badges domain.BadgeService
}

// NewUserController creates a UserController.
func NewUserController(logger *slog.Logger, users domain.UserService, badges domain.BadgeService) *UserController {
	return &UserController{Logger: logger, Users: users, Badges: badges}
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains User"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Security BearerAuth
// @Router /users/me [get]
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	user, err := c.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.Error("failed to load profile", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to load profile")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param body body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} helpers.APIResponse "data contains User"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Security BearerAuth
// @Router /users/me [patch]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	var req UpdateProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.Error("failed to load profile", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to load profile")
		return
	}
	user.Name = strings.TrimSpace(req.Name)
	if err := c.Users.Update(r.Context(), user); err != nil {
		c.Logger.Error("failed to update profile", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to update profile")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// ListBadges godoc
// @Summary List badges earned by a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains []UserBadge"
// @Router /users/{id}/badges [get]
func (c *UserController) ListBadges(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	badges, err := c.Badges.ListByUser(r.Context(), userID)
	if err != nil {
		c.Logger.Error("failed to list badges", "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list badges")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, badges)
}
