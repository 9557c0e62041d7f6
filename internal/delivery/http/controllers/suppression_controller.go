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

// SuppressRequest is the request body for POST /admin/suppressions
type SuppressRequest struct {
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// Validate implements Validator.
func (s SuppressRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// SuppressionListResponse is the paginated response body for suppression listings.
type SuppressionListResponse struct {
	Suppressions []*domain.EmailSuppression `json:"suppressions"`
	Pagination   helpers.PaginationMeta     `json:"pagination"`
}

// SuppressionController exposes the admin suppression list.
type SuppressionController struct {
	Logger  *slog.Logger
	Service domain.SuppressionService
}

// NewSuppressionController creates a SuppressionController.
func NewSuppressionController(logger *slog.Logger, svc domain.SuppressionService) *SuppressionController {
	return &SuppressionController{Logger: logger, Service: svc}
}

// List godoc
// @Summary List suppression entries
// @Description Lists suppression entries, newest first. Pass all=true to include deactivated rows.
// @Tags suppressions
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Param all query bool false "Include inactive entries"
// @Success 200 {object} helpers.APIResponse "data contains SuppressionListResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Security BearerAuth
// @Router /admin/suppressions [get]
func (c *SuppressionController) List(w http.ResponseWriter, r *http.Request) {
	p := helpers.ParsePagination(r)
	onlyActive := r.URL.Query().Get("all") != "true"
	entries, total, err := c.Service.List(r.Context(), onlyActive, p)
	if err != nil {
		c.Logger.Error("failed to list suppressions", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list suppressions")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SuppressionListResponse{
		Suppressions: entries,
		Pagination:   helpers.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// Suppress godoc
// @Summary Manually suppress an email address
// @Description Adds the address to the suppression list with reason "manual". Idempotent.
// @Tags suppressions
// @Accept json
// @Produce json
// @Param body body SuppressRequest true "Address to suppress"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Security BearerAuth
// @Router /admin/suppressions [post]
func (c *SuppressionController) Suppress(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	var req SuppressRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.SuppressManually(r.Context(), adminID, req.Email, req.Notes); err != nil {
		c.Logger.Error("manual suppression failed", "email", req.Email, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to suppress address")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "suppressed"})
}

// Unsuppress godoc
// @Summary Remove an address from the suppression list
// @Description Deactivates the active suppression entry for the address. History is retained.
// @Tags suppressions
// @Produce json
// @Param email path string true "Email address"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /admin/suppressions/{email} [delete]
func (c *SuppressionController) Unsuppress(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	email := r.PathValue("email")
	if err := c.Service.Unsuppress(r.Context(), adminID, email); err != nil {
		if errors.Is(err, domain.ErrSuppressionNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no active suppression for this address")
			return
		}
		c.Logger.Error("unsuppression failed", "email", email, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to unsuppress address")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "unsuppressed"})
}
