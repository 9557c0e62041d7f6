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

// CreateLocationRequest is the request body for POST /locations
type CreateLocationRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Validate implements Validator.
func (l CreateLocationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Name) == "" {
		errs = append(errs, "name is required")
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		errs = append(errs, "latitude must be between -90 and 90")
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		errs = append(errs, "longitude must be between -180 and 180")
	}
	return errs
}

// UpdateLocationRequest is the request body for PATCH /locations/{id}.
// Nil fields are left unchanged.
type UpdateLocationRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate implements Validator.
func (l UpdateLocationRequest) Validate() []string {
	if l.Name == nil && l.Description == nil {
		return []string{"at least one of name or description is required"}
	}
	if l.Name != nil && strings.TrimSpace(*l.Name) == "" {
		return []string{"name must not be empty"}
	}
	return nil
}

// LocationListResponse is the paginated response body for location listings.
type LocationListResponse struct {
	Locations  []*domain.Location     `json:"locations"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// LocationController handles stargazing location CRUD.
type LocationController struct {
	Logger  *slog.Logger
	Service domain.LocationService
}

// NewLocationController creates a LocationController.
func NewLocationController(logger *slog.Logger, svc domain.LocationService) *LocationController {
	return &LocationController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Add a stargazing location
// @Tags locations
// @Accept json
// @Produce json
// @Param body body CreateLocationRequest true "Location details"
// @Success 201 {object} helpers.APIResponse "data contains Location"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Security BearerAuth
// @Router /locations [post]
func (c *LocationController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	var req CreateLocationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	loc, err := c.Service.Create(r.Context(), userID, &domain.Location{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		c.Logger.Error("failed to create location", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to create location")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, loc)
}

// Get godoc
// @Summary Get a location by ID
// @Tags locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} helpers.APIResponse "data contains Location"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /locations/{id} [get]
func (c *LocationController) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	loc, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLocationNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "location not found")
			return
		}
		c.Logger.Error("failed to get location", "location_id", id, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to get location")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, loc)
}

// List godoc
// @Summary List locations
// @Tags locations
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains LocationListResponse"
// @Router /locations [get]
func (c *LocationController) List(w http.ResponseWriter, r *http.Request) {
	p := helpers.ParsePagination(r)
	locations, total, err := c.Service.List(r.Context(), p)
	if err != nil {
		c.Logger.Error("failed to list locations", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list locations")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LocationListResponse{
		Locations:  locations,
		Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// Update godoc
// @Summary Update a location you added
// @Tags locations
// @Accept json
// @Produce json
// @Param id path string true "Location ID"
// @Param body body UpdateLocationRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains Location"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /locations/{id} [patch]
func (c *LocationController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	var req UpdateLocationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	loc, err := c.Service.Update(r.Context(), userID, id, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLocationNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "location not found")
		case errors.Is(err, domain.ErrNotLocationOwner):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the user who added a location can edit it")
		default:
			c.Logger.Error("failed to update location", "location_id", id, "error", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to update location")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, loc)
}
