package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"skyspotter/internal/delivery/http/helpers"
	"skyspotter/internal/delivery/http/middleware"
	"skyspotter/internal/domain"
)

// FileReportRequest is the request body for POST /reports
type FileReportRequest struct {
	TargetKind string `json:"target_kind"`
	TargetID   string `json:"target_id"`
	Reason     string `json:"reason"`
}

// Validate implements Validator.
func (f FileReportRequest) Validate() []string {
	var errs []string
	if !domain.TargetKind(f.TargetKind).Valid() {
		errs = append(errs, "target_kind must be review, comment, or location")
	}
	if strings.TrimSpace(f.TargetID) == "" {
		errs = append(errs, "target_id is required")
	}
	if strings.TrimSpace(f.Reason) == "" {
		errs = append(errs, "reason is required")
	}
	return errs
}

// ReportListResponse is the paginated response body for report listings.
type ReportListResponse struct {
	Reports    []*domain.Report       `json:"reports"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ReportController handles moderation reports.
type ReportController struct {
	Logger  *slog.Logger
	Service domain.ReportService
}

// NewReportController creates a ReportController.
func NewReportController(logger *slog.Logger, svc domain.ReportService) *ReportController {
	return &ReportController{Logger: logger, Service: svc}
}

// File godoc
// @Summary File a moderation report
// @Description One open report per (reporter, target); a duplicate open report is rejected.
// @Tags reports
// @Accept json
// @Produce json
// @Param body body FileReportRequest true "Report details"
// @Success 201 {object} helpers.APIResponse "data contains Report"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Security BearerAuth
// @Router /reports [post]
func (c *ReportController) File(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}
	var req FileReportRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	target := domain.Target{Kind: domain.TargetKind(req.TargetKind), ID: req.TargetID}
	report, err := c.Service.File(r.Context(), userID, target, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTargetNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "report target not found")
		case errors.Is(err, domain.ErrDuplicateReport):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "an open report already exists for this target")
		default:
			c.Logger.Error("failed to file report", "target_kind", target.Kind, "target_id", target.ID, "error", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to file report")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, report)
}

// ListOpen godoc
// @Summary List open reports
// @Tags reports
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains ReportListResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Security BearerAuth
// @Router /admin/reports [get]
func (c *ReportController) ListOpen(w http.ResponseWriter, r *http.Request) {
	p := helpers.ParsePagination(r)
	reports, total, err := c.Service.ListOpen(r.Context(), p)
	if err != nil {
		c.Logger.Error("failed to list reports", "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list reports")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ReportListResponse{
		Reports:    reports,
		Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// Resolve godoc
// @Summary Resolve a report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /admin/reports/{id}/resolve [post]
func (c *ReportController) Resolve(w http.ResponseWriter, r *http.Request) {
	c.setStatus(w, r, c.Service.Resolve, "resolved")
}

// Dismiss godoc
// @Summary Dismiss a report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Security BearerAuth
// @Router /admin/reports/{id}/dismiss [post]
func (c *ReportController) Dismiss(w http.ResponseWriter, r *http.Request) {
	c.setStatus(w, r, c.Service.Dismiss, "dismissed")
}

func (c *ReportController) setStatus(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) error, status string) {
	id := r.PathValue("id")
	if err := fn(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "report not found")
			return
		}
		c.Logger.Error("failed to update report status", "report_id", id, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to update report")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": status})
}
