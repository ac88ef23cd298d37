// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"casematch-workers/internal/casematch"
	apperrors "casematch-workers/internal/common/errors"
	"casematch-workers/internal/common/logger"
	"casematch-workers/internal/service"

	"github.com/go-chi/chi/v5/middleware"
)

type Handler struct {
	matcher Matcher
	checks  map[string]ReadinessCheck
	grades  casematch.GradeThresholds
	logger  logger.Logger
}

// NewHandler builds the API handlers. Zero grade thresholds fall back to the ranker defaults.
func NewHandler(matcher Matcher, checks map[string]ReadinessCheck, grades casematch.GradeThresholds, log logger.Logger) *Handler {
	if grades == (casematch.GradeThresholds{}) {
		grades = casematch.DefaultOptions().Grades
	}
	return &Handler{matcher: matcher, checks: checks, grades: grades, logger: log}
}

type errorResponse struct {
	Error     *apperrors.StandardError `json:"error"`
	RequestID string                   `json:"requestId,omitempty"`
}

// Match handles POST /api/v1/case-matches.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	var req service.MatchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, r, apperrors.NewInvalidQueryError("invalid request body: "+err.Error()))
		return
	}

	page, err := h.matcher.Match(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type gradeRow struct {
	casematch.GradeDisplay
	MinTotal float64 `json:"minTotal"`
}

// Grades lists the grade tiers with their display colors and lower bounds.
func (h *Handler) Grades(w http.ResponseWriter, _ *http.Request) {
	thresholds := h.grades
	writeJSON(w, http.StatusOK, []gradeRow{
		{casematch.DisplayForGrade(casematch.GradeS), thresholds.S},
		{casematch.DisplayForGrade(casematch.GradeA), thresholds.A},
		{casematch.DisplayForGrade(casematch.GradeB), thresholds.B},
		{casematch.DisplayForGrade(casematch.GradeC), thresholds.C},
		{casematch.DisplayForGrade(casematch.GradeD), 0},
	})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready runs every readiness check and reports the failing ones.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		h.logger.Warn("readiness check failed", map[string]interface{}{"failed": failed})
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"failed": failed,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.AsStandardError(err)
	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("case match request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
			"requestId": middleware.GetReqID(r.Context()),
		})
	}
	writeJSON(w, status, errorResponse{Error: stdErr, RequestID: middleware.GetReqID(r.Context())})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidQuery, apperrors.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case apperrors.ErrCodeCaseNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeSearchTimeout, apperrors.ErrCodeQueryTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCandidateFetchFailed, apperrors.ErrCodeDatabaseConnectionFailed,
		apperrors.ErrCodeSearchQueryFailed, apperrors.ErrCodeIndexNotFound:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
