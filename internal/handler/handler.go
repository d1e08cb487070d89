// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/placeshare/placeshare/internal/handler/dto"
	"github.com/placeshare/placeshare/internal/service"
)

// Handler serves the fallback routes.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Could not find this route.")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed.")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Message: message,
		Code:    code,
	})
}

// statusFor maps a service error to an HTTP status.
func statusFor(e *service.Error) int {
	switch e.Kind {
	case service.KindGeocodingUnavailable:
		return http.StatusBadGateway
	case service.KindCreateFailed, service.KindDeleteFailed:
		if e.Severity() == service.SeverityConflict {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	}

	switch e.Severity() {
	case service.SeverityInvalidInput:
		return http.StatusUnprocessableEntity
	case service.SeverityNotFound:
		return http.StatusNotFound
	case service.SeverityForbidden:
		return http.StatusForbidden
	case service.SeverityConflict:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logger.ErrorContext(r.Context(), "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unknown error occurred!")
		return
	}

	status := statusFor(svcErr)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request_failed", "kind", svcErr.Kind, "error", err)
	}
	writeError(w, status, string(svcErr.Kind), svcErr.Message())
}
