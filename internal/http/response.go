package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"warga/internal/core"
	"warga/internal/export"
	"warga/internal/log"
	"warga/internal/services"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthenticated), errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrHouseholdNotFound), errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrUnknownListCategory), errors.Is(err, export.ErrUnknownReport):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrPublishingDisabled):
		return http.StatusServiceUnavailable
	case services.IsValidation(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError renders err as JSON. Internal errors are logged and their
// details hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error(), Fields: services.FieldErrors(err)}
	switch status {
	case http.StatusInternalServerError:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Method+" "+r.URL.Path, nil)
		body = errorResponse{Error: "internal server error"}
	case http.StatusUnauthorized:
		w.Header().Set("WWW-Authenticate", `Basic realm="warga"`)
	}
	writeJSON(w, status, body)
}
