package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mlindvall/korjournal/internal/domain"
	"github.com/mlindvall/korjournal/internal/middleware"
)

// ErrorDetail is the machine-readable part of an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the uniform error envelope for every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// statusFor maps a domain sentinel to its HTTP status and stable error code.
// Unknown errors fall through to 500.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrVehicleNotFound):
		return http.StatusNotFound, "vehicle_not_found"
	case errors.Is(err, domain.ErrNoActiveTrip):
		return http.StatusNotFound, "no_active_trip"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidInterval):
		return http.StatusUnprocessableEntity, "invalid_interval"
	case errors.Is(err, domain.ErrMissingSelector):
		return http.StatusUnprocessableEntity, "missing_selector"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, domain.ErrOverlap):
		return http.StatusConflict, "overlap_conflict"
	case errors.Is(err, domain.ErrActiveTrip):
		return http.StatusConflict, "active_trip_exists"
	case errors.Is(err, domain.ErrTripFinished):
		return http.StatusConflict, "trip_already_finished"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError renders err as the uniform error envelope. Internal errors are
// logged with the request context and returned without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	message := unwrapMessage(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "internal server error"
	}

	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeRequestError rejects a request before it reaches the service layer,
// e.g. a malformed body or path parameter.
func writeRequestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error: ErrorDetail{Code: "validation_error", Message: message},
	})
}

// writeJSON renders v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// unwrapMessage strips the call-chain prefixes from a wrapped sentinel error,
// leaving the human-readable tail.
// e.g. "service.TripService.Start: validation error: vehicle_reg is required"
// becomes "validation error: vehicle_reg is required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{
		domain.ErrVehicleNotFound, domain.ErrNoActiveTrip, domain.ErrNotFound,
		domain.ErrInvalidInterval, domain.ErrMissingSelector, domain.ErrValidation,
		domain.ErrOverlap, domain.ErrActiveTrip, domain.ErrTripFinished,
	} {
		if i := strings.Index(msg, sentinel.Error()); i >= 0 {
			return msg[i:]
		}
	}
	return msg
}

// decodeJSON parses the request body into dst, limiting accepted payloads to
// well-formed JSON.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// callerID extracts the authenticated user's id injected by the auth
// middleware. The router never reaches a handler without it.
func callerID(r *http.Request) (uuid.UUID, bool) {
	return middleware.UserID(r.Context())
}

// requireCaller writes a 401 and returns false when the request carries no
// authenticated identity.
func requireCaller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := callerID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: ErrorDetail{Code: "unauthorized", Message: "missing authenticated user"},
		})
		return uuid.Nil, false
	}
	return userID, true
}
