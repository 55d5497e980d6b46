package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gemkart/internal/middleware"
	"gemkart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// statusForCode maps domain error codes to HTTP status codes.
var statusForCode = map[string]int{
	model.ErrCodeInvalidJSON:        http.StatusBadRequest,
	model.ErrCodeInvalidInput:       http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:    http.StatusBadRequest,
	model.ErrCodeInvalidCoupon:      http.StatusBadRequest,
	model.ErrCodeMinOrderNotMet:     http.StatusBadRequest,
	model.ErrCodeEmptyCart:          http.StatusBadRequest,
	model.ErrCodeProductNotFound:    http.StatusNotFound,
	model.ErrCodeVariantNotFound:    http.StatusNotFound,
	model.ErrCodeCartNotFound:       http.StatusNotFound,
	model.ErrCodeCartItemNotFound:   http.StatusNotFound,
	model.ErrCodeCouponNotFound:     http.StatusNotFound,
	model.ErrCodeAddressNotFound:    http.StatusNotFound,
	model.ErrCodeOrderNotFound:      http.StatusNotFound,
	model.ErrCodeInsufficientStock:  http.StatusConflict,
	model.ErrCodeUsageLimitExceeded: http.StatusConflict,
	model.ErrCodeProductUnavailable: http.StatusConflict,
	model.ErrCodeInvalidTransition:  http.StatusConflict,
	model.ErrCodeUnauthorised:       http.StatusUnauthorized,
}

// writeError maps a service error to an HTTP response. Domain errors keep
// their code and message; anything else becomes an opaque 500.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusForCode[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		logger.Warn().Str("code", domainErr.Code).Int("status", status).Msg(domainErr.Message)
		writeJSON(w, status, model.ErrorResponse{Error: domainErr.Code, Message: domainErr.Message})
		return
	}

	logger.Error().Err(err).Msg("handler error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "An unexpected error occurred",
	})
}

// writeBadRequest writes a 400 with an explicit code and message.
func writeBadRequest(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: code, Message: message})
}

// userID extracts the authenticated user from the request context. The
// auth middleware guarantees it is present on protected routes.
func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{
			Error:   model.ErrCodeUnauthorised,
			Message: "User identity is required",
		})
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a UUID path segment, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeBadRequest(w, model.ErrCodeInvalidInput, "invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
