package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/logger"
)

// Standard response types for consistent API responses

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// CommandResponse is the JSON shape of every game command outcome. A negative
// code is an expected gameplay rejection, not an error; those still return
// HTTP 200 so bot frontends can relay the message verbatim.
type CommandResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Payload any    `json:"payload,omitempty"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	// Encode to the buffer first so a marshal failure never truncates a body
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondCommand relays a game command result. Service errors become HTTP
// errors; results (accepted or rejected) pass through as-is.
func respondCommand(w http.ResponseWriter, r *http.Request, opName string, res domain.CommandResult, err error) {
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error(opName+" failed", "error", err)
		status, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, status, userMsg)
		return
	}
	respondJSON(w, http.StatusOK, CommandResponse{
		Code:    res.Code,
		Message: res.Message,
		Payload: res.Payload,
	})
}

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound, ErrMsgPlayerNotFoundHTTP
	case errors.Is(err, domain.ErrFishNotFound):
		return http.StatusNotFound, ErrMsgFishNotFoundHTTP
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, ErrMsgItemNotFoundHTTP
	case errors.Is(err, domain.ErrBattleNotFound):
		return http.StatusNotFound, ErrMsgBattleNotFoundHTTP
	case errors.Is(err, domain.ErrBuildingNotFound):
		return http.StatusNotFound, ErrMsgBuildingNotFoundHTTP
	case errors.Is(err, domain.ErrCorruptCatalog),
		errors.Is(err, domain.ErrCorruptEntity),
		errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}

	// Wrapped errors with a domain base resolve through the chain above via
	// errors.Is; anything left is unexpected.
	return http.StatusInternalServerError, ErrMsgGenericServerError
}
