package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse is the standard JSON response structure.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *JSONError  `json:"error,omitempty"`
	Meta      *JSONMeta   `json:"meta,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// JSONError represents an error in JSON response.
type JSONError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// JSONMeta contains response metadata.
type JSONMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

const apiVersion = "v1"

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeEnvelope(w, status, JSONResponse{
		Success:   status < http.StatusBadRequest,
		Data:      data,
		Meta:      &JSONMeta{Timestamp: time.Now().UTC(), Version: apiVersion},
		RequestID: logger.RequestIDFromContext(r.Context()),
	})
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeEnvelope(w, status, JSONResponse{
		Success:   false,
		Error:     &JSONError{Code: code, Message: message},
		Meta:      &JSONMeta{Timestamp: time.Now().UTC(), Version: apiVersion},
		RequestID: logger.RequestIDFromContext(r.Context()),
	})
}

func writeEnvelope(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var de *shared.DomainError
	message := "An unexpected error occurred"
	if errors.As(err, &de) && de.Message != "" {
		message = de.Message
	}

	switch {
	case shared.IsValidation(err):
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", message)
	case shared.IsNotFound(err):
		writeJSONError(w, r, http.StatusNotFound, "not_found", message)
	default:
		logger.FromContext(r.Context()).Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Err(err),
		)
		writeJSONError(w, r, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}
