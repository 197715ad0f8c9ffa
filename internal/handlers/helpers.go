// Package handlers implements the JSON HTTP endpoints. Handlers decode
// and reply; all lifecycle rules live in the service layer.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/apperr"
)

// maxBodySize bounds JSON request bodies (1 MB).
const maxBodySize = 1 << 20

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// respondError translates a service error into an HTTP reply. Internal
// errors are logged and masked with a generic message.
func respondError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		slog.Error("unclassified error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.Validation:
		status = http.StatusBadRequest
	case apperr.Unauthorized:
		status = http.StatusUnauthorized
	case apperr.Forbidden:
		status = http.StatusForbidden
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Conflict:
		status = http.StatusConflict
	case apperr.Internal:
		slog.Error("internal error", "error", appErr)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, status, ErrorResponse{Error: appErr.Message, Fields: appErr.Fields})
}

// readJSON decodes the request body into dst, rejecting unknown fields
// and oversized bodies.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Invalid("invalid request body", "body")
	}
	return nil
}

// urlParamUUID parses a UUID route parameter.
func urlParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid "+name, name)
	}
	return id, nil
}
