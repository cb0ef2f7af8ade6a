// Package api provides HTTP handlers for the quiz API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
	"github.com/codewriterrussian/voc-selftest/internal/identity"
	"github.com/codewriterrussian/voc-selftest/internal/quiz"
)

const maxBodyBytes = 64 << 10

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeBody reads a JSON request body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ownerFromRequest returns the session owner injected by the identity middleware.
func ownerFromRequest(r *http.Request) quiz.Owner {
	return quiz.Owner{
		UserID:    identity.UserIDFromContext(r.Context()),
		SessionID: identity.SessionIDFromContext(r.Context()),
		RemoteIP:  identity.IPFromRequest(r),
	}
}

// writeDomainError maps domain errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound):
		Error(w, http.StatusNotFound, "category_not_found")
	case errors.Is(err, domain.ErrEmptyCategory):
		Error(w, http.StatusNotFound, "category_empty")
	case errors.Is(err, domain.ErrNoSession):
		Error(w, http.StatusNotFound, "no_session")
	case errors.Is(err, domain.ErrSessionFinished):
		Error(w, http.StatusConflict, "session_finished")
	case errors.Is(err, quiz.ErrUnknownSpeakTarget):
		Error(w, http.StatusBadRequest, "unknown_speak_target")
	default:
		slog.Error("Request failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal_error")
	}
}
