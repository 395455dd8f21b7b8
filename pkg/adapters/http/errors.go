package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/unitgrid/pkg/auth"
	"github.com/aretw0/unitgrid/pkg/domain"
)

// errorBody is the JSON error shape: {"message": "..."}.
type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrRestorePointNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidProject),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrLastRow),
		errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrNoToken),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		msg = "Project not found"
	case errors.Is(err, auth.ErrNoToken):
		msg = "No token provided"
	case errors.Is(err, auth.ErrInvalidToken):
		msg = "Invalid token"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeMessage(w, status, msg)
}
