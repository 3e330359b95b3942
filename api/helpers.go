package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/expertlane/matchd/pkg/repository"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write json response", slog.Any("err", err))
	}
}

// writeDomainError maps the repository error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repository.ErrBriefResolved), errors.Is(err, repository.ErrDuplicateInvite):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrNotRespondable), errors.Is(err, repository.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.Error("request failed", slog.Any("err", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
