package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nico/impostor-party-server/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeGameError maps the domain error taxonomy onto HTTP statuses. Every
// named failure is user-displayable; anything unrecognized is a 500.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrWordNotFound),
		errors.Is(err, domain.ErrThemeNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrPlayerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrNotAdmin),
		errors.Is(err, domain.ErrPlayerDead):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidTarget):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrWrongPhase):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrEmptyPool):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
