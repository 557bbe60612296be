package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"campusmarket/internal/services"
)

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondWithServiceError maps service sentinel errors onto HTTP statuses.
// Anything unrecognized is a 500 with the fallback message.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrInsufficientBalance):
		respondWithError(w, http.StatusBadRequest, "insufficient_balance", err.Error())
	case errors.Is(err, services.ErrInvalidRequest):
		respondWithError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		respondWithError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}
