package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"campusmarket/internal/middleware"
	"campusmarket/internal/models"
	"campusmarket/internal/services"
)

type AuthHandler struct {
	users  *services.UserService
	auth   *services.AuthService
	logger zerolog.Logger
}

func NewAuthHandler(users *services.UserService, auth *services.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		auth:   auth,
		logger: logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.users.Register(&req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to register user")
		return
	}

	token, err := h.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
		return
	}

	respondWithJSON(w, http.StatusCreated, models.AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(&req)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	token, err := h.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
		return
	}

	respondWithJSON(w, http.StatusOK, models.AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch user")
		return
	}

	respondWithJSON(w, http.StatusOK, models.AuthResponse{User: user})
}
