package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"campusmarket/internal/middleware"
	"campusmarket/internal/models"
	"campusmarket/internal/services"
)

type ReviewHandler struct {
	reviews *services.ReviewService
	users   *services.UserService
	logger  zerolog.Logger
}

func NewReviewHandler(reviews *services.ReviewService, users *services.UserService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		users:   users,
		logger:  logger,
	}
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.ReviewCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch user")
		return
	}

	review, err := h.reviews.CreateReview(user, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create review")
		return
	}

	respondWithJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	targetID := q.Get("target_id")
	targetType := q.Get("target_type")
	if targetID == "" || targetType == "" {
		respondWithError(w, http.StatusBadRequest, "missing_parameter", "target_id and target_type are required")
		return
	}

	reviews, err := h.reviews.ListReviews(targetID, targetType)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch reviews")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}
