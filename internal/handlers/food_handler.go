package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"campusmarket/internal/middleware"
	"campusmarket/internal/models"
	"campusmarket/internal/services"
)

type FoodHandler struct {
	catalog *services.CatalogService
	orders  *services.OrderService
	users   *services.UserService
	logger  zerolog.Logger
}

func NewFoodHandler(catalog *services.CatalogService, orders *services.OrderService, users *services.UserService, logger zerolog.Logger) *FoodHandler {
	return &FoodHandler{
		catalog: catalog,
		orders:  orders,
		users:   users,
		logger:  logger,
	}
}

func (h *FoodHandler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.RestaurantCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	owner, err := h.users.GetUserByID(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch user")
		return
	}

	restaurant, err := h.catalog.CreateRestaurant(owner, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create restaurant")
		return
	}

	respondWithJSON(w, http.StatusCreated, restaurant)
}

func (h *FoodHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	restaurants, err := h.catalog.ListRestaurants(q.Get("cuisine"), q.Get("search"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch restaurants")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"restaurants": restaurants})
}

func (h *FoodHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.catalog.GetRestaurant(mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch restaurant")
		return
	}

	respondWithJSON(w, http.StatusOK, restaurant)
}

func (h *FoodHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.MenuItemCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	req.RestaurantID = mux.Vars(r)["id"]

	item, err := h.catalog.CreateMenuItem(userID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create menu item")
		return
	}

	respondWithJSON(w, http.StatusCreated, item)
}

func (h *FoodHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListMenu(mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch menu")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"menu": items})
}

func (h *FoodHandler) CreateFoodOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.FoodOrderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	order, err := h.orders.CreateFoodOrder(userID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create food order")
		return
	}

	respondWithJSON(w, http.StatusCreated, order)
}

func (h *FoodHandler) ListFoodOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	orders, err := h.orders.ListFoodOrders(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch food orders")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *FoodHandler) UpdateFoodOrderStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	order, err := h.orders.UpdateFoodOrderStatus(mux.Vars(r)["id"], userID, req.Status)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update food order status")
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}
