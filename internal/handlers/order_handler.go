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

type OrderHandler struct {
	orders *services.OrderService
	logger zerolog.Logger
}

func NewOrderHandler(orders *services.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.OrderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	order, err := h.orders.CreateOrder(userID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	orders, err := h.orders.ListOrdersByBuyer(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch orders")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *OrderHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	orders, err := h.orders.ListOrdersBySeller(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch sales")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	order, err := h.orders.GetOrder(mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch order")
		return
	}
	if order.BuyerID != userID && order.SellerID != userID {
		respondWithError(w, http.StatusForbidden, "forbidden", "Not your order")
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.orders.UpdateOrderStatus(mux.Vars(r)["id"], userID, req.Status)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, order)
}
