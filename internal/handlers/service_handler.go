package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"campusmarket/internal/middleware"
	"campusmarket/internal/models"
	"campusmarket/internal/services"
)

type ServiceHandler struct {
	catalog *services.CatalogService
	orders  *services.OrderService
	users   *services.UserService
	logger  zerolog.Logger
}

func NewServiceHandler(catalog *services.CatalogService, orders *services.OrderService, users *services.UserService, logger zerolog.Logger) *ServiceHandler {
	return &ServiceHandler{
		catalog: catalog,
		orders:  orders,
		users:   users,
		logger:  logger,
	}
}

func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.ServiceCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	provider, err := h.users.GetUserByID(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch user")
		return
	}

	service, err := h.catalog.CreateService(provider, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create service")
		return
	}

	respondWithJSON(w, http.StatusCreated, service)
}

func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		limit = l
	}

	listings, err := h.catalog.ListServices(q.Get("service_type"), q.Get("search"), limit)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch services")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"services": listings})
}

func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.catalog.GetService(mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch service")
		return
	}

	respondWithJSON(w, http.StatusOK, service)
}

func (h *ServiceHandler) ListMyServices(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	listings, err := h.catalog.ListServicesByProvider(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch services")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"services": listings})
}

func (h *ServiceHandler) BookService(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.BookingCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	req.ServiceID = mux.Vars(r)["id"]

	booking, err := h.orders.CreateBooking(userID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to book service")
		return
	}

	respondWithJSON(w, http.StatusCreated, booking)
}

func (h *ServiceHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	bookings, err := h.orders.ListBookings(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch bookings")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

func (h *ServiceHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
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

	booking, err := h.orders.UpdateBookingStatus(mux.Vars(r)["id"], userID, req.Status)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update booking status")
		return
	}

	respondWithJSON(w, http.StatusOK, booking)
}
