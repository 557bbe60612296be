package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"campusmarket/internal/middleware"
	"campusmarket/internal/models"
	"campusmarket/internal/services"
)

type ProductHandler struct {
	catalog *services.CatalogService
	users   *services.UserService
	logger  zerolog.Logger
}

func NewProductHandler(catalog *services.CatalogService, users *services.UserService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		users:   users,
		logger:  logger,
	}
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.ProductCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	seller, err := h.users.GetUserByID(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch user")
		return
	}

	product, err := h.catalog.CreateProduct(seller, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if v := q.Get("min_price"); v != "" {
		if p, err := decimal.NewFromString(v); err == nil {
			filter.MinPrice = &p
		}
	}
	if v := q.Get("max_price"); v != "" {
		if p, err := decimal.NewFromString(v); err == nil {
			filter.MaxPrice = &p
		}
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		filter.Limit = l
	}

	products, err := h.catalog.ListProducts(filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch products")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]

	product, err := h.catalog.ViewProduct(productID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ListMyProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	products, err := h.catalog.ListProductsBySeller(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch products")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.ProductCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	productID := mux.Vars(r)["id"]
	if err := h.catalog.UpdateProduct(productID, userID, &req); err != nil {
		respondWithServiceError(w, err, "Failed to update product")
		return
	}

	product, err := h.catalog.GetProduct(productID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch product")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	productID := mux.Vars(r)["id"]
	if err := h.catalog.DeleteProduct(productID, userID); err != nil {
		respondWithServiceError(w, err, "Failed to delete product")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (h *ProductHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, models.CategoriesResponse{
		ProductCategories: []models.Category{
			{ID: "electronics", Name: "Electronics", Icon: "laptop"},
			{ID: "books", Name: "Books & Study Materials", Icon: "book"},
			{ID: "fashion", Name: "Fashion", Icon: "shirt"},
			{ID: "furniture", Name: "Furniture", Icon: "chair"},
			{ID: "sports", Name: "Sports & Fitness", Icon: "dumbbell"},
			{ID: "other", Name: "Other", Icon: "box"},
		},
		ServiceTypes: []models.Category{
			{ID: "tutoring", Name: "Tutoring", Icon: "graduation-cap"},
			{ID: "design", Name: "Design", Icon: "palette"},
			{ID: "tech", Name: "Tech Support", Icon: "wrench"},
			{ID: "beauty", Name: "Beauty", Icon: "scissors"},
			{ID: "laundry", Name: "Laundry", Icon: "washing-machine"},
			{ID: "other", Name: "Other", Icon: "briefcase"},
		},
		CuisineTypes: []models.Category{
			{ID: "local", Name: "Local Dishes", Icon: "pot"},
			{ID: "fast_food", Name: "Fast Food", Icon: "burger"},
			{ID: "pastries", Name: "Pastries & Snacks", Icon: "croissant"},
			{ID: "drinks", Name: "Drinks", Icon: "cup"},
			{ID: "other", Name: "Other", Icon: "utensils"},
		},
	})
}
