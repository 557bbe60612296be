package router

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"campusmarket/internal/config"
	"campusmarket/internal/currency"
	"campusmarket/internal/handlers"
	"campusmarket/internal/middleware"
	"campusmarket/internal/services"
)

func SetupRouter(db *sql.DB, cfg config.Config, logger zerolog.Logger) *mux.Router {
	rates := currency.NewRateTable(currency.Code(cfg.HomeCurrency))

	walletStore := services.NewMySQLWalletStore(db)
	walletService := services.NewWalletService(walletStore, rates, logger)
	userService := services.NewUserService(db, walletService, logger)
	authService := services.NewAuthService(cfg.JWTSecret, logger)
	catalogService := services.NewCatalogService(db, logger)
	purchaseService := services.NewPurchaseService(walletService, rates, logger)
	orderService := services.NewOrderService(db, purchaseService, catalogService, userService, rates, logger)
	reviewService := services.NewReviewService(db, catalogService, logger)

	authHandler := handlers.NewAuthHandler(userService, authService, logger)
	walletHandler := handlers.NewWalletHandler(walletService, userService, rates, logger)
	productHandler := handlers.NewProductHandler(catalogService, userService, logger)
	orderHandler := handlers.NewOrderHandler(orderService, logger)
	serviceHandler := handlers.NewServiceHandler(catalogService, orderService, userService, logger)
	foodHandler := handlers.NewFoodHandler(catalogService, orderService, userService, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, userService, logger)

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
	}

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rate.Limit(10), 20)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	r.Use(rateLimiter.Middleware())

	api := r.PathPrefix("/api/v1").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")

	protectedAuth := auth.PathPrefix("").Subrouter()
	protectedAuth.Use(middleware.Authentication(jwtSecret, logger))
	protectedAuth.HandleFunc("/me", authHandler.Me).Methods("GET")

	wallet := api.PathPrefix("/wallet").Subrouter()
	wallet.Use(middleware.Authentication(jwtSecret, logger))
	wallet.HandleFunc("/balance", walletHandler.GetBalance).Methods("GET")
	wallet.HandleFunc("/deposit", walletHandler.Deposit).Methods("POST")
	wallet.HandleFunc("/withdraw", walletHandler.Withdraw).Methods("POST")
	wallet.HandleFunc("/swap", walletHandler.Swap).Methods("POST")
	wallet.HandleFunc("/transactions", walletHandler.GetTransactions).Methods("GET")
	wallet.HandleFunc("/discount-info", walletHandler.GetDiscountInfo).Methods("GET")
	wallet.HandleFunc("/token-info", walletHandler.GetTokenInfo).Methods("GET")
	wallet.HandleFunc("/solana/create", walletHandler.CreateSolanaAddress).Methods("POST")

	products := api.PathPrefix("/products").Subrouter()
	products.HandleFunc("", productHandler.ListProducts).Methods("GET")
	products.HandleFunc("/{id}", productHandler.GetProduct).Methods("GET")

	protectedProducts := api.PathPrefix("/products").Subrouter()
	protectedProducts.Use(middleware.Authentication(jwtSecret, logger))
	protectedProducts.HandleFunc("", productHandler.CreateProduct).Methods("POST")
	protectedProducts.HandleFunc("/{id}", productHandler.UpdateProduct).Methods("PUT")
	protectedProducts.HandleFunc("/{id}", productHandler.DeleteProduct).Methods("DELETE")

	api.HandleFunc("/categories", productHandler.GetCategories).Methods("GET")

	my := api.PathPrefix("/my").Subrouter()
	my.Use(middleware.Authentication(jwtSecret, logger))
	my.HandleFunc("/products", productHandler.ListMyProducts).Methods("GET")
	my.HandleFunc("/services", serviceHandler.ListMyServices).Methods("GET")

	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(middleware.Authentication(jwtSecret, logger))
	orders.Use(middleware.RequestValidation())
	orders.HandleFunc("", orderHandler.CreateOrder).Methods("POST")
	orders.HandleFunc("/purchases", orderHandler.ListPurchases).Methods("GET")
	orders.HandleFunc("/sales", orderHandler.ListSales).Methods("GET")
	orders.HandleFunc("/{id}", orderHandler.GetOrder).Methods("GET")
	orders.HandleFunc("/{id}/status", orderHandler.UpdateStatus).Methods("PUT")

	svc := api.PathPrefix("/services").Subrouter()
	svc.HandleFunc("", serviceHandler.ListServices).Methods("GET")
	svc.HandleFunc("/{id}", serviceHandler.GetService).Methods("GET")

	protectedSvc := api.PathPrefix("/services").Subrouter()
	protectedSvc.Use(middleware.Authentication(jwtSecret, logger))
	protectedSvc.HandleFunc("", serviceHandler.CreateService).Methods("POST")
	protectedSvc.HandleFunc("/{id}/book", serviceHandler.BookService).Methods("POST")

	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(middleware.Authentication(jwtSecret, logger))
	bookings.HandleFunc("", serviceHandler.ListBookings).Methods("GET")
	bookings.HandleFunc("/{id}/status", serviceHandler.UpdateBookingStatus).Methods("PUT")

	restaurants := api.PathPrefix("/restaurants").Subrouter()
	restaurants.HandleFunc("", foodHandler.ListRestaurants).Methods("GET")
	restaurants.HandleFunc("/{id}", foodHandler.GetRestaurant).Methods("GET")
	restaurants.HandleFunc("/{id}/menu", foodHandler.GetMenu).Methods("GET")

	protectedRestaurants := api.PathPrefix("/restaurants").Subrouter()
	protectedRestaurants.Use(middleware.Authentication(jwtSecret, logger))
	protectedRestaurants.HandleFunc("", foodHandler.CreateRestaurant).Methods("POST")
	protectedRestaurants.HandleFunc("/{id}/menu", foodHandler.CreateMenuItem).Methods("POST")

	foodOrders := api.PathPrefix("/food-orders").Subrouter()
	foodOrders.Use(middleware.Authentication(jwtSecret, logger))
	foodOrders.HandleFunc("", foodHandler.CreateFoodOrder).Methods("POST")
	foodOrders.HandleFunc("", foodHandler.ListFoodOrders).Methods("GET")
	foodOrders.HandleFunc("/{id}/status", foodHandler.UpdateFoodOrderStatus).Methods("PUT")

	reviews := api.PathPrefix("/reviews").Subrouter()
	reviews.HandleFunc("", reviewHandler.ListReviews).Methods("GET")

	protectedReviews := api.PathPrefix("/reviews").Subrouter()
	protectedReviews.Use(middleware.Authentication(jwtSecret, logger))
	protectedReviews.HandleFunc("", reviewHandler.CreateReview).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}
