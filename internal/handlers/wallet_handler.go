package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"campusmarket/internal/currency"
	"campusmarket/internal/loyalty"
	"campusmarket/internal/middleware"
	"campusmarket/internal/models"
	"campusmarket/internal/services"
)

type WalletHandler struct {
	wallet *services.WalletService
	users  *services.UserService
	rates  *currency.RateTable
	logger zerolog.Logger
}

func NewWalletHandler(wallet *services.WalletService, users *services.UserService, rates *currency.RateTable, logger zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		wallet: wallet,
		users:  users,
		rates:  rates,
		logger: logger,
	}
}

func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	balances, err := h.wallet.GetBalances(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch balances")
		return
	}

	respondWithJSON(w, http.StatusOK, balances)
}

func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	entry, err := h.wallet.Deposit(userID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to process deposit")
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch user")
		return
	}

	entry, err := h.wallet.Withdraw(userID, user.FullName, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to process withdrawal")
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}

func (h *WalletHandler) Swap(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	result, err := h.wallet.Swap(userID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to process swap")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	limit := 50
	offset := 0
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	entries, err := h.wallet.Transactions(userID, limit, offset)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch transactions")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": entries,
		"limit":        limit,
		"offset":       offset,
	})
}

// GetDiscountInfo shows the caller's membership tier and the discount each
// payment currency would earn right now.
func (h *WalletHandler) GetDiscountInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	snap, err := h.wallet.TierSnapshot(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to fetch membership")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"membership":            snap,
		"cost_discount_percent": snap.Discount,
		"flat_discount_percent": loyalty.FlatDiscount,
		"tiers":                 loyalty.Ladder,
	})
}

// GetTokenInfo describes the COST token: its USD price and the membership
// ladder it unlocks.
func (h *WalletHandler) GetTokenInfo(w http.ResponseWriter, r *http.Request) {
	price, _ := h.rates.Rate(currency.COST)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":        currency.COST,
		"name":          "Campus Token",
		"price_usd":     price,
		"welcome_bonus": services.WelcomeBonus,
		"tiers":         loyalty.Ladder,
	})
}

func (h *WalletHandler) CreateSolanaAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	address, err := h.wallet.CreateSolanaAddress(userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create deposit address")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"solana_wallet": address})
}
