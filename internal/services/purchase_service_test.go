package services

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/internal/currency"
	"campusmarket/internal/models"
)

func newTestPurchaseService(store WalletStore) (*PurchaseService, *WalletService) {
	rates := currency.NewRateTable(currency.NGN)
	wallet := NewWalletService(store, rates, zerolog.Nop())
	return NewPurchaseService(wallet, rates, zerolog.Nop()), wallet
}

func productTarget(sellerID string, amount int64) PurchaseTarget {
	return PurchaseTarget{
		Kind:          models.PurchaseProduct,
		ID:            "prod-1",
		SellerID:      sellerID,
		Title:         "Calculus textbook",
		Amount:        decimal.NewFromInt(amount),
		PriceCurrency: currency.FIAT,
		Available:     true,
	}
}

func TestExecuteAppliesFlatDiscountForFiat(t *testing.T) {
	store := newMemoryWalletStore()
	purchase, wallet := newTestPurchaseService(store)

	_, err := wallet.CreateWallet("buyer")
	require.NoError(t, err)
	_, err = wallet.Deposit("buyer", &models.DepositRequest{Amount: decimal.NewFromInt(1000), Currency: currency.FIAT})
	require.NoError(t, err)

	quote, entry, err := purchase.Execute("buyer", productTarget("seller", 1000), currency.FIAT)
	require.NoError(t, err)

	assert.Equal(t, int64(5), quote.Percent)
	assert.True(t, quote.FinalAmount.Equal(decimal.NewFromInt(950)))

	require.NotNil(t, entry)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(-950)))
	assert.Equal(t, models.EntryPurchase, entry.Kind)
	require.NotNil(t, entry.DiscountAmount)
	assert.True(t, entry.DiscountAmount.Equal(decimal.NewFromInt(50)))
	require.NotNil(t, entry.OriginalAmount)
	assert.True(t, entry.OriginalAmount.Equal(decimal.NewFromInt(1000)))

	w, err := store.GetWallet("buyer")
	require.NoError(t, err)
	assert.True(t, w.FiatBalance.Equal(decimal.NewFromInt(50)))
}

func TestExecutePayingInCostEarnsTierDiscount(t *testing.T) {
	store := newMemoryWalletStore()
	purchase, wallet := newTestPurchaseService(store)

	_, err := wallet.CreateWallet("buyer")
	require.NoError(t, err)
	// 99990 plus the 10 COST welcome bonus puts the buyer on platinum.
	_, err = wallet.Deposit("buyer", &models.DepositRequest{Amount: decimal.NewFromInt(99990), Currency: currency.COST})
	require.NoError(t, err)

	target := productTarget("seller", 100)
	target.PriceCurrency = currency.COST

	quote, _, err := purchase.Execute("buyer", target, currency.COST)
	require.NoError(t, err)

	assert.Equal(t, int64(50), quote.Percent)
	assert.True(t, quote.FinalAmount.Equal(decimal.NewFromInt(50)))

	w, err := store.GetWallet("buyer")
	require.NoError(t, err)
	assert.True(t, w.CostBalance.Equal(decimal.NewFromInt(99950)))
}

func TestExecuteConvertsPriceIntoPaymentCurrency(t *testing.T) {
	store := newMemoryWalletStore()
	purchase, wallet := newTestPurchaseService(store)

	_, err := wallet.CreateWallet("buyer")
	require.NoError(t, err)
	_, err = wallet.Deposit("buyer", &models.DepositRequest{Amount: decimal.NewFromInt(100), Currency: currency.USDT})
	require.NoError(t, err)

	// 16000 NGN is $10, so the USDT price before discount is 10.
	quote, _, err := purchase.Execute("buyer", productTarget("seller", 16000), currency.USDT)
	require.NoError(t, err)

	assert.True(t, quote.OriginalAmount.Equal(decimal.NewFromInt(10)), "original %s", quote.OriginalAmount)
	assert.True(t, quote.FinalAmount.Equal(decimal.RequireFromString("9.5")), "final %s", quote.FinalAmount)
	assert.Equal(t, currency.USDT, quote.Currency)
}

func TestExecuteRejectsSelfPurchase(t *testing.T) {
	purchase, _ := newTestPurchaseService(newMemoryWalletStore())

	_, _, err := purchase.Execute("seller", productTarget("seller", 100), currency.FIAT)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestExecuteRejectsUnavailableTarget(t *testing.T) {
	purchase, _ := newTestPurchaseService(newMemoryWalletStore())

	target := productTarget("seller", 100)
	target.Available = false

	_, _, err := purchase.Execute("buyer", target, currency.FIAT)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestExecuteInsufficientBalanceAborts(t *testing.T) {
	store := newMemoryWalletStore()
	purchase, wallet := newTestPurchaseService(store)

	_, err := wallet.CreateWallet("buyer")
	require.NoError(t, err)

	before := len(store.entriesFor("buyer"))
	_, _, err = purchase.Execute("buyer", productTarget("seller", 1000), currency.FIAT)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	assert.Len(t, store.entriesFor("buyer"), before)
}

func TestSettleCreditsSellerAndAwardsPoints(t *testing.T) {
	store := newMemoryWalletStore()
	purchase, wallet := newTestPurchaseService(store)

	_, err := wallet.CreateWallet("buyer")
	require.NoError(t, err)
	_, err = wallet.CreateWallet("seller")
	require.NoError(t, err)

	err = purchase.Settle("seller", "buyer", decimal.NewFromInt(950), decimal.NewFromInt(950), currency.FIAT, models.PurchaseProduct, "Calculus textbook")
	require.NoError(t, err)

	seller, err := store.GetWallet("seller")
	require.NoError(t, err)
	assert.True(t, seller.FiatBalance.Equal(decimal.NewFromInt(950)))

	buyer, err := store.GetWallet("buyer")
	require.NoError(t, err)
	assert.Equal(t, 9, buyer.LoyaltyPoints)

	var sale *models.LedgerEntry
	for _, e := range store.entriesFor("seller") {
		if e.Kind == models.EntrySale {
			sale = e
		}
	}
	require.NotNil(t, sale)
	assert.True(t, sale.Amount.Equal(decimal.NewFromInt(950)))
}

func TestSettlePointsComeFromFinalAmountNotSellerCredit(t *testing.T) {
	store := newMemoryWalletStore()
	purchase, wallet := newTestPurchaseService(store)

	_, err := wallet.CreateWallet("buyer")
	require.NoError(t, err)
	_, err = wallet.CreateWallet("owner")
	require.NoError(t, err)

	// A 1000-subtotal food order with a 200 delivery fee and the flat 5%
	// discount: the customer paid 1140, the restaurant's share is the 1000
	// subtotal. Points follow the payment, not the seller's credit.
	err = purchase.Settle("owner", "buyer", decimal.NewFromInt(1000), decimal.NewFromInt(1140), currency.FIAT, models.PurchaseFood, "Mama Nkechi Kitchen")
	require.NoError(t, err)

	owner, err := store.GetWallet("owner")
	require.NoError(t, err)
	assert.True(t, owner.FiatBalance.Equal(decimal.NewFromInt(1000)))

	buyer, err := store.GetWallet("buyer")
	require.NoError(t, err)
	assert.Equal(t, 11, buyer.LoyaltyPoints)
}

func TestSettleSmallAmountAwardsNoPoints(t *testing.T) {
	store := newMemoryWalletStore()
	purchase, wallet := newTestPurchaseService(store)

	_, err := wallet.CreateWallet("buyer")
	require.NoError(t, err)
	_, err = wallet.CreateWallet("seller")
	require.NoError(t, err)

	err = purchase.Settle("seller", "buyer", decimal.NewFromInt(99), decimal.NewFromInt(99), currency.FIAT, models.PurchaseService, "Haircut")
	require.NoError(t, err)

	buyer, err := store.GetWallet("buyer")
	require.NoError(t, err)
	assert.Equal(t, 0, buyer.LoyaltyPoints)
}
