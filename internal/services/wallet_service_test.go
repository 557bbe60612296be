package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/internal/currency"
	"campusmarket/internal/models"
)

func newTestWalletService(store WalletStore) *WalletService {
	rates := currency.NewRateTable(currency.NGN)
	return NewWalletService(store, rates, zerolog.Nop())
}

func TestCreateWalletGrantsWelcomeBonus(t *testing.T) {
	store := newMemoryWalletStore()
	svc := newTestWalletService(store)

	w, err := svc.CreateWallet("user-1")
	require.NoError(t, err)

	assert.True(t, w.CostBalance.Equal(WelcomeBonus))
	assert.True(t, w.FiatBalance.IsZero())

	entries := store.entriesFor("user-1")
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntryBonus, entries[0].Kind)
	assert.True(t, entries[0].Amount.Equal(WelcomeBonus))
}

func TestDebitInsufficientBalanceLeavesWalletUntouched(t *testing.T) {
	store := newMemoryWalletStore()
	svc := newTestWalletService(store)

	_, err := svc.CreateWallet("user-1")
	require.NoError(t, err)
	_, err = svc.Deposit("user-1", &models.DepositRequest{Amount: decimal.NewFromInt(50), Currency: currency.FIAT})
	require.NoError(t, err)

	_, err = svc.Debit("user-1", currency.FIAT, decimal.NewFromInt(100), models.EntryWithdrawal, "test", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientBalance))

	w, err := store.GetWallet("user-1")
	require.NoError(t, err)
	assert.True(t, w.FiatBalance.Equal(decimal.NewFromInt(50)))

	// Failed debit must not leave a ledger entry behind.
	for _, e := range store.entriesFor("user-1") {
		assert.NotEqual(t, models.EntryWithdrawal, e.Kind)
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	store := newMemoryWalletStore()
	svc := newTestWalletService(store)

	_, err := svc.CreateWallet("user-1")
	require.NoError(t, err)
	_, err = svc.Deposit("user-1", &models.DepositRequest{Amount: decimal.NewFromInt(150), Currency: currency.FIAT})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Debit("user-1", currency.FIAT, decimal.NewFromInt(100), models.EntryPurchase, "race", "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var failures int
	for err := range results {
		if err != nil {
			assert.True(t, errors.Is(err, ErrInsufficientBalance))
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the two debits must fail")

	w, err := store.GetWallet("user-1")
	require.NoError(t, err)
	assert.True(t, w.FiatBalance.Equal(decimal.NewFromInt(50)))
}

func TestSwapTakesFeeFromConvertedAmount(t *testing.T) {
	store := newMemoryWalletStore()
	svc := newTestWalletService(store)

	_, err := svc.CreateWallet("user-1")
	require.NoError(t, err)
	_, err = svc.Deposit("user-1", &models.DepositRequest{Amount: decimal.NewFromInt(100), Currency: currency.SOL})
	require.NoError(t, err)

	result, err := svc.Swap("user-1", &models.SwapRequest{
		FromCurrency: currency.SOL,
		ToCurrency:   currency.USDT,
		Amount:       decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	// 100 SOL at $180 converts to 18000 USDT; the 1% fee comes out of the
	// converted side.
	assert.True(t, result.Fee.Equal(decimal.NewFromInt(180)), "fee %s", result.Fee)
	assert.True(t, result.AmountReceived.Equal(decimal.NewFromInt(17820)), "received %s", result.AmountReceived)

	w, err := store.GetWallet("user-1")
	require.NoError(t, err)
	assert.True(t, w.SolBalance.IsZero())
	assert.True(t, w.UsdtBalance.Equal(decimal.NewFromInt(17820)))
}

func TestSwapWritesPairedLedgerEntries(t *testing.T) {
	store := newMemoryWalletStore()
	svc := newTestWalletService(store)

	_, err := svc.CreateWallet("user-1")
	require.NoError(t, err)
	_, err = svc.Deposit("user-1", &models.DepositRequest{Amount: decimal.NewFromInt(10), Currency: currency.SOL})
	require.NoError(t, err)

	result, err := svc.Swap("user-1", &models.SwapRequest{
		FromCurrency: currency.SOL,
		ToCurrency:   currency.USDT,
		Amount:       decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	var out, in *models.LedgerEntry
	for _, e := range store.entriesFor("user-1") {
		switch e.Reference {
		case result.Reference + "-OUT":
			out = e
		case result.Reference + "-IN":
			in = e
		}
	}
	require.NotNil(t, out)
	require.NotNil(t, in)
	assert.True(t, out.Amount.IsNegative())
	assert.True(t, in.Amount.IsPositive())
	assert.Equal(t, models.EntrySwap, out.Kind)
	assert.Equal(t, models.EntrySwap, in.Kind)
}

func TestSwapRejectsSameCurrency(t *testing.T) {
	svc := newTestWalletService(newMemoryWalletStore())

	_, err := svc.Swap("user-1", &models.SwapRequest{
		FromCurrency: currency.SOL,
		ToCurrency:   currency.SOL,
		Amount:       decimal.NewFromInt(5),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestSwapInsufficientBalanceWritesNothing(t *testing.T) {
	store := newMemoryWalletStore()
	svc := newTestWalletService(store)

	_, err := svc.CreateWallet("user-1")
	require.NoError(t, err)

	before := len(store.entriesFor("user-1"))
	_, err = svc.Swap("user-1", &models.SwapRequest{
		FromCurrency: currency.SOL,
		ToCurrency:   currency.USDT,
		Amount:       decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	assert.Len(t, store.entriesFor("user-1"), before)
}

func TestWithdrawRequiresMatchingAccountName(t *testing.T) {
	store := newMemoryWalletStore()
	svc := newTestWalletService(store)

	_, err := svc.CreateWallet("user-1")
	require.NoError(t, err)
	_, err = svc.Deposit("user-1", &models.DepositRequest{Amount: decimal.NewFromInt(500), Currency: currency.FIAT})
	require.NoError(t, err)

	_, err = svc.Withdraw("user-1", "Ada Obi", &models.WithdrawRequest{
		Amount:        decimal.NewFromInt(100),
		Currency:      currency.FIAT,
		BankName:      "First Bank",
		AccountNumber: "0123456789",
		AccountName:   "Chidi Okafor",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = svc.Withdraw("user-1", "Ada Obi", &models.WithdrawRequest{
		Amount:        decimal.NewFromInt(100),
		Currency:      currency.FIAT,
		BankName:      "First Bank",
		AccountNumber: "0123456789",
		AccountName:   "Obi Ada",
	})
	require.NoError(t, err)
}

func TestWithdrawSOLRequiresAddress(t *testing.T) {
	store := newMemoryWalletStore()
	svc := newTestWalletService(store)

	_, err := svc.CreateWallet("user-1")
	require.NoError(t, err)
	_, err = svc.Deposit("user-1", &models.DepositRequest{Amount: decimal.NewFromInt(5), Currency: currency.SOL})
	require.NoError(t, err)

	_, err = svc.Withdraw("user-1", "Ada Obi", &models.WithdrawRequest{
		Amount:   decimal.NewFromInt(1),
		Currency: currency.SOL,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = svc.Withdraw("user-1", "Ada Obi", &models.WithdrawRequest{
		Amount:        decimal.NewFromInt(1),
		Currency:      currency.SOL,
		SolanaAddress: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
	})
	require.NoError(t, err)
}

func TestNewReferenceFormat(t *testing.T) {
	ref := NewReference("DEP")
	assert.Regexp(t, `^DEP-[0-9A-F]{8}$`, ref)

	assert.NotEqual(t, NewReference("DEP"), NewReference("DEP"))
}

func TestCreateSolanaAddressIsIdempotent(t *testing.T) {
	store := newMemoryWalletStore()
	svc := newTestWalletService(store)

	_, err := svc.CreateWallet("user-1")
	require.NoError(t, err)

	first, err := svc.CreateSolanaAddress("user-1")
	require.NoError(t, err)
	assert.Len(t, first, 44)

	second, err := svc.CreateSolanaAddress("user-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetBalancesIncludesMembership(t *testing.T) {
	store := newMemoryWalletStore()
	svc := newTestWalletService(store)

	_, err := svc.CreateWallet("user-1")
	require.NoError(t, err)
	_, err = svc.Deposit("user-1", &models.DepositRequest{Amount: decimal.NewFromInt(14990), Currency: currency.COST})
	require.NoError(t, err)

	balances, err := svc.GetBalances("user-1")
	require.NoError(t, err)

	// 14990 deposited plus the 10 COST welcome bonus crosses the bronze line.
	assert.Equal(t, "Bronze", balances.Membership.Name)
	assert.Equal(t, currency.NGN, balances.Currency.Code)
	assert.NotEmpty(t, balances.ExchangeRates)
}
