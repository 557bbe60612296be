package services

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/internal/currency"
	"campusmarket/internal/models"
)

// memoryStatusStore mirrors the SQL store's conditional transition: the
// update only lands when the record is not already in the target status.
type memoryStatusStore struct {
	mu     sync.Mutex
	states map[string]models.OrderStatus
}

func newMemoryStatusStore(states map[string]models.OrderStatus) *memoryStatusStore {
	return &memoryStatusStore{states: states}
}

func (s *memoryStatusStore) Transition(table, recordID string, to models.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := table + "/" + recordID
	if s.states[key] == to {
		return false, nil
	}
	s.states[key] = to
	return true, nil
}

func newTestOrderService(store WalletStore, states map[string]models.OrderStatus) (*OrderService, *WalletService) {
	rates := currency.NewRateTable(currency.NGN)
	wallet := NewWalletService(store, rates, zerolog.Nop())
	purchase := NewPurchaseService(wallet, rates, zerolog.Nop())
	svc := &OrderService{
		status:   newMemoryStatusStore(states),
		purchase: purchase,
		rates:    rates,
		logger:   zerolog.Nop(),
	}
	return svc, wallet
}

func TestRepeatedDeliveredTransitionSettlesOnce(t *testing.T) {
	store := newMemoryWalletStore()
	svc, wallet := newTestOrderService(store, map[string]models.OrderStatus{
		"orders/order-1": models.StatusPending,
	})

	_, err := wallet.CreateWallet("buyer")
	require.NoError(t, err)
	_, err = wallet.CreateWallet("seller")
	require.NoError(t, err)

	settle := func() error {
		return svc.purchase.Settle("seller", "buyer", decimal.NewFromInt(950), decimal.NewFromInt(950), currency.FIAT, models.PurchaseProduct, "Calculus textbook")
	}

	for i := 0; i < 3; i++ {
		err := svc.settleOnTransition("orders", "order-1", models.StatusDelivered, models.StatusDelivered, settle)
		require.NoError(t, err)
	}

	seller, err := store.GetWallet("seller")
	require.NoError(t, err)
	assert.True(t, seller.FiatBalance.Equal(decimal.NewFromInt(950)), "seller credited more than once: %s", seller.FiatBalance)

	buyer, err := store.GetWallet("buyer")
	require.NoError(t, err)
	assert.Equal(t, 9, buyer.LoyaltyPoints, "points awarded more than once")
}

func TestNonTerminalTransitionDoesNotSettle(t *testing.T) {
	store := newMemoryWalletStore()
	svc, wallet := newTestOrderService(store, map[string]models.OrderStatus{
		"orders/order-1": models.StatusPending,
	})

	_, err := wallet.CreateWallet("seller")
	require.NoError(t, err)

	var settled bool
	settle := func() error {
		settled = true
		return nil
	}

	err = svc.settleOnTransition("orders", "order-1", models.StatusConfirmed, models.StatusDelivered, settle)
	require.NoError(t, err)
	assert.False(t, settled)

	err = svc.settleOnTransition("orders", "order-1", models.StatusInTransit, models.StatusDelivered, settle)
	require.NoError(t, err)
	assert.False(t, settled)

	err = svc.settleOnTransition("orders", "order-1", models.StatusDelivered, models.StatusDelivered, settle)
	require.NoError(t, err)
	assert.True(t, settled)
}
