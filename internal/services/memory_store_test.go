package services

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"campusmarket/internal/currency"
	"campusmarket/internal/models"
)

// memoryWalletStore implements WalletStore with the same conditional-update
// semantics as the MySQL store, for tests that exercise the ledger without a
// database.
type memoryWalletStore struct {
	mu      sync.Mutex
	wallets map[string]*models.Wallet
	entries []*models.LedgerEntry
}

func newMemoryWalletStore() *memoryWalletStore {
	return &memoryWalletStore{wallets: make(map[string]*models.Wallet)}
}

func (s *memoryWalletStore) CreateWallet(w *models.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wallets[w.UserID]; ok {
		return fmt.Errorf("wallet already exists")
	}
	cp := *w
	s.wallets[w.UserID] = &cp
	return nil
}

func (s *memoryWalletStore) GetWallet(userID string) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("%w: wallet for user %s", ErrNotFound, userID)
	}
	cp := *w
	return &cp, nil
}

func (s *memoryWalletStore) ApplyDelta(userID string, c currency.Code, delta decimal.Decimal) error {
	if _, err := balanceColumn(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[userID]
	if !ok {
		return fmt.Errorf("%w: wallet for user %s", ErrNotFound, userID)
	}

	next := w.Balance(c).Add(delta)
	if next.IsNegative() {
		return ErrInsufficientBalance
	}

	switch c {
	case currency.FIAT:
		w.FiatBalance = next
	case currency.SOL:
		w.SolBalance = next
	case currency.USDT:
		w.UsdtBalance = next
	case currency.COST:
		w.CostBalance = next
	}
	return nil
}

func (s *memoryWalletStore) AddLoyaltyPoints(userID string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[userID]
	if !ok {
		return fmt.Errorf("%w: wallet for user %s", ErrNotFound, userID)
	}
	w.LoyaltyPoints += points
	return nil
}

func (s *memoryWalletStore) SetSolanaWallet(userID, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[userID]
	if !ok {
		return fmt.Errorf("%w: wallet for user %s", ErrNotFound, userID)
	}
	w.SolanaWallet = address
	return nil
}

func (s *memoryWalletStore) InsertEntry(e *models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entries {
		if existing.Reference == e.Reference {
			return fmt.Errorf("duplicate reference %s", e.Reference)
		}
	}
	cp := *e
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *memoryWalletStore) ListEntries(userID string, limit, offset int) ([]*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.LedgerEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID == userID {
			cp := *s.entries[i]
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryWalletStore) entriesFor(userID string) []*models.LedgerEntry {
	out, _ := s.ListEntries(userID, 0, 0)
	return out
}
