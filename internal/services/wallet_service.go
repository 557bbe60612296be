package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"campusmarket/internal/currency"
	"campusmarket/internal/loyalty"
	"campusmarket/internal/models"
)

// WelcomeBonus is the COST balance every new wallet starts with.
var WelcomeBonus = decimal.NewFromInt(10)

// SwapFeePercent is the flat fee taken from the converted amount of a swap.
var SwapFeePercent = decimal.NewFromInt(1)

// WalletService is the ledger. It owns every mutation of wallet balances:
// debits, credits and swaps, each paired with an append-only transaction
// record carrying a unique reference. Operations on the same wallet are
// serialized; different wallets proceed independently.
type WalletService struct {
	store  WalletStore
	rates  *currency.RateTable
	logger zerolog.Logger
	mu     sync.Map
}

func NewWalletService(store WalletStore, rates *currency.RateTable, logger zerolog.Logger) *WalletService {
	return &WalletService{
		store:  store,
		rates:  rates,
		logger: logger,
	}
}

func (s *WalletService) getMutex(userID string) *sync.Mutex {
	mu, _ := s.mu.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// NewReference builds a unique, human-scannable reference for one ledger
// entry, e.g. "DEP-3FA85F64". Callers use it for client-side retry
// detection; the ledger itself only guarantees uniqueness.
func NewReference(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CreateWallet bootstraps a wallet for a new user: all balances zero except
// the COST welcome bonus, recorded as a bonus entry.
func (s *WalletService) CreateWallet(userID string) (*models.Wallet, error) {
	w := &models.Wallet{
		UserID:      userID,
		Currency:    s.rates.Home(),
		FiatBalance: decimal.Zero,
		SolBalance:  decimal.Zero,
		UsdtBalance: decimal.Zero,
		CostBalance: WelcomeBonus,
		UpdatedAt:   time.Now(),
	}
	if err := s.store.CreateWallet(w); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      WelcomeBonus,
		Currency:    currency.COST,
		Kind:        models.EntryBonus,
		Description: fmt.Sprintf("Welcome bonus of %s COST", WelcomeBonus),
		Status:      models.EntryCompleted,
		Reference:   NewReference("BON"),
		CreatedAt:   time.Now(),
	}
	if err := s.store.InsertEntry(entry); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to record welcome bonus entry")
	}

	s.logger.Info().Str("user_id", userID).Msg("Wallet created with welcome bonus")
	return w, nil
}

// GetBalances returns the four balances plus the membership snapshot
// derived from the COST balance at read time.
func (s *WalletService) GetBalances(userID string) (*models.BalancesResponse, error) {
	w, err := s.store.GetWallet(userID)
	if err != nil {
		return nil, err
	}

	home := s.rates.Home()
	return &models.BalancesResponse{
		FiatBalance:   w.FiatBalance,
		SolBalance:    w.SolBalance,
		UsdtBalance:   w.UsdtBalance,
		CostBalance:   w.CostBalance,
		LoyaltyPoints: w.LoyaltyPoints,
		Currency: models.CurrencyInfo{
			Code:   home,
			Symbol: currency.Symbol(home),
			Name:   string(home),
		},
		Membership:    loyalty.Snapshot(w.CostBalance),
		ExchangeRates: s.rates.Rates(),
		SolanaWallet:  w.SolanaWallet,
	}, nil
}

// TierSnapshot recomputes the membership tier from the current COST balance.
func (s *WalletService) TierSnapshot(userID string) (loyalty.TierSnapshot, error) {
	w, err := s.store.GetWallet(userID)
	if err != nil {
		return loyalty.TierSnapshot{}, err
	}
	return loyalty.Snapshot(w.CostBalance), nil
}

// Debit decreases one balance and appends the matching ledger entry. Fails
// with ErrInsufficientBalance when the wallet cannot cover the amount; the
// balance is untouched in that case.
func (s *WalletService) Debit(userID string, c currency.Code, amount decimal.Decimal, kind models.EntryKind, description, reference string) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if !currency.IsWalletCode(c) {
		return nil, fmt.Errorf("%w: %s is not a wallet currency", ErrInvalidRequest, c)
	}

	mu := s.getMutex(userID)
	mu.Lock()
	defer mu.Unlock()

	return s.debitLocked(userID, c, amount, kind, description, reference, nil, nil)
}

func (s *WalletService) debitLocked(userID string, c currency.Code, amount decimal.Decimal, kind models.EntryKind, description, reference string, discountAmount, originalAmount *decimal.Decimal) (*models.LedgerEntry, error) {
	if err := s.store.ApplyDelta(userID, c, amount.Neg()); err != nil {
		return nil, err
	}

	if reference == "" {
		reference = NewReference("TXN")
	}
	entry := &models.LedgerEntry{
		ID:             uuid.NewString(),
		UserID:         userID,
		Amount:         amount.Neg(),
		Currency:       c,
		Kind:           kind,
		Description:    description,
		Status:         models.EntryCompleted,
		DiscountAmount: discountAmount,
		OriginalAmount: originalAmount,
		Reference:      reference,
		CreatedAt:      time.Now(),
	}
	if err := s.store.InsertEntry(entry); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("reference", reference).Msg("Failed to record debit entry")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("currency", string(c)).
		Str("amount", amount.String()).
		Str("reference", reference).
		Msg("Wallet debited")
	return entry, nil
}

// Credit increases one balance and appends the matching ledger entry. No
// upper bound is enforced.
func (s *WalletService) Credit(userID string, c currency.Code, amount decimal.Decimal, kind models.EntryKind, description, reference string) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	if !currency.IsWalletCode(c) {
		return nil, fmt.Errorf("%w: %s is not a wallet currency", ErrInvalidRequest, c)
	}

	mu := s.getMutex(userID)
	mu.Lock()
	defer mu.Unlock()

	return s.creditLocked(userID, c, amount, kind, description, reference)
}

func (s *WalletService) creditLocked(userID string, c currency.Code, amount decimal.Decimal, kind models.EntryKind, description, reference string) (*models.LedgerEntry, error) {
	if err := s.store.ApplyDelta(userID, c, amount); err != nil {
		return nil, err
	}

	if reference == "" {
		reference = NewReference("TXN")
	}
	entry := &models.LedgerEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Currency:    c,
		Kind:        kind,
		Description: description,
		Status:      models.EntryCompleted,
		Reference:   reference,
		CreatedAt:   time.Now(),
	}
	if err := s.store.InsertEntry(entry); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("reference", reference).Msg("Failed to record credit entry")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("currency", string(c)).
		Str("amount", amount.String()).
		Str("reference", reference).
		Msg("Wallet credited")
	return entry, nil
}

// Deposit credits a wallet balance from an external payment source.
func (s *WalletService) Deposit(userID string, req *models.DepositRequest) (*models.LedgerEntry, error) {
	c := req.Currency
	if c == "" {
		c = currency.FIAT
	}
	desc := fmt.Sprintf("Wallet deposit of %s %s", req.Amount, s.displayCode(c))
	return s.Credit(userID, c, req.Amount, models.EntryDeposit, desc, NewReference("DEP"))
}

// Withdraw debits a wallet balance towards a bank account or, for SOL, an
// external address. The account name must share at least one name part with
// the registered user as a light anti-fraud check.
func (s *WalletService) Withdraw(userID, fullName string, req *models.WithdrawRequest) (*models.LedgerEntry, error) {
	c := req.Currency
	if c == "" {
		c = currency.FIAT
	}

	var desc string
	if c == currency.SOL {
		if req.SolanaAddress == "" {
			return nil, fmt.Errorf("%w: solana_address is required for SOL withdrawals", ErrInvalidRequest)
		}
		desc = fmt.Sprintf("Withdrawal to %s", req.SolanaAddress)
	} else {
		if !nameMatches(fullName, req.AccountName) {
			return nil, fmt.Errorf("%w: bank account name must match your registered name", ErrInvalidRequest)
		}
		desc = fmt.Sprintf("Withdrawal to %s - %s", req.BankName, req.AccountNumber)
	}

	return s.Debit(userID, c, req.Amount, models.EntryWithdrawal, desc, NewReference("WTH"))
}

func nameMatches(fullName, accountName string) bool {
	accountParts := strings.Fields(strings.ToLower(accountName))
	for _, part := range strings.Fields(strings.ToLower(fullName)) {
		for _, ap := range accountParts {
			if part == ap {
				return true
			}
		}
	}
	return false
}

// Swap debits one balance, converts through the rate table, takes the flat
// fee from the converted amount and credits the target balance. All or
// nothing: a failed debit writes no entries and credits nothing.
func (s *WalletService) Swap(userID string, req *models.SwapRequest) (*models.SwapResult, error) {
	from, to := req.FromCurrency, req.ToCurrency
	if !currency.IsWalletCode(from) || !currency.IsWalletCode(to) {
		return nil, fmt.Errorf("%w: swap currencies must be wallet currencies", ErrInvalidRequest)
	}
	if from == to {
		return nil, fmt.Errorf("%w: cannot swap a currency with itself", ErrInvalidRequest)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	converted, known := s.rates.Convert(req.Amount, from, to)
	if !known {
		s.logger.Warn().
			Str("from", string(from)).
			Str("to", string(to)).
			Str("conversion_gap", "unknown currency treated as USD").
			Msg("Swap conversion used a pass-through rate")
	}
	fee := converted.Mul(SwapFeePercent).Div(decimal.NewFromInt(100))
	received := converted.Sub(fee)

	mu := s.getMutex(userID)
	mu.Lock()
	defer mu.Unlock()

	reference := NewReference("SWP")
	desc := fmt.Sprintf("Swap %s %s to %s %s", req.Amount, s.displayCode(from), received, s.displayCode(to))

	if _, err := s.debitLocked(userID, from, req.Amount, models.EntrySwap, desc, reference+"-OUT", nil, nil); err != nil {
		return nil, err
	}

	if _, err := s.creditLocked(userID, to, received, models.EntrySwap, desc, reference+"-IN"); err != nil {
		// Undo the debit so the swap stays all-or-nothing.
		if _, rbErr := s.creditLocked(userID, from, req.Amount, models.EntryRefund, "Swap reversal: "+desc, reference+"-RV"); rbErr != nil {
			s.logger.Error().Err(rbErr).Str("user_id", userID).Str("reference", reference).Msg("Swap reversal failed, wallet needs manual reconciliation")
		}
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("amount", req.Amount.String()).
		Str("received", received.String()).
		Str("reference", reference).
		Msg("Swap completed")

	return &models.SwapResult{
		FromCurrency:   from,
		ToCurrency:     to,
		AmountSent:     req.Amount,
		AmountReceived: received,
		Fee:            fee,
		Reference:      reference,
	}, nil
}

// Transactions lists the wallet's ledger entries, newest first.
func (s *WalletService) Transactions(userID string, limit, offset int) ([]*models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.store.ListEntries(userID, limit, offset)
}

// AwardLoyaltyPoints adds points to a wallet's counter.
func (s *WalletService) AwardLoyaltyPoints(userID string, points int) error {
	if points <= 0 {
		return nil
	}
	if err := s.store.AddLoyaltyPoints(userID, points); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Int("points", points).Msg("Loyalty points awarded")
	return nil
}

// CreateSolanaAddress stores a placeholder deposit address for the wallet.
// No key material is generated or held.
func (s *WalletService) CreateSolanaAddress(userID string) (string, error) {
	w, err := s.store.GetWallet(userID)
	if err != nil {
		return "", err
	}
	if w.SolanaWallet != "" {
		return w.SolanaWallet, nil
	}

	address := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")[:44]
	if err := s.store.SetSolanaWallet(userID, address); err != nil {
		return "", err
	}
	s.logger.Info().Str("user_id", userID).Msg("Solana deposit address created")
	return address, nil
}

func (s *WalletService) displayCode(c currency.Code) string {
	return string(s.rates.Resolve(c))
}
