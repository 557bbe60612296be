package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"campusmarket/internal/currency"
	"campusmarket/internal/models"
)

// WalletStore is the persistence contract the ledger runs on. ApplyDelta
// must be atomic per wallet: a negative delta that would take the balance
// below zero fails with ErrInsufficientBalance and leaves the balance
// untouched, even under concurrent calls from other processes.
type WalletStore interface {
	CreateWallet(w *models.Wallet) error
	GetWallet(userID string) (*models.Wallet, error)
	ApplyDelta(userID string, c currency.Code, delta decimal.Decimal) error
	AddLoyaltyPoints(userID string, points int) error
	SetSolanaWallet(userID, address string) error
	InsertEntry(e *models.LedgerEntry) error
	ListEntries(userID string, limit, offset int) ([]*models.LedgerEntry, error)
}

// MySQLWalletStore implements WalletStore on the wallets and transactions
// tables. The conditional UPDATE is what serializes concurrent mutations of
// one wallet; no in-process state is involved, so it stays correct when the
// service runs as multiple replicas.
type MySQLWalletStore struct {
	db *sql.DB
}

func NewMySQLWalletStore(db *sql.DB) *MySQLWalletStore {
	return &MySQLWalletStore{db: db}
}

// balanceColumn maps a wallet currency onto its column. The closed switch
// keeps arbitrary strings out of the SQL text.
func balanceColumn(c currency.Code) (string, error) {
	switch c {
	case currency.FIAT:
		return "fiat_balance", nil
	case currency.SOL:
		return "sol_balance", nil
	case currency.USDT:
		return "usdt_balance", nil
	case currency.COST:
		return "cost_balance", nil
	}
	return "", fmt.Errorf("%w: %s is not a wallet currency", ErrInvalidRequest, c)
}

func (s *MySQLWalletStore) CreateWallet(w *models.Wallet) error {
	_, err := s.db.Exec(
		`INSERT INTO wallets (user_id, currency, fiat_balance, sol_balance, usdt_balance, cost_balance, loyalty_points)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.UserID, string(w.Currency), w.FiatBalance, w.SolBalance, w.UsdtBalance, w.CostBalance, w.LoyaltyPoints,
	)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (s *MySQLWalletStore) GetWallet(userID string) (*models.Wallet, error) {
	var w models.Wallet
	var cur string
	var solana sql.NullString

	err := s.db.QueryRow(
		`SELECT user_id, currency, fiat_balance, sol_balance, usdt_balance, cost_balance, loyalty_points, solana_wallet, updated_at
		 FROM wallets WHERE user_id = ?`,
		userID,
	).Scan(&w.UserID, &cur, &w.FiatBalance, &w.SolBalance, &w.UsdtBalance, &w.CostBalance, &w.LoyaltyPoints, &solana, &w.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: wallet for user %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	w.Currency = currency.Code(cur)
	if solana.Valid {
		w.SolanaWallet = solana.String
	}
	return &w, nil
}

// ApplyDelta adjusts one balance by delta. The WHERE clause rejects any
// update that would drive the balance negative, so two concurrent debits
// can never both pass a stale balance check.
func (s *MySQLWalletStore) ApplyDelta(userID string, c currency.Code, delta decimal.Decimal) error {
	col, err := balanceColumn(c)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"UPDATE wallets SET %s = %s + ?, updated_at = ? WHERE user_id = ? AND %s + ? >= 0",
		col, col, col,
	)
	res, err := s.db.Exec(query, delta, time.Now(), userID, delta)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		// Either the wallet is missing or the delta would overdraw it.
		var exists int
		err = s.db.QueryRow("SELECT 1 FROM wallets WHERE user_id = ?", userID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: wallet for user %s", ErrNotFound, userID)
		}
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		return ErrInsufficientBalance
	}
	return nil
}

func (s *MySQLWalletStore) AddLoyaltyPoints(userID string, points int) error {
	_, err := s.db.Exec(
		"UPDATE wallets SET loyalty_points = loyalty_points + ? WHERE user_id = ?",
		points, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add loyalty points: %w", err)
	}
	return nil
}

func (s *MySQLWalletStore) SetSolanaWallet(userID, address string) error {
	_, err := s.db.Exec("UPDATE wallets SET solana_wallet = ? WHERE user_id = ?", address, userID)
	if err != nil {
		return fmt.Errorf("failed to store solana address: %w", err)
	}
	return nil
}

func (s *MySQLWalletStore) InsertEntry(e *models.LedgerEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO transactions (id, user_id, amount, currency, kind, description, status, discount_amount, original_amount, reference, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount, string(e.Currency), string(e.Kind), e.Description, string(e.Status),
		e.DiscountAmount, e.OriginalAmount, e.Reference, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

func (s *MySQLWalletStore) ListEntries(userID string, limit, offset int) ([]*models.LedgerEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, amount, currency, kind, description, status, discount_amount, original_amount, reference, created_at
		 FROM transactions WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		var cur, kind, status string
		var discount, original decimal.NullDecimal

		err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &cur, &kind, &e.Description, &status, &discount, &original, &e.Reference, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning ledger entry: %w", err)
		}

		e.Currency = currency.Code(cur)
		e.Kind = models.EntryKind(kind)
		e.Status = models.EntryStatus(status)
		if discount.Valid {
			e.DiscountAmount = &discount.Decimal
		}
		if original.Valid {
			e.OriginalAmount = &original.Decimal
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
