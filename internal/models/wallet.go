package models

import (
	"time"

	"github.com/shopspring/decimal"

	"campusmarket/internal/currency"
	"campusmarket/internal/loyalty"
)

// Wallet holds the four balances of one user. Balances are mutated only
// through the wallet service and never go negative.
type Wallet struct {
	UserID        string          `json:"user_id"`
	Currency      currency.Code   `json:"currency"`
	FiatBalance   decimal.Decimal `json:"fiat_balance"`
	SolBalance    decimal.Decimal `json:"sol_balance"`
	UsdtBalance   decimal.Decimal `json:"usdt_balance"`
	CostBalance   decimal.Decimal `json:"cost_balance"`
	LoyaltyPoints int             `json:"loyalty_points"`
	SolanaWallet  string          `json:"solana_wallet,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Balance returns the balance held in one of the four wallet currencies.
func (w *Wallet) Balance(c currency.Code) decimal.Decimal {
	switch c {
	case currency.FIAT:
		return w.FiatBalance
	case currency.SOL:
		return w.SolBalance
	case currency.USDT:
		return w.UsdtBalance
	case currency.COST:
		return w.CostBalance
	}
	return decimal.Zero
}

type EntryKind string

const (
	EntryDeposit    EntryKind = "deposit"
	EntryWithdrawal EntryKind = "withdrawal"
	EntryPurchase   EntryKind = "purchase"
	EntrySale       EntryKind = "sale"
	EntrySwap       EntryKind = "swap"
	EntryRefund     EntryKind = "refund"
	EntryBonus      EntryKind = "bonus"
)

type EntryStatus string

const (
	EntryCompleted EntryStatus = "completed"
	EntryPending   EntryStatus = "pending"
	EntryFailed    EntryStatus = "failed"
)

// LedgerEntry is an immutable audit record of one balance movement. Debits
// carry a negative amount, credits a positive one. Entries are append-only;
// nothing ever updates or deletes them.
type LedgerEntry struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       currency.Code    `json:"currency"`
	Kind           EntryKind        `json:"transaction_type"`
	Description    string           `json:"description"`
	Status         EntryStatus      `json:"status"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	OriginalAmount *decimal.Decimal `json:"original_amount,omitempty"`
	Reference      string           `json:"reference"`
	CreatedAt      time.Time        `json:"created_at"`
}

type DepositRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency currency.Code   `json:"currency"`
}

type WithdrawRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      currency.Code   `json:"currency"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	SolanaAddress string          `json:"solana_address,omitempty"`
}

type SwapRequest struct {
	FromCurrency currency.Code   `json:"from_currency"`
	ToCurrency   currency.Code   `json:"to_currency"`
	Amount       decimal.Decimal `json:"amount"`
}

type SwapResult struct {
	FromCurrency   currency.Code   `json:"from_currency"`
	ToCurrency     currency.Code   `json:"to_currency"`
	AmountSent     decimal.Decimal `json:"amount_sent"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Fee            decimal.Decimal `json:"fee"`
	Reference      string          `json:"reference"`
}

type CurrencyInfo struct {
	Code   currency.Code `json:"code"`
	Symbol string        `json:"symbol"`
	Name   string        `json:"name"`
}

// BalancesResponse is the wallet overview returned to the owner.
type BalancesResponse struct {
	FiatBalance   decimal.Decimal                    `json:"fiat_balance"`
	SolBalance    decimal.Decimal                    `json:"sol_balance"`
	UsdtBalance   decimal.Decimal                    `json:"usdt_balance"`
	CostBalance   decimal.Decimal                    `json:"cost_balance"`
	LoyaltyPoints int                                `json:"loyalty_points"`
	Currency      CurrencyInfo                       `json:"currency"`
	Membership    loyalty.TierSnapshot               `json:"membership"`
	ExchangeRates map[currency.Code]decimal.Decimal `json:"exchange_rates"`
	SolanaWallet  string                             `json:"solana_wallet,omitempty"`
}
