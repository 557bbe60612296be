package services

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"campusmarket/internal/currency"
	"campusmarket/internal/loyalty"
	"campusmarket/internal/models"
)

// PurchaseTarget is what a buyer is paying for, resolved by the owning flow
// (product order, service booking or food order) before the shared purchase
// sequence runs.
type PurchaseTarget struct {
	Kind          models.PurchaseKind
	ID            string
	SellerID      string
	Title         string
	Amount        decimal.Decimal
	PriceCurrency currency.Code
	Available     bool
}

// PurchaseService runs the one purchase sequence all three flows share:
// validate, resolve the price into the payment currency, apply the buyer's
// discount, debit the buyer. The counterparty is credited later, on
// settlement, never here.
type PurchaseService struct {
	wallet *WalletService
	rates  *currency.RateTable
	logger zerolog.Logger
}

func NewPurchaseService(wallet *WalletService, rates *currency.RateTable, logger zerolog.Logger) *PurchaseService {
	return &PurchaseService{
		wallet: wallet,
		rates:  rates,
		logger: logger,
	}
}

func referencePrefix(kind models.PurchaseKind) string {
	switch kind {
	case models.PurchaseService:
		return "SVC"
	case models.PurchaseFood:
		return "FOOD"
	default:
		return "ORD"
	}
}

// Execute performs steps one through four of a purchase and returns the
// priced quote plus the buyer's debit entry. A failed debit aborts the whole
// purchase; the caller creates no domain record in that case.
func (s *PurchaseService) Execute(buyerID string, target PurchaseTarget, payCurrency currency.Code) (*loyalty.Quote, *models.LedgerEntry, error) {
	if target.ID == "" || !target.Available {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, target.Kind)
	}
	if buyerID == target.SellerID {
		return nil, nil, fmt.Errorf("%w: cannot purchase your own %s", ErrInvalidRequest, target.Kind)
	}
	if !target.Amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	if payCurrency == "" {
		payCurrency = currency.FIAT
	}
	if !currency.IsWalletCode(payCurrency) {
		return nil, nil, fmt.Errorf("%w: %s is not a wallet currency", ErrInvalidRequest, payCurrency)
	}

	priceCurrency := target.PriceCurrency
	if priceCurrency == "" {
		priceCurrency = currency.FIAT
	}
	amount, known := s.rates.Convert(target.Amount, priceCurrency, payCurrency)
	if !known {
		s.logger.Warn().
			Str("from", string(priceCurrency)).
			Str("to", string(payCurrency)).
			Str("conversion_gap", "unknown currency treated as USD").
			Msg("Purchase price conversion used a pass-through rate")
	}

	snap, err := s.wallet.TierSnapshot(buyerID)
	if err != nil {
		return nil, nil, err
	}
	quote := loyalty.Price(snap, payCurrency, amount)

	desc := fmt.Sprintf("Purchase: %s", target.Title)
	reference := NewReference(referencePrefix(target.Kind))

	mu := s.wallet.getMutex(buyerID)
	mu.Lock()
	defer mu.Unlock()

	entry, err := s.wallet.debitLocked(buyerID, payCurrency, quote.FinalAmount, models.EntryPurchase, desc, reference, &quote.DiscountAmount, &quote.OriginalAmount)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("buyer_id", buyerID).
		Str("kind", string(target.Kind)).
		Str("target_id", target.ID).
		Str("final_amount", quote.FinalAmount.String()).
		Int64("discount_percent", quote.Percent).
		Str("reference", reference).
		Msg("Purchase debited")

	return &quote, entry, nil
}

// Settle is the fulfillment half of a purchase: credit the counterparty and
// award the buyer one loyalty point per 100 units of what they actually
// paid, floored. credit and finalAmount differ for food orders, where the
// seller's share excludes the delivery fee but the buyer earned points on
// the whole payment. Callers invoke it exactly once, on the transition into
// the terminal status.
func (s *PurchaseService) Settle(sellerID, buyerID string, credit, finalAmount decimal.Decimal, payCurrency currency.Code, kind models.PurchaseKind, title string) error {
	desc := fmt.Sprintf("Sale: %s", title)
	if _, err := s.wallet.Credit(sellerID, payCurrency, credit, models.EntrySale, desc, NewReference(referencePrefix(kind))); err != nil {
		return fmt.Errorf("failed to credit counterparty: %w", err)
	}

	points := loyalty.LoyaltyPoints(finalAmount)
	if err := s.wallet.AwardLoyaltyPoints(buyerID, points); err != nil {
		s.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("Failed to award loyalty points")
	}

	s.logger.Info().
		Str("seller_id", sellerID).
		Str("buyer_id", buyerID).
		Str("kind", string(kind)).
		Str("credit", credit.String()).
		Int("points", points).
		Msg("Purchase settled")
	return nil
}
