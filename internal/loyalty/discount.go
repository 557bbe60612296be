package loyalty

import (
	"github.com/shopspring/decimal"

	"campusmarket/internal/currency"
)

// FlatDiscount applies when a purchase is paid in anything other than COST.
const FlatDiscount int64 = 5

// Quote is the priced-out result of applying a discount to one purchase.
// It is consumed immediately by the ledger debit for the same purchase.
type Quote struct {
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Percent        int64           `json:"discount_percent"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	Currency       currency.Code   `json:"currency"`
}

// Price computes the discount for a purchase. Paying in COST earns the
// tier's discount; every other currency gets the flat rate regardless of
// tier, which is the incentive to hold and spend COST.
func Price(snap TierSnapshot, payCurrency currency.Code, amount decimal.Decimal) Quote {
	percent := FlatDiscount
	if payCurrency == currency.COST {
		percent = snap.Discount
	}

	discount := amount.Mul(decimal.NewFromInt(percent)).Div(decimal.NewFromInt(100))
	return Quote{
		OriginalAmount: amount,
		Percent:        percent,
		DiscountAmount: discount,
		FinalAmount:    amount.Sub(discount),
		Currency:       payCurrency,
	}
}

// LoyaltyPoints awards one point per 100 units spent, truncated. Floor
// division is the documented rounding policy since it affects user-visible
// point totals.
func LoyaltyPoints(finalAmount decimal.Decimal) int {
	return int(finalAmount.Div(decimal.NewFromInt(100)).IntPart())
}
