package currency

import (
	"sync"

	"github.com/shopspring/decimal"
)

// RateTable converts amounts between currencies through a USD pivot. Rates
// are stored as USD per one unit of the currency. The table is refreshed by
// an external task via Reload; conversions only ever read a snapshot of it.
type RateTable struct {
	mu         sync.RWMutex
	usdPerUnit map[Code]decimal.Decimal
	home       Code
}

// Default rates used until the first Reload.
var defaultRates = map[Code]decimal.Decimal{
	USD:  decimal.NewFromInt(1),
	NGN:  decimal.NewFromInt(1).Div(decimal.NewFromInt(1600)),
	EUR:  decimal.NewFromFloat(1.08),
	GBP:  decimal.NewFromFloat(1.27),
	SOL:  decimal.NewFromInt(180),
	USDT: decimal.NewFromInt(1),
	COST: decimal.NewFromFloat(0.05),
}

// NewRateTable builds a rate table with the default rates. home is the fiat
// code that FIAT resolves to.
func NewRateTable(home Code) *RateTable {
	rates := make(map[Code]decimal.Decimal, len(defaultRates))
	for c, r := range defaultRates {
		rates[c] = r
	}
	return &RateTable{usdPerUnit: rates, home: home}
}

// Reload replaces the rate table. Unknown or non-positive rates are ignored.
func (t *RateTable) Reload(usdPerUnit map[Code]decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for c, r := range usdPerUnit {
		if r.IsPositive() {
			t.usdPerUnit[c] = r
		}
	}
}

// Home returns the fiat code FIAT resolves to.
func (t *RateTable) Home() Code {
	return t.home
}

// Resolve maps FIAT to the home fiat code and leaves every other code as is.
func (t *RateTable) Resolve(c Code) Code {
	if c == FIAT {
		return t.home
	}
	return c
}

// Rate returns the USD value of one unit of c. The second result is false
// when the code is unknown; the caller gets a 1:1 USD rate in that case so
// the amount passes through unconverted rather than being dropped.
func (t *RateTable) Rate(c Code) (decimal.Decimal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if r, ok := t.usdPerUnit[t.Resolve(c)]; ok {
		return r, true
	}
	return decimal.NewFromInt(1), false
}

// Convert converts amount from one currency to another through the USD
// pivot. Identical codes return the amount untouched with no rounding. The
// second result is false when either code was missing from the table (a
// conversion gap); the conversion still proceeds treating the unknown side
// as USD.
func (t *RateTable) Convert(amount decimal.Decimal, from, to Code) (decimal.Decimal, bool) {
	from = t.Resolve(from)
	to = t.Resolve(to)
	if from == to {
		return amount, true
	}

	fromRate, fromOK := t.Rate(from)
	toRate, toOK := t.Rate(to)

	usd := amount.Mul(fromRate)
	return usd.Div(toRate), fromOK && toOK
}

// Rates returns a copy of the current table for display purposes.
func (t *RateTable) Rates() map[Code]decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[Code]decimal.Decimal, len(t.usdPerUnit))
	for c, r := range t.usdPerUnit {
		out[c] = r
	}
	return out
}
