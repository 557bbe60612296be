package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"campusmarket/internal/currency"
)

func TestPricePayingInCostUsesTierDiscount(t *testing.T) {
	snap := Snapshot(decimal.NewFromInt(0)) // basic, 10%

	quote := Price(snap, currency.COST, decimal.NewFromInt(1000))

	assert.Equal(t, int64(10), quote.Percent)
	assert.True(t, quote.DiscountAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, quote.FinalAmount.Equal(decimal.NewFromInt(900)))
}

func TestPricePlatinumInCost(t *testing.T) {
	snap := Snapshot(decimal.NewFromInt(100000)) // platinum, 50%

	quote := Price(snap, currency.COST, decimal.NewFromInt(1000))

	assert.Equal(t, int64(50), quote.Percent)
	assert.True(t, quote.FinalAmount.Equal(decimal.NewFromInt(500)))
}

func TestPriceOtherCurrenciesGetFlatDiscount(t *testing.T) {
	snap := Snapshot(decimal.NewFromInt(100000)) // platinum

	for _, c := range []currency.Code{currency.FIAT, currency.SOL, currency.USDT} {
		quote := Price(snap, c, decimal.NewFromInt(1000))
		assert.Equal(t, FlatDiscount, quote.Percent, "currency %s", c)
		assert.True(t, quote.FinalAmount.Equal(decimal.NewFromInt(950)), "currency %s", c)
	}
}

func TestLoyaltyPointsFloorDivision(t *testing.T) {
	cases := []struct {
		amount string
		want   int
	}{
		{"0", 0},
		{"99.99", 0},
		{"100", 1},
		{"199.99", 1},
		{"950", 9},
		{"1000", 10},
	}

	for _, tc := range cases {
		got := LoyaltyPoints(decimal.RequireFromString(tc.amount))
		assert.Equal(t, tc.want, got, "amount %s", tc.amount)
	}
}
