package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertIdentity(t *testing.T) {
	rates := NewRateTable(NGN)

	amount := decimal.RequireFromString("123.456789")
	got, known := rates.Convert(amount, USD, USD)

	require.True(t, known)
	assert.True(t, got.Equal(amount), "identity conversion must not round")
}

func TestConvertFiatResolvesToHome(t *testing.T) {
	rates := NewRateTable(NGN)

	got, known := rates.Convert(decimal.NewFromInt(500), FIAT, NGN)

	require.True(t, known)
	assert.True(t, got.Equal(decimal.NewFromInt(500)), "FIAT and home code are the same currency")
}

func TestConvertThroughUSDPivot(t *testing.T) {
	rates := NewRateTable(NGN)

	// 100 SOL at $180 each is $18000, which is 18000 USDT at $1.
	got, known := rates.Convert(decimal.NewFromInt(100), SOL, USDT)
	require.True(t, known)
	assert.True(t, got.Equal(decimal.NewFromInt(18000)), "got %s", got)

	// 1600 NGN is $1, which buys 20 COST at $0.05.
	got, known = rates.Convert(decimal.NewFromInt(1600), NGN, COST)
	require.True(t, known)
	assert.True(t, got.Equal(decimal.NewFromInt(20)), "got %s", got)
}

func TestConvertUnknownCodePassesThrough(t *testing.T) {
	rates := NewRateTable(NGN)

	got, known := rates.Convert(decimal.NewFromInt(50), Code("XYZ"), USD)

	assert.False(t, known, "unknown code must be flagged")
	assert.True(t, got.Equal(decimal.NewFromInt(50)), "unknown side is treated as USD")
}

func TestReloadIgnoresNonPositiveRates(t *testing.T) {
	rates := NewRateTable(NGN)

	rates.Reload(map[Code]decimal.Decimal{
		SOL: decimal.NewFromInt(200),
		EUR: decimal.Zero,
	})

	sol, ok := rates.Rate(SOL)
	require.True(t, ok)
	assert.True(t, sol.Equal(decimal.NewFromInt(200)))

	eur, ok := rates.Rate(EUR)
	require.True(t, ok)
	assert.True(t, eur.Equal(decimal.NewFromFloat(1.08)), "zero rate must not overwrite")
}

func TestIsWalletCode(t *testing.T) {
	for _, c := range WalletCodes {
		assert.True(t, IsWalletCode(c))
	}
	assert.False(t, IsWalletCode(USD))
	assert.False(t, IsWalletCode(Code("")))
}
