package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotThresholdsAreInclusive(t *testing.T) {
	cases := []struct {
		balance int64
		want    Tier
	}{
		{0, TierBasic},
		{14999, TierBasic},
		{15000, TierBronze},
		{29999, TierBronze},
		{30000, TierSilver},
		{50000, TierGold},
		{99999, TierGold},
		{100000, TierPlatinum},
		{250000, TierPlatinum},
	}

	for _, tc := range cases {
		snap := Snapshot(decimal.NewFromInt(tc.balance))
		assert.Equal(t, tc.want, snap.Tier, "balance %d", tc.balance)
	}
}

func TestSnapshotNegativeBalanceClampsToBasic(t *testing.T) {
	snap := Snapshot(decimal.NewFromInt(-5))
	assert.Equal(t, TierBasic, snap.Tier)
}

func TestSnapshotNextTier(t *testing.T) {
	snap := Snapshot(decimal.NewFromInt(20000))

	require.NotNil(t, snap.Next)
	assert.Equal(t, TierSilver, snap.Next.Tier)
	assert.True(t, snap.Next.TokensNeeded.Equal(decimal.NewFromInt(10000)))
}

func TestSnapshotPlatinumHasNoNextTier(t *testing.T) {
	snap := Snapshot(decimal.NewFromInt(100000))

	assert.Equal(t, TierPlatinum, snap.Tier)
	assert.Nil(t, snap.Next)
}

func TestSnapshotCarriesTierDetails(t *testing.T) {
	snap := Snapshot(decimal.NewFromInt(15000))

	assert.Equal(t, "Bronze", snap.Name)
	assert.Equal(t, int64(20), snap.Discount)
	assert.Equal(t, "#CD7F32", snap.Color)
}
