package loyalty

import (
	"github.com/shopspring/decimal"
)

// Tier is a membership bracket derived from a wallet's COST balance.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// TierInfo describes one bracket of the membership ladder.
type TierInfo struct {
	Tier       Tier   `json:"tier"`
	Name       string `json:"name"`
	MinBalance int64  `json:"min_balance"`
	Discount   int64  `json:"discount"`
	Color      string `json:"color"`
}

// Ladder is ordered by ascending MinBalance. A balance equal to a threshold
// belongs to that tier (inclusive lower bound).
var Ladder = []TierInfo{
	{Tier: TierBasic, Name: "Basic", MinBalance: 0, Discount: 10, Color: "#808080"},
	{Tier: TierBronze, Name: "Bronze", MinBalance: 15000, Discount: 20, Color: "#CD7F32"},
	{Tier: TierSilver, Name: "Silver", MinBalance: 30000, Discount: 30, Color: "#C0C0C0"},
	{Tier: TierGold, Name: "Gold", MinBalance: 50000, Discount: 40, Color: "#FFD700"},
	{Tier: TierPlatinum, Name: "Platinum", MinBalance: 100000, Discount: 50, Color: "#E5E4E2"},
}

// NextTier describes the bracket above the current one and how far away it is.
type NextTier struct {
	Tier         Tier            `json:"tier"`
	Name         string          `json:"tier_name"`
	MinBalance   int64           `json:"min_balance"`
	Discount     int64           `json:"discount"`
	Color        string          `json:"color"`
	TokensNeeded decimal.Decimal `json:"tokens_needed"`
}

// TierSnapshot is the membership state derived from a COST balance at read
// time. It is never persisted; recomputing it on every read keeps it from
// drifting out of sync with the balance.
type TierSnapshot struct {
	Tier        Tier            `json:"tier"`
	Name        string          `json:"tier_name"`
	MinBalance  int64           `json:"min_balance"`
	Discount    int64           `json:"discount"`
	Color       string          `json:"color"`
	CostBalance decimal.Decimal `json:"cost_balance"`
	Next        *NextTier       `json:"next_tier,omitempty"`
}

// Snapshot maps a COST balance to its tier. Negative balances clamp to the
// basic tier; the ledger never produces them, so this is a safety net rather
// than a reachable state.
func Snapshot(costBalance decimal.Decimal) TierSnapshot {
	idx := 0
	for i, t := range Ladder {
		if costBalance.GreaterThanOrEqual(decimal.NewFromInt(t.MinBalance)) {
			idx = i
		}
	}

	cur := Ladder[idx]
	snap := TierSnapshot{
		Tier:        cur.Tier,
		Name:        cur.Name,
		MinBalance:  cur.MinBalance,
		Discount:    cur.Discount,
		Color:       cur.Color,
		CostBalance: costBalance,
	}

	if idx < len(Ladder)-1 {
		next := Ladder[idx+1]
		snap.Next = &NextTier{
			Tier:         next.Tier,
			Name:         next.Name,
			MinBalance:   next.MinBalance,
			Discount:     next.Discount,
			Color:        next.Color,
			TokensNeeded: decimal.NewFromInt(next.MinBalance).Sub(costBalance),
		}
	}

	return snap
}
