package model

import (
	"fmt"
	"strconv"

	"nftStatApp/pkg/money"

	"github.com/shopspring/decimal"
)

// RarityTier is the ordinal rarity classification of a character.
type RarityTier int

const (
	RarityCommon RarityTier = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
)

// RarityTiers lists every tier in ascending order.
var RarityTiers = []RarityTier{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityEpic,
	RarityLegendary,
	RarityMythic,
}

var rarityNames = [...]string{"Common", "Uncommon", "Rare", "Epic", "Legendary", "Mythic"}

// Value multipliers applied to the suggested base price, indexed by tier.
var rarityMultipliers = [...]decimal.Decimal{
	decimal.RequireFromString("1.0"),
	decimal.RequireFromString("1.5"),
	decimal.RequireFromString("2.5"),
	decimal.RequireFromString("4.0"),
	decimal.RequireFromString("7.0"),
	decimal.RequireFromString("12.0"),
}

// Drop rates in percent, indexed by tier. They sum to 100.
var rarityDropRates = [...]float64{60.0, 25.0, 10.0, 3.0, 1.5, 0.5}

func (r RarityTier) valid() bool {
	return r >= RarityCommon && r <= RarityMythic
}

func (r RarityTier) String() string {
	if !r.valid() {
		return fmt.Sprintf("RarityTier(%d)", int(r))
	}
	return rarityNames[r]
}

// ValueMultiplier returns the tier's price multiplier.
func (r RarityTier) ValueMultiplier() decimal.Decimal {
	if !r.valid() {
		return decimal.NewFromInt(1)
	}
	return rarityMultipliers[r]
}

// DropRate returns the tier's drop probability in percent.
func (r RarityTier) DropRate() float64 {
	if !r.valid() {
		return 0
	}
	return rarityDropRates[r]
}

// ParseRarityTier resolves a rarity tag. Exact tier names and the ordinals "0".."5"
// are recognised; anything else is reported as not found.
func ParseRarityTier(s string) (RarityTier, bool) {
	for i, name := range rarityNames {
		if s == name {
			return RarityTier(i), true
		}
	}
	if n, err := strconv.Atoi(s); err == nil && RarityTier(n).valid() {
		return RarityTier(n), true
	}
	return 0, false
}

func (r RarityTier) MarshalText() ([]byte, error) {
	if !r.valid() {
		return nil, fmt.Errorf("invalid rarity tier %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *RarityTier) UnmarshalText(text []byte) error {
	tier, ok := ParseRarityTier(string(text))
	if !ok {
		return fmt.Errorf("unknown rarity tier %q", string(text))
	}
	*r = tier
	return nil
}

// RollRarity maps a uniform draw in [0,100) onto a tier using the cumulative drop rates.
func RollRarity(draw float64) RarityTier {
	cumulative := 0.0
	for _, tier := range RarityTiers {
		cumulative += tier.DropRate()
		if draw <= cumulative {
			return tier
		}
	}
	return RarityCommon
}

// DetermineRarity classifies a character from its stats: higher totals and more
// specialised stat spreads score higher.
func DetermineRarity(strength, agility, intelligence int) RarityTier {
	total := strength + agility + intelligence
	maxStat := max(strength, agility, intelligence)

	variance := float64(maxStat) / (float64(total/3) + 0.1)
	score := float64(total*2) + variance*10

	switch {
	case score >= 95:
		return RarityMythic
	case score >= 85:
		return RarityLegendary
	case score >= 70:
		return RarityEpic
	case score >= 55:
		return RarityRare
	case score >= 40:
		return RarityUncommon
	default:
		return RarityCommon
	}
}

var (
	basePriceEther      = decimal.RequireFromString("0.01")
	levelPriceEther     = decimal.RequireFromString("0.005")
	statPointPriceEther = decimal.RequireFromString("0.001")
)

// SuggestBasePrice returns a suggested listing price in wei for a character.
// tier may be nil when the character has no rarity.
func SuggestBasePrice(level, strength, agility, intelligence int, tier *RarityTier) money.Wei {
	price := basePriceEther.
		Add(levelPriceEther.Mul(decimal.NewFromInt(int64(level)))).
		Add(statPointPriceEther.Mul(decimal.NewFromInt(int64(strength + agility + intelligence))))

	if tier != nil {
		price = price.Mul(tier.ValueMultiplier())
	}

	wei, err := money.FromEther(price)
	if err != nil {
		return money.Zero()
	}
	return wei
}
