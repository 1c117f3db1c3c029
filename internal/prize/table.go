package prize

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// DefaultTable is the wheel used by the first promotion.
var DefaultTable = Table{
	{Amount: 20000, Weight: 15},
	{Amount: 40000, Weight: 15},
	{Amount: 50000, Weight: 25},
	{Amount: 100000, Weight: 10},
	{Amount: 150000, Weight: 10},
	{Amount: 200000, Weight: 15},
	{Amount: 300000, Weight: 7},
	{Amount: 400000, Weight: 2},
	{Amount: 500000, Weight: 1},
}

// MaxTotalWeight bounds the sum of a table's weights so it stays exact as a float64
// and cannot overflow int.
const MaxTotalWeight = math.MaxInt32

var ErrEmptyTable = errors.New("prize table has no tiers")

// RandomSource yields uniform floats in [0, 1).
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// NewRandomSource returns the auto-seeded process source, safe for concurrent use.
func NewRandomSource() RandomSource {
	return globalSource{}
}

// Table is the ordered prize configuration. It is loaded once and never mutated.
type Table []Tier

func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	total := 0
	for i, tier := range t {
		if tier.Weight <= 0 {
			return fmt.Errorf("tier %d (%d): weight must be positive, got %d", i, tier.Amount, tier.Weight)
		}
		if tier.Amount <= 0 {
			return fmt.Errorf("tier %d: amount must be positive, got %d", i, tier.Amount)
		}
		if tier.Weight > MaxTotalWeight-total {
			return fmt.Errorf("tier %d (%d): total weight exceeds %d", i, tier.Amount, MaxTotalWeight)
		}
		total += tier.Weight
	}
	return nil
}

func (t Table) TotalWeight() int {
	total := 0
	for _, tier := range t {
		total += tier.Weight
	}
	return total
}

// At returns the first tier whose cumulative weight exceeds r. Values of r outside
// [0, TotalWeight) still resolve: anything past the end falls back to the last tier.
func (t Table) At(r float64) Tier {
	cumulative := 0
	for _, tier := range t {
		cumulative += tier.Weight
		if r < float64(cumulative) {
			return tier
		}
	}
	return t[len(t)-1]
}

// Draw picks a tier with probability weight/TotalWeight. The table must be valid.
func (t Table) Draw(src RandomSource) Tier {
	r := src.Float64() * float64(t.TotalWeight())
	return t.At(r)
}

// Odds reports each tier alongside its selection probability.
func (t Table) Odds() []TierOdds {
	total := float64(t.TotalWeight())
	odds := make([]TierOdds, 0, len(t))
	for _, tier := range t {
		odds = append(odds, TierOdds{
			Amount:      tier.Amount,
			Weight:      tier.Weight,
			Probability: float64(tier.Weight) / total,
		})
	}
	return odds
}
