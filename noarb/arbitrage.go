package noarb

import (
	"github.com/holiman/uint256"

	"futarchy/amm"
	"futarchy/fxmath"
)

// ArbDirection identifies which pool is sold into first.
type ArbDirection uint8

const (
	// SpotToConditional buys the asset cheaply at spot and sells it into a
	// conditional AMM, the remediation for p_spot < floor.
	SpotToConditional ArbDirection = iota
	// ConditionalToSpot is the reverse remediation for p_spot > ceiling.
	ConditionalToSpot
)

// Plan is the result of FindOptimalArbitrage: the trade that maximizes net
// profit, expressed as a spot-pool leg followed by a conditional-pool leg
// against OutcomeIndex.
type Plan struct {
	Direction    ArbDirection
	OutcomeIndex int
	AmountIn     *uint256.Int
	Profit       *uint256.Int
}

// searchSteps bounds the ternary search; each step keeps two thirds of the
// bracket, so 64 steps narrow it by a factor of about 1.9e11, not to an
// exact integer for wide ranges.
const searchSteps = 64

// FindOptimalArbitrage performs the deterministic search spec.md §4.6
// describes in the one direction dir selects: for each outcome, it searches
// for the input amount that maximizes net profit routing spot->outcome->spot
// (or the reverse, per dir), and returns the best plan across outcomes, tie-broken by
// smaller input then lower outcome index as spec.md §4.1 requires.
//
// Each candidate trade is simulated against a snapshot of (spotPool,
// pools[i]) without mutating them; the caller re-executes the winning
// plan through the real Swap calls once chosen.
func FindOptimalArbitrage(
	dir ArbDirection,
	spotPool *amm.Pool,
	pools []*amm.Pool,
	maxAmountIn *uint256.Int,
	minProfit *uint256.Int,
) (Plan, bool) {
	var best Plan
	found := false

	for i, pool := range pools {
		amountIn, profit := searchBestInput(dir, spotPool, pool, maxAmountIn)
		if profit.Sign() <= 0 {
			continue
		}
		if minProfit != nil && profit.Cmp(minProfit) < 0 {
			continue
		}
		candidate := Plan{Direction: dir, OutcomeIndex: i, AmountIn: amountIn, Profit: profit}
		if !found {
			best = candidate
			found = true
			continue
		}
		if profit.Cmp(best.Profit) > 0 {
			best = candidate
		} else if profit.Cmp(best.Profit) == 0 {
			if amountIn.Cmp(best.AmountIn) < 0 || (amountIn.Cmp(best.AmountIn) == 0 && i < best.OutcomeIndex) {
				best = candidate
			}
		}
	}
	return best, found
}

// searchBestInput ternary-searches the profit function over
// [0, maxAmountIn], relying on the fact that CPMM round-trip profit is
// concave in the input amount (diminishing marginal return from
// slippage on both legs).
func searchBestInput(dir ArbDirection, spotPool, conditionalPool *amm.Pool, maxAmountIn *uint256.Int) (*uint256.Int, *uint256.Int) {
	lo := uint256.NewInt(0)
	hi := new(uint256.Int).Set(maxAmountIn)
	if hi.IsZero() {
		return uint256.NewInt(0), uint256.NewInt(0)
	}

	for step := 0; step < searchSteps; step++ {
		if new(uint256.Int).Sub(hi, lo).Cmp(uint256.NewInt(1)) <= 0 {
			break
		}
		third := new(uint256.Int).Div(new(uint256.Int).Sub(hi, lo), uint256.NewInt(3))
		m1 := new(uint256.Int).Add(lo, third)
		m2 := new(uint256.Int).Sub(hi, third)

		_, p1 := roundTripProfit(dir, spotPool, conditionalPool, m1)
		_, p2 := roundTripProfit(dir, spotPool, conditionalPool, m2)

		if p1.Cmp(p2) < 0 {
			lo = m1
		} else {
			hi = m2
		}
	}

	bestAmount, bestProfit := roundTripProfit(dir, spotPool, conditionalPool, lo)
	_, hiProfit := roundTripProfit(dir, spotPool, conditionalPool, hi)
	if hiProfit.Cmp(bestProfit) > 0 {
		bestAmount, bestProfit = hi, hiProfit
	}
	return bestAmount, bestProfit
}

// roundTripProfit simulates selling amountIn into the first leg and the
// resulting output into the second leg, on copies of the pools so the
// real state is untouched, returning (amountIn, profit = finalOut -
// amountIn), floored at zero.
func roundTripProfit(dir ArbDirection, spotPool, conditionalPool *amm.Pool, amountIn *uint256.Int) (*uint256.Int, *uint256.Int) {
	if amountIn == nil || amountIn.IsZero() {
		return uint256.NewInt(0), uint256.NewInt(0)
	}

	spotCopy := cloneSnapshot(spotPool)
	condCopy := cloneSnapshot(conditionalPool)

	var legOut *uint256.Int
	var err error
	if dir == SpotToConditional {
		legOut, err = spotCopy.Swap(amm.StableToAsset, amountIn, nil)
		if err != nil {
			return amountIn, uint256.NewInt(0)
		}
		legOut, err = condCopy.Swap(amm.AssetToStable, legOut, nil)
	} else {
		legOut, err = condCopy.Swap(amm.StableToAsset, amountIn, nil)
		if err != nil {
			return amountIn, uint256.NewInt(0)
		}
		legOut, err = spotCopy.Swap(amm.AssetToStable, legOut, nil)
	}
	if err != nil {
		return amountIn, uint256.NewInt(0)
	}

	if legOut.Cmp(amountIn) <= 0 {
		return amountIn, uint256.NewInt(0)
	}
	return amountIn, new(uint256.Int).Sub(legOut, amountIn)
}

// cloneSnapshot builds a throwaway *amm.Pool carrying the same reserves
// and fee so a simulated swap does not mutate the real pool.
func cloneSnapshot(p *amm.Pool) *amm.Pool {
	clone := amm.New(p.ID, p.FeeBps)
	clone.ReserveAsset = fxmath.FromUint256(p.ReserveAsset.Uint256())
	clone.ReserveStable = fxmath.FromUint256(p.ReserveStable.Uint256())
	clone.LPSupply = fxmath.FromUint256(p.LPSupply.Uint256())
	return clone
}
