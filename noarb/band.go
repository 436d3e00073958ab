// Package noarb implements the no-arbitrage band guard of spec.md §4.6:
// after any operation that can move the spot price, it verifies the spot
// price lies within the band implied by the conditional AMMs' prices and
// fee schedule, and can search for the profit-maximizing arbitrage trade
// that would bring a violating price back into band.
//
// Grounded on the teacher's native/lending liquidation-threshold checks
// for the "compute a bound, compare, branch to remediation" shape.
package noarb

import (
	"github.com/holiman/uint256"

	"futarchy/fxmath"
)

// feeFactor returns (10000-feeBps)/10000 as a PriceScale-scaled fraction:
// the "keep" fraction after a fee of feeBps basis points.
func feeFactor(feeBps uint32) fxmath.Price {
	if feeBps > fxmath.FeeBpsDenominator {
		feeBps = fxmath.FeeBpsDenominator
	}
	return fxmath.RatioPrice(uint256.NewInt(uint64(fxmath.FeeBpsDenominator-feeBps)), uint256.NewInt(fxmath.FeeBpsDenominator))
}

// Band computes the [floor, ceiling] no-arbitrage band from the current
// conditional AMM prices and the spot/outcome fee schedules, per
// spec.md §4.6:
//
//	floor    = (1 - f_s) * min_i((1 - f_i) * p_i)
//	ceiling  = (1 / (1 - f_s)) * sum_i(p_i / (1 - f_i))
func Band(conditionalPrices []fxmath.Price, feeSpotBps uint32, feeOutcomeBps []uint32) (floor, ceiling fxmath.Price) {
	if len(conditionalPrices) == 0 {
		return fxmath.NewPrice(0), fxmath.NewPrice(0)
	}
	spotFactor := feeFactor(feeSpotBps)

	var minAdjusted fxmath.Price
	sum := fxmath.NewPrice(0)
	for i, p := range conditionalPrices {
		f := feeFactor(feeOutcomeBps[i])
		adjusted := p.Mul(f)
		if i == 0 || adjusted.Cmp(minAdjusted) < 0 {
			minAdjusted = adjusted
		}
		sum = sum.Add(p.Div(f))
	}

	floor = minAdjusted.Mul(spotFactor)
	ceiling = sum.Div(spotFactor)
	return floor, ceiling
}

// InBand reports whether spotPrice lies within [floor, ceiling], the
// testable property spec.md §8 item 5 requires after every committed
// spot-pool operation.
func InBand(spotPrice, floor, ceiling fxmath.Price) bool {
	return spotPrice.Cmp(floor) >= 0 && spotPrice.Cmp(ceiling) <= 0
}
