package fxmath

import "github.com/holiman/uint256"

// FeeBpsDenominator is the basis-point denominator used throughout the
// protocol for fee and ratio calculations.
const FeeBpsDenominator = 10_000

// SwapOutput computes the CPMM output amount for an input of amountIn into
// reserves (reserveIn, reserveOut) after deducting a fee expressed in basis
// points, per spec.md 4.1:
//
//	x_eff = amountIn * (10000 - feeBps) / 10000
//	out   = reserveOut * x_eff / (reserveIn + x_eff)
//
// Returns the output amount and the effective (fee-deducted) input amount.
func SwapOutput(reserveIn, reserveOut, amountIn *uint256.Int, feeBps uint32) (out, effectiveIn *uint256.Int) {
	if reserveIn == nil || reserveOut == nil || amountIn == nil || amountIn.IsZero() {
		return uint256.NewInt(0), uint256.NewInt(0)
	}
	if feeBps > FeeBpsDenominator {
		feeBps = FeeBpsDenominator
	}
	keepBps := uint256.NewInt(FeeBpsDenominator - uint64(feeBps))
	numerator := new(uint256.Int).Mul(amountIn, keepBps)
	effIn := new(uint256.Int).Div(numerator, uint256.NewInt(FeeBpsDenominator))

	denom := new(uint256.Int).Add(reserveIn, effIn)
	if denom.IsZero() {
		return uint256.NewInt(0), effIn
	}
	outNumerator := new(uint256.Int).Mul(reserveOut, effIn)
	output := new(uint256.Int).Div(outNumerator, denom)
	return output, effIn
}

// SaturatingAdd adds a and b, clamping at Max128.
func SaturatingAdd(a, b *uint256.Int) *uint256.Int {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || sum.Gt(Max128) {
		return new(uint256.Int).Set(Max128)
	}
	return sum
}

// SaturatingSub subtracts b from a, clamping at zero when b > a.
func SaturatingSub(a, b *uint256.Int) *uint256.Int {
	if b.Gt(a) {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Sub(a, b)
}

// SaturatingMul multiplies a and b, clamping at Max128 on overflow.
func SaturatingMul(a, b *uint256.Int) *uint256.Int {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow || product.Gt(Max128) {
		return new(uint256.Int).Set(Max128)
	}
	return product
}

// MulDiv computes floor(a*b/c) using a 512-bit intermediate (via
// MulDivOverflow) so that a*b can exceed 256 bits without loss of precision,
// saturating the final result at Max128. Returns zero when c is zero.
func MulDiv(a, b, c *uint256.Int) *uint256.Int {
	if c == nil || c.IsZero() {
		return uint256.NewInt(0)
	}
	result, overflow := new(uint256.Int).MulDivOverflow(a, b, c)
	if overflow || result.Gt(Max128) {
		return new(uint256.Int).Set(Max128)
	}
	return result
}

// Min returns the smaller of a and b.
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}

// Max returns the larger of a and b.
func Max(a, b *uint256.Int) *uint256.Int {
	if a.Gt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}
