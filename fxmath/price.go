// Package fxmath implements the protocol's fixed-point price arithmetic.
//
// Prices are held as 128-bit unsigned fixed-point values scaled by
// PriceScale (10^12), backed by github.com/holiman/uint256's 256-bit
// register so that intermediate multiplications never overflow before the
// final saturating clamp back into the u128 range. All operations are
// saturating: they clamp at zero and at Max128 rather than wrapping.
package fxmath

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// PriceScale is the fixed-point scale applied to every Price value.
const PriceScale = 1_000_000_000_000 // 10^12

// Max128 is the saturating ceiling for any Price or magnitude value: the
// largest value representable in 128 bits.
var Max128 = new(uint256.Int).Sub(
	new(uint256.Int).Lsh(uint256.NewInt(1), 128),
	uint256.NewInt(1),
)

// Price is a saturating, 128-bit-bounded fixed-point number scaled by
// PriceScale. The zero value is the price 0.
type Price struct {
	v *uint256.Int
}

// NewPrice builds a Price from a raw (already-scaled) uint64.
func NewPrice(raw uint64) Price {
	return Price{v: uint256.NewInt(raw)}
}

// FromUint256 wraps an existing uint256.Int, clamping it into the u128
// range. The input is not mutated.
func FromUint256(x *uint256.Int) Price {
	if x == nil {
		return Price{v: uint256.NewInt(0)}
	}
	clamped := new(uint256.Int).Set(x)
	if clamped.Gt(Max128) {
		clamped.Set(Max128)
	}
	return Price{v: clamped}
}

// ParsePrice parses a decimal raw integer string (already scaled by
// PriceScale) into a Price.
func ParsePrice(s string) (Price, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Price{}, fmt.Errorf("fxmath: invalid price literal %q", s)
	}
	if v.Sign() < 0 {
		return Price{}, fmt.Errorf("fxmath: negative price literal %q", s)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		u = new(uint256.Int).Set(Max128)
	}
	return FromUint256(u), nil
}

// RatioPrice computes (numerator * PriceScale) / denominator, saturating on
// overflow and returning the zero price when denominator is zero. This is
// the canonical "spot price from reserves" computation used throughout the
// AMM and oracle packages.
func RatioPrice(numerator, denominator *uint256.Int) Price {
	if denominator == nil || denominator.IsZero() {
		return Price{v: uint256.NewInt(0)}
	}
	if numerator == nil || numerator.IsZero() {
		return Price{v: uint256.NewInt(0)}
	}
	scale := uint256.NewInt(PriceScale)
	product, overflow := new(uint256.Int).MulOverflow(numerator, scale)
	if overflow {
		// Fall back to big.Int for the rare case reserves are large enough
		// that the 256-bit product itself overflows; the final quotient is
		// still clamped into u128.
		bigNum := numerator.ToBig()
		bigDen := denominator.ToBig()
		bigScale := big.NewInt(PriceScale)
		bigProduct := new(big.Int).Mul(bigNum, bigScale)
		bigProduct.Quo(bigProduct, bigDen)
		u, of := uint256.FromBig(bigProduct)
		if of {
			u = new(uint256.Int).Set(Max128)
		}
		return FromUint256(u)
	}
	quotient := new(uint256.Int).Div(product, denominator)
	return FromUint256(quotient)
}

// Uint256 returns the underlying register; callers must not mutate it.
func (p Price) Uint256() *uint256.Int {
	if p.v == nil {
		return uint256.NewInt(0)
	}
	return p.v
}

// IsZero reports whether the price is exactly zero.
func (p Price) IsZero() bool { return p.Uint256().IsZero() }

// Cmp compares p to other: -1, 0, 1 as usual.
func (p Price) Cmp(other Price) int { return p.Uint256().Cmp(other.Uint256()) }

// Add returns p+other, saturating at Max128.
func (p Price) Add(other Price) Price {
	sum, overflow := new(uint256.Int).AddOverflow(p.Uint256(), other.Uint256())
	if overflow || sum.Gt(Max128) {
		return Price{v: new(uint256.Int).Set(Max128)}
	}
	return Price{v: sum}
}

// Sub returns p-other, saturating at zero when other > p.
func (p Price) Sub(other Price) Price {
	if other.Cmp(p) > 0 {
		return Price{v: uint256.NewInt(0)}
	}
	return Price{v: new(uint256.Int).Sub(p.Uint256(), other.Uint256())}
}

// Mul returns p*other scaled back down by PriceScale (treating both operands
// as PriceScale-fixed-point numbers), saturating on overflow.
func (p Price) Mul(other Price) Price {
	product, overflow := new(uint256.Int).MulOverflow(p.Uint256(), other.Uint256())
	if overflow {
		return Price{v: new(uint256.Int).Set(Max128)}
	}
	scale := uint256.NewInt(PriceScale)
	quotient := new(uint256.Int).Div(product, scale)
	return FromUint256(quotient)
}

// Div returns (p*PriceScale)/other, saturating on overflow and returning the
// zero price when other is zero.
func (p Price) Div(other Price) Price {
	if other.IsZero() {
		return Price{v: uint256.NewInt(0)}
	}
	scale := uint256.NewInt(PriceScale)
	scaled, overflow := new(uint256.Int).MulOverflow(p.Uint256(), scale)
	if overflow {
		bigP := p.Uint256().ToBig()
		bigScale := big.NewInt(PriceScale)
		bigOther := other.Uint256().ToBig()
		bigScaled := new(big.Int).Mul(bigP, bigScale)
		bigScaled.Quo(bigScaled, bigOther)
		u, of := uint256.FromBig(bigScaled)
		if of {
			u = new(uint256.Int).Set(Max128)
		}
		return FromUint256(u)
	}
	quotient := new(uint256.Int).Div(scaled, other.Uint256())
	return FromUint256(quotient)
}

// ClampStep returns p clamped so that |p - prev| <= step, where step is an
// absolute (unscaled) magnitude expressed as a Price. Used by the TWAP
// oracle to resist single-observation manipulation.
func ClampStep(prev, p, step Price) Price {
	if step.IsZero() {
		return prev
	}
	upper := prev.Add(step)
	lower := prev.Sub(step)
	if p.Cmp(upper) > 0 {
		return upper
	}
	if p.Cmp(lower) < 0 {
		return lower
	}
	return p
}

// String renders the raw scaled integer, matching the teacher's
// formatAmount convention of printing big integers verbatim for logs.
func (p Price) String() string {
	return p.Uint256().ToBig().String()
}

// MarshalJSON renders the value as a quoted decimal string so persisted
// entities round-trip exactly regardless of JSON number precision limits,
// the same reasoning behind the teacher storing big.Int-backed fields as
// RLP-encoded structs rather than JSON numbers.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON parses a quoted (or bare) decimal string back into a Price.
func (p *Price) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*p = NewPrice(0)
		return nil
	}
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Sqrt returns the integer square root of x's raw register value (NOT
// rescaled), used by AddLiquidity's first-deposit LP sizing. Monotone and exact: Sqrt(x)^2 <= x <
// (Sqrt(x)+1)^2.
func Sqrt(x *uint256.Int) *uint256.Int {
	if x == nil || x.IsZero() {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Sqrt(x)
}
