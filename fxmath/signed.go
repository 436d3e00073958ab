package fxmath

import (
	"fmt"

	"github.com/holiman/uint256"
)

// SignedU128 is a tiny explicit-sign value type used for TWAP win
// thresholds and sponsorship biases. A native signed 128-bit integer is
// deliberately avoided: thresholds must round-trip bit-faithfully across
// storage layers, and (magnitude, sign) is trivial to serialize without a
// two's-complement convention to get wrong.
type SignedU128 struct {
	Magnitude  Price
	IsNegative bool
}

// ZeroSigned is the additive identity.
var ZeroSigned = SignedU128{Magnitude: NewPrice(0)}

// PositiveSigned builds a non-negative SignedU128 from a Price.
func PositiveSigned(p Price) SignedU128 {
	return SignedU128{Magnitude: p}
}

// NegativeSigned builds a negative SignedU128 from a Price magnitude. A
// zero magnitude is always treated as non-negative.
func NegativeSigned(p Price) SignedU128 {
	if p.IsZero() {
		return SignedU128{Magnitude: p}
	}
	return SignedU128{Magnitude: p, IsNegative: true}
}

// Sign returns -1, 0, or 1.
func (s SignedU128) Sign() int {
	if s.Magnitude.IsZero() {
		return 0
	}
	if s.IsNegative {
		return -1
	}
	return 1
}

// Add returns the saturating sum of two signed values, expressed in the
// same unsigned-magnitude-plus-sign representation.
func (s SignedU128) Add(other SignedU128) SignedU128 {
	if s.IsNegative == other.IsNegative {
		return SignedU128{Magnitude: s.Magnitude.Add(other.Magnitude), IsNegative: s.IsNegative}
	}
	// Opposite signs: subtract the smaller magnitude from the larger one and
	// keep the sign of the larger magnitude.
	if s.Magnitude.Cmp(other.Magnitude) >= 0 {
		diff := s.Magnitude.Sub(other.Magnitude)
		return SignedU128{Magnitude: diff, IsNegative: s.IsNegative && !diff.IsZero()}
	}
	diff := other.Magnitude.Sub(s.Magnitude)
	return SignedU128{Magnitude: diff, IsNegative: other.IsNegative && !diff.IsZero()}
}

// CompareBiased adds a SignedU128 bias onto an unsigned Price and returns
// the resulting SignedU128, used when applying a sponsorship bias onto a
// frozen TWAP before the winner argmax.
func CompareBiased(base Price, bias SignedU128) SignedU128 {
	baseSigned := PositiveSigned(base)
	return baseSigned.Add(bias)
}

// Less reports whether s < other under signed ordering.
func (s SignedU128) Less(other SignedU128) bool {
	sSign, oSign := s.Sign(), other.Sign()
	if sSign != oSign {
		return sSign < oSign
	}
	switch sSign {
	case 0:
		return false
	case 1:
		return s.Magnitude.Cmp(other.Magnitude) < 0
	default: // both negative: larger magnitude is the smaller (more negative) value
		return s.Magnitude.Cmp(other.Magnitude) > 0
	}
}

// ParseSignedU128 parses a decimal literal optionally prefixed with '-'.
func ParseSignedU128(s string) (SignedU128, error) {
	if s == "" {
		return SignedU128{}, fmt.Errorf("fxmath: empty signed literal")
	}
	negative := false
	if s[0] == '-' {
		negative = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}
	mag, err := ParsePrice(s)
	if err != nil {
		return SignedU128{}, err
	}
	if mag.IsZero() {
		negative = false
	}
	return SignedU128{Magnitude: mag, IsNegative: negative}, nil
}

// String renders the signed literal, e.g. "-1500000000000".
func (s SignedU128) String() string {
	if s.IsNegative && !s.Magnitude.IsZero() {
		return "-" + s.Magnitude.String()
	}
	return s.Magnitude.String()
}

// Uint256Magnitude exposes the raw magnitude register for callers that need
// to compose additional uint256 arithmetic directly.
func (s SignedU128) Uint256Magnitude() *uint256.Int { return s.Magnitude.Uint256() }
