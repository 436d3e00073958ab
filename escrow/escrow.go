// Package escrow implements the conditional-token escrow described in
// spec.md §4.3: the complete-set mint/burn bookkeeping that backs every
// outcome's conditional asset and stable supply with real spot collateral.
//
// Grounded on the teacher's native/escrow package for its Supply-counter
// and value-type Clone() conventions, generalized from a single-owner
// escrow into a multi-outcome complete-set ledger.
package escrow

import (
	"fmt"

	"github.com/holiman/uint256"

	"futarchy/fxmath"
	"futarchy/store"
)

// Side distinguishes the asset leg from the stable leg of a conditional pair.
type Side uint8

const (
	Asset Side = iota
	Stable
)

// TokenEscrow owns the spot collateral backing every outcome's conditional
// tokens for one proposal, per spec.md §3's TokenEscrow entity.
type TokenEscrow struct {
	store.Versioned

	ProposalID store.ID `json:"proposal_id"`

	OutcomeCount int `json:"outcome_count"`

	SupplyAsset  []fxmath.Price `json:"supply_asset"`
	SupplyStable []fxmath.Price `json:"supply_stable"`

	SpotAsset  fxmath.Price `json:"spot_asset"`
	SpotStable fxmath.Price `json:"spot_stable"`

	// MarketWinner is set by the proposal state machine at finalize time;
	// nil until then. Redemption is only valid against the winning outcome.
	MarketWinner *int `json:"market_winner,omitempty"`
	Finalized    bool `json:"finalized"`

	// CoinRegistry optionally names the typed conditional coin minted for
	// each (outcome, side) pair, registered on advance_to_review (spec.md
	// §4.4 "optionally registers typed conditional coins for each
	// outcome"). Modeled after the teacher's native/escrow tokenRegistry:
	// a lookup keyed by a short symbol string rather than a live handle.
	CoinRegistry map[string]string `json:"coin_registry,omitempty"`
}

func coinRegistryKey(side Side, i int) string {
	if side == Asset {
		return fmt.Sprintf("asset:%d", i)
	}
	return fmt.Sprintf("stable:%d", i)
}

// RegisterConditionalCoin names the typed coin symbol minted against
// outcome i's side, for display/indexing collaborators. Idempotent:
// re-registering overwrites the prior symbol.
func (e *TokenEscrow) RegisterConditionalCoin(side Side, i int, symbol string) error {
	if !e.validOutcome(i) {
		return ErrUnknownOutcome
	}
	if e.CoinRegistry == nil {
		e.CoinRegistry = make(map[string]string)
	}
	e.CoinRegistry[coinRegistryKey(side, i)] = symbol
	return nil
}

// ConditionalCoinSymbol looks up the registered symbol for (side, i), if any.
func (e *TokenEscrow) ConditionalCoinSymbol(side Side, i int) (string, bool) {
	symbol, ok := e.CoinRegistry[coinRegistryKey(side, i)]
	return symbol, ok
}

// New constructs an empty escrow for outcomeCount outcomes (outcome 0 is
// always REJECT per spec.md §3).
func New(id store.ID, proposalID store.ID, outcomeCount int) *TokenEscrow {
	e := &TokenEscrow{
		Versioned:    store.Versioned{ID: id, Version: 1},
		ProposalID:   proposalID,
		OutcomeCount: outcomeCount,
		SupplyAsset:  make([]fxmath.Price, outcomeCount),
		SupplyStable: make([]fxmath.Price, outcomeCount),
		SpotAsset:    fxmath.NewPrice(0),
		SpotStable:   fxmath.NewPrice(0),
	}
	for i := range e.SupplyAsset {
		e.SupplyAsset[i] = fxmath.NewPrice(0)
		e.SupplyStable[i] = fxmath.NewPrice(0)
	}
	return e
}

func (e *TokenEscrow) validOutcome(i int) bool {
	return i >= 0 && i < e.OutcomeCount
}

func (e *TokenEscrow) supplyFor(side Side, i int) fxmath.Price {
	if side == Asset {
		return e.SupplyAsset[i]
	}
	return e.SupplyStable[i]
}

func (e *TokenEscrow) setSupplyFor(side Side, i int, v fxmath.Price) {
	if side == Asset {
		e.SupplyAsset[i] = v
	} else {
		e.SupplyStable[i] = v
	}
}

func (e *TokenEscrow) spotFor(side Side) fxmath.Price {
	if side == Asset {
		return e.SpotAsset
	}
	return e.SpotStable
}

func (e *TokenEscrow) setSpotFor(side Side, v fxmath.Price) {
	if side == Asset {
		e.SpotAsset = v
	} else {
		e.SpotStable = v
	}
}

// DepositAndMint increases spot balance and outcome i's conditional supply
// by x, and returns a handle of the minted amount. This is single-sided:
// it mints only for outcome i, per spec.md §4.3's "Important single-sided
// semantics" note — callers are responsible for maintaining the
// complete-set invariant across the full outcome set before any later
// spot withdrawal.
func (e *TokenEscrow) DepositAndMint(side Side, i int, x *uint256.Int) (fxmath.Price, error) {
	if !e.validOutcome(i) {
		return fxmath.Price{}, ErrUnknownOutcome
	}
	if x == nil || x.IsZero() {
		return fxmath.Price{}, ErrZeroAmount
	}
	e.setSpotFor(side, fxmath.FromUint256(fxmath.SaturatingAdd(e.spotFor(side).Uint256(), x)))
	newSupply := fxmath.FromUint256(fxmath.SaturatingAdd(e.supplyFor(side, i).Uint256(), x))
	if newSupply.Cmp(e.spotFor(side)) > 0 {
		return fxmath.Price{}, ErrSupplyExceedsBacking
	}
	e.setSupplyFor(side, i, newSupply)
	return fxmath.FromUint256(x), nil
}

// BurnAndWithdraw reverses DepositAndMint for outcome i: burns x from its
// conditional supply and returns x spot, without touching the other
// outcomes' supplies. Per spec.md §4.3 this is symmetric to
// DepositAndMint and carries the same single-sided caveat.
func (e *TokenEscrow) BurnAndWithdraw(side Side, i int, x *uint256.Int) error {
	if !e.validOutcome(i) {
		return ErrUnknownOutcome
	}
	if x == nil || x.IsZero() {
		return ErrZeroAmount
	}
	if x.Cmp(e.supplyFor(side, i).Uint256()) > 0 {
		return ErrInsufficientSupply
	}
	if x.Cmp(e.spotFor(side).Uint256()) > 0 {
		return ErrInsufficientSpot
	}
	e.setSupplyFor(side, i, fxmath.FromUint256(fxmath.SaturatingSub(e.supplyFor(side, i).Uint256(), x)))
	e.setSpotFor(side, fxmath.FromUint256(fxmath.SaturatingSub(e.spotFor(side).Uint256(), x)))
	return nil
}

// BurnCompleteSetAndWithdraw requires the caller to hold x conditional
// units of side on every outcome; it atomically burns x from all outcomes
// and returns x spot. Used by arbitrage and by quantum recombination.
func (e *TokenEscrow) BurnCompleteSetAndWithdraw(side Side, x *uint256.Int) error {
	if x == nil || x.IsZero() {
		return ErrZeroAmount
	}
	for i := 0; i < e.OutcomeCount; i++ {
		if x.Cmp(e.supplyFor(side, i).Uint256()) > 0 {
			return ErrInsufficientSupply
		}
	}
	if x.Cmp(e.spotFor(side).Uint256()) > 0 {
		return ErrInsufficientSpot
	}
	for i := 0; i < e.OutcomeCount; i++ {
		e.setSupplyFor(side, i, fxmath.FromUint256(fxmath.SaturatingSub(e.supplyFor(side, i).Uint256(), x)))
	}
	e.setSpotFor(side, fxmath.FromUint256(fxmath.SaturatingSub(e.spotFor(side).Uint256(), x)))
	return nil
}

// MintCompleteSet is the inverse of BurnCompleteSetAndWithdraw: it deposits
// x spot and mints x conditional units of side for every outcome
// simultaneously. Used by the quantum split when funding new conditional
// AMMs so that every outcome's supply grows in lockstep with spot backing.
func (e *TokenEscrow) MintCompleteSet(side Side, x *uint256.Int) error {
	if x == nil || x.IsZero() {
		return ErrZeroAmount
	}
	e.setSpotFor(side, fxmath.FromUint256(fxmath.SaturatingAdd(e.spotFor(side).Uint256(), x)))
	for i := 0; i < e.OutcomeCount; i++ {
		newSupply := fxmath.FromUint256(fxmath.SaturatingAdd(e.supplyFor(side, i).Uint256(), x))
		if newSupply.Cmp(e.spotFor(side)) > 0 {
			return ErrSupplyExceedsBacking
		}
		e.setSupplyFor(side, i, newSupply)
	}
	return nil
}

// Finalize records the market winner, enabling RedeemWinning.
func (e *TokenEscrow) Finalize(winner int) error {
	if !e.validOutcome(winner) {
		return ErrUnknownOutcome
	}
	w := winner
	e.MarketWinner = &w
	e.Finalized = true
	return nil
}

// RedeemWinning redeems x winning-outcome conditional units 1:1 to spot.
// Valid only once Finalize has been called with i == market_winner.
func (e *TokenEscrow) RedeemWinning(side Side, i int, x *uint256.Int) error {
	if !e.Finalized || e.MarketWinner == nil {
		return ErrNotFinalized
	}
	if i != *e.MarketWinner {
		return ErrNotAWinner
	}
	return e.BurnAndWithdraw(side, i, x)
}

// MinCompleteSetSupply returns the smallest per-outcome conditional supply
// for side across every outcome: the largest amount BurnCompleteSetAndWithdraw
// can retire in one call, since that call requires every outcome to hold at
// least x.
func (e *TokenEscrow) MinCompleteSetSupply(side Side) *uint256.Int {
	if e.OutcomeCount == 0 {
		return uint256.NewInt(0)
	}
	min := e.supplyFor(side, 0).Uint256()
	for i := 1; i < e.OutcomeCount; i++ {
		if s := e.supplyFor(side, i).Uint256(); s.Cmp(min) < 0 {
			min = s
		}
	}
	return min
}

// CheckInvariant verifies, for every outcome, that conditional supply never
// exceeds its spot backing (spec.md §3's complete-set invariant). Intended
// for tests and defensive assertions around mutation boundaries, not for
// the hot path.
func (e *TokenEscrow) CheckInvariant() error {
	for i := 0; i < e.OutcomeCount; i++ {
		if e.SupplyAsset[i].Cmp(e.SpotAsset) > 0 {
			return ErrSupplyExceedsBacking
		}
		if e.SupplyStable[i].Cmp(e.SpotStable) > 0 {
			return ErrSupplyExceedsBacking
		}
	}
	return nil
}
