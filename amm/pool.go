// Package amm implements the constant-product market maker used for every
// per-outcome conditional pool (and, via its swap math, the spot pool).
// Grounded on the teacher's native/lending engine for the guard-before-write
// shape of its mutating operations, and on native/escrow's Clone() value
// semantics for safe read access.
package amm

import (
	"github.com/holiman/uint256"

	"futarchy/fxmath"
	"futarchy/store"
)

// Direction selects which side of the pool is being sold into.
type Direction uint8

const (
	// AssetToStable sells the asset side for the stable side.
	AssetToStable Direction = iota
	// StableToAsset sells the stable side for the asset side.
	StableToAsset
)

// DustLock is subtracted from the very first liquidity mint and stays in
// LPSupply without being credited to anyone, locked permanently, the standard CPMM bootstrap protection against a
// first-depositor donating dust to manipulate the share price.
var DustLock = uint256.NewInt(1_000)

// Pool is one constant-product pool over an (asset, stable) pair. One Pool
// exists per outcome per proposal for the conditional markets; the spot
// pool (spotpool.SpotPool) holds one Pool for its reserves and swaps, and
// partitions that Pool's LP across LIVE/TRANSITIONING buckets on top of it.
type Pool struct {
	store.Versioned

	ReserveAsset  fxmath.Price `json:"reserve_asset"`
	ReserveStable fxmath.Price `json:"reserve_stable"`
	LPSupply      fxmath.Price `json:"lp_supply"`
	FeeBps        uint32       `json:"fee_bps"`

	FeeAccruedAsset  fxmath.Price `json:"fee_accrued_asset"`
	FeeAccruedStable fxmath.Price `json:"fee_accrued_stable"`
}

// New constructs an empty pool with the given fee schedule.
func New(id store.ID, feeBps uint32) *Pool {
	return &Pool{
		Versioned:     store.Versioned{ID: id, Version: 1},
		ReserveAsset:  fxmath.NewPrice(0),
		ReserveStable: fxmath.NewPrice(0),
		LPSupply:      fxmath.NewPrice(0),
		FeeBps:        feeBps,
	}
}

// Price returns r_s * PriceScale / r_a, per spec.md §4.2.
func (p *Pool) Price() fxmath.Price {
	return fxmath.RatioPrice(p.ReserveStable.Uint256(), p.ReserveAsset.Uint256())
}

// k returns the current product invariant r_a * r_s.
func (p *Pool) k() *uint256.Int {
	return fxmath.SaturatingMul(p.ReserveAsset.Uint256(), p.ReserveStable.Uint256())
}

// Swap exchanges amountIn of the side selected by dir for the other side,
// deducting FeeBps and requiring the output to be at least minOut.
func (p *Pool) Swap(dir Direction, amountIn, minOut *uint256.Int) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrZeroAmount
	}
	kBefore := p.k()

	var reserveIn, reserveOut *uint256.Int
	if dir == AssetToStable {
		reserveIn, reserveOut = p.ReserveAsset.Uint256(), p.ReserveStable.Uint256()
	} else {
		reserveIn, reserveOut = p.ReserveStable.Uint256(), p.ReserveAsset.Uint256()
	}

	out, effIn := fxmath.SwapOutput(reserveIn, reserveOut, amountIn, p.FeeBps)
	if out.IsZero() || out.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity
	}
	if minOut != nil && out.Cmp(minOut) < 0 {
		return nil, ErrSlippageExceeded
	}

	fee := fxmath.SaturatingSub(amountIn, effIn)
	newReserveIn := fxmath.SaturatingAdd(reserveIn, effIn)
	newReserveOut := fxmath.SaturatingSub(reserveOut, out)
	if newReserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}

	// Testable property 3 (spec.md §8): fees can only retain or grow k.
	if fxmath.SaturatingMul(newReserveIn, newReserveOut).Cmp(kBefore) < 0 {
		return nil, ErrProductInvariantViolated
	}

	if dir == AssetToStable {
		p.ReserveAsset = fxmath.FromUint256(newReserveIn)
		p.ReserveStable = fxmath.FromUint256(newReserveOut)
		p.FeeAccruedAsset = fxmath.FromUint256(fxmath.SaturatingAdd(p.FeeAccruedAsset.Uint256(), fee))
	} else {
		p.ReserveStable = fxmath.FromUint256(newReserveIn)
		p.ReserveAsset = fxmath.FromUint256(newReserveOut)
		p.FeeAccruedStable = fxmath.FromUint256(fxmath.SaturatingAdd(p.FeeAccruedStable.Uint256(), fee))
	}
	return out, nil
}

// AddLiquidity deposits assetIn/stableIn and mints LP tokens. On the very
// first deposit, lpOut = sqrt(assetIn * stableIn) - DustLock; subsequent
// deposits must match the existing reserve ratio within 1% tolerance and
// mint proportionally to the smaller of the two implied shares.
func (p *Pool) AddLiquidity(assetIn, stableIn, minLP *uint256.Int) (*uint256.Int, error) {
	if assetIn == nil || stableIn == nil || assetIn.IsZero() || stableIn.IsZero() {
		return nil, ErrZeroAmount
	}

	if p.LPSupply.IsZero() {
		product := fxmath.SaturatingMul(assetIn, stableIn)
		root := fxmath.Sqrt(product)
		if root.Cmp(DustLock) <= 0 {
			return nil, ErrInsufficientLiquidity
		}
		lpOut := new(uint256.Int).Sub(root, DustLock)
		if minLP != nil && lpOut.Cmp(minLP) < 0 {
			return nil, ErrSlippageExceeded
		}
		p.ReserveAsset = fxmath.FromUint256(assetIn)
		p.ReserveStable = fxmath.FromUint256(stableIn)
		p.LPSupply = fxmath.FromUint256(root) // DustLock stays minted but unassigned, permanently locked
		return lpOut, nil
	}

	if !withinTolerance(p.ReserveAsset.Uint256(), p.ReserveStable.Uint256(), assetIn, stableIn) {
		return nil, ErrInvalidRatio
	}

	lpFromAsset := fxmath.MulDiv(assetIn, p.LPSupply.Uint256(), p.ReserveAsset.Uint256())
	lpFromStable := fxmath.MulDiv(stableIn, p.LPSupply.Uint256(), p.ReserveStable.Uint256())
	lpOut := fxmath.Min(lpFromAsset, lpFromStable)
	if lpOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	if minLP != nil && lpOut.Cmp(minLP) < 0 {
		return nil, ErrSlippageExceeded
	}

	p.ReserveAsset = fxmath.FromUint256(fxmath.SaturatingAdd(p.ReserveAsset.Uint256(), assetIn))
	p.ReserveStable = fxmath.FromUint256(fxmath.SaturatingAdd(p.ReserveStable.Uint256(), stableIn))
	p.LPSupply = fxmath.FromUint256(fxmath.SaturatingAdd(p.LPSupply.Uint256(), lpOut))
	return lpOut, nil
}

// RemoveLiquidity burns lpIn proportionally and returns the withdrawn
// (asset, stable) amounts.
func (p *Pool) RemoveLiquidity(lpIn, minAsset, minStable *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if lpIn == nil || lpIn.IsZero() {
		return nil, nil, ErrZeroAmount
	}
	if lpIn.Cmp(p.LPSupply.Uint256()) > 0 {
		return nil, nil, ErrInsufficientLP
	}
	assetOut := fxmath.MulDiv(lpIn, p.ReserveAsset.Uint256(), p.LPSupply.Uint256())
	stableOut := fxmath.MulDiv(lpIn, p.ReserveStable.Uint256(), p.LPSupply.Uint256())
	if minAsset != nil && assetOut.Cmp(minAsset) < 0 {
		return nil, nil, ErrSlippageExceeded
	}
	if minStable != nil && stableOut.Cmp(minStable) < 0 {
		return nil, nil, ErrSlippageExceeded
	}
	p.ReserveAsset = fxmath.FromUint256(fxmath.SaturatingSub(p.ReserveAsset.Uint256(), assetOut))
	p.ReserveStable = fxmath.FromUint256(fxmath.SaturatingSub(p.ReserveStable.Uint256(), stableOut))
	p.LPSupply = fxmath.FromUint256(fxmath.SaturatingSub(p.LPSupply.Uint256(), lpIn))
	return assetOut, stableOut, nil
}

// withinTolerance reports whether (assetIn, stableIn) matches the
// (reserveAsset, reserveStable) ratio within 1% (100 bps), cross-multiplying
// to avoid a division.
func withinTolerance(reserveAsset, reserveStable, assetIn, stableIn *uint256.Int) bool {
	const toleranceBps = 100
	lhs := fxmath.SaturatingMul(assetIn, reserveStable)
	rhs := fxmath.SaturatingMul(stableIn, reserveAsset)
	diff := lhs
	if rhs.Cmp(lhs) > 0 {
		diff = new(uint256.Int).Sub(rhs, lhs)
	} else {
		diff = new(uint256.Int).Sub(lhs, rhs)
	}
	bound := fxmath.MulDiv(rhs, uint256.NewInt(toleranceBps), uint256.NewInt(fxmath.FeeBpsDenominator))
	return diff.Cmp(bound) <= 0
}

// Snapshot returns a value copy suitable for event emission without
// exposing the live pool for mutation.
type Snapshot struct {
	ReserveAsset  fxmath.Price
	ReserveStable fxmath.Price
	LPSupply      fxmath.Price
	Price         fxmath.Price
}

// Snapshot captures the pool's current externally-visible state.
func (p *Pool) Snapshot() Snapshot {
	return Snapshot{
		ReserveAsset:  p.ReserveAsset,
		ReserveStable: p.ReserveStable,
		LPSupply:      p.LPSupply,
		Price:         p.Price(),
	}
}
