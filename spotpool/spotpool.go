// Package spotpool implements the DAO's single shared CPMM with liquidity
// partitioned into LIVE / TRANSITIONING / WITHDRAW_ONLY buckets, per
// spec.md §3 (SpotPool) and §4.8.
//
// A bucket's share of the underlying amm.Pool's reserves is always exactly
// its share of the pool's LP supply (bucketLP / pool.LPSupply), so moving
// reserves between the pool and a bucket-level balance is just an
// add/remove-liquidity call sized to that bucket's LP count. WITHDRAW_ONLY
// is the one exception: its balance sits outside the swap curve entirely,
// as spec.md describes it as "claimable spot coins" rather than
// pool-earning liquidity.
package spotpool

import (
	"github.com/holiman/uint256"

	"futarchy/amm"
	"futarchy/fxmath"
	"futarchy/store"
)

// Bucket identifies one of the three liquidity partitions.
type Bucket uint8

const (
	Live Bucket = iota
	Transitioning
	WithdrawOnly
)

// SpotPool is the DAO's primary asset/stable CPMM, bucketed per spec.md §3.
type SpotPool struct {
	store.Versioned

	Pool *amm.Pool `json:"pool"`

	LiveLP          fxmath.Price `json:"live_lp"`
	TransitioningLP fxmath.Price `json:"transitioning_lp"`

	WithdrawOnlyLP     fxmath.Price `json:"withdraw_only_lp"`
	WithdrawOnlyAsset  fxmath.Price `json:"withdraw_only_asset"`
	WithdrawOnlyStable fxmath.Price `json:"withdraw_only_stable"`

	ActiveProposalID *store.ID `json:"active_proposal_id,omitempty"`
}

// New constructs an empty bucketed spot pool.
func New(id store.ID, feeBps uint32) *SpotPool {
	return &SpotPool{
		Versioned:          store.Versioned{ID: id, Version: 1},
		Pool:               amm.New(id, feeBps),
		LiveLP:             fxmath.NewPrice(0),
		TransitioningLP:    fxmath.NewPrice(0),
		WithdrawOnlyLP:     fxmath.NewPrice(0),
		WithdrawOnlyAsset:  fxmath.NewPrice(0),
		WithdrawOnlyStable: fxmath.NewPrice(0),
	}
}

// AddLiquidity mints LP into the LIVE bucket. Disabled while a proposal
// holds active_proposal_id, per spec.md §3's invariant that liquidity ops
// are disabled (but swaps remain enabled) during an active proposal.
func (s *SpotPool) AddLiquidity(assetIn, stableIn, minLP *uint256.Int) (*uint256.Int, error) {
	if s.ActiveProposalID != nil {
		return nil, ErrLiquidityOpsDisabled
	}
	lpOut, err := s.Pool.AddLiquidity(assetIn, stableIn, minLP)
	if err != nil {
		return nil, err
	}
	s.LiveLP = fxmath.FromUint256(fxmath.SaturatingAdd(s.LiveLP.Uint256(), lpOut))
	return lpOut, nil
}

// RemoveLiquidity burns LP directly from LIVE and returns the underlying
// assets. Only usable when no proposal is active; otherwise the user must
// route through MarkForWithdrawal instead.
func (s *SpotPool) RemoveLiquidity(lpIn, minAsset, minStable *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if s.ActiveProposalID != nil {
		return nil, nil, ErrLiquidityOpsDisabled
	}
	if lpIn.Cmp(s.LiveLP.Uint256()) > 0 {
		return nil, nil, ErrInsufficientLP
	}
	assetOut, stableOut, err := s.Pool.RemoveLiquidity(lpIn, minAsset, minStable)
	if err != nil {
		return nil, nil, err
	}
	s.LiveLP = fxmath.FromUint256(fxmath.SaturatingSub(s.LiveLP.Uint256(), lpIn))
	return assetOut, stableOut, nil
}

// MarkForWithdrawal moves lpIn from LIVE to TRANSITIONING. Used when a
// proposal is active and an outright removal is disabled; the LP is
// merged into WITHDRAW_ONLY at finalize time.
func (s *SpotPool) MarkForWithdrawal(lpIn *uint256.Int) error {
	if lpIn == nil || lpIn.IsZero() {
		return ErrZeroAmount
	}
	if lpIn.Cmp(s.LiveLP.Uint256()) > 0 {
		return ErrInsufficientLP
	}
	s.LiveLP = fxmath.FromUint256(fxmath.SaturatingSub(s.LiveLP.Uint256(), lpIn))
	s.TransitioningLP = fxmath.FromUint256(fxmath.SaturatingAdd(s.TransitioningLP.Uint256(), lpIn))
	return nil
}

// Swap always routes to the shared pool curve; LIVE and TRANSITIONING
// reserves both participate (spec.md §4.8: "operations are always routed
// to LIVE first" describes liquidity ops, swaps act on the pool as a
// whole since both buckets still earn/pay the swap curve).
func (s *SpotPool) Swap(dir amm.Direction, amountIn, minOut *uint256.Int) (*uint256.Int, error) {
	return s.Pool.Swap(dir, amountIn, minOut)
}

// SetActiveProposal records proposalID as the sole holder of the spot
// pool's lock, failing with ErrBusy if another proposal already holds it
// (spec.md §5: "only one may hold the spot pool's active_proposal_id at a
// time; others are rejected with SpotPoolBusy at advance_to_trading").
func (s *SpotPool) SetActiveProposal(proposalID store.ID) error {
	if s.ActiveProposalID != nil {
		return ErrBusy
	}
	id := proposalID
	s.ActiveProposalID = &id
	return nil
}

// ClearActiveProposal releases the lock, called by finalize/recombine.
func (s *SpotPool) ClearActiveProposal() {
	s.ActiveProposalID = nil
}

// RequireActiveProposal validates that proposalID currently holds the
// lock, used by the quantum LP manager before mutating bucket reserves.
func (s *SpotPool) RequireActiveProposal(proposalID store.ID) error {
	if s.ActiveProposalID == nil {
		return ErrNoActiveProposal
	}
	if *s.ActiveProposalID != proposalID {
		return ErrWrongProposal
	}
	return nil
}

// bucketLP returns the live LP counter for bucket (WithdrawOnly included
// for symmetry, though it never feeds ExtractFraction).
func (s *SpotPool) bucketLP(bucket Bucket) fxmath.Price {
	switch bucket {
	case Live:
		return s.LiveLP
	case Transitioning:
		return s.TransitioningLP
	default:
		return s.WithdrawOnlyLP
	}
}

func (s *SpotPool) setBucketLP(bucket Bucket, v fxmath.Price) {
	switch bucket {
	case Live:
		s.LiveLP = v
	case Transitioning:
		s.TransitioningLP = v
	default:
		s.WithdrawOnlyLP = v
	}
}

// ExtractFraction removes ratioPct percent of bucket's LP share from the
// underlying pool, returning the (asset, stable) withdrawn. Used by the
// quantum LP manager to fund conditional AMMs from LIVE and, per
// spec.md §7 Open Question (b), independently from TRANSITIONING at the
// same ratio.
func (s *SpotPool) ExtractFraction(bucket Bucket, ratioPct uint32) (*uint256.Int, *uint256.Int, error) {
	if bucket == WithdrawOnly {
		return nil, nil, ErrLiquidityOpsDisabled
	}
	lp := s.bucketLP(bucket)
	if lp.IsZero() {
		return uint256.NewInt(0), uint256.NewInt(0), nil
	}
	lpToExtract := fxmath.MulDiv(lp.Uint256(), uint256.NewInt(uint64(ratioPct)), uint256.NewInt(100))
	if lpToExtract.IsZero() {
		return uint256.NewInt(0), uint256.NewInt(0), nil
	}
	assetOut, stableOut, err := s.Pool.RemoveLiquidity(lpToExtract, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	s.setBucketLP(bucket, fxmath.FromUint256(fxmath.SaturatingSub(lp.Uint256(), lpToExtract)))
	return assetOut, stableOut, nil
}

// InjectFraction returns (assetIn, stableIn) worth of liquidity to bucket.
// For LIVE and TRANSITIONING this re-adds liquidity to the pool curve and
// credits the bucket's LP counter; for WITHDRAW_ONLY it credits the
// balance directly, since that bucket sits outside the swap curve.
func (s *SpotPool) InjectFraction(bucket Bucket, assetIn, stableIn *uint256.Int) error {
	if assetIn == nil || stableIn == nil || (assetIn.IsZero() && stableIn.IsZero()) {
		return nil
	}
	if bucket == WithdrawOnly {
		s.WithdrawOnlyAsset = fxmath.FromUint256(fxmath.SaturatingAdd(s.WithdrawOnlyAsset.Uint256(), assetIn))
		s.WithdrawOnlyStable = fxmath.FromUint256(fxmath.SaturatingAdd(s.WithdrawOnlyStable.Uint256(), stableIn))
		return nil
	}
	lpOut, err := s.Pool.AddLiquidity(assetIn, stableIn, nil)
	if err != nil {
		return err
	}
	lp := s.bucketLP(bucket)
	s.setBucketLP(bucket, fxmath.FromUint256(fxmath.SaturatingAdd(lp.Uint256(), lpOut)))
	return nil
}

// MergeTransitioningToWithdrawOnly drains the TRANSITIONING bucket's
// remaining reserves out of the pool curve entirely and credits them as a
// claimable WITHDRAW_ONLY balance, carrying the LP count over 1:1. Called
// once per proposal at finalize, after the quantum manager has already
// recombined any split-out TRANSITIONING liquidity.
func (s *SpotPool) MergeTransitioningToWithdrawOnly() error {
	lp := s.TransitioningLP
	if lp.IsZero() {
		return nil
	}
	assetOut, stableOut, err := s.Pool.RemoveLiquidity(lp.Uint256(), nil, nil)
	if err != nil {
		return err
	}
	s.TransitioningLP = fxmath.NewPrice(0)
	s.WithdrawOnlyLP = fxmath.FromUint256(fxmath.SaturatingAdd(s.WithdrawOnlyLP.Uint256(), lp.Uint256()))
	s.WithdrawOnlyAsset = fxmath.FromUint256(fxmath.SaturatingAdd(s.WithdrawOnlyAsset.Uint256(), assetOut))
	s.WithdrawOnlyStable = fxmath.FromUint256(fxmath.SaturatingAdd(s.WithdrawOnlyStable.Uint256(), stableOut))
	return nil
}

// ClaimWithdrawal burns lpIn from WITHDRAW_ONLY and returns the
// proportional (asset, stable) claim. LP marked via MarkForWithdrawal sits
// in TRANSITIONING, not WITHDRAW_ONLY, until the active proposal finalizes
// and MergeTransitioningToWithdrawOnly runs, so a claim attempted while a
// proposal still holds the lock is rejected with ErrLPLockedInProposal
// rather than the generic ErrInsufficientLP.
func (s *SpotPool) ClaimWithdrawal(lpIn *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if lpIn == nil || lpIn.IsZero() {
		return nil, nil, ErrZeroAmount
	}
	if lpIn.Cmp(s.WithdrawOnlyLP.Uint256()) > 0 {
		if s.ActiveProposalID != nil {
			return nil, nil, ErrLPLockedInProposal
		}
		return nil, nil, ErrInsufficientLP
	}
	assetOut := fxmath.MulDiv(lpIn, s.WithdrawOnlyAsset.Uint256(), s.WithdrawOnlyLP.Uint256())
	stableOut := fxmath.MulDiv(lpIn, s.WithdrawOnlyStable.Uint256(), s.WithdrawOnlyLP.Uint256())
	s.WithdrawOnlyLP = fxmath.FromUint256(fxmath.SaturatingSub(s.WithdrawOnlyLP.Uint256(), lpIn))
	s.WithdrawOnlyAsset = fxmath.FromUint256(fxmath.SaturatingSub(s.WithdrawOnlyAsset.Uint256(), assetOut))
	s.WithdrawOnlyStable = fxmath.FromUint256(fxmath.SaturatingSub(s.WithdrawOnlyStable.Uint256(), stableOut))
	return assetOut, stableOut, nil
}

// TotalLP returns the sum of all three buckets' LP: the underlying pool's
// LP supply minus the permanently locked amm.DustLock, plus whatever has
// already been merged into WITHDRAW_ONLY (WITHDRAW_ONLY LP is tracked
// independently of the pool once merged, since its backing has left the
// curve).
func (s *SpotPool) TotalLP() *uint256.Int {
	sum := fxmath.SaturatingAdd(s.LiveLP.Uint256(), s.TransitioningLP.Uint256())
	return fxmath.SaturatingAdd(sum, s.WithdrawOnlyLP.Uint256())
}
