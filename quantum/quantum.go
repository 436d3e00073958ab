// Package quantum implements the quantum LP manager described in
// spec.md §4.7: splitting a fraction of spot liquidity into per-outcome
// conditional AMMs when a proposal enters TRADING, and recombining the
// winning outcome's reserves back into spot at finalize.
//
// Split and Recombine change the spot pool, escrow and pools they are given
// step by step; some checks (such as Split's minimum-liquidity check) run
// after earlier steps have already changed those values, so on an error
// return the arguments may be partly modified.
package quantum

import (
	"github.com/holiman/uint256"

	"futarchy/amm"
	"futarchy/escrow"
	"futarchy/fxmath"
	"futarchy/spotpool"
	"futarchy/store"
)

// SplitRecord tracks how much of a proposal's conditional funding came
// from the spot pool's LIVE bucket versus its TRANSITIONING bucket, so
// Recombine can route each outcome's reclaimed reserves back to its
// origin (spec.md §7 Open Question (b)).
type SplitRecord struct {
	AssetFromLive          fxmath.Price `json:"asset_from_live"`
	StableFromLive         fxmath.Price `json:"stable_from_live"`
	AssetFromTransitioning fxmath.Price `json:"asset_from_transitioning"`
	StableFromTransitioning fxmath.Price `json:"stable_from_transitioning"`
}

// totalAsset and totalStable are the full (A, S) amounts minted as
// complete sets and used to fund every outcome's conditional AMM.
func (r SplitRecord) totalAsset() *uint256.Int {
	return fxmath.SaturatingAdd(r.AssetFromLive.Uint256(), r.AssetFromTransitioning.Uint256())
}

func (r SplitRecord) totalStable() *uint256.Int {
	return fxmath.SaturatingAdd(r.StableFromLive.Uint256(), r.StableFromTransitioning.Uint256())
}

const (
	minRatioPct = 10
	maxRatioPct = 90
)

// Split performs the quantum split for a newly-trading proposal: it pulls
// ratioPct percent of both the LIVE and TRANSITIONING buckets' reserves
// out of the spot pool, mints a matching complete set in escrow, and
// funds every outcome's conditional AMM with the resulting (A, S) pair.
func Split(
	spot *spotpool.SpotPool,
	esc *escrow.TokenEscrow,
	pools []*amm.Pool,
	proposalID store.ID,
	ratioPct uint32,
	minConditionalLiquidity *uint256.Int,
) (SplitRecord, error) {
	if ratioPct < minRatioPct || ratioPct > maxRatioPct {
		return SplitRecord{}, ErrInvalidRatio
	}
	if err := spot.RequireActiveProposal(proposalID); err != nil {
		return SplitRecord{}, err
	}

	assetLive, stableLive, err := spot.ExtractFraction(spotpool.Live, ratioPct)
	if err != nil {
		return SplitRecord{}, err
	}
	assetTrans, stableTrans, err := spot.ExtractFraction(spotpool.Transitioning, ratioPct)
	if err != nil {
		return SplitRecord{}, err
	}

	totalAsset := fxmath.SaturatingAdd(assetLive, assetTrans)
	totalStable := fxmath.SaturatingAdd(stableLive, stableTrans)

	if minConditionalLiquidity != nil && !minConditionalLiquidity.IsZero() {
		if totalAsset.Cmp(minConditionalLiquidity) < 0 || totalStable.Cmp(minConditionalLiquidity) < 0 {
			return SplitRecord{}, ErrBelowMinLiquidity
		}
	}

	if err := esc.MintCompleteSet(escrow.Asset, totalAsset); err != nil {
		return SplitRecord{}, err
	}
	if err := esc.MintCompleteSet(escrow.Stable, totalStable); err != nil {
		return SplitRecord{}, err
	}

	for _, pool := range pools {
		if _, err := pool.AddLiquidity(totalAsset, totalStable, nil); err != nil {
			return SplitRecord{}, err
		}
	}

	return SplitRecord{
		AssetFromLive:           fxmath.FromUint256(assetLive),
		StableFromLive:          fxmath.FromUint256(stableLive),
		AssetFromTransitioning:  fxmath.FromUint256(assetTrans),
		StableFromTransitioning: fxmath.FromUint256(stableTrans),
	}, nil
}

// Recombine drains the winning outcome's AMM entirely and burns as much of
// the reclaimed amount as a complete set against escrow (which
// simultaneously retires every losing outcome's matching supply, per
// spec.md §4.7: "Losing AMMs' reserves are retained inside the escrow as
// permanently locked backing for un-redeemable losing-side conditional
// supply"). Trading on the winning outcome's own curve can leave one leg's
// reclaimed reserve above what escrow ever recorded as backing for it (the
// other leg having fallen below by the same curve-conserved amount), so
// the burn is capped at the minimum common complete-set size
// (esc.MinCompleteSetSupply) and the unbacked remainder is routed straight
// to WITHDRAW_ONLY rather than attempted against escrow, which would
// reject it with ErrInsufficientSupply. The backed portion still splits
// between LIVE and WITHDRAW_ONLY in proportion to the recorded split
// origin; the unbacked remainder has no recorded origin, so it goes
// entirely to WITHDRAW_ONLY.
func Recombine(spot *spotpool.SpotPool, esc *escrow.TokenEscrow, pools []*amm.Pool, proposalID store.ID, winner int, split SplitRecord) error {
	if err := spot.RequireActiveProposal(proposalID); err != nil {
		return err
	}
	winnerPool := pools[winner]
	lpSupply := winnerPool.LPSupply.Uint256()

	var assetReclaimed, stableReclaimed *uint256.Int
	if lpSupply.IsZero() {
		assetReclaimed, stableReclaimed = uint256.NewInt(0), uint256.NewInt(0)
	} else {
		var err error
		assetReclaimed, stableReclaimed, err = winnerPool.RemoveLiquidity(lpSupply, nil, nil)
		if err != nil {
			return err
		}
	}

	assetBurn := capToSupply(assetReclaimed, esc.MinCompleteSetSupply(escrow.Asset))
	stableBurn := capToSupply(stableReclaimed, esc.MinCompleteSetSupply(escrow.Stable))

	if assetBurn.Sign() > 0 {
		if err := esc.BurnCompleteSetAndWithdraw(escrow.Asset, assetBurn); err != nil {
			return err
		}
	}
	if stableBurn.Sign() > 0 {
		if err := esc.BurnCompleteSetAndWithdraw(escrow.Stable, stableBurn); err != nil {
			return err
		}
	}

	assetUnbacked := fxmath.SaturatingSub(assetReclaimed, assetBurn)
	stableUnbacked := fxmath.SaturatingSub(stableReclaimed, stableBurn)

	liveAsset, withdrawAsset := splitByOrigin(assetBurn, split.AssetFromLive.Uint256(), split.totalAsset())
	liveStable, withdrawStable := splitByOrigin(stableBurn, split.StableFromLive.Uint256(), split.totalStable())
	withdrawAsset = fxmath.SaturatingAdd(withdrawAsset, assetUnbacked)
	withdrawStable = fxmath.SaturatingAdd(withdrawStable, stableUnbacked)

	if err := spot.InjectFraction(spotpool.Live, liveAsset, liveStable); err != nil {
		return err
	}
	if err := spot.InjectFraction(spotpool.WithdrawOnly, withdrawAsset, withdrawStable); err != nil {
		return err
	}

	if err := spot.MergeTransitioningToWithdrawOnly(); err != nil {
		return err
	}
	spot.ClearActiveProposal()
	return nil
}

// capToSupply returns the lesser of amount and cap.
func capToSupply(amount, cap *uint256.Int) *uint256.Int {
	if amount.Cmp(cap) > 0 {
		return new(uint256.Int).Set(cap)
	}
	return new(uint256.Int).Set(amount)
}

// splitByOrigin divides amount between a LIVE-origin share and a
// TRANSITIONING-origin share, in proportion to liveOrigin/totalOrigin.
func splitByOrigin(amount, liveOrigin, totalOrigin *uint256.Int) (*uint256.Int, *uint256.Int) {
	if totalOrigin.IsZero() || amount.IsZero() {
		return uint256.NewInt(0), uint256.NewInt(0)
	}
	liveShare := fxmath.MulDiv(amount, liveOrigin, totalOrigin)
	withdrawShare := fxmath.SaturatingSub(amount, liveShare)
	return liveShare, withdrawShare
}
