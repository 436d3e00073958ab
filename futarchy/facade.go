// Package futarchy wires fxmath, store, amm, oracle, escrow, spotpool,
// quantum, noarb, config, proposal, and action into the 11 primary
// commands spec.md §6 exposes, persisting every entity through the
// id-addressed store package. Each command writes its entities with
// separate KV Puts; the writes of one command are not grouped into a
// transaction, so a command that fails after its first Put leaves the
// earlier writes in place.
//
// Grounded on the teacher's module-facade shape (a single entry type
// loading/saving typed records around a guarded mutation), generalized
// from account/token state to futarchy governance state.
package futarchy

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"golang.org/x/time/rate"

	"futarchy/action"
	"futarchy/amm"
	"futarchy/config"
	"futarchy/escrow"
	"futarchy/fxmath"
	"futarchy/native/common"
	"futarchy/noarb"
	"futarchy/observability/metrics"
	"futarchy/oracle"
	"futarchy/proposal"
	"futarchy/spotpool"
	"futarchy/store"
)

// OracleSet tracks the per-outcome TWAP oracle ids funded for a proposal's
// conditional AMMs, keyed by the proposal's own id.
type OracleSet struct {
	TWAPOracleIDs []store.ID `json:"twap_oracle_ids"`
}

// Facade is the single entry point for every futarchy command.
type Facade struct {
	kv store.KV

	daos        *store.Typed[DAO]
	proposals   *store.Typed[proposal.Proposal]
	spotPools   *store.Typed[spotpool.SpotPool]
	escrows     *store.Typed[escrow.TokenEscrow]
	pools       *store.Typed[amm.Pool]
	pcwOracles  *store.Typed[oracle.PCWOracle]
	twapOracles *store.Typed[oracle.TWAPOracle]
	oracleSets  *store.Typed[OracleSet]

	dispatcher *action.Dispatcher
	emitter    Emitter

	swapLimiter *rate.Limiter

	pauseMu       sync.RWMutex
	pausedModules map[string]bool
}

// IsPaused implements native/common.PauseView, letting Guard check
// whether an operator has paused a named module (e.g. "swap") ahead of
// an incident response, without plumbing a pause flag through every
// façade method signature.
func (f *Facade) IsPaused(module string) bool {
	f.pauseMu.RLock()
	defer f.pauseMu.RUnlock()
	return f.pausedModules[module]
}

// PauseModule halts all future operations guarded by module until
// ResumeModule is called.
func (f *Facade) PauseModule(module string) {
	f.pauseMu.Lock()
	defer f.pauseMu.Unlock()
	if f.pausedModules == nil {
		f.pausedModules = make(map[string]bool)
	}
	f.pausedModules[module] = true
}

// ResumeModule clears a prior PauseModule call.
func (f *Facade) ResumeModule(module string) {
	f.pauseMu.Lock()
	defer f.pauseMu.Unlock()
	delete(f.pausedModules, module)
}

// New constructs a Facade over kv, dispatching executed actions through
// dispatcher and broadcasting events through emitter.
func New(kv store.KV, dispatcher *action.Dispatcher, emitter Emitter, swapRatePerSec float64, swapBurst int) *Facade {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	return &Facade{
		kv:          kv,
		daos:        store.NewTyped[DAO](kv, "daos"),
		proposals:   store.NewTyped[proposal.Proposal](kv, "proposals"),
		spotPools:   store.NewTyped[spotpool.SpotPool](kv, "spot_pools"),
		escrows:     store.NewTyped[escrow.TokenEscrow](kv, "escrows"),
		pools:       store.NewTyped[amm.Pool](kv, "pools"),
		pcwOracles:  store.NewTyped[oracle.PCWOracle](kv, "pcw_oracles"),
		twapOracles: store.NewTyped[oracle.TWAPOracle](kv, "twap_oracles"),
		oracleSets:  store.NewTyped[OracleSet](kv, "oracle_sets"),
		dispatcher:    dispatcher,
		emitter:       emitter,
		swapLimiter:   rate.NewLimiter(rate.Limit(swapRatePerSec), swapBurst),
		pausedModules: make(map[string]bool),
	}
}

var (
	ErrNotFound        = fmt.Errorf("futarchy: entity not found")
	ErrSwapRateLimited = fmt.Errorf("futarchy: swap rejected by rate limiter")
	ErrBandViolation   = fmt.Errorf("futarchy: spot swap would leave the price outside the no-arbitrage band")
)

func (f *Facade) loadDAO(id store.ID) (*DAO, error) {
	d, ok, err := f.daos.Get(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (f *Facade) loadProposal(id store.ID) (*proposal.Proposal, error) {
	p, ok, err := f.proposals.Get(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// CreateDAO provisions a new DAO: a funded spot pool, its PCW oracle, and
// validated configuration.
func (f *Facade) CreateDAO(cfg config.DAOConfig, initialAsset, initialStable *uint256.Int, now int64) (store.ID, error) {
	if err := config.ValidateDAOConfig(&cfg); err != nil {
		return store.ID{}, err
	}

	spotID, err := f.spotPools.NextID()
	if err != nil {
		return store.ID{}, err
	}
	sp := spotpool.New(spotID, cfg.AMMFeeBps)
	if _, err := sp.AddLiquidity(initialAsset, initialStable, uint256.NewInt(0)); err != nil {
		return store.ID{}, err
	}
	if err := f.spotPools.Put(spotID, sp); err != nil {
		return store.ID{}, err
	}

	pcwID, err := f.pcwOracles.NextID()
	if err != nil {
		return store.ID{}, err
	}
	pcw := oracle.NewPCWOracle(cfg.PCWWindowSizeMs, cfg.PCWMaxMovementPpm, sp.Pool.Price(), now)
	if err := f.pcwOracles.Put(pcwID, pcw); err != nil {
		return store.ID{}, err
	}

	daoID, err := f.daos.NextID()
	if err != nil {
		return store.ID{}, err
	}
	dao := &DAO{Config: cfg, SpotPoolID: spotID, PCWOracleID: pcwID}
	dao.ID = daoID
	if err := f.daos.Put(daoID, dao); err != nil {
		return store.ID{}, err
	}

	f.emitter.Emit(DAOCreated{RequestID: uuid.NewString(), DAOID: daoID, SpotPoolID: spotID})
	return daoID, nil
}

// CreateProposal stages a new proposal in PREMARKET.
func (f *Facade) CreateProposal(daoID store.ID, title, introduction, metadata, proposer string, outcomeCount int, outcomeMessages []string, now int64) (store.ID, error) {
	if err := f.checkProposalQuota(proposer, now); err != nil {
		return store.ID{}, err
	}
	dao, err := f.loadDAO(daoID)
	if err != nil {
		return store.ID{}, err
	}
	id, err := f.proposals.NextID()
	if err != nil {
		return store.ID{}, err
	}
	p, err := proposal.New(id, daoID, title, introduction, metadata, proposer, outcomeCount, outcomeMessages, now, dao.Config.MaxOutcomes)
	if err != nil {
		return store.ID{}, err
	}
	if err := f.proposals.Put(id, p); err != nil {
		return store.ID{}, err
	}
	f.emitter.Emit(ProposalCreated{RequestID: uuid.NewString(), ProposalID: id, DAOID: daoID, OutcomeCount: outcomeCount})
	return id, nil
}

// StageAction appends an action to one outcome's PREMARKET action list.
func (f *Facade) StageAction(proposalID store.ID, outcomeIndex int, spec action.Spec) error {
	p, err := f.loadProposal(proposalID)
	if err != nil {
		return err
	}
	dao, err := f.loadDAO(p.DAOID)
	if err != nil {
		return err
	}
	if err := p.StageAction(outcomeIndex, spec, dao.Config.MaxActionsPerOutcome); err != nil {
		return err
	}
	return f.proposals.Put(proposalID, p)
}

// AdvanceToReview moves a proposal PREMARKET → REVIEW, creating its escrow.
func (f *Facade) AdvanceToReview(proposalID store.ID, now int64) error {
	p, err := f.loadProposal(proposalID)
	if err != nil {
		return err
	}
	escrowID, err := f.escrows.NextID()
	if err != nil {
		return err
	}
	esc := escrow.New(escrowID, proposalID, p.OutcomeCount)
	for i := 0; i < p.OutcomeCount; i++ {
		_ = esc.RegisterConditionalCoin(escrow.Asset, i, fmt.Sprintf("COND-A-%x-%d", proposalID[:4], i))
		_ = esc.RegisterConditionalCoin(escrow.Stable, i, fmt.Sprintf("COND-S-%x-%d", proposalID[:4], i))
	}
	if err := f.escrows.Put(escrowID, esc); err != nil {
		return err
	}
	if err := p.AdvanceToReview(now, escrowID); err != nil {
		return err
	}
	if err := f.proposals.Put(proposalID, p); err != nil {
		return err
	}
	f.emitter.Emit(AdvancedToReview{ProposalID: proposalID, EscrowID: escrowID})
	return nil
}

// AdvanceToTrading moves a proposal REVIEW → TRADING, funding one
// conditional AMM and TWAP oracle per outcome via the quantum LP manager.
func (f *Facade) AdvanceToTrading(proposalID store.ID, now int64) error {
	p, err := f.loadProposal(proposalID)
	if err != nil {
		return err
	}
	dao, err := f.loadDAO(p.DAOID)
	if err != nil {
		return err
	}
	sp, err := f.loadSpotPool(dao.SpotPoolID)
	if err != nil {
		return err
	}
	esc, ok, err := f.escrows.Get(p.EscrowID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	pools := make([]*amm.Pool, p.OutcomeCount)
	poolIDs := make([]store.ID, p.OutcomeCount)
	for i := range pools {
		id, err := f.pools.NextID()
		if err != nil {
			return err
		}
		pools[i] = amm.New(id, dao.Config.AMMFeeBps)
		poolIDs[i] = id
	}

	if err := p.AdvanceToTrading(now, &dao.Config, sp, esc, pools, poolIDs, dao.SpotPoolID, proposalID); err != nil {
		return err
	}

	oracleIDs := make([]store.ID, p.OutcomeCount)
	for i, pool := range pools {
		oid, err := f.twapOracles.NextID()
		if err != nil {
			return err
		}
		twap := oracle.NewTWAPOracle(pool.Price(), now, dao.Config.TWAPStartDelayMs, mustTWAPStep(&dao.Config))
		if err := f.twapOracles.Put(oid, twap); err != nil {
			return err
		}
		oracleIDs[i] = oid
		if err := f.pools.Put(poolIDs[i], pool); err != nil {
			return err
		}
	}
	if err := f.oracleSets.Put(proposalID, &OracleSet{TWAPOracleIDs: oracleIDs}); err != nil {
		return err
	}
	if err := f.spotPools.Put(dao.SpotPoolID, sp); err != nil {
		return err
	}
	if err := f.escrows.Put(p.EscrowID, esc); err != nil {
		return err
	}
	if err := f.proposals.Put(proposalID, p); err != nil {
		return err
	}

	f.emitter.Emit(AdvancedToTrading{ProposalID: proposalID, PoolIDs: poolIDs})
	return nil
}

func arbitrageDirectionLabel(dir noarb.ArbDirection) string {
	if dir == noarb.SpotToConditional {
		return "spot_to_conditional"
	}
	return "conditional_to_spot"
}

func mustTWAPStep(cfg *config.DAOConfig) fxmath.Price {
	step, err := cfg.TWAPStep()
	if err != nil {
		return fxmath.NewPrice(0)
	}
	return step
}

func (f *Facade) loadSpotPool(id store.ID) (*spotpool.SpotPool, error) {
	sp, ok, err := f.spotPools.Get(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return sp, nil
}

// SwapSpot trades against a DAO's spot pool, updating its PCW oracle. If a
// proposal is actively trading against this DAO, the resulting spot price
// must stay inside the no-arbitrage band (spec.md §4.6, testable property
// §8.5); a violation first tries a re-centering arbitrage trade and, only
// if none exists, reverts the swap.
func (f *Facade) SwapSpot(daoID store.ID, dir amm.Direction, amountIn, minOut *uint256.Int, now int64) (*uint256.Int, error) {
	if err := common.Guard(f, "swap"); err != nil {
		return nil, err
	}
	if !f.swapLimiter.Allow() {
		metrics.Futarchy().ObserveSwapRateLimited("spot")
		return nil, ErrSwapRateLimited
	}
	dao, err := f.loadDAO(daoID)
	if err != nil {
		return nil, err
	}
	sp, err := f.loadSpotPool(dao.SpotPoolID)
	if err != nil {
		return nil, err
	}
	out, err := sp.Swap(dir, amountIn, minOut)
	if err != nil {
		return nil, err
	}
	if err := f.enforceBand(dao, sp); err != nil {
		return nil, err
	}
	pcw, ok, err := f.pcwOracles.Get(dao.PCWOracleID)
	if err != nil {
		return nil, err
	}
	if ok {
		pcw.Observe(sp.Pool.Price(), now)
		if err := f.pcwOracles.Put(dao.PCWOracleID, pcw); err != nil {
			return nil, err
		}
	}
	if err := f.spotPools.Put(dao.SpotPoolID, sp); err != nil {
		return nil, err
	}
	metrics.Futarchy().ObserveSwap("spot", directionLabel(uint8(dir)))
	f.emitter.Emit(SwapExecuted{PoolID: dao.SpotPoolID, Direction: uint8(dir), AmountIn: amountIn.String(), AmountOut: out.String()})
	return out, nil
}

// SwapConditional trades against one outcome's conditional AMM during
// TRADING, updating its TWAP oracle and opportunistically running the
// no-arbitrage routine against the DAO's spot pool.
func (f *Facade) SwapConditional(proposalID store.ID, outcomeIndex int, dir amm.Direction, amountIn, minOut *uint256.Int, now int64) (*uint256.Int, error) {
	if err := common.Guard(f, "swap"); err != nil {
		return nil, err
	}
	if !f.swapLimiter.Allow() {
		metrics.Futarchy().ObserveSwapRateLimited("conditional")
		return nil, ErrSwapRateLimited
	}
	p, err := f.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if p.State != proposal.StateTrading {
		return nil, proposal.ErrInvalidState
	}
	dao, err := f.loadDAO(p.DAOID)
	if err != nil {
		return nil, err
	}
	poolID := p.PoolIDs[outcomeIndex]
	pool, ok, err := f.pools.Get(poolID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	out, err := pool.Swap(dir, amountIn, minOut)
	if err != nil {
		return nil, err
	}
	if err := f.pools.Put(poolID, pool); err != nil {
		return nil, err
	}

	oracleSet, ok, err := f.oracleSets.Get(proposalID)
	if err == nil && ok {
		oid := oracleSet.TWAPOracleIDs[outcomeIndex]
		twap, ok, err := f.twapOracles.Get(oid)
		if err == nil && ok {
			twap.WriteObservation(pool.Price(), now)
			_ = f.twapOracles.Put(oid, twap)
		}
	}
	metrics.Futarchy().ObserveSwap("conditional", directionLabel(uint8(dir)))
	f.emitter.Emit(SwapExecuted{PoolID: poolID, Direction: uint8(dir), AmountIn: amountIn.String(), AmountOut: out.String()})

	f.tryArbitrage(dao, p, proposalID, outcomeIndex, now)
	return out, nil
}

// enforceBand checks a just-swapped spot pool's price against the
// no-arbitrage band implied by its DAO's actively-trading proposal (if
// any), running one re-centering arbitrage trade if the band is violated
// and returning ErrBandViolation if no profitable re-centering trade
// exists. A no-op when no proposal is trading against this DAO, since the
// band is only defined relative to live conditional AMM prices.
func (f *Facade) enforceBand(dao *DAO, sp *spotpool.SpotPool) error {
	if sp.ActiveProposalID == nil {
		return nil
	}
	p, err := f.loadProposal(*sp.ActiveProposalID)
	if err != nil {
		return err
	}
	if p.State != proposal.StateTrading {
		return nil
	}
	esc, ok, err := f.escrows.Get(p.EscrowID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	pools := make([]*amm.Pool, len(p.PoolIDs))
	prices := make([]fxmath.Price, len(p.PoolIDs))
	feeBps := make([]uint32, len(p.PoolIDs))
	for i, id := range p.PoolIDs {
		pool, ok, err := f.pools.Get(id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		pools[i] = pool
		prices[i] = pool.Price()
		feeBps[i] = pool.FeeBps
	}

	floor, ceiling := noarb.Band(prices, dao.Config.AMMFeeBps, feeBps)
	if noarb.InBand(sp.Pool.Price(), floor, ceiling) {
		return nil
	}

	plan, found := noarb.FindOptimalArbitrage(noarb.SpotToConditional, sp.Pool, pools, uint256.NewInt(1_000_000), uint256.NewInt(1))
	if !found {
		plan, found = noarb.FindOptimalArbitrage(noarb.ConditionalToSpot, sp.Pool, pools, uint256.NewInt(1_000_000), uint256.NewInt(1))
	}
	if !found {
		return ErrBandViolation
	}

	pool := pools[plan.OutcomeIndex]
	if err := runArbitrageLeg(sp, pool, esc, plan.OutcomeIndex, plan); err != nil {
		return ErrBandViolation
	}

	freshPrices := make([]fxmath.Price, len(pools))
	for i, pl := range pools {
		freshPrices[i] = pl.Price()
	}
	floor, ceiling = noarb.Band(freshPrices, dao.Config.AMMFeeBps, feeBps)
	if !noarb.InBand(sp.Pool.Price(), floor, ceiling) {
		return ErrBandViolation
	}

	if err := f.pools.Put(p.PoolIDs[plan.OutcomeIndex], pool); err != nil {
		return err
	}
	if err := f.escrows.Put(p.EscrowID, esc); err != nil {
		return err
	}
	metrics.Futarchy().ObserveBandViolation(plan.OutcomeIndex)
	metrics.Futarchy().ObserveArbitrage(arbitrageDirectionLabel(plan.Direction), plan.Profit.Uint64())
	f.emitter.Emit(ArbitrageExecuted{
		ProposalID:   *sp.ActiveProposalID,
		OutcomeIndex: plan.OutcomeIndex,
		AmountIn:     plan.AmountIn.String(),
		Profit:       plan.Profit.String(),
	})
	return nil
}

// tryArbitrage checks the swapped outcome's pool against the spot pool for
// a profitable round trip and, if found, executes it for real, converting
// spot collateral to and from that one outcome's conditional token through
// escrow (runArbitrageLeg's DepositAndMint/BurnAndWithdraw, not a complete set).
func (f *Facade) tryArbitrage(dao *DAO, p *proposal.Proposal, proposalID store.ID, outcomeIndex int, now int64) {
	sp, err := f.loadSpotPool(dao.SpotPoolID)
	if err != nil {
		return
	}
	poolID := p.PoolIDs[outcomeIndex]
	pool, ok, err := f.pools.Get(poolID)
	if err != nil || !ok {
		return
	}
	esc, ok, err := f.escrows.Get(p.EscrowID)
	if err != nil || !ok {
		return
	}

	plan, found := noarb.FindOptimalArbitrage(noarb.SpotToConditional, sp.Pool, []*amm.Pool{pool}, uint256.NewInt(1_000_000), uint256.NewInt(1))
	if !found {
		plan, found = noarb.FindOptimalArbitrage(noarb.ConditionalToSpot, sp.Pool, []*amm.Pool{pool}, uint256.NewInt(1_000_000), uint256.NewInt(1))
	}
	if !found {
		return
	}
	metrics.Futarchy().ObserveBandViolation(outcomeIndex)

	if err := runArbitrageLeg(sp, pool, esc, outcomeIndex, plan); err != nil {
		return
	}

	_ = f.spotPools.Put(dao.SpotPoolID, sp)
	_ = f.pools.Put(poolID, pool)
	_ = f.escrows.Put(p.EscrowID, esc)
	metrics.Futarchy().ObserveArbitrage(arbitrageDirectionLabel(plan.Direction), plan.Profit.Uint64())
	f.emitter.Emit(ArbitrageExecuted{
		ProposalID:   proposalID,
		OutcomeIndex: outcomeIndex,
		AmountIn:     plan.AmountIn.String(),
		Profit:       plan.Profit.String(),
	})
}

// runArbitrageLeg executes one arbitrage plan's two legs against the real
// spot pool, the targeted outcome's conditional pool, and escrow. Per
// spec.md §4.6 a conditional pool's reserves are conditional tokens, not
// spot, so crossing between the two curves is never a direct swap: the
// spot-side amount is deposited into escrow and single-sided minted onto
// outcomeIndex (or burned and withdrawn back out) with DepositAndMint /
// BurnAndWithdraw, which check the complete-set backing invariant on every
// call, exactly as a real spot deposit/redemption would.
func runArbitrageLeg(sp *spotpool.SpotPool, pool *amm.Pool, esc *escrow.TokenEscrow, outcomeIndex int, plan noarb.Plan) error {
	switch plan.Direction {
	case noarb.SpotToConditional:
		// Buy asset cheaply on spot, mint it into a conditional asset
		// position on outcomeIndex, sell that into the conditional pool,
		// then burn the conditional stable proceeds back out to real spot
		// stable.
		spotAsset, err := sp.Pool.Swap(amm.StableToAsset, plan.AmountIn, uint256.NewInt(0))
		if err != nil {
			return err
		}
		if _, err := esc.DepositAndMint(escrow.Asset, outcomeIndex, spotAsset); err != nil {
			return err
		}
		condStable, err := pool.Swap(amm.AssetToStable, spotAsset, uint256.NewInt(0))
		if err != nil {
			return err
		}
		if err := esc.BurnAndWithdraw(escrow.Stable, outcomeIndex, condStable); err != nil {
			return err
		}
	case noarb.ConditionalToSpot:
		// Deposit real stable into escrow and mint it as conditional stable
		// on outcomeIndex, buy conditional asset with it on the conditional
		// pool, burn that back out to real spot asset, then sell it on the
		// spot pool for stable.
		if _, err := esc.DepositAndMint(escrow.Stable, outcomeIndex, plan.AmountIn); err != nil {
			return err
		}
		condAsset, err := pool.Swap(amm.StableToAsset, plan.AmountIn, uint256.NewInt(0))
		if err != nil {
			return err
		}
		if err := esc.BurnAndWithdraw(escrow.Asset, outcomeIndex, condAsset); err != nil {
			return err
		}
		if _, err := sp.Pool.Swap(amm.AssetToStable, condAsset, uint256.NewInt(0)); err != nil {
			return err
		}
	}
	return nil
}

// MintCompleteSet deposits x spot coins of the named side and mints x of
// every outcome's conditional supply.
func (f *Facade) MintCompleteSet(proposalID store.ID, side escrow.Side, x *uint256.Int) error {
	p, err := f.loadProposal(proposalID)
	if err != nil {
		return err
	}
	esc, ok, err := f.escrows.Get(p.EscrowID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := esc.MintCompleteSet(side, x); err != nil {
		return err
	}
	return f.escrows.Put(p.EscrowID, esc)
}

// BurnCompleteSet burns x of every outcome's conditional supply and
// returns x spot coins of the named side.
func (f *Facade) BurnCompleteSet(proposalID store.ID, side escrow.Side, x *uint256.Int) error {
	p, err := f.loadProposal(proposalID)
	if err != nil {
		return err
	}
	esc, ok, err := f.escrows.Get(p.EscrowID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := esc.BurnCompleteSetAndWithdraw(side, x); err != nil {
		return err
	}
	return f.escrows.Put(p.EscrowID, esc)
}

// Finalize moves a proposal TRADING → AWAITING_EXECUTION.
func (f *Facade) Finalize(proposalID store.ID, now int64) error {
	p, err := f.loadProposal(proposalID)
	if err != nil {
		return err
	}
	dao, err := f.loadDAO(p.DAOID)
	if err != nil {
		return err
	}
	sp, err := f.loadSpotPool(dao.SpotPoolID)
	if err != nil {
		return err
	}
	esc, ok, err := f.escrows.Get(p.EscrowID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	pools := make([]*amm.Pool, p.OutcomeCount)
	for i, id := range p.PoolIDs {
		pool, ok, err := f.pools.Get(id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		pools[i] = pool
	}
	oracleSet, ok, err := f.oracleSets.Get(proposalID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	twaps := make([]*oracle.TWAPOracle, p.OutcomeCount)
	for i, id := range oracleSet.TWAPOracleIDs {
		twap, ok, err := f.twapOracles.Get(id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		twaps[i] = twap
	}

	if err := p.Finalize(now, &dao.Config, sp, esc, pools, twaps, proposalID); err != nil {
		return err
	}

	for i, id := range p.PoolIDs {
		if err := f.pools.Put(id, pools[i]); err != nil {
			return err
		}
	}
	if err := f.spotPools.Put(dao.SpotPoolID, sp); err != nil {
		return err
	}
	if err := f.escrows.Put(p.EscrowID, esc); err != nil {
		return err
	}
	if err := f.proposals.Put(proposalID, p); err != nil {
		return err
	}

	f.emitter.Emit(ProposalMarketFinalized{ProposalID: proposalID, MarketWinner: *p.MarketWinner})
	f.emitter.Emit(ExecutionWindowStarted{ProposalID: proposalID, MarketWinner: *p.MarketWinner, ExecutionDeadline: p.ExecutionDeadline})
	return nil
}

// Execute moves a proposal AWAITING_EXECUTION → FINALIZED, running the
// winning outcome's action list.
func (f *Facade) Execute(proposalID store.ID, now int64) error {
	p, err := f.loadProposal(proposalID)
	if err != nil {
		return err
	}
	if err := p.Execute(now, f.dispatcher); err != nil {
		return err
	}
	if err := f.proposals.Put(proposalID, p); err != nil {
		return err
	}
	if p.ExecutionTimedOut {
		f.emitter.Emit(ExecutionTimedOut{ProposalID: proposalID})
	} else if p.ExecutedOutcome != nil {
		f.emitter.Emit(ProposalExecutionSucceeded{ProposalID: proposalID, ExecutedOutcome: *p.ExecutedOutcome})
	}
	return nil
}

// Redeem converts x winning-outcome conditional units of side into spot,
// valid only once the proposal is FINALIZED.
func (f *Facade) Redeem(proposalID store.ID, side escrow.Side, outcomeIndex int, x *uint256.Int) error {
	p, err := f.loadProposal(proposalID)
	if err != nil {
		return err
	}
	esc, ok, err := f.escrows.Get(p.EscrowID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := esc.RedeemWinning(side, outcomeIndex, x); err != nil {
		return err
	}
	return f.escrows.Put(p.EscrowID, esc)
}

// ClaimWithdrawal redeems lpIn of a DAO's spot pool WITHDRAW_ONLY bucket
// for its proportional asset/stable share.
func (f *Facade) ClaimWithdrawal(daoID store.ID, lpIn *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	dao, err := f.loadDAO(daoID)
	if err != nil {
		return nil, nil, err
	}
	sp, err := f.loadSpotPool(dao.SpotPoolID)
	if err != nil {
		return nil, nil, err
	}
	asset, stable, err := sp.ClaimWithdrawal(lpIn)
	if err != nil {
		return nil, nil, err
	}
	if err := f.spotPools.Put(dao.SpotPoolID, sp); err != nil {
		return nil, nil, err
	}
	return asset, stable, nil
}

// MarkForWithdrawal moves lpIn of a DAO's spot pool from LIVE into
// TRANSITIONING ahead of a claim (spec.md's S4 withdrawal queue scenario).
func (f *Facade) MarkForWithdrawal(daoID store.ID, lpIn *uint256.Int) error {
	dao, err := f.loadDAO(daoID)
	if err != nil {
		return err
	}
	sp, err := f.loadSpotPool(dao.SpotPoolID)
	if err != nil {
		return err
	}
	if err := sp.MarkForWithdrawal(lpIn); err != nil {
		return err
	}
	return f.spotPools.Put(dao.SpotPoolID, sp)
}
