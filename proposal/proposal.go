// Package proposal implements the governance proposal state machine of
// spec.md §4.4: PREMARKET → REVIEW → TRADING → AWAITING_EXECUTION →
// FINALIZED, gated by DAO-configured timestamps, wiring together the
// escrow, spot pool, quantum LP manager, and per-outcome TWAP oracles.
//
// Grounded on the teacher's native/governance engine.go state-machine
// shape (guard-then-mutate transition functions keyed off an explicit
// state enum) generalized from proposal voting to futarchy market
// resolution.
package proposal

import (
	"futarchy/action"
	"futarchy/amm"
	"futarchy/config"
	"futarchy/escrow"
	"futarchy/fxmath"
	"futarchy/oracle"
	"futarchy/quantum"
	"futarchy/spotpool"
	"futarchy/store"
)

// State is a proposal's position in the spec.md §4.4 lifecycle.
type State int

const (
	StatePremarket State = iota
	StateReview
	StateTrading
	StateAwaitingExecution
	StateFinalized
)

// Proposal is the durable governance-proposal record. Outcome index 0 is
// always reserved as REJECT (spec.md §4.1).
type Proposal struct {
	store.Versioned

	DAOID        store.ID `json:"dao_id"`
	Title        string   `json:"title"`
	Introduction string   `json:"introduction"`
	Metadata     string   `json:"metadata"`
	Proposer     string   `json:"proposer"`
	CreatedAt    int64    `json:"created_at"`

	OutcomeCount    int                 `json:"outcome_count"`
	OutcomeMessages []string            `json:"outcome_messages"`
	Actions         []action.OutcomeList `json:"actions"`

	// SponsoredBias holds the optional per-outcome additive TWAP bias
	// (spec.md §4.8), resolved additive per SponsorshipBiasMode.
	SponsoredBias []fxmath.SignedU128 `json:"sponsored_bias"`

	State              State `json:"state"`
	ReviewStartedAt    int64 `json:"review_started_at"`
	TradingStartedAt   int64 `json:"trading_started_at"`
	TradingEndedAt     int64 `json:"trading_ended_at"`
	ExecutionDeadline  int64 `json:"execution_deadline"`
	ExecutionTimedOut  bool  `json:"execution_timed_out"`

	MarketWinner    *int `json:"market_winner,omitempty"`
	ExecutedOutcome *int `json:"executed_outcome,omitempty"`

	EscrowID   store.ID `json:"escrow_id"`
	SpotPoolID store.ID `json:"spot_pool_id"`
	PoolIDs    []store.ID `json:"pool_ids"`

	Split quantum.SplitRecord `json:"split"`
}

// New creates a proposal in PREMARKET. It collects no proposal fee, and
// the façade's CreateProposal does not debit one either.
func New(id, daoID store.ID, title, introduction, metadata, proposer string, outcomeCount int, outcomeMessages []string, now int64, maxOutcomes int) (*Proposal, error) {
	if outcomeCount < 2 {
		return nil, ErrTooFewOutcomes
	}
	if outcomeCount > maxOutcomes {
		return nil, ErrTooManyOutcomes
	}
	p := &Proposal{
		DAOID:           daoID,
		Title:           title,
		Introduction:    introduction,
		Metadata:        metadata,
		Proposer:        proposer,
		CreatedAt:       now,
		OutcomeCount:    outcomeCount,
		OutcomeMessages: outcomeMessages,
		Actions:         make([]action.OutcomeList, outcomeCount),
		SponsoredBias:   make([]fxmath.SignedU128, outcomeCount),
		State:           StatePremarket,
		PoolIDs:         make([]store.ID, outcomeCount),
	}
	p.ID = id
	return p, nil
}

func (p *Proposal) validOutcome(i int) bool {
	return i >= 0 && i < p.OutcomeCount
}

// StageAction appends an action to outcome i's list. Valid only while the
// proposal is in PREMARKET; outcome lists are locked on entry to REVIEW
// (spec.md §4.1 "Actions are mutable only while state == PREMARKET").
func (p *Proposal) StageAction(i int, spec action.Spec, maxActionsPerOutcome int) error {
	if p.State != StatePremarket {
		return ErrActionsLocked
	}
	if !p.validOutcome(i) {
		return ErrOutcomeOutOfRange
	}
	return p.Actions[i].Stage(spec, maxActionsPerOutcome)
}

// SetSponsoredBias attaches a sponsor's additive TWAP bias to outcome i
// (spec.md §4.8), checked during Finalize's winner computation.
func (p *Proposal) SetSponsoredBias(i int, bias fxmath.SignedU128) error {
	if !p.validOutcome(i) {
		return ErrOutcomeOutOfRange
	}
	p.SponsoredBias[i] = bias
	return nil
}

// AdvanceToReview moves PREMARKET → REVIEW, recording the id of the escrow
// the caller created and locking the outcome/action lists.
func (p *Proposal) AdvanceToReview(now int64, escrowID store.ID) error {
	if p.State != StatePremarket {
		return ErrInvalidState
	}
	p.EscrowID = escrowID
	p.State = StateReview
	p.ReviewStartedAt = now
	return nil
}

// AdvanceToTrading moves REVIEW → TRADING, requiring the review period to
// have elapsed, and performs the quantum split: spotPoolID/proposalID are
// the lock token spot.SetActiveProposal/quantum.Split check against.
func (p *Proposal) AdvanceToTrading(
	now int64,
	cfg *config.DAOConfig,
	spot *spotpool.SpotPool,
	esc *escrow.TokenEscrow,
	pools []*amm.Pool,
	poolIDs []store.ID,
	spotPoolID store.ID,
	proposalID store.ID,
) error {
	if p.State != StateReview {
		return ErrInvalidState
	}
	if now < p.ReviewStartedAt+cfg.ReviewPeriodMs {
		return ErrReviewPeriodActive
	}
	minLiquidity, err := cfg.MinConditionalLiquidityPrice()
	if err != nil {
		return err
	}
	if err := spot.SetActiveProposal(proposalID); err != nil {
		return err
	}
	split, err := quantum.Split(spot, esc, pools, proposalID, cfg.ConditionalLiquidityRatioPct, minLiquidity.Uint256())
	if err != nil {
		return err
	}
	p.Split = split
	p.SpotPoolID = spotPoolID
	p.PoolIDs = append([]store.ID(nil), poolIDs...)
	p.State = StateTrading
	p.TradingStartedAt = now
	return nil
}

// Finalize moves TRADING → AWAITING_EXECUTION: freezes per-outcome TWAPs,
// computes market_winner, and recombines the winning AMM's reserves back
// into the spot pool.
func (p *Proposal) Finalize(
	now int64,
	cfg *config.DAOConfig,
	spot *spotpool.SpotPool,
	esc *escrow.TokenEscrow,
	pools []*amm.Pool,
	twaps []*oracle.TWAPOracle,
	proposalID store.ID,
) error {
	if p.State != StateTrading {
		return ErrInvalidState
	}
	if now < p.TradingStartedAt+cfg.TradingPeriodMs {
		return ErrTradingPeriodActive
	}
	winThreshold, err := cfg.WinThreshold()
	if err != nil {
		return err
	}

	frozen := make([]fxmath.Price, p.OutcomeCount)
	for i := 0; i < p.OutcomeCount; i++ {
		frozen[i] = twaps[i].GetTWAP(now)
	}
	winner := computeWinner(frozen, p.SponsoredBias, winThreshold)

	if err := esc.Finalize(winner); err != nil {
		return err
	}
	if err := quantum.Recombine(spot, esc, pools, proposalID, winner, p.Split); err != nil {
		return err
	}

	p.TradingEndedAt = now
	p.MarketWinner = &winner
	p.ExecutionDeadline = now + cfg.ExecutionWindowMs
	p.State = StateAwaitingExecution
	return nil
}

// computeWinner implements spec.md §4.4's winner rule: argmax over
// sponsor-biased TWAPs with lowest-index tie-break, then the REJECT
// (outcome 0) override — outcome 0 wins unless the argmax candidate's
// biased TWAP strictly exceeds win_threshold.
func computeWinner(twaps []fxmath.Price, bias []fxmath.SignedU128, winThreshold fxmath.SignedU128) int {
	effective := make([]fxmath.SignedU128, len(twaps))
	for i := range twaps {
		effective[i] = fxmath.CompareBiased(twaps[i], bias[i])
	}
	best := 0
	for i := 1; i < len(effective); i++ {
		if effective[best].Less(effective[i]) {
			best = i
		}
	}
	if best != 0 && !winThreshold.Less(effective[best]) {
		best = 0
	}
	return best
}

// Execute moves AWAITING_EXECUTION → FINALIZED, running the winning
// outcome's action list against dispatcher. Terminal-state calls (the
// proposal is already FINALIZED) return ErrInvalidState rather than
// re-running execution.
func (p *Proposal) Execute(now int64, dispatcher *action.Dispatcher) error {
	if p.State != StateAwaitingExecution {
		return ErrInvalidState
	}
	winner := *p.MarketWinner

	if winner == 0 {
		p.ExecutedOutcome = &winner
		p.State = StateFinalized
		return nil
	}

	if now > p.ExecutionDeadline {
		p.ExecutionTimedOut = true
		p.ExecutedOutcome = nil
		p.State = StateFinalized
		return nil
	}

	nowFn := func() int64 { return now }
	report := action.Execute(p.Actions[winner], winner, dispatcher, nowFn, p.ExecutionDeadline)
	if report.TimedOut || report.Failed {
		p.ExecutionTimedOut = true
		p.ExecutedOutcome = nil
	} else {
		p.ExecutedOutcome = &winner
	}
	p.State = StateFinalized
	return nil
}
