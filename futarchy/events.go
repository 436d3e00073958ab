package futarchy

import (
	"strconv"

	"futarchy/core/events"
	"futarchy/core/types"
	"futarchy/store"
)

// Event, Emitter, and NoopEmitter are the core/events interfaces: the
// façade stays decoupled from whatever transport (RPC, indexer, log
// sink) eventually consumes these by depending only on this interface
// pair, exactly as the teacher's chain modules do.
type Event = events.Event
type Emitter = events.Emitter
type NoopEmitter = events.NoopEmitter

// typesEventer is implemented by every façade event so LogEmitter can
// flatten it to the teacher's attribute-map core/types.Event shape
// (the same conversion native/governance's engine.go does for its own
// proposal events), without every transport needing a type switch over
// every concrete event struct.
type typesEventer interface {
	TypesEvent() *types.Event
}

type DAOCreated struct {
	RequestID  string   `json:"request_id"`
	DAOID      store.ID `json:"dao_id"`
	SpotPoolID store.ID `json:"spot_pool_id"`
}

func (DAOCreated) EventType() string { return "DAOCreated" }

func (e DAOCreated) TypesEvent() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"request_id":   e.RequestID,
		"dao_id":       e.DAOID.String(),
		"spot_pool_id": e.SpotPoolID.String(),
	}}
}

type ProposalCreated struct {
	RequestID    string   `json:"request_id"`
	ProposalID   store.ID `json:"proposal_id"`
	DAOID        store.ID `json:"dao_id"`
	OutcomeCount int      `json:"outcome_count"`
}

func (ProposalCreated) EventType() string { return "ProposalCreated" }

func (e ProposalCreated) TypesEvent() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"request_id":    e.RequestID,
		"proposal_id":   e.ProposalID.String(),
		"dao_id":        e.DAOID.String(),
		"outcome_count": strconv.Itoa(e.OutcomeCount),
	}}
}

type AdvancedToReview struct {
	ProposalID store.ID `json:"proposal_id"`
	EscrowID   store.ID `json:"escrow_id"`
}

func (AdvancedToReview) EventType() string { return "AdvancedToReview" }

func (e AdvancedToReview) TypesEvent() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"proposal_id": e.ProposalID.String(),
		"escrow_id":   e.EscrowID.String(),
	}}
}

type AdvancedToTrading struct {
	ProposalID store.ID   `json:"proposal_id"`
	PoolIDs    []store.ID `json:"pool_ids"`
}

func (AdvancedToTrading) EventType() string { return "AdvancedToTrading" }

func (e AdvancedToTrading) TypesEvent() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"proposal_id": e.ProposalID.String(),
		"pool_count":  strconv.Itoa(len(e.PoolIDs)),
	}}
}

type SwapExecuted struct {
	PoolID    store.ID `json:"pool_id"`
	Direction uint8    `json:"direction"`
	AmountIn  string   `json:"amount_in"`
	AmountOut string   `json:"amount_out"`
}

func (SwapExecuted) EventType() string { return "SwapExecuted" }

func (e SwapExecuted) TypesEvent() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"pool_id":    e.PoolID.String(),
		"direction":  strconv.Itoa(int(e.Direction)),
		"amount_in":  e.AmountIn,
		"amount_out": e.AmountOut,
	}}
}

type ArbitrageExecuted struct {
	ProposalID   store.ID `json:"proposal_id"`
	OutcomeIndex int      `json:"outcome_index"`
	AmountIn     string   `json:"amount_in"`
	Profit       string   `json:"profit"`
}

func (ArbitrageExecuted) EventType() string { return "ArbitrageExecuted" }

func (e ArbitrageExecuted) TypesEvent() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"proposal_id":   e.ProposalID.String(),
		"outcome_index": strconv.Itoa(e.OutcomeIndex),
		"amount_in":     e.AmountIn,
		"profit":        e.Profit,
	}}
}

type ExecutionWindowStarted struct {
	ProposalID        store.ID `json:"proposal_id"`
	MarketWinner      int      `json:"market_winner"`
	ExecutionDeadline int64    `json:"execution_deadline"`
}

func (ExecutionWindowStarted) EventType() string { return "ExecutionWindowStarted" }

func (e ExecutionWindowStarted) TypesEvent() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"proposal_id":        e.ProposalID.String(),
		"market_winner":      strconv.Itoa(e.MarketWinner),
		"execution_deadline": strconv.FormatInt(e.ExecutionDeadline, 10),
	}}
}

type ProposalExecutionSucceeded struct {
	ProposalID      store.ID `json:"proposal_id"`
	ExecutedOutcome int      `json:"executed_outcome"`
}

func (ProposalExecutionSucceeded) EventType() string { return "ProposalExecutionSucceeded" }

func (e ProposalExecutionSucceeded) TypesEvent() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"proposal_id":      e.ProposalID.String(),
		"executed_outcome": strconv.Itoa(e.ExecutedOutcome),
	}}
}

type ExecutionTimedOut struct {
	ProposalID store.ID `json:"proposal_id"`
}

func (ExecutionTimedOut) EventType() string { return "ExecutionTimedOut" }

func (e ExecutionTimedOut) TypesEvent() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"proposal_id": e.ProposalID.String(),
	}}
}

type ProposalMarketFinalized struct {
	ProposalID   store.ID `json:"proposal_id"`
	MarketWinner int      `json:"market_winner"`
}

func (ProposalMarketFinalized) EventType() string { return "ProposalMarketFinalized" }

func (e ProposalMarketFinalized) TypesEvent() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"proposal_id":   e.ProposalID.String(),
		"market_winner": strconv.Itoa(e.MarketWinner),
	}}
}
