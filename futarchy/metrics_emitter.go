package futarchy

import (
	"futarchy/observability"
	"futarchy/observability/metrics"
)

// MetricsEmitter records every façade event's type into
// observability/events.go's counter and drives proposal lifecycle/
// execution-outcome metrics from the events that carry that
// information. Swap and arbitrage metrics are recorded directly at
// their call sites in facade.go, where the real amounts and profit are
// in scope; this emitter only covers what the Event structs expose.
// Safe to chain alongside a transport-facing emitter via MultiEmitter.
// Never returns an error: a metrics recording failure must never block
// a façade mutation that already committed.
type MetricsEmitter struct{}

func (MetricsEmitter) Emit(ev Event) {
	observability.Events().RecordEvent(ev.EventType())

	m := metrics.Futarchy()
	switch ev.(type) {
	case AdvancedToReview:
		m.ObserveProposalTransition("REVIEW")
	case AdvancedToTrading:
		m.ObserveProposalTransition("TRADING")
	case ProposalMarketFinalized:
		m.ObserveProposalTransition("AWAITING_EXECUTION")
	case ProposalExecutionSucceeded:
		m.ObserveProposalTransition("FINALIZED")
		m.ObserveExecutionOutcome("succeeded")
	case ExecutionTimedOut:
		m.ObserveProposalTransition("FINALIZED")
		m.ObserveExecutionOutcome("timed_out")
	}
}

func directionLabel(dir uint8) string {
	if dir == 0 {
		return "asset_to_stable"
	}
	return "stable_to_asset"
}

// MultiEmitter fans a single event out to every wrapped Emitter, in order.
// Used to chain MetricsEmitter alongside a transport-facing emitter
// (RPC subscription feed, log sink) without the façade itself knowing
// how many subscribers exist.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(ev Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(ev)
		}
	}
}
