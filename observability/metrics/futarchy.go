// Package metrics exposes the Prometheus collectors for the futarchy
// daemon's domain operations: swaps, arbitrage execution, no-arbitrage
// band enforcement, and proposal lifecycle transitions.
//
// Grounded on the teacher's observability/metrics/potso.go for its
// sync.Once-guarded lazy registry and per-metric accessor-method
// conventions, generalized from POTSO's heartbeat/evidence concerns to
// the futarchy façade's swap and proposal concerns.
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// FutarchyMetrics bundles the collectors tracking façade-level activity
// across spot and conditional markets.
type FutarchyMetrics struct {
	swapsTotal          *prometheus.CounterVec
	swapRateLimited      *prometheus.CounterVec
	arbitrageExecutions *prometheus.CounterVec
	arbitrageProfit     *prometheus.CounterVec
	bandViolations      *prometheus.CounterVec
	proposalTransitions *prometheus.CounterVec
	executionOutcomes   *prometheus.CounterVec
	activeProposals     prometheus.Gauge
}

var (
	futarchyMetricsOnce sync.Once
	futarchyRegistry    *FutarchyMetrics
)

// Futarchy returns the lazily-initialised metrics registry for the
// futarchy daemon.
func Futarchy() *FutarchyMetrics {
	futarchyMetricsOnce.Do(func() {
		futarchyRegistry = &FutarchyMetrics{
			swapsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "market",
				Name:      "swaps_total",
				Help:      "Count of executed swaps segmented by market kind and direction.",
			}, []string{"market", "direction"}),
			swapRateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "market",
				Name:      "swaps_rate_limited_total",
				Help:      "Count of swap requests rejected by the façade's rate limiter, segmented by market kind.",
			}, []string{"market"}),
			arbitrageExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "arbitrage",
				Name:      "executions_total",
				Help:      "Count of automatic spot/conditional arbitrage executions segmented by direction.",
			}, []string{"direction"}),
			arbitrageProfit: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "arbitrage",
				Name:      "profit_total",
				Help:      "Cumulative arbitrage profit in stable units segmented by direction.",
			}, []string{"direction"}),
			bandViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "noarb",
				Name:      "band_violations_total",
				Help:      "Count of detected no-arbitrage band violations segmented by outcome index.",
			}, []string{"outcome"}),
			proposalTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "proposal",
				Name:      "transitions_total",
				Help:      "Count of proposal state machine transitions segmented by target state.",
			}, []string{"state"}),
			executionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "proposal",
				Name:      "execution_outcomes_total",
				Help:      "Count of proposal action-list executions segmented by outcome (succeeded, timed_out, failed).",
			}, []string{"outcome"}),
			activeProposals: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "futarchy",
				Subsystem: "proposal",
				Name:      "active",
				Help:      "Current count of proposals in TRADING state.",
			}),
		}
		prometheus.MustRegister(
			futarchyRegistry.swapsTotal,
			futarchyRegistry.swapRateLimited,
			futarchyRegistry.arbitrageExecutions,
			futarchyRegistry.arbitrageProfit,
			futarchyRegistry.bandViolations,
			futarchyRegistry.proposalTransitions,
			futarchyRegistry.executionOutcomes,
			futarchyRegistry.activeProposals,
		)
	})
	return futarchyRegistry
}

// ObserveSwap records a completed swap against the named market
// ("spot" or "conditional") in the given direction.
func (m *FutarchyMetrics) ObserveSwap(market, direction string) {
	if m == nil {
		return
	}
	m.swapsTotal.WithLabelValues(market, direction).Inc()
}

// ObserveSwapRateLimited records a swap rejected by the rate limiter.
func (m *FutarchyMetrics) ObserveSwapRateLimited(market string) {
	if m == nil {
		return
	}
	m.swapRateLimited.WithLabelValues(market).Inc()
}

// ObserveArbitrage records an executed arbitrage leg pair and its profit.
func (m *FutarchyMetrics) ObserveArbitrage(direction string, profit uint64) {
	if m == nil {
		return
	}
	m.arbitrageExecutions.WithLabelValues(direction).Inc()
	m.arbitrageProfit.WithLabelValues(direction).Add(float64(profit))
}

// ObserveBandViolation records a detected no-arbitrage band violation for
// the given outcome index.
func (m *FutarchyMetrics) ObserveBandViolation(outcomeIndex int) {
	if m == nil {
		return
	}
	m.bandViolations.WithLabelValues(strconv.Itoa(outcomeIndex)).Inc()
}

// ObserveProposalTransition records a proposal state machine transition
// by its destination state name.
func (m *FutarchyMetrics) ObserveProposalTransition(state string) {
	if m == nil {
		return
	}
	m.proposalTransitions.WithLabelValues(state).Inc()
}

// ObserveExecutionOutcome records the terminal outcome of a proposal's
// action-list execution: "succeeded", "timed_out", or "failed".
func (m *FutarchyMetrics) ObserveExecutionOutcome(outcome string) {
	if m == nil {
		return
	}
	m.executionOutcomes.WithLabelValues(outcome).Inc()
}

// SetActiveProposals sets the current count of proposals in TRADING state.
func (m *FutarchyMetrics) SetActiveProposals(n int) {
	if m == nil {
		return
	}
	m.activeProposals.Set(float64(n))
}
