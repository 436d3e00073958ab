package observability

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// facadeMetrics tracks request volume, error rate, and latency for every
// façade operation (CreateDAO, SwapSpot, Finalize, ...), mirroring the
// teacher's moduleMetrics shape for JSON-RPC module requests but keyed by
// façade operation name instead of RPC module/method.
type facadeMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// oracleMetrics tracks PCW and per-outcome TWAP oracle health.
type oracleMetrics struct {
	pcwMovementClamped *prometheus.CounterVec
	twapObservations   *prometheus.CounterVec
}

var (
	facadeMetricsOnce sync.Once
	facadeRegistry    *facadeMetrics

	oracleMetricsOnce sync.Once
	oracleRegistry    *oracleMetrics
)

// Facade returns the lazily-initialised façade operation metrics registry.
func Facade() *facadeMetrics {
	facadeMetricsOnce.Do(func() {
		facadeRegistry = &facadeMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "facade",
				Name:      "requests_total",
				Help:      "Total façade operation invocations segmented by operation and outcome.",
			}, []string{"operation", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "facade",
				Name:      "errors_total",
				Help:      "Total façade operation errors segmented by operation and reason.",
			}, []string{"operation", "reason"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "futarchy",
				Subsystem: "facade",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for façade operation handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"operation"}),
		}
		prometheus.MustRegister(
			facadeRegistry.requests,
			facadeRegistry.errors,
			facadeRegistry.latency,
		)
	})
	return facadeRegistry
}

// Observe records the outcome and latency of a façade operation. err is
// the operation's returned error, if any.
func (m *facadeMetrics) Observe(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		reason := strings.TrimSpace(err.Error())
		if reason == "" {
			reason = "unknown"
		}
		m.errors.WithLabelValues(op, reason).Inc()
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.latency.WithLabelValues(op).Observe(duration.Seconds())
}

// Oracle returns the lazily-initialised oracle health metrics registry.
func Oracle() *oracleMetrics {
	oracleMetricsOnce.Do(func() {
		oracleRegistry = &oracleMetrics{
			pcwMovementClamped: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "oracle",
				Name:      "pcw_movement_clamped_total",
				Help:      "Count of spot PCW oracle observations whose movement exceeded max_movement_ppm and was clamped.",
			}, []string{"dao"}),
			twapObservations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "futarchy",
				Subsystem: "oracle",
				Name:      "twap_observations_total",
				Help:      "Count of per-outcome TWAP oracle observations segmented by outcome index.",
			}, []string{"outcome"}),
		}
		prometheus.MustRegister(oracleRegistry.pcwMovementClamped, oracleRegistry.twapObservations)
	})
	return oracleRegistry
}

// RecordPCWClamped increments the PCW clamp counter for the given DAO.
func (m *oracleMetrics) RecordPCWClamped(dao string) {
	if m == nil {
		return
	}
	if dao = strings.TrimSpace(dao); dao == "" {
		dao = "unknown"
	}
	m.pcwMovementClamped.WithLabelValues(dao).Inc()
}

// RecordTWAPObservation increments the TWAP observation counter for an
// outcome index.
func (m *oracleMetrics) RecordTWAPObservation(outcome string) {
	if m == nil {
		return
	}
	if outcome = strings.TrimSpace(outcome); outcome == "" {
		outcome = "unknown"
	}
	m.twapObservations.WithLabelValues(outcome).Inc()
}
