// Command futarchyd runs the futarchy governance façade as a standalone
// process: it loads global/DAO configuration, opens the durable entity
// store, and exposes the façade to whatever transport a collaborator
// (RPC, CLI, batch job) wires on top. Grounded on the teacher's cmd/nhb
// main.go for its config-load / logger-setup / storage-open sequencing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"futarchy/action"
	"futarchy/futarchy"
	"futarchy/observability/logging"
	"futarchy/observability/otel"
	"futarchy/store"

	"futarchy/config"
)

func main() {
	configFile := flag.String("config", "./futarchyd.toml", "path to the global daemon configuration")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("FUTARCHY_ENV"))
	logger := logging.Setup("futarchyd", env)

	cfg, err := config.LoadGlobal(*configFile)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if shutdown := initTelemetry(cfg, env, logger); shutdown != nil {
		defer shutdown(context.Background())
	}

	kv, closeFn, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	dispatcher := action.NewDispatcher()
	registerTreasuryHandlers(dispatcher, logger)

	emitter := futarchy.MultiEmitter{futarchy.MetricsEmitter{}, futarchy.LogEmitter{Logger: logger}}
	f := futarchy.New(kv, dispatcher, emitter, cfg.SwapRateLimitPerSec, cfg.SwapRateLimitBurst)
	_ = f // the façade is held here for an eventual RPC/CLI front-end to bind to

	go serveMetrics(cfg.MetricsAddr, logger)

	logger.Info("futarchyd ready",
		"listen_address", cfg.ListenAddress,
		"data_dir", cfg.DataDir,
	)
}

// initTelemetry enables OTLP trace/metric export when cfg.OTELEndpoint is
// set; returns nil if telemetry is not configured, in which case there is
// nothing to shut down.
func initTelemetry(cfg *config.Global, env string, logger *slog.Logger) func(context.Context) error {
	if strings.TrimSpace(cfg.OTELEndpoint) == "" {
		return nil
	}
	shutdown, err := otel.Init(context.Background(), otel.Config{
		ServiceName: "futarchyd",
		Environment: env,
		Endpoint:    cfg.OTELEndpoint,
		Insecure:    true,
		Metrics:     true,
		Traces:      true,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		return nil
	}
	logger.Info("telemetry enabled", "endpoint", cfg.OTELEndpoint)
	return shutdown
}

// serveMetrics exposes the process's Prometheus collectors on /metrics.
// Runs until the process exits; failures are logged, not fatal, so a
// metrics scrape outage never takes down the daemon.
func serveMetrics(addr string, logger *slog.Logger) {
	if strings.TrimSpace(addr) == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("serving metrics", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}

// openStore opens the durable bbolt-backed KV at cfg.BoltPath, creating
// the data directory if needed.
func openStore(cfg *config.Global, logger *slog.Logger) (store.KV, func(), error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("futarchyd: create data dir: %w", err)
	}
	kv, err := store.OpenBoltKV(cfg.BoltPath)
	if err != nil {
		return nil, nil, fmt.Errorf("futarchyd: open bolt store: %w", err)
	}
	logger.Info("opened durable store", "path", cfg.BoltPath)
	return kv, func() { _ = kv.Close() }, nil
}

// registerTreasuryHandlers binds the known action_type tags to their
// treasury operations. A real deployment supplies these from whatever
// account/vault/stream system the DAO treasury runs; here they are
// logged no-ops so the daemon boots standalone without that collaborator.
func registerTreasuryHandlers(dispatcher *action.Dispatcher, logger *slog.Logger) {
	for _, actionType := range []string{action.TypeTransfer, action.TypeCreateStream, action.TypeUpdateTradingParams, action.TypeMemo} {
		actionType := actionType
		dispatcher.Register(actionType, func(payload []byte) error {
			logger.Info("executing staged action", "action_type", actionType, "payload_bytes", len(payload))
			return nil
		})
	}
}
