// ════════════════════════════════════════════════════════════════════════════════════════════════
// Lock-Free Key/Value Table Service - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Lock-Free Key/Value Table Service
// Component: Main Entry Point & System Orchestration
//
// Description:
//   Process wiring with clean separation of concerns: load config, build the
//   table core and its hazard registry, start the admin/metrics surface,
//   then serve the data-plane line protocol until a signal requests shutdown.
//
// Architecture:
//   - Phase 1: Configuration load
//   - Phase 2: Core construction (hazard registry, table, metrics collector)
//   - Phase 3: Admin HTTP surface + periodic metrics persistence
//   - Phase 4: Data-plane TCP server, run until shutdown signal, then drain
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lfkv/adminapi"
	"lfkv/config"
	"lfkv/constants"
	"lfkv/control"
	"lfkv/debug"
	"lfkv/hazard"
	"lfkv/kvtable"
	"lfkv/metrics"
	"lfkv/server"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PHASE 1-2: CONFIGURATION AND CORE CONSTRUCTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// buildCore wires the hazard registry, table, and metrics collector from
// cfg. Panics on an invalid capacity/thread count — a configuration-time
// invariant violation, not a runtime condition the server should try to
// survive.
func buildCore(cfg config.Config) (*kvtable.Table, *hazard.Registry, *metrics.Collector) {
	if cfg.TableCapacity <= 0 {
		panic("table_capacity must be positive")
	}
	if cfg.MaxThreads <= 0 {
		panic("max_threads must be positive")
	}

	tbl := kvtable.NewTable(cfg.TableCapacity)
	reg := hazard.NewRegistry(cfg.MaxThreads)
	collector := metrics.NewCollector()

	tbl.SetTransitionObserver(collector)
	tbl.SetSpinObserver(collector)

	return tbl, reg, collector
}

// startOccupancySampler periodically samples the in-flight request gauge,
// mirroring original_source/src/bench_metrics.cpp's sampling_interval_ms
// loop, until shutdown.
func startOccupancySampler(collector *metrics.Collector) {
	control.Inflight.Add(1)
	go func() {
		defer control.Inflight.Done()
		interval := time.Duration(constants.ActiveSampleIntervalMS) * time.Millisecond
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if control.Stopped() {
				return
			}
			<-ticker.C
			collector.SampleOccupancy()
		}
	}()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PHASE 3: ADMIN SURFACE + METRICS PERSISTENCE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// startAdminAPI serves /stats and /healthz on cfg.AdminAddr until shutdown.
// Bind failures are logged, not fatal — a lost admin surface shouldn't take
// the data plane down with it.
func startAdminAPI(cfg config.Config, collector *metrics.Collector) {
	admin := &adminapi.Server{
		Collector: collector,
		TokenHash: cfg.AdminTokenHash,
		Healthy:   func() bool { return !control.Stopped() },
	}
	httpServer := &http.Server{Addr: cfg.AdminAddr, Handler: admin.Handler()}

	control.Inflight.Add(1)
	go func() {
		defer control.Inflight.Done()
		debug.DropMessage("admin", "listening on "+cfg.AdminAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			debug.DropError("admin.listen", err)
		}
	}()

	go func() {
		for !control.Stopped() {
			time.Sleep(200 * time.Millisecond)
		}
		httpServer.Close()
	}()
}

// startMetricsPersistence opens the SQLite-backed metrics store and flushes
// a snapshot on cfg.MetricsFlushInterval until shutdown. A store that fails
// to open is logged and skipped entirely — observability persistence is
// never allowed to block the data plane from starting.
func startMetricsPersistence(cfg config.Config, collector *metrics.Collector) {
	store, err := metrics.OpenStore(cfg.MetricsDBPath)
	if err != nil {
		debug.DropError("metrics.open", err)
		return
	}

	control.Inflight.Add(1)
	go func() {
		defer control.Inflight.Done()
		defer store.Close()

		interval := time.Duration(cfg.MetricsFlushInterval) * time.Millisecond
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if control.Stopped() {
				return
			}
			<-ticker.C
			if err := store.Flush(time.Now().UnixMilli(), collector.Snapshot()); err != nil {
				debug.DropError("metrics.flush", err)
			}
		}
	}()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PHASE 4: DATA-PLANE SERVER + SIGNAL-DRIVEN SHUTDOWN
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// setupSignalHandling stops accepting new work on SIGINT/SIGTERM, waits for
// every in-flight connection/admin goroutine to drain via control.Inflight,
// then exits the process.
func setupSignalHandling(dataServer *server.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		debug.DropMessage("signal", "received interrupt, shutting down")

		control.Shutdown()
		dataServer.Close()
		control.Inflight.Wait()

		debug.DropMessage("signal", "all subsystems drained")
		os.Exit(0)
	}()
}

func main() {
	cfg, err := config.Load(os.Getenv("LFKV_CONFIG_PATH"))
	if err != nil {
		debug.DropError("config.load", err)
		os.Exit(1)
	}

	tbl, reg, collector := buildCore(cfg)

	startAdminAPI(cfg, collector)
	startMetricsPersistence(cfg, collector)
	startOccupancySampler(collector)

	dataServer := &server.Server{
		Table:       tbl,
		Hazard:      reg,
		Collector:   collector,
		RetireBatch: cfg.RetireBatch,
		PinWorkers:  cfg.PinWorkers,
	}
	setupSignalHandling(dataServer)

	if err := dataServer.ListenAndServe(cfg.ListenAddr); err != nil {
		debug.DropError("server.listen", err)
		os.Exit(1)
	}
}
