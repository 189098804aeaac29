// kernel-validator's primary binary: it loads configuration, opens the
// epoch-history store (and, if configured, a Postgres audit mirror),
// serves the kernel's HTTP API, and shuts down gracefully on
// SIGINT/SIGTERM. Overall shape — flag parsing, config load, component
// wiring with explicit degraded-mode fallbacks, a single http.Server,
// signal.Notify-driven graceful shutdown — follows the teacher's
// original root main.go. The secondary CLI tool, kernelctl, lives under
// cmd/ the same way the teacher keeps bls-zk-setup there.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/certen/kernel-validator/internal/api"
	"github.com/certen/kernel-validator/internal/config"
	"github.com/certen/kernel-validator/internal/store"
	"github.com/certen/kernel-validator/internal/telemetry"
)

type staticKernelHash struct{ hash [32]byte }

func (s staticKernelHash) KernelHash() [32]byte { return s.hash }

func main() {
	logger := telemetry.NewLogger("kernelnode")

	var (
		configPath  = flag.String("config", "", "path to a YAML/JSON config file (optional)")
		validatorID = flag.String("validator-id", "", "overrides the configured validator_id")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}
	if *validatorID != "" {
		cfg.ValidatorID = *validatorID
	}
	logger.Printf("starting kernelnode (validator_id=%s)", cfg.ValidatorID)

	kernelHashBytes, err := hex.DecodeString(cfg.KernelHashHex)
	if err != nil || len(kernelHashBytes) != 32 {
		logger.Fatalf("invalid kernel_hash_hex: %v", err)
	}
	var kernelHash [32]byte
	copy(kernelHash[:], kernelHashBytes)

	db, err := store.OpenDB(cfg.DBBackend, cfg.DataDir)
	if err != nil {
		logger.Fatalf("failed to open epoch store at %s: %v", cfg.DataDir, err)
	}
	epochStore := store.NewEpochStore(store.NewKVAdapter(db))

	var auditStore *store.AuditStore
	if cfg.PostgresURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		auditStore, err = store.NewAuditStore(ctx, store.AuditStoreConfig{
			URL:             cfg.PostgresURL,
			MaxOpenConns:    cfg.PostgresMaxOpenConn,
			MaxIdleConns:    cfg.PostgresMaxIdleConn,
			ConnMaxLifetime: cfg.PostgresMaxLifetime,
		}, store.WithLogger(telemetry.NewLogger("AuditStore")))
		cancel()
		if err != nil {
			if cfg.PostgresRequired {
				logger.Fatalf("postgres connection required but failed: %v", err)
			}
			logger.Printf("postgres connection failed, continuing without audit mirror: %v", err)
			auditStore = nil
		} else {
			migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := auditStore.MigrateUp(migrateCtx); err != nil {
				logger.Printf("audit store migration failed: %v", err)
			}
			migrateCancel()
		}
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	handlers := api.NewHandlers(api.Config{
		Store:      epochStore,
		AuditStore: auditStore,
		KernelHash: staticKernelHash{hash: kernelHash},
		Metrics:    metrics,
		Logger:     telemetry.NewLogger("API"),
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handlers.Mux(),
	}

	go func() {
		logger.Printf("HTTP API listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("shutting down kernelnode")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var shutdownErr error
	shutdownErr = multierr.Append(shutdownErr, httpServer.Shutdown(shutdownCtx))
	if auditStore != nil {
		shutdownErr = multierr.Append(shutdownErr, auditStore.Close())
	}
	shutdownErr = multierr.Append(shutdownErr, db.Close())
	if shutdownErr != nil {
		logger.Printf("errors during shutdown: %v", shutdownErr)
	}
	logger.Println("kernelnode stopped")
}
