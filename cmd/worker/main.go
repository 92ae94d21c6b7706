// Package main is the entry point for the tillbook background worker. It
// runs the periodic housekeeping jobs: the balance verification sweep, the
// returns register rebuild, and expired token and idempotency key cleanup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tillbook/internal/domain/reports"
	"tillbook/internal/infrastructure/storage/postgres"
	"tillbook/internal/infrastructure/storage/postgres/auth_repo"
	"tillbook/internal/infrastructure/storage/postgres/register_repo"
	"tillbook/internal/infrastructure/storage/postgres/report_repo"
	"tillbook/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting tillbook worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	worker := NewWorker(pool, log, WorkerConfig{
		SweepInterval:   getEnvDuration("BALANCE_SWEEP_INTERVAL", 15*time.Minute),
		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", 1*time.Hour),
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// WorkerConfig holds the job intervals.
type WorkerConfig struct {
	SweepInterval   time.Duration
	CleanupInterval time.Duration
}

// Worker runs the periodic ledger housekeeping jobs.
type Worker struct {
	log *logger.Logger
	cfg WorkerConfig

	reports     *reports.Service
	returnsRepo *register_repo.ReturnsRepo
	tokenRepo   *auth_repo.TokenRepo
	idempotency *postgres.IdempotencyStore
}

func NewWorker(pool *postgres.Pool, log *logger.Logger, cfg WorkerConfig) *Worker {
	txManager := postgres.NewTxManager(pool)

	return &Worker{
		log:         log.WithComponent("worker"),
		cfg:         cfg,
		reports:     reports.NewService(report_repo.NewReportRepo(txManager)),
		returnsRepo: register_repo.NewReturnsRepo(txManager),
		tokenRepo:   auth_repo.NewTokenRepo(txManager),
		idempotency: postgres.NewIdempotencyStore(pool, txManager, 10*time.Minute),
	}
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	sweepTicker := time.NewTicker(w.cfg.SweepInterval)
	defer sweepTicker.Stop()

	cleanupTicker := time.NewTicker(w.cfg.CleanupInterval)
	defer cleanupTicker.Stop()

	// First sweep shortly after start so a fresh deploy surfaces
	// mismatches without waiting a full interval.
	initial := time.After(30 * time.Second)

	for {
		select {
		case <-ctx.Done():
			return
		case <-initial:
			w.runBalanceSweep(ctx)
		case <-sweepTicker.C:
			w.runBalanceSweep(ctx)
		case <-cleanupTicker.C:
			w.rebuildReturnBalances(ctx)
			w.cleanupTokens(ctx)
			w.cleanupIdempotency(ctx)
		}
	}
}

// runBalanceSweep recomputes every customer's balance from the ledger and
// logs the mismatches. Stored balances are never corrected here; the log is
// the trail for the back office to investigate.
func (w *Worker) runBalanceSweep(ctx context.Context) {
	report, err := w.reports.GetBalanceVerification(ctx, reports.BalanceVerificationFilter{
		OnlyMismatched: true,
		Limit:          1000,
	})
	if err != nil {
		w.log.Errorw("balance sweep failed", "error", err)
		return
	}

	if report.Mismatches == 0 {
		w.log.Debugw("balance sweep clean", "checked", report.TotalRows)
		return
	}

	for _, row := range report.Rows {
		w.log.Warnw("balance mismatch",
			"customer_id", row.CustomerID.String(),
			"customer_code", row.CustomerCode,
			"stored", row.Stored.String(),
			"recomputed", row.Recomputed.String(),
			"delta", row.Delta.String(),
		)
	}
	w.log.Warnw("balance sweep found mismatches", "count", report.Mismatches)
}

// rebuildReturnBalances rebuilds the returned-quantity balance table from the
// movement log, repairing any drift left by crashes mid-commit.
func (w *Worker) rebuildReturnBalances(ctx context.Context) {
	if err := w.returnsRepo.RecalculateBalances(ctx, nil); err != nil {
		w.log.Errorw("returns balance rebuild failed", "error", err)
		return
	}
	w.log.Debug("returns balances rebuilt")
}

func (w *Worker) cleanupTokens(ctx context.Context) {
	count, err := w.tokenRepo.CleanupExpiredTokens(ctx)
	if err != nil {
		w.log.Errorw("token cleanup failed", "error", err)
		return
	}
	if count > 0 {
		w.log.Infow("cleaned up expired tokens", "count", count)
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	count, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if count > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", count)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
