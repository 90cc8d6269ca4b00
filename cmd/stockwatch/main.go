package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/stockwatch/internal/config"
	"github.com/xavierca1/stockwatch/internal/infra/integration/shop"
	"github.com/xavierca1/stockwatch/internal/infra/lock"
	"github.com/xavierca1/stockwatch/internal/infra/logger"
	"github.com/xavierca1/stockwatch/internal/infra/mail"
	"github.com/xavierca1/stockwatch/internal/infra/metrics"
	"github.com/xavierca1/stockwatch/internal/infra/storage"
	"github.com/xavierca1/stockwatch/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockwatch: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockwatch: LOG_LEVEL: %v\n", err)
		return 1
	}
	defer log.Sync()

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	// 2. Single instance guard
	runLock := lock.NewRunLock(cfg.LockFile())
	if err := runLock.Acquire(); err != nil {
		if errors.Is(err, lock.ErrAlreadyRunning) {
			log.Warn("⏭️ previous run still active, skipping", zap.String("lock", runLock.Path()))
			return 0
		}
		log.Error("lock failed", zap.Error(err))
		return 1
	}
	defer runLock.Release()

	// 3. Adapters
	classifier, err := usecase.NewClassifier(cfg.Rules)
	if err != nil {
		log.Error("invalid availability patterns", zap.Error(err))
		return 1
	}
	fetcher := shop.NewClient(cfg.Product.URL, log)
	stateRepo := storage.NewStateRepository(cfg.StateFile, log)
	mailSender := mail.NewEmailSender(cfg.SMTP, runID)
	recorder := metrics.NewRecorder(cfg.MetricsTextfile)

	// 4. UseCase
	checkStockUC := usecase.NewCheckStockUseCase(
		fetcher,
		classifier,
		stateRepo,
		mailSender,
		cfg.Product,
		log,
	)

	return runCheck(ctx, checkStockUC, recorder, os.Stderr, log)
}
