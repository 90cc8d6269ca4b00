package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/stockwatch/internal/entity"
	"github.com/xavierca1/stockwatch/internal/infra/metrics"
	"github.com/xavierca1/stockwatch/internal/usecase"
)

type stockChecker interface {
	Execute(ctx context.Context) (*usecase.CheckStockOutput, error)
}

// runCheck executes one check, prints the diagnostic line and returns the
// process exit code.
func runCheck(ctx context.Context, checker stockChecker, recorder *metrics.Recorder, stderr io.Writer, log *zap.Logger) int {
	start := time.Now()
	out, err := checker.Execute(ctx)

	if out != nil {
		fmt.Fprintf(stderr, "available=%t last_available=%s\n", out.Available, out.Previous.LastAvailableString())

		recorder.RecordAvailability(out.Available)
		if out.RestockEmailSent {
			recorder.RecordEmail(entity.EmailKindRestock)
		}
		if out.StatusEmailSent {
			recorder.RecordEmail(entity.EmailKindStatus)
		}
		recorder.RecordState(out.State)
	}
	if err != nil {
		recorder.RecordError(errorType(err))
	}
	recorder.RecordRun(start, time.Now(), err == nil)
	if werr := recorder.Write(); werr != nil {
		log.Warn("metrics textfile not written", zap.Error(werr))
	}

	if err != nil {
		log.Error("🔥 stock check failed", zap.String("type", errorType(err)), zap.Error(err))
		return 1
	}

	log.Info("stock check finished",
		zap.Bool("available", out.Available),
		zap.Bool("restock_email", out.RestockEmailSent),
		zap.Bool("status_email", out.StatusEmailSent),
	)
	return 0
}

func errorType(err error) string {
	switch {
	case entity.IsNetworkError(err):
		return "network"
	case entity.IsDeliveryError(err):
		return "delivery"
	default:
		return "internal"
	}
}
