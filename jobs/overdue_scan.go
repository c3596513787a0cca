package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// OverdueScanner re-derives the payment status of past-due invoices and
// reports how many were updated.
type OverdueScanner interface {
	RefreshOverdue(ctx context.Context) (int, error)
}

// OverdueScanJob flips invoices past their due date to OVERDUE without
// waiting for someone to touch them.
type OverdueScanJob struct {
	Scanner OverdueScanner
	Logger  *slog.Logger
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(scanner OverdueScanner, logger *slog.Logger) *OverdueScanJob {
	return &OverdueScanJob{Scanner: scanner, Logger: logger}
}

// Handle executes one rescan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Scanner == nil {
		return errors.New("overdue scan: handler not configured")
	}
	logger := j.logger()
	start := time.Now()
	logger.Info("starting overdue scan")

	updated, err := j.Scanner.RefreshOverdue(ctx)
	if err != nil {
		logger.Error("overdue scan failed", slog.Any("error", err))
		return err
	}

	logger.Info("completed overdue scan",
		slog.Int("updated", updated),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskInvoiceOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskInvoiceOverdueScan))
}
