package cron

import (
	"context"
	"fmt"

	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

const settlementBatchSize = 100

type settlementRunner interface {
	RunBatch(ctx context.Context, limit int) (int, error)
}

// SettlementJobParams configure the delivered-backlog settlement batch.
type SettlementJobParams struct {
	Logger     *logger.Logger
	Settlement settlementRunner
	BatchSize  int
}

type settlementJob struct {
	logg       *logger.Logger
	settlement settlementRunner
	batch      int
}

// NewSettlementJob builds the cron job that settles delivered shipments.
func NewSettlementJob(params SettlementJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Settlement == nil {
		return nil, fmt.Errorf("settlement service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = settlementBatchSize
	}
	return &settlementJob{logg: params.Logger, settlement: params.Settlement, batch: batch}, nil
}

func (j *settlementJob) Name() string { return "settlement-batch" }

func (j *settlementJob) Run(ctx context.Context) error {
	settled, err := j.settlement.RunBatch(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("settlement batch: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "settled_count", settled)
	j.logg.Info(logCtx, "settlement batch complete")
	return nil
}
