package cron

import (
	"context"
	"fmt"

	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

const bidExpiryBatchSize = 500

type bidExpirer interface {
	ExpireDueBids(ctx context.Context, limit int) (int, error)
}

// BidExpiryJobParams configure the pending bid sweep.
type BidExpiryJobParams struct {
	Logger    *logger.Logger
	Bidding   bidExpirer
	BatchSize int
}

type bidExpiryJob struct {
	logg    *logger.Logger
	bidding bidExpirer
	batch   int
}

// NewBidExpiryJob builds the cron job that persists bid expirations the lazy
// read path only annotates.
func NewBidExpiryJob(params BidExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Bidding == nil {
		return nil, fmt.Errorf("bidding service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = bidExpiryBatchSize
	}
	return &bidExpiryJob{logg: params.Logger, bidding: params.Bidding, batch: batch}, nil
}

func (j *bidExpiryJob) Name() string { return "bid-expiry" }

func (j *bidExpiryJob) Run(ctx context.Context) error {
	expired, err := j.bidding.ExpireDueBids(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("bid expiry sweep: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "expired_count", expired)
	j.logg.Info(logCtx, "bid expiry sweep complete")
	return nil
}
