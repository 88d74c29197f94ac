package cron

import (
	"context"
	"fmt"

	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

const deliveryExpiryBatchSize = 200

type deliveryExpirer interface {
	ExpireStaleDeliveries(ctx context.Context, limit int) (int, error)
}

// DeliveryExpiryJobParams configure the stale delivery sweep.
type DeliveryExpiryJobParams struct {
	Logger     *logger.Logger
	Deliveries deliveryExpirer
	BatchSize  int
}

type deliveryExpiryJob struct {
	logg       *logger.Logger
	deliveries deliveryExpirer
	batch      int
}

// NewDeliveryExpiryJob builds the cron job that closes out deliveries whose
// bidding window elapsed without an acceptance.
func NewDeliveryExpiryJob(params DeliveryExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Deliveries == nil {
		return nil, fmt.Errorf("deliveries service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = deliveryExpiryBatchSize
	}
	return &deliveryExpiryJob{logg: params.Logger, deliveries: params.Deliveries, batch: batch}, nil
}

func (j *deliveryExpiryJob) Name() string { return "delivery-expiry" }

func (j *deliveryExpiryJob) Run(ctx context.Context) error {
	expired, err := j.deliveries.ExpireStaleDeliveries(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("delivery expiry sweep: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "expired_count", expired)
	j.logg.Info(logCtx, "delivery expiry sweep complete")
	return nil
}
