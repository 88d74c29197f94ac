package deliveries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swifthaul/swifthaul-backend/internal/pricing"
	"github.com/swifthaul/swifthaul-backend/pkg/config"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	apperrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/geo"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox/payloads"
	"github.com/swifthaul/swifthaul-backend/pkg/pagination"
	"github.com/swifthaul/swifthaul-backend/pkg/types"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OutboxEmitter queues domain events inside the caller's transaction.
type OutboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams groups dependencies for the deliveries service.
type ServiceParams struct {
	Repo    Repository
	Pricing *pricing.Service
	Tx      TxRunner
	Outbox  OutboxEmitter
	Logger  *logger.Logger
	Config  config.BiddingConfig
	Now     func() time.Time
}

// Service owns the delivery lifecycle from request to handoff.
type Service struct {
	repo    Repository
	pricing *pricing.Service
	tx      TxRunner
	outbox  OutboxEmitter
	logg    *logger.Logger
	cfg     config.BiddingConfig
	now     func() time.Time
}

// NewService builds a deliveries service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Pricing == nil {
		return nil, errors.New("pricing service is required")
	}
	if params.Tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox emitter is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:    params.Repo,
		pricing: params.Pricing,
		tx:      params.Tx,
		outbox:  params.Outbox,
		logg:    params.Logger,
		cfg:     params.Config,
		now:     now,
	}, nil
}

// CreateDelivery registers a shipment request, estimates its cost from the
// cheapest active rate card and opens the bidding window.
func (s *Service) CreateDelivery(ctx context.Context, input CreateDeliveryInput) (*models.Delivery, error) {
	now := s.now()

	priority := enums.DeliveryPriorityStandard
	if input.Priority != "" {
		parsed, err := enums.ParseDeliveryPriority(input.Priority)
		if err != nil {
			return nil, apperrors.New(apperrors.CodeValidation, err.Error())
		}
		priority = parsed
	}
	if !input.WeightKg.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "weight must be positive")
	}

	distance := geo.DistanceKm(input.PickupLat, input.PickupLng, input.DropLat, input.DropLng)
	if distance <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "pickup and drop must be distinct points")
	}

	estimate, err := s.pricing.EstimateCost(ctx, pricing.QuoteInput{
		DistanceKm: distance,
		WeightKg:   input.WeightKg,
		Priority:   priority,
		PickupAt:   now,
	})
	if err != nil {
		return nil, err
	}

	delivery := &models.Delivery{
		RequesterID:     input.RequesterID,
		Status:          enums.DeliveryStatusCreated,
		Priority:        priority,
		PickupPoint:     types.GeographyPoint{Lat: input.PickupLat, Lng: input.PickupLng},
		DropPoint:       types.GeographyPoint{Lat: input.DropLat, Lng: input.DropLng},
		PickupAddress:   input.PickupAddress,
		DropAddress:     input.DropAddress,
		DistanceKm:      distance,
		WeightKg:        input.WeightKg,
		EstimatedCost:   estimate,
		Currency:        enums.CurrencyINR,
		BiddingClosesAt: now.Add(s.cfg.BiddingWindow),
	}
	if err := s.repo.Create(ctx, delivery); err != nil {
		return nil, err
	}

	logCtx := s.logg.WithDeliveryID(ctx, delivery.ID.String())
	s.logg.Info(logCtx, "delivery created")
	return delivery, nil
}

// GetForRequester returns a delivery owned by the requester.
func (s *Service) GetForRequester(ctx context.Context, deliveryID, requesterID uuid.UUID) (*models.Delivery, error) {
	delivery, err := s.repo.Find(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "delivery not found")
	}
	if delivery.RequesterID != requesterID {
		return nil, apperrors.New(apperrors.CodeForbidden, "delivery belongs to another requester")
	}
	return delivery, nil
}

// GetForPartner returns a delivery assigned to the partner.
func (s *Service) GetForPartner(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error) {
	delivery, err := s.repo.Find(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "delivery not found")
	}
	if delivery.AssignedPartnerID == nil || *delivery.AssignedPartnerID != partnerID {
		return nil, apperrors.New(apperrors.CodeForbidden, "delivery is not assigned to this partner")
	}
	return delivery, nil
}

// ListForRequester pages through a requester's deliveries, newest first.
func (s *Service) ListForRequester(ctx context.Context, requesterID uuid.UUID, query ListDeliveriesQuery) (*DeliveryPage, error) {
	deliveries, next, err := s.repo.ListByRequester(ctx, requesterID, query)
	if err != nil {
		return nil, err
	}
	return buildPage(deliveries, next), nil
}

// ListForPartner pages through a partner's assigned deliveries, newest first.
func (s *Service) ListForPartner(ctx context.Context, partnerID uuid.UUID, query ListDeliveriesQuery) (*DeliveryPage, error) {
	deliveries, next, err := s.repo.ListByPartner(ctx, partnerID, query)
	if err != nil {
		return nil, err
	}
	return buildPage(deliveries, next), nil
}

func buildPage(deliveries []models.Delivery, next *pagination.Cursor) *DeliveryPage {
	page := &DeliveryPage{Deliveries: deliveries}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page
}

// transitions maps each progress update to the status it requires.
var transitions = map[enums.DeliveryStatus]enums.DeliveryStatus{
	enums.DeliveryStatusPickedUp:  enums.DeliveryStatusAssigned,
	enums.DeliveryStatusInTransit: enums.DeliveryStatusPickedUp,
	enums.DeliveryStatusDelivered: enums.DeliveryStatusInTransit,
}

// MarkPickedUp records that the assigned partner collected the shipment.
func (s *Service) MarkPickedUp(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error) {
	return s.progress(ctx, deliveryID, partnerID, enums.DeliveryStatusPickedUp)
}

// MarkInTransit records that the shipment is on the road.
func (s *Service) MarkInTransit(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error) {
	return s.progress(ctx, deliveryID, partnerID, enums.DeliveryStatusInTransit)
}

// MarkDelivered records the handoff and stamps the delivery time, making the
// delivery eligible for settlement.
func (s *Service) MarkDelivered(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error) {
	return s.progress(ctx, deliveryID, partnerID, enums.DeliveryStatusDelivered)
}

func (s *Service) progress(ctx context.Context, deliveryID, partnerID uuid.UUID, target enums.DeliveryStatus) (*models.Delivery, error) {
	now := s.now()
	var updated *models.Delivery

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		delivery, err := repo.FindForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		if delivery == nil {
			return apperrors.New(apperrors.CodeNotFound, "delivery not found")
		}
		if delivery.AssignedPartnerID == nil || *delivery.AssignedPartnerID != partnerID {
			return apperrors.New(apperrors.CodeForbidden, "delivery is not assigned to this partner")
		}
		if delivery.Status != transitions[target] {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("delivery is %s and cannot move to %s", delivery.Status, target))
		}

		delivery.Status = target
		if target == enums.DeliveryStatusDelivered {
			delivery.DeliveredAt = &now
		}
		if err := repo.Update(ctx, delivery); err != nil {
			return err
		}
		updated = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithDeliveryID(ctx, updated.ID.String())
	s.logg.Info(s.logg.WithField(logCtx, "status", updated.Status.String()), "delivery status updated")
	return updated, nil
}

// CancelDelivery aborts a delivery that has not been assigned yet. Any
// pending bids are rejected in the same transaction.
func (s *Service) CancelDelivery(ctx context.Context, deliveryID, requesterID uuid.UUID) (*models.Delivery, error) {
	now := s.now()
	var cancelled *models.Delivery

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		delivery, err := repo.FindForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		if delivery == nil {
			return apperrors.New(apperrors.CodeNotFound, "delivery not found")
		}
		if delivery.RequesterID != requesterID {
			return apperrors.New(apperrors.CodeForbidden, "delivery belongs to another requester")
		}
		if !delivery.Status.IsOpenForBidding() {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("delivery is %s and cannot be cancelled", delivery.Status))
		}

		if err := s.resolvePendingBids(ctx, tx, repo, delivery.ID, enums.BidStatusRejected, now); err != nil {
			return err
		}

		delivery.Status = enums.DeliveryStatusCancelled
		if err := repo.Update(ctx, delivery); err != nil {
			return err
		}
		cancelled = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithDeliveryID(ctx, cancelled.ID.String()), "delivery cancelled")
	return cancelled, nil
}

// ExpireStaleDeliveries closes out deliveries whose bidding window elapsed
// without an acceptance. Their pending bids are expired alongside.
func (s *Service) ExpireStaleDeliveries(ctx context.Context, limit int) (int, error) {
	now := s.now()

	stale, err := s.repo.ListStaleOpen(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	expired := 0
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, candidate := range stale {
			delivery, err := repo.FindForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if delivery == nil || !delivery.Status.IsOpenForBidding() || now.Before(delivery.BiddingClosesAt) {
				continue
			}
			if err := s.resolvePendingBids(ctx, tx, repo, delivery.ID, enums.BidStatusExpired, now); err != nil {
				return err
			}
			delivery.Status = enums.DeliveryStatusExpired
			if err := repo.Update(ctx, delivery); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.logg.Info(s.logg.WithField(ctx, "expired_count", expired), "expired stale deliveries")
	}
	return expired, nil
}

func (s *Service) resolvePendingBids(ctx context.Context, tx *gorm.DB, repo Repository, deliveryID uuid.UUID, target enums.BidStatus, now time.Time) error {
	pending, err := repo.ListPendingBidsForUpdate(ctx, deliveryID)
	if err != nil {
		return err
	}
	for i := range pending {
		bid := pending[i]
		bid.Status = target
		bid.ResolvedAt = &now
		if err := repo.UpdateBid(ctx, &bid); err != nil {
			return err
		}
		event := outbox.DomainEvent{
			AggregateType: enums.AggregateBid,
			AggregateID:   bid.ID,
			Version:       1,
			OccurredAt:    now,
		}
		if target == enums.BidStatusExpired {
			event.EventType = enums.EventBidExpired
			event.Data = payloads.BidExpiredEvent{
				BidID:      bid.ID,
				DeliveryID: bid.DeliveryID,
				PartnerID:  bid.PartnerID,
				ExpiredAt:  now,
			}
		} else {
			event.EventType = enums.EventBidRejected
			event.Data = payloads.BidRejectedEvent{
				BidID:      bid.ID,
				DeliveryID: bid.DeliveryID,
				PartnerID:  bid.PartnerID,
			}
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}
