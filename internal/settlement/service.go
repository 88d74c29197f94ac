package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swifthaul/swifthaul-backend/internal/commission"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	apperrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox/payloads"
	"github.com/swifthaul/swifthaul-backend/pkg/pagination"
)

// ListSettlementsQuery filters a partner's settlement history.
type ListSettlementsQuery struct {
	Status *enums.SettlementStatus
	Limit  int
	Cursor string
}

// SettlementPage is one cursor page of settlements.
type SettlementPage struct {
	Settlements []models.Settlement `json:"settlements"`
	NextCursor  string              `json:"next_cursor,omitempty"`
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OutboxEmitter queues domain events inside the caller's transaction.
type OutboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CommissionResolver computes the split for a delivered shipment.
type CommissionResolver interface {
	ResolveForPartner(ctx context.Context, partnerID uuid.UUID, gross decimal.Decimal) (*commission.Breakdown, error)
}

// ServiceParams groups dependencies for the settlement service.
type ServiceParams struct {
	Repo       Repository
	Commission CommissionResolver
	Tx         TxRunner
	Outbox     OutboxEmitter
	Logger     *logger.Logger
	Now        func() time.Time
}

// Service turns delivered shipments into settlements with the commission
// split applied.
type Service struct {
	repo       Repository
	commission CommissionResolver
	tx         TxRunner
	outbox     OutboxEmitter
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds a settlement service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Commission == nil {
		return nil, errors.New("commission resolver is required")
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
		repo:       params.Repo,
		commission: params.Commission,
		tx:         params.Tx,
		outbox:     params.Outbox,
		logg:       params.Logger,
		now:        now,
	}, nil
}

// SettleDelivery creates the settlement for one delivered shipment.
func (s *Service) SettleDelivery(ctx context.Context, delivery *models.Delivery) (*models.Settlement, error) {
	if delivery == nil {
		return nil, errors.New("delivery is required")
	}
	if delivery.Status != enums.DeliveryStatusDelivered {
		return nil, apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("delivery is %s and cannot be settled", delivery.Status))
	}
	if delivery.AssignedPartnerID == nil || delivery.AgreedAmount == nil {
		return nil, apperrors.New(apperrors.CodeStateConflict, "delivery has no agreed amount")
	}

	existing, err := s.repo.FindByDelivery(ctx, delivery.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.CodeDuplicate, "delivery is already settled")
	}

	breakdown, err := s.commission.ResolveForPartner(ctx, *delivery.AssignedPartnerID, *delivery.AgreedAmount)
	if err != nil {
		return nil, err
	}

	now := s.now()
	settlement := &models.Settlement{
		DeliveryID:       delivery.ID,
		PartnerID:        *delivery.AssignedPartnerID,
		GrossAmount:      breakdown.GrossAmount,
		PlatformFee:      breakdown.PlatformFee,
		CommissionAmount: breakdown.CommissionAmount,
		CommissionGST:    breakdown.GSTAmount,
		NetEarning:       breakdown.NetEarning,
		Method:           breakdown.Method,
		Status:           enums.SettlementStatusPending,
		Currency:         delivery.Currency,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, settlement); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSettlementCreated,
			AggregateType: enums.AggregateSettlement,
			AggregateID:   settlement.ID,
			Data: payloads.SettlementCreatedEvent{
				SettlementID:     settlement.ID,
				DeliveryID:       settlement.DeliveryID,
				PartnerID:        settlement.PartnerID,
				GrossAmount:      settlement.GrossAmount,
				PlatformFee:      settlement.PlatformFee,
				CommissionAmount: settlement.CommissionAmount,
				NetEarning:       settlement.NetEarning,
				Method:           settlement.Method,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithDeliveryID(ctx, delivery.ID.String())
	logCtx = s.logg.WithPartnerID(logCtx, settlement.PartnerID.String())
	s.logg.Info(logCtx, "settlement created")
	return settlement, nil
}

// RunBatch settles the delivered backlog. A failure on one delivery is
// logged and does not block the rest of the batch.
func (s *Service) RunBatch(ctx context.Context, limit int) (int, error) {
	deliveries, err := s.repo.ListUnsettledDelivered(ctx, limit)
	if err != nil {
		return 0, err
	}

	settled := 0
	for i := range deliveries {
		if _, err := s.SettleDelivery(ctx, &deliveries[i]); err != nil {
			logCtx := s.logg.WithDeliveryID(ctx, deliveries[i].ID.String())
			s.logg.Error(logCtx, "settlement failed, continuing batch", err)
			continue
		}
		settled++
	}
	return settled, nil
}

// MarkPaid records that a settlement was paid out.
func (s *Service) MarkPaid(ctx context.Context, settlementID uuid.UUID) (*models.Settlement, error) {
	settlement, err := s.repo.Find(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "settlement not found")
	}
	if settlement.Status == enums.SettlementStatusPaid {
		return nil, apperrors.New(apperrors.CodeStateConflict, "settlement is already paid")
	}

	now := s.now()
	settlement.Status = enums.SettlementStatusPaid
	settlement.PaidAt = &now
	if err := s.repo.Update(ctx, settlement); err != nil {
		return nil, err
	}
	return settlement, nil
}

// GetForDelivery returns the settlement of a delivery.
func (s *Service) GetForDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.Settlement, error) {
	settlement, err := s.repo.FindByDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "settlement not found")
	}
	return settlement, nil
}

// ListForPartner pages through a partner's settlements, newest first.
func (s *Service) ListForPartner(ctx context.Context, partnerID uuid.UUID, query ListSettlementsQuery) (*SettlementPage, error) {
	settlements, next, err := s.repo.ListByPartner(ctx, partnerID, query)
	if err != nil {
		return nil, err
	}
	page := &SettlementPage{Settlements: settlements}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

// Earnings aggregates a partner's settled amounts in a window.
func (s *Service) Earnings(ctx context.Context, partnerID uuid.UUID, from, to time.Time) (*EarningsSummary, error) {
	if !from.Before(to) {
		return nil, apperrors.New(apperrors.CodeValidation, "window start must precede end")
	}
	return s.repo.Summarize(ctx, partnerID, from, to)
}
