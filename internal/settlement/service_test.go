package settlement

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/swifthaul/swifthaul-backend/internal/commission"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	apperrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox"
	"github.com/swifthaul/swifthaul-backend/pkg/pagination"
)

type stubRepo struct {
	settlements map[uuid.UUID]*models.Settlement
	unsettled   []models.Delivery
}

func newStubRepo() *stubRepo {
	return &stubRepo{settlements: map[uuid.UUID]*models.Settlement{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == uuid.Nil {
		settlement.ID = uuid.New()
	}
	copied := *settlement
	s.settlements[settlement.ID] = &copied
	return nil
}

func (s *stubRepo) Find(ctx context.Context, id uuid.UUID) (*models.Settlement, error) {
	if settlement, ok := s.settlements[id]; ok {
		copied := *settlement
		return &copied, nil
	}
	return nil, nil
}

func (s *stubRepo) FindByDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.Settlement, error) {
	for _, settlement := range s.settlements {
		if settlement.DeliveryID == deliveryID {
			copied := *settlement
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) Update(ctx context.Context, settlement *models.Settlement) error {
	copied := *settlement
	s.settlements[settlement.ID] = &copied
	return nil
}

func (s *stubRepo) ListByPartner(ctx context.Context, partnerID uuid.UUID, query ListSettlementsQuery) ([]models.Settlement, *pagination.Cursor, error) {
	var settlements []models.Settlement
	for _, settlement := range s.settlements {
		if settlement.PartnerID == partnerID {
			settlements = append(settlements, *settlement)
		}
	}
	return settlements, nil, nil
}

func (s *stubRepo) ListUnsettledDelivered(ctx context.Context, limit int) ([]models.Delivery, error) {
	var pending []models.Delivery
	for _, delivery := range s.unsettled {
		if settled, _ := s.FindByDelivery(ctx, delivery.ID); settled == nil {
			pending = append(pending, delivery)
		}
	}
	return pending, nil
}

func (s *stubRepo) Summarize(ctx context.Context, partnerID uuid.UUID, from, to time.Time) (*EarningsSummary, error) {
	summary := &EarningsSummary{PartnerID: partnerID}
	for _, settlement := range s.settlements {
		if settlement.PartnerID != partnerID {
			continue
		}
		summary.SettlementCount++
		summary.GrossTotal = summary.GrossTotal.Add(settlement.GrossAmount)
		summary.PlatformFeeTotal = summary.PlatformFeeTotal.Add(settlement.PlatformFee)
		summary.CommissionTotal = summary.CommissionTotal.Add(settlement.CommissionAmount)
		summary.NetTotal = summary.NetTotal.Add(settlement.NetEarning)
	}
	return summary, nil
}

type stubResolver struct {
	err error
}

func (s *stubResolver) ResolveForPartner(ctx context.Context, partnerID uuid.UUID, gross decimal.Decimal) (*commission.Breakdown, error) {
	if s.err != nil {
		return nil, s.err
	}
	// 10% platform fee, 5% manager commission, 18% GST on both cuts.
	platformFee := gross.Mul(decimal.RequireFromString("0.10")).Round(2)
	commissionAmount := gross.Mul(decimal.RequireFromString("0.05")).Round(2)
	gst := platformFee.Add(commissionAmount).Mul(decimal.RequireFromString("0.18")).Round(2)
	return &commission.Breakdown{
		GrossAmount:      gross,
		PlatformFee:      platformFee,
		CommissionAmount: commissionAmount,
		GSTAmount:        gst,
		NetEarning:       gross.Sub(platformFee).Sub(commissionAmount).Sub(gst),
		Method:           enums.CommissionMethodPercentage,
	}, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, repo Repository, resolver CommissionResolver, emitter OutboxEmitter) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:       repo,
		Commission: resolver,
		Tx:         stubTx{},
		Outbox:     emitter,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:        fixedNow,
	})
	require.NoError(t, err)
	return svc
}

func deliveredShipment(gross int64) *models.Delivery {
	partnerID := uuid.New()
	agreed := decimal.NewFromInt(gross)
	deliveredAt := fixedNow().Add(-time.Hour)
	return &models.Delivery{
		ID:                uuid.New(),
		RequesterID:       uuid.New(),
		Status:            enums.DeliveryStatusDelivered,
		AssignedPartnerID: &partnerID,
		AgreedAmount:      &agreed,
		Currency:          enums.CurrencyINR,
		DeliveredAt:       &deliveredAt,
	}
}

func TestSettleDeliveryAppliesSplit(t *testing.T) {
	repo := newStubRepo()
	emitter := &stubOutbox{}
	svc := newTestService(t, repo, &stubResolver{}, emitter)
	delivery := deliveredShipment(1000)

	settlement, err := svc.SettleDelivery(context.Background(), delivery)
	require.NoError(t, err)

	assert.True(t, settlement.GrossAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, settlement.PlatformFee.Equal(decimal.NewFromInt(100)))
	assert.True(t, settlement.CommissionAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, settlement.CommissionGST.Equal(decimal.NewFromInt(27)))
	assert.True(t, settlement.NetEarning.Equal(decimal.NewFromInt(823)))
	assert.Equal(t, enums.SettlementStatusPending, settlement.Status)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, enums.EventSettlementCreated, emitter.events[0].EventType)
	assert.Equal(t, settlement.ID, emitter.events[0].AggregateID)
}

func TestSettleDeliveryDuplicate(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubResolver{}, &stubOutbox{})
	delivery := deliveredShipment(1000)

	_, err := svc.SettleDelivery(context.Background(), delivery)
	require.NoError(t, err)

	_, err = svc.SettleDelivery(context.Background(), delivery)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDuplicate, apperrors.As(err).Code())
}

func TestSettleDeliveryRequiresDeliveredStatus(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubResolver{}, &stubOutbox{})
	delivery := deliveredShipment(1000)
	delivery.Status = enums.DeliveryStatusInTransit

	_, err := svc.SettleDelivery(context.Background(), delivery)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStateConflict, apperrors.As(err).Code())
}

func TestSettleDeliveryRequiresAgreedAmount(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubResolver{}, &stubOutbox{})
	delivery := deliveredShipment(1000)
	delivery.AgreedAmount = nil

	_, err := svc.SettleDelivery(context.Background(), delivery)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStateConflict, apperrors.As(err).Code())
}

func TestRunBatchContinuesPastFailures(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubResolver{}, &stubOutbox{})

	good := deliveredShipment(1000)
	bad := deliveredShipment(500)
	bad.AgreedAmount = nil
	repo.unsettled = []models.Delivery{*bad, *good}

	settled, err := svc.RunBatch(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	settlement, err := repo.FindByDelivery(context.Background(), good.ID)
	require.NoError(t, err)
	require.NotNil(t, settlement)
}

func TestRunBatchIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubResolver{}, &stubOutbox{})
	delivery := deliveredShipment(1000)
	repo.unsettled = []models.Delivery{*delivery}

	settled, err := svc.RunBatch(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	settled, err = svc.RunBatch(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, settled)
}

func TestMarkPaid(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubResolver{}, &stubOutbox{})
	delivery := deliveredShipment(1000)

	settlement, err := svc.SettleDelivery(context.Background(), delivery)
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SettlementStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, fixedNow(), *paid.PaidAt)

	_, err = svc.MarkPaid(context.Background(), settlement.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStateConflict, apperrors.As(err).Code())
}

func TestEarningsValidatesWindow(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubResolver{}, &stubOutbox{})

	_, err := svc.Earnings(context.Background(), uuid.New(), fixedNow(), fixedNow())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestEarningsAggregates(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubResolver{}, &stubOutbox{})
	delivery := deliveredShipment(1000)

	settlement, err := svc.SettleDelivery(context.Background(), delivery)
	require.NoError(t, err)

	summary, err := svc.Earnings(context.Background(), settlement.PartnerID,
		fixedNow().Add(-24*time.Hour), fixedNow().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.SettlementCount)
	assert.True(t, summary.PlatformFeeTotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, summary.NetTotal.Equal(decimal.NewFromInt(823)))
}
