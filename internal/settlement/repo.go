package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/pagination"
)

// EarningsSummary aggregates a partner's settled amounts.
type EarningsSummary struct {
	PartnerID        uuid.UUID       `json:"partner_id"`
	SettlementCount  int64           `json:"settlement_count"`
	GrossTotal       decimal.Decimal `json:"gross_total"`
	PlatformFeeTotal decimal.Decimal `json:"platform_fee_total"`
	CommissionTotal  decimal.Decimal `json:"commission_total"`
	NetTotal         decimal.Decimal `json:"net_total"`
}

// Repository handles settlement persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, settlement *models.Settlement) error
	Find(ctx context.Context, id uuid.UUID) (*models.Settlement, error)
	FindByDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.Settlement, error)
	Update(ctx context.Context, settlement *models.Settlement) error

	ListByPartner(ctx context.Context, partnerID uuid.UUID, query ListSettlementsQuery) ([]models.Settlement, *pagination.Cursor, error)
	ListUnsettledDelivered(ctx context.Context, limit int) ([]models.Delivery, error)
	Summarize(ctx context.Context, partnerID uuid.UUID, from, to time.Time) (*EarningsSummary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settlement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, settlement *models.Settlement) error {
	return r.db.WithContext(ctx).Create(settlement).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Settlement, error) {
	var settlement models.Settlement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&settlement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

func (r *repository) FindByDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.Settlement, error) {
	var settlement models.Settlement
	if err := r.db.WithContext(ctx).Where("delivery_id = ?", deliveryID).First(&settlement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

func (r *repository) Update(ctx context.Context, settlement *models.Settlement) error {
	return r.db.WithContext(ctx).Save(settlement).Error
}

func (r *repository) ListByPartner(ctx context.Context, partnerID uuid.UUID, query ListSettlementsQuery) ([]models.Settlement, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)

	q := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(query.Limit))

	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if cursor, err := pagination.ParseCursor(query.Cursor); err != nil {
		return nil, nil, err
	} else if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var settlements []models.Settlement
	if err := q.Find(&settlements).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(settlements) > limit {
		settlements = settlements[:limit]
		last := settlements[len(settlements)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return settlements, next, nil
}

// ListUnsettledDelivered returns delivered shipments with no settlement row
// yet, oldest delivery first so the backlog drains in order.
func (r *repository) ListUnsettledDelivered(ctx context.Context, limit int) ([]models.Delivery, error) {
	if limit <= 0 {
		limit = 100
	}
	var deliveries []models.Delivery
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Joins("LEFT JOIN settlements ON settlements.delivery_id = deliveries.id").
		Where("deliveries.status = ?", enums.DeliveryStatusDelivered).
		Where("settlements.id IS NULL").
		Order("deliveries.delivered_at ASC").
		Limit(limit).
		Find(&deliveries).Error
	return deliveries, err
}

func (r *repository) Summarize(ctx context.Context, partnerID uuid.UUID, from, to time.Time) (*EarningsSummary, error) {
	var row struct {
		SettlementCount  int64
		GrossTotal       decimal.Decimal
		PlatformFeeTotal decimal.Decimal
		CommissionTotal  decimal.Decimal
		NetTotal         decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Settlement{}).
		Select(`COUNT(*) AS settlement_count,
COALESCE(SUM(gross_amount), 0) AS gross_total,
COALESCE(SUM(platform_fee_amount), 0) AS platform_fee_total,
COALESCE(SUM(commission_amount), 0) AS commission_total,
COALESCE(SUM(net_earning), 0) AS net_total`).
		Where("partner_id = ?", partnerID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &EarningsSummary{
		PartnerID:        partnerID,
		SettlementCount:  row.SettlementCount,
		GrossTotal:       row.GrossTotal,
		PlatformFeeTotal: row.PlatformFeeTotal,
		CommissionTotal:  row.CommissionTotal,
		NetTotal:         row.NetTotal,
	}, nil
}
