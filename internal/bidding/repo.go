package bidding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/pagination"
)

// Repository handles bid and delivery persistence for the auction flow.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateBid(ctx context.Context, bid *models.Bid) error
	FindBid(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	FindBidForUpdate(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	UpdateBid(ctx context.Context, bid *models.Bid) error
	HasPendingBid(ctx context.Context, deliveryID, partnerID uuid.UUID) (bool, error)
	FindPendingBid(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Bid, error)
	PendingBidStats(ctx context.Context, deliveryID uuid.UUID) (int64, *decimal.Decimal, error)

	FindDelivery(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	FindDeliveryForUpdate(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	UpdateDelivery(ctx context.Context, delivery *models.Delivery) error

	ListBidsByDelivery(ctx context.Context, deliveryID uuid.UUID) ([]models.Bid, error)
	ListPendingBidsForUpdate(ctx context.Context, deliveryID uuid.UUID) ([]models.Bid, error)
	ListPartnerBids(ctx context.Context, partnerID uuid.UUID, query ListBidsQuery) ([]models.Bid, *pagination.Cursor, error)

	ListOpenDeliveries(ctx context.Context, now time.Time, limit int) ([]models.Delivery, error)
	ListExpiredPendingBids(ctx context.Context, now time.Time, limit int) ([]models.Bid, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bidding repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBid(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

func (r *repository) FindBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&bid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bid, nil
}

// FindBidForUpdate takes a row lock; callers must be inside a transaction.
func (r *repository) FindBidForUpdate(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bid, nil
}

func (r *repository) UpdateBid(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Save(bid).Error
}

func (r *repository) HasPendingBid(ctx context.Context, deliveryID, partnerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("delivery_id = ? AND partner_id = ? AND status = ?", deliveryID, partnerID, enums.BidStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindPendingBid(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Where("delivery_id = ? AND partner_id = ? AND status = ?", deliveryID, partnerID, enums.BidStatusPending).
		First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bid, nil
}

// PendingBidStats returns the pending bid count and the lowest pending amount
// for a delivery. The amount is nil when the delivery has no pending bids.
func (r *repository) PendingBidStats(ctx context.Context, deliveryID uuid.UUID) (int64, *decimal.Decimal, error) {
	var row struct {
		BidCount  int64
		LowestBid decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Select("COUNT(*) AS bid_count, MIN(amount) AS lowest_bid").
		Where("delivery_id = ? AND status = ?", deliveryID, enums.BidStatusPending).
		Scan(&row).Error
	if err != nil {
		return 0, nil, err
	}
	if !row.LowestBid.Valid {
		return row.BidCount, nil, nil
	}
	return row.BidCount, &row.LowestBid.Decimal, nil
}

func (r *repository) FindDelivery(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&delivery).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &delivery, nil
}

// FindDeliveryForUpdate takes a row lock; callers must be inside a transaction.
func (r *repository) FindDeliveryForUpdate(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&delivery).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &delivery, nil
}

func (r *repository) UpdateDelivery(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Save(delivery).Error
}

// ListBidsByDelivery returns all bids for a delivery ordered cheapest first
// with deterministic tie-breaks.
func (r *repository) ListBidsByDelivery(ctx context.Context, deliveryID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID).
		Order("amount ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&bids).Error
	return bids, err
}

// ListPendingBidsForUpdate locks every pending bid of a delivery for the
// acceptance cascade.
func (r *repository) ListPendingBidsForUpdate(ctx context.Context, deliveryID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("delivery_id = ? AND status = ?", deliveryID, enums.BidStatusPending).
		Order("created_at ASC").
		Order("id ASC").
		Find(&bids).Error
	return bids, err
}

func (r *repository) ListPartnerBids(ctx context.Context, partnerID uuid.UUID, query ListBidsQuery) ([]models.Bid, *pagination.Cursor, error) {
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

	var bids []models.Bid
	if err := q.Find(&bids).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(bids) > limit {
		bids = bids[:limit]
		last := bids[len(bids)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return bids, next, nil
}

// ListOpenDeliveries returns deliveries still inside their bidding window.
func (r *repository) ListOpenDeliveries(ctx context.Context, now time.Time, limit int) ([]models.Delivery, error) {
	if limit <= 0 {
		limit = 200
	}
	var deliveries []models.Delivery
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.DeliveryStatus{enums.DeliveryStatusCreated, enums.DeliveryStatusMatching}).
		Where("bidding_closes_at > ?", now).
		Order("created_at ASC").
		Limit(limit).
		Find(&deliveries).Error
	return deliveries, err
}

func (r *repository) ListExpiredPendingBids(ctx context.Context, now time.Time, limit int) ([]models.Bid, error) {
	if limit <= 0 {
		limit = 500
	}
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", enums.BidStatusPending, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&bids).Error
	return bids, err
}
