package deliveries

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/pagination"
)

// Repository handles delivery persistence, plus the bid resolution needed
// when a delivery is cancelled or expires.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, delivery *models.Delivery) error
	Find(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	Update(ctx context.Context, delivery *models.Delivery) error

	ListByRequester(ctx context.Context, requesterID uuid.UUID, query ListDeliveriesQuery) ([]models.Delivery, *pagination.Cursor, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID, query ListDeliveriesQuery) ([]models.Delivery, *pagination.Cursor, error)
	ListStaleOpen(ctx context.Context, now time.Time, limit int) ([]models.Delivery, error)

	ListPendingBidsForUpdate(ctx context.Context, deliveryID uuid.UUID) ([]models.Bid, error)
	UpdateBid(ctx context.Context, bid *models.Bid) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a deliveries repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&delivery).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &delivery, nil
}

// FindForUpdate takes a row lock; callers must be inside a transaction.
func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
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

func (r *repository) Update(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Save(delivery).Error
}

func (r *repository) ListByRequester(ctx context.Context, requesterID uuid.UUID, query ListDeliveriesQuery) ([]models.Delivery, *pagination.Cursor, error) {
	return r.list(ctx, "requester_id = ?", requesterID, query)
}

func (r *repository) ListByPartner(ctx context.Context, partnerID uuid.UUID, query ListDeliveriesQuery) ([]models.Delivery, *pagination.Cursor, error) {
	return r.list(ctx, "assigned_partner_id = ?", partnerID, query)
}

func (r *repository) list(ctx context.Context, where string, id uuid.UUID, query ListDeliveriesQuery) ([]models.Delivery, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)

	q := r.db.WithContext(ctx).
		Where(where, id).
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

	var deliveries []models.Delivery
	if err := q.Find(&deliveries).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(deliveries) > limit {
		deliveries = deliveries[:limit]
		last := deliveries[len(deliveries)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return deliveries, next, nil
}

// ListStaleOpen returns deliveries whose bidding window closed without an
// assignment.
func (r *repository) ListStaleOpen(ctx context.Context, now time.Time, limit int) ([]models.Delivery, error) {
	if limit <= 0 {
		limit = 200
	}
	var deliveries []models.Delivery
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.DeliveryStatus{enums.DeliveryStatusCreated, enums.DeliveryStatusMatching}).
		Where("bidding_closes_at <= ?", now).
		Order("bidding_closes_at ASC").
		Limit(limit).
		Find(&deliveries).Error
	return deliveries, err
}

// ListPendingBidsForUpdate locks the pending bids of a delivery so they can
// be resolved alongside a cancel or expiry.
func (r *repository) ListPendingBidsForUpdate(ctx context.Context, deliveryID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("delivery_id = ? AND status = ?", deliveryID, enums.BidStatusPending).
		Order("created_at ASC").
		Find(&bids).Error
	return bids, err
}

func (r *repository) UpdateBid(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Save(bid).Error
}
