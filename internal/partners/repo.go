package partners

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
)

// Repository handles partner, rate card and service area persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePartner(ctx context.Context, partner *models.Partner) error
	FindPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	UpdatePartner(ctx context.Context, partner *models.Partner) error

	ActiveRateCard(ctx context.Context, partnerID uuid.UUID, at time.Time) (*models.RateCard, error)
	ActiveRateCards(ctx context.Context, at time.Time) ([]models.RateCard, error)
	CloseActiveRateCard(ctx context.Context, partnerID uuid.UUID, at time.Time) error
	CreateRateCard(ctx context.Context, card *models.RateCard) error
	ListRateCardHistory(ctx context.Context, partnerID uuid.UUID) ([]models.RateCard, error)

	FindServiceArea(ctx context.Context, partnerID uuid.UUID) (*models.ServiceArea, error)
	UpsertServiceArea(ctx context.Context, area *models.ServiceArea) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a partners repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePartner(ctx context.Context, partner *models.Partner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

func (r *repository) FindPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	var partner models.Partner
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

func (r *repository) UpdatePartner(ctx context.Context, partner *models.Partner) error {
	return r.db.WithContext(ctx).Save(partner).Error
}

func (r *repository) ActiveRateCard(ctx context.Context, partnerID uuid.UUID, at time.Time) (*models.RateCard, error) {
	var card models.RateCard
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Where("effective_from <= ?", at).
		Where("effective_to IS NULL OR effective_to > ?", at).
		Order("effective_from DESC").
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// ActiveRateCards returns the current card of every active partner. Partners
// without an open card are simply absent from the result.
func (r *repository) ActiveRateCards(ctx context.Context, at time.Time) ([]models.RateCard, error) {
	var cards []models.RateCard
	err := r.db.WithContext(ctx).
		Joins("JOIN partners ON partners.id = rate_cards.partner_id AND partners.active").
		Where("rate_cards.effective_from <= ?", at).
		Where("rate_cards.effective_to IS NULL OR rate_cards.effective_to > ?", at).
		Order("rate_cards.partner_id ASC").
		Find(&cards).Error
	return cards, err
}

func (r *repository) CloseActiveRateCard(ctx context.Context, partnerID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.RateCard{}).
		Where("partner_id = ? AND effective_to IS NULL", partnerID).
		Update("effective_to", at).Error
}

func (r *repository) CreateRateCard(ctx context.Context, card *models.RateCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *repository) ListRateCardHistory(ctx context.Context, partnerID uuid.UUID) ([]models.RateCard, error) {
	var cards []models.RateCard
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("effective_from DESC").
		Find(&cards).Error
	return cards, err
}

func (r *repository) FindServiceArea(ctx context.Context, partnerID uuid.UUID) (*models.ServiceArea, error) {
	var area models.ServiceArea
	if err := r.db.WithContext(ctx).Where("partner_id = ?", partnerID).First(&area).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &area, nil
}

func (r *repository) UpsertServiceArea(ctx context.Context, area *models.ServiceArea) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "partner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"center_point", "radius_km", "preferred_direction", "updated_at",
			}),
		}).
		Create(area).Error
}
