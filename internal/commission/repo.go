package commission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
)

// Repository handles commission config persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ActiveConfig(ctx context.Context, managerID uuid.UUID, at time.Time) (*models.CommissionConfig, error)
	ReplaceConfig(ctx context.Context, cfg *models.CommissionConfig) error
	ActivePlatformFee(ctx context.Context, at time.Time) (*models.PlatformFeeConfig, error)
	ReplacePlatformFee(ctx context.Context, fee *models.PlatformFeeConfig) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a commission repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ActiveConfig(ctx context.Context, managerID uuid.UUID, at time.Time) (*models.CommissionConfig, error) {
	var cfg models.CommissionConfig
	err := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Where("effective_from <= ?", at).
		Where("effective_to IS NULL OR effective_to > ?", at).
		Order("effective_from DESC").
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// ReplaceConfig closes the currently open config for the manager and inserts
// the new row. Past configs stay untouched so historical settlements remain
// reproducible.
func (r *repository) ReplaceConfig(ctx context.Context, cfg *models.CommissionConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CommissionConfig{}).
			Where("manager_id = ? AND effective_to IS NULL", cfg.ManagerID).
			Update("effective_to", cfg.EffectiveFrom).Error; err != nil {
			return err
		}
		return tx.Create(cfg).Error
	})
}

func (r *repository) ActivePlatformFee(ctx context.Context, at time.Time) (*models.PlatformFeeConfig, error) {
	var fee models.PlatformFeeConfig
	err := r.db.WithContext(ctx).
		Where("effective_from <= ?", at).
		Where("effective_to IS NULL OR effective_to > ?", at).
		Order("effective_from DESC").
		First(&fee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fee, nil
}

func (r *repository) ReplacePlatformFee(ctx context.Context, fee *models.PlatformFeeConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PlatformFeeConfig{}).
			Where("effective_to IS NULL").
			Update("effective_to", fee.EffectiveFrom).Error; err != nil {
			return err
		}
		return tx.Create(fee).Error
	})
}
