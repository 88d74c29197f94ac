package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlatformFeeConfig is the marketplace-wide default fee applied when a
// partner has no dedicated commission config.
type PlatformFeeConfig struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FeePercent    decimal.Decimal `gorm:"column:fee_percent;type:numeric(5,2);not null"`
	GSTPercent    decimal.Decimal `gorm:"column:gst_percent;type:numeric(5,2);not null"`
	EffectiveFrom time.Time       `gorm:"column:effective_from;not null"`
	EffectiveTo   *time.Time      `gorm:"column:effective_to"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}
