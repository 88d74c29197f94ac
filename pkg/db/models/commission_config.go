package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

// CommissionConfig captures how an intermediary manager's cut is computed for
// the partners they onboard. Rows are versioned the same way rate cards are.
type CommissionConfig struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ManagerID     uuid.UUID            `gorm:"column:manager_id;type:uuid;not null;index"`
	Type          enums.CommissionType `gorm:"column:type;type:commission_type_enum;not null"`
	Percent       decimal.Decimal      `gorm:"column:percent;type:numeric(5,2);not null;default:0"`
	FlatAmount    decimal.Decimal      `gorm:"column:flat_amount;type:numeric(12,2);not null;default:0"`
	MinAmount     decimal.Decimal      `gorm:"column:min_amount;type:numeric(12,2);not null;default:0"`
	MaxAmount     *decimal.Decimal     `gorm:"column:max_amount;type:numeric(12,2)"`
	EffectiveFrom time.Time            `gorm:"column:effective_from;not null"`
	EffectiveTo   *time.Time           `gorm:"column:effective_to"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
