package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

// Settlement records the commission split for a delivered shipment. One row
// per delivery, enforced by a unique index.
type Settlement struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DeliveryID       uuid.UUID              `gorm:"column:delivery_id;type:uuid;not null;uniqueIndex"`
	PartnerID        uuid.UUID              `gorm:"column:partner_id;type:uuid;not null;index"`
	GrossAmount      decimal.Decimal        `gorm:"column:gross_amount;type:numeric(12,2);not null"`
	PlatformFee      decimal.Decimal        `gorm:"column:platform_fee_amount;type:numeric(12,2);not null;default:0"`
	CommissionAmount decimal.Decimal        `gorm:"column:commission_amount;type:numeric(12,2);not null"`
	CommissionGST    decimal.Decimal        `gorm:"column:commission_gst;type:numeric(12,2);not null"`
	NetEarning       decimal.Decimal        `gorm:"column:net_earning;type:numeric(12,2);not null"`
	Method           enums.CommissionMethod `gorm:"column:method;not null"`
	Status           enums.SettlementStatus `gorm:"column:status;type:settlement_status_enum;not null;default:'pending';index"`
	Currency         enums.Currency         `gorm:"column:currency;not null;default:'INR'"`
	PaidAt           *time.Time             `gorm:"column:paid_at"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
