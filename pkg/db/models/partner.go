package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

// Partner is a delivery partner that competes for deliveries via bids.
type Partner struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string          `gorm:"column:name;not null"`
	Phone      string          `gorm:"column:phone;not null;uniqueIndex"`
	ManagerID  *uuid.UUID      `gorm:"column:manager_id;type:uuid"`
	MaxBidRate decimal.Decimal `gorm:"column:max_bid_rate;type:numeric(12,2);not null;default:0"`
	Currency   enums.Currency  `gorm:"column:currency;not null;default:'INR'"`
	Active     bool            `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
