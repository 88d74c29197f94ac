package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/types"
)

// Bid is a partner's offer to carry a delivery at a quoted amount. A partial
// unique index in the migrations guarantees at most one pending bid per
// (delivery, partner) pair.
type Bid struct {
	ID                       uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DeliveryID               uuid.UUID             `gorm:"column:delivery_id;type:uuid;not null;index"`
	PartnerID                uuid.UUID             `gorm:"column:partner_id;type:uuid;not null;index"`
	Amount                   decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency                 enums.Currency        `gorm:"column:currency;not null;default:'INR'"`
	Status                   enums.BidStatus       `gorm:"column:status;type:bid_status_enum;not null;default:'pending';index"`
	Note                     *string               `gorm:"column:note"`
	RejectionReason          *string               `gorm:"column:rejection_reason"`
	ExceedsMaxRate           bool                  `gorm:"column:exceeds_max_rate;not null;default:false"`
	SubmitterPoint           *types.GeographyPoint `gorm:"column:submitter_point;type:geography(Point,4326)"`
	DistanceToPickupKm       *float64              `gorm:"column:distance_to_pickup_km;type:numeric(8,2)"`
	EstimatedPickupMinutes   *int                  `gorm:"column:estimated_pickup_minutes"`
	EstimatedDeliveryMinutes *int                  `gorm:"column:estimated_delivery_minutes"`
	ExpiresAt                time.Time             `gorm:"column:expires_at;not null"`
	AcceptedAt               *time.Time            `gorm:"column:accepted_at"`
	ResolvedAt               *time.Time            `gorm:"column:resolved_at"`
	CreatedAt                time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
