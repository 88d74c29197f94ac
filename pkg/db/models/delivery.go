package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/types"
)

// Delivery is a shipment request that moves through the bidding lifecycle.
type Delivery struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequesterID       uuid.UUID              `gorm:"column:requester_id;type:uuid;not null;index"`
	Status            enums.DeliveryStatus   `gorm:"column:status;type:delivery_status_enum;not null;default:'created';index"`
	Priority          enums.DeliveryPriority `gorm:"column:priority;type:delivery_priority_enum;not null;default:'standard'"`
	PickupPoint       types.GeographyPoint   `gorm:"column:pickup_point;type:geography(Point,4326);not null"`
	PickupAddress     string                 `gorm:"column:pickup_address;not null"`
	DropPoint         types.GeographyPoint   `gorm:"column:drop_point;type:geography(Point,4326);not null"`
	DropAddress       string                 `gorm:"column:drop_address;not null"`
	DistanceKm        float64                `gorm:"column:distance_km;type:numeric(8,2);not null"`
	WeightKg          decimal.Decimal        `gorm:"column:weight_kg;type:numeric(8,2);not null"`
	EstimatedCost     decimal.Decimal        `gorm:"column:estimated_cost;type:numeric(12,2);not null"`
	Currency          enums.Currency         `gorm:"column:currency;not null;default:'INR'"`
	AssignedPartnerID *uuid.UUID             `gorm:"column:assigned_partner_id;type:uuid;index"`
	AcceptedBidID     *uuid.UUID             `gorm:"column:accepted_bid_id;type:uuid"`
	AgreedAmount      *decimal.Decimal       `gorm:"column:agreed_amount;type:numeric(12,2)"`
	BiddingClosesAt   time.Time              `gorm:"column:bidding_closes_at;not null"`
	AssignedAt        *time.Time             `gorm:"column:assigned_at"`
	DeliveredAt       *time.Time             `gorm:"column:delivered_at"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
