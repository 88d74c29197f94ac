package deliveries

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

// CreateDeliveryInput carries a requester's new shipment request.
type CreateDeliveryInput struct {
	RequesterID   uuid.UUID       `json:"-"`
	PickupLat     float64         `json:"pickup_lat" validate:"required,gte=-90,lte=90"`
	PickupLng     float64         `json:"pickup_lng" validate:"required,gte=-180,lte=180"`
	DropLat       float64         `json:"drop_lat" validate:"required,gte=-90,lte=90"`
	DropLng       float64         `json:"drop_lng" validate:"required,gte=-180,lte=180"`
	PickupAddress string          `json:"pickup_address" validate:"required,max=500"`
	DropAddress   string          `json:"drop_address" validate:"required,max=500"`
	WeightKg      decimal.Decimal `json:"weight_kg" validate:"required"`
	Priority      string          `json:"priority,omitempty"`
}

// ListDeliveriesQuery filters a requester's delivery history.
type ListDeliveriesQuery struct {
	Status *enums.DeliveryStatus
	Limit  int
	Cursor string
}

// DeliveryPage is one cursor page of deliveries.
type DeliveryPage struct {
	Deliveries []models.Delivery `json:"deliveries"`
	NextCursor string            `json:"next_cursor,omitempty"`
}
