package partners

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/types"
)

// CreatePartnerInput carries the fields needed to onboard a partner.
type CreatePartnerInput struct {
	Name       string          `json:"name" validate:"required"`
	Phone      string          `json:"phone" validate:"required,e164"`
	ManagerID  *uuid.UUID      `json:"manager_id,omitempty"`
	MaxBidRate decimal.Decimal `json:"max_bid_rate"`
	Currency   enums.Currency  `json:"currency,omitempty"`
}

// RateCardInput is the payload for versioning in a new rate card. An omitted
// accepts_priority defaults to true; max_service_distance_km unset means the
// partner takes trips of any length.
type RateCardInput struct {
	BaseFare                 decimal.Decimal `json:"base_fare" validate:"required"`
	PerKmRate                decimal.Decimal `json:"per_km_rate" validate:"required"`
	PerKgRate                decimal.Decimal `json:"per_kg_rate" validate:"required"`
	MinCharge                decimal.Decimal `json:"min_charge" validate:"required"`
	PrioritySurchargePercent decimal.Decimal `json:"priority_surcharge_percent"`
	PeakHourSurchargePercent decimal.Decimal `json:"peak_hour_surcharge_percent"`
	AcceptsPriority          *bool           `json:"accepts_priority,omitempty"`
	MaxServiceDistanceKm     *float64        `json:"max_service_distance_km,omitempty" validate:"omitempty,gt=0"`
	Currency                 enums.Currency  `json:"currency,omitempty"`
}

// ServiceAreaInput sets a partner's operating circle and direction preference.
type ServiceAreaInput struct {
	CenterLat          float64         `json:"center_lat" validate:"min=-90,max=90"`
	CenterLng          float64         `json:"center_lng" validate:"min=-180,max=180"`
	RadiusKm           float64         `json:"radius_km" validate:"required,gt=0"`
	PreferredDirection enums.Direction `json:"preferred_direction,omitempty"`
}

// DirectionMatchResult reports whether a destination fits the partner's
// service area. Direction and radius are evaluated independently so the
// client can tell which constraint failed.
type DirectionMatchResult struct {
	PartnerID          uuid.UUID       `json:"partner_id"`
	PreferredDirection enums.Direction `json:"preferred_direction"`
	DirectionMatches   bool            `json:"direction_matches"`
	WithinRadius       bool            `json:"within_radius"`
	DistanceKm         float64         `json:"distance_km"`
}

// ServiceAreaView is the read model including the rendered circle boundary.
type ServiceAreaView struct {
	PartnerID          uuid.UUID              `json:"partner_id"`
	Center             types.GeographyPoint   `json:"center"`
	RadiusKm           float64                `json:"radius_km"`
	PreferredDirection enums.Direction        `json:"preferred_direction"`
	Boundary           []types.GeographyPoint `json:"boundary"`
}
