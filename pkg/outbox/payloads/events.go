package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

// BidSubmittedEvent is emitted when a partner places a new bid.
type BidSubmittedEvent struct {
	BidID              uuid.UUID       `json:"bid_id"`
	DeliveryID         uuid.UUID       `json:"delivery_id"`
	PartnerID          uuid.UUID       `json:"partner_id"`
	Amount             decimal.Decimal `json:"amount"`
	ExceedsMaxRate     bool            `json:"exceeds_max_rate"`
	DistanceToPickupKm *float64        `json:"distance_to_pickup_km,omitempty"`
	ExpiresAt          time.Time       `json:"expires_at"`
}

// BidAcceptedEvent signals the winning bid of a delivery auction.
type BidAcceptedEvent struct {
	BidID        uuid.UUID       `json:"bid_id"`
	DeliveryID   uuid.UUID       `json:"delivery_id"`
	PartnerID    uuid.UUID       `json:"partner_id"`
	AgreedAmount decimal.Decimal `json:"agreed_amount"`
	AcceptedAt   time.Time       `json:"accepted_at"`
}

// BidRejectedEvent is emitted for every losing bid in the acceptance cascade
// and for bids rejected directly by the requester.
type BidRejectedEvent struct {
	BidID      uuid.UUID `json:"bid_id"`
	DeliveryID uuid.UUID `json:"delivery_id"`
	PartnerID  uuid.UUID `json:"partner_id"`
	Reason     string    `json:"reason,omitempty"`
}

// BidWithdrawnEvent is emitted when a partner pulls back a pending bid.
type BidWithdrawnEvent struct {
	BidID      uuid.UUID `json:"bid_id"`
	DeliveryID uuid.UUID `json:"delivery_id"`
	PartnerID  uuid.UUID `json:"partner_id"`
}

// BidExpiredEvent is emitted when a pending bid passes its expiry time.
type BidExpiredEvent struct {
	BidID      uuid.UUID `json:"bid_id"`
	DeliveryID uuid.UUID `json:"delivery_id"`
	PartnerID  uuid.UUID `json:"partner_id"`
	ExpiredAt  time.Time `json:"expired_at"`
}

// DeliveryAssignedEvent is the requester-facing assignment notification.
type DeliveryAssignedEvent struct {
	DeliveryID   uuid.UUID       `json:"delivery_id"`
	RequesterID  uuid.UUID       `json:"requester_id"`
	PartnerID    uuid.UUID       `json:"partner_id"`
	BidID        uuid.UUID       `json:"bid_id"`
	AgreedAmount decimal.Decimal `json:"agreed_amount"`
}

// SettlementCreatedEvent reports the settlement split for a delivered shipment.
type SettlementCreatedEvent struct {
	SettlementID     uuid.UUID              `json:"settlement_id"`
	DeliveryID       uuid.UUID              `json:"delivery_id"`
	PartnerID        uuid.UUID              `json:"partner_id"`
	GrossAmount      decimal.Decimal        `json:"gross_amount"`
	PlatformFee      decimal.Decimal        `json:"platform_fee_amount"`
	CommissionAmount decimal.Decimal        `json:"commission_amount"`
	NetEarning       decimal.Decimal        `json:"net_earning"`
	Method           enums.CommissionMethod `json:"method"`
}

// RateCardUpdatedEvent is emitted when a partner's pricing changes.
type RateCardUpdatedEvent struct {
	RateCardID    uuid.UUID `json:"rate_card_id"`
	PartnerID     uuid.UUID `json:"partner_id"`
	EffectiveFrom time.Time `json:"effective_from"`
}
