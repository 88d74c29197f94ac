package bidding

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/internal/pricing"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

// SubmitBidInput carries a partner's offer for a delivery. The submitter
// coordinates and ETA estimates are optional context for the requester.
type SubmitBidInput struct {
	DeliveryID               uuid.UUID       `json:"delivery_id" validate:"required"`
	PartnerID                uuid.UUID       `json:"-"`
	Amount                   decimal.Decimal `json:"amount" validate:"required"`
	Note                     *string         `json:"note,omitempty"`
	SubmitterLat             *float64        `json:"submitter_lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	SubmitterLng             *float64        `json:"submitter_lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
	EstimatedPickupMinutes   *int            `json:"estimated_pickup_minutes,omitempty" validate:"omitempty,gte=0"`
	EstimatedDeliveryMinutes *int            `json:"estimated_delivery_minutes,omitempty" validate:"omitempty,gte=0"`
}

// ValidateBidInput asks whether an amount would be accepted for a delivery.
type ValidateBidInput struct {
	DeliveryID uuid.UUID       `json:"delivery_id" validate:"required"`
	PartnerID  uuid.UUID       `json:"-"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
}

// ValidateBidResult reports the allowed range and advisory flags for a bid
// amount. ExceedsMaxRate never blocks submission; it is surfaced to the
// requester alongside the bid.
type ValidateBidResult struct {
	Valid          bool              `json:"valid"`
	Bounds         pricing.BidBounds `json:"bounds"`
	ExceedsMaxRate bool              `json:"exceeds_max_rate"`
	Reason         string            `json:"reason,omitempty"`
}

// EligibleDeliveriesQuery filters and positions the eligibility feed. Lat and
// Lng are the partner's current position; when present the feed is sorted
// nearest pickup first.
type EligibleDeliveriesQuery struct {
	Lat   *float64
	Lng   *float64
	Limit int
}

// EligibleDelivery is an open delivery matched to the partner's service area,
// annotated with the auction state the partner needs to decide on a bid.
// PickupDistanceKm is measured from the partner's current position and is nil
// when no position was supplied.
type EligibleDelivery struct {
	Delivery         models.Delivery   `json:"delivery"`
	PickupDistanceKm *float64          `json:"pickup_distance_km,omitempty"`
	DropBearing      float64           `json:"drop_bearing"`
	OwnBid           *models.Bid       `json:"own_bid,omitempty"`
	BidCount         int               `json:"bid_count"`
	LowestBid        *decimal.Decimal  `json:"lowest_bid,omitempty"`
	Bounds           pricing.BidBounds `json:"bounds"`
}

// ListBidsQuery filters partner bid history.
type ListBidsQuery struct {
	Status *enums.BidStatus
	Limit  int
	Cursor string
}

// BidPage is one cursor page of bids.
type BidPage struct {
	Bids       []models.Bid `json:"bids"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// AcceptResult reports the outcome of the acceptance cascade.
type AcceptResult struct {
	Bid            models.Bid      `json:"bid"`
	Delivery       models.Delivery `json:"delivery"`
	RejectedBidIDs []uuid.UUID     `json:"rejected_bid_ids"`
	AcceptedAt     time.Time       `json:"accepted_at"`
}
