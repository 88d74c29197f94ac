package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateDelivery   OutboxAggregateType = "delivery"
	AggregateBid        OutboxAggregateType = "bid"
	AggregateSettlement OutboxAggregateType = "settlement"
	AggregateRateCard   OutboxAggregateType = "rate_card"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateDelivery,
	AggregateBid,
	AggregateSettlement,
	AggregateRateCard,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventBidSubmitted      OutboxEventType = "bid_submitted"
	EventBidAccepted       OutboxEventType = "bid_accepted"
	EventBidRejected       OutboxEventType = "bid_rejected"
	EventBidWithdrawn      OutboxEventType = "bid_withdrawn"
	EventBidExpired        OutboxEventType = "bid_expired"
	EventDeliveryAssigned  OutboxEventType = "delivery_assigned"
	EventSettlementCreated OutboxEventType = "settlement_created"
	EventRateCardUpdated   OutboxEventType = "rate_card_updated"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBidSubmitted,
	EventBidAccepted,
	EventBidRejected,
	EventBidWithdrawn,
	EventBidExpired,
	EventDeliveryAssigned,
	EventSettlementCreated,
	EventRateCardUpdated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
