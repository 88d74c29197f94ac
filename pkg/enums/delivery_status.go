package enums

import "fmt"

// DeliveryStatus tracks the lifecycle of a delivery request.
type DeliveryStatus string

const (
	DeliveryStatusCreated   DeliveryStatus = "created"
	DeliveryStatusMatching  DeliveryStatus = "matching"
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
	DeliveryStatusExpired   DeliveryStatus = "expired"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusCreated,
	DeliveryStatusMatching,
	DeliveryStatusAssigned,
	DeliveryStatusPickedUp,
	DeliveryStatusInTransit,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
	DeliveryStatusExpired,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsOpenForBidding reports whether partners may still place bids.
func (d DeliveryStatus) IsOpenForBidding() bool {
	return d == DeliveryStatusCreated || d == DeliveryStatusMatching
}

// IsAssignedOrLater reports whether a partner must be attached to the
// delivery in this state.
func (d DeliveryStatus) IsAssignedOrLater() bool {
	switch d {
	case DeliveryStatusAssigned, DeliveryStatusPickedUp, DeliveryStatusInTransit, DeliveryStatusDelivered:
		return true
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
