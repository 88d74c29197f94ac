package enums

import "fmt"

// DeliveryPriority distinguishes standard deliveries from rush requests.
type DeliveryPriority string

const (
	DeliveryPriorityStandard DeliveryPriority = "standard"
	DeliveryPriorityASAP     DeliveryPriority = "asap"
)

var validDeliveryPriorities = []DeliveryPriority{
	DeliveryPriorityStandard,
	DeliveryPriorityASAP,
}

// String implements fmt.Stringer.
func (p DeliveryPriority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known DeliveryPriority.
func (p DeliveryPriority) IsValid() bool {
	for _, candidate := range validDeliveryPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseDeliveryPriority converts raw input into a DeliveryPriority.
func ParseDeliveryPriority(value string) (DeliveryPriority, error) {
	for _, candidate := range validDeliveryPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery priority %q", value)
}
