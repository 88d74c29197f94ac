package enums

import "fmt"

// CommissionType selects how an intermediary's commission is resolved.
type CommissionType string

const (
	CommissionTypePercentage CommissionType = "percentage"
	CommissionTypeFlat       CommissionType = "flat"
	CommissionTypeHybrid     CommissionType = "hybrid"
)

var validCommissionTypes = []CommissionType{
	CommissionTypePercentage,
	CommissionTypeFlat,
	CommissionTypeHybrid,
}

// String implements fmt.Stringer.
func (c CommissionType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CommissionType.
func (c CommissionType) IsValid() bool {
	for _, candidate := range validCommissionTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCommissionType converts raw input into a CommissionType.
func ParseCommissionType(value string) (CommissionType, error) {
	for _, candidate := range validCommissionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid commission type %q", value)
}

// CommissionMethod records which resolution branch produced a commission
// amount, mainly for audit trails on hybrid configs.
type CommissionMethod string

const (
	CommissionMethodPercentage CommissionMethod = "percentage"
	CommissionMethodFlat       CommissionMethod = "flat"
	CommissionMethodFloor      CommissionMethod = "minimum_floor"
)
