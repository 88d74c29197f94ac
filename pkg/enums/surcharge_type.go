package enums

// SurchargeType labels a line in a price breakdown.
type SurchargeType string

const (
	SurchargeTypePriority SurchargeType = "priority"
	SurchargeTypePeakHour SurchargeType = "peak_hour"
)

// String implements fmt.Stringer.
func (s SurchargeType) String() string {
	return string(s)
}
