package enums

import "fmt"

// Direction is the cardinal sector a partner restricts drop-offs to.
type Direction string

const (
	DirectionAny   Direction = "any"
	DirectionNorth Direction = "north"
	DirectionEast  Direction = "east"
	DirectionSouth Direction = "south"
	DirectionWest  Direction = "west"
)

var validDirections = []Direction{
	DirectionAny,
	DirectionNorth,
	DirectionEast,
	DirectionSouth,
	DirectionWest,
}

// String implements fmt.Stringer.
func (d Direction) String() string {
	return string(d)
}

// IsValid reports whether the value is a known Direction.
func (d Direction) IsValid() bool {
	for _, candidate := range validDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDirection converts raw input into a Direction.
func ParseDirection(value string) (Direction, error) {
	for _, candidate := range validDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid direction %q", value)
}
