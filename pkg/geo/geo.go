// Package geo contains pure geographic computation helpers used by the
// bidding and pricing services. Coordinates are decimal degrees.
package geo

import (
	"math"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/types"
)

const earthRadiusKm = 6371.0

// DefaultCirclePoints is the polygon resolution for service-area previews.
const DefaultCirclePoints = 36

// DistanceKm returns the great-circle distance in kilometres between two
// points, rounded to two decimal places.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return round2(earthRadiusKm * c)
}

// BearingDegrees returns the initial compass bearing from point 1 to point 2,
// normalized into [0, 360).
func BearingDegrees(lat1, lng1, lat2, lng2 float64) float64 {
	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)
	dLng := degreesToRadians(lng2 - lng1)

	y := math.Sin(dLng) * math.Cos(rLat2)
	x := math.Cos(rLat1)*math.Sin(rLat2) -
		math.Sin(rLat1)*math.Cos(rLat2)*math.Cos(dLng)

	bearing := radiansToDegrees(math.Atan2(y, x))
	return math.Mod(bearing+360, 360)
}

// CircleBoundary generates a closed polygon approximating a circle of the
// given radius around the center. The first vertex is repeated at the end so
// clients can draw it directly. points <= 0 falls back to
// DefaultCirclePoints.
func CircleBoundary(centerLat, centerLng, radiusKm float64, points int) []types.GeographyPoint {
	if points <= 0 {
		points = DefaultCirclePoints
	}

	rLat := degreesToRadians(centerLat)
	rLng := degreesToRadians(centerLng)
	angular := radiusKm / earthRadiusKm

	boundary := make([]types.GeographyPoint, 0, points+1)
	for i := 0; i < points; i++ {
		theta := degreesToRadians(float64(i) * 360 / float64(points))

		lat := math.Asin(math.Sin(rLat)*math.Cos(angular) +
			math.Cos(rLat)*math.Sin(angular)*math.Cos(theta))
		lng := rLng + math.Atan2(
			math.Sin(theta)*math.Sin(angular)*math.Cos(rLat),
			math.Cos(angular)-math.Sin(rLat)*math.Sin(lat),
		)

		boundary = append(boundary, types.GeographyPoint{
			Lat: radiansToDegrees(lat),
			Lng: radiansToDegrees(lng),
		})
	}
	boundary = append(boundary, boundary[0])
	return boundary
}

// MatchesDirection reports whether the destination lies within the 90-degree
// sector centered on the preferred cardinal direction, as seen from the
// service-area center. DirectionAny always matches.
func MatchesDirection(centerLat, centerLng, destLat, destLng float64, direction enums.Direction) bool {
	if direction == enums.DirectionAny || direction == "" {
		return true
	}

	bearing := BearingDegrees(centerLat, centerLng, destLat, destLng)
	switch direction {
	case enums.DirectionNorth:
		return bearing >= 315 || bearing < 45
	case enums.DirectionEast:
		return bearing >= 45 && bearing < 135
	case enums.DirectionSouth:
		return bearing >= 135 && bearing < 225
	case enums.DirectionWest:
		return bearing >= 225 && bearing < 315
	}
	return false
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
