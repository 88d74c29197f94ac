package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/types"
)

// ServiceArea is the circular region a partner serves, plus an optional
// preferred travel direction used when listing eligible deliveries.
type ServiceArea struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartnerID          uuid.UUID            `gorm:"column:partner_id;type:uuid;not null;uniqueIndex"`
	CenterPoint        types.GeographyPoint `gorm:"column:center_point;type:geography(Point,4326);not null"`
	RadiusKm           float64              `gorm:"column:radius_km;type:numeric(6,2);not null"`
	PreferredDirection enums.Direction      `gorm:"column:preferred_direction;type:direction_enum;not null;default:'any'"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
