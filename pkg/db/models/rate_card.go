package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

// RateCard holds a partner's pricing inputs. Cards are versioned: updates
// close the current card via effective_to and insert a fresh row, so quotes
// computed against an old card stay reproducible.
type RateCard struct {
	ID                       uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartnerID                uuid.UUID       `gorm:"column:partner_id;type:uuid;not null;index"`
	BaseFare                 decimal.Decimal `gorm:"column:base_fare;type:numeric(12,2);not null"`
	PerKmRate                decimal.Decimal `gorm:"column:per_km_rate;type:numeric(12,2);not null"`
	PerKgRate                decimal.Decimal `gorm:"column:per_kg_rate;type:numeric(12,2);not null"`
	MinCharge                decimal.Decimal `gorm:"column:min_charge;type:numeric(12,2);not null"`
	PrioritySurchargePercent decimal.Decimal `gorm:"column:priority_surcharge_percent;type:numeric(5,2);not null;default:0"`
	PeakHourSurchargePercent decimal.Decimal `gorm:"column:peak_hour_surcharge_percent;type:numeric(5,2);not null;default:0"`
	AcceptsPriority          bool            `gorm:"column:accepts_priority;not null;default:true"`
	MaxServiceDistanceKm     *float64        `gorm:"column:max_service_distance_km;type:numeric(8,2)"`
	Currency                 enums.Currency  `gorm:"column:currency;not null;default:'INR'"`
	EffectiveFrom            time.Time       `gorm:"column:effective_from;not null"`
	EffectiveTo              *time.Time      `gorm:"column:effective_to"`
	CreatedAt                time.Time       `gorm:"column:created_at;autoCreateTime"`
}
