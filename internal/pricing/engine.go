package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/config"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

var percentDivisor = decimal.NewFromInt(100)

// QuoteInput carries the delivery attributes a quote is computed from.
type QuoteInput struct {
	DistanceKm float64
	WeightKg   decimal.Decimal
	Priority   enums.DeliveryPriority
	PickupAt   time.Time
}

// Surcharge is a single percentage uplift applied on top of the subtotal.
type Surcharge struct {
	Type    enums.SurchargeType `json:"type"`
	Percent decimal.Decimal     `json:"percent"`
	Amount  decimal.Decimal     `json:"amount"`
}

// Quote is the full cost breakdown for one partner's rate card.
type Quote struct {
	RateCard         models.RateCard `json:"-"`
	BaseFare         decimal.Decimal `json:"base_fare"`
	DistanceCost     decimal.Decimal `json:"distance_cost"`
	WeightCost       decimal.Decimal `json:"weight_cost"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	MinChargeApplied bool            `json:"min_charge_applied"`
	Surcharges       []Surcharge     `json:"surcharges"`
	TaxPercent       decimal.Decimal `json:"tax_percent"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Total            decimal.Decimal `json:"total"`
	Currency         enums.Currency  `json:"currency"`
}

// BidBounds is the allowed bid range derived from an estimated cost.
type BidBounds struct {
	Min                decimal.Decimal `json:"min"`
	Max                decimal.Decimal `json:"max"`
	CappedByPartnerMax bool            `json:"capped_by_partner_max"`
}

// Engine computes deterministic cost breakdowns. All monetary intermediate
// values stay unrounded; only the externally visible fields are rounded to
// two decimal places.
type Engine struct {
	cfg config.PricingConfig
}

func NewEngine(cfg config.PricingConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Quote prices the input against a single rate card.
//
// subtotal = max(base + per_km*distance + per_kg*weight, min_charge),
// surcharges apply on the subtotal, tax applies on subtotal + surcharges.
func (e *Engine) Quote(card models.RateCard, in QuoteInput) Quote {
	distance := decimal.NewFromFloat(in.DistanceKm)

	distanceCost := card.PerKmRate.Mul(distance)
	weightCost := card.PerKgRate.Mul(in.WeightKg)
	subtotal := card.BaseFare.Add(distanceCost).Add(weightCost)

	minApplied := false
	if subtotal.LessThan(card.MinCharge) {
		subtotal = card.MinCharge
		minApplied = true
	}

	surcharges := e.surchargesFor(card, in, subtotal)
	surchargeTotal := decimal.Zero
	for _, s := range surcharges {
		surchargeTotal = surchargeTotal.Add(s.Amount)
	}

	taxable := subtotal.Add(surchargeTotal)
	taxAmount := taxable.Mul(e.cfg.TaxRatePercent).Div(percentDivisor)
	total := taxable.Add(taxAmount)

	return Quote{
		RateCard:         card,
		BaseFare:         card.BaseFare.Round(2),
		DistanceCost:     distanceCost.Round(2),
		WeightCost:       weightCost.Round(2),
		Subtotal:         subtotal.Round(2),
		MinChargeApplied: minApplied,
		Surcharges:       surcharges,
		TaxPercent:       e.cfg.TaxRatePercent,
		TaxAmount:        taxAmount.Round(2),
		Total:            total.Round(2),
		Currency:         card.Currency,
	}
}

func (e *Engine) surchargesFor(card models.RateCard, in QuoteInput, subtotal decimal.Decimal) []Surcharge {
	surcharges := []Surcharge{}

	if in.Priority == enums.DeliveryPriorityASAP && card.AcceptsPriority && card.PrioritySurchargePercent.IsPositive() {
		surcharges = append(surcharges, Surcharge{
			Type:    enums.SurchargeTypePriority,
			Percent: card.PrioritySurchargePercent,
			Amount:  subtotal.Mul(card.PrioritySurchargePercent).Div(percentDivisor).Round(2),
		})
	}

	if e.IsPeakHour(in.PickupAt) && card.PeakHourSurchargePercent.IsPositive() {
		surcharges = append(surcharges, Surcharge{
			Type:    enums.SurchargeTypePeakHour,
			Percent: card.PeakHourSurchargePercent,
			Amount:  subtotal.Mul(card.PeakHourSurchargePercent).Div(percentDivisor).Round(2),
		})
	}

	return surcharges
}

// IsPeakHour reports whether t falls inside the morning or evening peak
// window. Windows are half-open hour ranges: [start, end).
func (e *Engine) IsPeakHour(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	hour := t.Hour()
	morning := hour >= e.cfg.PeakMorningStart && hour < e.cfg.PeakMorningEnd
	evening := hour >= e.cfg.PeakEveningStart && hour < e.cfg.PeakEveningEnd
	return morning || evening
}

// BidBounds derives the allowed bid range from an estimated cost. The upper
// bound is additionally capped by the partner's max bid rate when one is set.
func (e *Engine) BidBounds(estimated, partnerMax decimal.Decimal) BidBounds {
	min := estimated.Mul(e.cfg.MinBidFactor).Round(2)
	max := estimated.Mul(e.cfg.MaxBidFactor).Round(2)

	capped := false
	if partnerMax.IsPositive() && max.GreaterThan(partnerMax) {
		max = partnerMax.Round(2)
		capped = true
	}

	return BidBounds{Min: min, Max: max, CappedByPartnerMax: capped}
}
