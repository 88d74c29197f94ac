package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/api/responses"
	"github.com/swifthaul/swifthaul-backend/api/validators"
	"github.com/swifthaul/swifthaul-backend/internal/pricing"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	pkgerrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/geo"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

// PricingService is the surface the quote handlers depend on.
type PricingService interface {
	QuoteForPartner(ctx context.Context, partnerID uuid.UUID, in pricing.QuoteInput) (*pricing.Quote, error)
	CompareQuotes(ctx context.Context, in pricing.QuoteInput) ([]pricing.Quote, error)
}

type quoteRequest struct {
	PickupLat float64         `json:"pickup_lat" validate:"required,gte=-90,lte=90"`
	PickupLng float64         `json:"pickup_lng" validate:"required,gte=-180,lte=180"`
	DropLat   float64         `json:"drop_lat" validate:"required,gte=-90,lte=90"`
	DropLng   float64         `json:"drop_lng" validate:"required,gte=-180,lte=180"`
	WeightKg  decimal.Decimal `json:"weight_kg" validate:"required"`
	Priority  string          `json:"priority,omitempty"`
	PickupAt  *time.Time      `json:"pickup_at,omitempty"`
}

func (q quoteRequest) toInput(now time.Time) (pricing.QuoteInput, error) {
	priority := enums.DeliveryPriorityStandard
	if q.Priority != "" {
		parsed, err := enums.ParseDeliveryPriority(q.Priority)
		if err != nil {
			return pricing.QuoteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
		priority = parsed
	}
	if !q.WeightKg.IsPositive() {
		return pricing.QuoteInput{}, pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive")
	}

	distance := geo.DistanceKm(q.PickupLat, q.PickupLng, q.DropLat, q.DropLng)
	if distance <= 0 {
		return pricing.QuoteInput{}, pkgerrors.New(pkgerrors.CodeValidation, "pickup and drop must be distinct points")
	}

	pickupAt := now
	if q.PickupAt != nil {
		pickupAt = *q.PickupAt
	}

	return pricing.QuoteInput{
		DistanceKm: distance,
		WeightKg:   q.WeightKg,
		Priority:   priority,
		PickupAt:   pickupAt,
	}, nil
}

// CompareQuotes prices a prospective delivery against every active rate
// card, cheapest first. The first total is the estimate that anchors bid
// bounds.
func CompareQuotes(svc PricingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput(time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotes, err := svc.CompareQuotes(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"estimated_cost": quotes[0].Total,
			"quotes":         quotes,
		})
	}
}

// QuoteMyRate prices a prospective delivery against the authenticated
// partner's own active rate card.
func QuoteMyRate(svc PricingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput(time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.QuoteForPartner(r.Context(), partnerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
