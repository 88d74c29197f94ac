package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/api/responses"
	"github.com/swifthaul/swifthaul-backend/api/validators"
	"github.com/swifthaul/swifthaul-backend/internal/partners"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

// PartnersService is the surface the partner handlers depend on.
type PartnersService interface {
	CreatePartner(ctx context.Context, input partners.CreatePartnerInput) (*models.Partner, error)
	GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	UpdateMaxBidRate(ctx context.Context, partnerID uuid.UUID, rate decimal.Decimal) (*models.Partner, error)
	ActiveRateCard(ctx context.Context, partnerID uuid.UUID) (*models.RateCard, error)
	UpdateRateCard(ctx context.Context, partnerID uuid.UUID, input partners.RateCardInput) (*models.RateCard, error)
	RateCardHistory(ctx context.Context, partnerID uuid.UUID) ([]models.RateCard, error)
	SetServiceArea(ctx context.Context, partnerID uuid.UUID, input partners.ServiceAreaInput) (*partners.ServiceAreaView, error)
	GetServiceArea(ctx context.Context, partnerID uuid.UUID) (*partners.ServiceAreaView, error)
	CheckDirectionMatch(ctx context.Context, partnerID uuid.UUID, destLat, destLng float64) (*partners.DirectionMatchResult, error)
}

// CreatePartner onboards a delivery partner. Manager only.
func CreatePartner(svc PartnersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input partners.CreatePartnerInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Name = validators.SanitizeString(input.Name, 200)

		partner, err := svc.CreatePartner(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, partner)
	}
}

// GetPartner returns one partner's profile. Manager only.
func GetPartner(svc PartnersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := validators.ParsePathUUID(chi.URLParam(r, "partnerID"), "partnerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := svc.GetPartner(r.Context(), partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, partner)
	}
}

// GetMyPartner returns the authenticated partner's own profile.
func GetMyPartner(svc PartnersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := svc.GetPartner(r.Context(), partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, partner)
	}
}

type maxBidRateRequest struct {
	MaxBidRate decimal.Decimal `json:"max_bid_rate" validate:"required"`
}

// UpdateMaxBidRate sets the advisory ceiling surfaced when the partner bids
// above it.
func UpdateMaxBidRate(svc PartnersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req maxBidRateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := svc.UpdateMaxBidRate(r.Context(), partnerID, req.MaxBidRate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, partner)
	}
}

// GetRateCard returns the partner's active rate card.
func GetRateCard(svc PartnersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		card, err := svc.ActiveRateCard(r.Context(), partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, card)
	}
}

// UpdateRateCard versions in a new rate card, closing out the previous one.
func UpdateRateCard(svc PartnersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input partners.RateCardInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		card, err := svc.UpdateRateCard(r.Context(), partnerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, card)
	}
}

// GetRateCardHistory lists the partner's rate card versions, newest first.
func GetRateCardHistory(svc PartnersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cards, err := svc.RateCardHistory(r.Context(), partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cards)
	}
}

// SetServiceArea replaces the partner's operating circle.
func SetServiceArea(svc PartnersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input partners.ServiceAreaInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		area, err := svc.SetServiceArea(r.Context(), partnerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, area)
	}
}

// GetServiceArea returns the partner's operating circle with its rendered
// boundary.
func GetServiceArea(svc PartnersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		area, err := svc.GetServiceArea(r.Context(), partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, area)
	}
}

// CheckDirectionMatch evaluates a destination point against the partner's
// service area without listing deliveries.
func CheckDirectionMatch(svc PartnersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		destLat, err := validators.ParseQueryFloat(r, "lat", -90, 90)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		destLng, err := validators.ParseQueryFloat(r, "lng", -180, 180)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CheckDirectionMatch(r.Context(), partnerID, destLat, destLng)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
