package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swifthaul/swifthaul-backend/api/responses"
	"github.com/swifthaul/swifthaul-backend/api/validators"
	"github.com/swifthaul/swifthaul-backend/internal/settlement"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	pkgerrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

// SettlementsService is the surface the settlement handlers depend on.
type SettlementsService interface {
	MarkPaid(ctx context.Context, settlementID uuid.UUID) (*models.Settlement, error)
	GetForDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.Settlement, error)
	ListForPartner(ctx context.Context, partnerID uuid.UUID, query settlement.ListSettlementsQuery) (*settlement.SettlementPage, error)
	Earnings(ctx context.Context, partnerID uuid.UUID, from, to time.Time) (*settlement.EarningsSummary, error)
}

// ListMySettlements pages through the partner's settlements.
func ListMySettlements(svc SettlementsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultPageLimit, 1, maxPageLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := settlement.ListSettlementsQuery{Limit: limit, Cursor: cursorParam(r)}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseSettlementStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			query.Status = &status
		}

		page, err := svc.ListForPartner(r.Context(), partnerID, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetMyEarnings aggregates the partner's settlements over a window. The
// window defaults to the trailing 30 days.
func GetMyEarnings(svc SettlementsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now().UTC()
		from, err := validators.ParseQueryTime(r, "from", now.AddDate(0, 0, -30))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to", now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Earnings(r.Context(), partnerID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// GetDeliverySettlement returns the settlement for one delivery.
func GetDeliverySettlement(svc SettlementsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deliveryID, err := validators.ParsePathUUID(chi.URLParam(r, "deliveryID"), "deliveryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetForDelivery(r.Context(), deliveryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// MarkSettlementPaid records the payout for a settlement. Manager only.
func MarkSettlementPaid(svc SettlementsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settlementID, err := validators.ParsePathUUID(chi.URLParam(r, "settlementID"), "settlementID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.MarkPaid(r.Context(), settlementID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}
