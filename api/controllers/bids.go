package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swifthaul/swifthaul-backend/api/responses"
	"github.com/swifthaul/swifthaul-backend/api/validators"
	"github.com/swifthaul/swifthaul-backend/internal/bidding"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	pkgerrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

// BiddingService is the surface the bid handlers depend on.
type BiddingService interface {
	SubmitBid(ctx context.Context, input bidding.SubmitBidInput) (*models.Bid, error)
	ValidateBidAmount(ctx context.Context, input bidding.ValidateBidInput) (*bidding.ValidateBidResult, error)
	AcceptBid(ctx context.Context, bidID, requesterID uuid.UUID) (*bidding.AcceptResult, error)
	RejectBid(ctx context.Context, bidID, requesterID uuid.UUID, reason string) (*models.Bid, error)
	WithdrawBid(ctx context.Context, bidID, partnerID uuid.UUID) (*models.Bid, error)
	ListDeliveryBids(ctx context.Context, deliveryID, requesterID uuid.UUID) ([]models.Bid, error)
	ListPartnerBids(ctx context.Context, partnerID uuid.UUID, query bidding.ListBidsQuery) (*bidding.BidPage, error)
	ListEligibleDeliveries(ctx context.Context, partnerID uuid.UUID, query bidding.EligibleDeliveriesQuery) ([]bidding.EligibleDelivery, error)
}

// SubmitBid places a partner's offer on an open delivery.
func SubmitBid(svc BiddingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input bidding.SubmitBidInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.PartnerID = partnerID

		bid, err := svc.SubmitBid(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bid)
	}
}

// ValidateBid previews the allowed range and advisory flags for an amount
// without placing a bid.
func ValidateBid(svc BiddingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input bidding.ValidateBidInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.PartnerID = partnerID

		result, err := svc.ValidateBidAmount(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AcceptBid awards the delivery to one bid and rejects the rest.
func AcceptBid(svc BiddingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bidID, err := validators.ParsePathUUID(chi.URLParam(r, "bidID"), "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AcceptBid(r.Context(), bidID, requesterID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type rejectBidRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// RejectBid declines one pending bid without closing the auction. The body is
// optional; when present it may carry a reason relayed to the partner.
func RejectBid(svc BiddingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bidID, err := validators.ParsePathUUID(chi.URLParam(r, "bidID"), "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req rejectBidRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bid, err := svc.RejectBid(r.Context(), bidID, requesterID, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bid)
	}
}

// WithdrawBid retracts the partner's own pending bid.
func WithdrawBid(svc BiddingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bidID, err := validators.ParsePathUUID(chi.URLParam(r, "bidID"), "bidID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bid, err := svc.WithdrawBid(r.Context(), bidID, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bid)
	}
}

// ListDeliveryBids returns all bids on one of the requester's deliveries.
func ListDeliveryBids(svc BiddingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deliveryID, err := validators.ParsePathUUID(chi.URLParam(r, "deliveryID"), "deliveryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bids, err := svc.ListDeliveryBids(r.Context(), deliveryID, requesterID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bids)
	}
}

// ListMyBids pages through the partner's bid history.
func ListMyBids(svc BiddingService, logg *logger.Logger) http.HandlerFunc {
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

		query := bidding.ListBidsQuery{Limit: limit, Cursor: cursorParam(r)}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseBidStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			query.Status = &status
		}

		page, err := svc.ListPartnerBids(r.Context(), partnerID, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ListEligibleDeliveries returns open deliveries inside the partner's
// service area, annotated with auction state. Optional lat/lng query
// parameters sort the feed nearest pickup first.
func ListEligibleDeliveries(svc BiddingService, logg *logger.Logger) http.HandlerFunc {
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
		lat, err := validators.ParseOptionalQueryFloat(r, "lat", -90, 90)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lng, err := validators.ParseOptionalQueryFloat(r, "lng", -180, 180)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eligible, err := svc.ListEligibleDeliveries(r.Context(), partnerID, bidding.EligibleDeliveriesQuery{
			Lat:   lat,
			Lng:   lng,
			Limit: limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eligible)
	}
}
