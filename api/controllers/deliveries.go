package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swifthaul/swifthaul-backend/api/responses"
	"github.com/swifthaul/swifthaul-backend/api/validators"
	"github.com/swifthaul/swifthaul-backend/internal/deliveries"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	pkgerrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

// DeliveriesService is the surface the delivery handlers depend on.
type DeliveriesService interface {
	CreateDelivery(ctx context.Context, input deliveries.CreateDeliveryInput) (*models.Delivery, error)
	GetForRequester(ctx context.Context, deliveryID, requesterID uuid.UUID) (*models.Delivery, error)
	GetForPartner(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error)
	ListForRequester(ctx context.Context, requesterID uuid.UUID, query deliveries.ListDeliveriesQuery) (*deliveries.DeliveryPage, error)
	ListForPartner(ctx context.Context, partnerID uuid.UUID, query deliveries.ListDeliveriesQuery) (*deliveries.DeliveryPage, error)
	MarkPickedUp(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error)
	MarkInTransit(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error)
	MarkDelivered(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error)
	CancelDelivery(ctx context.Context, deliveryID, requesterID uuid.UUID) (*models.Delivery, error)
}

// CreateDelivery opens a new delivery request and its bidding window.
func CreateDelivery(svc DeliveriesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input deliveries.CreateDeliveryInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.RequesterID = requesterID
		input.PickupAddress = validators.SanitizeString(input.PickupAddress, 500)
		input.DropAddress = validators.SanitizeString(input.DropAddress, 500)

		delivery, err := svc.CreateDelivery(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
	}
}

// GetDelivery returns one delivery for its requester.
func GetDelivery(svc DeliveriesService, logg *logger.Logger) http.HandlerFunc {
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

		delivery, err := svc.GetForRequester(r.Context(), deliveryID, requesterID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

// GetAssignedDelivery returns one delivery for its assigned partner.
func GetAssignedDelivery(svc DeliveriesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deliveryID, err := validators.ParsePathUUID(chi.URLParam(r, "deliveryID"), "deliveryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.GetForPartner(r.Context(), deliveryID, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

// ListDeliveries pages through the requester's delivery history.
func ListDeliveries(svc DeliveriesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query, err := deliveriesQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForRequester(r.Context(), requesterID, *query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ListAssignedDeliveries pages through the partner's assigned deliveries.
func ListAssignedDeliveries(svc DeliveriesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query, err := deliveriesQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForPartner(r.Context(), partnerID, *query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// MarkDeliveryPickedUp advances an assigned delivery to picked_up.
func MarkDeliveryPickedUp(svc DeliveriesService, logg *logger.Logger) http.HandlerFunc {
	return progressHandler(logg, svc.MarkPickedUp)
}

// MarkDeliveryInTransit advances a picked-up delivery to in_transit.
func MarkDeliveryInTransit(svc DeliveriesService, logg *logger.Logger) http.HandlerFunc {
	return progressHandler(logg, svc.MarkInTransit)
}

// MarkDeliveryDelivered advances an in-transit delivery to delivered.
func MarkDeliveryDelivered(svc DeliveriesService, logg *logger.Logger) http.HandlerFunc {
	return progressHandler(logg, svc.MarkDelivered)
}

type progressFunc func(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error)

func progressHandler(logg *logger.Logger, advance progressFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := partnerUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deliveryID, err := validators.ParsePathUUID(chi.URLParam(r, "deliveryID"), "deliveryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := advance(r.Context(), deliveryID, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

// CancelDelivery cancels an open delivery and rejects its pending bids.
func CancelDelivery(svc DeliveriesService, logg *logger.Logger) http.HandlerFunc {
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

		delivery, err := svc.CancelDelivery(r.Context(), deliveryID, requesterID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

func deliveriesQuery(r *http.Request) (*deliveries.ListDeliveriesQuery, error) {
	limit, err := validators.ParseQueryInt(r, "limit", defaultPageLimit, 1, maxPageLimit)
	if err != nil {
		return nil, err
	}

	query := deliveries.ListDeliveriesQuery{Limit: limit, Cursor: cursorParam(r)}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseDeliveryStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = &status
	}
	return &query, nil
}
