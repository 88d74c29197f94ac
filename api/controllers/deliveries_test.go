package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/api/middleware"
	"github.com/swifthaul/swifthaul-backend/internal/deliveries"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

type testDeliveriesService struct {
	createFn   func(ctx context.Context, input deliveries.CreateDeliveryInput) (*models.Delivery, error)
	cancelFn   func(ctx context.Context, deliveryID, requesterID uuid.UUID) (*models.Delivery, error)
	progressFn func(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error)
}

func (s *testDeliveriesService) CreateDelivery(ctx context.Context, input deliveries.CreateDeliveryInput) (*models.Delivery, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &models.Delivery{}, nil
}

func (s *testDeliveriesService) GetForRequester(ctx context.Context, deliveryID, requesterID uuid.UUID) (*models.Delivery, error) {
	return &models.Delivery{ID: deliveryID, RequesterID: requesterID}, nil
}

func (s *testDeliveriesService) GetForPartner(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error) {
	return &models.Delivery{ID: deliveryID}, nil
}

func (s *testDeliveriesService) ListForRequester(ctx context.Context, requesterID uuid.UUID, query deliveries.ListDeliveriesQuery) (*deliveries.DeliveryPage, error) {
	return &deliveries.DeliveryPage{}, nil
}

func (s *testDeliveriesService) ListForPartner(ctx context.Context, partnerID uuid.UUID, query deliveries.ListDeliveriesQuery) (*deliveries.DeliveryPage, error) {
	return &deliveries.DeliveryPage{}, nil
}

func (s *testDeliveriesService) MarkPickedUp(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error) {
	if s.progressFn != nil {
		return s.progressFn(ctx, deliveryID, partnerID)
	}
	return &models.Delivery{ID: deliveryID}, nil
}

func (s *testDeliveriesService) MarkInTransit(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error) {
	return &models.Delivery{ID: deliveryID}, nil
}

func (s *testDeliveriesService) MarkDelivered(ctx context.Context, deliveryID, partnerID uuid.UUID) (*models.Delivery, error) {
	return &models.Delivery{ID: deliveryID}, nil
}

func (s *testDeliveriesService) CancelDelivery(ctx context.Context, deliveryID, requesterID uuid.UUID) (*models.Delivery, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, deliveryID, requesterID)
	}
	return &models.Delivery{ID: deliveryID, Status: enums.DeliveryStatusCancelled}, nil
}

func TestCreateDeliverySuccess(t *testing.T) {
	requesterID := uuid.New()
	called := false
	svc := &testDeliveriesService{
		createFn: func(ctx context.Context, input deliveries.CreateDeliveryInput) (*models.Delivery, error) {
			called = true
			if input.RequesterID != requesterID {
				t.Fatalf("unexpected requester %s", input.RequesterID)
			}
			if input.PickupAddress != "MG Road, Bengaluru" {
				t.Fatalf("unexpected pickup address %q", input.PickupAddress)
			}
			return &models.Delivery{
				ID:            uuid.New(),
				RequesterID:   requesterID,
				Status:        enums.DeliveryStatusMatching,
				WeightKg:      input.WeightKg,
				EstimatedCost: decimal.NewFromInt(500),
			}, nil
		},
	}

	body := `{
		"pickup_lat": 12.9716,
		"pickup_lng": 77.5946,
		"drop_lat": 13.0827,
		"drop_lng": 80.2707,
		"pickup_address": "  MG Road, Bengaluru  ",
		"drop_address": "Anna Salai, Chennai",
		"weight_kg": "12.5"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliveries", strings.NewReader(body))
	req = req.WithContext(middleware.WithActorID(req.Context(), requesterID.String()))
	resp := httptest.NewRecorder()
	CreateDelivery(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data models.Delivery `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.RequesterID != requesterID {
		t.Fatalf("response carries wrong requester %s", envelope.Data.RequesterID)
	}
}

func TestCreateDeliveryMissingActor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliveries", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	CreateDelivery(&testDeliveriesService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCreateDeliveryRejectsMissingFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliveries", strings.NewReader(`{"pickup_lat": 12.9}`))
	req = req.WithContext(middleware.WithActorID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	CreateDelivery(&testDeliveriesService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCancelDeliverySuccess(t *testing.T) {
	requesterID := uuid.New()
	deliveryID := uuid.New()
	called := false
	svc := &testDeliveriesService{
		cancelFn: func(ctx context.Context, delivery, requester uuid.UUID) (*models.Delivery, error) {
			called = true
			if delivery != deliveryID {
				t.Fatalf("unexpected delivery %s", delivery)
			}
			if requester != requesterID {
				t.Fatalf("unexpected requester %s", requester)
			}
			return &models.Delivery{ID: deliveryID, Status: enums.DeliveryStatusCancelled}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliveries/"+deliveryID.String()+"/cancel", nil)
	req = req.WithContext(middleware.WithActorID(req.Context(), requesterID.String()))
	req = withRouteParam(req, "deliveryID", deliveryID.String())
	resp := httptest.NewRecorder()
	CancelDelivery(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestMarkDeliveryPickedUpRequiresPartner(t *testing.T) {
	deliveryID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliveries/"+deliveryID.String()+"/pickup", nil)
	req = req.WithContext(middleware.WithActorID(req.Context(), uuid.NewString()))
	req = withRouteParam(req, "deliveryID", deliveryID.String())
	resp := httptest.NewRecorder()
	MarkDeliveryPickedUp(&testDeliveriesService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestMarkDeliveryPickedUpSuccess(t *testing.T) {
	partnerID := uuid.New()
	deliveryID := uuid.New()
	svc := &testDeliveriesService{
		progressFn: func(ctx context.Context, delivery, partner uuid.UUID) (*models.Delivery, error) {
			if partner != partnerID {
				t.Fatalf("unexpected partner %s", partner)
			}
			return &models.Delivery{ID: delivery, Status: enums.DeliveryStatusPickedUp}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deliveries/"+deliveryID.String()+"/pickup", nil)
	req = req.WithContext(middleware.WithPartnerID(req.Context(), partnerID.String()))
	req = withRouteParam(req, "deliveryID", deliveryID.String())
	resp := httptest.NewRecorder()
	MarkDeliveryPickedUp(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}
