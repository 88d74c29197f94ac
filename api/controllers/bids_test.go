package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/api/middleware"
	"github.com/swifthaul/swifthaul-backend/internal/bidding"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

type testBiddingService struct {
	submitFn   func(ctx context.Context, input bidding.SubmitBidInput) (*models.Bid, error)
	acceptFn   func(ctx context.Context, bidID, requesterID uuid.UUID) (*bidding.AcceptResult, error)
	rejectFn   func(ctx context.Context, bidID, requesterID uuid.UUID, reason string) (*models.Bid, error)
	withdrawFn func(ctx context.Context, bidID, partnerID uuid.UUID) (*models.Bid, error)
	eligibleFn func(ctx context.Context, partnerID uuid.UUID, query bidding.EligibleDeliveriesQuery) ([]bidding.EligibleDelivery, error)
}

func (s *testBiddingService) SubmitBid(ctx context.Context, input bidding.SubmitBidInput) (*models.Bid, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, input)
	}
	return &models.Bid{}, nil
}

func (s *testBiddingService) ValidateBidAmount(ctx context.Context, input bidding.ValidateBidInput) (*bidding.ValidateBidResult, error) {
	return &bidding.ValidateBidResult{Valid: true}, nil
}

func (s *testBiddingService) AcceptBid(ctx context.Context, bidID, requesterID uuid.UUID) (*bidding.AcceptResult, error) {
	if s.acceptFn != nil {
		return s.acceptFn(ctx, bidID, requesterID)
	}
	return &bidding.AcceptResult{}, nil
}

func (s *testBiddingService) RejectBid(ctx context.Context, bidID, requesterID uuid.UUID, reason string) (*models.Bid, error) {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, bidID, requesterID, reason)
	}
	return &models.Bid{}, nil
}

func (s *testBiddingService) WithdrawBid(ctx context.Context, bidID, partnerID uuid.UUID) (*models.Bid, error) {
	if s.withdrawFn != nil {
		return s.withdrawFn(ctx, bidID, partnerID)
	}
	return &models.Bid{}, nil
}

func (s *testBiddingService) ListDeliveryBids(ctx context.Context, deliveryID, requesterID uuid.UUID) ([]models.Bid, error) {
	return nil, nil
}

func (s *testBiddingService) ListPartnerBids(ctx context.Context, partnerID uuid.UUID, query bidding.ListBidsQuery) (*bidding.BidPage, error) {
	return &bidding.BidPage{}, nil
}

func (s *testBiddingService) ListEligibleDeliveries(ctx context.Context, partnerID uuid.UUID, query bidding.EligibleDeliveriesQuery) ([]bidding.EligibleDelivery, error) {
	if s.eligibleFn != nil {
		return s.eligibleFn(ctx, partnerID, query)
	}
	return nil, nil
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestSubmitBidSuccess(t *testing.T) {
	partnerID := uuid.New()
	deliveryID := uuid.New()
	called := false
	svc := &testBiddingService{
		submitFn: func(ctx context.Context, input bidding.SubmitBidInput) (*models.Bid, error) {
			called = true
			if input.PartnerID != partnerID {
				t.Fatalf("unexpected partner %s", input.PartnerID)
			}
			if input.DeliveryID != deliveryID {
				t.Fatalf("unexpected delivery %s", input.DeliveryID)
			}
			if !input.Amount.Equal(decimal.NewFromInt(450)) {
				t.Fatalf("unexpected amount %s", input.Amount)
			}
			return &models.Bid{
				ID:         uuid.New(),
				DeliveryID: deliveryID,
				PartnerID:  partnerID,
				Amount:     input.Amount,
				Status:     enums.BidStatusPending,
			}, nil
		},
	}

	body := `{"delivery_id":"` + deliveryID.String() + `","amount":"450"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids", strings.NewReader(body))
	req = req.WithContext(middleware.WithPartnerID(req.Context(), partnerID.String()))
	resp := httptest.NewRecorder()
	SubmitBid(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data models.Bid `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.DeliveryID != deliveryID {
		t.Fatalf("response carries wrong delivery %s", envelope.Data.DeliveryID)
	}
}

func TestSubmitBidMissingPartnerContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	SubmitBid(&testBiddingService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestSubmitBidRejectsInvalidBody(t *testing.T) {
	partnerID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids", strings.NewReader(`{"delivery_id":"`+uuid.NewString()+`"}`))
	req = req.WithContext(middleware.WithPartnerID(req.Context(), partnerID.String()))
	resp := httptest.NewRecorder()
	SubmitBid(&testBiddingService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAcceptBidSuccess(t *testing.T) {
	requesterID := uuid.New()
	bidID := uuid.New()
	called := false
	svc := &testBiddingService{
		acceptFn: func(ctx context.Context, bid, requester uuid.UUID) (*bidding.AcceptResult, error) {
			called = true
			if bid != bidID {
				t.Fatalf("unexpected bid %s", bid)
			}
			if requester != requesterID {
				t.Fatalf("unexpected requester %s", requester)
			}
			return &bidding.AcceptResult{
				Bid:      models.Bid{ID: bidID, Status: enums.BidStatusAccepted},
				Delivery: models.Delivery{Status: enums.DeliveryStatusAssigned},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids/"+bidID.String()+"/accept", nil)
	req = req.WithContext(middleware.WithActorID(req.Context(), requesterID.String()))
	req = withRouteParam(req, "bidID", bidID.String())
	resp := httptest.NewRecorder()
	AcceptBid(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestAcceptBidInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids/not-a-uuid/accept", nil)
	req = req.WithContext(middleware.WithActorID(req.Context(), uuid.NewString()))
	req = withRouteParam(req, "bidID", "not-a-uuid")
	resp := httptest.NewRecorder()
	AcceptBid(&testBiddingService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRejectBidPassesReason(t *testing.T) {
	requesterID := uuid.New()
	bidID := uuid.New()
	var gotReason string
	svc := &testBiddingService{
		rejectFn: func(ctx context.Context, bid, requester uuid.UUID, reason string) (*models.Bid, error) {
			gotReason = reason
			return &models.Bid{ID: bid, Status: enums.BidStatusRejected, RejectionReason: &reason}, nil
		},
	}

	body := `{"reason":"Found a cheaper option"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids/"+bidID.String()+"/reject", strings.NewReader(body))
	req = req.WithContext(middleware.WithActorID(req.Context(), requesterID.String()))
	req = withRouteParam(req, "bidID", bidID.String())
	resp := httptest.NewRecorder()
	RejectBid(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotReason != "Found a cheaper option" {
		t.Fatalf("reason not forwarded, got %q", gotReason)
	}
}

func TestRejectBidWithoutBody(t *testing.T) {
	requesterID := uuid.New()
	bidID := uuid.New()
	called := false
	svc := &testBiddingService{
		rejectFn: func(ctx context.Context, bid, requester uuid.UUID, reason string) (*models.Bid, error) {
			called = true
			if reason != "" {
				t.Fatalf("expected empty reason, got %q", reason)
			}
			return &models.Bid{ID: bid, Status: enums.BidStatusRejected}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids/"+bidID.String()+"/reject", nil)
	req = req.WithContext(middleware.WithActorID(req.Context(), requesterID.String()))
	req = withRouteParam(req, "bidID", bidID.String())
	resp := httptest.NewRecorder()
	RejectBid(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestListEligibleDeliveriesParsesPosition(t *testing.T) {
	partnerID := uuid.New()
	var gotQuery bidding.EligibleDeliveriesQuery
	svc := &testBiddingService{
		eligibleFn: func(ctx context.Context, partner uuid.UUID, query bidding.EligibleDeliveriesQuery) ([]bidding.EligibleDelivery, error) {
			gotQuery = query
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners/me/eligible-deliveries?lat=12.9716&lng=77.5946&limit=5", nil)
	req = req.WithContext(middleware.WithPartnerID(req.Context(), partnerID.String()))
	resp := httptest.NewRecorder()
	ListEligibleDeliveries(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotQuery.Lat == nil || *gotQuery.Lat != 12.9716 {
		t.Fatalf("lat not forwarded: %+v", gotQuery.Lat)
	}
	if gotQuery.Lng == nil || *gotQuery.Lng != 77.5946 {
		t.Fatalf("lng not forwarded: %+v", gotQuery.Lng)
	}
	if gotQuery.Limit != 5 {
		t.Fatalf("limit not forwarded: %d", gotQuery.Limit)
	}
}

func TestListEligibleDeliveriesRejectsBadLatitude(t *testing.T) {
	partnerID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners/me/eligible-deliveries?lat=95", nil)
	req = req.WithContext(middleware.WithPartnerID(req.Context(), partnerID.String()))
	resp := httptest.NewRecorder()
	ListEligibleDeliveries(&testBiddingService{}, newTestLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestWithdrawBidSuccess(t *testing.T) {
	partnerID := uuid.New()
	bidID := uuid.New()
	svc := &testBiddingService{
		withdrawFn: func(ctx context.Context, bid, partner uuid.UUID) (*models.Bid, error) {
			if partner != partnerID {
				t.Fatalf("unexpected partner %s", partner)
			}
			return &models.Bid{ID: bid, Status: enums.BidStatusWithdrawn}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids/"+bidID.String()+"/withdraw", nil)
	req = req.WithContext(middleware.WithPartnerID(req.Context(), partnerID.String()))
	req = withRouteParam(req, "bidID", bidID.String())
	resp := httptest.NewRecorder()
	WithdrawBid(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}
