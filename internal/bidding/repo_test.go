package bidding

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	"github.com/swifthaul/swifthaul-backend/pkg/pagination"
	"github.com/swifthaul/swifthaul-backend/pkg/types"
)

func setupBiddingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS deliveries (
  id TEXT PRIMARY KEY,
  requester_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'created',
  priority TEXT NOT NULL DEFAULT 'standard',
  pickup_point TEXT NOT NULL,
  drop_point TEXT NOT NULL,
  pickup_address TEXT,
  drop_address TEXT,
  distance_km REAL NOT NULL DEFAULT 0,
  weight_kg TEXT NOT NULL DEFAULT '0',
  estimated_cost TEXT NOT NULL DEFAULT '0',
  currency TEXT NOT NULL DEFAULT 'INR',
  assigned_partner_id TEXT,
  accepted_bid_id TEXT,
  agreed_amount TEXT,
  bidding_closes_at DATETIME NOT NULL,
  assigned_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS bids (
  id TEXT PRIMARY KEY,
  delivery_id TEXT NOT NULL,
  partner_id TEXT NOT NULL,
  amount TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'INR',
  status TEXT NOT NULL DEFAULT 'pending',
  note TEXT,
  exceeds_max_rate INTEGER NOT NULL DEFAULT 0,
  rejection_reason TEXT,
  submitter_point TEXT,
  distance_to_pickup_km REAL,
  estimated_pickup_minutes INTEGER,
  estimated_delivery_minutes INTEGER,
  expires_at DATETIME NOT NULL,
  accepted_at DATETIME,
  resolved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func insertDelivery(t *testing.T, repo Repository, status enums.DeliveryStatus, closesAt time.Time) *models.Delivery {
	t.Helper()
	delivery := &models.Delivery{
		ID:              uuid.New(),
		RequesterID:     uuid.New(),
		Status:          status,
		Priority:        enums.DeliveryPriorityStandard,
		PickupPoint:     types.GeographyPoint{Lat: 12.9716, Lng: 77.5946},
		DropPoint:       types.GeographyPoint{Lat: 13.0827, Lng: 80.2707},
		EstimatedCost:   decimal.NewFromInt(100),
		Currency:        enums.CurrencyINR,
		BiddingClosesAt: closesAt,
	}
	r := repo.(*repository)
	require.NoError(t, r.db.Create(delivery).Error)
	return delivery
}

func insertBid(t *testing.T, repo Repository, deliveryID uuid.UUID, amount int64, status enums.BidStatus, createdAt time.Time) *models.Bid {
	t.Helper()
	bid := &models.Bid{
		ID:         uuid.New(),
		DeliveryID: deliveryID,
		PartnerID:  uuid.New(),
		Amount:     decimal.NewFromInt(amount),
		Currency:   enums.CurrencyINR,
		Status:     status,
		ExpiresAt:  createdAt.Add(15 * time.Minute),
		CreatedAt:  createdAt,
	}
	require.NoError(t, repo.CreateBid(context.Background(), bid))
	return bid
}

func TestRepoBidRoundTrip(t *testing.T) {
	repo := NewRepository(setupBiddingTestDB(t))
	now := time.Now().UTC()
	delivery := insertDelivery(t, repo, enums.DeliveryStatusCreated, now.Add(30*time.Minute))
	bid := insertBid(t, repo, delivery.ID, 120, enums.BidStatusPending, now)

	found, err := repo.FindBid(context.Background(), bid.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(120)))

	missing, err := repo.FindBid(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepoHasPendingBid(t *testing.T) {
	repo := NewRepository(setupBiddingTestDB(t))
	now := time.Now().UTC()
	delivery := insertDelivery(t, repo, enums.DeliveryStatusMatching, now.Add(30*time.Minute))
	bid := insertBid(t, repo, delivery.ID, 120, enums.BidStatusPending, now)

	has, err := repo.HasPendingBid(context.Background(), delivery.ID, bid.PartnerID)
	require.NoError(t, err)
	assert.True(t, has)

	bid.Status = enums.BidStatusWithdrawn
	require.NoError(t, repo.UpdateBid(context.Background(), bid))

	has, err = repo.HasPendingBid(context.Background(), delivery.ID, bid.PartnerID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRepoFindPendingBid(t *testing.T) {
	repo := NewRepository(setupBiddingTestDB(t))
	now := time.Now().UTC()
	delivery := insertDelivery(t, repo, enums.DeliveryStatusMatching, now.Add(30*time.Minute))
	bid := insertBid(t, repo, delivery.ID, 120, enums.BidStatusPending, now)
	insertBid(t, repo, delivery.ID, 110, enums.BidStatusWithdrawn, now)

	found, err := repo.FindPendingBid(context.Background(), delivery.ID, bid.PartnerID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, bid.ID, found.ID)

	none, err := repo.FindPendingBid(context.Background(), delivery.ID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRepoPendingBidStats(t *testing.T) {
	repo := NewRepository(setupBiddingTestDB(t))
	now := time.Now().UTC()
	delivery := insertDelivery(t, repo, enums.DeliveryStatusMatching, now.Add(30*time.Minute))

	insertBid(t, repo, delivery.ID, 180, enums.BidStatusPending, now)
	insertBid(t, repo, delivery.ID, 120, enums.BidStatusPending, now)
	// Resolved bids stay out of the stats.
	insertBid(t, repo, delivery.ID, 90, enums.BidStatusRejected, now)

	count, lowest, err := repo.PendingBidStats(context.Background(), delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.NotNil(t, lowest)
	assert.True(t, lowest.Equal(decimal.NewFromInt(120)))

	count, lowest, err = repo.PendingBidStats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Nil(t, lowest)
}

func TestRepoListBidsByDeliveryOrdersCheapestFirst(t *testing.T) {
	repo := NewRepository(setupBiddingTestDB(t))
	now := time.Now().UTC()
	delivery := insertDelivery(t, repo, enums.DeliveryStatusMatching, now.Add(30*time.Minute))

	insertBid(t, repo, delivery.ID, 180, enums.BidStatusPending, now)
	insertBid(t, repo, delivery.ID, 120, enums.BidStatusPending, now.Add(time.Second))
	insertBid(t, repo, delivery.ID, 150, enums.BidStatusPending, now.Add(2*time.Second))

	bids, err := repo.ListBidsByDelivery(context.Background(), delivery.ID)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	assert.True(t, bids[0].Amount.Equal(decimal.NewFromInt(120)))
	assert.True(t, bids[1].Amount.Equal(decimal.NewFromInt(150)))
	assert.True(t, bids[2].Amount.Equal(decimal.NewFromInt(180)))
}

func TestRepoListOpenDeliveries(t *testing.T) {
	repo := NewRepository(setupBiddingTestDB(t))
	now := time.Now().UTC()

	open := insertDelivery(t, repo, enums.DeliveryStatusCreated, now.Add(30*time.Minute))
	insertDelivery(t, repo, enums.DeliveryStatusAssigned, now.Add(30*time.Minute))
	insertDelivery(t, repo, enums.DeliveryStatusMatching, now.Add(-time.Minute))

	deliveries, err := repo.ListOpenDeliveries(context.Background(), now, 0)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, open.ID, deliveries[0].ID)
}

func TestRepoListExpiredPendingBids(t *testing.T) {
	repo := NewRepository(setupBiddingTestDB(t))
	now := time.Now().UTC()
	delivery := insertDelivery(t, repo, enums.DeliveryStatusMatching, now.Add(30*time.Minute))

	stale := insertBid(t, repo, delivery.ID, 120, enums.BidStatusPending, now.Add(-time.Hour))
	insertBid(t, repo, delivery.ID, 130, enums.BidStatusPending, now)
	resolved := insertBid(t, repo, delivery.ID, 140, enums.BidStatusRejected, now.Add(-time.Hour))
	_ = resolved

	bids, err := repo.ListExpiredPendingBids(context.Background(), now, 0)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, stale.ID, bids[0].ID)
}

func TestRepoListPartnerBidsPaginates(t *testing.T) {
	repo := NewRepository(setupBiddingTestDB(t))
	now := time.Now().UTC()
	delivery := insertDelivery(t, repo, enums.DeliveryStatusMatching, now.Add(30*time.Minute))
	partnerID := uuid.New()

	for i := 0; i < 3; i++ {
		bid := &models.Bid{
			ID:         uuid.New(),
			DeliveryID: delivery.ID,
			PartnerID:  partnerID,
			Amount:     decimal.NewFromInt(int64(100 + i)),
			Currency:   enums.CurrencyINR,
			Status:     enums.BidStatusPending,
			ExpiresAt:  now.Add(15 * time.Minute),
			CreatedAt:  now.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateBid(context.Background(), bid))
	}

	first, next, err := repo.ListPartnerBids(context.Background(), partnerID, ListBidsQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, next)
	// Newest first.
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	second, next2, err := repo.ListPartnerBids(context.Background(), partnerID, ListBidsQuery{
		Limit:  2,
		Cursor: pagination.EncodeCursor(*next),
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Nil(t, next2)
	assert.True(t, second[0].CreatedAt.Before(first[1].CreatedAt))
}

func TestRepoListPartnerBidsFiltersStatus(t *testing.T) {
	repo := NewRepository(setupBiddingTestDB(t))
	now := time.Now().UTC()
	delivery := insertDelivery(t, repo, enums.DeliveryStatusMatching, now.Add(30*time.Minute))
	partnerID := uuid.New()

	pendingBid := &models.Bid{
		ID: uuid.New(), DeliveryID: delivery.ID, PartnerID: partnerID,
		Amount: decimal.NewFromInt(100), Currency: enums.CurrencyINR,
		Status: enums.BidStatusPending, ExpiresAt: now.Add(15 * time.Minute), CreatedAt: now,
	}
	rejectedBid := &models.Bid{
		ID: uuid.New(), DeliveryID: delivery.ID, PartnerID: partnerID,
		Amount: decimal.NewFromInt(110), Currency: enums.CurrencyINR,
		Status: enums.BidStatusRejected, ExpiresAt: now.Add(15 * time.Minute), CreatedAt: now,
	}
	require.NoError(t, repo.CreateBid(context.Background(), pendingBid))
	require.NoError(t, repo.CreateBid(context.Background(), rejectedBid))

	status := enums.BidStatusRejected
	bids, _, err := repo.ListPartnerBids(context.Background(), partnerID, ListBidsQuery{Status: &status})
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, rejectedBid.ID, bids[0].ID)
}
