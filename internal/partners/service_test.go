package partners

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	apperrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox"
)

type stubRepo struct {
	partners     map[uuid.UUID]*models.Partner
	activeCard   *models.RateCard
	createdCards []*models.RateCard
	closedAt     []time.Time
	area         *models.ServiceArea
}

func newStubRepo() *stubRepo {
	return &stubRepo{partners: map[uuid.UUID]*models.Partner{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreatePartner(ctx context.Context, partner *models.Partner) error {
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	s.partners[partner.ID] = partner
	return nil
}

func (s *stubRepo) FindPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	return s.partners[id], nil
}

func (s *stubRepo) UpdatePartner(ctx context.Context, partner *models.Partner) error {
	s.partners[partner.ID] = partner
	return nil
}

func (s *stubRepo) ActiveRateCard(ctx context.Context, partnerID uuid.UUID, at time.Time) (*models.RateCard, error) {
	return s.activeCard, nil
}

func (s *stubRepo) ActiveRateCards(ctx context.Context, at time.Time) ([]models.RateCard, error) {
	if s.activeCard == nil {
		return nil, nil
	}
	return []models.RateCard{*s.activeCard}, nil
}

func (s *stubRepo) CloseActiveRateCard(ctx context.Context, partnerID uuid.UUID, at time.Time) error {
	s.closedAt = append(s.closedAt, at)
	return nil
}

func (s *stubRepo) CreateRateCard(ctx context.Context, card *models.RateCard) error {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	s.createdCards = append(s.createdCards, card)
	s.activeCard = card
	return nil
}

func (s *stubRepo) ListRateCardHistory(ctx context.Context, partnerID uuid.UUID) ([]models.RateCard, error) {
	cards := make([]models.RateCard, 0, len(s.createdCards))
	for i := len(s.createdCards) - 1; i >= 0; i-- {
		cards = append(cards, *s.createdCards[i])
	}
	return cards, nil
}

func (s *stubRepo) FindServiceArea(ctx context.Context, partnerID uuid.UUID) (*models.ServiceArea, error) {
	return s.area, nil
}

func (s *stubRepo) UpsertServiceArea(ctx context.Context, area *models.ServiceArea) error {
	s.area = area
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, repo Repository, emitter OutboxEmitter) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Tx:     stubTx{},
		Outbox: emitter,
		Now:    fixedNow,
	})
	require.NoError(t, err)
	return svc
}

func seedPartner(t *testing.T, repo *stubRepo) *models.Partner {
	t.Helper()
	partner := &models.Partner{
		ID:       uuid.New(),
		Name:     "Haulers Co",
		Phone:    "+919876543210",
		Currency: enums.CurrencyINR,
		Active:   true,
	}
	require.NoError(t, repo.CreatePartner(context.Background(), partner))
	return partner
}

func TestCreatePartnerDefaultsCurrency(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubOutbox{})

	partner, err := svc.CreatePartner(context.Background(), CreatePartnerInput{
		Name:  "Haulers Co",
		Phone: "+919876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.CurrencyINR, partner.Currency)
	assert.True(t, partner.Active)
}

func TestCreatePartnerRejectsNegativeMaxBidRate(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubOutbox{})

	_, err := svc.CreatePartner(context.Background(), CreatePartnerInput{
		Name:       "Haulers Co",
		Phone:      "+919876543210",
		MaxBidRate: decimal.NewFromInt(-1),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestUpdateRateCardVersionsAndEmits(t *testing.T) {
	repo := newStubRepo()
	emitter := &stubOutbox{}
	svc := newTestService(t, repo, emitter)
	partner := seedPartner(t, repo)

	card, err := svc.UpdateRateCard(context.Background(), partner.ID, RateCardInput{
		BaseFare:  decimal.NewFromInt(10),
		PerKmRate: decimal.NewFromInt(2),
		PerKgRate: decimal.NewFromInt(1),
		MinCharge: decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	require.Len(t, repo.closedAt, 1)
	assert.Equal(t, fixedNow(), repo.closedAt[0])
	assert.Equal(t, fixedNow(), card.EffectiveFrom)
	assert.Equal(t, enums.CurrencyINR, card.Currency)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, enums.EventRateCardUpdated, emitter.events[0].EventType)
	assert.Equal(t, card.ID, emitter.events[0].AggregateID)

	// Omitted accepts_priority defaults to true; no distance cap.
	assert.True(t, card.AcceptsPriority)
	assert.Nil(t, card.MaxServiceDistanceKm)
}

func TestUpdateRateCardServicePreferences(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubOutbox{})
	partner := seedPartner(t, repo)

	declines := false
	maxDistance := 300.0
	card, err := svc.UpdateRateCard(context.Background(), partner.ID, RateCardInput{
		BaseFare:             decimal.NewFromInt(10),
		PerKmRate:            decimal.NewFromInt(2),
		PerKgRate:            decimal.NewFromInt(1),
		MinCharge:            decimal.NewFromInt(30),
		AcceptsPriority:      &declines,
		MaxServiceDistanceKm: &maxDistance,
	})
	require.NoError(t, err)
	assert.False(t, card.AcceptsPriority)
	require.NotNil(t, card.MaxServiceDistanceKm)
	assert.Equal(t, 300.0, *card.MaxServiceDistanceKm)

	zero := 0.0
	_, err = svc.UpdateRateCard(context.Background(), partner.ID, RateCardInput{
		BaseFare:             decimal.NewFromInt(10),
		PerKmRate:            decimal.NewFromInt(2),
		PerKgRate:            decimal.NewFromInt(1),
		MinCharge:            decimal.NewFromInt(30),
		MaxServiceDistanceKm: &zero,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestUpdateRateCardUnknownPartner(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubOutbox{})

	_, err := svc.UpdateRateCard(context.Background(), uuid.New(), RateCardInput{
		BaseFare:  decimal.NewFromInt(10),
		PerKmRate: decimal.NewFromInt(2),
		PerKgRate: decimal.NewFromInt(1),
		MinCharge: decimal.NewFromInt(30),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestUpdateRateCardRejectsZeroPerKm(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubOutbox{})
	partner := seedPartner(t, repo)

	_, err := svc.UpdateRateCard(context.Background(), partner.ID, RateCardInput{
		BaseFare:  decimal.NewFromInt(10),
		PerKmRate: decimal.Zero,
		PerKgRate: decimal.NewFromInt(1),
		MinCharge: decimal.NewFromInt(30),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestUpdateMaxBidRate(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubOutbox{})
	partner := seedPartner(t, repo)

	updated, err := svc.UpdateMaxBidRate(context.Background(), partner.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, updated.MaxBidRate.Equal(decimal.NewFromInt(500)))
}

func TestSetServiceAreaDefaultsDirectionAndRendersBoundary(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubOutbox{})
	partner := seedPartner(t, repo)

	view, err := svc.SetServiceArea(context.Background(), partner.ID, ServiceAreaInput{
		CenterLat: 12.9716,
		CenterLng: 77.5946,
		RadiusKm:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.DirectionAny, view.PreferredDirection)
	assert.Len(t, view.Boundary, 37)
	assert.Equal(t, view.Boundary[0], view.Boundary[len(view.Boundary)-1])
}

func TestSetServiceAreaRejectsZeroRadius(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubOutbox{})
	partner := seedPartner(t, repo)

	_, err := svc.SetServiceArea(context.Background(), partner.ID, ServiceAreaInput{
		CenterLat: 12.9716,
		CenterLng: 77.5946,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestGetServiceAreaMissing(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubOutbox{})

	_, err := svc.GetServiceArea(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestCheckDirectionMatch(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubOutbox{})
	partner := seedPartner(t, repo)

	_, err := svc.SetServiceArea(context.Background(), partner.ID, ServiceAreaInput{
		CenterLat:          12.9716,
		CenterLng:          77.5946,
		RadiusKm:           50,
		PreferredDirection: enums.DirectionNorth,
	})
	require.NoError(t, err)

	// Due north of the center, well inside the radius.
	north, err := svc.CheckDirectionMatch(context.Background(), partner.ID, 13.10, 77.5946)
	require.NoError(t, err)
	assert.True(t, north.DirectionMatches)
	assert.True(t, north.WithinRadius)
	assert.Greater(t, north.DistanceKm, 0.0)

	// Due south fails the direction check but still reports distance.
	south, err := svc.CheckDirectionMatch(context.Background(), partner.ID, 12.80, 77.5946)
	require.NoError(t, err)
	assert.False(t, south.DirectionMatches)
	assert.True(t, south.WithinRadius)
}

func TestCheckDirectionMatchWithoutArea(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubOutbox{})

	_, err := svc.CheckDirectionMatch(context.Background(), uuid.New(), 12.9716, 77.5946)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}
