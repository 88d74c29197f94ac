package partners

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	apperrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/geo"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox/payloads"
	"github.com/swifthaul/swifthaul-backend/pkg/types"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OutboxEmitter queues domain events inside the caller's transaction.
type OutboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams groups dependencies for the partners service.
type ServiceParams struct {
	Repo   Repository
	Tx     TxRunner
	Outbox OutboxEmitter
	Now    func() time.Time
}

// Service manages partner onboarding, rate cards and service areas.
type Service struct {
	repo   Repository
	tx     TxRunner
	outbox OutboxEmitter
	now    func() time.Time
}

// NewService builds a partners service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox emitter is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: params.Repo, tx: params.Tx, outbox: params.Outbox, now: now}, nil
}

// CreatePartner onboards a new delivery partner.
func (s *Service) CreatePartner(ctx context.Context, input CreatePartnerInput) (*models.Partner, error) {
	if input.MaxBidRate.IsNegative() {
		return nil, apperrors.New(apperrors.CodeValidation, "max bid rate cannot be negative")
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyINR
	}
	if !currency.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid currency")
	}

	partner := &models.Partner{
		Name:       input.Name,
		Phone:      input.Phone,
		ManagerID:  input.ManagerID,
		MaxBidRate: input.MaxBidRate,
		Currency:   currency,
		Active:     true,
	}
	if err := s.repo.CreatePartner(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

// GetPartner loads a partner by id.
func (s *Service) GetPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	partner, err := s.repo.FindPartner(ctx, id)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "partner not found")
	}
	return partner, nil
}

// UpdateMaxBidRate changes the cap applied to the partner's bid upper bound.
func (s *Service) UpdateMaxBidRate(ctx context.Context, partnerID uuid.UUID, rate decimal.Decimal) (*models.Partner, error) {
	if rate.IsNegative() {
		return nil, apperrors.New(apperrors.CodeValidation, "max bid rate cannot be negative")
	}
	partner, err := s.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	partner.MaxBidRate = rate
	if err := s.repo.UpdatePartner(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

// ActiveRateCard returns the partner's currently effective rate card.
func (s *Service) ActiveRateCard(ctx context.Context, partnerID uuid.UUID) (*models.RateCard, error) {
	card, err := s.repo.ActiveRateCard(ctx, partnerID, s.now())
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "no active rate card")
	}
	return card, nil
}

// UpdateRateCard versions in a new rate card for the partner: the open card
// is closed at the new card's effective_from and both rows are kept.
func (s *Service) UpdateRateCard(ctx context.Context, partnerID uuid.UUID, input RateCardInput) (*models.RateCard, error) {
	if err := validateRateCardInput(input); err != nil {
		return nil, err
	}

	partner, err := s.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = partner.Currency
	}

	acceptsPriority := true
	if input.AcceptsPriority != nil {
		acceptsPriority = *input.AcceptsPriority
	}

	now := s.now()
	card := &models.RateCard{
		PartnerID:                partnerID,
		BaseFare:                 input.BaseFare,
		PerKmRate:                input.PerKmRate,
		PerKgRate:                input.PerKgRate,
		MinCharge:                input.MinCharge,
		PrioritySurchargePercent: input.PrioritySurchargePercent,
		PeakHourSurchargePercent: input.PeakHourSurchargePercent,
		AcceptsPriority:          acceptsPriority,
		MaxServiceDistanceKm:     input.MaxServiceDistanceKm,
		Currency:                 currency,
		EffectiveFrom:            now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CloseActiveRateCard(ctx, partnerID, now); err != nil {
			return err
		}
		if err := repo.CreateRateCard(ctx, card); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRateCardUpdated,
			AggregateType: enums.AggregateRateCard,
			AggregateID:   card.ID,
			Data: payloads.RateCardUpdatedEvent{
				RateCardID:    card.ID,
				PartnerID:     partnerID,
				EffectiveFrom: now,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// RateCardHistory lists every card the partner has had, newest first.
func (s *Service) RateCardHistory(ctx context.Context, partnerID uuid.UUID) ([]models.RateCard, error) {
	return s.repo.ListRateCardHistory(ctx, partnerID)
}

// SetServiceArea creates or replaces the partner's operating circle.
func (s *Service) SetServiceArea(ctx context.Context, partnerID uuid.UUID, input ServiceAreaInput) (*ServiceAreaView, error) {
	if input.RadiusKm <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "radius must be positive")
	}
	direction := input.PreferredDirection
	if direction == "" {
		direction = enums.DirectionAny
	}
	if !direction.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid direction")
	}

	if _, err := s.GetPartner(ctx, partnerID); err != nil {
		return nil, err
	}

	area := &models.ServiceArea{
		PartnerID:          partnerID,
		CenterPoint:        types.GeographyPoint{Lat: input.CenterLat, Lng: input.CenterLng},
		RadiusKm:           input.RadiusKm,
		PreferredDirection: direction,
	}
	if err := s.repo.UpsertServiceArea(ctx, area); err != nil {
		return nil, err
	}
	return s.areaView(area), nil
}

// GetServiceArea returns the partner's area with its rendered boundary.
func (s *Service) GetServiceArea(ctx context.Context, partnerID uuid.UUID) (*ServiceAreaView, error) {
	area, err := s.repo.FindServiceArea(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "service area not configured")
	}
	return s.areaView(area), nil
}

// CheckDirectionMatch evaluates a destination against the partner's service
// area without listing deliveries.
func (s *Service) CheckDirectionMatch(ctx context.Context, partnerID uuid.UUID, destLat, destLng float64) (*DirectionMatchResult, error) {
	area, err := s.repo.FindServiceArea(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "service area not configured")
	}

	distance := geo.DistanceKm(area.CenterPoint.Lat, area.CenterPoint.Lng, destLat, destLng)
	return &DirectionMatchResult{
		PartnerID:          partnerID,
		PreferredDirection: area.PreferredDirection,
		DirectionMatches:   geo.MatchesDirection(area.CenterPoint.Lat, area.CenterPoint.Lng, destLat, destLng, area.PreferredDirection),
		WithinRadius:       distance <= area.RadiusKm,
		DistanceKm:         distance,
	}, nil
}

func (s *Service) areaView(area *models.ServiceArea) *ServiceAreaView {
	return &ServiceAreaView{
		PartnerID:          area.PartnerID,
		Center:             area.CenterPoint,
		RadiusKm:           area.RadiusKm,
		PreferredDirection: area.PreferredDirection,
		Boundary:           geo.CircleBoundary(area.CenterPoint.Lat, area.CenterPoint.Lng, area.RadiusKm, geo.DefaultCirclePoints),
	}
}

func validateRateCardInput(input RateCardInput) error {
	for _, check := range []struct {
		name  string
		value bool
	}{
		{"base fare", input.BaseFare.IsNegative()},
		{"per km rate", !input.PerKmRate.IsPositive()},
		{"per kg rate", input.PerKgRate.IsNegative()},
		{"min charge", input.MinCharge.IsNegative()},
		{"priority surcharge", input.PrioritySurchargePercent.IsNegative()},
		{"peak hour surcharge", input.PeakHourSurchargePercent.IsNegative()},
		{"max service distance", input.MaxServiceDistanceKm != nil && *input.MaxServiceDistanceKm <= 0},
	} {
		if check.value {
			return apperrors.New(apperrors.CodeValidation, "invalid "+check.name)
		}
	}
	return nil
}
