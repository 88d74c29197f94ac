package pricing

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	apperrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
)

// RateCardSource provides the active pricing inputs for partners.
type RateCardSource interface {
	ActiveRateCard(ctx context.Context, partnerID uuid.UUID, at time.Time) (*models.RateCard, error)
	ActiveRateCards(ctx context.Context, at time.Time) ([]models.RateCard, error)
}

// ServiceParams groups dependencies for the pricing service.
type ServiceParams struct {
	Engine *Engine
	Cards  RateCardSource
	Now    func() time.Time
}

// Service resolves rate cards and runs the engine over them.
type Service struct {
	engine *Engine
	cards  RateCardSource
	now    func() time.Time
}

// NewService builds a pricing service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if params.Cards == nil {
		return nil, errors.New("rate card source is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{engine: params.Engine, cards: params.Cards, now: now}, nil
}

// Engine exposes the underlying calculator for callers that already hold a
// rate card.
func (s *Service) Engine() *Engine {
	return s.engine
}

// QuoteForPartner prices the input against one partner's active rate card.
func (s *Service) QuoteForPartner(ctx context.Context, partnerID uuid.UUID, in QuoteInput) (*Quote, error) {
	card, err := s.cards.ActiveRateCard(ctx, partnerID, s.now())
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "no active rate card for partner")
	}
	quote := s.engine.Quote(*card, in)
	return &quote, nil
}

// CompareQuotes prices the input against every partner whose active rate card
// can serve it and returns the quotes sorted cheapest first. Cards that do not
// accept ASAP deliveries or whose service distance cap is below the trip
// length are skipped. Ties break on partner id so the ordering is stable.
func (s *Service) CompareQuotes(ctx context.Context, in QuoteInput) ([]Quote, error) {
	cards, err := s.cards.ActiveRateCards(ctx, s.now())
	if err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(cards))
	for _, card := range cards {
		if in.Priority == enums.DeliveryPriorityASAP && !card.AcceptsPriority {
			continue
		}
		if card.MaxServiceDistanceKm != nil && in.DistanceKm > *card.MaxServiceDistanceKm {
			continue
		}
		quotes = append(quotes, s.engine.Quote(card, in))
	}
	if len(quotes) == 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, "no active rate cards available")
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		if !quotes[i].Total.Equal(quotes[j].Total) {
			return quotes[i].Total.LessThan(quotes[j].Total)
		}
		return quotes[i].RateCard.PartnerID.String() < quotes[j].RateCard.PartnerID.String()
	})
	return quotes, nil
}

// EstimateCost returns the cheapest available quote total. This is the
// headline estimate shown to requesters and the anchor for bid bounds.
func (s *Service) EstimateCost(ctx context.Context, in QuoteInput) (decimal.Decimal, error) {
	quotes, err := s.CompareQuotes(ctx, in)
	if err != nil {
		return decimal.Zero, err
	}
	return quotes[0].Total, nil
}

// BidBoundsFor computes the allowed bid range for a partner bidding on a
// delivery with the given estimated cost.
func (s *Service) BidBoundsFor(estimated, partnerMax decimal.Decimal) BidBounds {
	return s.engine.BidBounds(estimated, partnerMax)
}
