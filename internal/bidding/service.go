package bidding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/swifthaul/swifthaul-backend/internal/pricing"
	"github.com/swifthaul/swifthaul-backend/pkg/config"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	apperrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/geo"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox"
	"github.com/swifthaul/swifthaul-backend/pkg/outbox/payloads"
	"github.com/swifthaul/swifthaul-backend/pkg/pagination"
	"github.com/swifthaul/swifthaul-backend/pkg/types"
)

const eligibleFetchLimit = 200

// cascadeRejectionReason is stamped on every losing bid when the requester
// accepts a competing one.
const cascadeRejectionReason = "Another bid was accepted"

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OutboxEmitter queues domain events inside the caller's transaction.
type OutboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PartnerSource exposes the partner data the auction needs.
type PartnerSource interface {
	FindPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	FindServiceArea(ctx context.Context, partnerID uuid.UUID) (*models.ServiceArea, error)
	ActiveRateCard(ctx context.Context, partnerID uuid.UUID, at time.Time) (*models.RateCard, error)
}

// ServiceParams groups dependencies for the bidding service.
type ServiceParams struct {
	Repo     Repository
	Partners PartnerSource
	Engine   *pricing.Engine
	Tx       TxRunner
	Outbox   OutboxEmitter
	Logger   *logger.Logger
	Config   config.BiddingConfig
	Now      func() time.Time
}

// Service runs the delivery auction: bid lifecycle, the acceptance cascade
// and eligibility matching.
type Service struct {
	repo     Repository
	partners PartnerSource
	engine   *pricing.Engine
	tx       TxRunner
	outbox   OutboxEmitter
	logg     *logger.Logger
	cfg      config.BiddingConfig
	now      func() time.Time
}

// NewService builds a bidding service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Partners == nil {
		return nil, errors.New("partner source is required")
	}
	if params.Engine == nil {
		return nil, errors.New("pricing engine is required")
	}
	if params.Tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox emitter is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     params.Repo,
		partners: params.Partners,
		engine:   params.Engine,
		tx:       params.Tx,
		outbox:   params.Outbox,
		logg:     params.Logger,
		cfg:      params.Config,
		now:      now,
	}, nil
}

// SubmitBid places a pending bid for a partner on an open delivery.
func (s *Service) SubmitBid(ctx context.Context, input SubmitBidInput) (*models.Bid, error) {
	now := s.now()

	delivery, err := s.repo.FindDelivery(ctx, input.DeliveryID)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "delivery not found")
	}
	if err := s.ensureOpenForBidding(delivery, now); err != nil {
		return nil, err
	}

	partner, err := s.partners.FindPartner(ctx, input.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "partner not found")
	}
	if !partner.Active {
		return nil, apperrors.New(apperrors.CodeForbidden, "partner is inactive")
	}

	if !input.Amount.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "bid amount must be positive")
	}
	if err := s.ensureWithinBounds(delivery, input.Amount); err != nil {
		return nil, err
	}

	duplicate, err := s.repo.HasPendingBid(ctx, input.DeliveryID, input.PartnerID)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, apperrors.New(apperrors.CodeDuplicate, "partner already has a pending bid on this delivery")
	}

	exceedsMax := partner.MaxBidRate.IsPositive() && input.Amount.GreaterThan(partner.MaxBidRate)

	bid := &models.Bid{
		DeliveryID:               input.DeliveryID,
		PartnerID:                input.PartnerID,
		Amount:                   input.Amount.Round(2),
		Currency:                 delivery.Currency,
		Status:                   enums.BidStatusPending,
		Note:                     input.Note,
		ExceedsMaxRate:           exceedsMax,
		EstimatedPickupMinutes:   input.EstimatedPickupMinutes,
		EstimatedDeliveryMinutes: input.EstimatedDeliveryMinutes,
		ExpiresAt:                now.Add(s.cfg.BidExpiry),
	}
	if input.SubmitterLat != nil && input.SubmitterLng != nil {
		bid.SubmitterPoint = &types.GeographyPoint{Lat: *input.SubmitterLat, Lng: *input.SubmitterLng}
		distance := geo.DistanceKm(
			*input.SubmitterLat, *input.SubmitterLng,
			delivery.PickupPoint.Lat, delivery.PickupPoint.Lng,
		)
		bid.DistanceToPickupKm = &distance
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateBid(ctx, bid); err != nil {
			return err
		}
		if delivery.Status == enums.DeliveryStatusCreated {
			delivery.Status = enums.DeliveryStatusMatching
			if err := repo.UpdateDelivery(ctx, delivery); err != nil {
				return err
			}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBidSubmitted,
			AggregateType: enums.AggregateBid,
			AggregateID:   bid.ID,
			Data: payloads.BidSubmittedEvent{
				BidID:              bid.ID,
				DeliveryID:         bid.DeliveryID,
				PartnerID:          bid.PartnerID,
				Amount:             bid.Amount,
				ExceedsMaxRate:     bid.ExceedsMaxRate,
				DistanceToPickupKm: bid.DistanceToPickupKm,
				ExpiresAt:          bid.ExpiresAt,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithBidID(ctx, bid.ID.String())
	logCtx = s.logg.WithDeliveryID(logCtx, bid.DeliveryID.String())
	s.logg.Info(logCtx, "bid submitted")
	return bid, nil
}

// WithdrawBid lets a partner pull back their own pending bid.
func (s *Service) WithdrawBid(ctx context.Context, bidID, partnerID uuid.UUID) (*models.Bid, error) {
	now := s.now()
	var withdrawn *models.Bid

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		bid, err := repo.FindBidForUpdate(ctx, bidID)
		if err != nil {
			return err
		}
		if bid == nil {
			return apperrors.New(apperrors.CodeNotFound, "bid not found")
		}
		if bid.PartnerID != partnerID {
			return apperrors.New(apperrors.CodeForbidden, "bid belongs to another partner")
		}
		if bid.Status != enums.BidStatusPending {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("bid is %s and cannot be withdrawn", bid.Status))
		}
		if !now.Before(bid.ExpiresAt) {
			if err := s.expireBidTx(ctx, tx, repo, bid, now); err != nil {
				return err
			}
			return apperrors.New(apperrors.CodeExpired, "bid has expired")
		}

		bid.Status = enums.BidStatusWithdrawn
		bid.ResolvedAt = &now
		if err := repo.UpdateBid(ctx, bid); err != nil {
			return err
		}
		withdrawn = bid
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBidWithdrawn,
			AggregateType: enums.AggregateBid,
			AggregateID:   bid.ID,
			Data: payloads.BidWithdrawnEvent{
				BidID:      bid.ID,
				DeliveryID: bid.DeliveryID,
				PartnerID:  bid.PartnerID,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return withdrawn, nil
}

// RejectBid lets the requester decline a single pending bid. The optional
// reason is recorded on the bid and relayed to the partner.
func (s *Service) RejectBid(ctx context.Context, bidID, requesterID uuid.UUID, reason string) (*models.Bid, error) {
	now := s.now()
	var rejected *models.Bid

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		bid, err := repo.FindBidForUpdate(ctx, bidID)
		if err != nil {
			return err
		}
		if bid == nil {
			return apperrors.New(apperrors.CodeNotFound, "bid not found")
		}

		delivery, err := repo.FindDelivery(ctx, bid.DeliveryID)
		if err != nil {
			return err
		}
		if delivery == nil || delivery.RequesterID != requesterID {
			return apperrors.New(apperrors.CodeForbidden, "delivery belongs to another requester")
		}
		if bid.Status != enums.BidStatusPending {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("bid is %s and cannot be rejected", bid.Status))
		}

		bid.Status = enums.BidStatusRejected
		bid.ResolvedAt = &now
		if reason != "" {
			bid.RejectionReason = &reason
		}
		if err := repo.UpdateBid(ctx, bid); err != nil {
			return err
		}
		rejected = bid
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBidRejected,
			AggregateType: enums.AggregateBid,
			AggregateID:   bid.ID,
			Data: payloads.BidRejectedEvent{
				BidID:      bid.ID,
				DeliveryID: bid.DeliveryID,
				PartnerID:  bid.PartnerID,
				Reason:     reason,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// AcceptBid runs the atomic acceptance cascade: the chosen bid becomes
// accepted, every other pending bid on the delivery is rejected, and the
// delivery is assigned to the winning partner. All rows are locked for the
// duration, so a concurrent acceptor observes a non-pending bid and fails
// with a conflict.
func (s *Service) AcceptBid(ctx context.Context, bidID, requesterID uuid.UUID) (*AcceptResult, error) {
	now := s.now()
	var result *AcceptResult

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		bid, err := repo.FindBidForUpdate(ctx, bidID)
		if err != nil {
			return err
		}
		if bid == nil {
			return apperrors.New(apperrors.CodeNotFound, "bid not found")
		}

		delivery, err := repo.FindDeliveryForUpdate(ctx, bid.DeliveryID)
		if err != nil {
			return err
		}
		if delivery == nil {
			return apperrors.New(apperrors.CodeNotFound, "delivery not found")
		}
		if delivery.RequesterID != requesterID {
			return apperrors.New(apperrors.CodeForbidden, "delivery belongs to another requester")
		}
		if bid.Status != enums.BidStatusPending {
			return apperrors.New(apperrors.CodeConflict, "bid is no longer available").
				WithDetails(map[string]any{"status": bid.Status})
		}
		if !now.Before(bid.ExpiresAt) {
			if err := s.expireBidTx(ctx, tx, repo, bid, now); err != nil {
				return err
			}
			return apperrors.New(apperrors.CodeExpired, "bid has expired")
		}
		if !delivery.Status.IsOpenForBidding() {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("delivery is %s and cannot be assigned", delivery.Status))
		}

		pending, err := repo.ListPendingBidsForUpdate(ctx, delivery.ID)
		if err != nil {
			return err
		}

		bid.Status = enums.BidStatusAccepted
		bid.AcceptedAt = &now
		if err := repo.UpdateBid(ctx, bid); err != nil {
			return err
		}

		rejectedIDs := make([]uuid.UUID, 0, len(pending))
		for i := range pending {
			loser := pending[i]
			if loser.ID == bid.ID {
				continue
			}
			loser.Status = enums.BidStatusRejected
			loser.ResolvedAt = &now
			reason := cascadeRejectionReason
			loser.RejectionReason = &reason
			if err := repo.UpdateBid(ctx, &loser); err != nil {
				return err
			}
			rejectedIDs = append(rejectedIDs, loser.ID)
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventBidRejected,
				AggregateType: enums.AggregateBid,
				AggregateID:   loser.ID,
				Data: payloads.BidRejectedEvent{
					BidID:      loser.ID,
					DeliveryID: loser.DeliveryID,
					PartnerID:  loser.PartnerID,
					Reason:     cascadeRejectionReason,
				},
				Version:    1,
				OccurredAt: now,
			}); err != nil {
				return err
			}
		}

		agreed := bid.Amount
		delivery.Status = enums.DeliveryStatusAssigned
		delivery.AssignedPartnerID = &bid.PartnerID
		delivery.AcceptedBidID = &bid.ID
		delivery.AgreedAmount = &agreed
		delivery.AssignedAt = &now
		if err := repo.UpdateDelivery(ctx, delivery); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBidAccepted,
			AggregateType: enums.AggregateBid,
			AggregateID:   bid.ID,
			Data: payloads.BidAcceptedEvent{
				BidID:        bid.ID,
				DeliveryID:   delivery.ID,
				PartnerID:    bid.PartnerID,
				AgreedAmount: agreed,
				AcceptedAt:   now,
			},
			Version:    1,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryAssigned,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Data: payloads.DeliveryAssignedEvent{
				DeliveryID:   delivery.ID,
				RequesterID:  delivery.RequesterID,
				PartnerID:    bid.PartnerID,
				BidID:        bid.ID,
				AgreedAmount: agreed,
			},
			Version:    1,
			OccurredAt: now,
		}); err != nil {
			return err
		}

		result = &AcceptResult{
			Bid:            *bid,
			Delivery:       *delivery,
			RejectedBidIDs: rejectedIDs,
			AcceptedAt:     now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithBidID(ctx, result.Bid.ID.String())
	logCtx = s.logg.WithDeliveryID(logCtx, result.Delivery.ID.String())
	logCtx = s.logg.WithPartnerID(logCtx, result.Bid.PartnerID.String())
	s.logg.Info(logCtx, "bid accepted, delivery assigned")
	return result, nil
}

// ValidateBidAmount reports whether an amount would be accepted, the allowed
// range, and the advisory max-rate flag.
func (s *Service) ValidateBidAmount(ctx context.Context, input ValidateBidInput) (*ValidateBidResult, error) {
	delivery, err := s.repo.FindDelivery(ctx, input.DeliveryID)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "delivery not found")
	}
	partner, err := s.partners.FindPartner(ctx, input.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "partner not found")
	}

	bounds := s.engine.BidBounds(delivery.EstimatedCost, partner.MaxBidRate)
	result := &ValidateBidResult{
		Bounds:         bounds,
		ExceedsMaxRate: partner.MaxBidRate.IsPositive() && input.Amount.GreaterThan(partner.MaxBidRate),
	}

	hard := s.engine.BidBounds(delivery.EstimatedCost, decimal.Zero)
	switch {
	case !input.Amount.IsPositive():
		result.Reason = "amount must be positive"
	case input.Amount.LessThan(hard.Min):
		result.Reason = fmt.Sprintf("amount below minimum %s", hard.Min)
	case input.Amount.GreaterThan(hard.Max):
		result.Reason = fmt.Sprintf("amount above maximum %s", hard.Max)
	case !s.isOpenForBidding(delivery, s.now()):
		result.Reason = "delivery is not open for bidding"
	default:
		result.Valid = true
	}
	return result, nil
}

// ListEligibleDeliveries returns open deliveries whose pickup lies inside the
// partner's service circle and whose drop matches the preferred direction.
// Each match carries the auction state the partner needs to decide on a bid:
// their own pending bid if any, the pending bid count, the lowest pending
// amount, and the advisory price bounds. When the query carries the partner's
// current position the feed is sorted nearest pickup first.
func (s *Service) ListEligibleDeliveries(ctx context.Context, partnerID uuid.UUID, query EligibleDeliveriesQuery) ([]EligibleDelivery, error) {
	area, err := s.partners.FindServiceArea(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if area == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "service area not configured")
	}

	now := s.now()
	card, err := s.partners.ActiveRateCard(ctx, partnerID, now)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(query.Limit)
	hasPosition := query.Lat != nil && query.Lng != nil

	open, err := s.repo.ListOpenDeliveries(ctx, now, eligibleFetchLimit)
	if err != nil {
		return nil, err
	}

	matches := make([]EligibleDelivery, 0, limit)
	for _, delivery := range open {
		areaDistance := geo.DistanceKm(
			area.CenterPoint.Lat, area.CenterPoint.Lng,
			delivery.PickupPoint.Lat, delivery.PickupPoint.Lng,
		)
		if areaDistance > area.RadiusKm {
			continue
		}
		if !geo.MatchesDirection(
			area.CenterPoint.Lat, area.CenterPoint.Lng,
			delivery.DropPoint.Lat, delivery.DropPoint.Lng,
			area.PreferredDirection,
		) {
			continue
		}
		if card != nil {
			if delivery.Priority == enums.DeliveryPriorityASAP && !card.AcceptsPriority {
				continue
			}
			if card.MaxServiceDistanceKm != nil && delivery.DistanceKm > *card.MaxServiceDistanceKm {
				continue
			}
		}

		ownBid, err := s.repo.FindPendingBid(ctx, delivery.ID, partnerID)
		if err != nil {
			return nil, err
		}
		bidCount, lowestBid, err := s.repo.PendingBidStats(ctx, delivery.ID)
		if err != nil {
			return nil, err
		}

		match := EligibleDelivery{
			Delivery: delivery,
			DropBearing: geo.BearingDegrees(
				area.CenterPoint.Lat, area.CenterPoint.Lng,
				delivery.DropPoint.Lat, delivery.DropPoint.Lng,
			),
			OwnBid:    ownBid,
			BidCount:  int(bidCount),
			LowestBid: lowestBid,
			Bounds:    s.engine.BidBounds(delivery.EstimatedCost, decimal.Zero),
		}
		if hasPosition {
			distance := geo.DistanceKm(
				*query.Lat, *query.Lng,
				delivery.PickupPoint.Lat, delivery.PickupPoint.Lng,
			)
			match.PickupDistanceKm = &distance
		}
		matches = append(matches, match)
	}

	// Nearest pickup first; matches without a distance keep submission order
	// at the end.
	sort.SliceStable(matches, func(i, j int) bool {
		left, right := matches[i].PickupDistanceKm, matches[j].PickupDistanceKm
		switch {
		case left == nil:
			return false
		case right == nil:
			return true
		default:
			return *left < *right
		}
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ListDeliveryBids returns the bids on a delivery cheapest first. Pending
// bids past their expiry are presented as expired without waiting for the
// sweep job to persist the transition.
func (s *Service) ListDeliveryBids(ctx context.Context, deliveryID, requesterID uuid.UUID) ([]models.Bid, error) {
	delivery, err := s.repo.FindDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "delivery not found")
	}
	if delivery.RequesterID != requesterID {
		return nil, apperrors.New(apperrors.CodeForbidden, "delivery belongs to another requester")
	}

	bids, err := s.repo.ListBidsByDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	return annotateExpired(bids, s.now()), nil
}

// ListPartnerBids pages through a partner's bid history, newest first.
func (s *Service) ListPartnerBids(ctx context.Context, partnerID uuid.UUID, query ListBidsQuery) (*BidPage, error) {
	bids, next, err := s.repo.ListPartnerBids(ctx, partnerID, query)
	if err != nil {
		return nil, err
	}
	page := &BidPage{Bids: annotateExpired(bids, s.now())}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

// ExpireDueBids persists the expired status for pending bids past their
// expiry. It is safe to run concurrently and repeatedly; each row is
// re-checked under lock before the transition.
func (s *Service) ExpireDueBids(ctx context.Context, limit int) (int, error) {
	now := s.now()

	due, err := s.repo.ListExpiredPendingBids(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	expired := 0
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, candidate := range due {
			bid, err := repo.FindBidForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if bid == nil || bid.Status != enums.BidStatusPending || now.Before(bid.ExpiresAt) {
				continue
			}
			if err := s.expireBidTx(ctx, tx, repo, bid, now); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.logg.Info(s.logg.WithField(ctx, "expired_count", expired), "expired stale bids")
	}
	return expired, nil
}

func (s *Service) expireBidTx(ctx context.Context, tx *gorm.DB, repo Repository, bid *models.Bid, now time.Time) error {
	bid.Status = enums.BidStatusExpired
	bid.ResolvedAt = &now
	if err := repo.UpdateBid(ctx, bid); err != nil {
		return err
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventBidExpired,
		AggregateType: enums.AggregateBid,
		AggregateID:   bid.ID,
		Data: payloads.BidExpiredEvent{
			BidID:      bid.ID,
			DeliveryID: bid.DeliveryID,
			PartnerID:  bid.PartnerID,
			ExpiredAt:  now,
		},
		Version:    1,
		OccurredAt: now,
	})
}

func (s *Service) ensureOpenForBidding(delivery *models.Delivery, now time.Time) error {
	if !s.isOpenForBidding(delivery, now) {
		return apperrors.New(apperrors.CodeStateConflict, "delivery is not open for bidding").
			WithDetails(map[string]any{
				"status":            delivery.Status,
				"bidding_closes_at": delivery.BiddingClosesAt,
			})
	}
	return nil
}

func (s *Service) isOpenForBidding(delivery *models.Delivery, now time.Time) bool {
	return delivery.Status.IsOpenForBidding() && now.Before(delivery.BiddingClosesAt)
}

func (s *Service) ensureWithinBounds(delivery *models.Delivery, amount decimal.Decimal) error {
	bounds := s.engine.BidBounds(delivery.EstimatedCost, decimal.Zero)
	if amount.LessThan(bounds.Min) || amount.GreaterThan(bounds.Max) {
		return apperrors.New(apperrors.CodeValidation, "bid amount outside allowed range").
			WithDetails(map[string]any{"min": bounds.Min, "max": bounds.Max})
	}
	return nil
}

func annotateExpired(bids []models.Bid, now time.Time) []models.Bid {
	for i := range bids {
		if bids[i].Status == enums.BidStatusPending && !now.Before(bids[i].ExpiresAt) {
			bids[i].Status = enums.BidStatusExpired
		}
	}
	return bids
}
