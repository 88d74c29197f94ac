package commission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	apperrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
)

// PartnerSource looks up partners so the service can find the manager who
// onboarded them.
type PartnerSource interface {
	FindPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error)
}

// ServiceParams groups dependencies for the commission service.
type ServiceParams struct {
	Engine   *Engine
	Repo     Repository
	Partners PartnerSource
	Now      func() time.Time
}

// Service resolves the effective settlement split for partners.
type Service struct {
	engine   *Engine
	repo     Repository
	partners PartnerSource
	now      func() time.Time
}

// NewService builds a commission service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Partners == nil {
		return nil, errors.New("partners source is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		engine:   params.Engine,
		repo:     params.Repo,
		partners: params.Partners,
		now:      now,
	}, nil
}

// ResolveForPartner computes the three-party split for a gross amount: the
// active platform fee row sets the marketplace cut, and the config of the
// manager who onboarded the partner sets the intermediary commission. A
// partner with no manager, or a manager with no config, owes no commission.
func (s *Service) ResolveForPartner(ctx context.Context, partnerID uuid.UUID, gross decimal.Decimal) (*Breakdown, error) {
	if !gross.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "gross amount must be positive")
	}

	at := s.now()

	fee, err := s.repo.ActivePlatformFee(ctx, at)
	if err != nil {
		return nil, err
	}

	var cfg *models.CommissionConfig
	partner, err := s.partners.FindPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner != nil && partner.ManagerID != nil {
		cfg, err = s.repo.ActiveConfig(ctx, *partner.ManagerID, at)
		if err != nil {
			return nil, err
		}
	}

	breakdown := s.engine.Resolve(gross, fee, cfg)
	return &breakdown, nil
}

// SetManagerConfig versions in a new commission config for a manager.
func (s *Service) SetManagerConfig(ctx context.Context, cfg *models.CommissionConfig) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if !cfg.Type.IsValid() {
		return apperrors.New(apperrors.CodeValidation, "invalid commission type")
	}
	if cfg.EffectiveFrom.IsZero() {
		cfg.EffectiveFrom = s.now()
	}
	return s.repo.ReplaceConfig(ctx, cfg)
}

// SetPlatformFee versions in a new marketplace-wide fee.
func (s *Service) SetPlatformFee(ctx context.Context, fee *models.PlatformFeeConfig) error {
	if fee == nil {
		return errors.New("fee is required")
	}
	if !fee.FeePercent.IsPositive() {
		return apperrors.New(apperrors.CodeValidation, "fee percent must be positive")
	}
	if fee.EffectiveFrom.IsZero() {
		fee.EffectiveFrom = s.now()
	}
	return s.repo.ReplacePlatformFee(ctx, fee)
}

// ActivePlatformFee exposes the current fee row for the admin read endpoint.
func (s *Service) ActivePlatformFee(ctx context.Context) (*models.PlatformFeeConfig, error) {
	return s.repo.ActivePlatformFee(ctx, s.now())
}

// ActiveManagerConfig exposes the manager's current commission config.
func (s *Service) ActiveManagerConfig(ctx context.Context, managerID uuid.UUID) (*models.CommissionConfig, error) {
	return s.repo.ActiveConfig(ctx, managerID, s.now())
}
