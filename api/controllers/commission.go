package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/api/responses"
	"github.com/swifthaul/swifthaul-backend/api/validators"
	"github.com/swifthaul/swifthaul-backend/internal/commission"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
	pkgerrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
	"github.com/swifthaul/swifthaul-backend/pkg/logger"
)

// CommissionService is the surface the commission admin handlers depend on.
type CommissionService interface {
	ResolveForPartner(ctx context.Context, partnerID uuid.UUID, gross decimal.Decimal) (*commission.Breakdown, error)
	SetManagerConfig(ctx context.Context, cfg *models.CommissionConfig) error
	SetPlatformFee(ctx context.Context, fee *models.PlatformFeeConfig) error
	ActivePlatformFee(ctx context.Context) (*models.PlatformFeeConfig, error)
	ActiveManagerConfig(ctx context.Context, managerID uuid.UUID) (*models.CommissionConfig, error)
}

type managerCommissionRequest struct {
	Type          string           `json:"type" validate:"required"`
	Percent       decimal.Decimal  `json:"percent"`
	FlatAmount    decimal.Decimal  `json:"flat_amount"`
	MinAmount     decimal.Decimal  `json:"min_amount"`
	MaxAmount     *decimal.Decimal `json:"max_amount,omitempty"`
	EffectiveFrom *time.Time       `json:"effective_from,omitempty"`
}

// SetManagerCommission versions in a commission config for the manager who
// onboards partners. Admin only.
func SetManagerCommission(svc CommissionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		managerID, err := validators.ParsePathUUID(chi.URLParam(r, "managerID"), "managerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req managerCommissionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		commissionType, err := enums.ParseCommissionType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid commission type"))
			return
		}

		effectiveFrom := time.Now().UTC()
		if req.EffectiveFrom != nil {
			effectiveFrom = *req.EffectiveFrom
		}

		cfg := &models.CommissionConfig{
			ManagerID:     managerID,
			Type:          commissionType,
			Percent:       req.Percent,
			FlatAmount:    req.FlatAmount,
			MinAmount:     req.MinAmount,
			MaxAmount:     req.MaxAmount,
			EffectiveFrom: effectiveFrom,
		}
		if err := svc.SetManagerConfig(r.Context(), cfg); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cfg)
	}
}

// GetManagerCommission returns the manager's active commission config.
// Admin only.
func GetManagerCommission(svc CommissionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		managerID, err := validators.ParsePathUUID(chi.URLParam(r, "managerID"), "managerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.ActiveManagerConfig(r.Context(), managerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if cfg == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no active commission config"))
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}

type platformFeeRequest struct {
	FeePercent    decimal.Decimal `json:"fee_percent" validate:"required"`
	GSTPercent    decimal.Decimal `json:"gst_percent"`
	EffectiveFrom *time.Time      `json:"effective_from,omitempty"`
}

// SetPlatformFee versions in a new platform-wide fee row. Admin only.
func SetPlatformFee(svc CommissionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req platformFeeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		effectiveFrom := time.Now().UTC()
		if req.EffectiveFrom != nil {
			effectiveFrom = *req.EffectiveFrom
		}

		fee := &models.PlatformFeeConfig{
			FeePercent:    req.FeePercent,
			GSTPercent:    req.GSTPercent,
			EffectiveFrom: effectiveFrom,
		}
		if err := svc.SetPlatformFee(r.Context(), fee); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fee)
	}
}

// GetPlatformFee returns the active platform-wide fee row. Admin only.
func GetPlatformFee(svc CommissionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fee, err := svc.ActivePlatformFee(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if fee == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no active platform fee"))
			return
		}
		responses.WriteSuccess(w, fee)
	}
}

type commissionPreviewRequest struct {
	GrossAmount decimal.Decimal `json:"gross_amount" validate:"required"`
}

// PreviewCommission resolves the split a gross amount would produce for a
// partner without persisting anything. Admin only.
func PreviewCommission(svc CommissionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := validators.ParsePathUUID(chi.URLParam(r, "partnerID"), "partnerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req commissionPreviewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		breakdown, err := svc.ResolveForPartner(r.Context(), partnerID, req.GrossAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, breakdown)
	}
}
