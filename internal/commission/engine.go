package commission

import (
	"github.com/shopspring/decimal"

	"github.com/swifthaul/swifthaul-backend/pkg/config"
	"github.com/swifthaul/swifthaul-backend/pkg/db/models"
	"github.com/swifthaul/swifthaul-backend/pkg/enums"
)

var percentDivisor = decimal.NewFromInt(100)

// Breakdown is the resolved three-party split for a gross amount: the
// platform takes its fee, the onboarding manager takes commission, GST
// applies on both cuts, and the partner nets the remainder.
type Breakdown struct {
	GrossAmount      decimal.Decimal        `json:"gross_amount"`
	PlatformFee      decimal.Decimal        `json:"platform_fee_amount"`
	CommissionAmount decimal.Decimal        `json:"commission_amount"`
	GSTAmount        decimal.Decimal        `json:"gst_amount"`
	NetEarning       decimal.Decimal        `json:"net_earning"`
	Method           enums.CommissionMethod `json:"method"`
	ClampedByMax     bool                   `json:"clamped_by_max"`
}

// Engine computes settlement splits. The config carries the fallback
// percentages used when the database holds no platform fee row.
type Engine struct {
	cfg config.CommissionConfig
}

func NewEngine(cfg config.CommissionConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Resolve computes the split for a gross amount. The platform fee row sets the
// marketplace cut and the GST percent; a nil fee falls back to the configured
// defaults. A nil manager config means no intermediary is owed commission.
//
// net = gross - platformFee - commission - gst, where gst applies on the sum
// of both cuts.
func (e *Engine) Resolve(gross decimal.Decimal, fee *models.PlatformFeeConfig, cfg *models.CommissionConfig) Breakdown {
	feePercent := e.cfg.DefaultPlatformFeePercent
	gstPercent := e.cfg.DefaultGSTPercent
	if fee != nil {
		feePercent = fee.FeePercent
		gstPercent = fee.GSTPercent
	}
	platformFee := gross.Mul(feePercent).Div(percentDivisor)

	commission := decimal.Zero
	method := enums.CommissionMethodPercentage
	clamped := false
	if cfg != nil {
		commission, method, clamped = e.managerCut(*cfg, gross)
	}

	return split(gross, platformFee, commission, gstPercent, method, clamped)
}

// managerCut applies the manager's config to the gross amount.
//
// percentage: gross * percent. flat: the flat amount. hybrid: the greater of
// the percentage cut and the minimum floor. A configured max always clamps
// the final commission.
func (e *Engine) managerCut(cfg models.CommissionConfig, gross decimal.Decimal) (decimal.Decimal, enums.CommissionMethod, bool) {
	var commission decimal.Decimal
	method := enums.CommissionMethodPercentage

	switch cfg.Type {
	case enums.CommissionTypeFlat:
		commission = cfg.FlatAmount
		method = enums.CommissionMethodFlat
	case enums.CommissionTypeHybrid:
		pct := gross.Mul(cfg.Percent).Div(percentDivisor)
		if pct.LessThan(cfg.MinAmount) {
			commission = cfg.MinAmount
			method = enums.CommissionMethodFloor
		} else {
			commission = pct
		}
	default:
		commission = gross.Mul(cfg.Percent).Div(percentDivisor)
	}

	clamped := false
	if cfg.MaxAmount != nil && commission.GreaterThan(*cfg.MaxAmount) {
		commission = *cfg.MaxAmount
		clamped = true
	}
	return commission, method, clamped
}

func split(gross, platformFee, commission, gstPercent decimal.Decimal, method enums.CommissionMethod, clamped bool) Breakdown {
	platformFee = platformFee.Round(2)
	commission = commission.Round(2)
	gst := platformFee.Add(commission).Mul(gstPercent).Div(percentDivisor).Round(2)
	net := gross.Sub(platformFee).Sub(commission).Sub(gst).Round(2)

	return Breakdown{
		GrossAmount:      gross.Round(2),
		PlatformFee:      platformFee,
		CommissionAmount: commission,
		GSTAmount:        gst,
		NetEarning:       net,
		Method:           method,
		ClampedByMax:     clamped,
	}
}
