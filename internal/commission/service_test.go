package commission

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
)

type stubRepo struct {
	configs     map[uuid.UUID]*models.CommissionConfig
	platformFee *models.PlatformFeeConfig
	replaced    []*models.CommissionConfig
	fees        []*models.PlatformFeeConfig
}

func newStubRepo() *stubRepo {
	return &stubRepo{configs: map[uuid.UUID]*models.CommissionConfig{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) ActiveConfig(ctx context.Context, managerID uuid.UUID, at time.Time) (*models.CommissionConfig, error) {
	return s.configs[managerID], nil
}

func (s *stubRepo) ReplaceConfig(ctx context.Context, cfg *models.CommissionConfig) error {
	s.replaced = append(s.replaced, cfg)
	s.configs[cfg.ManagerID] = cfg
	return nil
}

func (s *stubRepo) ActivePlatformFee(ctx context.Context, at time.Time) (*models.PlatformFeeConfig, error) {
	return s.platformFee, nil
}

func (s *stubRepo) ReplacePlatformFee(ctx context.Context, fee *models.PlatformFeeConfig) error {
	s.fees = append(s.fees, fee)
	s.platformFee = fee
	return nil
}

type stubPartners struct {
	partners map[uuid.UUID]*models.Partner
}

func (s *stubPartners) FindPartner(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	return s.partners[id], nil
}

func newTestService(t *testing.T, repo Repository, partners PartnerSource) *Service {
	t.Helper()
	if partners == nil {
		partners = &stubPartners{}
	}
	svc, err := NewService(ServiceParams{
		Engine:   NewEngine(testCommissionConfig()),
		Repo:     repo,
		Partners: partners,
		Now:      func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func TestResolveForPartnerDeductsFeeAndManagerCommission(t *testing.T) {
	managerID := uuid.New()
	partnerID := uuid.New()

	repo := newStubRepo()
	repo.platformFee = &models.PlatformFeeConfig{
		FeePercent: decimal.NewFromInt(10),
		GSTPercent: decimal.NewFromInt(18),
	}
	repo.configs[managerID] = &models.CommissionConfig{
		ManagerID: managerID,
		Type:      enums.CommissionTypePercentage,
		Percent:   decimal.NewFromInt(5),
	}
	partners := &stubPartners{partners: map[uuid.UUID]*models.Partner{
		partnerID: {ID: partnerID, ManagerID: &managerID},
	}}
	svc := newTestService(t, repo, partners)

	breakdown, err := svc.ResolveForPartner(context.Background(), partnerID, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, breakdown.PlatformFee.Equal(decimal.NewFromInt(100)), "fee %s", breakdown.PlatformFee)
	assert.True(t, breakdown.CommissionAmount.Equal(decimal.NewFromInt(50)), "commission %s", breakdown.CommissionAmount)
	assert.True(t, breakdown.GSTAmount.Equal(decimal.NewFromInt(27)), "gst %s", breakdown.GSTAmount)
	assert.True(t, breakdown.NetEarning.Equal(decimal.NewFromInt(823)), "net %s", breakdown.NetEarning)
}

func TestResolveForPartnerWithoutManagerSkipsCommission(t *testing.T) {
	partnerID := uuid.New()
	repo := newStubRepo()
	repo.platformFee = &models.PlatformFeeConfig{
		FeePercent: decimal.NewFromInt(15),
		GSTPercent: decimal.NewFromInt(18),
	}
	partners := &stubPartners{partners: map[uuid.UUID]*models.Partner{
		partnerID: {ID: partnerID},
	}}
	svc := newTestService(t, repo, partners)

	breakdown, err := svc.ResolveForPartner(context.Background(), partnerID, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, breakdown.PlatformFee.Equal(decimal.NewFromInt(150)))
	assert.True(t, breakdown.CommissionAmount.IsZero())
}

func TestResolveForPartnerFallsBackToDefaults(t *testing.T) {
	svc := newTestService(t, newStubRepo(), nil)

	breakdown, err := svc.ResolveForPartner(context.Background(), uuid.New(), decimal.NewFromInt(1000))
	require.NoError(t, err)
	// config default: 10% fee + 18% GST.
	assert.True(t, breakdown.PlatformFee.Equal(decimal.NewFromInt(100)))
	assert.True(t, breakdown.GSTAmount.Equal(decimal.NewFromInt(18)))
}

func TestResolveForPartnerRejectsNonPositiveGross(t *testing.T) {
	svc := newTestService(t, newStubRepo(), nil)

	_, err := svc.ResolveForPartner(context.Background(), uuid.New(), decimal.Zero)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestSetManagerConfigValidatesType(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, nil)

	err := svc.SetManagerConfig(context.Background(), &models.CommissionConfig{
		ManagerID: uuid.New(),
		Type:      enums.CommissionType("revenue_share"),
	})
	require.Error(t, err)
	assert.Empty(t, repo.replaced)
}

func TestSetManagerConfigDefaultsEffectiveFrom(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, nil)

	cfg := &models.CommissionConfig{
		ManagerID: uuid.New(),
		Type:      enums.CommissionTypePercentage,
		Percent:   decimal.NewFromInt(12),
	}
	require.NoError(t, svc.SetManagerConfig(context.Background(), cfg))
	require.Len(t, repo.replaced, 1)
	assert.False(t, repo.replaced[0].EffectiveFrom.IsZero())
}
