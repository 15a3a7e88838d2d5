package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/repository"
	"github.com/qs3c/qr_go_server/internal/testutil"
)

func setupAnalyticsService(t *testing.T) (*AnalyticsService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)

	service := NewAnalyticsService(
		repository.NewQRCodeRepository(db),
		repository.NewScanRepository(db),
		nil,
		testConfig(t),
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

func TestAnalyticsService_RequiresPaidPlan(t *testing.T) {
	service, db, cleanup := setupAnalyticsService(t)
	defer cleanup()

	freeUser := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, freeUser.ID)

	_, err := service.GetQRAnalytics(freeUser, qr.ID)
	assert.ErrorIs(t, err, ErrAnalyticsRequiresPaid)
}

func TestAnalyticsService_OwnershipHiddenAsNotFound(t *testing.T) {
	service, db, cleanup := setupAnalyticsService(t)
	defer cleanup()

	owner := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, owner.ID)

	intruder := testutil.TestUser(t, db, testutil.WithPlan(model.PlanPro))

	// 他人的二维码按不存在处理，而不是无权限
	_, err := service.GetQRAnalytics(intruder, qr.ID)
	assert.ErrorIs(t, err, ErrQRNotFound)

	_, err = service.GetQRAnalytics(intruder, 99999)
	assert.ErrorIs(t, err, ErrQRNotFound)
}

func TestAnalyticsService_OwnershipCheckedBeforePlan(t *testing.T) {
	service, db, cleanup := setupAnalyticsService(t)
	defer cleanup()

	owner := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, owner.ID)

	// 免费用户查他人的二维码：先按不存在拒绝，不暴露套餐门槛
	freeIntruder := testutil.TestUser(t, db)
	_, err := service.GetQRAnalytics(freeIntruder, qr.ID)
	assert.ErrorIs(t, err, ErrQRNotFound)

	_, err = service.GetQRAnalytics(freeIntruder, 99999)
	assert.ErrorIs(t, err, ErrQRNotFound)
}

func TestAnalyticsService_DeviceBreakdown(t *testing.T) {
	service, db, cleanup := setupAnalyticsService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithPlan(model.PlanPro))
	qr := testutil.TestQRCode(t, db, user.ID, testutil.WithTotalScans(3))

	// 两次移动端、一次桌面端
	testutil.TestScan(t, db, qr.ID, testutil.WithDeviceType(model.DeviceMobile))
	testutil.TestScan(t, db, qr.ID, testutil.WithDeviceType(model.DeviceMobile))
	testutil.TestScan(t, db, qr.ID, testutil.WithDeviceType(model.DeviceDesktop))

	analytics, err := service.GetQRAnalytics(user, qr.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), analytics.TotalScans)
	require.Len(t, analytics.TopDevices, 2)
	assert.Equal(t, model.DeviceMobile, analytics.TopDevices[0].Key)
	assert.Equal(t, int64(2), analytics.TopDevices[0].Count)
	assert.Equal(t, model.DeviceDesktop, analytics.TopDevices[1].Key)
	assert.Equal(t, int64(1), analytics.TopDevices[1].Count)
}

func TestAnalyticsService_TimeWindows(t *testing.T) {
	service, db, cleanup := setupAnalyticsService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithPlan(model.PlanBusiness))
	qr := testutil.TestQRCode(t, db, user.ID, testutil.WithTotalScans(4))

	now := time.Now()
	testutil.TestScan(t, db, qr.ID, testutil.WithScannedAt(now.Add(-time.Minute)))
	testutil.TestScan(t, db, qr.ID, testutil.WithScannedAt(now.Add(-3*24*time.Hour)))
	testutil.TestScan(t, db, qr.ID, testutil.WithScannedAt(now.Add(-20*24*time.Hour)))
	testutil.TestScan(t, db, qr.ID, testutil.WithScannedAt(now.Add(-60*24*time.Hour)))

	analytics, err := service.GetQRAnalytics(user, qr.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), analytics.ScansToday)
	assert.Equal(t, int64(2), analytics.ScansThisWeek)
	assert.Equal(t, int64(3), analytics.ScansThisMonth)

	// 窗口越大计数只增不减
	assert.GreaterOrEqual(t, analytics.ScansThisWeek, analytics.ScansToday)
	assert.GreaterOrEqual(t, analytics.ScansThisMonth, analytics.ScansThisWeek)
}

func TestAnalyticsService_TopCountriesAndRecent(t *testing.T) {
	service, db, cleanup := setupAnalyticsService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithPlan(model.PlanPro))
	qr := testutil.TestQRCode(t, db, user.ID)

	for i := 0; i < 12; i++ {
		testutil.TestScan(t, db, qr.ID, testutil.WithCountry("Germany"))
	}
	testutil.TestScan(t, db, qr.ID, testutil.WithCountry("France"))

	analytics, err := service.GetQRAnalytics(user, qr.ID)
	require.NoError(t, err)

	require.NotEmpty(t, analytics.TopCountries)
	assert.Equal(t, "Germany", analytics.TopCountries[0].Key)
	assert.Equal(t, int64(12), analytics.TopCountries[0].Count)

	// 最近扫码最多 10 条
	assert.Len(t, analytics.RecentScans, 10)
}

func TestAnalyticsService_GetDashboard(t *testing.T) {
	service, db, cleanup := setupAnalyticsService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	qr1 := testutil.TestQRCode(t, db, user.ID, testutil.WithTotalScans(5))
	testutil.TestQRCode(t, db, user.ID, testutil.WithTotalScans(2))

	now := time.Now()
	for i := 0; i < 5; i++ {
		testutil.TestScan(t, db, qr1.ID, testutil.WithScannedAt(now.Add(-time.Hour)))
	}

	summary, err := service.GetDashboard(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalQRCodes)
	assert.Equal(t, int64(5), summary.TotalScans)
	assert.Equal(t, int64(5), summary.ScansThisMonth)
	assert.Equal(t, model.PlanFree, summary.SubscriptionPlan)
	assert.Equal(t, 100, summary.MonthlyScanLimit)
	require.NotNil(t, summary.MostScannedQR)
	assert.Equal(t, qr1.ID, summary.MostScannedQR.ID)
	assert.Equal(t, int64(5), summary.MostScannedQR.Scans)
}

func TestAnalyticsService_GetDashboard_Empty(t *testing.T) {
	service, db, cleanup := setupAnalyticsService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	summary, err := service.GetDashboard(context.Background(), user)
	require.NoError(t, err)

	assert.Zero(t, summary.TotalQRCodes)
	assert.Zero(t, summary.TotalScans)
	assert.Nil(t, summary.MostScannedQR)
}
