package handler

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/pkg/response"
	"github.com/qs3c/qr_go_server/internal/repository"
	"github.com/qs3c/qr_go_server/internal/service"
	"github.com/qs3c/qr_go_server/internal/testutil"
)

func setupAnalyticsHandler(t *testing.T) (*AnalyticsHandler, *gorm.DB, func()) {
	t.Helper()

	cfg := testConfig(t)
	db := testutil.SetupTestDB(t)

	analyticsService := service.NewAnalyticsService(
		repository.NewQRCodeRepository(db),
		repository.NewScanRepository(db),
		nil,
		cfg,
	)
	authService := service.NewAuthService(repository.NewUserRepository(db), nil, cfg)
	handler := NewAnalyticsHandler(analyticsService, authService)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return handler, db, cleanup
}

func analyticsRouter(handler *AnalyticsHandler, userID int64) *gin.Engine {
	router := gin.New()
	router.Use(mockAuth(userID))
	router.GET("/analytics/dashboard", handler.Dashboard)
	router.GET("/analytics/qrcodes/:id", handler.QRAnalytics)
	return router
}

func TestAnalyticsHandler_QRAnalytics(t *testing.T) {
	handler, db, cleanup := setupAnalyticsHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithPlan(model.PlanPro))
	qr := testutil.TestQRCode(t, db, user.ID, testutil.WithTotalScans(2))
	testutil.TestScan(t, db, qr.ID)
	testutil.TestScan(t, db, qr.ID, testutil.WithDeviceType(model.DeviceDesktop))

	router := analyticsRouter(handler, user.ID)
	w := performRequest(router, "GET", fmt.Sprintf("/analytics/qrcodes/%d", qr.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total_scans"])
}

func TestAnalyticsHandler_QRAnalytics_FreePlan(t *testing.T) {
	handler, db, cleanup := setupAnalyticsHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, user.ID)

	// 免费套餐不能看统计
	router := analyticsRouter(handler, user.ID)
	w := performRequest(router, "GET", fmt.Sprintf("/analytics/qrcodes/%d", qr.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestAnalyticsHandler_QRAnalytics_NotOwned(t *testing.T) {
	handler, db, cleanup := setupAnalyticsHandler(t)
	defer cleanup()

	owner := testutil.TestUser(t, db, testutil.WithPlan(model.PlanPro))
	qr := testutil.TestQRCode(t, db, owner.ID)

	intruder := testutil.TestUser(t, db, testutil.WithPlan(model.PlanPro))
	router := analyticsRouter(handler, intruder.ID)
	w := performRequest(router, "GET", fmt.Sprintf("/analytics/qrcodes/%d", qr.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestAnalyticsHandler_Dashboard(t *testing.T) {
	handler, db, cleanup := setupAnalyticsHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, user.ID, testutil.WithTotalScans(1))
	testutil.TestScan(t, db, qr.ID)

	router := analyticsRouter(handler, user.ID)
	w := performRequest(router, "GET", "/analytics/dashboard", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["total_qr_codes"])
	assert.Equal(t, float64(1), data["total_scans"])
}
