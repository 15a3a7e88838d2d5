package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/repository"
	"github.com/qs3c/qr_go_server/internal/service"
	"github.com/qs3c/qr_go_server/internal/testutil"
)

func setupPublicHandler(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	scanService := service.NewScanService(
		repository.NewQRCodeRepository(db),
		repository.NewScanRepository(db),
		nil,
		nil,
	)
	handler := NewPublicHandler(scanService)

	router := gin.New()
	router.GET("/s/:shortCode", handler.Scan)
	router.GET("/health", handler.Health)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return router, db, cleanup
}

func scanRequest(router *gin.Engine, shortCode string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/s/"+shortCode, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Linux; Android 14) Chrome/120.0 Mobile Safari/537.36")
	req.RemoteAddr = "198.51.100.7:54321"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPublicHandler_Scan_Redirect(t *testing.T) {
	router, db, cleanup := setupPublicHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, user.ID,
		testutil.WithShortCode("pubok123"),
		testutil.WithDestination("https://example.com/landing"),
	)

	w := scanRequest(router, qr.ShortCode)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/landing", w.Header().Get("Location"))

	// 扫码记录已落库，计数已累加
	var scanned model.QRCode
	require.NoError(t, db.First(&scanned, qr.ID).Error)
	assert.Equal(t, int64(1), scanned.TotalScans)

	var rows int64
	require.NoError(t, db.Model(&model.QRScan{}).Where("qr_code_id = ?", qr.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestPublicHandler_Scan_NotFound(t *testing.T) {
	router, _, cleanup := setupPublicHandler(t)
	defer cleanup()

	w := scanRequest(router, "nosuch99")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicHandler_Scan_Inactive(t *testing.T) {
	router, db, cleanup := setupPublicHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, user.ID,
		testutil.WithShortCode("puboff12"),
		testutil.WithInactiveQR(),
	)

	w := scanRequest(router, qr.ShortCode)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// 被拒的扫码不记录
	var rows int64
	require.NoError(t, db.Model(&model.QRScan{}).Where("qr_code_id = ?", qr.ID).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestPublicHandler_Scan_Expired(t *testing.T) {
	router, db, cleanup := setupPublicHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, user.ID,
		testutil.WithShortCode("pubexp12"),
		testutil.WithExpiresAt(time.Now().Add(-time.Hour)),
	)

	w := scanRequest(router, qr.ShortCode)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPublicHandler_Health(t *testing.T) {
	router, _, cleanup := setupPublicHandler(t)
	defer cleanup()

	w := performRequest(router, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
