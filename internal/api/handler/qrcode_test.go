package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/model/dto"
	"github.com/qs3c/qr_go_server/internal/pkg/qrgen"
	"github.com/qs3c/qr_go_server/internal/pkg/response"
	"github.com/qs3c/qr_go_server/internal/repository"
	"github.com/qs3c/qr_go_server/internal/service"
	"github.com/qs3c/qr_go_server/internal/testutil"
)

func setupQRHandler(t *testing.T) (*QRCodeHandler, *gorm.DB, func()) {
	t.Helper()

	cfg := testConfig(t)
	db := testutil.SetupTestDB(t)

	generator, err := qrgen.NewGenerator(cfg.QR.StoragePath, cfg.QR.Size)
	require.NoError(t, err)

	qrService := service.NewQRService(repository.NewQRCodeRepository(db), generator, nil, cfg)
	authService := service.NewAuthService(repository.NewUserRepository(db), nil, cfg)
	handler := NewQRCodeHandler(qrService, authService)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return handler, db, cleanup
}

func qrRouter(handler *QRCodeHandler, userID int64) *gin.Engine {
	router := gin.New()
	router.Use(mockAuth(userID))
	router.POST("/qrcodes", handler.Create)
	router.GET("/qrcodes", handler.List)
	router.GET("/qrcodes/:id", handler.Get)
	router.PUT("/qrcodes/:id", handler.Update)
	router.DELETE("/qrcodes/:id", handler.Delete)
	return router
}

func TestQRCodeHandler_Create(t *testing.T) {
	handler, db, cleanup := setupQRHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	router := qrRouter(handler, user.ID)

	w := performRequest(router, "POST", "/qrcodes", dto.CreateQRCodeRequest{
		Title:          "官网二维码",
		DestinationURL: "https://example.com",
		IsDynamic:      true,
	})
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["short_code"])
	assert.Contains(t, data["scan_url"], "/s/")
}

func TestQRCodeHandler_Create_InvalidURL(t *testing.T) {
	handler, db, cleanup := setupQRHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	router := qrRouter(handler, user.ID)

	w := performRequest(router, "POST", "/qrcodes", dto.CreateQRCodeRequest{
		Title:          "坏链接",
		DestinationURL: "not-a-url",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestQRCodeHandler_Create_QuotaExceeded(t *testing.T) {
	handler, db, cleanup := setupQRHandler(t)
	defer cleanup()

	// 免费套餐限 3 个
	user := testutil.TestUser(t, db)
	router := qrRouter(handler, user.ID)

	for i := 0; i < 3; i++ {
		w := performRequest(router, "POST", "/qrcodes", dto.CreateQRCodeRequest{
			Title:          fmt.Sprintf("第 %d 个", i+1),
			DestinationURL: "https://example.com",
		})
		resp := parseResponse(t, w)
		require.Equal(t, response.CodeSuccess, resp.Code)
	}

	w := performRequest(router, "POST", "/qrcodes", dto.CreateQRCodeRequest{
		Title:          "超额",
		DestinationURL: "https://example.com",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeQuotaExceeded, resp.Code)
}

func TestQRCodeHandler_List(t *testing.T) {
	handler, db, cleanup := setupQRHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestQRCode(t, db, user.ID)
	testutil.TestQRCode(t, db, user.ID)

	// 别人的码不该出现
	other := testutil.TestUser(t, db)
	testutil.TestQRCode(t, db, other.ID)

	router := qrRouter(handler, user.ID)
	w := performRequest(router, "GET", "/qrcodes", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total"])
}

func TestQRCodeHandler_Get_NotOwned(t *testing.T) {
	handler, db, cleanup := setupQRHandler(t)
	defer cleanup()

	owner := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, owner.ID)

	intruder := testutil.TestUser(t, db)
	router := qrRouter(handler, intruder.ID)

	// 越权按不存在处理
	w := performRequest(router, "GET", fmt.Sprintf("/qrcodes/%d", qr.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestQRCodeHandler_Update_StaticDestination(t *testing.T) {
	handler, db, cleanup := setupQRHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, user.ID, testutil.WithStaticQR())

	router := qrRouter(handler, user.ID)
	newURL := "https://changed.example.com"
	w := performRequest(router, "PUT", fmt.Sprintf("/qrcodes/%d", qr.ID), dto.UpdateQRCodeRequest{
		DestinationURL: &newURL,
	})
	resp := parseResponse(t, w)

	// 静态码改跳转地址按无权限拒绝
	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestQRCodeHandler_Delete(t *testing.T) {
	handler, db, cleanup := setupQRHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	qr := testutil.TestQRCode(t, db, user.ID)

	router := qrRouter(handler, user.ID)
	w := performRequest(router, "DELETE", fmt.Sprintf("/qrcodes/%d", qr.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	w = performRequest(router, "GET", fmt.Sprintf("/qrcodes/%d", qr.ID), nil)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}
