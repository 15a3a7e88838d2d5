package handler

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/pkg/response"
	"github.com/qs3c/qr_go_server/internal/repository"
	"github.com/qs3c/qr_go_server/internal/service"
	"github.com/qs3c/qr_go_server/internal/testutil"
)

func setupTemplateHandler(t *testing.T) (*TemplateHandler, *gorm.DB, func()) {
	t.Helper()

	cfg := testConfig(t)
	db := testutil.SetupTestDB(t)

	templateService := service.NewTemplateService(repository.NewTemplateRepository(db), cfg)
	authService := service.NewAuthService(repository.NewUserRepository(db), nil, cfg)
	handler := NewTemplateHandler(templateService, authService)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return handler, db, cleanup
}

func TestTemplateHandler_List(t *testing.T) {
	handler, db, cleanup := setupTemplateHandler(t)
	defer cleanup()

	creator := testutil.TestUser(t, db)
	testutil.TestTemplate(t, db, creator.ID)
	testutil.TestTemplate(t, db, creator.ID, testutil.WithFreeTemplate())

	router := gin.New()
	router.GET("/templates", handler.List)

	w := performRequest(router, "GET", "/templates", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total"])

	// 只看免费的
	w = performRequest(router, "GET", "/templates?free=true", nil)
	resp = parseResponse(t, w)
	data, ok = resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["total"])
}

func TestTemplateHandler_Get(t *testing.T) {
	handler, db, cleanup := setupTemplateHandler(t)
	defer cleanup()

	creator := testutil.TestUser(t, db)
	tpl := testutil.TestTemplate(t, db, creator.ID)

	router := gin.New()
	router.GET("/templates/:slug", handler.Get)

	w := performRequest(router, "GET", "/templates/"+tpl.Slug, nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	w = performRequest(router, "GET", "/templates/does-not-exist", nil)
	resp = parseResponse(t, w)

	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestTemplateHandler_Purchase_Free(t *testing.T) {
	handler, db, cleanup := setupTemplateHandler(t)
	defer cleanup()

	creator := testutil.TestUser(t, db)
	buyer := testutil.TestUser(t, db)
	tpl := testutil.TestTemplate(t, db, creator.ID, testutil.WithFreeTemplate())

	router := gin.New()
	router.Use(mockAuth(buyer.ID))
	router.POST("/templates/:id/purchase", handler.Purchase)

	w := performRequest(router, "POST", fmt.Sprintf("/templates/%d/purchase", tpl.ID), nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	// 重复购买被拒
	w = performRequest(router, "POST", fmt.Sprintf("/templates/%d/purchase", tpl.ID), nil)
	resp = parseResponse(t, w)

	assert.Equal(t, response.CodeDuplicateAction, resp.Code)
}

func TestTemplateHandler_Purchases(t *testing.T) {
	handler, db, cleanup := setupTemplateHandler(t)
	defer cleanup()

	creator := testutil.TestUser(t, db)
	buyer := testutil.TestUser(t, db)
	tpl := testutil.TestTemplate(t, db, creator.ID, testutil.WithFreeTemplate())

	router := gin.New()
	router.Use(mockAuth(buyer.ID))
	router.POST("/templates/:id/purchase", handler.Purchase)
	router.GET("/templates-purchases", handler.Purchases)

	performRequest(router, "POST", fmt.Sprintf("/templates/%d/purchase", tpl.ID), nil)

	w := performRequest(router, "GET", "/templates-purchases", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	purchases, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, purchases, 1)
}
