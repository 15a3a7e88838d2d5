package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/pkg/response"
	"github.com/qs3c/qr_go_server/internal/repository"
	"github.com/qs3c/qr_go_server/internal/testutil"
)

func TestAdminRequired_AdminPasses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	admin := testutil.TestUser(t, db, testutil.WithRole(model.RoleAdmin))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(UserIDKey, admin.ID)
	})
	router.Use(AdminRequired(repository.NewUserRepository(db)))
	router.GET("/admin", func(c *gin.Context) {
		response.Success(c, gin.H{"ok": true})
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestAdminRequired_UserRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(UserIDKey, user.ID)
	})
	router.Use(AdminRequired(repository.NewUserRepository(db)))
	router.GET("/admin", func(c *gin.Context) {
		response.Success(c, gin.H{"ok": true})
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}

func TestAdminRequired_NotAuthenticated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	router := gin.New()
	router.Use(AdminRequired(repository.NewUserRepository(db)))
	router.GET("/admin", func(c *gin.Context) {
		response.Success(c, gin.H{"ok": true})
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}
