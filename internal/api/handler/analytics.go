package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/qr_go_server/internal/api/middleware"
	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/pkg/response"
	"github.com/qs3c/qr_go_server/internal/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	authService      *service.AuthService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, authService *service.AuthService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		authService:      authService,
	}
}

// QRAnalytics 单个二维码的统计
// GET /api/v1/analytics/qrcodes/:id
func (h *AnalyticsHandler) QRAnalytics(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	qrID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的二维码 ID")
		return
	}

	analytics, err := h.analyticsService.GetQRAnalytics(user, qrID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnalyticsRequiresPaid):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrQRNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, analytics)
}

// Dashboard 仪表盘汇总
// GET /api/v1/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	summary, err := h.analyticsService.GetDashboard(c.Request.Context(), user)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, summary)
}

func (h *AnalyticsHandler) currentUser(c *gin.Context) (*model.User, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return nil, false
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		response.AuthError(c, "用户不存在")
		return nil, false
	}
	return user, true
}
