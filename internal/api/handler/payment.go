package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/qr_go_server/internal/api/middleware"
	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/model/dto"
	"github.com/qs3c/qr_go_server/internal/pkg/response"
	"github.com/qs3c/qr_go_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	authService    *service.AuthService
}

func NewPaymentHandler(paymentService *service.PaymentService, authService *service.AuthService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		authService:    authService,
	}
}

// Plans 套餐目录
// GET /api/v1/payments/plans
func (h *PaymentHandler) Plans(c *gin.Context) {
	response.Success(c, h.paymentService.ListPlans())
}

// Checkout 创建订阅结账会话
// POST /api/v1/payments/checkout
func (h *PaymentHandler) Checkout(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.CreateCheckout(user, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlan):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrAlreadySubscribed):
			response.DuplicateError(c, err.Error())
		default:
			response.UpstreamError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Portal 创建客户门户会话
// POST /api/v1/payments/portal
func (h *PaymentHandler) Portal(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	resp, err := h.paymentService.CreatePortal(user)
	if err != nil {
		if errors.Is(err, service.ErrNoBillingAccount) {
			response.ParamError(c, err.Error())
			return
		}
		response.UpstreamError(c, "")
		return
	}

	response.Success(c, resp)
}

// Webhook Stripe 回调，Stripe 只认 HTTP 状态码
// POST /api/v1/payments/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read body")
		return
	}

	err = h.paymentService.HandleWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidWebhook) {
			c.String(http.StatusBadRequest, "invalid signature")
			return
		}
		// 处理失败返回 500，Stripe 会重试投递
		c.String(http.StatusInternalServerError, "webhook processing failed")
		return
	}

	c.String(http.StatusOK, "ok")
}

func (h *PaymentHandler) currentUser(c *gin.Context) (*model.User, bool) {
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
