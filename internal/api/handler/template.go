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

type TemplateHandler struct {
	templateService *service.TemplateService
	authService     *service.AuthService
}

func NewTemplateHandler(templateService *service.TemplateService, authService *service.AuthService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		authService:     authService,
	}
}

// List 模板市场列表
// GET /api/v1/templates?page=1&category_id=1&free=true&featured=true
func (h *TemplateHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	categoryID, _ := strconv.ParseInt(c.Query("category_id"), 10, 64)
	freeOnly := c.Query("free") == "true"
	featuredOnly := c.Query("featured") == "true"

	infos, total, err := h.templateService.List(page, pageSize, categoryID, freeOnly, featuredOnly)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, infos)
}

// Get 模板详情
// GET /api/v1/templates/:slug
func (h *TemplateHandler) Get(c *gin.Context) {
	info, err := h.templateService.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, info)
}

// Categories 模板分类
// GET /api/v1/templates/categories
func (h *TemplateHandler) Categories(c *gin.Context) {
	categories, err := h.templateService.ListCategories()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, categories)
}

// Purchase 购买模板
// POST /api/v1/templates/:id/purchase
func (h *TemplateHandler) Purchase(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	templateID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的模板 ID")
		return
	}

	resp, err := h.templateService.Purchase(user, templateID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyPurchased):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrTemplateUnpayable):
			response.UpstreamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "购买成功", resp)
}

// Purchases 购买记录
// GET /api/v1/templates/purchases
func (h *TemplateHandler) Purchases(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	purchases, err := h.templateService.ListPurchases(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, purchases)
}

func (h *TemplateHandler) currentUser(c *gin.Context) (*model.User, bool) {
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
