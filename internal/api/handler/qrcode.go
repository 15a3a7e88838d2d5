package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/qr_go_server/internal/api/middleware"
	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/model/dto"
	"github.com/qs3c/qr_go_server/internal/pkg/response"
	"github.com/qs3c/qr_go_server/internal/service"
)

type QRCodeHandler struct {
	qrService   *service.QRService
	authService *service.AuthService
}

func NewQRCodeHandler(qrService *service.QRService, authService *service.AuthService) *QRCodeHandler {
	return &QRCodeHandler{
		qrService:   qrService,
		authService: authService,
	}
}

// Create 创建二维码
// POST /api/v1/qrcodes
func (h *QRCodeHandler) Create(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.qrService.Create(user, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQRQuotaExceeded):
			response.QuotaError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "创建成功", info)
}

// List 二维码列表
// GET /api/v1/qrcodes?page=1&page_size=20&search=xxx
func (h *QRCodeHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, pageSize := pagination(c)
	search := c.Query("search")

	infos, total, err := h.qrService.List(userID, page, pageSize, search)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, infos)
}

// Get 二维码详情
// GET /api/v1/qrcodes/:id
func (h *QRCodeHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	qrID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的二维码 ID")
		return
	}

	info, err := h.qrService.GetByID(userID, qrID)
	if err != nil {
		if errors.Is(err, service.ErrQRNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, info)
}

// Update 更新二维码
// PUT /api/v1/qrcodes/:id
func (h *QRCodeHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	qrID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的二维码 ID")
		return
	}

	var req dto.UpdateQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.qrService.Update(userID, qrID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQRNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrStaticQR):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "更新成功", info)
}

// Delete 删除二维码
// DELETE /api/v1/qrcodes/:id
func (h *QRCodeHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	qrID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的二维码 ID")
		return
	}

	if err := h.qrService.Delete(userID, qrID); err != nil {
		if errors.Is(err, service.ErrQRNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Download 下载生成文件
// GET /api/v1/qrcodes/:id/download?format=png
func (h *QRCodeHandler) Download(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	qrID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的二维码 ID")
		return
	}

	format := c.DefaultQuery("format", "png")

	path, err := h.qrService.ArtifactPath(userID, qrID, format)
	if err != nil {
		if errors.Is(err, service.ErrQRNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ParamError(c, err.Error())
		return
	}

	c.FileAttachment(path, "qrcode."+format)
}

// UploadLogo 上传 logo
// POST /api/v1/qrcodes/logo
func (h *QRCodeHandler) UploadLogo(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	file, header, err := c.Request.FormFile("logo")
	if err != nil {
		response.ParamError(c, "请上传 logo 文件")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	path, err := h.qrService.SaveLogo(userID, header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLogoTooLarge), errors.Is(err, service.ErrLogoInvalidType):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, dto.UploadLogoResponse{LogoPath: path})
}

// currentUser 加载当前登录用户
func (h *QRCodeHandler) currentUser(c *gin.Context) (*model.User, bool) {
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

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
