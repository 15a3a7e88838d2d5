package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/qr_go_server/internal/service"
)

// PublicHandler 扫码跳转入口。面向扫码设备的浏览器，
// 不走统一响应封装，直接说 HTTP 状态码。
type PublicHandler struct {
	scanService *service.ScanService
}

func NewPublicHandler(scanService *service.ScanService) *PublicHandler {
	return &PublicHandler{
		scanService: scanService,
	}
}

// Scan 扫码跳转
// GET /s/:shortCode
func (h *PublicHandler) Scan(c *gin.Context) {
	url, err := h.scanService.HandleScan(c.Request.Context(), &service.ScanRequest{
		ShortCode:     c.Param("shortCode"),
		RemoteAddr:    c.Request.RemoteAddr,
		XForwardedFor: c.GetHeader("X-Forwarded-For"),
		UserAgent:     c.GetHeader("User-Agent"),
		Referrer:      c.GetHeader("Referer"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScanNotFound):
			c.String(http.StatusNotFound, "二维码不存在")
		case errors.Is(err, service.ErrScanDisabled):
			c.String(http.StatusForbidden, "二维码已停用或过期")
		default:
			c.String(http.StatusInternalServerError, "服务器内部错误")
		}
		return
	}

	c.Redirect(http.StatusFound, url)
}

// Health 健康检查
// GET /health
func (h *PublicHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
