package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/qr_go_server/config"
	"github.com/qs3c/qr_go_server/internal/api/handler"
	"github.com/qs3c/qr_go_server/internal/api/middleware"
	"github.com/qs3c/qr_go_server/internal/repository"
)

type Router struct {
	publicHandler    *handler.PublicHandler
	authHandler      *handler.AuthHandler
	qrHandler        *handler.QRCodeHandler
	analyticsHandler *handler.AnalyticsHandler
	paymentHandler   *handler.PaymentHandler
	templateHandler  *handler.TemplateHandler
	adminHandler     *handler.AdminHandler
	websocketHandler *handler.WebSocketHandler
	userRepo         *repository.UserRepository
	cfg              *config.Config
}

func NewRouter(
	publicHandler *handler.PublicHandler,
	authHandler *handler.AuthHandler,
	qrHandler *handler.QRCodeHandler,
	analyticsHandler *handler.AnalyticsHandler,
	paymentHandler *handler.PaymentHandler,
	templateHandler *handler.TemplateHandler,
	adminHandler *handler.AdminHandler,
	websocketHandler *handler.WebSocketHandler,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *Router {
	return &Router{
		publicHandler:    publicHandler,
		authHandler:      authHandler,
		qrHandler:        qrHandler,
		analyticsHandler: analyticsHandler,
		paymentHandler:   paymentHandler,
		templateHandler:  templateHandler,
		adminHandler:     adminHandler,
		websocketHandler: websocketHandler,
		userRepo:         userRepo,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	// 扫码跳转挂在根路径，印在码里的短链越短越好
	engine.GET("/s/:shortCode", r.publicHandler.Scan)
	engine.GET("/health", r.publicHandler.Health)

	api := engine.Group("/api/v1")
	{
		// WebSocket 实时扫码推送
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 公开接口 - 套餐目录与支付回调
		api.GET("/payments/plans", r.paymentHandler.Plans)
		api.POST("/payments/webhook", r.paymentHandler.Webhook)

		// 公开接口 - 模板市场浏览
		api.GET("/templates", r.templateHandler.List)
		api.GET("/templates/categories", r.templateHandler.Categories)
		api.GET("/templates/:slug", r.templateHandler.Get)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.GET("/auth/me", r.authHandler.Profile)

			// 二维码
			qrcodes := authenticated.Group("/qrcodes")
			{
				qrcodes.POST("", r.qrHandler.Create)
				qrcodes.GET("", r.qrHandler.List)
				qrcodes.POST("/logo", r.qrHandler.UploadLogo)
				qrcodes.GET("/:id", r.qrHandler.Get)
				qrcodes.PUT("/:id", r.qrHandler.Update)
				qrcodes.DELETE("/:id", r.qrHandler.Delete)
				qrcodes.GET("/:id/download", r.qrHandler.Download)
			}

			// 统计
			analytics := authenticated.Group("/analytics")
			{
				analytics.GET("/dashboard", r.analyticsHandler.Dashboard)
				analytics.GET("/qrcodes/:id", r.analyticsHandler.QRAnalytics)
			}

			// 支付
			payments := authenticated.Group("/payments")
			{
				payments.POST("/checkout", r.paymentHandler.Checkout)
				payments.POST("/portal", r.paymentHandler.Portal)
			}

			// 模板购买
			authenticated.POST("/templates/:id/purchase", r.templateHandler.Purchase)
			authenticated.GET("/templates-purchases", r.templateHandler.Purchases)

			// 管理端
			admin := authenticated.Group("/admin")
			admin.Use(middleware.AdminRequired(r.userRepo))
			{
				admin.GET("/stats", r.adminHandler.Stats)
				admin.GET("/users", r.adminHandler.Users)
				admin.PUT("/users/:id", r.adminHandler.UpdateUser)
			}
		}
	}

	return engine
}
