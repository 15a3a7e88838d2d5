package main

import (
	"context"
	"fmt"
	"log"

	"github.com/qs3c/qr_go_server/config"
	"github.com/qs3c/qr_go_server/internal/api"
	"github.com/qs3c/qr_go_server/internal/api/handler"
	"github.com/qs3c/qr_go_server/internal/database"
	"github.com/qs3c/qr_go_server/internal/pkg/email"
	"github.com/qs3c/qr_go_server/internal/pkg/oss"
	"github.com/qs3c/qr_go_server/internal/pkg/pubsub"
	"github.com/qs3c/qr_go_server/internal/pkg/qrgen"
	"github.com/qs3c/qr_go_server/internal/pkg/ws"
	"github.com/qs3c/qr_go_server/internal/repository"
	"github.com/qs3c/qr_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化二维码生成器
	generator, err := qrgen.NewGenerator(cfg.QR.StoragePath, cfg.QR.Size)
	if err != nil {
		log.Fatalf("Failed to init qr generator: %v", err)
	}

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if cfg.OSS.Enabled {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化邮件服务
	emailSvc := email.NewService(&cfg.Email)

	// 初始化 WebSocket Hub 与扫码事件订阅
	wsHub := ws.NewHub()
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.ScanMessage) {
			if err := wsHub.SendToUser(msg.UserID, &ws.Message{Type: msg.Type, Data: msg}); err != nil {
				log.Printf("Failed to push scan event to user %d: %v", msg.UserID, err)
			}
		})
		if err != nil {
			log.Printf("Scan event subscriber stopped: %v", err)
		}
	}()
	log.Println("Scan event subscriber started")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	qrRepo := repository.NewQRCodeRepository(db)
	scanRepo := repository.NewScanRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, emailSvc, cfg)
	qrService := service.NewQRService(qrRepo, generator, ossClient, cfg)
	scanService := service.NewScanService(qrRepo, scanRepo, rdb, pubsub.NewPublisher(rdb))
	analyticsService := service.NewAnalyticsService(qrRepo, scanRepo, rdb, cfg)
	paymentService := service.NewPaymentService(userRepo, emailSvc, cfg)
	templateService := service.NewTemplateService(templateRepo, cfg)
	adminService := service.NewAdminService(userRepo, qrRepo, scanRepo)

	// 初始化 Handler
	publicHandler := handler.NewPublicHandler(scanService)
	authHandler := handler.NewAuthHandler(authService)
	qrHandler := handler.NewQRCodeHandler(qrService, authService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, authService)
	paymentHandler := handler.NewPaymentHandler(paymentService, authService)
	templateHandler := handler.NewTemplateHandler(templateService, authService)
	adminHandler := handler.NewAdminHandler(adminService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		publicHandler,
		authHandler,
		qrHandler,
		analyticsHandler,
		paymentHandler,
		templateHandler,
		adminHandler,
		websocketHandler,
		userRepo,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
