package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/mileusna/useragent"
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/pkg/pubsub"
	"github.com/qs3c/qr_go_server/internal/repository"
)

var (
	ErrScanNotFound = errors.New("二维码不存在")
	ErrScanDisabled = errors.New("二维码已停用或过期")
)

// ScanRequest 一次扫码请求携带的来源信息
type ScanRequest struct {
	ShortCode     string
	RemoteAddr    string
	XForwardedFor string
	UserAgent     string
	Referrer      string
}

type ScanService struct {
	qrRepo    *repository.QRCodeRepository
	scanRepo  *repository.ScanRepository
	redis     *redis.Client     // 可为空，月度计数降级跳过
	publisher *pubsub.Publisher // 可为空，实时推送降级跳过
}

func NewScanService(qrRepo *repository.QRCodeRepository, scanRepo *repository.ScanRepository, rdb *redis.Client, publisher *pubsub.Publisher) *ScanService {
	return &ScanService{
		qrRepo:    qrRepo,
		scanRepo:  scanRepo,
		redis:     rdb,
		publisher: publisher,
	}
}

// HandleScan 处理一次扫码：记录扫码事件并返回跳转地址。
// 记录与计数累加在同一事务，任何失败都不放行跳转之外的副作用。
func (s *ScanService) HandleScan(ctx context.Context, req *ScanRequest) (string, error) {
	qr, err := s.qrRepo.GetByShortCode(req.ShortCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrScanNotFound
		}
		return "", err
	}

	if !qr.CanScan() {
		return "", ErrScanDisabled
	}

	scan := buildScan(qr.ID, req)
	if err := s.scanRepo.RecordScan(scan); err != nil {
		// 事务回滚，不留半截状态
		return "", fmt.Errorf("failed to record scan for %s: %w", req.ShortCode, err)
	}

	s.afterScan(ctx, qr, scan)

	return qr.DestinationURL, nil
}

// afterScan 扫码成功后的旁路动作：月度计数与实时推送，全部尽力而为
func (s *ScanService) afterScan(ctx context.Context, qr *model.QRCode, scan *model.QRScan) {
	if qr.UserID == nil {
		return
	}
	userID := *qr.UserID

	if s.redis != nil {
		key := MonthlyScanKey(userID, scan.ScannedAt)
		if err := s.redis.Incr(ctx, key).Err(); err != nil {
			log.Printf("Failed to increment monthly scan counter: %v", err)
		} else {
			// 月度 key 保留到下下个月初，过期自动清理
			s.redis.Expire(ctx, key, 62*24*time.Hour)
		}
	}

	if s.publisher != nil {
		msg := &pubsub.ScanMessage{
			UserID:     userID,
			QRCodeID:   qr.ID,
			ShortCode:  qr.ShortCode,
			ScannedAt:  scan.ScannedAt.Format(time.RFC3339),
			DeviceType: scan.DeviceType,
			TotalScans: qr.TotalScans + 1,
		}
		if scan.OS != nil {
			msg.OS = *scan.OS
		}
		if scan.Browser != nil {
			msg.Browser = *scan.Browser
		}
		if scan.Country != nil {
			msg.Country = *scan.Country
		}
		if err := s.publisher.PublishScan(ctx, msg); err != nil {
			log.Printf("Failed to publish scan event: %v", err)
		}
	}
}

// MonthlyScanKey 用户月度扫码计数的 Redis key
func MonthlyScanKey(userID int64, at time.Time) string {
	return fmt.Sprintf("scans:%d:%s", userID, at.Format("2006-01"))
}

func buildScan(qrCodeID int64, req *ScanRequest) *model.QRScan {
	scan := &model.QRScan{
		QRCodeID:   qrCodeID,
		ScannedAt:  time.Now(),
		DeviceType: classifyDevice(req.UserAgent),
	}

	if ip := clientIP(req.XForwardedFor, req.RemoteAddr); ip != "" {
		scan.IPAddress = &ip
	}
	if req.UserAgent != "" {
		ua := req.UserAgent
		scan.UserAgent = &ua

		parsed := useragent.Parse(req.UserAgent)
		if parsed.OS != "" {
			osName := parsed.OS
			scan.OS = &osName
		}
		if parsed.Name != "" {
			browser := parsed.Name
			scan.Browser = &browser
		}
	}
	if req.Referrer != "" {
		ref := req.Referrer
		scan.Referrer = &ref
	}

	return scan
}

// classifyDevice 对任意 UA 串给出确定的设备分类
func classifyDevice(ua string) string {
	if ua == "" {
		return model.DeviceOther
	}

	parsed := useragent.Parse(ua)
	switch {
	case parsed.Mobile:
		return model.DeviceMobile
	case parsed.Tablet:
		return model.DeviceTablet
	case parsed.Desktop:
		return model.DeviceDesktop
	default:
		return model.DeviceOther
	}
}

// clientIP 优先取 X-Forwarded-For 首个地址，否则取对端地址。
// 对端地址可能不带端口（含裸 IPv6），解析失败时原样保留。
func clientIP(xff, remoteAddr string) string {
	if xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
