package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/config"
	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/model/dto"
	"github.com/qs3c/qr_go_server/internal/repository"
)

var ErrAnalyticsRequiresPaid = errors.New("统计功能需要付费套餐")

type AnalyticsService struct {
	qrRepo   *repository.QRCodeRepository
	scanRepo *repository.ScanRepository
	redis    *redis.Client // 可为空，月度用量按 0 展示
	cfg      *config.Config
}

func NewAnalyticsService(qrRepo *repository.QRCodeRepository, scanRepo *repository.ScanRepository, rdb *redis.Client, cfg *config.Config) *AnalyticsService {
	return &AnalyticsService{
		qrRepo:   qrRepo,
		scanRepo: scanRepo,
		redis:    rdb,
		cfg:      cfg,
	}
}

// GetQRAnalytics 单个二维码的统计汇总。
// 归属校验在前，他人的二维码按不存在处理，不暴露归属信息；
// 通过归属校验后再看套餐，免费套餐一律拒绝。
func (s *AnalyticsService) GetQRAnalytics(user *model.User, qrID int64) (*dto.QRAnalytics, error) {
	qr, err := s.qrRepo.GetByID(qrID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQRNotFound
		}
		return nil, err
	}
	if qr.UserID == nil || *qr.UserID != user.ID {
		return nil, ErrQRNotFound
	}

	if !user.IsPremium() {
		return nil, ErrAnalyticsRequiresPaid
	}

	// 三个时间窗口基于同一时刻计算，保证大窗口计数不小于小窗口
	now := time.Now()

	today, err := s.scanRepo.CountByQRCodeSince(qr.ID, startOfDay(now))
	if err != nil {
		return nil, err
	}
	week, err := s.scanRepo.CountByQRCodeSince(qr.ID, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	month, err := s.scanRepo.CountByQRCodeSince(qr.ID, now.Add(-30*24*time.Hour))
	if err != nil {
		return nil, err
	}

	countries, err := s.scanRepo.TopCountries(qr.ID, 5)
	if err != nil {
		return nil, err
	}
	devices, err := s.scanRepo.TopDevices(qr.ID, 5)
	if err != nil {
		return nil, err
	}
	recent, err := s.scanRepo.RecentScans(qr.ID, 10)
	if err != nil {
		return nil, err
	}

	return &dto.QRAnalytics{
		QRCodeID:       qr.ID,
		TotalScans:     qr.TotalScans,
		ScansToday:     today,
		ScansThisWeek:  week,
		ScansThisMonth: month,
		TopCountries:   toCountItems(countries),
		TopDevices:     toCountItems(devices),
		RecentScans:    toScanEvents(recent),
	}, nil
}

// GetDashboard 用户仪表盘汇总，免费套餐也可见
func (s *AnalyticsService) GetDashboard(ctx context.Context, user *model.User) (*dto.DashboardSummary, error) {
	totalQRs, err := s.qrRepo.CountByUserID(user.ID)
	if err != nil {
		return nil, err
	}

	totalScans, err := s.scanRepo.CountByUser(user.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthScans, err := s.scanRepo.CountByUserSince(user.ID, now.Add(-30*24*time.Hour))
	if err != nil {
		return nil, err
	}

	plan := s.cfg.PlanFor(user.SubscriptionPlan)

	summary := &dto.DashboardSummary{
		TotalQRCodes:     totalQRs,
		TotalScans:       totalScans,
		ScansThisMonth:   monthScans,
		MonthlyScanLimit: plan.MonthlyScanLimit,
		SubscriptionPlan: user.SubscriptionPlan,
	}

	// Redis 里的自然月计数仅用于展示，丢失时降级为 0
	if s.redis != nil {
		used, err := s.redis.Get(ctx, MonthlyScanKey(user.ID, now)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("Failed to read monthly scan counter: %v", err)
		}
		summary.MonthlyScanUsed = used
	}

	top, err := s.qrRepo.GetMostScanned(user.ID)
	if err == nil {
		summary.MostScannedQR = &dto.MostScannedQR{
			ID:    top.ID,
			Title: top.Title,
			Scans: top.TotalScans,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return summary, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func toCountItems(rows []repository.CountRow) []dto.CountItem {
	items := make([]dto.CountItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.CountItem{Key: row.Key, Count: row.Count})
	}
	return items
}

func toScanEvents(scans []*model.QRScan) []dto.ScanEvent {
	events := make([]dto.ScanEvent, 0, len(scans))
	for _, scan := range scans {
		event := dto.ScanEvent{
			Timestamp:  scan.ScannedAt.Format(time.RFC3339),
			DeviceType: scan.DeviceType,
		}
		if scan.Country != nil {
			event.Country = *scan.Country
		}
		if scan.City != nil {
			event.City = *scan.City
		}
		if scan.OS != nil {
			event.OS = *scan.OS
		}
		if scan.Browser != nil {
			event.Browser = *scan.Browser
		}
		events = append(events, event)
	}
	return events
}
