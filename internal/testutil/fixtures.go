package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	user := &model.User{
		Email:            fmt.Sprintf("test_%d_%d@example.com", time.Now().UnixNano(), seq),
		PasswordHash:     "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		FullName:         fmt.Sprintf("Test User %d", seq),
		IsActive:         true,
		IsVerified:       true,
		Role:             model.RoleUser,
		SubscriptionPlan: model.PlanFree,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithPlan 设置订阅套餐
func WithPlan(plan string) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionPlan = plan
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithStripeCustomer 设置 Stripe 客户 ID
func WithStripeCustomer(customerID string) func(*model.User) {
	return func(u *model.User) {
		u.StripeCustomerID = &customerID
	}
}

// WithUnverified 设为未验证邮箱
func WithUnverified() func(*model.User) {
	return func(u *model.User) {
		u.IsVerified = false
	}
}

// WithInactive 禁用账户
func WithInactive() func(*model.User) {
	return func(u *model.User) {
		u.IsActive = false
	}
}

// TestQRCode 创建测试二维码
func TestQRCode(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.QRCode)) *model.QRCode {
	t.Helper()

	seq := nextSeq()
	qr := &model.QRCode{
		UserID:          &userID,
		Title:           fmt.Sprintf("Test QR %d", seq),
		DestinationURL:  "https://example.com/landing",
		ShortCode:       fmt.Sprintf("tc%06d", seq),
		IsDynamic:       true,
		ForegroundColor: "#000000",
		BackgroundColor: "#FFFFFF",
		Style:           model.StyleSquare,
		ErrorCorrection: "M",
		IsActive:        true,
	}

	for _, opt := range opts {
		opt(qr)
	}

	if err := db.Create(qr).Error; err != nil {
		t.Fatalf("Failed to create test qr code: %v", err)
	}

	return qr
}

// WithShortCode 设置短码
func WithShortCode(code string) func(*model.QRCode) {
	return func(q *model.QRCode) {
		q.ShortCode = code
	}
}

// WithDestination 设置跳转地址
func WithDestination(url string) func(*model.QRCode) {
	return func(q *model.QRCode) {
		q.DestinationURL = url
	}
}

// WithStaticQR 设为静态二维码
func WithStaticQR() func(*model.QRCode) {
	return func(q *model.QRCode) {
		q.IsDynamic = false
	}
}

// WithInactiveQR 停用二维码
func WithInactiveQR() func(*model.QRCode) {
	return func(q *model.QRCode) {
		q.IsActive = false
	}
}

// WithExpiresAt 设置过期时间
func WithExpiresAt(at time.Time) func(*model.QRCode) {
	return func(q *model.QRCode) {
		q.ExpiresAt = &at
	}
}

// WithTotalScans 设置扫码计数缓存
func WithTotalScans(n int64) func(*model.QRCode) {
	return func(q *model.QRCode) {
		q.TotalScans = n
	}
}

// WithAnonymousOwner 设为匿名创建
func WithAnonymousOwner() func(*model.QRCode) {
	return func(q *model.QRCode) {
		q.UserID = nil
	}
}

// TestScan 创建测试扫码记录（只建行，不动 total_scans 缓存）
func TestScan(t *testing.T, db *gorm.DB, qrCodeID int64, opts ...func(*model.QRScan)) *model.QRScan {
	t.Helper()

	ip := "203.0.113.10"
	ua := "Mozilla/5.0 (Linux; Android 13) Chrome/120.0"
	scan := &model.QRScan{
		QRCodeID:   qrCodeID,
		ScannedAt:  time.Now(),
		IPAddress:  &ip,
		UserAgent:  &ua,
		DeviceType: model.DeviceMobile,
	}

	for _, opt := range opts {
		opt(scan)
	}

	if err := db.Create(scan).Error; err != nil {
		t.Fatalf("Failed to create test scan: %v", err)
	}

	return scan
}

// WithScannedAt 设置扫码时间
func WithScannedAt(at time.Time) func(*model.QRScan) {
	return func(s *model.QRScan) {
		s.ScannedAt = at
	}
}

// WithDeviceType 设置设备类型
func WithDeviceType(deviceType string) func(*model.QRScan) {
	return func(s *model.QRScan) {
		s.DeviceType = deviceType
	}
}

// WithCountry 设置国家
func WithCountry(country string) func(*model.QRScan) {
	return func(s *model.QRScan) {
		s.Country = &country
	}
}

// WithOS 设置操作系统
func WithOS(os string) func(*model.QRScan) {
	return func(s *model.QRScan) {
		s.OS = &os
	}
}

// TestTemplate 创建测试模板
func TestTemplate(t *testing.T, db *gorm.DB, creatorID int64, opts ...func(*model.Template)) *model.Template {
	t.Helper()

	seq := nextSeq()
	tpl := &model.Template{
		CreatorID:    creatorID,
		Title:        fmt.Sprintf("Test Template %d", seq),
		Slug:         fmt.Sprintf("test-template-%d", seq),
		Description:  "A template for tests",
		PreviewImage: "/previews/test.png",
		Price:        4.99,
		DesignConfig: model.DesignConfig{Style: model.StyleRounded, ForegroundColor: "#1A2B3C"},
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(tpl)
	}

	if err := db.Create(tpl).Error; err != nil {
		t.Fatalf("Failed to create test template: %v", err)
	}

	return tpl
}

// WithFreeTemplate 设为免费模板
func WithFreeTemplate() func(*model.Template) {
	return func(tpl *model.Template) {
		tpl.IsFree = true
		tpl.Price = 0
	}
}

// WithTemplateCategory 设置模板分类
func WithTemplateCategory(categoryID int64) func(*model.Template) {
	return func(tpl *model.Template) {
		tpl.CategoryID = &categoryID
	}
}
