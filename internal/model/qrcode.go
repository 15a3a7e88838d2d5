package model

import (
	"time"
)

// 码点样式
const (
	StyleSquare  = "square"
	StyleRounded = "rounded"
	StyleDots    = "dots"
)

type QRCode struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	UserID *int64 `gorm:"index" json:"user_id,omitempty"` // 匿名创建时为空

	Title          string `gorm:"size:200;not null" json:"title"`
	DestinationURL string `gorm:"type:text;not null" json:"destination_url"`
	// 短码全局唯一，创建后不可变更
	ShortCode string `gorm:"size:20;uniqueIndex;not null" json:"short_code"`

	// 样式定制
	IsDynamic       bool    `gorm:"default:false" json:"is_dynamic"`
	ForegroundColor string  `gorm:"size:10;default:#000000" json:"foreground_color"`
	BackgroundColor string  `gorm:"size:10;default:#FFFFFF" json:"background_color"`
	LogoPath        *string `gorm:"size:500" json:"logo_path,omitempty"`
	Style           string  `gorm:"size:20;default:square" json:"style"`
	ErrorCorrection string  `gorm:"size:1;default:M" json:"error_correction"` // L, M, Q, H

	IsActive  bool       `gorm:"default:true" json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// 生成的制品路径，按短码命名
	FilePathPNG string  `gorm:"size:500" json:"file_path_png,omitempty"`
	FilePathSVG *string `gorm:"size:500" json:"file_path_svg,omitempty"`
	FilePathPDF string  `gorm:"size:500" json:"file_path_pdf,omitempty"`

	// 扫码统计缓存，与 qr_scans 行数保持事务一致
	TotalScans    int64      `gorm:"default:0" json:"total_scans"`
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Owner *User    `gorm:"foreignKey:UserID" json:"owner,omitempty"`
	Scans []QRScan `gorm:"foreignKey:QRCodeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (QRCode) TableName() string {
	return "qr_codes"
}

// IsExpired 是否已过期（未设置过期时间视为永久有效）
func (q *QRCode) IsExpired() bool {
	if q.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*q.ExpiresAt)
}

// CanScan 是否可被扫码跳转
func (q *QRCode) CanScan() bool {
	return q.IsActive && !q.IsExpired()
}
