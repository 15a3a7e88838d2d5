package model

import (
	"time"
)

// 设备分类，对任意 UA 串总是落在其中之一
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceOther   = "other"
)

// QRScan 扫码事件，只追加不修改，随所属二维码级联删除
type QRScan struct {
	ID       int64 `gorm:"primaryKey" json:"id"`
	QRCodeID int64 `gorm:"not null;index" json:"qr_code_id"`

	ScannedAt time.Time `gorm:"index;not null" json:"scanned_at"`

	// 来源信息
	IPAddress *string  `gorm:"size:45" json:"ip_address,omitempty"`
	Country   *string  `gorm:"size:100;index" json:"country,omitempty"`
	City      *string  `gorm:"size:100" json:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// 设备信息
	UserAgent  *string `gorm:"size:500" json:"user_agent,omitempty"`
	DeviceType string  `gorm:"size:20;index" json:"device_type"`
	OS         *string `gorm:"size:50" json:"os,omitempty"`
	Browser    *string `gorm:"size:50" json:"browser,omitempty"`

	Referrer *string `gorm:"size:500" json:"referrer,omitempty"`
}

func (QRScan) TableName() string {
	return "qr_scans"
}
