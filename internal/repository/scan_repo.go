package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/model"
)

// CountRow 分组计数行（国家、设备类型等维度）
type CountRow struct {
	Key   string `gorm:"column:key"`
	Count int64  `gorm:"column:count"`
}

type ScanRepository struct {
	db *gorm.DB
}

func NewScanRepository(db *gorm.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// RecordScan 记录一次扫码：插入扫码行并同步累加二维码上的计数缓存。
// 两步在同一事务内完成，保证 total_scans 始终等于 qr_scans 行数。
func (r *ScanRepository) RecordScan(scan *model.QRScan) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(scan).Error; err != nil {
			return err
		}

		return tx.Model(&model.QRCode{}).Where("id = ?", scan.QRCodeID).
			Updates(map[string]interface{}{
				"total_scans":     gorm.Expr("total_scans + 1"),
				"last_scanned_at": scan.ScannedAt,
			}).Error
	})
}

// CountByQRCode 扫码记录总行数，与 total_scans 缓存校验用
func (r *ScanRepository) CountByQRCode(qrCodeID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.QRScan{}).Where("qr_code_id = ?", qrCodeID).Count(&count).Error
	return count, err
}

// CountByQRCodeSince 某时间点之后的扫码数
func (r *ScanRepository) CountByQRCodeSince(qrCodeID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.QRScan{}).
		Where("qr_code_id = ? AND scanned_at >= ?", qrCodeID, since).
		Count(&count).Error
	return count, err
}

// TopCountries 按国家分组的扫码数，国家未知的记录不计入
func (r *ScanRepository) TopCountries(qrCodeID int64, limit int) ([]CountRow, error) {
	var rows []CountRow
	err := r.db.Model(&model.QRScan{}).
		Select("country AS key, COUNT(*) AS count").
		Where("qr_code_id = ? AND country IS NOT NULL AND country != ''", qrCodeID).
		Group("country").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TopDevices 按设备类型分组的扫码数
func (r *ScanRepository) TopDevices(qrCodeID int64, limit int) ([]CountRow, error) {
	var rows []CountRow
	err := r.db.Model(&model.QRScan{}).
		Select("device_type AS key, COUNT(*) AS count").
		Where("qr_code_id = ?", qrCodeID).
		Group("device_type").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// RecentScans 最近的扫码记录，按时间倒序
func (r *ScanRepository) RecentScans(qrCodeID int64, limit int) ([]*model.QRScan, error) {
	var scans []*model.QRScan
	err := r.db.Where("qr_code_id = ?", qrCodeID).
		Order("scanned_at DESC").
		Limit(limit).
		Find(&scans).Error
	if err != nil {
		return nil, err
	}
	return scans, nil
}

// CountByUserSince 用户名下全部二维码在某时间点之后的扫码数
func (r *ScanRepository) CountByUserSince(userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.QRScan{}).
		Joins("JOIN qr_codes ON qr_codes.id = qr_scans.qr_code_id").
		Where("qr_codes.user_id = ? AND qr_scans.scanned_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

// CountByUser 用户名下全部二维码的扫码总数
func (r *ScanRepository) CountByUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.QRScan{}).
		Joins("JOIN qr_codes ON qr_codes.id = qr_scans.qr_code_id").
		Where("qr_codes.user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *ScanRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.QRScan{}).Count(&count).Error
	return count, err
}

// CountSince 全平台某时间点之后的扫码数，管理端统计用
func (r *ScanRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.QRScan{}).Where("scanned_at >= ?", since).Count(&count).Error
	return count, err
}
