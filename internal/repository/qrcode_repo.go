package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/model"
)

type QRCodeRepository struct {
	db *gorm.DB
}

func NewQRCodeRepository(db *gorm.DB) *QRCodeRepository {
	return &QRCodeRepository{db: db}
}

func (r *QRCodeRepository) Create(qr *model.QRCode) error {
	return r.db.Create(qr).Error
}

func (r *QRCodeRepository) GetByID(id int64) (*model.QRCode, error) {
	var qr model.QRCode
	err := r.db.Where("id = ?", id).First(&qr).Error
	if err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *QRCodeRepository) GetByShortCode(shortCode string) (*model.QRCode, error) {
	var qr model.QRCode
	err := r.db.Where("short_code = ?", shortCode).First(&qr).Error
	if err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *QRCodeRepository) Update(qr *model.QRCode) error {
	return r.db.Save(qr).Error
}

func (r *QRCodeRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.QRCode{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除二维码及其全部扫码记录
func (r *QRCodeRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("qr_code_id = ?", id).Delete(&model.QRScan{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.QRCode{}, id).Error
	})
}

// ListByUserID 获取用户的二维码列表
func (r *QRCodeRepository) ListByUserID(userID int64, page, pageSize int, search string) ([]*model.QRCode, int64, error) {
	var qrs []*model.QRCode
	var total int64

	query := r.db.Model(&model.QRCode{}).Where("user_id = ?", userID)

	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&qrs).Error; err != nil {
		return nil, 0, err
	}

	return qrs, total, nil
}

// CountByUserID 用户持有的二维码数量，配额检查用
func (r *QRCodeRepository) CountByUserID(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.QRCode{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *QRCodeRepository) ExistsByShortCode(shortCode string) (bool, error) {
	var count int64
	err := r.db.Model(&model.QRCode{}).Where("short_code = ?", shortCode).Count(&count).Error
	return count > 0, err
}

// GetMostScanned 用户扫码量最高的二维码，无扫码记录时返回 gorm.ErrRecordNotFound
func (r *QRCodeRepository) GetMostScanned(userID int64) (*model.QRCode, error) {
	var qr model.QRCode
	err := r.db.Where("user_id = ? AND total_scans > 0", userID).
		Order("total_scans DESC").First(&qr).Error
	if err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *QRCodeRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.QRCode{}).Count(&count).Error
	return count, err
}

func (r *QRCodeRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.QRCode{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// IDsByUserID 用户全部二维码 ID，聚合查询用
func (r *QRCodeRepository) IDsByUserID(userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.QRCode{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}
