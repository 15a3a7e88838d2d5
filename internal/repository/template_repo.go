package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/model"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(tpl *model.Template) error {
	return r.db.Create(tpl).Error
}

func (r *TemplateRepository) GetByID(id int64) (*model.Template, error) {
	var tpl model.Template
	err := r.db.Preload("Category").Where("id = ?", id).First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *TemplateRepository) GetBySlug(slug string) (*model.Template, error) {
	var tpl model.Template
	err := r.db.Preload("Category").Where("slug = ?", slug).First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// List 模板市场列表，只展示上架模板
func (r *TemplateRepository) List(page, pageSize int, categoryID int64, freeOnly, featuredOnly bool) ([]*model.Template, int64, error) {
	var tpls []*model.Template
	var total int64

	query := r.db.Model(&model.Template{}).Preload("Category").Where("is_active = ?", true)

	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if freeOnly {
		query = query.Where("is_free = ?", true)
	}
	if featuredOnly {
		query = query.Where("is_featured = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("downloads DESC, created_at DESC").Offset(offset).Limit(pageSize).Find(&tpls).Error; err != nil {
		return nil, 0, err
	}

	return tpls, total, nil
}

func (r *TemplateRepository) ListCategories() ([]*model.TemplateCategory, error) {
	var categories []*model.TemplateCategory
	err := r.db.Order("sort_order ASC, name ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *TemplateRepository) IncrementDownloads(id int64) error {
	return r.db.Model(&model.Template{}).Where("id = ?", id).
		Update("downloads", gorm.Expr("downloads + 1")).Error
}

func (r *TemplateRepository) CreatePurchase(purchase *model.TemplatePurchase) error {
	return r.db.Create(purchase).Error
}

// HasPurchased 用户是否已购买该模板
func (r *TemplateRepository) HasPurchased(userID, templateID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.TemplatePurchase{}).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Count(&count).Error
	return count > 0, err
}

// ListPurchasesByUser 用户的购买记录
func (r *TemplateRepository) ListPurchasesByUser(userID int64) ([]*model.TemplatePurchase, error) {
	var purchases []*model.TemplatePurchase
	err := r.db.Preload("Template").Where("user_id = ?", userID).
		Order("purchased_at DESC").Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}
