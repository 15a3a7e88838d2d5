package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// DesignConfig 模板里的二维码设计参数，整体存 JSON 字段
type DesignConfig struct {
	ForegroundColor string `json:"foreground_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	Style           string `json:"style,omitempty"`
	LogoPath        string `json:"logo_path,omitempty"`
}

func (d DesignConfig) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *DesignConfig) Scan(value interface{}) error {
	if value == nil {
		*d = DesignConfig{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, d)
}

type TemplateCategory struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Icon        string `gorm:"size:100" json:"icon,omitempty"`
	SortOrder   int    `gorm:"default:0" json:"sort_order"`
}

func (TemplateCategory) TableName() string {
	return "template_categories"
}

type Template struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	CreatorID  int64  `gorm:"not null;index" json:"creator_id"`
	CategoryID *int64 `gorm:"index" json:"category_id,omitempty"`

	Title        string `gorm:"size:200;not null" json:"title"`
	Slug         string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description  string `gorm:"type:text;not null" json:"description"`
	PreviewImage string `gorm:"size:500;not null" json:"preview_image"`

	Price  float64 `gorm:"type:decimal(10,2);not null" json:"price"` // 欧元
	IsFree bool    `gorm:"default:false" json:"is_free"`

	DesignConfig DesignConfig `gorm:"type:json" json:"design_config"`

	IsActive     bool    `gorm:"default:true;index" json:"is_active"`
	IsFeatured   bool    `gorm:"default:false" json:"is_featured"`
	Downloads    int     `gorm:"default:0" json:"downloads"`
	Rating       float64 `gorm:"default:0" json:"rating"`
	ReviewsCount int     `gorm:"default:0" json:"reviews_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Creator  *User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Category *TemplateCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Template) TableName() string {
	return "templates"
}

// TemplatePurchase 购买记录，独立存在，不随模板级联删除
type TemplatePurchase struct {
	ID         int64 `gorm:"primaryKey" json:"id"`
	UserID     int64 `gorm:"not null;index" json:"user_id"`
	TemplateID int64 `gorm:"not null;index" json:"template_id"`

	Amount                float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	StripePaymentIntentID *string `gorm:"size:100" json:"-"`

	PurchasedAt time.Time `json:"purchased_at"`

	Template *Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
}

func (TemplatePurchase) TableName() string {
	return "template_purchases"
}
