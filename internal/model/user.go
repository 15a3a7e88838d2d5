package model

import (
	"time"
)

// 角色与套餐用常量收口，授权检查处统一 switch 匹配
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	PlanFree     = "free"
	PlanPro      = "pro"
	PlanBusiness = "business"
)

type User struct {
	ID                   int64      `gorm:"primaryKey" json:"id"`
	Email                string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Username             *string    `gorm:"size:50;uniqueIndex" json:"username,omitempty"`
	PasswordHash         string     `gorm:"size:255;not null" json:"-"`
	FullName             string     `gorm:"size:100" json:"full_name,omitempty"`
	IsActive             bool       `gorm:"default:true" json:"is_active"`
	IsVerified           bool       `gorm:"default:false" json:"is_verified"`
	Role                 string     `gorm:"size:20;default:user" json:"role"`
	SubscriptionPlan     string     `gorm:"size:20;default:free;index" json:"subscription_plan"`
	StripeCustomerID     *string    `gorm:"size:100;index" json:"-"`
	StripeSubscriptionID *string    `gorm:"size:100;index" json:"-"`
	SubscriptionEndsAt   *time.Time `json:"subscription_ends_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	LastLoginAt          *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsPremium 付费套餐（pro/business）才能用高级功能
func (u *User) IsPremium() bool {
	switch u.SubscriptionPlan {
	case PlanPro, PlanBusiness:
		return true
	default:
		return false
	}
}
