package dto

// PlatformStats 平台总览统计
type PlatformStats struct {
	TotalUsers    int64 `json:"total_users"`
	FreeUsers     int64 `json:"free_users"`
	ProUsers      int64 `json:"pro_users"`
	BusinessUsers int64 `json:"business_users"`
	TotalQRCodes  int64 `json:"total_qr_codes"`
	ActiveQRCodes int64 `json:"active_qr_codes"`
	TotalScans    int64 `json:"total_scans"`
}

// AdminUserInfo 管理端用户列表条目
type AdminUserInfo struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	FullName         string `json:"full_name,omitempty"`
	Role             string `json:"role"`
	SubscriptionPlan string `json:"subscription_plan"`
	IsVerified       bool   `json:"is_verified"`
	TotalQRCodes     int64  `json:"total_qr_codes"`
	TotalScans       int64  `json:"total_scans"`
	CreatedAt        string `json:"created_at"`
}

// AdminUpdateUserRequest 管理端更新用户请求
type AdminUpdateUserRequest struct {
	SubscriptionPlan *string `json:"subscription_plan,omitempty" binding:"omitempty,oneof=free pro business"`
	Role             *string `json:"role,omitempty" binding:"omitempty,oneof=user admin"`
	IsVerified       *bool   `json:"is_verified,omitempty"`
}
