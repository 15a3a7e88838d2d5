package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"omitempty,max=100"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	Username         string `json:"username,omitempty"`
	FullName         string `json:"full_name,omitempty"`
	Role             string `json:"role"`
	SubscriptionPlan string `json:"subscription_plan"`
	IsVerified       bool   `json:"is_verified"`
	CreatedAt        string `json:"created_at,omitempty"`
}
