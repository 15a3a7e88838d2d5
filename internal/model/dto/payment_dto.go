package dto

// CheckoutRequest 创建订阅结账会话请求
type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required,oneof=pro business"`
}

// CheckoutResponse 结账会话响应
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// PortalResponse 客户门户会话响应
type PortalResponse struct {
	URL string `json:"url"`
}

// PlanInfo 套餐目录条目
type PlanInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	Currency         string   `json:"currency"`
	Interval         string   `json:"interval"`
	QRLimit          int      `json:"qr_limit"` // 0 表示不限量
	MonthlyScanLimit int      `json:"monthly_scan_limit"`
	Features         []string `json:"features"`
	Popular          bool     `json:"popular,omitempty"`
}
