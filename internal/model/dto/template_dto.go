package dto

// TemplateInfo 模板信息（返回给前端）
type TemplateInfo struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description"`
	PreviewImage string  `json:"preview_image"`
	Price        float64 `json:"price"`
	IsFree       bool    `json:"is_free"`
	IsFeatured   bool    `json:"is_featured"`
	Downloads    int     `json:"downloads"`
	Rating       float64 `json:"rating"`
	Category     string  `json:"category,omitempty"`
}

// PurchaseResponse 购买响应，付费模板返回支付凭据
type PurchaseResponse struct {
	PurchaseID      int64   `json:"purchase_id"`
	Amount          float64 `json:"amount"`
	ClientSecret    string  `json:"client_secret,omitempty"`
	PaymentIntentID string  `json:"payment_intent_id,omitempty"`
}

// PurchaseInfo 购买记录
type PurchaseInfo struct {
	ID            int64   `json:"id"`
	TemplateID    int64   `json:"template_id"`
	TemplateTitle string  `json:"template_title,omitempty"`
	Amount        float64 `json:"amount"`
	PurchasedAt   string  `json:"purchased_at"`
}
