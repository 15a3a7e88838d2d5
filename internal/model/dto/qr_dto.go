package dto

// CreateQRCodeRequest 创建二维码请求
type CreateQRCodeRequest struct {
	Title           string  `json:"title" binding:"required,max=200"`
	DestinationURL  string  `json:"destination_url" binding:"required,url"`
	IsDynamic       bool    `json:"is_dynamic"`
	ForegroundColor string  `json:"foreground_color" binding:"omitempty,hexcolor"`
	BackgroundColor string  `json:"background_color" binding:"omitempty,hexcolor"`
	Style           string  `json:"style" binding:"omitempty,oneof=square rounded dots"`
	ErrorCorrection string  `json:"error_correction" binding:"omitempty,oneof=L M Q H"`
	LogoPath        *string `json:"logo_path,omitempty"`
	ExpiresAt       *string `json:"expires_at,omitempty"` // RFC3339
}

// UpdateQRCodeRequest 更新二维码请求，空字段不改动
type UpdateQRCodeRequest struct {
	Title           *string `json:"title,omitempty" binding:"omitempty,max=200"`
	DestinationURL  *string `json:"destination_url,omitempty" binding:"omitempty,url"`
	ForegroundColor *string `json:"foreground_color,omitempty" binding:"omitempty,hexcolor"`
	BackgroundColor *string `json:"background_color,omitempty" binding:"omitempty,hexcolor"`
	Style           *string `json:"style,omitempty" binding:"omitempty,oneof=square rounded dots"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

// QRCodeInfo 二维码信息（返回给前端）
type QRCodeInfo struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	DestinationURL  string `json:"destination_url"`
	ShortCode       string `json:"short_code"`
	ScanURL         string `json:"scan_url"`
	IsDynamic       bool   `json:"is_dynamic"`
	IsActive        bool   `json:"is_active"`
	TotalScans      int64  `json:"total_scans"`
	LastScannedAt   string `json:"last_scanned_at,omitempty"`
	ForegroundColor string `json:"foreground_color"`
	BackgroundColor string `json:"background_color"`
	Style           string `json:"style"`
	ErrorCorrection string `json:"error_correction"`
	ExpiresAt       string `json:"expires_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// UploadLogoResponse logo 上传响应
type UploadLogoResponse struct {
	LogoPath string `json:"logo_path"`
}
