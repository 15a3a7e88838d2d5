package dto

// CountItem 聚合计数条目（国家/设备等维度共用）
type CountItem struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// ScanEvent 单条扫码事件
type ScanEvent struct {
	Timestamp  string `json:"timestamp"`
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	DeviceType string `json:"device_type"`
	OS         string `json:"os,omitempty"`
	Browser    string `json:"browser,omitempty"`
}

// QRAnalytics 单个二维码的统计汇总
type QRAnalytics struct {
	QRCodeID       int64       `json:"qr_code_id"`
	TotalScans     int64       `json:"total_scans"`
	ScansToday     int64       `json:"scans_today"`
	ScansThisWeek  int64       `json:"scans_this_week"`
	ScansThisMonth int64       `json:"scans_this_month"`
	TopCountries   []CountItem `json:"top_countries"`
	TopDevices     []CountItem `json:"top_devices"`
	RecentScans    []ScanEvent `json:"recent_scans"`
}

// MostScannedQR 扫码次数最多的二维码
type MostScannedQR struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Scans int64  `json:"scans"`
}

// DashboardSummary 用户仪表盘汇总
type DashboardSummary struct {
	TotalQRCodes     int64          `json:"total_qr_codes"`
	TotalScans       int64          `json:"total_scans"`
	ScansThisMonth   int64          `json:"scans_this_month"`
	MonthlyScanUsed  int64          `json:"monthly_scan_used"`
	MonthlyScanLimit int            `json:"monthly_scan_limit"`
	MostScannedQR    *MostScannedQR `json:"most_scanned_qr,omitempty"`
	SubscriptionPlan string         `json:"subscription_plan"`
}
