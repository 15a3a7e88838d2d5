package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/qs3c/qr_go_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendWelcome 发送注册欢迎邮件
func (s *Service) SendWelcome(to, name, dashboardURL string) error {
	subject := "欢迎加入 - 二维码管理平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4f46e5;">欢迎加入！</h2>
        <p>您好，%s！</p>
        <p>感谢您注册二维码管理平台。现在您可以：</p>
        <ul>
            <li>创建自定义样式的二维码</li>
            <li>配置颜色、码点样式和 logo</li>
            <li>实时跟踪扫码数据</li>
        </ul>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4f46e5; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">进入控制台</a>
        </div>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, name, dashboardURL)

	return s.sendHTML(to, subject, body)
}

// SendSubscriptionConfirmation 发送订阅开通确认邮件
func (s *Service) SendSubscriptionConfirmation(to, plan, dashboardURL string) error {
	subject := "订阅已开通 - 二维码管理平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #10b981;">订阅已开通</h2>
        <p>您的 <strong>%s</strong> 订阅已生效，高级功能已全部解锁：</p>
        <ul>
            <li>不限量二维码</li>
            <li>动态二维码（随时改跳转地址）</li>
            <li>完整扫码分析</li>
            <li>PNG / SVG / PDF 导出</li>
        </ul>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4f46e5; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">进入控制台</a>
        </div>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, strings.ToUpper(plan), dashboardURL)

	return s.sendHTML(to, subject, body)
}

// SendUpgradePromotion 向免费用户发送升级促销邮件
func (s *Service) SendUpgradePromotion(to, name, pricingURL, discountCode string) error {
	subject := "解锁全部功能 - 二维码管理平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4f46e5;">您好，%s</h2>
        <p>您正在使用免费版，升级 PRO 可以获得：</p>
        <div style="background-color: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
            <ul style="margin: 0;">
                <li>不限量二维码</li>
                <li>详细扫码分析（国家、设备、实时事件）</li>
                <li>动态二维码</li>
                <li>PNG / SVG / PDF 导出</li>
            </ul>
        </div>
        <p>使用优惠码 <code style="background: #fff; padding: 4px 8px;">%s</code> 首月八折。</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4f46e5; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">升级到 PRO</a>
        </div>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, name, discountCode, pricingURL)

	return s.sendHTML(to, subject, body)
}

// SendLimitReached 免费额度用满时的升级提醒
func (s *Service) SendLimitReached(to, name, pricingURL string, limit int) error {
	subject := "二维码额度已用完 - 二维码管理平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #f59e0b;">额度已用完</h2>
        <p>您好，%s！</p>
        <p>您已创建 %d 个二维码，达到了免费套餐的上限。升级 PRO 后不再受限。</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4f46e5; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">查看套餐</a>
        </div>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, name, limit, pricingURL)

	return s.sendHTML(to, subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
