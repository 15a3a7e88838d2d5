package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig          `mapstructure:"server"`
	Database DatabaseConfig        `mapstructure:"database"`
	Redis    RedisConfig           `mapstructure:"redis"`
	JWT      JWTConfig             `mapstructure:"jwt"`
	Email    EmailConfig           `mapstructure:"email"`
	Stripe   StripeConfig          `mapstructure:"stripe"`
	QR       QRConfig              `mapstructure:"qr"`
	OSS      OSSConfig             `mapstructure:"oss"`
	Plans    map[string]PlanConfig `mapstructure:"plans"`
	CORS     CORSConfig            `mapstructure:"cors"`
	Campaign CampaignConfig        `mapstructure:"campaign"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	AppURL      string `mapstructure:"app_url"`      // 扫码短链的基础地址
	FrontendURL string `mapstructure:"frontend_url"` // 支付完成后跳回的前端地址
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type QRConfig struct {
	StoragePath   string `mapstructure:"storage_path"`     // 生成文件的本地存储目录
	LogoDir       string `mapstructure:"logo_dir"`         // 上传 logo 的存储目录
	Size          int    `mapstructure:"size"`             // 输出图片边长（像素）
	MaxLogoSizeMB int64  `mapstructure:"max_logo_size_mb"` // logo 上传大小限制
}

type OSSConfig struct {
	Enabled         bool   `mapstructure:"enabled"` // 关闭时制品只落本地磁盘
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type PlanConfig struct {
	QRLimit          int     `mapstructure:"qr_limit"`           // <=0 表示不限量
	MonthlyScanLimit int     `mapstructure:"monthly_scan_limit"` // 仅用于展示，不拦截扫码
	Price            float64 `mapstructure:"price"`
	StripePriceID    string  `mapstructure:"stripe_price_id"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type CampaignConfig struct {
	PromoAfterDays int `mapstructure:"promo_after_days"` // 注册满 N 天的免费用户才发促销
	SendIntervalMS int `mapstructure:"send_interval_ms"` // 批量发信间隔，避免触发限流
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PlanFor 返回套餐配置，未知套餐按 free 处理
func (c *Config) PlanFor(plan string) PlanConfig {
	if p, ok := c.Plans[plan]; ok {
		return p
	}
	return c.Plans["free"]
}
