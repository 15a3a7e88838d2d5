package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelScanEvents = "scan_events"
)

// ScanMessage 实时扫码事件，扫码路径发布，WebSocket 端订阅后推给码主
type ScanMessage struct {
	Type       string `json:"type"`
	UserID     int64  `json:"user_id"` // 码主，推送路由用
	QRCodeID   int64  `json:"qr_code_id"`
	ShortCode  string `json:"short_code"`
	ScannedAt  string `json:"scanned_at"`
	DeviceType string `json:"device_type"`
	OS         string `json:"os,omitempty"`
	Browser    string `json:"browser,omitempty"`
	Country    string `json:"country,omitempty"`
	TotalScans int64  `json:"total_scans"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishScan 发布扫码事件
func (p *Publisher) PublishScan(ctx context.Context, msg *ScanMessage) error {
	msg.Type = "scan"

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal scan message: %w", err)
	}

	return p.client.Publish(ctx, ChannelScanEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅扫码事件，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*ScanMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelScanEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var scanMsg ScanMessage
			if err := json.Unmarshal([]byte(msg.Payload), &scanMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&scanMsg)
		}
	}
}
