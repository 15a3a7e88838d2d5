package oss

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/qr_go_server/config"
)

type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
	}, nil
}

// UploadArtifact 上传二维码渲染产物（png/svg/pdf），同一短码重复上传直接覆盖
func (c *Client) UploadArtifact(shortCode, ext string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("qrcodes/%s%s", shortCode, ext)

	err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType(getContentType(ext)))
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// UploadLogo 上传用户 logo
func (c *Client) UploadLogo(userID int64, filename string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("logos/%d/%s", userID, filename)

	ext := filename[strings.LastIndex(filename, "."):]
	err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType(getContentType(ext)))
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// DeleteArtifacts 删除短码对应的全部渲染产物
func (c *Client) DeleteArtifacts(shortCode string) error {
	for _, ext := range []string{".png", ".svg", ".pdf"} {
		objectKey := fmt.Sprintf("qrcodes/%s%s", shortCode, ext)
		if err := c.bucket.DeleteObject(objectKey); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", objectKey, err)
		}
	}
	return nil
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.client.Config.Endpoint, objectKey)
}

// getContentType 根据扩展名获取 Content-Type
func getContentType(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
