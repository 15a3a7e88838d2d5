package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/config"
	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/model/dto"
	"github.com/qs3c/qr_go_server/internal/pkg/oss"
	"github.com/qs3c/qr_go_server/internal/pkg/qrgen"
	"github.com/qs3c/qr_go_server/internal/repository"
)

var (
	ErrQRNotFound      = errors.New("二维码不存在")
	ErrQRQuotaExceeded = errors.New("二维码配额不足，请升级套餐")
	ErrStaticQR        = errors.New("静态二维码不支持修改跳转地址")
	ErrLogoTooLarge    = errors.New("logo 文件过大")
	ErrLogoInvalidType = errors.New("logo 仅支持 PNG/JPEG 格式")
)

const shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type QRService struct {
	qrRepo    *repository.QRCodeRepository
	generator *qrgen.Generator
	ossClient *oss.Client // 可为空，空时制品只落本地磁盘
	cfg       *config.Config
}

func NewQRService(qrRepo *repository.QRCodeRepository, generator *qrgen.Generator, ossClient *oss.Client, cfg *config.Config) *QRService {
	return &QRService{
		qrRepo:    qrRepo,
		generator: generator,
		ossClient: ossClient,
		cfg:       cfg,
	}
}

// Create 创建二维码：检查配额、分配短码、渲染并落盘
func (s *QRService) Create(user *model.User, req *dto.CreateQRCodeRequest) (*dto.QRCodeInfo, error) {
	if err := s.checkQuota(user); err != nil {
		return nil, err
	}

	shortCode, err := s.allocateShortCode()
	if err != nil {
		return nil, err
	}

	qr := &model.QRCode{
		UserID:          &user.ID,
		Title:           req.Title,
		DestinationURL:  req.DestinationURL,
		ShortCode:       shortCode,
		IsDynamic:       req.IsDynamic,
		ForegroundColor: defaultStr(req.ForegroundColor, "#000000"),
		BackgroundColor: defaultStr(req.BackgroundColor, "#FFFFFF"),
		Style:           defaultStr(req.Style, model.StyleSquare),
		ErrorCorrection: defaultStr(req.ErrorCorrection, "M"),
		LogoPath:        req.LogoPath,
		IsActive:        true,
	}

	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("invalid expires_at: %w", err)
		}
		qr.ExpiresAt = &expiresAt
	}

	if err := s.render(qr); err != nil {
		return nil, err
	}

	if err := s.qrRepo.Create(qr); err != nil {
		s.generator.RemoveFiles(qr.ShortCode)
		return nil, err
	}

	return s.buildQRCodeInfo(qr), nil
}

// GetByID 获取单个二维码，非本人一律按不存在处理
func (s *QRService) GetByID(userID, qrID int64) (*dto.QRCodeInfo, error) {
	qr, err := s.getOwned(userID, qrID)
	if err != nil {
		return nil, err
	}
	return s.buildQRCodeInfo(qr), nil
}

// List 用户的二维码列表
func (s *QRService) List(userID int64, page, pageSize int, search string) ([]*dto.QRCodeInfo, int64, error) {
	qrs, total, err := s.qrRepo.ListByUserID(userID, page, pageSize, search)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]*dto.QRCodeInfo, 0, len(qrs))
	for _, qr := range qrs {
		infos = append(infos, s.buildQRCodeInfo(qr))
	}
	return infos, total, nil
}

// Update 更新二维码。跳转地址只有动态码可改；样式改动触发重新渲染。
func (s *QRService) Update(userID, qrID int64, req *dto.UpdateQRCodeRequest) (*dto.QRCodeInfo, error) {
	qr, err := s.getOwned(userID, qrID)
	if err != nil {
		return nil, err
	}

	if req.DestinationURL != nil && *req.DestinationURL != qr.DestinationURL {
		if !qr.IsDynamic {
			return nil, ErrStaticQR
		}
		qr.DestinationURL = *req.DestinationURL
	}

	if req.Title != nil {
		qr.Title = *req.Title
	}
	if req.IsActive != nil {
		qr.IsActive = *req.IsActive
	}

	restyled := false
	if req.ForegroundColor != nil && *req.ForegroundColor != qr.ForegroundColor {
		qr.ForegroundColor = *req.ForegroundColor
		restyled = true
	}
	if req.BackgroundColor != nil && *req.BackgroundColor != qr.BackgroundColor {
		qr.BackgroundColor = *req.BackgroundColor
		restyled = true
	}
	if req.Style != nil && *req.Style != qr.Style {
		qr.Style = *req.Style
		restyled = true
	}

	if restyled {
		if err := s.render(qr); err != nil {
			return nil, err
		}
	}

	if err := s.qrRepo.Update(qr); err != nil {
		return nil, err
	}

	return s.buildQRCodeInfo(qr), nil
}

// Delete 删除二维码及其生成文件
func (s *QRService) Delete(userID, qrID int64) error {
	qr, err := s.getOwned(userID, qrID)
	if err != nil {
		return err
	}

	if err := s.qrRepo.Delete(qr.ID); err != nil {
		return err
	}

	s.generator.RemoveFiles(qr.ShortCode)

	if s.ossClient != nil {
		if err := s.ossClient.DeleteArtifacts(qr.ShortCode); err != nil {
			log.Printf("Failed to delete OSS artifacts for %s: %v", qr.ShortCode, err)
		}
	}

	return nil
}

// SaveLogo 保存上传的 logo，返回存储路径
func (s *QRService) SaveLogo(userID int64, filename string, data []byte) (string, error) {
	if int64(len(data)) > s.cfg.QR.MaxLogoSizeMB*1024*1024 {
		return "", ErrLogoTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg":
	default:
		return "", ErrLogoInvalidType
	}

	if err := os.MkdirAll(s.cfg.QR.LogoDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.cfg.QR.LogoDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	if s.ossClient != nil {
		if _, err := s.ossClient.UploadLogo(userID, name, data); err != nil {
			log.Printf("Failed to mirror logo to OSS: %v", err)
		}
	}

	return path, nil
}

// ArtifactPath 指定格式的生成文件路径，下载接口用
func (s *QRService) ArtifactPath(userID, qrID int64, format string) (string, error) {
	qr, err := s.getOwned(userID, qrID)
	if err != nil {
		return "", err
	}

	switch format {
	case "png":
		return qr.FilePathPNG, nil
	case "svg":
		if qr.FilePathSVG == nil {
			return "", ErrQRNotFound
		}
		return *qr.FilePathSVG, nil
	case "pdf":
		return qr.FilePathPDF, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (s *QRService) checkQuota(user *model.User) error {
	plan := s.cfg.PlanFor(user.SubscriptionPlan)
	if plan.QRLimit <= 0 {
		return nil
	}

	count, err := s.qrRepo.CountByUserID(user.ID)
	if err != nil {
		return err
	}
	if count >= int64(plan.QRLimit) {
		return ErrQRQuotaExceeded
	}
	return nil
}

// allocateShortCode 生成 8 位随机短码，冲突时重试
func (s *QRService) allocateShortCode() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := randomShortCode(8)
		if err != nil {
			return "", err
		}

		exists, err := s.qrRepo.ExistsByShortCode(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("failed to allocate short code")
}

// render 渲染三种格式并写盘，同步更新文件路径字段
func (s *QRService) render(qr *model.QRCode) error {
	scanURL := s.scanURL(qr.ShortCode)

	opts := qrgen.Options{
		ForegroundColor: qr.ForegroundColor,
		BackgroundColor: qr.BackgroundColor,
		Style:           qr.Style,
		ErrorCorrection: qr.ErrorCorrection,
	}
	if qr.LogoPath != nil {
		opts.LogoPath = *qr.LogoPath
	}

	artifacts, err := s.generator.Generate(scanURL, opts)
	if err != nil {
		return err
	}

	paths, err := s.generator.SaveFiles(qr.ShortCode, artifacts)
	if err != nil {
		return err
	}

	qr.FilePathPNG = paths.PNG
	qr.FilePathSVG = &paths.SVG
	qr.FilePathPDF = paths.PDF

	// OSS 镜像尽力而为，失败只记日志
	if s.ossClient != nil {
		if _, err := s.ossClient.UploadArtifact(qr.ShortCode, ".png", artifacts.PNG); err != nil {
			log.Printf("Failed to mirror PNG to OSS for %s: %v", qr.ShortCode, err)
		}
		if _, err := s.ossClient.UploadArtifact(qr.ShortCode, ".svg", artifacts.SVG); err != nil {
			log.Printf("Failed to mirror SVG to OSS for %s: %v", qr.ShortCode, err)
		}
		if _, err := s.ossClient.UploadArtifact(qr.ShortCode, ".pdf", artifacts.PDF); err != nil {
			log.Printf("Failed to mirror PDF to OSS for %s: %v", qr.ShortCode, err)
		}
	}

	return nil
}

func (s *QRService) getOwned(userID, qrID int64) (*model.QRCode, error) {
	qr, err := s.qrRepo.GetByID(qrID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQRNotFound
		}
		return nil, err
	}
	if qr.UserID == nil || *qr.UserID != userID {
		return nil, ErrQRNotFound
	}
	return qr, nil
}

func (s *QRService) scanURL(shortCode string) string {
	return fmt.Sprintf("%s/s/%s", strings.TrimRight(s.cfg.Server.AppURL, "/"), shortCode)
}

func (s *QRService) buildQRCodeInfo(qr *model.QRCode) *dto.QRCodeInfo {
	info := &dto.QRCodeInfo{
		ID:              qr.ID,
		Title:           qr.Title,
		DestinationURL:  qr.DestinationURL,
		ShortCode:       qr.ShortCode,
		ScanURL:         s.scanURL(qr.ShortCode),
		IsDynamic:       qr.IsDynamic,
		IsActive:        qr.IsActive,
		TotalScans:      qr.TotalScans,
		ForegroundColor: qr.ForegroundColor,
		BackgroundColor: qr.BackgroundColor,
		Style:           qr.Style,
		ErrorCorrection: qr.ErrorCorrection,
		CreatedAt:       qr.CreatedAt.Format(time.RFC3339),
	}
	if qr.LastScannedAt != nil {
		info.LastScannedAt = qr.LastScannedAt.Format(time.RFC3339)
	}
	if qr.ExpiresAt != nil {
		info.ExpiresAt = qr.ExpiresAt.Format(time.RFC3339)
	}
	return info
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func randomShortCode(length int) (string, error) {
	code := make([]byte, length)
	max := big.NewInt(int64(len(shortCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = shortCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
