package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/model/dto"
	"github.com/qs3c/qr_go_server/internal/repository"
)

type AdminService struct {
	userRepo *repository.UserRepository
	qrRepo   *repository.QRCodeRepository
	scanRepo *repository.ScanRepository
}

func NewAdminService(userRepo *repository.UserRepository, qrRepo *repository.QRCodeRepository, scanRepo *repository.ScanRepository) *AdminService {
	return &AdminService{
		userRepo: userRepo,
		qrRepo:   qrRepo,
		scanRepo: scanRepo,
	}
}

// GetPlatformStats 平台总览
func (s *AdminService) GetPlatformStats() (*dto.PlatformStats, error) {
	stats := &dto.PlatformStats{}

	var err error
	if stats.TotalUsers, err = s.userRepo.CountAll(); err != nil {
		return nil, err
	}
	if stats.FreeUsers, err = s.userRepo.CountByPlan(model.PlanFree); err != nil {
		return nil, err
	}
	if stats.ProUsers, err = s.userRepo.CountByPlan(model.PlanPro); err != nil {
		return nil, err
	}
	if stats.BusinessUsers, err = s.userRepo.CountByPlan(model.PlanBusiness); err != nil {
		return nil, err
	}
	if stats.TotalQRCodes, err = s.qrRepo.CountAll(); err != nil {
		return nil, err
	}
	if stats.ActiveQRCodes, err = s.qrRepo.CountActive(); err != nil {
		return nil, err
	}
	if stats.TotalScans, err = s.scanRepo.CountAll(); err != nil {
		return nil, err
	}

	return stats, nil
}

// ListUsers 管理端用户列表，附带每个用户的二维码与扫码量
func (s *AdminService) ListUsers(page, pageSize int, search, plan string) ([]dto.AdminUserInfo, int64, error) {
	users, total, err := s.userRepo.List(page, pageSize, search, plan)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]dto.AdminUserInfo, 0, len(users))
	for _, user := range users {
		info := dto.AdminUserInfo{
			ID:               user.ID,
			Email:            user.Email,
			FullName:         user.FullName,
			Role:             user.Role,
			SubscriptionPlan: user.SubscriptionPlan,
			IsVerified:       user.IsVerified,
			CreatedAt:        user.CreatedAt.Format(time.RFC3339),
		}

		if info.TotalQRCodes, err = s.qrRepo.CountByUserID(user.ID); err != nil {
			return nil, 0, err
		}
		if info.TotalScans, err = s.scanRepo.CountByUser(user.ID); err != nil {
			return nil, 0, err
		}

		infos = append(infos, info)
	}
	return infos, total, nil
}

// UpdateUser 管理端更新用户，空字段不改动
func (s *AdminService) UpdateUser(userID int64, req *dto.AdminUpdateUserRequest) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	if req.SubscriptionPlan != nil {
		fields["subscription_plan"] = *req.SubscriptionPlan
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.IsVerified != nil {
		fields["is_verified"] = *req.IsVerified
	}

	if len(fields) == 0 {
		return nil
	}
	return s.userRepo.UpdateFields(userID, fields)
}
