package service

import (
	"errors"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/config"
	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/model/dto"
	"github.com/qs3c/qr_go_server/internal/repository"
)

var (
	ErrTemplateNotFound  = errors.New("模板不存在")
	ErrAlreadyPurchased  = errors.New("已购买过该模板")
	ErrTemplateUnpayable = errors.New("模板暂不可购买")
)

type TemplateService struct {
	templateRepo *repository.TemplateRepository
	cfg          *config.Config
}

func NewTemplateService(templateRepo *repository.TemplateRepository, cfg *config.Config) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		cfg:          cfg,
	}
}

// List 模板市场列表
func (s *TemplateService) List(page, pageSize int, categoryID int64, freeOnly, featuredOnly bool) ([]*dto.TemplateInfo, int64, error) {
	tpls, total, err := s.templateRepo.List(page, pageSize, categoryID, freeOnly, featuredOnly)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]*dto.TemplateInfo, 0, len(tpls))
	for _, tpl := range tpls {
		infos = append(infos, buildTemplateInfo(tpl))
	}
	return infos, total, nil
}

// GetBySlug 模板详情
func (s *TemplateService) GetBySlug(slug string) (*dto.TemplateInfo, error) {
	tpl, err := s.templateRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return buildTemplateInfo(tpl), nil
}

// ListCategories 模板分类
func (s *TemplateService) ListCategories() ([]*model.TemplateCategory, error) {
	return s.templateRepo.ListCategories()
}

// Purchase 购买模板。免费模板直接记录，付费模板创建支付单返回凭据。
func (s *TemplateService) Purchase(user *model.User, templateID int64) (*dto.PurchaseResponse, error) {
	tpl, err := s.templateRepo.GetByID(templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if !tpl.IsActive {
		return nil, ErrTemplateNotFound
	}

	purchased, err := s.templateRepo.HasPurchased(user.ID, tpl.ID)
	if err != nil {
		return nil, err
	}
	if purchased {
		return nil, ErrAlreadyPurchased
	}

	purchase := &model.TemplatePurchase{
		UserID:      user.ID,
		TemplateID:  tpl.ID,
		Amount:      tpl.Price,
		PurchasedAt: time.Now(),
	}

	resp := &dto.PurchaseResponse{Amount: tpl.Price}

	if !tpl.IsFree && tpl.Price > 0 {
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(int64(tpl.Price * 100)), // 欧分
			Currency: stripe.String(string(stripe.CurrencyEUR)),
		}
		if user.StripeCustomerID != nil {
			params.Customer = stripe.String(*user.StripeCustomerID)
		}
		params.AddMetadata("template_id", tpl.Slug)

		pi, err := paymentintent.New(params)
		if err != nil {
			return nil, ErrTemplateUnpayable
		}

		purchase.StripePaymentIntentID = &pi.ID
		resp.ClientSecret = pi.ClientSecret
		resp.PaymentIntentID = pi.ID
	}

	if err := s.templateRepo.CreatePurchase(purchase); err != nil {
		return nil, err
	}

	if err := s.templateRepo.IncrementDownloads(tpl.ID); err != nil {
		return nil, err
	}

	resp.PurchaseID = purchase.ID
	return resp, nil
}

// ListPurchases 用户的购买记录
func (s *TemplateService) ListPurchases(userID int64) ([]dto.PurchaseInfo, error) {
	purchases, err := s.templateRepo.ListPurchasesByUser(userID)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.PurchaseInfo, 0, len(purchases))
	for _, p := range purchases {
		info := dto.PurchaseInfo{
			ID:          p.ID,
			TemplateID:  p.TemplateID,
			Amount:      p.Amount,
			PurchasedAt: p.PurchasedAt.Format(time.RFC3339),
		}
		if p.Template != nil {
			info.TemplateTitle = p.Template.Title
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func buildTemplateInfo(tpl *model.Template) *dto.TemplateInfo {
	info := &dto.TemplateInfo{
		ID:           tpl.ID,
		Title:        tpl.Title,
		Slug:         tpl.Slug,
		Description:  tpl.Description,
		PreviewImage: tpl.PreviewImage,
		Price:        tpl.Price,
		IsFree:       tpl.IsFree,
		IsFeatured:   tpl.IsFeatured,
		Downloads:    tpl.Downloads,
		Rating:       tpl.Rating,
	}
	if tpl.Category != nil {
		info.Category = tpl.Category.Name
	}
	return info
}
