package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"github.com/qs3c/qr_go_server/config"
	"github.com/qs3c/qr_go_server/internal/model"
	"github.com/qs3c/qr_go_server/internal/model/dto"
	"github.com/qs3c/qr_go_server/internal/pkg/email"
	"github.com/qs3c/qr_go_server/internal/repository"
)

var (
	ErrUnknownPlan       = errors.New("未知的订阅套餐")
	ErrNoBillingAccount  = errors.New("尚未开通订阅，无法访问账单门户")
	ErrInvalidWebhook    = errors.New("webhook 签名校验失败")
	ErrAlreadySubscribed = errors.New("当前已是该套餐")
)

type PaymentService struct {
	userRepo *repository.UserRepository
	emailSvc *email.Service
	cfg      *config.Config
}

func NewPaymentService(userRepo *repository.UserRepository, emailSvc *email.Service, cfg *config.Config) *PaymentService {
	stripe.Key = cfg.Stripe.SecretKey
	return &PaymentService{
		userRepo: userRepo,
		emailSvc: emailSvc,
		cfg:      cfg,
	}
}

// CreateCheckout 创建订阅结账会话
func (s *PaymentService) CreateCheckout(user *model.User, plan string) (*dto.CheckoutResponse, error) {
	planCfg, ok := s.cfg.Plans[plan]
	if !ok || planCfg.StripePriceID == "" {
		return nil, ErrUnknownPlan
	}
	if user.SubscriptionPlan == plan {
		return nil, ErrAlreadySubscribed
	}

	customerID, err := s.ensureCustomer(user)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(planCfg.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.Server.FrontendURL + "/dashboard?checkout=success"),
		CancelURL:  stripe.String(s.cfg.Server.FrontendURL + "/pricing?checkout=cancelled"),
	}
	params.AddMetadata("user_id", fmt.Sprintf("%d", user.ID))
	params.AddMetadata("plan", plan)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &dto.CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// CreatePortal 创建 Stripe 客户门户会话，用户自助管理订阅
func (s *PaymentService) CreatePortal(user *model.User) (*dto.PortalResponse, error) {
	if user.StripeCustomerID == nil {
		return nil, ErrNoBillingAccount
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*user.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.Server.FrontendURL + "/dashboard"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create portal session: %w", err)
	}

	return &dto.PortalResponse{URL: sess.URL}, nil
}

// ListPlans 套餐目录
func (s *PaymentService) ListPlans() []dto.PlanInfo {
	plans := []dto.PlanInfo{
		{
			ID:       model.PlanFree,
			Name:     "Free",
			Currency: "eur",
			Interval: "month",
			Features: []string{"基础二维码生成", "扫码跳转", "基础样式定制"},
		},
		{
			ID:       model.PlanPro,
			Name:     "Pro",
			Currency: "eur",
			Interval: "month",
			Features: []string{"动态二维码", "扫码统计分析", "Logo 嵌入", "SVG/PDF 导出"},
			Popular:  true,
		},
		{
			ID:       model.PlanBusiness,
			Name:     "Business",
			Currency: "eur",
			Interval: "month",
			Features: []string{"Pro 全部功能", "不限量二维码", "实时扫码推送", "优先支持"},
		},
	}

	for i := range plans {
		planCfg := s.cfg.PlanFor(plans[i].ID)
		plans[i].Price = planCfg.Price
		plans[i].QRLimit = planCfg.QRLimit
		plans[i].MonthlyScanLimit = planCfg.MonthlyScanLimit
	}
	return plans
}

// HandleWebhook 处理 Stripe 回调，签名不合法直接拒绝
func (s *PaymentService) HandleWebhook(payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.cfg.Stripe.WebhookSecret)
	if err != nil {
		return ErrInvalidWebhook
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(event.Data.Raw)
	case "customer.subscription.updated":
		return s.handleSubscriptionUpdated(event.Data.Raw)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(event.Data.Raw)
	default:
		// 其余事件确认收到即可
		return nil
	}
}

// ensureCustomer 确保用户有对应的 Stripe 客户，没有则创建并回写
func (s *PaymentService) ensureCustomer(user *model.User) (string, error) {
	if user.StripeCustomerID != nil {
		return *user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
	}
	if user.FullName != "" {
		params.Name = stripe.String(user.FullName)
	}
	params.AddMetadata("user_id", fmt.Sprintf("%d", user.ID))

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}

	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"stripe_customer_id": cust.ID,
	}); err != nil {
		return "", err
	}
	user.StripeCustomerID = &cust.ID

	return cust.ID, nil
}

func (s *PaymentService) handleCheckoutCompleted(raw json.RawMessage) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	plan := sess.Metadata["plan"]
	if _, ok := s.cfg.Plans[plan]; !ok {
		return fmt.Errorf("checkout completed with unknown plan: %q", plan)
	}

	user, err := s.userByCustomer(sess.Customer)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"subscription_plan":    plan,
		"subscription_ends_at": time.Now().Add(30 * 24 * time.Hour),
	}
	if sess.Subscription != nil {
		fields["stripe_subscription_id"] = sess.Subscription.ID
	}
	if err := s.userRepo.UpdateFields(user.ID, fields); err != nil {
		return err
	}

	if s.emailSvc != nil {
		go s.emailSvc.SendSubscriptionConfirmation(user.Email, plan, s.cfg.Server.FrontendURL+"/dashboard")
	}

	log.Printf("User %d upgraded to %s", user.ID, plan)
	return nil
}

// handleSubscriptionUpdated 按订阅当前的价格对账套餐
func (s *PaymentService) handleSubscriptionUpdated(raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return nil
	}
	priceID := sub.Items.Data[0].Price.ID

	plan := s.planByPriceID(priceID)
	if plan == "" {
		log.Printf("Subscription %s has unrecognized price %s, skipping", sub.ID, priceID)
		return nil
	}

	user, err := s.userByCustomer(sub.Customer)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"subscription_plan":      plan,
		"stripe_subscription_id": sub.ID,
	}
	if sub.CurrentPeriodEnd > 0 {
		fields["subscription_ends_at"] = time.Unix(sub.CurrentPeriodEnd, 0)
	}

	return s.userRepo.UpdateFields(user.ID, fields)
}

// handleSubscriptionDeleted 订阅终止，回落免费套餐
func (s *PaymentService) handleSubscriptionDeleted(raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	user, err := s.userByCustomer(sub.Customer)
	if err != nil {
		return err
	}

	log.Printf("User %d subscription cancelled, reverting to free", user.ID)

	return s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"subscription_plan":      model.PlanFree,
		"stripe_subscription_id": nil,
		"subscription_ends_at":   nil,
	})
}

func (s *PaymentService) userByCustomer(cust *stripe.Customer) (*model.User, error) {
	if cust == nil || cust.ID == "" {
		return nil, errors.New("webhook event has no customer")
	}

	user, err := s.userRepo.GetByStripeCustomerID(cust.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no user for stripe customer %s", cust.ID)
		}
		return nil, err
	}
	return user, nil
}

func (s *PaymentService) planByPriceID(priceID string) string {
	for name, planCfg := range s.cfg.Plans {
		if planCfg.StripePriceID != "" && planCfg.StripePriceID == priceID {
			return name
		}
	}
	return ""
}
