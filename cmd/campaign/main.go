package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/qs3c/qr_go_server/config"
	"github.com/qs3c/qr_go_server/internal/database"
	"github.com/qs3c/qr_go_server/internal/pkg/email"
	"github.com/qs3c/qr_go_server/internal/repository"
)

var (
	dryRun       = flag.Bool("dry-run", true, "Dry run mode, don't actually send emails")
	discountCode = flag.String("discount", "UPGRADE20", "Discount code included in promotion emails")
)

// 免费用户营销批处理：注册满 N 天且建过码的发升级促销，
// 已用满配额的发配额提醒。定时任务每天跑一次。
func main() {
	flag.Parse()

	log.Println("📣 Starting upgrade campaign...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	qrRepo := repository.NewQRCodeRepository(db)
	emailSvc := email.NewService(&cfg.Email)

	cutoff := time.Now().AddDate(0, 0, -cfg.Campaign.PromoAfterDays)
	users, err := userRepo.ListFreeUsersRegisteredBefore(cutoff)
	if err != nil {
		log.Fatalf("Failed to list free users: %v", err)
	}
	log.Printf("Found %d free users registered before %s", len(users), cutoff.Format("2006-01-02"))

	pricingURL := cfg.Server.FrontendURL + "/pricing"
	qrLimit := cfg.PlanFor("free").QRLimit
	interval := time.Duration(cfg.Campaign.SendIntervalMS) * time.Millisecond

	promoSent := 0
	limitSent := 0
	skipped := 0

	for _, user := range users {
		count, err := qrRepo.CountByUserID(user.ID)
		if err != nil {
			log.Printf("  ⚠️  Failed to count qrcodes for user %d: %v", user.ID, err)
			continue
		}

		// 没建过码的用户促销也没意义
		if count == 0 {
			skipped++
			continue
		}

		if qrLimit > 0 && count >= int64(qrLimit) {
			log.Printf("  - %s: at quota (%d/%d), sending limit notice", user.Email, count, qrLimit)
			if !*dryRun {
				if err := emailSvc.SendLimitReached(user.Email, user.FullName, pricingURL, qrLimit); err != nil {
					log.Printf("    ❌ Failed to send: %v", err)
					continue
				}
			}
			limitSent++
		} else {
			log.Printf("  - %s: %d qrcodes, sending upgrade promotion", user.Email, count)
			if !*dryRun {
				if err := emailSvc.SendUpgradePromotion(user.Email, user.FullName, pricingURL, *discountCode); err != nil {
					log.Printf("    ❌ Failed to send: %v", err)
					continue
				}
			}
			promoSent++
		}

		if interval > 0 {
			time.Sleep(interval)
		}
	}

	log.Println("\n" + strings.Repeat("=", 60))
	log.Println("📊 Campaign Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Promotion emails: %d", promoSent)
	log.Printf("Limit notices: %d", limitSent)
	log.Printf("Skipped (no qrcodes): %d", skipped)
	if *dryRun {
		log.Println("\n⚠️  DRY RUN MODE - No emails were actually sent")
		log.Println("   Run with -dry-run=false to actually send")
	} else {
		log.Println("\n✅ Campaign completed!")
	}
	log.Println(strings.Repeat("=", 60))
}
