package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/menumate/menumate/config"
	"github.com/menumate/menumate/models"
	"github.com/menumate/menumate/realtime"
	"github.com/menumate/menumate/router"
	"github.com/menumate/menumate/services"
	"github.com/menumate/menumate/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)
	seedSuperAdmin(db, cfg.Admin)

	// Realtime delivery: push (WebSocket hub, optionally relayed through
	// Redis) or poll (clients re-fetch the snapshot endpoints).
	var bridge *realtime.RedisBridge
	if cfg.Realtime.Mode == config.RealtimeModePush && cfg.Realtime.RedisAddr != "" {
		bridge = realtime.NewRedisBridge(redis.NewClient(&redis.Options{
			Addr: cfg.Realtime.RedisAddr,
		}))
		utils.InfoLogger.Printf("Realtime relay via Redis at %s", cfg.Realtime.RedisAddr)
	}
	hub := realtime.NewHub(bridge)

	var notifier realtime.Notifier
	if cfg.Realtime.Mode == config.RealtimeModePush {
		notifier = realtime.NewPushNotifier(hub)
	} else {
		notifier = realtime.NoopNotifier{}
	}
	utils.InfoLogger.Printf("Realtime mode: %s", cfg.Realtime.Mode)

	sessionSvc := services.NewSessionService(db, notifier, cfg.Session.IdleTimeout)
	sessionSvc.StartExpirySweeper(cfg.Session.SweepInterval)
	defer sessionSvc.Stop()

	orderSvc := services.NewOrderService(db, notifier, sessionSvc)
	paymentSvc := services.NewPaymentService(db, notifier, sessionSvc, cfg.Payment.GatewayKeySecret)
	subscriptionSvc := services.NewSubscriptionService(db)

	r := router.SetupRouter(router.Deps{
		DB:            db,
		Hub:           hub,
		Sessions:      sessionSvc,
		Orders:        orderSvc,
		Payments:      paymentSvc,
		Subscriptions: subscriptionSvc,
		GatewayKeyID:  cfg.Payment.GatewayKeyID,
	})

	utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Category{},
		&models.MenuItem{},
		&models.TableSession{},
		&models.Order{},
		&models.OrderItem{},
		&models.PlatformSetting{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

// seedSuperAdmin creates the platform admin account once, from env.
func seedSuperAdmin(db *gorm.DB, cfg config.AdminConfig) {
	if cfg.Email == "" || cfg.Password == "" {
		return
	}

	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count)
	if count > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		Name:             "Platform Admin",
		Email:            cfg.Email,
		Password:         string(hashed),
		Role:             models.RoleSuperAdmin,
		Status:           models.UserStatusActive,
		SubscriptionTier: models.TierFree,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := db.Create(&admin).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to seed super admin: %v", err)
		return
	}
	utils.InfoLogger.Printf("Seeded super admin %s", cfg.Email)
}
