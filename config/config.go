package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Realtime delivery modes.
const (
	RealtimeModePush = "push"
	RealtimeModePoll = "poll"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Payment  PaymentConfig
	Realtime RealtimeConfig
	Admin    AdminConfig
	Session  SessionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds connection settings. Driver is "mysql" or "sqlite".
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// PaymentConfig holds the gateway credentials used to recompute signatures.
type PaymentConfig struct {
	GatewayKeyID     string
	GatewayKeySecret string
}

// RealtimeConfig selects push (WebSocket) or poll delivery. RedisAddr, when
// set in push mode, enables cross-instance relay.
type RealtimeConfig struct {
	Mode      string
	RedisAddr string
}

// AdminConfig seeds the super admin account at startup.
type AdminConfig struct {
	Email    string
	Password string
}

// SessionConfig holds table-session lifecycle settings.
type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// Load reads .env (if present) and builds the config from environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "mysql"),
			DSN:    os.Getenv("DB_DSN"),
		},
		Payment: PaymentConfig{
			GatewayKeyID:     os.Getenv("PAYMENT_GATEWAY_KEY_ID"),
			GatewayKeySecret: os.Getenv("PAYMENT_GATEWAY_KEY_SECRET"),
		},
		Realtime: RealtimeConfig{
			Mode:      getEnv("REALTIME_MODE", RealtimeModePush),
			RedisAddr: os.Getenv("REDIS_ADDR"),
		},
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Session: SessionConfig{
			IdleTimeout:   time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 60)) * time.Minute,
			SweepInterval: time.Duration(getEnvInt("SESSION_SWEEP_MINUTES", 5)) * time.Minute,
		},
	}

	if cfg.Database.Driver == "mysql" && cfg.Database.DSN == "" {
		cfg.Database.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			getEnv("DB_USER", "root"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_HOST", "127.0.0.1"),
			getEnv("DB_PORT", "3306"),
			getEnv("DB_NAME", "menumate"),
		)
	}

	if cfg.Realtime.Mode != RealtimeModePush && cfg.Realtime.Mode != RealtimeModePoll {
		return nil, fmt.Errorf("invalid REALTIME_MODE %q", cfg.Realtime.Mode)
	}

	return cfg, nil
}

// InitDB opens the database connection for the configured driver.
func InitDB(cfg DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	default:
		return gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
