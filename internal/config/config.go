// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// 認証プロバイダー
	AuthURL         string
	AuthAPIKey      string
	AuthJWTSecret   string
	AuthJWTIssuer   string
	AuthJWTAudience string

	// Session
	SessionMaxAge int

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitMessage int

	// ブランドの無料トライアル
	BrandTrialDays     int
	TrialCheckInterval time.Duration

	// Logging
	LogLevel string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.DatabaseURL = required("DATABASE_URL")
	cfg.AuthURL = required("AUTH_URL")
	cfg.AuthAPIKey = required("AUTH_API_KEY")
	cfg.AuthJWTSecret = required("AUTH_JWT_SECRET")
	cfg.BaseURL = required("BASE_URL")

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	cfg.AuthJWTIssuer = getEnvString("AUTH_JWT_ISSUER", "")
	cfg.AuthJWTAudience = getEnvString("AUTH_JWT_AUDIENCE", "authenticated")
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 3600)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitMessage = getEnvInt("RATE_LIMIT_MESSAGE", 30)
	cfg.BrandTrialDays = getEnvInt("BRAND_TRIAL_DAYS", 7)
	cfg.TrialCheckInterval = getEnvDuration("TRIAL_CHECK_INTERVAL", time.Hour)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if cfg.RateLimitGeneral <= 0 || cfg.RateLimitMessage <= 0 {
		return nil, fmt.Errorf("rate limits must be positive: general=%d message=%d", cfg.RateLimitGeneral, cfg.RateLimitMessage)
	}
	if cfg.BrandTrialDays <= 0 {
		return nil, fmt.Errorf("BRAND_TRIAL_DAYS must be positive: %d", cfg.BrandTrialDays)
	}

	return cfg, nil
}

// BrandTrialPeriod はブランドの無料トライアル期間を返す。
func (c *Config) BrandTrialPeriod() time.Duration {
	return time.Duration(c.BrandTrialDays) * 24 * time.Hour
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
