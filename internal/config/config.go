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
	DatabaseURL string
	AutoMigrate bool

	// Security
	SecretKey      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	// Environment
	Environment string
	Debug       bool

	// Task list
	TaskListDefaultLimit int
	TaskListMaxLimit     int

	// Rate Limit (req/min)
	RateLimitGeneral int
	RateLimitLogin   int

	// Server
	ServerPort string

	// CORS（カンマ区切りで複数指定可能）
	CORSAllowedOrigins []string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SecretKey = os.Getenv("SECRET_KEY")
	if cfg.SecretKey == "" {
		missing = append(missing, "SECRET_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.AutoMigrate = getEnvBool("AUTO_MIGRATE", true)
	cfg.AccessTokenTTL = time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", 10)
	cfg.Environment = getEnvString("ENVIRONMENT", "development")
	cfg.Debug = getEnvBool("DEBUG", false)
	cfg.TaskListDefaultLimit = getEnvInt("TASK_LIST_DEFAULT_LIMIT", 100)
	cfg.TaskListMaxLimit = getEnvInt("TASK_LIST_MAX_LIMIT", 1000)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGIN", []string{"http://localhost:3000"})

	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if cfg.RateLimitGeneral < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_GENERAL must be at least 1 req/min")
	}
	if cfg.RateLimitLogin < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_LOGIN must be at least 1 req/min")
	}
	if cfg.TaskListMaxLimit < 1 {
		return nil, fmt.Errorf("TASK_LIST_MAX_LIMIT must be at least 1")
	}
	if cfg.TaskListDefaultLimit < 1 || cfg.TaskListDefaultLimit > cfg.TaskListMaxLimit {
		return nil, fmt.Errorf("TASK_LIST_DEFAULT_LIMIT must be between 1 and %d", cfg.TaskListMaxLimit)
	}

	return cfg, nil
}

// IsProduction は本番環境で動作しているかどうかを返す。
// 本番環境ではHSTSヘッダーを付与する。
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getEnvList はカンマ区切りの環境変数を空要素を除いて分割する。
func getEnvList(key string, defaultVal []string) []string {
	var list []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	if len(list) == 0 {
		return defaultVal
	}
	return list
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

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
