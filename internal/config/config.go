package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Server
	ServerPort string

	// Logging
	LogLevel string

	// CORS
	CORSAllowedOrigin string

	// Rate Limit
	RateLimitGeneral int
	RateLimitIngest  int

	// App
	Flavor            string
	DefaultVolumeUnit string
	DefaultLanguage   string

	// Cache / Session
	ProductCacheTTL   time.Duration
	HistorySessionTTL time.Duration

	// Cleanup
	ProductRetentionDays int

	// Links
	NutriScoreURL   string
	NutrientInfoURL string
}

// LoadDotEnv はカレントディレクトリ（またはpaths）の.envファイルを環境変数に読み込む。
// ファイルが存在しない場合は何もしない。既に設定済みの環境変数は上書きしない。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf(".envファイルの読み込みに失敗しました (%s): %w", p, err)
		}
	}
	return nil
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合や、値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitIngest = getEnvInt("RATE_LIMIT_INGEST", 30)
	cfg.Flavor = getEnvString("APP_FLAVOR", "off")
	cfg.DefaultVolumeUnit = getEnvString("DEFAULT_VOLUME_UNIT", "l")
	cfg.DefaultLanguage = getEnvString("DEFAULT_LANGUAGE", "en")
	cfg.ProductCacheTTL = getEnvDuration("PRODUCT_CACHE_TTL", 10*time.Minute)
	cfg.HistorySessionTTL = getEnvDuration("HISTORY_SESSION_TTL", 30*time.Minute)
	cfg.ProductRetentionDays = getEnvInt("PRODUCT_RETENTION_DAYS", 90)
	cfg.NutriScoreURL = getEnvString("NUTRISCORE_URL", "https://world.openfoodfacts.org/nutriscore")
	cfg.NutrientInfoURL = getEnvString("NUTRIENT_INFO_URL", "https://world.openfoodfacts.org/nutrient-levels")

	switch cfg.Flavor {
	case "off", "obf", "opff", "opf":
	default:
		return nil, fmt.Errorf("invalid APP_FLAVOR: %q", cfg.Flavor)
	}
	switch cfg.DefaultVolumeUnit {
	case "l", "oz":
	default:
		return nil, fmt.Errorf("invalid DEFAULT_VOLUME_UNIT: %q", cfg.DefaultVolumeUnit)
	}

	return cfg, nil
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
