package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	Environment       string
	ListenAddr        string
	PostgresURI       string
	RedisURI          string
	FrontendURL       string
	R2                R2
	SecretKey         string
	CookieName        string
	SignedURLTTL      time.Duration
	DefaultTimezone   string
	WeekStart         string
	BoardIdleTTL      time.Duration
	NotificationTTL   time.Duration
	WorkflowURL       string
	WorkflowSecret    string
	BrandPresetPath   string
	MigrationsEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Environment:     getEnv("ENV", "development"),
		ListenAddr:      getEnv("LISTEN_ADDR", ":3000"),
		PostgresURI:     getEnv("POSTGRES_URI", ""),
		RedisURI:        getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", "carousel-media"),
		},
		SecretKey:         getEnv("SECRET_KEY", ""),
		CookieName:        getEnv("COOKIE_NAME", "carousel_session"),
		SignedURLTTL:      getDuration("SIGNED_URL_TTL", time.Hour),
		DefaultTimezone:   getEnv("DEFAULT_TIMEZONE", "UTC"),
		WeekStart:         getEnv("WEEK_START", "sunday"),
		BoardIdleTTL:      getDuration("BOARD_IDLE_TTL", 2*time.Hour),
		NotificationTTL:   getDuration("NOTIFICATION_TTL", 5*time.Second),
		WorkflowURL:       getEnv("WORKFLOW_URL", ""),
		WorkflowSecret:    getEnv("WORKFLOW_SECRET", ""),
		BrandPresetPath:   getEnv("BRAND_PRESET_PATH", "brand_presets.yaml"),
		MigrationsEnabled: getBool("RUN_MIGRATIONS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}
