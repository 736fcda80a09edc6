package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	HTTPAddr     string
	LogLevel     string

	DBDSN string

	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	RequestTimeout time.Duration

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	PropertyCacheTTL time.Duration

	StorageDir        string
	MaxImageSizeBytes int64

	CompletionInterval time.Duration

	AdminEmail    string
	AdminPassword string
}

// CacheEnabled reports whether a redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PROD_ORIGINS", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PROPERTY_CACHE_TTL", "5m")
	v.SetDefault("STORAGE_DIR", "./data")
	v.SetDefault("MAX_IMAGE_SIZE_MB", 10)
	v.SetDefault("COMPLETION_INTERVAL", "1h")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Info("no .env file loaded, using process environment")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return Parse(v)
}

// Parse builds a Config from the values in v.
func Parse(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		IsProduction:  v.GetString("APP_ENV") == PROD_STRING,
		ProdOrigins:   splitList(v.GetString("PROD_ORIGINS")),
		HTTPAddr:      v.GetString("HTTP_ADDR"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		DBDSN:         v.GetString("DB_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		StorageDir:    v.GetString("STORAGE_DIR"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return nil, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	var err error
	if cfg.JWTAccessTokenTTL, err = positiveDuration(v, "JWT_ACCESS_TOKEN_TTL"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = positiveDuration(v, "REQUEST_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.PropertyCacheTTL, err = positiveDuration(v, "PROPERTY_CACHE_TTL"); err != nil {
		return nil, err
	}
	if cfg.CompletionInterval, err = positiveDuration(v, "COMPLETION_INTERVAL"); err != nil {
		return nil, err
	}

	if cfg.BcryptCost, err = intValue(v, "BCRYPT_COST"); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %d is outside 4..31", cfg.BcryptCost)
	}

	if cfg.RedisDB, err = intValue(v, "REDIS_DB"); err != nil {
		return nil, err
	}

	sizeMB, err := intValue(v, "MAX_IMAGE_SIZE_MB")
	if err != nil {
		return nil, err
	}
	if sizeMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_IMAGE_SIZE_MB: %d", sizeMB)
	}
	cfg.MaxImageSizeBytes = int64(sizeMB) << 20

	return cfg, nil
}

func positiveDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := cast.ToDurationE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func intValue(v *viper.Viper, key string) (int, error) {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
