package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/streamhub/accounts/internal/constants"
	"github.com/streamhub/accounts/pkg/database"
	"github.com/streamhub/accounts/pkg/redis"
	"github.com/streamhub/accounts/pkg/storage"
)

type Config struct {
	App       AppConfig
	Database  database.Config
	Redis     redis.Config
	JWT       JWTConfig
	Storage   storage.Config
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        string
	Debug       bool
	LogsPath    string
	CORSOrigin  string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type RateLimitConfig struct {
	MaxRequest int
	Duration   time.Duration
}

// CookieSecure reports whether auth cookies should carry the Secure flag.
// Plain HTTP in development would otherwise drop them.
func (c *Config) CookieSecure() bool {
	return c.App.Environment == constants.EnvProduction
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	dbConfig := database.DefaultConfig()
	dbConfig.Host = getEnv("DB_HOST", dbConfig.Host)
	dbConfig.Port = getEnvAsInt("DB_PORT", dbConfig.Port)
	dbConfig.User = getEnv("DB_USER", "postgres")
	dbConfig.Password = getEnv("DB_PASSWORD", "postgres")
	dbConfig.Database = getEnv("DB_NAME", "accounts_db")
	dbConfig.SSLMode = getEnv("DB_SSL_MODE", dbConfig.SSLMode)
	dbConfig.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", dbConfig.MaxIdleConns)
	dbConfig.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", dbConfig.MaxOpenConns)

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", constants.AppName),
			Environment: getEnv("APP_ENV", constants.DefaultEnvironment),
			Port:        getEnv("APP_PORT", constants.DefaultPort),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			LogsPath:    getEnv("APP_LOGS_PATH", "logs"),
			CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
		},
		Database: dbConfig,
		Redis: redis.Config{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			Enabled:      getEnvAsBool("REDIS_ENABLED", true),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "default_access_secret_change_in_production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "default_refresh_secret_change_in_production"),
			AccessTTL:     getEnvAsDuration("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTTL:    getEnvAsDuration("JWT_REFRESH_TTL", 240*time.Hour),
		},
		Storage: storage.Config{
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Bucket:        getEnv("S3_BUCKET", "accounts-media"),
			AccessKey:     getEnv("S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("S3_SECRET_KEY", ""),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
			UsePathStyle:  getEnvAsBool("S3_USE_PATH_STYLE", true),
		},
		RateLimit: RateLimitConfig{
			MaxRequest: getEnvAsInt("RATE_LIMIT_MAX_REQUEST", 100),
			Duration:   getEnvAsDuration("RATE_LIMIT_DURATION", time.Minute),
		},
	}

	return config, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
