package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string
	PostgresSSLMode  string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	RateLimit          int
	RateLimitWindow    time.Duration
	RateLimitStrategy  string
	RateLimitIdleTTL   time.Duration
	RateLimitSweepTick time.Duration
	RedisAddr          string

	RequestLogSink  string
	RequestLogFile  string
	RequestLogFlush int

	StorageBackend string
	UploadDir      string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
}

func Load() *Config {
	// Missing .env is fine, real env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		PostgresUser:       getEnv("POSTGRES_USER", "tastebook"),
		PostgresPassword:   getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:       getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:       getEnv("POSTGRES_PORT", "5432"),
		PostgresDatabase:   getEnv("POSTGRES_DATABASE", "tastebook"),
		PostgresSSLMode:    getEnv("POSTGRES_SSL_MODE", "disable"),
		JWTSecret:          mustGetEnv("JWT_SECRET"),
		TokenTTL:           getEnvDuration("TOKEN_TTL", time.Hour),
		BcryptCost:         getEnvInt("BCRYPT_COST", 10),
		RateLimit:          getEnvInt("REQUESTS_PER_MIN", 20),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitStrategy:  getEnv("RATE_LIMIT_STRATEGY", "sliding"),
		RateLimitIdleTTL:   getEnvDuration("RATE_LIMIT_IDLE_TTL", 3*time.Minute),
		RateLimitSweepTick: getEnvDuration("RATE_LIMIT_SWEEP_TICK", time.Minute),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RequestLogSink:     getEnv("REQUEST_LOG_SINK", "file"),
		RequestLogFile:     getEnv("REQUEST_LOG_FILE", "logs.txt"),
		RequestLogFlush:    getEnvInt("REQUEST_LOG_FLUSH_BYTES", 512),
		StorageBackend:     getEnv("STORAGE_BACKEND", "local"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		S3Bucket:           getEnv("S3_BUCKET", "tastebook-uploads"),
		S3Region:           getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3AccessKey:        getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:        getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	if cfg.StorageBackend == "s3" && (cfg.S3AccessKey == "" || cfg.S3SecretKey == "") {
		panic("AWS credentials must be provided when STORAGE_BACKEND=s3")
	}

	return cfg
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic("Missing required environment variable: " + key)
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
