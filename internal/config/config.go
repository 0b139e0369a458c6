package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"micasa/internal/storage"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Storage backends for uploaded images.
const (
	StorageS3     = storage.BackendS3
	StorageGridFS = storage.BackendGridFS
)

// Config holds all configuration for the application
type Config struct {
	ServerPort    string
	GinMode       string
	PublicBaseURL string

	MongoURI      string
	MongoDatabase string
	RedisURI      string

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	StorageBackend string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UseSSL       bool
	MaxUploadBytes int64

	RabbitURL      string
	RabbitExchange string

	OTelEndpoint string
	LogLevel     string
	LogFormat    string

	CORSAllowedOrigins []string
	RateLimitRPS       int
	RateLimitBurst     int

	ActivityWorkers       int
	ActivityQueueCapacity int
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	// Load .env file (ignore error if file doesn't exist - env vars may be set directly)
	_ = godotenv.Load()

	port := getEnv("SERVER_PORT", "8080")

	cfg := &Config{
		ServerPort:    port,
		GinMode:       getEnv("GIN_MODE", "debug"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),

		MongoURI:      getEnvRequired("MONGO_URI"),
		MongoDatabase: getEnvRequired("MONGO_DATABASE"),
		RedisURI:      getEnv("REDIS_URI", "localhost:6379"),

		AccessTokenSecret:  getEnvRequired("ACCESS_TOKEN_SECRET"),
		AccessTokenExpiry:  parseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "15m")),
		RefreshTokenExpiry: parseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "168h")),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageS3),
		S3Endpoint:     getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:    getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:       getEnv("S3_BUCKET", "micasa-uploads"),
		S3UseSSL:       parseBool(getEnv("S3_USE_SSL", "false")),
		MaxUploadBytes: int64(parseInt(getEnv("MAX_UPLOAD_BYTES", "5242880"))),

		RabbitURL:      getEnv("RABBIT_URL", ""),
		RabbitExchange: getEnv("RABBIT_EXCHANGE", "micasa.events"),

		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitRPS:       parseInt(getEnv("RATE_LIMIT_RPS", "10")),
		RateLimitBurst:     parseInt(getEnv("RATE_LIMIT_BURST", "20")),

		ActivityWorkers:       parseInt(getEnv("ACTIVITY_WORKERS", "2")),
		ActivityQueueCapacity: parseInt(getEnv("ACTIVITY_QUEUE_CAPACITY", "256")),
	}

	if cfg.StorageBackend != StorageS3 && cfg.StorageBackend != StorageGridFS {
		log.Fatalf("Invalid STORAGE_BACKEND %q: must be %s or %s", cfg.StorageBackend, StorageS3, StorageGridFS)
	}

	return cfg
}

// S3 returns the S3 connection settings.
func (c *Config) S3() storage.S3Config {
	return storage.S3Config{
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Bucket:    c.S3Bucket,
		UseSSL:    c.S3UseSSL,
	}
}

// getEnv reads an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvRequired reads an environment variable and exits if not set
func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Required environment variable %s is not set", key)
	}
	return value
}

// parseDuration parses a duration string, exits on error
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("Invalid duration format: %s", s)
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("Invalid integer value: %s", s)
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("Invalid boolean value: %s", s)
	}
	return b
}

// parseList splits a comma separated value, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
