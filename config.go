package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string
	CORSOrigins []string

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	CookieSecure       bool

	StorageDriver      string
	MinioEndpoint      string
	MinioAccess        string
	MinioSecret        string
	MinioBucket        string
	MinioSSL           bool
	S3Region           string
	S3Bucket           string
	S3Endpoint         string
	S3AccessKeyID      string
	S3SecretAccessKey  string
	MediaPublicBaseURL string

	LogLevel  string
	LogFormat string

	AuthRateLimit int
	OTLPEndpoint  string
	MaxUploadMB   int64
}

func loadConfig() Config {
	return Config{
		Port:        getEnv("PORT", "8000"),
		DatabaseURL: getEnv("DATABASE_URL", "file:vidtube.db"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", "change-me-access"),
		AccessTokenExpiry:  getEnvDuration("ACCESS_TOKEN_EXPIRY", 24*time.Hour),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", "change-me-refresh"),
		RefreshTokenExpiry: getEnvDuration("REFRESH_TOKEN_EXPIRY", 240*time.Hour),
		CookieSecure:       getEnvBool("COOKIE_SECURE", true),

		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", "minio")),
		MinioEndpoint:      getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccess:        getEnv("MINIO_ACCESS_KEY", "vidtube"),
		MinioSecret:        getEnv("MINIO_SECRET_KEY", "changeme123"),
		MinioBucket:        getEnv("MINIO_BUCKET", "media"),
		MinioSSL:           getEnvBool("MINIO_USE_SSL", false),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		S3Bucket:           getEnv("S3_BUCKET", "vidtube-media"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:  getEnv("S3_SECRET_ACCESS_KEY", ""),
		MediaPublicBaseURL: getEnv("MEDIA_PUBLIC_BASE_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		AuthRateLimit: getEnvInt("AUTH_RATE_LIMIT", 20),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		MaxUploadMB:   int64(getEnvInt("MAX_UPLOAD_MB", 512)),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

// getEnvDuration accepts Go durations ("15m") or a plain day count ("10d").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n > 0 {
			return time.Duration(n) * 24 * time.Hour
		}
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
