package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	SMTP       SMTPConfig
	Auth       AuthConfig
	Upload     UploadConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Tracing    TracingConfig
	Pagination PaginationConfig
	Jobs       JobsConfig
}

type AppConfig struct {
	Port               string
	ClientURL          string
	Environment        string
	LogFilePath        string
	RealtimeLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection   string
	MaxIdleConns int
	MaxOpenConns int
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
}

type UploadConfig struct {
	Dir          string
	MaxFileSize  int64
	MaxFiles     int
	AllowedTypes []string
}

type CacheConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	Window     time.Duration
	Max        int
	AuthWindow time.Duration
	AuthMax    int
	UploadMax  int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// JobsConfig schedules background jobs in server local time.
type JobsConfig struct {
	Enabled            bool
	WeeklyReportDay    time.Weekday
	WeeklyReportHour   int
	UploadCleanupHour  int
	OrphanUploadMaxAge time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RealtimeLogPath:    getEnv("REALTIME_LOG_PATH", "logs/realtime.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "NoteVault"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "default_secret"),
			JWTExpiry: time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 24*7)) * time.Hour,
		},
		Upload: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "./uploads"),
			MaxFileSize:  int64(getEnvAsInt("MAX_FILE_SIZE", 5*1024*1024)),
			MaxFiles:     getEnvAsInt("MAX_FILES_PER_REQUEST", 5),
			AllowedTypes: getEnvAsList("ALLOWED_FILE_TYPES", []string{"image/jpeg", "image/png", "image/gif", "application/pdf", "text/plain"}),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Window:     time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 15*60)) * time.Second,
			Max:        getEnvAsInt("RATE_LIMIT_MAX", 100),
			AuthWindow: time.Duration(getEnvAsInt("AUTH_RATE_LIMIT_WINDOW_SECONDS", 15*60)) * time.Second,
			AuthMax:    getEnvAsInt("AUTH_RATE_LIMIT_MAX", 5),
			UploadMax:  getEnvAsInt("UPLOAD_RATE_LIMIT_MAX", 10),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "notevault-backend"),
		},
		Pagination: PaginationConfig{
			DefaultLimit: getEnvAsInt("DEFAULT_PAGE_SIZE", 20),
			MaxLimit:     getEnvAsInt("MAX_PAGE_SIZE", 100),
		},
		Jobs: JobsConfig{
			Enabled:            getEnvAsBool("JOBS_ENABLED", true),
			WeeklyReportDay:    time.Weekday(getEnvAsInt("WEEKLY_REPORT_DAY", int(time.Monday)) % 7),
			WeeklyReportHour:   getEnvAsInt("WEEKLY_REPORT_HOUR", 9),
			UploadCleanupHour:  getEnvAsInt("UPLOAD_CLEANUP_HOUR", 2),
			OrphanUploadMaxAge: time.Duration(getEnvAsInt("ORPHAN_UPLOAD_MAX_AGE_HOURS", 24)) * time.Hour,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
