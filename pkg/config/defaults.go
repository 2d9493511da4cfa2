// Package config provides centralized default values for Fund Road
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

// loadEnvFile applies .env without overriding variables already set in the environment.
func loadEnvFile() {
	envLoaded.Do(func() {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		log.Println("Loading configuration overrides from .env file...")
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Failed to load .env file: %v", err)
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

// getEnvSecret reads a value that must never be echoed to the log.
func getEnvSecret(key string) string {
	val := os.Getenv(key)
	if val != "" {
		log.Printf("Config override: %s=<redacted>", key)
	}
	return val
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	log.Printf("Config override: %s=%s", key, strings.Join(out, ","))
	return out
}

var (
	// Server Configuration
	Host               string
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	CORSAllowedOrigins []string

	// Database
	DBDriver                 string
	DatabaseURL              string
	DBAuthToken              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	DBSlowQueryThreshold     time.Duration

	// Content
	ContentDir string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Session navigation state
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration
	MaxSessions            int

	// Live websocket sessions
	LivePingInterval time.Duration
	LiveWriteTimeout time.Duration

	// Edge functions
	TranslationProvider string
	DeepLAPIKey         string
	DeepLAPIURL         string
	AAIAPIKey           string
	LeMURModel          string
	FunctionTimeout     time.Duration
	ResendAPIKey        string
	ContactEmailFrom    string
	ContactEmailName    string
	ContactRecipients   []string

	// Object storage
	S3Bucket          string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PresignTTL      time.Duration
	MaxUploadBytes    int64
	ThumbnailWidth    int

	// Logging
	LogLevel     string
	LogFormat    string
	LogToFile    bool
	LogDirectory string

	// Cleanup Intervals
	CleanupInterval       time.Duration
	CleanupVerbose        bool
	PerformanceRetention  time.Duration
	DBPoolCleanupInterval time.Duration
)

func init() {
	Load()
}

// Load reads every setting from the environment. It runs at package init and
// may be called again by commands that change the environment first.
func Load() {
	loadEnvFile()

	// Server Configuration
	Host = getEnvString("HOST", "")
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"})

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DatabaseURL = getEnvString("DATABASE_URL", "file:fundroad.db?_foreign_keys=on")
	DBAuthToken = getEnvSecret("DB_AUTH_TOKEN")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	DBSlowQueryThreshold = getEnvDuration("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Content; empty uses the embedded journey
	ContentDir = getEnvString("CONTENT_DIR", "")

	// Auth
	JWTSecret = getEnvSecret("JWT_SECRET")
	JWTTTL = time.Duration(getEnvInt("JWT_TTL_HOURS", 24*7)) * time.Hour

	// Session navigation state
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_MINUTES", 24*60)) * time.Minute
	SessionCleanupInterval = time.Duration(getEnvInt("SESSION_CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute
	MaxSessions = getEnvInt("MAX_SESSIONS", 50000)

	LivePingInterval = getEnvDuration("LIVE_PING_INTERVAL", 30*time.Second)
	LiveWriteTimeout = getEnvDuration("LIVE_WRITE_TIMEOUT", 10*time.Second)

	// Edge functions
	TranslationProvider = getEnvString("TRANSLATION_PROVIDER", "deepl")
	DeepLAPIKey = getEnvSecret("DEEPL_API_KEY")
	DeepLAPIURL = getEnvString("DEEPL_API_URL", "https://api-free.deepl.com/v2/translate")
	AAIAPIKey = getEnvSecret("AAI_API_KEY")
	LeMURModel = getEnvString("LEMUR_MODEL", "anthropic/claude-3-5-sonnet")
	FunctionTimeout = getEnvDuration("FUNCTION_TIMEOUT", 20*time.Second)
	ResendAPIKey = getEnvSecret("RESEND_API_KEY")
	ContactEmailFrom = getEnvString("CONTACT_EMAIL_FROM", "contact@fundroad.fr")
	ContactEmailName = getEnvString("CONTACT_EMAIL_FROM_NAME", "Fund Road")
	ContactRecipients = getEnvList("CONTACT_RECIPIENTS", []string{"contact@fundroad.fr"})

	// Object storage
	S3Bucket = getEnvString("S3_BUCKET", "")
	S3Endpoint = getEnvString("S3_ENDPOINT", "")
	S3Region = getEnvString("S3_REGION", "eu-west-3")
	S3AccessKeyID = getEnvSecret("S3_ACCESS_KEY_ID")
	S3SecretAccessKey = getEnvSecret("S3_SECRET_ACCESS_KEY")
	S3PresignTTL = time.Duration(getEnvInt("S3_PRESIGN_TTL_MINUTES", 15)) * time.Minute
	MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20
	ThumbnailWidth = getEnvInt("THUMBNAIL_WIDTH", 320)

	// Logging
	LogLevel = getEnvString("LOG_LEVEL", "INFO")
	LogFormat = getEnvString("LOG_FORMAT", "json")
	LogToFile = getEnvBool("LOG_TO_FILE", false)
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")

	// Cleanup Intervals
	CleanupInterval = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute
	CleanupVerbose = getEnvBool("CLEANUP_VERBOSE", false)
	PerformanceRetention = time.Duration(getEnvInt("PERFORMANCE_RETENTION_MINUTES", 60)) * time.Minute
	DBPoolCleanupInterval = time.Duration(getEnvInt("DB_POOL_CLEANUP_INTERVAL_MINUTES", 5)) * time.Minute
}
