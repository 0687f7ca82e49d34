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
	Port        string
	DBUrl       string
	FrontendURL string
	LogLevel    string
	// Auth
	JWTSecret   string
	JWTTTL      time.Duration
	AuthJWKSURL string // optional RS256 issuer
	// SMTP Configuration (Brevo)
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	RateLimitUploadThreshold int
	FailedLoginBlockMinutes  int
	FailedLoginMaxAttempts   int
	// Uploads
	UploadMaxBytes   int64
	UploadDir        string // local fallback when S3 is not configured
	UploadPublicURL  string
	ClamAVAddress    string
	S3Provider       string
	S3Bucket         string
	S3Region         string
	S3AccessKeyID    string
	S3SecretKey      string
	S3Endpoint       string
	S3PublicBaseURL  string
	UploadsPerMinute int
	UploadsPerDay    int
	// Payments (Midtrans Snap)
	MidtransMode       string // SANDBOX | PRODUCTION
	MidtransServerKey  string
	MidtransClientKey  string
	FeeSelfFunded      int64
	FeeFullyFunded     int64
	PaymentCurrency    string
	PaymentExpiry      time.Duration
	PaymentSweepSpec   string
	CatalogCacheTTL    time.Duration
	NatsURL            string
	MetricsEnabled     bool
	MigrateOnBoot      bool
	ServiceEnvironment string
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; in production the file is absent and ignored
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTL:      getEnvDuration("JWT_TTL", 24*time.Hour),
		AuthJWKSURL: getEnv("AUTH_JWKS_URL", ""),

		SMTPHost:      getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@riseacademy.id"),

		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitUploadThreshold: getEnvInt("RATE_LIMIT_UPLOAD_THRESHOLD", 10),
		FailedLoginBlockMinutes:  getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", 15),
		FailedLoginMaxAttempts:   getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", 5),

		UploadMaxBytes:   int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		UploadPublicURL:  strings.TrimRight(getEnv("UPLOAD_PUBLIC_URL", "http://localhost:8080/files"), "/"),
		ClamAVAddress:    getEnv("CLAMAV_ADDRESS", ""),
		S3Provider:       getEnv("S3_PROVIDER", "aws"),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Region:         getEnv("S3_REGION", "ap-southeast-1"),
		S3AccessKeyID:    getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:      getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL:  strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		UploadsPerMinute: getEnvInt("UPLOADS_PER_MINUTE", 10),
		UploadsPerDay:    getEnvInt("UPLOADS_PER_DAY", 50),

		MidtransMode:      strings.ToUpper(getEnv("MIDTRANS_MODE", "SANDBOX")),
		MidtransServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransClientKey: getEnv("MIDTRANS_CLIENT_KEY", ""),
		FeeSelfFunded:     int64(getEnvInt("RYLS_FEE_SELF_FUNDED", 1500000)),
		FeeFullyFunded:    int64(getEnvInt("RYLS_FEE_FULLY_FUNDED", 150000)),
		PaymentCurrency:   getEnv("PAYMENT_CURRENCY", "IDR"),
		PaymentExpiry:     getEnvDuration("PAYMENT_EXPIRY", 24*time.Hour),
		PaymentSweepSpec:  getEnv("PAYMENT_SWEEP_SPEC", "@every 15m"),

		CatalogCacheTTL:    getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		NatsURL:            getEnv("NATS_URL", ""),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		MigrateOnBoot:      getEnvBool("MIGRATE_ON_BOOT", true),
		ServiceEnvironment: getEnv("APP_ENV", "development"),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Login and register will fail.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}
	if cfg.MidtransServerKey == "" {
		log.Println("WARNING: MIDTRANS_SERVER_KEY not configured. Gateway payments are disabled.")
	}

	return cfg, nil
}

// IsProduction reports whether the gateway should use live endpoints.
func (c *Config) IsProduction() bool {
	return c.MidtransMode == "PRODUCTION"
}

// S3Enabled reports whether uploads go to object storage instead of disk.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3AccessKeyID != "" && c.S3SecretKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("15m", "24h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
