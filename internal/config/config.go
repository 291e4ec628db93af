package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

// Object storage drivers.
const (
	StorageDriverS3    = "s3"
	StorageDriverLocal = "local"
)

const minJWTSecretLength = 32

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr   string
	ServerPort   int
	AppBaseURL   string
	LogLevel     slog.Level
	CookieSecure bool
	// TrustProxy takes the client IP from X-Forwarded-For/X-Real-IP. Only
	// enable it behind a proxy that overwrites those headers.
	TrustProxy bool

	// Store
	StoreDriver string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DBMigrate   bool
	MongoURI    string
	MongoDB     string

	// JWT
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration

	PasswordPolicy  PasswordPolicyConfig
	Validation      ValidationConfig
	RateLimit       RateLimitConfig
	SecurityHeaders SecurityHeadersConfig
	SessionSecurity SessionSecurityConfig
	Storage         StorageConfig
	Telemetry       TelemetryConfig

	// UI
	ServeUI      bool
	TemplatesDir string // empty serves the embedded templates
}

// PasswordPolicyConfig holds password complexity requirements.
type PasswordPolicyConfig struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

// ValidationConfig holds input validation limits.
type ValidationConfig struct {
	MaxRequestBodySize    int64
	MaxUploadSize         int64
	StrictEmailValidation bool
	BlockDisposableEmail  bool
}

// RateLimitConfig holds rate limiting settings per endpoint group.
type RateLimitConfig struct {
	Enabled        bool
	AuthRequests   int
	AuthWindow     time.Duration
	UploadRequests int
	UploadWindow   time.Duration
}

// SecurityHeadersConfig holds OWASP response header settings.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// SessionSecurityConfig holds session hardening settings.
type SessionSecurityConfig struct {
	FingerprintEnabled bool
}

// StorageConfig holds object storage settings for employee reference images.
type StorageConfig struct {
	Driver          string
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	UsePathStyle    bool
	LocalDir        string
}

// TelemetryConfig holds OpenTelemetry exporter settings. Tracing is off
// when OTLPEndpoint is empty.
type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
	OTLPInsecure bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr:   getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort:   getEnvInt("SERVER_PORT", 8080),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),
		LogLevel:     getEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		TrustProxy:   getEnvBool("TRUST_PROXY", false),

		// Store defaults
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnvInt("DB_PORT", 5432),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "insightguardian"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		DBMigrate:   getEnvBool("DB_MIGRATE", true),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DATABASE", "workplace-monitoring"),

		// JWT defaults
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "insightguardian"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),

		PasswordPolicy: PasswordPolicyConfig{
			MinLength:        getEnvInt("PASSWORD_MIN_LENGTH", 8),
			RequireUppercase: getEnvBool("PASSWORD_REQUIRE_UPPERCASE", false),
			RequireLowercase: getEnvBool("PASSWORD_REQUIRE_LOWERCASE", false),
			RequireNumber:    getEnvBool("PASSWORD_REQUIRE_NUMBER", false),
			RequireSpecial:   getEnvBool("PASSWORD_REQUIRE_SPECIAL", false),
		},
		Validation: ValidationConfig{
			MaxRequestBodySize:    int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
			MaxUploadSize:         int64(getEnvInt("MAX_UPLOAD_SIZE", 10<<20)),
			StrictEmailValidation: getEnvBool("STRICT_EMAIL_VALIDATION", true),
			BlockDisposableEmail:  getEnvBool("BLOCK_DISPOSABLE_EMAIL", false),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvBool("RATE_LIMIT_ENABLED", true),
			AuthRequests:   getEnvInt("RATE_LIMIT_AUTH_REQUESTS", 10),
			AuthWindow:     getEnvDuration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
			UploadRequests: getEnvInt("RATE_LIMIT_UPLOAD_REQUESTS", 60),
			UploadWindow:   getEnvDuration("RATE_LIMIT_UPLOAD_WINDOW", time.Minute),
		},
		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'self'; img-src 'self' https: data:"),
			HSTSMaxAge:         getEnvInt("SECURITY_HSTS_MAX_AGE", 0),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			XSSProtection:      getEnv("SECURITY_XSS_PROTECTION", "0"),
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "strict-origin-when-cross-origin"),
			PermissionsPolicy:  getEnv("SECURITY_PERMISSIONS_POLICY", "camera=(), microphone=(), geolocation=()"),
		},
		SessionSecurity: SessionSecurityConfig{
			FingerprintEnabled: getEnvBool("SESSION_FINGERPRINT_ENABLED", false),
		},
		Storage: StorageConfig{
			Driver:          getEnv("STORAGE_DRIVER", StorageDriverLocal),
			Bucket:          getEnv("S3_BUCKET", getEnv("BUCKET_NAME", "")),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
			UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", false),
			LocalDir:        getEnv("LOCAL_STORAGE_DIR", "data/uploads"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "insightguardian"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},

		ServeUI:      getEnvBool("SERVE_UI", true),
		TemplatesDir: getEnv("TEMPLATES_DIR", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}

	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMongo, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of postgres, mongo, memory; got %q", c.StoreDriver)
	}

	switch c.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER is s3")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of s3, local; got %q", c.Storage.Driver)
	}

	if c.Validation.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	return nil
}

// HasS3 returns true if uploads go to an S3-compatible bucket.
func (c *Config) HasS3() bool {
	return c.Storage.Driver == StorageDriverS3
}

// PostgresDSN returns the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL returns the URL form of the connection string used by migrations.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvLogLevel(key string, defaultValue slog.Level) slog.Level {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return defaultValue
	}
	return level
}
