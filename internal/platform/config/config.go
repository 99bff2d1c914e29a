package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Addr        string `env:"APP_ADDR" envDefault:":8080"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL   string `env:"DATABASE_URL"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	JWTSecret   string        `env:"JWT_SECRET"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"leavedesk"`
	JWTAudience string        `env:"JWT_AUDIENCE" envDefault:"leavedesk-api"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"24h"`

	SessionLifetime      time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
	SessionCookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"leavedesk_session"`
	SessionEncryptionKey string        `env:"SESSION_ENCRYPTION_KEY"`
	RedisURL             string        `env:"REDIS_URL"`

	BackendURL     string        `env:"BACKEND_URL"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	CSRFKey            string   `env:"CSRF_KEY"`
	CSRFTrustedOrigins []string `env:"CSRF_TRUSTED_ORIGINS" envSeparator:","`

	MaxBodyBytes           int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimitPerMinute     int   `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	AuthRateLimitPerMinute int   `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"10"`

	RefreshSchedule       string        `env:"ANALYTICS_REFRESH_SCHEDULE" envDefault:"@every 5m"`
	RefreshDelay          time.Duration `env:"ANALYTICS_REFRESH_DELAY" envDefault:"1500ms"`
	LoginRedirectDelay    time.Duration `env:"LOGIN_REDIRECT_DELAY" envDefault:"1500ms"`
	SignupRedirectDelay   time.Duration `env:"SIGNUP_REDIRECT_DELAY" envDefault:"1000ms"`
	PasswordResetTTL      time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"1h"`
	SickLeaveAllowance    int           `env:"SICK_LEAVE_ALLOWANCE" envDefault:"12"`
	MedicalLeaveAllowance int           `env:"MEDICAL_LEAVE_ALLOWANCE" envDefault:"10"`

	SeedDemoData         bool   `env:"SEED_DEMO_DATA" envDefault:"true"`
	SeedAdminEmail       string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@example.com"`
	SeedAdminPassword    string `env:"SEED_ADMIN_PASSWORD"`
	SeedEmployeeEmail    string `env:"SEED_EMPLOYEE_EMAIL" envDefault:"employee@example.com"`
	SeedEmployeePassword string `env:"SEED_EMPLOYEE_PASSWORD"`

	HRNotifyEmail string `env:"HR_NOTIFY_EMAIL"`
	EmailFrom     string `env:"SMTP_FROM" envDefault:"no-reply@example.com"`
	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser      string `env:"SMTP_USER"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c Config) EmailEnabled() bool {
	return strings.TrimSpace(c.SMTPHost) != ""
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !c.IsDevelopment() {
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 bytes outside development")
		}
		if len(c.CSRFKey) != 32 {
			return fmt.Errorf("CSRF_KEY must be exactly 32 bytes outside development")
		}
		if c.SeedDemoData && (c.SeedAdminPassword == "" || c.SeedEmployeePassword == "") {
			return fmt.Errorf("seed passwords must be set or SEED_DEMO_DATA disabled outside development")
		}
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.JWTTTL <= 0 || c.SessionLifetime <= 0 {
		return fmt.Errorf("JWT_TTL and SESSION_LIFETIME must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 || c.AuthRateLimitPerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.RefreshDelay < 0 || c.LoginRedirectDelay < 0 || c.SignupRedirectDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.SickLeaveAllowance < 0 || c.MedicalLeaveAllowance < 0 {
		return fmt.Errorf("leave allowances must not be negative")
	}
	if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
		return fmt.Errorf("ANALYTICS_REFRESH_SCHEDULE: %w", err)
	}
	return nil
}

// SigningSecret falls back to a fixed development secret so a local run needs no setup.
func (c Config) SigningSecret() string {
	if c.JWTSecret == "" && c.IsDevelopment() {
		return "leavedesk-development-secret-000000"
	}
	return c.JWTSecret
}

// CSRFAuthKey returns the 32-byte key for page form protection.
func (c Config) CSRFAuthKey() []byte {
	if len(c.CSRFKey) == 32 {
		return []byte(c.CSRFKey)
	}
	return []byte("leavedesk-dev-csrf-key-000000000")
}
