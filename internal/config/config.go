package config

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Links     LinkConfig
	Email     EmailConfig
	Storage   StorageConfig
	Payments  PaymentConfig
	NATS      NATSConfig
	Telemetry TelemetryConfig
	Studio    StudioConfig
}

type ServerConfig struct {
	Port           string        `env:"SERVER_PORT,default=8080"`
	Environment    string        `env:"ENVIRONMENT,default=development"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT,default=10s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT,default=10s"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL,default=http://localhost:8080"`
}

type DatabaseConfig struct {
	Host        string `env:"DB_HOST,default=localhost"`
	Port        string `env:"DB_PORT,default=5432"`
	User        string `env:"DB_USER,default=studio"`
	Password    string `env:"DB_PASSWORD,default=studio"`
	DBName      string `env:"DB_NAME,default=studio"`
	SSLMode     string `env:"DB_SSLMODE,default=disable"`
	InMemory    bool   `env:"DB_IN_MEMORY,default=false"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE,default=true"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,default=true"`
	Host     string `env:"REDIS_HOST,default=localhost"`
	Port     string `env:"REDIS_PORT,default=6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,default=0"`
}

type AuthConfig struct {
	SessionTTL      time.Duration `env:"AUTH_SESSION_TTL,default=720h"`
	ResetTokenTTL   time.Duration `env:"AUTH_RESET_TOKEN_TTL,default=24h"`
	MaxFailedLogins int           `env:"AUTH_MAX_FAILED_LOGINS,default=5"`
	LockDuration    time.Duration `env:"AUTH_LOCK_DURATION,default=15m"`
	RateLimit       int           `env:"AUTH_RATE_LIMIT,default=20"`
	RateWindow      time.Duration `env:"AUTH_RATE_WINDOW,default=1m"`
}

// LinkConfig controls the signed confirm/cancel links mailed to customers.
type LinkConfig struct {
	Secret string        `env:"ACTION_LINK_SECRET"`
	TTL    time.Duration `env:"ACTION_LINK_TTL,default=72h"`
	Issuer string        `env:"ACTION_LINK_ISSUER,default=coldtherapy-studio"`
}

type EmailConfig struct {
	Enabled    bool   `env:"EMAIL_ENABLED,default=false"`
	APIKey     string `env:"RESEND_API_KEY"`
	FromEmail  string `env:"EMAIL_FROM,default=hello@coldtherapy.studio"`
	FromName   string `env:"EMAIL_FROM_NAME,default=Cold Therapy Studio"`
	StaffEmail string `env:"EMAIL_STAFF"`
}

type StorageConfig struct {
	Enabled        bool          `env:"S3_ENABLED,default=false"`
	Endpoint       string        `env:"S3_ENDPOINT"`
	Region         string        `env:"S3_REGION,default=us-east-1"`
	AccessKey      string        `env:"S3_ACCESS_KEY"`
	SecretKey      string        `env:"S3_SECRET_KEY"`
	Bucket         string        `env:"S3_BUCKET,default=studio-media"`
	ForcePathStyle bool          `env:"S3_FORCE_PATH_STYLE,default=true"`
	MediaURLTTL    time.Duration `env:"MEDIA_URL_TTL,default=1h"`
	UploadURLTTL   time.Duration `env:"MEDIA_UPLOAD_URL_TTL,default=15m"`
}

type PaymentConfig struct {
	WebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`
	Provider      string `env:"PAYMENT_PROVIDER,default=manual"`
	Currency      string `env:"PAYMENT_CURRENCY,default=ILS"`
}

type NATSConfig struct {
	URL    string `env:"NATS_URL"`
	Stream string `env:"NATS_STREAM,default=STUDIO"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME,default=studio-api"`
}

type StudioConfig struct {
	Timezone      string        `env:"STUDIO_TIMEZONE,default=Asia/Jerusalem"`
	SweepInterval time.Duration `env:"MAINTENANCE_SWEEP_INTERVAL,default=10m"`
}

// Load reads an optional .env file and binds the process environment.
func Load(ctx context.Context) (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom binds configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that cannot be expressed as env defaults.
func (c *Config) Validate() error {
	if c.Links.Secret == "" {
		if c.IsProduction() {
			return errors.New("ACTION_LINK_SECRET is required in production")
		}
		c.Links.Secret = "development-only-link-secret"
	}
	if c.Email.Enabled && c.Email.APIKey == "" {
		return errors.New("RESEND_API_KEY is required when EMAIL_ENABLED=true")
	}
	if c.Storage.Enabled && (c.Storage.Endpoint == "" || c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		return errors.New("S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY are required when S3_ENABLED=true")
	}
	if _, err := time.LoadLocation(c.Studio.Timezone); err != nil {
		return fmt.Errorf("invalid STUDIO_TIMEZONE %q: %w", c.Studio.Timezone, err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Location returns the studio time zone used for day boundaries.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Studio.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
