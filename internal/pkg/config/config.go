package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// AllowedOrigins feeds the CORS middleware; "*" allows any origin.
	AllowedOrigins []string `env:"CORS_ORIGINS, default=*"`

	JWT       JWTConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	Bootstrap BootstrapConfig
	Notify    NotifyConfig
	RateLimit RateLimitConfig
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET, required"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL,  default=24h"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL, default=168h"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=concierge_admin"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// MinIOConfig is optional; image uploads are disabled when Endpoint is empty.
type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET,     default=inventory-images"`
	UseSSL    bool   `env:"MINIO_USE_SSL,    default=false"`
	PublicURL string `env:"MINIO_PUBLIC_URL"`
}

// BootstrapConfig seeds the first super admin when the users collection is
// empty.
type BootstrapConfig struct {
	Email    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	Password string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
	Name     string `env:"BOOTSTRAP_ADMIN_NAME, default=Super Admin"`
}

type NotifyConfig struct {
	Stream      string        `env:"NOTIFY_STREAM,       default=notifications:vendors"`
	Workers     int           `env:"NOTIFY_WORKERS,      default=4"`
	SendTimeout time.Duration `env:"NOTIFY_SEND_TIMEOUT, default=5s"`
}

// RateLimitConfig applies to the login endpoints, per client IP.
type RateLimitConfig struct {
	LoginPerSecond float64 `env:"LOGIN_RATE_PER_SECOND, default=1"`
	LoginBurst     int     `env:"LOGIN_RATE_BURST,      default=5"`
}

// IsDevelopment reports whether human-readable logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// StorageEnabled reports whether MinIO is configured.
func (c *Config) StorageEnabled() bool {
	return c.MinIO.Endpoint != ""
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.Bootstrap.Password != "" && c.Bootstrap.Email == "" {
		return errors.New("BOOTSTRAP_ADMIN_EMAIL is required when a bootstrap password is set")
	}
	if c.StorageEnabled() && (c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "") {
		return errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT")
	}
	return nil
}

// Load reads a .env file when present, then the process environment, using
// go-envconfig.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Process(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Process resolves the configuration from lookuper and validates it.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
