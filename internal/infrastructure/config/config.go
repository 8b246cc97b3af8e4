package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// BaseURL prefixes the links embedded in verification and reset mail.
	BaseURL string `env:"BASE_URL, default=http://localhost:8080"`

	Auth  AuthConfig
	OAuth OAuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL,    default=24h"`
	VerifyTTL     time.Duration `env:"VERIFY_TOKEN_TTL,    default=48h"`
	RecoveryTTL   time.Duration `env:"RECOVERY_TOKEN_TTL,  default=1h"`
	SignupCredits int64         `env:"SIGNUP_CREDITS,      default=10"`

	RateLimitMax    int64         `env:"RATE_LIMIT_MAX,    default=5"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW, default=15m"`

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`
}

// OAuthConfig configures Google sign-in. The routes are mounted only when
// the client id is set.
type OAuthConfig struct {
	GoogleClientID     string `env:"OAUTH_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"OAUTH_GOOGLE_CLIENT_SECRET"`
	RedirectURL        string `env:"OAUTH_REDIRECT_URL"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=jooy_auth"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
