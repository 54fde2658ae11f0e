// Package config handles configuration loading for the contacts API.
package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all runtime configuration. It is loaded once at startup and
// injected into components at construction; nothing reads the environment
// after that.
type Config struct {
	Addr        string `env:"ADDR,default=:8080"`
	Environment string `env:"ENVIRONMENT,default=development"`
	BaseURL     string `env:"BASE_URL,default=http://localhost:8080"`

	DBDSN string `env:"DB_DSN,required"`

	RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	JWTSecret      string        `env:"JWT_SECRET,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL,default=15m"`
	VerifyTokenTTL time.Duration `env:"VERIFY_TOKEN_TTL,default=168h"`
	ResetTokenTTL  time.Duration `env:"RESET_TOKEN_TTL,default=30m"`
	// ResetClaimTTL bounds the redis-side lifetime of a pending password
	// reset. Kept equal to ResetTokenTTL unless overridden.
	ResetClaimTTL time.Duration `env:"RESET_CLAIM_TTL"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
	MailFrom     string `env:"MAIL_FROM,default=noreply@contacts.local"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION,default=us-east-1"`
	S3Bucket    string `env:"S3_BUCKET,default=contacts-avatars"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	MeRateLimitPerMinute int `env:"ME_RATE_LIMIT_PER_MINUTE,default=10"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.ResetClaimTTL == 0 {
		cfg.ResetClaimTTL = cfg.ResetTokenTTL
	}
	return cfg, nil
}
