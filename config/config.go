// stickybans/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"stickybans/utils"
)

const (
	AppVersion = "1.2.0"

	DefaultPort        = "8080"
	DefaultBasePath    = "/api/Stickyban"
	DefaultLogLevel    = "INFO"
	DefaultAdminHeader = "X-Forwarded-Preferred-Username"
	ProxySecretHeader  = "X-Proxy-Secret"

	// Connection Pool Defaults
	DefaultDBMaxOpen      = 10
	DefaultDBMaxIdle      = 5
	DefaultDBConnLifetime = "5m"

	// Rate Limiting Defaults
	DefaultRateLimitEvery  = "100ms"
	DefaultRateLimitBurst  = 30
	DefaultRateLimitPrune  = "1h"
	DefaultRateLimitExpire = "24h"

	// Whitelisting
	WhitelistNoteText     = "User was whitelisted against all stickybans."
	WhitelistNoteCategory = 1
	WhitelistAuditTitle   = "Player Whitelisted"
)

// Config is the runtime configuration, assembled from STICKYBAN_* environment variables.
type Config struct {
	Port            string `validate:"required,numeric"`
	DatabaseURL     string `validate:"required"`
	BasePath        string `validate:"required,startswith=/"`
	LogLevel        string `validate:"oneof=DEBUG INFO WARN ERROR"`
	AdminHeader     string `validate:"required"`
	ProxySecretHash string

	DBMaxOpen      int           `validate:"gte=1"`
	DBMaxIdle      int           `validate:"gte=0,ltefield=DBMaxOpen"`
	DBConnLifetime time.Duration `validate:"gte=0"`

	RateLimitEvery  time.Duration `validate:"gt=0"`
	RateLimitBurst  int           `validate:"gte=1"`
	RateLimitPrune  time.Duration `validate:"gt=0"`
	RateLimitExpire time.Duration `validate:"gt=0"`

	AuditWebhookURL string `validate:"omitempty,url"`
	S3              S3Config
}

// S3Config controls archiving of audit entries to object storage.
type S3Config struct {
	Enabled   bool
	Endpoint  string `validate:"required_if=Enabled true"`
	Bucket    string `validate:"required_if=Enabled true"`
	AccessKey string
	SecretKey string
	Region    string
	Prefix    string
	UseSSL    bool
}

var validate = validator.New()

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            utils.GetEnv("STICKYBAN_PORT", DefaultPort),
		DatabaseURL:     utils.GetEnv("STICKYBAN_DATABASE_URL", ""),
		BasePath:        utils.GetEnv("STICKYBAN_BASE_PATH", DefaultBasePath),
		LogLevel:        strings.ToUpper(utils.GetEnv("STICKYBAN_LOG_LEVEL", DefaultLogLevel)),
		AdminHeader:     utils.GetEnv("STICKYBAN_ADMIN_HEADER", DefaultAdminHeader),
		ProxySecretHash: utils.GetEnv("STICKYBAN_PROXY_SECRET_HASH", ""),
		AuditWebhookURL: utils.GetEnv("STICKYBAN_AUDIT_WEBHOOK", ""),
		S3: S3Config{
			Enabled:   utils.GetEnv("STICKYBAN_S3_ENABLED", "false") == "true",
			Endpoint:  utils.GetEnv("STICKYBAN_S3_ENDPOINT", ""),
			Bucket:    utils.GetEnv("STICKYBAN_S3_BUCKET", ""),
			AccessKey: utils.GetEnv("STICKYBAN_S3_ACCESS_KEY", ""),
			SecretKey: utils.GetEnv("STICKYBAN_S3_SECRET_KEY", ""),
			Region:    utils.GetEnv("STICKYBAN_S3_REGION", "us-east-1"),
			Prefix:    utils.GetEnv("STICKYBAN_S3_PREFIX", "audit"),
			UseSSL:    utils.GetEnv("STICKYBAN_S3_USE_SSL", "true") == "true",
		},
	}

	if len(cfg.BasePath) > 1 {
		cfg.BasePath = strings.TrimSuffix(cfg.BasePath, "/")
	}

	var err error
	if cfg.DBMaxOpen, err = utils.GetEnvInt("STICKYBAN_DB_MAX_OPEN", DefaultDBMaxOpen); err != nil {
		return nil, fmt.Errorf("invalid STICKYBAN_DB_MAX_OPEN: %w", err)
	}
	if cfg.DBMaxIdle, err = utils.GetEnvInt("STICKYBAN_DB_MAX_IDLE", DefaultDBMaxIdle); err != nil {
		return nil, fmt.Errorf("invalid STICKYBAN_DB_MAX_IDLE: %w", err)
	}
	if cfg.DBConnLifetime, err = utils.GetEnvDuration("STICKYBAN_DB_CONN_LIFETIME", DefaultDBConnLifetime); err != nil {
		return nil, fmt.Errorf("invalid STICKYBAN_DB_CONN_LIFETIME: %w", err)
	}
	if cfg.RateLimitEvery, err = utils.GetEnvDuration("STICKYBAN_RATE_EVERY", DefaultRateLimitEvery); err != nil {
		return nil, fmt.Errorf("invalid STICKYBAN_RATE_EVERY: %w", err)
	}
	if cfg.RateLimitBurst, err = utils.GetEnvInt("STICKYBAN_RATE_BURST", DefaultRateLimitBurst); err != nil {
		return nil, fmt.Errorf("invalid STICKYBAN_RATE_BURST: %w", err)
	}
	if cfg.RateLimitPrune, err = utils.GetEnvDuration("STICKYBAN_RATE_PRUNE", DefaultRateLimitPrune); err != nil {
		return nil, fmt.Errorf("invalid STICKYBAN_RATE_PRUNE: %w", err)
	}
	if cfg.RateLimitExpire, err = utils.GetEnvDuration("STICKYBAN_RATE_EXPIRE", DefaultRateLimitExpire); err != nil {
		return nil, fmt.Errorf("invalid STICKYBAN_RATE_EXPIRE: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
