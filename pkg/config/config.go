package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration, sourced from the environment
// (and an optional .env file).
type Config struct {
	Server    ServerConfig
	OTP       OTPConfig
	RateLimit RateLimitConfig
	Throttle  ThrottleConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Notifx    NotifxConfig
	CRM       CRMConfig
	Audit     AuditConfig
	Outbound  OutboundConfig
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port            int
	BasePath        string
	CORSOrigins     string
	BodyLimit       int
	ShutdownTimeout time.Duration
	AppVersion      string
	Debug           bool
}

// OutboundConfig bounds calls to Mailer, CRM and audit sinks.
type OutboundConfig struct {
	Timeout time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

// FromViper builds a Config from an already-populated viper instance, which
// lets tests drive configuration with v.Set.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("port"),
			BasePath:        "/" + strings.Trim(v.GetString("api_base_path"), "/"),
			CORSOrigins:     v.GetString("cors_origins"),
			BodyLimit:       v.GetInt("body_limit"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
			AppVersion:      v.GetString("app_version"),
			Debug:           v.GetBool("debug"),
		},
		OTP:       loadOTPConfig(v),
		RateLimit: loadRateLimitConfig(v),
		Throttle:  loadThrottleConfig(v),
		Redis:     loadRedisConfig(v),
		Database:  loadDatabaseConfig(v),
		Notifx:    loadNotifxConfig(v),
		CRM:       loadCRMConfig(v),
		Audit:     loadAuditConfig(v),
		Outbound:  OutboundConfig{Timeout: v.GetDuration("outbound_timeout")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewViper returns a viper instance with every default registered and
// environment lookup enabled.
func NewViper() *viper.Viper { return newViper() }

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("api_base_path", "/api")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("body_limit", 64*1024)
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("debug", false)
	v.SetDefault("outbound_timeout", 8*time.Second)

	setOTPDefaults(v)
	setRateLimitDefaults(v)
	setRedisDefaults(v)
	setDatabaseDefaults(v)
	setNotifxDefaults(v)
	setCRMDefaults(v)
	setAuditDefaults(v)

	return v
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.OTP.Secret == "" {
		problems = append(problems, "OTP_SECRET is required")
	}
	if c.OTP.TTL <= 0 {
		problems = append(problems, "OTP_TTL must be positive")
	}
	if !oneOf(c.OTP.TokenFormat, TokenFormatEnvelope, TokenFormatJWT) {
		problems = append(problems, fmt.Sprintf("unknown OTP_TOKEN_FORMAT %q", c.OTP.TokenFormat))
	}
	if !oneOf(c.OTP.ReplayStore, StoreMemory, StoreRedis) {
		problems = append(problems, fmt.Sprintf("unknown OTP_REPLAY_STORE %q", c.OTP.ReplayStore))
	}
	if !oneOf(c.RateLimit.Store, StoreMemory, StoreRedis, StorePostgres) {
		problems = append(problems, fmt.Sprintf("unknown RATE_LIMIT_STORE %q", c.RateLimit.Store))
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		problems = append(problems, "RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	if !oneOf(c.Notifx.Provider, "console", "ses", "smtp", "resend", "brevo") {
		problems = append(problems, fmt.Sprintf("unknown NOTIFX_PROVIDER %q", c.Notifx.Provider))
	}

	if len(problems) > 0 {
		return errx.Validation("invalid configuration").WithDetail("problems", problems)
	}
	return nil
}

// NeedsRedis reports whether any component is configured against Redis.
func (c *Config) NeedsRedis() bool {
	return c.RateLimit.Store == StoreRedis || (c.OTP.SingleUse && c.OTP.ReplayStore == StoreRedis)
}

// NeedsDatabase reports whether any component is configured against Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.RateLimit.Store == StorePostgres
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
