package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	TokenFormatEnvelope = "envelope"
	TokenFormatJWT      = "jwt"

	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// OTPConfig configures issuance and verification.
type OTPConfig struct {
	// Secret signs challenge tokens. Rotating it invalidates outstanding tokens.
	Secret      string
	TTL         time.Duration
	TokenFormat string
	// SingleUse enables the replay guard.
	SingleUse   bool
	ReplayStore string
}

// RateLimitConfig bounds issuance requests per email.
type RateLimitConfig struct {
	Window time.Duration
	Max    int
	Store  string
}

// ThrottleConfig is the per-IP token bucket in front of the OTP endpoints.
// RPS <= 0 disables it.
type ThrottleConfig struct {
	RPS   float64
	Burst int
}

func setOTPDefaults(v *viper.Viper) {
	v.SetDefault("otp_secret", "")
	v.SetDefault("otp_ttl", 5*time.Minute)
	v.SetDefault("otp_token_format", TokenFormatEnvelope)
	v.SetDefault("otp_single_use", false)
	v.SetDefault("otp_replay_store", StoreMemory)
}

func setRateLimitDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit_window", time.Hour)
	v.SetDefault("rate_limit_max", 10)
	v.SetDefault("rate_limit_store", StoreMemory)
	v.SetDefault("throttle_rps", 1.0)
	v.SetDefault("throttle_burst", 5)
}

func loadOTPConfig(v *viper.Viper) OTPConfig {
	return OTPConfig{
		Secret:      v.GetString("otp_secret"),
		TTL:         v.GetDuration("otp_ttl"),
		TokenFormat: v.GetString("otp_token_format"),
		SingleUse:   v.GetBool("otp_single_use"),
		ReplayStore: v.GetString("otp_replay_store"),
	}
}

func loadRateLimitConfig(v *viper.Viper) RateLimitConfig {
	return RateLimitConfig{
		Window: v.GetDuration("rate_limit_window"),
		Max:    v.GetInt("rate_limit_max"),
		Store:  v.GetString("rate_limit_store"),
	}
}

func loadThrottleConfig(v *viper.Viper) ThrottleConfig {
	return ThrottleConfig{
		RPS:   v.GetFloat64("throttle_rps"),
		Burst: v.GetInt("throttle_burst"),
	}
}
